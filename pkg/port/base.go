package port

import "fmt"

// ParentDevice constrains the device type a Base is parameterized by.
type ParentDevice interface {
	Device
	comparable
}

// NoCopy marks a struct that must not be copied after first use. Concrete
// ports add a `_ NoCopy` field so go vet's copylocks check flags copies of
// the port value.
type NoCopy struct{}

// Lock is a no-op used by go vet.
func (*NoCopy) Lock() {}

// Unlock is a no-op used by go vet.
func (*NoCopy) Unlock() {}

// Base implements the device independent part of Port for ports owned by
// devices of type D. Concrete ports embed *Base[D] and implement WriteDMX
// and ReadDMX, overriding the capability methods where needed.
//
// The Base records its concrete port as self and hands that pointer to the
// bound universe, so concrete ports must be created and passed around by
// pointer. A copied port value would share the Base while reporting
// notifications as the original. Concrete ports embed NoCopy to have go vet
// flag such copies.
type Base[D ParentDevice] struct {
	portID   uint
	parent   D
	self     Port
	universe Universe
}

// NewBase creates the shared state for a port. self is the concrete port
// embedding the Base; it is what the bound universe sees on notification.
func NewBase[D ParentDevice](parent D, portID uint, self Port) *Base[D] {
	return &Base[D]{
		portID: portID,
		parent: parent,
		self:   self,
	}
}

// Parent returns the owning device with its concrete type.
func (b *Base[D]) Parent() D {
	return b.parent
}

// Device returns the owning device, or nil if none was set.
func (b *Base[D]) Device() Device {
	var zero D
	if b.parent == zero {
		return nil
	}
	return b.parent
}

// PortID returns the index of the port within its device.
func (b *Base[D]) PortID() uint {
	return b.portID
}

// UniqueID returns "<pluginID>-<deviceID>-<portID>". It is recomputed on
// every call so it tracks the device's current plugin.
func (b *Base[D]) UniqueID() (string, bool) {
	return UniqueID(b.Device(), b.portID)
}

// SetUniverse replaces the current binding. Neither the previous nor the
// new universe is notified.
func (b *Base[D]) SetUniverse(u Universe) bool {
	b.universe = u
	return true
}

// Universe returns the bound universe or nil.
func (b *Base[D]) Universe() Universe {
	return b.universe
}

// IsBound reports whether the port is bound to a universe.
func (b *Base[D]) IsBound() bool {
	return b.universe != nil
}

// DMXChanged forwards to the bound universe and returns its result.
// An unbound port always succeeds.
func (b *Base[D]) DMXChanged() bool {
	if b.universe == nil {
		return true
	}
	return b.universe.PortDataChanged(b.self)
}

// CanRead defaults to true.
func (b *Base[D]) CanRead() bool {
	return true
}

// CanWrite defaults to true.
func (b *Base[D]) CanWrite() bool {
	return true
}

// Description defaults to empty.
func (b *Base[D]) Description() string {
	return ""
}

// UniqueID builds the persistent identity of port portID on device d.
func UniqueID(d Device, portID uint) (string, bool) {
	if d == nil {
		return "", false
	}

	plugin := d.Owner()
	if plugin == nil {
		return "", false
	}

	return fmt.Sprintf("%d-%d-%d", uint8(plugin.ID()), d.DeviceID(), portID), true
}
