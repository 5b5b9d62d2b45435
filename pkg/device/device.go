package device

import (
	"errors"
	"slices"

	"github.com/lla-project/llad/pkg/port"
)

// Device errors.
var (
	ErrDuplicatePort = errors.New("duplicate port ID")
	ErrPortNotFound  = errors.New("port not found")
)

// Device is a hardware or virtual entity owning one or more ports.
type Device interface {
	port.Device

	// Name returns a human-readable device name.
	Name() string

	// Ports returns the device's ports ordered by port ID.
	Ports() []port.Port

	// Stop releases the device's resources. Called once, after the device
	// was unregistered.
	Stop() error
}

// Base holds the state shared by all devices. Drivers embed *Base and add
// their ports with AddPort.
type Base struct {
	owner    port.Plugin
	deviceID uint
	name     string
	ports    []port.Port
}

// NewBase creates the shared state for a device owned by owner.
func NewBase(owner port.Plugin, deviceID uint, name string) *Base {
	return &Base{
		owner:    owner,
		deviceID: deviceID,
		name:     name,
	}
}

// Owner returns the plugin owning the device, or nil.
func (b *Base) Owner() port.Plugin {
	return b.owner
}

// DeviceID returns the plugin-assigned device identifier.
func (b *Base) DeviceID() uint {
	return b.deviceID
}

// Name returns the device name.
func (b *Base) Name() string {
	return b.name
}

// AddPort adds a port to the device.
// Returns ErrDuplicatePort if a port with the same ID already exists.
func (b *Base) AddPort(p port.Port) error {
	for _, existing := range b.ports {
		if existing.PortID() == p.PortID() {
			return ErrDuplicatePort
		}
	}

	b.ports = append(b.ports, p)
	slices.SortFunc(b.ports, func(a, c port.Port) int {
		return int(a.PortID()) - int(c.PortID())
	})
	return nil
}

// Ports returns the device's ports ordered by port ID.
func (b *Base) Ports() []port.Port {
	return slices.Clone(b.ports)
}

// Port returns a port by ID.
func (b *Base) Port(id uint) (port.Port, error) {
	for _, p := range b.ports {
		if p.PortID() == id {
			return p, nil
		}
	}
	return nil, ErrPortNotFound
}

// PortCount returns the number of ports.
func (b *Base) PortCount() int {
	return len(b.ports)
}

// Stop is a no-op by default.
func (b *Base) Stop() error {
	return nil
}

// DeviceInfo is a snapshot of a device for status reporting.
type DeviceInfo struct {
	PluginID uint8           `json:"plugin_id" cbor:"1,keyasint"`
	DeviceID uint            `json:"device_id" cbor:"2,keyasint"`
	Name     string          `json:"name" cbor:"3,keyasint"`
	Ports    []port.PortInfo `json:"ports" cbor:"4,keyasint"`
}

// Info returns a snapshot of d.
func Info(d Device) *DeviceInfo {
	ports := d.Ports()
	info := &DeviceInfo{
		DeviceID: d.DeviceID(),
		Name:     d.Name(),
		Ports:    make([]port.PortInfo, 0, len(ports)),
	}
	if owner := d.Owner(); owner != nil {
		info.PluginID = uint8(owner.ID())
	}
	for _, p := range ports {
		info.Ports = append(info.Ports, port.Info(p))
	}
	return info
}
