package port

import (
	"github.com/lla-project/llad/pkg/dmx"
	"github.com/lla-project/llad/pkg/pluginid"
)

// Plugin is the part of a plugin a port depends on.
type Plugin interface {
	// ID returns the stable plugin identifier.
	ID() pluginid.ID
}

// Device is the part of a device a port depends on.
type Device interface {
	// Owner returns the plugin that manages the device, or nil.
	Owner() Plugin

	// DeviceID returns the device identifier assigned by its plugin.
	DeviceID() uint
}

// Universe receives change notifications from bound ports.
type Universe interface {
	// PortDataChanged is called when the data held by p may have changed.
	PortDataChanged(p Port) bool
}

// Port is the contract every port variant satisfies.
type Port interface {
	// Device returns the device this port belongs to.
	Device() Device

	// PortID returns the index of the port within its device.
	PortID() uint

	// UniqueID returns an identifier that is stable across restarts.
	// ok is false when the identity cannot be determined.
	UniqueID() (id string, ok bool)

	// SetUniverse binds the port to a universe, replacing any previous
	// binding. A nil universe unbinds the port.
	SetUniverse(u Universe) bool

	// Universe returns the bound universe or nil.
	Universe() Universe

	// DMXChanged signals the bound universe that the port's data changed.
	DMXChanged() bool

	// WriteDMX hands new frame data to the port. The buffer is only
	// borrowed for the duration of the call.
	WriteDMX(buf *dmx.Buffer) bool

	// ReadDMX returns the most recent frame held by the port.
	ReadDMX() dmx.Buffer

	// CanRead reports whether ReadDMX may be called.
	CanRead() bool

	// CanWrite reports whether WriteDMX may be called.
	CanWrite() bool

	// Description returns a short human-readable label.
	Description() string
}
