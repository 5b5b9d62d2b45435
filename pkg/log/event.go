package log

import (
	"strings"
	"time"

	"github.com/lla-project/llad/pkg/dmx"
)

// Event is a single logged occurrence.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the daemon run (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"3,keyasint"`

	// PortID is the unique ID of the port involved, if any.
	PortID string `cbor:"4,keyasint,omitempty"`

	// UniverseID is the universe involved, if any.
	UniverseID uint `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Binding *BindingEvent   `cbor:"10,keyasint,omitempty"`
	DMX     *DMXEvent       `cbor:"11,keyasint,omitempty"`
	Device  *DeviceEvent    `cbor:"12,keyasint,omitempty"`
	Error   *ErrorEventData `cbor:"13,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	CategoryBinding Category = 0
	CategoryDMX     Category = 1
	CategoryDevice  Category = 2
	CategoryError   Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryBinding:
		return "BINDING"
	case CategoryDMX:
		return "DMX"
	case CategoryDevice:
		return "DEVICE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory returns the category with the given name (case-insensitive).
func ParseCategory(name string) (Category, bool) {
	for _, c := range []Category{CategoryBinding, CategoryDMX, CategoryDevice, CategoryError} {
		if strings.EqualFold(c.String(), name) {
			return c, true
		}
	}
	return 0, false
}

// BindingAction is what happened to a port binding.
type BindingAction uint8

const (
	BindingPatch   BindingAction = 0
	BindingUnpatch BindingAction = 1
	BindingRestore BindingAction = 2
)

// String returns the action name.
func (a BindingAction) String() string {
	switch a {
	case BindingPatch:
		return "PATCH"
	case BindingUnpatch:
		return "UNPATCH"
	case BindingRestore:
		return "RESTORE"
	default:
		return "UNKNOWN"
	}
}

// BindingEvent records a port being bound to or released from a universe.
type BindingEvent struct {
	Action BindingAction `cbor:"1,keyasint"`

	// Previous is the universe the port was bound to before, 0 for none.
	Previous uint `cbor:"2,keyasint,omitempty"`
}

// Direction indicates frame flow relative to the universe.
type Direction uint8

const (
	// DirectionIn is a port reporting new data to its universe.
	DirectionIn Direction = 0
	// DirectionOut is a universe writing a frame to a port.
	DirectionOut Direction = 1
	// DirectionClient is a client writing a frame to a universe.
	DirectionClient Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// DMXEvent records a frame moving between a port and a universe.
type DMXEvent struct {
	Direction Direction  `cbor:"1,keyasint"`
	Frame     dmx.Buffer `cbor:"2,keyasint"`
	OK        bool       `cbor:"3,keyasint"`
}

// DeviceAction is what happened to a device.
type DeviceAction uint8

const (
	DeviceRegistered   DeviceAction = 0
	DeviceUnregistered DeviceAction = 1
)

// String returns the action name.
func (a DeviceAction) String() string {
	switch a {
	case DeviceRegistered:
		return "REGISTERED"
	case DeviceUnregistered:
		return "UNREGISTERED"
	default:
		return "UNKNOWN"
	}
}

// DeviceEvent records a device registration change.
type DeviceEvent struct {
	Action   DeviceAction `cbor:"1,keyasint"`
	PluginID uint8        `cbor:"2,keyasint"`
	DeviceID uint         `cbor:"3,keyasint"`
	Name     string       `cbor:"4,keyasint,omitempty"`
	Ports    int          `cbor:"5,keyasint"`
}

// ErrorEventData records a failure.
type ErrorEventData struct {
	Message string `cbor:"1,keyasint"`
	Context string `cbor:"2,keyasint,omitempty"`
}
