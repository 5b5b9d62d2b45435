package plugin

import (
	"context"
	"log/slog"

	"github.com/lla-project/llad/pkg/device"
	"github.com/lla-project/llad/pkg/port"
)

// Plugin is a family of devices.
type Plugin interface {
	port.Plugin

	// Name returns a human-readable name.
	Name() string

	// Description returns a longer description of the plugin.
	Description() string

	// Start creates and registers the plugin's devices. It is called on
	// the control loop; background work must go through a.Execute.
	Start(ctx context.Context, a Adaptor) error

	// Stop unregisters the plugin's devices and stops background work.
	Stop() error
}

// Adaptor is the daemon side of a plugin.
type Adaptor interface {
	// RegisterDevice makes a device and its ports available for patching.
	RegisterDevice(d device.Device) error

	// UnregisterDevice removes a device, releasing its ports.
	UnregisterDevice(d device.Device) error

	// Execute queues fn to run on the control loop. It never blocks.
	Execute(fn func())

	// Logger returns the plugin's logger.
	Logger() *slog.Logger
}

// PluginInfo describes a loaded plugin.
type PluginInfo struct {
	ID          uint8  `json:"id" cbor:"1,keyasint"`
	Name        string `json:"name" cbor:"2,keyasint"`
	Description string `json:"description,omitempty" cbor:"3,keyasint,omitempty"`
}

// Info returns the description of a plugin.
func Info(p Plugin) PluginInfo {
	return PluginInfo{
		ID:          uint8(p.ID()),
		Name:        p.Name(),
		Description: p.Description(),
	}
}
