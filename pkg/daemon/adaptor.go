package daemon

import (
	"errors"
	"log/slog"

	"github.com/lla-project/llad/pkg/device"
	"github.com/lla-project/llad/pkg/log"
	"github.com/lla-project/llad/pkg/patch"
	"github.com/lla-project/llad/pkg/plugin"
)

// pluginAdaptor is the daemon as seen by one plugin.
type pluginAdaptor struct {
	d      *Daemon
	logger *slog.Logger
}

func (d *Daemon) adaptorFor(p plugin.Plugin) plugin.Adaptor {
	return &pluginAdaptor{
		d:      d,
		logger: d.logger.With("plugin", p.Name()),
	}
}

func (a *pluginAdaptor) RegisterDevice(dev device.Device) error {
	return a.d.devices.Register(dev)
}

func (a *pluginAdaptor) UnregisterDevice(dev device.Device) error {
	return a.d.devices.Unregister(dev)
}

func (a *pluginAdaptor) Execute(fn func()) {
	a.d.Execute(fn)
}

func (a *pluginAdaptor) Logger() *slog.Logger {
	return a.logger
}

// deviceRegistered restores the saved bindings of a new device's ports.
func (d *Daemon) deviceRegistered(dev device.Device) {
	restored := 0
	for _, p := range dev.Ports() {
		ok, err := d.patches.Restore(p)
		if err != nil {
			uid, _ := p.UniqueID()
			d.logger.Warn("failed to restore port binding", "port", uid, "error", err)
			continue
		}
		if ok {
			restored++
		}
	}

	d.logDeviceEvent(dev, log.DeviceRegistered)
	d.logger.Info("device registered",
		"device", dev.Name(),
		"plugin", dev.Owner().ID().String(),
		"ports", len(dev.Ports()),
		"restored", restored)
}

// deviceUnregistered releases a removed device's ports, keeping their
// bindings for when the device comes back, and stops the device.
func (d *Daemon) deviceUnregistered(dev device.Device) {
	for _, p := range dev.Ports() {
		err := d.patches.Release(p)
		if err != nil && !errors.Is(err, patch.ErrNotPatched) {
			uid, _ := p.UniqueID()
			d.logger.Warn("failed to release port", "port", uid, "error", err)
		}
	}
	d.universes.GarbageCollect()

	if err := dev.Stop(); err != nil {
		d.logger.Warn("device failed to stop", "device", dev.Name(), "error", err)
	}

	d.logDeviceEvent(dev, log.DeviceUnregistered)
	d.logger.Info("device unregistered", "device", dev.Name(), "plugin", dev.Owner().ID().String())
}

func (d *Daemon) logDeviceEvent(dev device.Device, action log.DeviceAction) {
	d.metrics.SetDevices(d.devices.Count())
	d.events.Log(log.Event{
		Category: log.CategoryDevice,
		Device: &log.DeviceEvent{
			Action:   action,
			PluginID: uint8(dev.Owner().ID()),
			DeviceID: dev.DeviceID(),
			Name:     dev.Name(),
			Ports:    len(dev.Ports()),
		},
	})
}

var _ plugin.Adaptor = (*pluginAdaptor)(nil)
