package daemon

import (
	"context"

	"github.com/lla-project/llad/pkg/device"
	"github.com/lla-project/llad/pkg/dmx"
	"github.com/lla-project/llad/pkg/plugin"
	"github.com/lla-project/llad/pkg/pluginid"
	"github.com/lla-project/llad/pkg/port"
	"github.com/lla-project/llad/pkg/universe"
)

// UniverseInfo describes a universe.
type UniverseInfo struct {
	ID    uint     `json:"id" cbor:"1,keyasint"`
	Name  string   `json:"name" cbor:"2,keyasint"`
	Ports []string `json:"ports,omitempty" cbor:"3,keyasint,omitempty"`
	Size  int      `json:"size" cbor:"4,keyasint"`
}

func universeInfo(u *universe.Universe) UniverseInfo {
	info := UniverseInfo{ID: u.ID(), Name: u.Name()}
	for _, p := range u.Ports() {
		uid, _ := p.UniqueID()
		info.Ports = append(info.Ports, uid)
	}
	data := u.Data()
	info.Size = data.Size()
	return info
}

func (d *Daemon) findPort(pluginID pluginid.ID, deviceID, portID uint) (port.Port, error) {
	dev, err := d.devices.Device(pluginID, deviceID)
	if err != nil {
		return nil, err
	}
	for _, p := range dev.Ports() {
		if p.PortID() == portID {
			return p, nil
		}
	}
	return nil, device.ErrPortNotFound
}

// Patch binds a port to a universe, creating the universe if needed.
func (d *Daemon) Patch(ctx context.Context, pluginID pluginid.ID, deviceID, portID, universeID uint) error {
	return d.Do(ctx, func() error {
		p, err := d.findPort(pluginID, deviceID, portID)
		if err != nil {
			return err
		}
		if err := d.patches.Patch(p, universeID); err != nil {
			return err
		}
		d.saveState()
		return nil
	})
}

// Unpatch releases a port from its universe and forgets the binding.
func (d *Daemon) Unpatch(ctx context.Context, pluginID pluginid.ID, deviceID, portID uint) error {
	return d.Do(ctx, func() error {
		p, err := d.findPort(pluginID, deviceID, portID)
		if err != nil {
			return err
		}
		if err := d.patches.Unpatch(p); err != nil {
			return err
		}
		d.saveState()
		return nil
	})
}

// SetUniverseName renames an existing universe.
func (d *Daemon) SetUniverseName(ctx context.Context, universeID uint, name string) error {
	return d.Do(ctx, func() error {
		u := d.universes.Universe(universeID)
		if u == nil {
			return universe.ErrUniverseNotFound
		}
		u.SetName(name)
		d.saveState()
		return nil
	})
}

// SendDMX sets a universe's frame and writes it to the universe's output
// ports. It returns ErrSendFailed if any port refused the frame.
func (d *Daemon) SendDMX(ctx context.Context, universeID uint, buf *dmx.Buffer) error {
	var frame dmx.Buffer
	frame.SetFrom(buf)

	return d.Do(ctx, func() error {
		u := d.universes.Universe(universeID)
		if u == nil {
			return universe.ErrUniverseNotFound
		}
		if !u.SetData(&frame) {
			return ErrSendFailed
		}
		return nil
	})
}

// ReadDMX returns a universe's current frame.
func (d *Daemon) ReadDMX(ctx context.Context, universeID uint) (dmx.Buffer, error) {
	var frame dmx.Buffer
	err := d.Do(ctx, func() error {
		u := d.universes.Universe(universeID)
		if u == nil {
			return universe.ErrUniverseNotFound
		}
		frame = u.Data()
		return nil
	})
	if err != nil {
		return dmx.Buffer{}, err
	}
	return frame, nil
}

// PluginInfo describes the running plugins.
func (d *Daemon) PluginInfo(ctx context.Context) ([]plugin.PluginInfo, error) {
	var infos []plugin.PluginInfo
	err := d.Do(ctx, func() error {
		for _, p := range d.plugins {
			infos = append(infos, plugin.Info(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// DeviceInfo describes the registered devices of a plugin, or of all
// plugins for pluginid.All.
func (d *Daemon) DeviceInfo(ctx context.Context, filter pluginid.ID) ([]*device.DeviceInfo, error) {
	var infos []*device.DeviceInfo
	err := d.Do(ctx, func() error {
		for _, dev := range d.devices.DevicesOf(filter) {
			infos = append(infos, device.Info(dev))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// PortInfo describes the ports of one device.
func (d *Daemon) PortInfo(ctx context.Context, pluginID pluginid.ID, deviceID uint) ([]port.PortInfo, error) {
	var infos []port.PortInfo
	err := d.Do(ctx, func() error {
		dev, err := d.devices.Device(pluginID, deviceID)
		if err != nil {
			return err
		}
		for _, p := range dev.Ports() {
			infos = append(infos, port.Info(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// UniverseInfo describes all universes.
func (d *Daemon) UniverseInfo(ctx context.Context) ([]UniverseInfo, error) {
	var infos []UniverseInfo
	err := d.Do(ctx, func() error {
		for _, u := range d.universes.All() {
			infos = append(infos, universeInfo(u))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// ReloadPlugins stops all plugins and starts the enabled ones again.
// Devices that come back get their bindings restored. The plugins run
// under the context given to Init.
func (d *Daemon) ReloadPlugins(ctx context.Context) error {
	return d.Do(ctx, func() error {
		if err := d.stopPlugins(); err != nil {
			d.logger.Warn("errors while stopping plugins", "error", err)
		}
		return d.startPlugins(d.ctx)
	})
}
