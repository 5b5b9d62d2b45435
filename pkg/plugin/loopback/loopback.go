// Package loopback provides a plugin whose device connects output ports
// back to input ports, so frames sent to one universe can be fed into
// another.
//
// Pair i consists of output port 2i and input port 2i+1. A frame written to
// the output is handed to the paired input, which notifies its universe
// only when the frame differs from the one it already holds.
package loopback

import (
	"context"
	"fmt"

	"github.com/lla-project/llad/pkg/device"
	"github.com/lla-project/llad/pkg/dmx"
	"github.com/lla-project/llad/pkg/plugin"
	"github.com/lla-project/llad/pkg/pluginid"
	"github.com/lla-project/llad/pkg/port"
)

// DefaultPairs is the number of port pairs when none is configured.
const DefaultPairs = 1

// Options configures the loopback plugin.
type Options struct {
	// Pairs is the number of output/input port pairs.
	Pairs int
}

// Plugin is the loopback plugin.
type Plugin struct {
	opts    Options
	adaptor plugin.Adaptor
	device  *Device
}

// New creates a loopback plugin.
func New(opts Options) *Plugin {
	if opts.Pairs <= 0 {
		opts.Pairs = DefaultPairs
	}
	return &Plugin{opts: opts}
}

// Factory returns a plugin factory for the loader.
func Factory(opts Options) plugin.Factory {
	return func() plugin.Plugin { return New(opts) }
}

func (p *Plugin) ID() pluginid.ID { return pluginid.Loopback }
func (p *Plugin) Name() string    { return "Loopback" }

func (p *Plugin) Description() string {
	return fmt.Sprintf("Loopback plugin: %d output ports feeding paired input ports.", p.opts.Pairs)
}

// Device returns the plugin's device, nil when not started.
func (p *Plugin) Device() *Device {
	return p.device
}

// Start registers the loopback device.
func (p *Plugin) Start(_ context.Context, a plugin.Adaptor) error {
	p.adaptor = a
	d := newDevice(p, p.opts.Pairs)
	if err := a.RegisterDevice(d); err != nil {
		return err
	}
	p.device = d
	return nil
}

// Stop unregisters the device.
func (p *Plugin) Stop() error {
	if p.device == nil {
		return nil
	}
	d := p.device
	p.device = nil
	return p.adaptor.UnregisterDevice(d)
}

// Device is the loopback device.
type Device struct {
	*device.Base
	outputs []*OutputPort
}

func newDevice(owner port.Plugin, pairs int) *Device {
	d := &Device{Base: device.NewBase(owner, 0, "Loopback Device")}

	for i := range pairs {
		in := &InputPort{pair: i}
		in.Base = port.NewBase(d, uint(2*i+1), in)

		out := &OutputPort{pair: i, peer: in}
		out.Base = port.NewBase(d, uint(2*i), out)

		mustAddPort(d.Base, out)
		mustAddPort(d.Base, in)
		d.outputs = append(d.outputs, out)
	}
	return d
}

// mustAddPort adds a port whose ID newDevice assigned. The IDs are unique
// by construction, so an error is a programming error.
func mustAddPort(d *device.Base, p port.Port) {
	if err := d.AddPort(p); err != nil {
		panic(fmt.Sprintf("loopback: adding port %d: %v", p.PortID(), err))
	}
}

// Pairs returns the number of port pairs.
func (d *Device) Pairs() int {
	return len(d.outputs)
}

// Output returns the output port of pair i.
func (d *Device) Output(i int) *OutputPort {
	return d.outputs[i]
}

// Input returns the input port of pair i.
func (d *Device) Input(i int) *InputPort {
	return d.outputs[i].peer
}

// OutputPort hands written frames to its paired input port.
type OutputPort struct {
	_ port.NoCopy
	*port.Base[*Device]
	pair int
	peer *InputPort
}

// WriteDMX passes the frame to the paired input.
func (p *OutputPort) WriteDMX(buf *dmx.Buffer) bool {
	p.peer.receive(buf)
	return true
}

// ReadDMX returns the frame held by the paired input.
func (p *OutputPort) ReadDMX() dmx.Buffer { return p.peer.frame }

func (p *OutputPort) CanRead() bool { return false }

func (p *OutputPort) Description() string {
	return fmt.Sprintf("Loopback output %d", p.pair)
}

// InputPort reports frames looped back from its paired output.
type InputPort struct {
	_ port.NoCopy
	*port.Base[*Device]
	pair  int
	frame dmx.Buffer
}

func (p *InputPort) receive(buf *dmx.Buffer) {
	if p.frame.Equal(buf) {
		return
	}
	p.frame.SetFrom(buf)
	p.DMXChanged()
}

// WriteDMX refuses frames: this is an input-only port.
func (p *InputPort) WriteDMX(*dmx.Buffer) bool { return false }

// ReadDMX returns the last looped back frame.
func (p *InputPort) ReadDMX() dmx.Buffer { return p.frame }

func (p *InputPort) CanWrite() bool { return false }

func (p *InputPort) Description() string {
	return fmt.Sprintf("Loopback input %d", p.pair)
}

var (
	_ plugin.Plugin = (*Plugin)(nil)
	_ device.Device = (*Device)(nil)
	_ port.Port     = (*OutputPort)(nil)
	_ port.Port     = (*InputPort)(nil)
)
