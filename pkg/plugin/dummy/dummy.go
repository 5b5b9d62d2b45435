// Package dummy provides a plugin with one virtual device for testing
// patching without hardware.
//
// The device has an output port that logs every frame it is sent, and an
// input port that can generate a chase pattern.
package dummy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lla-project/llad/pkg/device"
	"github.com/lla-project/llad/pkg/dmx"
	"github.com/lla-project/llad/pkg/plugin"
	"github.com/lla-project/llad/pkg/pluginid"
	"github.com/lla-project/llad/pkg/port"
)

// Port IDs on the dummy device.
const (
	OutputPortID uint = 0
	InputPortID  uint = 1
)

// DefaultInterval is the pattern step interval when none is configured.
const DefaultInterval = 100 * time.Millisecond

// Options configures the dummy plugin.
type Options struct {
	// Pattern enables the chase pattern on the input port.
	Pattern bool

	// Interval between pattern steps.
	Interval time.Duration
}

// Plugin is the dummy plugin.
type Plugin struct {
	opts    Options
	adaptor plugin.Adaptor
	device  *Device

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a dummy plugin.
func New(opts Options) *Plugin {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Plugin{opts: opts}
}

// Factory returns a plugin factory for the loader.
func Factory(opts Options) plugin.Factory {
	return func() plugin.Plugin { return New(opts) }
}

func (p *Plugin) ID() pluginid.ID { return pluginid.Dummy }
func (p *Plugin) Name() string    { return "Dummy" }

func (p *Plugin) Description() string {
	return "Dummy plugin: one device with a logging output port and a pattern generating input port."
}

// Device returns the plugin's device, nil when not started.
func (p *Plugin) Device() *Device {
	return p.device
}

// Start registers the device and starts the pattern generator.
func (p *Plugin) Start(ctx context.Context, a plugin.Adaptor) error {
	p.adaptor = a
	p.device = newDevice(p, a.Logger())
	if err := a.RegisterDevice(p.device); err != nil {
		p.device = nil
		return err
	}

	if p.opts.Pattern {
		ctx, p.cancel = context.WithCancel(ctx)
		p.wg.Add(1)
		go p.generate(ctx, p.device.Input())
	}
	return nil
}

// generate posts a new chase step onto the control loop every interval.
func (p *Plugin) generate(ctx context.Context, in *InputPort) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := Chase(step)
			step++
			p.adaptor.Execute(func() {
				in.Receive(&frame)
			})
		}
	}
}

// Stop stops the pattern generator and unregisters the device.
func (p *Plugin) Stop() error {
	if p.cancel != nil {
		p.cancel()
		p.wg.Wait()
		p.cancel = nil
	}
	if p.device == nil {
		return nil
	}

	d := p.device
	p.device = nil
	return p.adaptor.UnregisterDevice(d)
}

// Chase returns step n of the chase pattern: a full universe with a single
// channel at full, moving one channel per step.
func Chase(n int) dmx.Buffer {
	var frame dmx.Buffer
	data := make([]byte, dmx.UniverseSize)
	data[n%dmx.UniverseSize] = 255
	frame.Set(data)
	return frame
}

// Device is the dummy device.
type Device struct {
	*device.Base
	output *OutputPort
	input  *InputPort
}

func newDevice(owner port.Plugin, logger *slog.Logger) *Device {
	d := &Device{Base: device.NewBase(owner, 0, "Dummy Device")}

	d.output = &OutputPort{logger: logger}
	d.output.Base = port.NewBase(d, OutputPortID, d.output)
	d.input = &InputPort{}
	d.input.Base = port.NewBase(d, InputPortID, d.input)

	mustAddPort(d.Base, d.output)
	mustAddPort(d.Base, d.input)
	return d
}

// mustAddPort adds one of the device's fixed ports. Their IDs are distinct
// constants, so an error is a programming error.
func mustAddPort(d *device.Base, p port.Port) {
	if err := d.AddPort(p); err != nil {
		panic(fmt.Sprintf("dummy: adding port %d: %v", p.PortID(), err))
	}
}

// Output returns the output port.
func (d *Device) Output() *OutputPort { return d.output }

// Input returns the input port.
func (d *Device) Input() *InputPort { return d.input }

// OutputPort logs the frames it is sent.
type OutputPort struct {
	_ port.NoCopy
	*port.Base[*Device]
	last   dmx.Buffer
	logger *slog.Logger
}

// WriteDMX records and logs the frame.
func (p *OutputPort) WriteDMX(buf *dmx.Buffer) bool {
	p.last.SetFrom(buf)

	uid, _ := p.UniqueID()
	p.logger.Debug("dummy output", "port", uid, "size", p.last.Size(), "frame", p.last.String())
	return true
}

// ReadDMX returns the last frame written.
func (p *OutputPort) ReadDMX() dmx.Buffer { return p.last }

func (p *OutputPort) CanRead() bool       { return false }
func (p *OutputPort) Description() string { return "Dummy output" }

// InputPort feeds frames into its universe.
type InputPort struct {
	_ port.NoCopy
	*port.Base[*Device]
	frame dmx.Buffer
}

// Receive stores a frame and notifies the universe.
func (p *InputPort) Receive(buf *dmx.Buffer) bool {
	p.frame.SetFrom(buf)
	return p.DMXChanged()
}

// WriteDMX refuses frames: this is an input-only port.
func (p *InputPort) WriteDMX(*dmx.Buffer) bool { return false }

// ReadDMX returns the last received frame.
func (p *InputPort) ReadDMX() dmx.Buffer { return p.frame }

func (p *InputPort) CanWrite() bool      { return false }
func (p *InputPort) Description() string { return "Dummy input" }

var (
	_ plugin.Plugin = (*Plugin)(nil)
	_ device.Device = (*Device)(nil)
	_ port.Port     = (*OutputPort)(nil)
	_ port.Port     = (*InputPort)(nil)
)
