package dummy

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lla-project/llad/pkg/dmx"
	"github.com/lla-project/llad/pkg/plugin/plugintest"
	"github.com/lla-project/llad/pkg/pluginid"
	"github.com/lla-project/llad/pkg/port"
	"github.com/lla-project/llad/pkg/universe"
)

func TestStartStop(t *testing.T) {
	a := plugintest.NewAdaptor()
	p := New(Options{})

	require.NoError(t, p.Start(context.Background(), a))
	require.Equal(t, 1, a.Devices.Count())

	d, err := a.Devices.Device(pluginid.Dummy, 0)
	require.NoError(t, err)
	assert.Equal(t, "Dummy Device", d.Name())

	ports := d.Ports()
	require.Len(t, ports, 2)

	out, in := ports[0], ports[1]
	uid, ok := out.UniqueID()
	require.True(t, ok)
	assert.Equal(t, "1-0-0", uid)
	assert.False(t, out.CanRead())
	assert.True(t, out.CanWrite())

	uid, _ = in.UniqueID()
	assert.Equal(t, "1-0-1", uid)
	assert.True(t, in.CanRead())
	assert.False(t, in.CanWrite())

	require.NoError(t, p.Stop())
	assert.Equal(t, 0, a.Devices.Count())
	assert.Nil(t, p.Device())

	// Stopping twice is harmless.
	require.NoError(t, p.Stop())
}

func TestDuplicatePortPanics(t *testing.T) {
	d := newDevice(New(Options{}), slog.New(slog.DiscardHandler))
	require.Equal(t, 2, d.PortCount())

	assert.Panics(t, func() { mustAddPort(d.Base, d.Output()) })
	assert.Equal(t, 2, d.PortCount())
}

func TestPortsCarryNoCopy(t *testing.T) {
	noCopy := reflect.TypeFor[port.NoCopy]()
	assert.True(t, reflect.PointerTo(noCopy).Implements(reflect.TypeFor[sync.Locker]()))

	for _, typ := range []reflect.Type{reflect.TypeFor[OutputPort](), reflect.TypeFor[InputPort]()} {
		t.Run(typ.Name(), func(t *testing.T) {
			found := false
			for i := range typ.NumField() {
				if typ.Field(i).Type == noCopy {
					found = true
				}
			}
			assert.True(t, found)
		})
	}
}

func TestOutputPort(t *testing.T) {
	a := plugintest.NewAdaptor()
	p := New(Options{})
	require.NoError(t, p.Start(context.Background(), a))
	defer p.Stop()

	buf := dmx.NewBuffer([]byte{1, 2, 3})
	out := p.Device().Output()
	assert.True(t, out.WriteDMX(buf))

	frame := out.ReadDMX()
	assert.True(t, frame.Equal(buf))
	assert.Equal(t, "Dummy output", out.Description())
}

func TestInputPortFeedsUniverse(t *testing.T) {
	a := plugintest.NewAdaptor()
	p := New(Options{})
	require.NoError(t, p.Start(context.Background(), a))
	defer p.Stop()

	d := p.Device()
	u := universe.New(1, "test", nil, nil)
	for _, pt := range d.Ports() {
		require.NoError(t, u.AddPort(pt))
		pt.SetUniverse(u)
	}

	in := d.Input()
	assert.False(t, in.WriteDMX(dmx.NewBuffer([]byte{1})))

	assert.True(t, in.Receive(dmx.NewBuffer([]byte{10, 20})))
	data := u.Data()
	assert.Equal(t, []byte{10, 20}, data.Data())

	last := d.Output().ReadDMX()
	assert.Equal(t, []byte{10, 20}, last.Data())
}

func TestInputPortUnbound(t *testing.T) {
	a := plugintest.NewAdaptor()
	p := New(Options{})
	require.NoError(t, p.Start(context.Background(), a))
	defer p.Stop()

	assert.True(t, p.Device().Input().Receive(dmx.NewBuffer([]byte{5})))
}

func TestPattern(t *testing.T) {
	a := plugintest.NewAdaptor()
	p := New(Options{Pattern: true, Interval: time.Millisecond})
	require.NoError(t, p.Start(context.Background(), a))

	require.True(t, a.WaitQueued(time.Second))
	in := p.Device().Input()
	require.NoError(t, p.Stop())

	// Work posted before Stop still runs on the loop.
	assert.Positive(t, a.RunPending())
	frame := in.ReadDMX()
	assert.Equal(t, dmx.UniverseSize, frame.Size())
	assert.Contains(t, frame.Data(), byte(255))
}

func TestChase(t *testing.T) {
	for _, n := range []int{0, 1, 511, 512, 513} {
		frame := Chase(n)
		require.Equal(t, dmx.UniverseSize, frame.Size())

		data := frame.Data()
		lit := 0
		for i, v := range data {
			if v != 0 {
				lit++
				assert.Equal(t, n%dmx.UniverseSize, i)
				assert.Equal(t, byte(255), v)
			}
		}
		assert.Equal(t, 1, lit)
	}
}

func TestDefaults(t *testing.T) {
	p := New(Options{})
	assert.Equal(t, DefaultInterval, p.opts.Interval)
	assert.Equal(t, pluginid.Dummy, p.ID())
	assert.Equal(t, "Dummy", p.Name())
	assert.NotEmpty(t, p.Description())
}
