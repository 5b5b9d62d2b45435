package loopback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lla-project/llad/pkg/dmx"
	"github.com/lla-project/llad/pkg/patch"
	"github.com/lla-project/llad/pkg/plugin/plugintest"
	"github.com/lla-project/llad/pkg/port"
	"github.com/lla-project/llad/pkg/universe"
)

func start(t *testing.T, pairs int) (*Plugin, *plugintest.Adaptor) {
	t.Helper()
	a := plugintest.NewAdaptor()
	p := New(Options{Pairs: pairs})
	require.NoError(t, p.Start(context.Background(), a))
	t.Cleanup(func() { _ = p.Stop() })
	return p, a
}

func TestPorts(t *testing.T) {
	p, a := start(t, 2)
	require.Equal(t, 1, a.Devices.Count())

	d := p.Device()
	require.Equal(t, 2, d.Pairs())

	var ids []string
	for _, pt := range d.Ports() {
		uid, ok := pt.UniqueID()
		require.True(t, ok)
		ids = append(ids, uid)
	}
	assert.Equal(t, []string{"10-0-0", "10-0-1", "10-0-2", "10-0-3"}, ids)

	out, in := d.Output(1), d.Input(1)
	assert.Equal(t, uint(2), out.PortID())
	assert.Equal(t, uint(3), in.PortID())
	assert.False(t, out.CanRead())
	assert.True(t, out.CanWrite())
	assert.True(t, in.CanRead())
	assert.False(t, in.CanWrite())
	assert.Equal(t, "Loopback output 1", out.Description())
	assert.Equal(t, "Loopback input 1", in.Description())
}

func TestDuplicatePortPanics(t *testing.T) {
	d := newDevice(New(Options{}), 1)
	require.Equal(t, 2, d.PortCount())

	assert.Panics(t, func() { mustAddPort(d.Base, d.Input(0)) })
	assert.Equal(t, 2, d.PortCount())
}

func TestDefaultPairs(t *testing.T) {
	p, _ := start(t, 0)
	assert.Equal(t, DefaultPairs, p.Device().Pairs())
}

func TestStop(t *testing.T) {
	p, a := start(t, 1)
	require.NoError(t, p.Stop())
	assert.Equal(t, 0, a.Devices.Count())
	assert.Nil(t, p.Device())
	require.NoError(t, p.Stop())
}

func TestLoopbackBetweenUniverses(t *testing.T) {
	p, _ := start(t, 1)
	store := universe.NewStore()
	m := patch.NewManager(store, nil)

	d := p.Device()
	require.NoError(t, m.Patch(d.Output(0), 1))
	require.NoError(t, m.Patch(d.Input(0), 2))

	sink := &recordingPort{}
	sink.Base = port.NewBase[*Device](nil, 0, sink)
	u2 := store.Universe(2)
	require.NoError(t, u2.AddPort(sink))

	require.True(t, store.Universe(1).SetData(dmx.NewBuffer([]byte{4, 5, 6})))

	assert.Equal(t, []byte{4, 5, 6}, sink.buf.Data())
	data := u2.Data()
	assert.Equal(t, []byte{4, 5, 6}, data.Data())
	assert.Equal(t, 1, sink.writes)

	// The same frame again is not forwarded.
	store.Universe(1).SetData(dmx.NewBuffer([]byte{4, 5, 6}))
	assert.Equal(t, 1, sink.writes)
}

func TestBothEndsOnOneUniverse(t *testing.T) {
	p, _ := start(t, 1)
	store := universe.NewStore()
	m := patch.NewManager(store, nil)

	d := p.Device()
	require.NoError(t, m.Patch(d.Output(0), 1))
	require.NoError(t, m.Patch(d.Input(0), 1))

	assert.True(t, store.Universe(1).SetData(dmx.NewBuffer([]byte{1, 2})))
	frame := d.Input(0).ReadDMX()
	assert.Equal(t, []byte{1, 2}, frame.Data())
}

type recordingPort struct {
	*port.Base[*Device]
	buf    dmx.Buffer
	writes int
}

func (p *recordingPort) WriteDMX(buf *dmx.Buffer) bool {
	p.buf.SetFrom(buf)
	p.writes++
	return true
}

func (p *recordingPort) ReadDMX() dmx.Buffer { return p.buf }
