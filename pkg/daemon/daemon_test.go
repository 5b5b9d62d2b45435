package daemon

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lla-project/llad/pkg/config"
	"github.com/lla-project/llad/pkg/device"
	"github.com/lla-project/llad/pkg/dmx"
	"github.com/lla-project/llad/pkg/log"
	"github.com/lla-project/llad/pkg/metrics"
	"github.com/lla-project/llad/pkg/patch"
	"github.com/lla-project/llad/pkg/plugin"
	"github.com/lla-project/llad/pkg/pluginid"
	"github.com/lla-project/llad/pkg/port"
	"github.com/lla-project/llad/pkg/universe"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.State.Path = filepath.Join(t.TempDir(), "state.json")
	return cfg
}

// start initialises d and runs it until the test ends.
func start(t *testing.T, d *Daemon) {
	t.Helper()
	require.NoError(t, d.Init(context.Background()))

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(context.Background()) }()

	t.Cleanup(func() {
		d.Terminate()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})
}

func newRunning(t *testing.T, cfg *config.Config, opts ...Option) *Daemon {
	t.Helper()
	d, err := New(cfg, opts...)
	require.NoError(t, err)
	start(t, d)
	return d
}

// stop terminates d and waits for the shutdown to finish.
func stop(t *testing.T, d *Daemon) {
	t.Helper()
	d.Terminate()
	select {
	case <-d.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	d, err := New(testConfig(t))
	require.NoError(t, err)
	assert.Equal(t, StateIdle, d.State())
	assert.NotEmpty(t, d.Session())

	assert.ErrorIs(t, d.Run(ctx), ErrNotStarted)

	start(t, d)
	assert.Equal(t, StateRunning, d.State())
	assert.ErrorIs(t, d.Init(ctx), ErrAlreadyStarted)

	stop(t, d)
	assert.Equal(t, StateStopped, d.State())
	assert.ErrorIs(t, d.Do(ctx, func() error { return nil }), ErrStopped)
	assert.ErrorIs(t, d.Run(ctx), ErrStopped)

	// Execute after shutdown is dropped silently.
	d.Execute(func() { t.Error("executed after shutdown") })
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Loopback.Pairs = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRunStopsOnContext(t *testing.T) {
	d, err := New(testConfig(t))
	require.NoError(t, err)
	require.NoError(t, d.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.Equal(t, StateStopped, d.State())
}

func TestDoHonoursContext(t *testing.T) {
	// Not running: the work stays queued until the caller gives up.
	d, err := New(testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Do(ctx, func() error { return nil }), context.DeadlineExceeded)
}

// blockLoop holds the control loop until the returned func is called.
func blockLoop(t *testing.T, d *Daemon) func() {
	t.Helper()
	entered := make(chan struct{})
	release := make(chan struct{})
	d.Execute(func() {
		close(entered)
		<-release
	})
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("control loop did not pick up work")
	}

	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	t.Cleanup(unblock)
	return unblock
}

func TestTimedOutCallsDoNotRun(t *testing.T) {
	t.Run("ReadDMX", func(t *testing.T) {
		d := newRunning(t, testConfig(t))
		require.NoError(t, d.Patch(context.Background(), pluginid.Dummy, 0, 0, 1))

		unblock := blockLoop(t, d)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		frame, err := d.ReadDMX(ctx, 1)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, frame.Size())
		unblock()

		// The abandoned read must not touch the returned frame.
		_, err = d.UniverseInfo(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, frame.Size())
	})

	t.Run("Patch", func(t *testing.T) {
		d := newRunning(t, testConfig(t))

		unblock := blockLoop(t, d)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := d.Patch(ctx, pluginid.Dummy, 0, 0, 9)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		unblock()

		universes, err := d.UniverseInfo(context.Background())
		require.NoError(t, err)
		assert.Empty(t, universes)

		ports, err := d.PortInfo(context.Background(), pluginid.Dummy, 0)
		require.NoError(t, err)
		assert.False(t, ports[0].Bound)
	})

	t.Run("SetUniverseName", func(t *testing.T) {
		d := newRunning(t, testConfig(t))
		require.NoError(t, d.Patch(context.Background(), pluginid.Dummy, 0, 0, 3))

		unblock := blockLoop(t, d)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, d.SetUniverseName(ctx, 3, "Stage"), context.DeadlineExceeded)
		unblock()

		universes, err := d.UniverseInfo(context.Background())
		require.NoError(t, err)
		require.Len(t, universes, 1)
		assert.Equal(t, "Universe 3", universes[0].Name)
	})

	t.Run("CancelledBeforeLoopRuns", func(t *testing.T) {
		d := newRunning(t, testConfig(t))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ran := false
		err := d.Do(ctx, func() error {
			ran = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		// Flush the loop before reading ran.
		require.NoError(t, d.Do(context.Background(), func() error { return nil }))
		assert.False(t, ran)
	})
}

func TestInfo(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Loopback.Pairs = 2
	d := newRunning(t, cfg)

	plugins, err := d.PluginInfo(ctx)
	require.NoError(t, err)
	require.Len(t, plugins, 2)
	assert.Equal(t, "Dummy", plugins[0].Name)
	assert.Equal(t, uint8(pluginid.Loopback), plugins[1].ID)

	devices, err := d.DeviceInfo(ctx, pluginid.All)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "Dummy Device", devices[0].Name)
	assert.Len(t, devices[1].Ports, 4)

	devices, err = d.DeviceInfo(ctx, pluginid.Loopback)
	require.NoError(t, err)
	require.Len(t, devices, 1)

	ports, err := d.PortInfo(ctx, pluginid.Dummy, 0)
	require.NoError(t, err)
	require.Len(t, ports, 2)
	assert.Equal(t, "1-0-0", ports[0].UniqueID)
	assert.False(t, ports[0].CanRead)
	assert.False(t, ports[1].CanWrite)

	_, err = d.PortInfo(ctx, pluginid.ArtNet, 0)
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)

	universes, err := d.UniverseInfo(ctx)
	require.NoError(t, err)
	assert.Empty(t, universes)
}

func TestPatchAndDMX(t *testing.T) {
	ctx := context.Background()
	d := newRunning(t, testConfig(t))

	// Universe 1 -> loopback -> universe 2 -> dummy output.
	require.NoError(t, d.Patch(ctx, pluginid.Loopback, 0, 0, 1))
	require.NoError(t, d.Patch(ctx, pluginid.Loopback, 0, 1, 2))
	require.NoError(t, d.Patch(ctx, pluginid.Dummy, 0, 0, 2))

	require.NoError(t, d.SendDMX(ctx, 1, dmx.NewBuffer([]byte{1, 2, 3})))

	frame, err := d.ReadDMX(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, frame.Data())

	universes, err := d.UniverseInfo(ctx)
	require.NoError(t, err)
	require.Len(t, universes, 2)
	assert.Equal(t, UniverseInfo{ID: 1, Name: "Universe 1", Ports: []string{"10-0-0"}, Size: 3}, universes[0])
	assert.Equal(t, []string{"10-0-1", "1-0-0"}, universes[1].Ports)

	ports, err := d.PortInfo(ctx, pluginid.Dummy, 0)
	require.NoError(t, err)
	assert.True(t, ports[0].Bound)
	assert.Equal(t, uint(2), ports[0].UniverseID)

	require.NoError(t, d.Unpatch(ctx, pluginid.Loopback, 0, 0))
	universes, err = d.UniverseInfo(ctx)
	require.NoError(t, err)
	require.Len(t, universes, 1)
	assert.Equal(t, uint(2), universes[0].ID)
}

func TestPatchErrors(t *testing.T) {
	ctx := context.Background()
	d := newRunning(t, testConfig(t))

	assert.ErrorIs(t, d.Patch(ctx, pluginid.ArtNet, 0, 0, 1), device.ErrDeviceNotFound)
	assert.ErrorIs(t, d.Patch(ctx, pluginid.Dummy, 0, 9, 1), device.ErrPortNotFound)
	assert.ErrorIs(t, d.Patch(ctx, pluginid.Dummy, 0, 0, 0), universe.ErrInvalidUniverseID)
	assert.ErrorIs(t, d.Unpatch(ctx, pluginid.Dummy, 0, 0), patch.ErrNotPatched)
	assert.ErrorIs(t, d.SendDMX(ctx, 5, dmx.NewBuffer([]byte{1})), universe.ErrUniverseNotFound)
	assert.ErrorIs(t, d.SetUniverseName(ctx, 5, "x"), universe.ErrUniverseNotFound)

	_, err := d.ReadDMX(ctx, 5)
	assert.ErrorIs(t, err, universe.ErrUniverseNotFound)
}

func TestRestartRestoresBindings(t *testing.T) {
	backends := map[string]func(t *testing.T) config.StateConfig{
		"file": func(t *testing.T) config.StateConfig {
			return config.StateConfig{Backend: config.BackendFile, Path: filepath.Join(t.TempDir(), "state.json")}
		},
		"badger": func(t *testing.T) config.StateConfig {
			return config.StateConfig{Backend: config.BackendBadger, Path: t.TempDir()}
		},
	}

	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cfg := config.Default()
			cfg.State = backend(t)

			first, err := New(cfg)
			require.NoError(t, err)
			require.NoError(t, first.Init(ctx))
			go first.Run(ctx)

			require.NoError(t, first.Patch(ctx, pluginid.Dummy, 0, 0, 4))
			require.NoError(t, first.SetUniverseName(ctx, 4, "Stage"))
			stop(t, first)

			second := newRunning(t, cfg)
			universes, err := second.UniverseInfo(ctx)
			require.NoError(t, err)
			require.Len(t, universes, 1)
			assert.Equal(t, uint(4), universes[0].ID)
			assert.Equal(t, "Stage", universes[0].Name)
			assert.Equal(t, []string{"1-0-0"}, universes[0].Ports)
		})
	}
}

func TestReloadPluginsKeepsBindings(t *testing.T) {
	ctx := context.Background()
	d := newRunning(t, testConfig(t))

	require.NoError(t, d.Patch(ctx, pluginid.Loopback, 0, 0, 7))
	require.NoError(t, d.ReloadPlugins(ctx))

	ports, err := d.PortInfo(ctx, pluginid.Loopback, 0)
	require.NoError(t, err)
	assert.True(t, ports[0].Bound)
	assert.Equal(t, uint(7), ports[0].UniverseID)
}

func TestPatternFromPluginGoroutine(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Plugins = []string{"dummy"}
	cfg.Dummy.Pattern = true
	cfg.Dummy.Interval = time.Millisecond
	d := newRunning(t, cfg)

	require.NoError(t, d.Patch(ctx, pluginid.Dummy, 0, 1, 3))

	assert.Eventually(t, func() bool {
		frame, err := d.ReadDMX(ctx, 3)
		return err == nil && frame.Size() == dmx.UniverseSize
	}, 2*time.Second, 5*time.Millisecond)
}

// refusingPlugin owns one device whose only port refuses every frame.
type refusingPlugin struct {
	adaptor plugin.Adaptor
	dev     *device.Base
}

type refusingPort struct {
	*port.Base[*device.Base]
}

func (p *refusingPort) WriteDMX(*dmx.Buffer) bool { return false }
func (p *refusingPort) ReadDMX() dmx.Buffer       { return dmx.Buffer{} }

func (p *refusingPlugin) ID() pluginid.ID     { return pluginid.ArtNet }
func (p *refusingPlugin) Name() string        { return "Refusing" }
func (p *refusingPlugin) Description() string { return "" }

func (p *refusingPlugin) Start(_ context.Context, a plugin.Adaptor) error {
	p.adaptor = a
	p.dev = device.NewBase(p, 0, "refusing device")
	rp := &refusingPort{}
	rp.Base = port.NewBase(p.dev, 0, rp)
	if err := p.dev.AddPort(rp); err != nil {
		return err
	}
	return a.RegisterDevice(p.dev)
}

func (p *refusingPlugin) Stop() error {
	return p.adaptor.UnregisterDevice(p.dev)
}

type failingPlugin struct{}

func (failingPlugin) ID() pluginid.ID                             { return pluginid.SandNet }
func (failingPlugin) Name() string                                { return "Failing" }
func (failingPlugin) Description() string                         { return "" }
func (failingPlugin) Start(context.Context, plugin.Adaptor) error { return errors.New("no hardware") }
func (failingPlugin) Stop() error                                 { return nil }

func TestInitFailureReleasesStore(t *testing.T) {
	ctx := context.Background()

	t.Run("PluginsFail", func(t *testing.T) {
		cfg := config.Default()
		cfg.State = config.StateConfig{Backend: config.BackendBadger, Path: t.TempDir()}
		loader := plugin.NewLoader()
		require.NoError(t, loader.Register(pluginid.SandNet, func() plugin.Plugin { return failingPlugin{} }))

		d, err := New(cfg, WithLoader(loader))
		require.NoError(t, err)
		assert.Error(t, d.Init(ctx))
		assert.Equal(t, StateStopped, d.State())
		assert.ErrorIs(t, d.Run(ctx), ErrStopped)

		select {
		case <-d.Done():
		default:
			t.Fatal("Done not closed after failed Init")
		}

		// The badger directory lock was released.
		store, err := OpenStore(cfg.State)
		require.NoError(t, err)
		closer, ok := store.(io.Closer)
		require.True(t, ok)
		require.NoError(t, closer.Close())
	})

	t.Run("CorruptState", func(t *testing.T) {
		cfg := testConfig(t)
		require.NoError(t, os.WriteFile(cfg.State.Path, []byte("{not json"), 0o644))

		d, err := New(cfg)
		require.NoError(t, err)
		assert.Error(t, d.Init(ctx))
		assert.Equal(t, StateStopped, d.State())

		// The broken file is left for inspection.
		data, err := os.ReadFile(cfg.State.Path)
		require.NoError(t, err)
		assert.Equal(t, "{not json", string(data))
	})
}

func TestSendDMXRefused(t *testing.T) {
	ctx := context.Background()
	loader := plugin.NewLoader()
	require.NoError(t, loader.Register(pluginid.ArtNet, func() plugin.Plugin { return &refusingPlugin{} }))

	d := newRunning(t, testConfig(t), WithLoader(loader))
	require.NoError(t, d.Patch(ctx, pluginid.ArtNet, 0, 0, 1))

	assert.ErrorIs(t, d.SendDMX(ctx, 1, dmx.NewBuffer([]byte{1})), ErrSendFailed)
}

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureLogger) byCategory(cat log.Category) []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []log.Event
	for _, e := range c.events {
		if e.Category == cat {
			result = append(result, e)
		}
	}
	return result
}

func TestEventsAndMetrics(t *testing.T) {
	ctx := context.Background()
	events := &captureLogger{}
	reg := prometheus.NewRegistry()

	d := newRunning(t, testConfig(t), WithEventLogger(events), WithMetrics(metrics.New(reg)))
	require.NoError(t, d.Patch(ctx, pluginid.Dummy, 0, 0, 1))
	require.NoError(t, d.SendDMX(ctx, 1, dmx.NewBuffer([]byte{42})))

	devices := events.byCategory(log.CategoryDevice)
	require.Len(t, devices, 2)
	assert.Equal(t, log.DeviceRegistered, devices[0].Device.Action)
	assert.Equal(t, d.Session(), devices[0].SessionID)
	assert.False(t, devices[0].Timestamp.IsZero())

	bindings := events.byCategory(log.CategoryBinding)
	require.Len(t, bindings, 1)
	assert.Equal(t, "1-0-0", bindings[0].PortID)

	frames := events.byCategory(log.CategoryDMX)
	require.NotEmpty(t, frames)

	count, err := testutil.GatherAndCount(reg, "llad_devices", "llad_universes")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "STOPPED", StateStopped.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
}
