package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/lla-project/llad/pkg/config"
	"github.com/lla-project/llad/pkg/device"
	"github.com/lla-project/llad/pkg/log"
	"github.com/lla-project/llad/pkg/metrics"
	"github.com/lla-project/llad/pkg/patch"
	"github.com/lla-project/llad/pkg/persistence"
	"github.com/lla-project/llad/pkg/plugin"
	"github.com/lla-project/llad/pkg/universe"
)

// Daemon is the lighting daemon.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	events  *log.Recorder
	metrics *metrics.Metrics

	store      persistence.Store
	ownedStore bool
	loader     *plugin.Loader

	devices   *device.Manager
	universes *universe.Store
	patches   *patch.Manager
	plugins   []plugin.Plugin

	// ctx is the context plugins run under.
	ctx context.Context

	// The fields below are shared with other goroutines.
	mu    sync.Mutex
	state State
	queue []func()
	wake  chan struct{}
	stop  chan struct{}
	done  chan struct{}

	stopOnce sync.Once
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Daemon) {
		d.logger = l
	}
}

// WithEventLogger sets the destination of structured events.
func WithEventLogger(l log.Logger) Option {
	return func(d *Daemon) {
		d.events = log.NewRecorder(l)
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Daemon) {
		d.metrics = m
	}
}

// WithStore sets the binding store instead of opening the configured one.
// The daemon does not close it.
func WithStore(s persistence.Store) Option {
	return func(d *Daemon) {
		d.store = s
	}
}

// WithLoader sets the plugin loader instead of the built-in plugins.
func WithLoader(l *plugin.Loader) Option {
	return func(d *Daemon) {
		d.loader = l
	}
}

// New creates a daemon. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:   cfg,
		state: StateIdle,
		wake:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.events == nil {
		d.events = log.NewRecorder(nil)
	}
	if d.loader == nil {
		d.loader = DefaultLoader(cfg)
	}
	if d.store == nil {
		store, err := OpenStore(cfg.State)
		if err != nil {
			return nil, err
		}
		d.store = store
		d.ownedStore = store != nil
	}

	d.devices = device.NewManager()
	d.devices.OnRegistered(d.deviceRegistered)
	d.devices.OnUnregistered(d.deviceUnregistered)

	d.universes = universe.NewStore(
		universe.WithEventLogger(d.events),
		universe.WithMetrics(d.metrics),
	)
	d.patches = patch.NewManager(d.universes, d.store,
		patch.WithEventLogger(d.events),
		patch.WithMetrics(d.metrics),
	)
	return d, nil
}

// State returns the lifecycle state.
func (d *Daemon) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Session returns the ID stamped on this run's events.
func (d *Daemon) Session() string {
	return d.events.Session()
}

// Init loads saved bindings and starts the enabled plugins. It must be
// called once, before Run. If Init fails, the daemon releases what it
// opened, including a store it opened itself, and moves to StateStopped.
func (d *Daemon) Init(ctx context.Context) error {
	d.mu.Lock()
	if d.state != StateIdle {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	d.state = StateStarting
	d.mu.Unlock()

	d.ctx = ctx
	if err := d.patches.Load(); err != nil {
		return d.abort(err)
	}

	if err := d.startPlugins(ctx); err != nil {
		return d.abort(err)
	}

	d.setState(StateRunning)
	d.logger.Info("llad initialised",
		"session", d.Session(),
		"plugins", len(d.plugins),
		"devices", d.devices.Count(),
		"universes", d.universes.Count())
	return nil
}

// abort undoes a failed Init and returns err joined with any cleanup
// errors.
func (d *Daemon) abort(err error) error {
	errs := []error{err, d.stopPlugins(), d.closeStore()}
	d.stopped()
	return errors.Join(errs...)
}

func (d *Daemon) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// startPlugins loads the enabled plugins and starts them. A plugin that
// fails to start is logged and skipped.
func (d *Daemon) startPlugins(ctx context.Context) error {
	plugins, err := d.loader.Load(d.cfg.Plugins)
	if err != nil {
		return fmt.Errorf("loading plugins: %w", err)
	}

	var errs []error
	for _, p := range plugins {
		if err := p.Start(ctx, d.adaptorFor(p)); err != nil {
			d.logger.Warn("plugin failed to start", "plugin", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("starting %s: %w", p.Name(), err))
			continue
		}
		d.plugins = append(d.plugins, p)
		d.logger.Debug("plugin started", "plugin", p.Name())
	}

	if len(d.plugins) == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// stopPlugins stops the running plugins in reverse start order.
func (d *Daemon) stopPlugins() error {
	var errs []error
	for _, p := range slices.Backward(d.plugins) {
		if err := p.Stop(); err != nil {
			d.logger.Warn("plugin failed to stop", "plugin", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("stopping %s: %w", p.Name(), err))
		}
	}
	d.plugins = nil
	return errors.Join(errs...)
}

// Run executes posted work until Terminate is called or ctx is done, then
// stops the plugins and saves state.
func (d *Daemon) Run(ctx context.Context) error {
	if s := d.State(); s != StateRunning {
		if s == StateIdle {
			return ErrNotStarted
		}
		return ErrStopped
	}

	for {
		select {
		case <-ctx.Done():
			return d.shutdown()
		case <-d.stop:
			return d.shutdown()
		case <-d.wake:
			d.runPending()
		}
	}
}

// Terminate asks Run to return. It is safe to call from any goroutine and
// more than once.
func (d *Daemon) Terminate() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// Done is closed once the daemon has shut down.
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

func (d *Daemon) shutdown() error {
	d.setState(StateStopping)
	d.logger.Info("llad shutting down")

	d.runPending()
	errs := []error{d.stopPlugins()}

	if err := d.patches.Save(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, d.closeStore())
	d.stopped()

	return errors.Join(errs...)
}

// closeStore closes the store if the daemon opened it.
func (d *Daemon) closeStore() error {
	closer, ok := d.store.(io.Closer)
	if !ok || !d.ownedStore {
		return nil
	}
	d.ownedStore = false
	return closer.Close()
}

func (d *Daemon) stopped() {
	d.mu.Lock()
	d.state = StateStopped
	d.queue = nil
	d.mu.Unlock()
	close(d.done)
}

// Execute queues fn to run on the control loop. It never blocks. Work
// posted after shutdown is dropped.
func (d *Daemon) Execute(fn func()) {
	d.enqueue(fn)
}

func (d *Daemon) enqueue(fn func()) bool {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return false
	}
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

func (d *Daemon) runPending() {
	for {
		d.mu.Lock()
		tasks := d.queue
		d.queue = nil
		d.mu.Unlock()

		if len(tasks) == 0 {
			return
		}
		for _, fn := range tasks {
			fn()
		}
	}
}

// Do runs fn on the control loop and waits for it to finish. It must not
// be called from the control loop itself.
//
// If ctx is done or the daemon stops before the loop picks fn up, fn never
// runs and Do returns ctx.Err() or ErrStopped. Once the loop has picked fn
// up, Do returns fn's result.
func (d *Daemon) Do(ctx context.Context, fn func() error) error {
	var claimed atomic.Bool
	result := make(chan error, 1)
	task := func() {
		if !claimed.CompareAndSwap(false, true) {
			return
		}
		if err := ctx.Err(); err != nil {
			result <- err
			return
		}
		result <- fn()
	}
	if !d.enqueue(task) {
		return ErrStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		if claimed.CompareAndSwap(false, true) {
			return ctx.Err()
		}
	case <-d.done:
		if claimed.CompareAndSwap(false, true) {
			return ErrStopped
		}
	}
	// The loop is already running fn.
	return <-result
}

// saveState persists bindings. Failures are logged; the change that
// triggered the save stands.
func (d *Daemon) saveState() {
	if err := d.patches.Save(); err != nil {
		d.logger.Error("failed to save state", "error", err)
	}
}
