// Package plugintest provides a plugin.Adaptor for testing plugins without
// a daemon.
package plugintest

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lla-project/llad/pkg/device"
	"github.com/lla-project/llad/pkg/plugin"
)

// Adaptor registers devices with its own device manager and queues
// executed functions until RunPending is called.
type Adaptor struct {
	Devices *device.Manager

	mu     sync.Mutex
	tasks  []func()
	queued chan struct{}
	logger *slog.Logger
}

// NewAdaptor creates an adaptor with an empty device manager.
func NewAdaptor() *Adaptor {
	return &Adaptor{
		Devices: device.NewManager(),
		queued:  make(chan struct{}, 1),
		logger:  slog.New(slog.DiscardHandler),
	}
}

// RegisterDevice registers d with the adaptor's device manager.
func (a *Adaptor) RegisterDevice(d device.Device) error {
	return a.Devices.Register(d)
}

// UnregisterDevice unregisters d from the adaptor's device manager.
func (a *Adaptor) UnregisterDevice(d device.Device) error {
	return a.Devices.Unregister(d)
}

// Execute queues fn.
func (a *Adaptor) Execute(fn func()) {
	a.mu.Lock()
	a.tasks = append(a.tasks, fn)
	a.mu.Unlock()

	select {
	case a.queued <- struct{}{}:
	default:
	}
}

// Logger returns a logger discarding everything.
func (a *Adaptor) Logger() *slog.Logger {
	return a.logger
}

// RunPending runs the queued functions in order and returns how many ran.
func (a *Adaptor) RunPending() int {
	a.mu.Lock()
	tasks := a.tasks
	a.tasks = nil
	a.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// WaitQueued waits until a function is queued or the timeout expires.
func (a *Adaptor) WaitQueued(timeout time.Duration) bool {
	select {
	case <-a.queued:
		return true
	case <-time.After(timeout):
		return false
	}
}

var _ plugin.Adaptor = (*Adaptor)(nil)
