// Package metrics exposes llad's Prometheus instrumentation.
//
// All methods are safe on a nil *Metrics, so components can be built
// without instrumentation.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "llad"

// Metrics holds the daemon's collectors.
type Metrics struct {
	patches       *prometheus.CounterVec
	notifications *prometheus.CounterVec
	writeFailures *prometheus.CounterVec
	universes     prometheus.Gauge
	devices       prometheus.Gauge
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		patches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "port_patches_total",
				Help:      "Port binding changes by action.",
			},
			[]string{"action"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dmx_notifications_total",
				Help:      "Port data change notifications received by universes.",
			},
			[]string{"universe", "result"},
		),
		writeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dmx_write_failures_total",
				Help:      "Frames an output port refused.",
			},
			[]string{"universe"},
		),
		universes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "universes",
			Help:      "Number of universes in the store.",
		}),
		devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices",
			Help:      "Number of registered devices.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.patches, m.notifications, m.writeFailures, m.universes, m.devices)
	}
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObservePatch counts a binding change.
func (m *Metrics) ObservePatch(action string) {
	if m == nil {
		return
	}
	m.patches.WithLabelValues(action).Inc()
}

// ObserveNotification counts a port notification handled by a universe.
func (m *Metrics) ObserveNotification(universe uint, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.notifications.WithLabelValues(strconv.FormatUint(uint64(universe), 10), result).Inc()
}

// ObserveWriteFailure counts a frame refused by an output port.
func (m *Metrics) ObserveWriteFailure(universe uint) {
	if m == nil {
		return
	}
	m.writeFailures.WithLabelValues(strconv.FormatUint(uint64(universe), 10)).Inc()
}

// SetUniverses records the number of universes.
func (m *Metrics) SetUniverses(n int) {
	if m == nil {
		return
	}
	m.universes.Set(float64(n))
}

// SetDevices records the number of registered devices.
func (m *Metrics) SetDevices(n int) {
	if m == nil {
		return
	}
	m.devices.Set(float64(n))
}
