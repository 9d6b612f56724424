// Package metrics exposes editor state and API traffic as Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EditorCollector bundles the Prometheus metrics of one editor session
type EditorCollector struct {
	gatherer prometheus.Gatherer

	Operations       *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDurations    *prometheus.HistogramVec
	Devices          prometheus.Gauge
	Links            prometheus.Gauge
	HistoryEntries   prometheus.Gauge
	HistoryIndex     prometheus.Gauge
	MessagesInFlight prometheus.Gauge
}

// NewEditorCollector registers editor metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewEditorCollector(reg prometheus.Registerer) (*EditorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	operations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netsketch_operations_total",
		Help: "Editor operations, labeled by action and result.",
	}, []string{"action", "result"}), "netsketch_operations_total")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netsketch_http_requests_total",
		Help: "Handled API requests, labeled by method, route, and status code.",
	}, []string{"method", "route", "code"}), "netsketch_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netsketch_http_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"}), "netsketch_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	devices, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netsketch_devices",
		Help: "Current number of devices in the topology.",
	}), "netsketch_devices")
	if err != nil {
		return nil, err
	}
	links, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netsketch_links",
		Help: "Current number of links in the topology.",
	}), "netsketch_links")
	if err != nil {
		return nil, err
	}
	entries, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netsketch_history_entries",
		Help: "Commands held in the undo log.",
	}), "netsketch_history_entries")
	if err != nil {
		return nil, err
	}
	index, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netsketch_history_index",
		Help: "Undo log cursor; -1 when nothing is applied.",
	}), "netsketch_history_index")
	if err != nil {
		return nil, err
	}
	inFlight, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netsketch_messages_in_flight",
		Help: "Simulated messages not yet delivered.",
	}), "netsketch_messages_in_flight")
	if err != nil {
		return nil, err
	}

	return &EditorCollector{
		gatherer:         gatherer,
		Operations:       operations,
		HTTPRequests:     requests,
		HTTPDurations:    durations,
		Devices:          devices,
		Links:            links,
		HistoryEntries:   entries,
		HistoryIndex:     index,
		MessagesInFlight: inFlight,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler
func (c *EditorCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveOperation counts one editor operation
func (c *EditorCollector) ObserveOperation(action string, ok bool) {
	if c == nil || c.Operations == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "rejected"
	}
	c.Operations.WithLabelValues(action, result).Inc()
}

// SetTopologyCounts drives the topology gauges
func (c *EditorCollector) SetTopologyCounts(devices, links, historyEntries, historyIndex int) {
	if c == nil {
		return
	}
	if c.Devices != nil {
		c.Devices.Set(float64(devices))
	}
	if c.Links != nil {
		c.Links.Set(float64(links))
	}
	if c.HistoryEntries != nil {
		c.HistoryEntries.Set(float64(historyEntries))
	}
	if c.HistoryIndex != nil {
		c.HistoryIndex.Set(float64(historyIndex))
	}
}

// SetMessagesInFlight drives the in-flight message gauge
func (c *EditorCollector) SetMessagesInFlight(n int) {
	if c == nil || c.MessagesInFlight == nil {
		return
	}
	c.MessagesInFlight.Set(float64(n))
}

// ObserveRequest records one handled HTTP request
func (c *EditorCollector) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.HTTPRequests != nil {
		c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	}
	if c.HTTPDurations != nil {
		c.HTTPDurations.WithLabelValues(method, route).Observe(elapsed.Seconds())
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
