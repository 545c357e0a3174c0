package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the watcher. A nil *Metrics is
// valid and records nothing, which keeps tests off the global registry.
type Metrics struct {
	CyclesTotal       prometheus.Counter
	TaskErrorsTotal   *prometheus.CounterVec
	NewListingsTotal  prometheus.Counter
	NotifyErrorsTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "watcher_cycles_total",
			Help: "The total number of scrape cycles started",
		}),
		TaskErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_task_errors_total",
			Help: "The total number of failed scrape tasks",
		}, []string{"source"}),
		NewListingsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "watcher_new_listings_total",
			Help: "The total number of newly observed listings",
		}),
		NotifyErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "watcher_notify_errors_total",
			Help: "The total number of failed notification deliveries",
		}),
	}
}

func (m *Metrics) IncCyclesTotal() {
	if m == nil {
		return
	}
	m.CyclesTotal.Inc()
}

func (m *Metrics) IncTaskErrors(source string) {
	if m == nil {
		return
	}
	m.TaskErrorsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) AddNewListings(n int) {
	if m == nil {
		return
	}
	m.NewListingsTotal.Add(float64(n))
}

func (m *Metrics) IncNotifyErrors() {
	if m == nil {
		return
	}
	m.NotifyErrorsTotal.Inc()
}
