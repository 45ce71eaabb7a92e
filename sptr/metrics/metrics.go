// Package metrics exports control block lifecycle events as Prometheus
// metrics.
//
// Install a Collector as (part of) the sptr observer:
//
//	m := metrics.NewCollector(prometheus.DefaultRegisterer)
//	sptr.SetObserver(m)
//
// All metrics carry a kind label, "pointer" for adopted objects and
// "holder" for objects built by MakeShared.
//
// Updating the metrics is thread safe. Block events themselves are
// delivered on whatever goroutine manipulates the handles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/boboxa2010/SmartPointers/sptr"
)

const namespace = "smartptr"

// Collector counts block lifecycle events. It implements sptr.Observer.
type Collector struct {
	// BlocksAllocated counts control blocks created.
	BlocksAllocated *prometheus.CounterVec

	// PayloadsDestroyed counts payload teardowns (strong count reached 0).
	PayloadsDestroyed *prometheus.CounterVec

	// BlocksFreed counts control blocks released with no references left.
	BlocksFreed *prometheus.CounterVec

	// LiveBlocks is the number of blocks allocated and not yet freed.
	LiveBlocks *prometheus.GaugeVec

	// LivePayloads is the number of payloads not yet destroyed.
	LivePayloads *prometheus.GaugeVec
}

// NewCollector creates the metrics and registers them with reg. It panics
// if registration fails, as promauto does. A nil reg creates unregistered
// metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	kind := []string{"kind"}
	return &Collector{
		BlocksAllocated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_allocated_total",
			Help:      "Total number of control blocks allocated, by kind",
		}, kind),
		PayloadsDestroyed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payloads_destroyed_total",
			Help:      "Total number of payloads destroyed after their last owner was released, by kind",
		}, kind),
		BlocksFreed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_freed_total",
			Help:      "Total number of control blocks freed, by kind",
		}, kind),
		LiveBlocks: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_blocks",
			Help:      "Number of control blocks still referenced by a SharedPtr or WeakPtr",
		}, kind),
		LivePayloads: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_payloads",
			Help:      "Number of payloads with at least one owner",
		}, kind),
	}
}

// OnBlockEvent implements sptr.Observer.
func (c *Collector) OnBlockEvent(ev sptr.BlockEvent, info sptr.BlockInfo) {
	kind := info.Kind.String()
	switch ev {
	case sptr.EventAllocated:
		c.BlocksAllocated.WithLabelValues(kind).Inc()
		c.LiveBlocks.WithLabelValues(kind).Inc()
		c.LivePayloads.WithLabelValues(kind).Inc()
	case sptr.EventPayloadDestroyed:
		c.PayloadsDestroyed.WithLabelValues(kind).Inc()
		c.LivePayloads.WithLabelValues(kind).Dec()
	case sptr.EventFreed:
		c.BlocksFreed.WithLabelValues(kind).Inc()
		c.LiveBlocks.WithLabelValues(kind).Dec()
	}
}
