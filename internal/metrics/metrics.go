package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "relayer"

// Metrics holds the operator-visible counters and gauges for one listener
// instance.
type Metrics struct {
	CyclesTotal        prometheus.Counter
	EventsDiscovered   prometheus.Counter
	EventsRelayed      prometheus.Counter
	EventsDeadLettered prometheus.Counter
	DecodeFailures     prometheus.Counter
	RelayRetries       prometheus.Counter
	CheckpointPersists prometheus.Counter

	LastProcessedHeight prometheus.Gauge
	ChainHead           prometheus.Gauge
	DedupSetSize        prometheus.Gauge
}

// New builds and registers the metric set on the given registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_cycles_total",
			Help:      "Completed scan cycles, including empty ones.",
		}),
		EventsDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_discovered_total",
			Help:      "Lock events discovered in scanned windows.",
		}),
		EventsRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_relayed_total",
			Help:      "Events successfully relayed to the destination.",
		}),
		EventsDeadLettered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dead_lettered_total",
			Help:      "Events marked processed without successful relay.",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Logs skipped because their shape did not match the event signature.",
		}),
		RelayRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_retries_total",
			Help:      "Relay attempts beyond the first for any event.",
		}),
		CheckpointPersists: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoint_persists_total",
			Help:      "Successful checkpoint persist calls.",
		}),
		LastProcessedHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_processed_height",
			Help:      "Checkpointed last processed block height.",
		}),
		ChainHead: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_head",
			Help:      "Latest observed source chain height.",
		}),
		DedupSetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dedup_set_size",
			Help:      "Entries in the processed-event dedup set.",
		}),
	}

	collectors := []prometheus.Collector{
		m.CyclesTotal,
		m.EventsDiscovered,
		m.EventsRelayed,
		m.EventsDeadLettered,
		m.DecodeFailures,
		m.RelayRetries,
		m.CheckpointPersists,
		m.LastProcessedHeight,
		m.ChainHead,
		m.DedupSetSize,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// NewNop builds an unregistered metric set, for callers that run without a
// metrics endpoint.
func NewNop() *Metrics {
	m, _ := New(prometheus.NewRegistry())
	return m
}
