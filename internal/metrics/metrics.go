package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the record operations the service performs.
type Metrics struct {
	Upserts          prometheus.Counter
	Deletes          prometheus.Counter
	Transitions      prometheus.Counter
	EventsReceived   prometheus.Counter
	SyncPushFailures prometheus.Counter
}

// New registers the service counters on reg. Passing nil registers on
// a private registry, which keeps tests and tools quiet.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Upserts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estatecrm_upserts_total",
			Help: "Customer records written to the canonical store.",
		}),
		Deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estatecrm_deletes_total",
			Help: "Customer records removed from the canonical store.",
		}),
		Transitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estatecrm_transitions_total",
			Help: "Pipeline stage transitions applied.",
		}),
		EventsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estatecrm_change_events_received_total",
			Help: "Cross-context change events accepted from other contexts.",
		}),
		SyncPushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estatecrm_sync_push_failures_total",
			Help: "Records that failed to mirror to the remote store.",
		}),
	}
	reg.MustRegister(m.Upserts, m.Deletes, m.Transitions, m.EventsReceived, m.SyncPushFailures)
	return m
}
