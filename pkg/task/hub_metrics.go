package task

// hub_metrics.go gives the channel hub a drop counter per channel name,
// grounded on the teacher's promMetrics struct shape (pkg/metrics.go):
// a *prometheus.CounterVec keyed by one label, with a no-op sink used
// when no registry is supplied so the hot try-send path never pays for
// metrics it isn't configured to report.

import "github.com/prometheus/client_golang/prometheus"

type hubMetricsSink interface {
	incDropped(channel string)
}

type noopHubMetrics struct{}

func (noopHubMetrics) incDropped(string) {}

type promHubMetrics struct {
	dropped *prometheus.CounterVec
}

func newPromHubMetrics(reg *prometheus.Registry) *promHubMetrics {
	m := &promHubMetrics{
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelcore",
			Subsystem: "hub",
			Name:      "dropped_total",
			Help:      "Messages dropped by TrySend because the channel was full.",
		}, []string{"channel"}),
	}
	reg.MustRegister(m.dropped)
	return m
}

func (m *promHubMetrics) incDropped(channel string) {
	m.dropped.WithLabelValues(channel).Inc()
}

func newHubMetricsSink(reg *prometheus.Registry) hubMetricsSink {
	if reg == nil {
		return noopHubMetrics{}
	}
	return newPromHubMetrics(reg)
}
