package world

// metrics.go follows the teacher's metricsSink/noopMetrics/promMetrics
// split (pkg/metrics.go) so the loader pays nothing for metrics when the
// caller hasn't opted in.

import "github.com/prometheus/client_golang/prometheus"

type metricsSink interface {
	incLoadDispatched()
	incLoadSucceeded()
	incLoadFailed()
	incLoadGivenUp()
	incUnloaded()
	setPending(n int)
}

type noopMetrics struct{}

func (noopMetrics) incLoadDispatched() {}
func (noopMetrics) incLoadSucceeded()  {}
func (noopMetrics) incLoadFailed()     {}
func (noopMetrics) incLoadGivenUp()    {}
func (noopMetrics) incUnloaded()       {}
func (noopMetrics) setPending(int)     {}

type promMetrics struct {
	dispatched prometheus.Counter
	succeeded  prometheus.Counter
	failed     prometheus.Counter
	givenUp    prometheus.Counter
	unloaded   prometheus.Counter
	pending    prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelcore", Subsystem: "loader", Name: "loads_dispatched_total",
			Help: "Chunk load tasks dispatched to the task system.",
		}),
		succeeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelcore", Subsystem: "loader", Name: "loads_succeeded_total",
			Help: "Chunk loads that completed successfully.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelcore", Subsystem: "loader", Name: "loads_failed_total",
			Help: "Chunk loads that failed and were requeued for retry.",
		}),
		givenUp: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelcore", Subsystem: "loader", Name: "loads_given_up_total",
			Help: "Chunk loads abandoned after exhausting retries.",
		}),
		unloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxelcore", Subsystem: "loader", Name: "unloaded_total",
			Help: "Chunks evicted by the unload scan.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxelcore", Subsystem: "loader", Name: "pending_chunks",
			Help: "Chunk addresses currently queued or in flight.",
		}),
	}
	reg.MustRegister(pm.dispatched, pm.succeeded, pm.failed, pm.givenUp, pm.unloaded, pm.pending)
	return pm
}

func (m *promMetrics) incLoadDispatched() { m.dispatched.Inc() }
func (m *promMetrics) incLoadSucceeded()  { m.succeeded.Inc() }
func (m *promMetrics) incLoadFailed()     { m.failed.Inc() }
func (m *promMetrics) incLoadGivenUp()    { m.givenUp.Inc() }
func (m *promMetrics) incUnloaded()       { m.unloaded.Inc() }
func (m *promMetrics) setPending(n int)   { m.pending.Set(float64(n)) }

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
