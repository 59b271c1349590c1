package main

import (
	"net/http"

	"github.com/kumargu/gdbstub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsHooks implements gdbstub.Hooks by incrementing Prometheus counters,
// the way sockstats' exporter turns TCP connection lifecycle events into
// collector updates. Kept outside the core package so gdbstub itself never
// imports client_golang.
type metricsHooks struct {
	packetsFramed prometheus.Counter
	resumesIssued prometheus.Counter
	breakpointsHit prometheus.Counter
	sessionsEnded *prometheus.CounterVec
}

func newMetricsHooks() *metricsHooks {
	m := &metricsHooks{
		packetsFramed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gdbstub_packets_framed_total",
			Help: "RSP packets successfully framed off the wire.",
		}),
		resumesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gdbstub_resumes_issued_total",
			Help: "Resume operations (continue/step) issued to the target.",
		}),
		breakpointsHit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gdbstub_breakpoints_hit_total",
			Help: "Breakpoint/watchpoint stops returned by the target.",
		}),
		sessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gdbstub_sessions_ended_total",
			Help: "Sessions ended, labeled by disconnect reason.",
		}, []string{"reason"}),
	}
	prometheus.MustRegister(m.packetsFramed, m.resumesIssued, m.breakpointsHit, m.sessionsEnded)
	return m
}

func (m *metricsHooks) PacketFramed()  { m.packetsFramed.Inc() }
func (m *metricsHooks) ResumeIssued()  { m.resumesIssued.Inc() }
func (m *metricsHooks) BreakpointHit() { m.breakpointsHit.Inc() }

func (m *metricsHooks) SessionEnded(reason gdbstub.DisconnectReason) {
	m.sessionsEnded.WithLabelValues(reason.String()).Inc()
}

// serveMetrics runs the Prometheus HTTP endpoint until the process exits,
// the same promhttp.Handler()-on-/metrics wiring sockstats' exporter uses.
func serveMetrics(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, nil)
}
