package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 持有 journey-service 的全部 Prometheus 指标（私有 registry，
// 避免和默认 registry 里的其他进程指标混在一起）。
type Collector struct {
	reg *prometheus.Registry

	TransitionsTotal *prometheus.CounterVec // op label: start|stop|restart|accident|clear_accident|complete
	RejectionsTotal  *prometheus.CounterVec // kind label: validation|invariant|not_found

	TelemetryApplied prometheus.Counter
	TelemetryDropped prometheus.Counter

	OverCapacityEvents prometheus.Counter
	NotifyFailures     prometheus.Counter
	AssignmentsTotal   prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journey_transitions_total",
			Help: "Total successful journey state transitions.",
		}, []string{"op"}),
		RejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journey_rejections_total",
			Help: "Total rejected journey operations.",
		}, []string{"kind"}),
		TelemetryApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journey_telemetry_applied_total",
			Help: "Total telemetry updates applied to vehicle records.",
		}),
		TelemetryDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journey_telemetry_dropped_total",
			Help: "Total telemetry updates dropped by rate limiting or validation.",
		}),
		OverCapacityEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journey_over_capacity_events_total",
			Help: "Total passenger updates exceeding nominal capacity.",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journey_notify_failures_total",
			Help: "Total best-effort assignment notifications that failed.",
		}),
		AssignmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journey_driver_assignments_total",
			Help: "Total successful driver assignments.",
		}),
	}

	reg.MustRegister(
		c.TransitionsTotal,
		c.RejectionsTotal,
		c.TelemetryApplied,
		c.TelemetryDropped,
		c.OverCapacityEvents,
		c.NotifyFailures,
		c.AssignmentsTotal,
	)
	return c
}

// Handler 暴露 /metrics 用的 HTTP handler。
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
