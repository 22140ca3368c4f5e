package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/htn/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "htn"

// Metrics collects Prometheus metrics from agent lifecycle events.
type Metrics struct {
	registry *prometheus.Registry

	sensorReads  *prometheus.CounterVec
	plans        *prometheus.CounterVec
	planDuration *prometheus.HistogramVec
	planExplored *prometheus.HistogramVec
	planLength   *prometheus.HistogramVec
	tasks        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them in a private registry.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		sensorReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sensor_reads_total",
				Help:      "Total number of sensor readings committed to agent state",
			},
			[]string{"agent", "key"},
		),
		plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_total",
				Help:      "Total number of planning requests by result",
			},
			[]string{"agent", "result"},
		),
		planDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_duration_seconds",
				Help:      "Time spent resolving a task tree",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"agent"},
		),
		planExplored: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_explored_tasks",
				Help:      "Number of tasks visited while planning",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"agent"},
		),
		planLength: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_length_tasks",
				Help:      "Number of primitive tasks in found plans",
				Buckets:   prometheus.LinearBuckets(0, 2, 10),
			},
			[]string{"agent"},
		),
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Total number of executed plan steps by outcome",
			},
			[]string{"agent", "task", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.sensorReads, m.plans, m.planDuration, m.planExplored, m.planLength, m.tasks} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry exposes the underlying registry, for example to gather in tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that update the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSense: func(_ context.Context, e *domain.SenseEvent) {
			m.sensorReads.WithLabelValues(e.Agent, e.Key).Inc()
		},
		OnPlanFound: func(_ context.Context, e *domain.PlanEvent) {
			m.plans.WithLabelValues(e.Agent, "found").Inc()
			m.planDuration.WithLabelValues(e.Agent).Observe(e.Duration.Seconds())
			m.planExplored.WithLabelValues(e.Agent).Observe(float64(e.Explored))
			m.planLength.WithLabelValues(e.Agent).Observe(float64(len(e.Tasks)))
		},
		OnPlanFailed: func(_ context.Context, e *domain.PlanEvent) {
			result := "none"
			if e.Err != nil {
				result = "error"
			}
			m.plans.WithLabelValues(e.Agent, result).Inc()
			m.planDuration.WithLabelValues(e.Agent).Observe(e.Duration.Seconds())
		},
		OnTaskStart: func(_ context.Context, e *domain.TaskEvent) {
			m.tasks.WithLabelValues(e.Agent, e.Task, "started").Inc()
		},
		OnTaskComplete: func(_ context.Context, e *domain.TaskEvent) {
			m.tasks.WithLabelValues(e.Agent, e.Task, "completed").Inc()
		},
		OnTaskFailed: func(_ context.Context, e *domain.TaskEvent) {
			m.tasks.WithLabelValues(e.Agent, e.Task, "failed").Inc()
		},
	}
}
