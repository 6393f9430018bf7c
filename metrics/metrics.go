// Package metrics exposes health results as Prometheus metrics.
package metrics

import (
	"net/http"

	"opsdash/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the health gauges. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	HealthScore     prometheus.Gauge
	HealthStatus    *prometheus.GaugeVec
	CheckScore      *prometheus.GaugeVec
	StaleJobs       prometheus.Gauge
	MissingCritical prometheus.Gauge
	SuccessRate     prometheus.Gauge
	FetchFailures   *prometheus.CounterVec
	Evaluations     *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HealthScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "opsdash",
			Name:      "health_score",
			Help:      "Composite system health score (0-100).",
		}),
		HealthStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "opsdash",
			Name:      "health_status",
			Help:      "Current health status (1 for the active status, 0 otherwise).",
		}, []string{"status"}),
		CheckScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "opsdash",
			Name:      "health_check_score",
			Help:      "Score of each health check (0-100).",
		}, []string{"check"}),
		StaleJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "opsdash",
			Name:      "stale_jobs",
			Help:      "Number of jobs past their SLA.",
		}),
		MissingCritical: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "opsdash",
			Name:      "missing_critical_jobs",
			Help:      "Number of critical jobs with no run in the window.",
		}),
		SuccessRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "opsdash",
			Name:      "job_success_rate_24h",
			Help:      "Job success rate over the last 24 hours, in percent.",
		}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsdash",
			Name:      "fetch_failures_total",
			Help:      "Failed reads of health inputs by source.",
		}, []string{"source"}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsdash",
			Name:      "health_evaluations_total",
			Help:      "Health evaluations by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.HealthScore,
		m.HealthStatus,
		m.CheckScore,
		m.StaleJobs,
		m.MissingCritical,
		m.SuccessRate,
		m.FetchFailures,
		m.Evaluations,
	)
	return m
}

// Observe publishes an overview.
func (m *Metrics) Observe(o models.HealthOverview) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues("ok").Inc()
	m.HealthScore.Set(float64(o.SystemHealth.Score))
	for _, s := range []models.HealthStatus{models.HealthHealthy, models.HealthDegraded, models.HealthCritical} {
		v := 0.0
		if s == o.SystemHealth.Status {
			v = 1
		}
		m.HealthStatus.WithLabelValues(string(s)).Set(v)
	}

	checks := o.SystemHealth.Checks
	m.CheckScore.WithLabelValues("jobs").Set(float64(checks.Jobs.Score))
	m.CheckScore.WithLabelValues("connectivity").Set(float64(checks.Connectivity.Score))
	m.CheckScore.WithLabelValues("queue").Set(float64(checks.Queue.Score))
	m.CheckScore.WithLabelValues("pool").Set(float64(checks.Pool.Score))

	m.StaleJobs.Set(float64(o.JobsStats.StaleJobs))
	m.MissingCritical.Set(float64(len(o.Alerts.MissingCritical)))
	m.SuccessRate.Set(o.JobsStats.SuccessRate24h)
}

func (m *Metrics) EvaluationFailed() {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues("error").Inc()
}

func (m *Metrics) FetchFailed(source string) {
	if m == nil {
		return
	}
	m.FetchFailures.WithLabelValues(source).Inc()
}

// Handler returns the HTTP handler for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
