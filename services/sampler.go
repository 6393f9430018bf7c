package services

import (
	"context"
	"time"

	"opsdash/models"

	"github.com/rs/zerolog/log"
)

// Sampler evaluates health on a fixed interval, publishes the result as
// metrics and logs status changes.
type Sampler struct {
	svc      *HealthService
	interval time.Duration
	last     models.HealthStatus
}

func NewSampler(svc *HealthService, interval time.Duration) *Sampler {
	return &Sampler{svc: svc, interval: interval}
}

// Run blocks until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one evaluation. A panic is recovered so the loop survives it.
func (s *Sampler) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("health sampler panic recovered")
		}
	}()

	overview, err := s.svc.Overview(ctx)
	if err != nil {
		s.svc.Metrics.EvaluationFailed()
		log.Error().Err(err).Msg("health evaluation failed")
		return
	}
	s.svc.Metrics.Observe(overview)

	status := overview.SystemHealth.Status
	if status == s.last {
		return
	}

	ev := log.Info()
	switch status {
	case models.HealthCritical:
		ev = log.Error()
	case models.HealthDegraded:
		ev = log.Warn()
	case models.HealthHealthy:
	}
	ev.Str("from", string(s.last)).
		Str("to", string(status)).
		Int("score", overview.SystemHealth.Score).
		Strs("critical_stale", overview.Alerts.CriticalStale).
		Strs("missing_critical", overview.Alerts.MissingCritical).
		Msg("system health changed")
	s.last = status
}

// Last returns the status seen by the latest successful tick.
func (s *Sampler) Last() models.HealthStatus {
	return s.last
}
