package services

import (
	"context"
	"time"

	"opsdash/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	SourceExecutions = "executions"
	SourceQueue      = "queue"
	SourceDevices    = "devices"
	SourceAlerts     = "alerts"
)

// Source reads the raw telemetry the health pipeline scores.
type Source interface {
	Executions(ctx context.Context, since time.Time, jobNames []string) ([]models.ExecutionRecord, error)
	QueueStats(ctx context.Context, now time.Time) (models.QueueStats, error)
	Devices(ctx context.Context) ([]models.DeviceRow, error)
	ActiveAlerts(ctx context.Context) ([]models.AlertRow, error)
}

// Collect reads all four sources concurrently. A failed read is logged and
// replaced by its empty default; Collect itself never fails.
func (s *HealthService) Collect(ctx context.Context, now time.Time) Snapshot {
	var snap Snapshot
	var execErr, queueErr, devErr, alrErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Executions, execErr = s.fetchExecutions(gctx, now)
		return nil
	})
	g.Go(func() error {
		fctx, cancel := s.fetchContext(gctx)
		defer cancel()
		snap.Queue, queueErr = s.Source.QueueStats(fctx, now)
		return nil
	})
	g.Go(func() error {
		fctx, cancel := s.fetchContext(gctx)
		defer cancel()
		snap.Devices, devErr = s.Source.Devices(fctx)
		return nil
	})
	g.Go(func() error {
		fctx, cancel := s.fetchContext(gctx)
		defer cancel()
		snap.Alerts, alrErr = s.Source.ActiveAlerts(fctx)
		if alrErr == nil {
			_, alrErr = BuildPoolStats(nil, snap.Alerts)
		}
		return nil
	})
	_ = g.Wait()

	if execErr != nil {
		snap.Executions = nil
		snap.Failed = append(snap.Failed, s.fetchFailed(SourceExecutions, execErr))
	}
	if queueErr != nil {
		snap.Queue = models.QueueStats{}
		snap.Failed = append(snap.Failed, s.fetchFailed(SourceQueue, queueErr))
	}
	if devErr != nil {
		snap.Devices = nil
		snap.Failed = append(snap.Failed, s.fetchFailed(SourceDevices, devErr))
	}
	if alrErr != nil {
		snap.Alerts = nil
		snap.Failed = append(snap.Failed, s.fetchFailed(SourceAlerts, alrErr))
	}
	return snap
}

func (s *HealthService) fetchFailed(source string, err error) string {
	log.Warn().Err(err).Str("source", source).Msg("health input unavailable, using empty default")
	s.Metrics.FetchFailed(source)
	return source
}
