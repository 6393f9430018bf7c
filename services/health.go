package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"opsdash/metrics"
	"opsdash/models"
)

// ExecutionWindow is how far back execution records are read.
const ExecutionWindow = 24 * time.Hour

// Snapshot is one round of collected inputs. Sources that failed are listed
// in Failed and carry zero values.
type Snapshot struct {
	Executions []models.ExecutionRecord
	Queue      models.QueueStats
	Devices    []models.DeviceRow
	Alerts     []models.AlertRow
	Failed     []string
}

// Evaluate runs the scoring pipeline over a snapshot. It is pure: the same
// registry, snapshot and now always give the same overview.
func Evaluate(reg Registry, snap Snapshot, now time.Time) (models.HealthOverview, error) {
	if err := ValidateRecords(snap.Executions); err != nil {
		return models.HealthOverview{}, err
	}
	poolStats, err := BuildPoolStats(snap.Devices, snap.Alerts)
	if err != nil {
		return models.HealthOverview{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	stats := AggregateExecutions(reg, snap.Executions)
	report := DetectStaleness(reg, stats, now)

	return ComposeHealth(ComposeInput{
		Registry:  reg,
		Stats:     stats,
		Staleness: report,
		Alerts:    ClassifyAlerts(reg, stats, report),
		Queue:     ScoreQueue(snap.Queue, now),
		Pool:      ScorePool(poolStats),
		Now:       now,
	}), nil
}

// JobHealthReport builds the per-job view in registry order.
func JobHealthReport(reg Registry, records []models.ExecutionRecord, now time.Time) ([]models.JobHealth, error) {
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	stats := AggregateExecutions(reg, records)
	report := DetectStaleness(reg, stats, now)

	out := make([]models.JobHealth, 0, reg.Len())
	for _, def := range reg.Jobs() {
		st := report.ByJob[def.Name]
		jh := models.JobHealth{
			JobDefinition:   def,
			Stats:           stats[def.Name],
			Stale:           st.Stale,
			CriticallyStale: st.CriticallyStale,
			MissingCritical: st.MissingCritical,
		}
		if st.Elapsed != nil {
			secs := int64(st.Elapsed.Seconds())
			jh.ElapsedSeconds = &secs
		}
		from := now
		if last := stats[def.Name].LastRunAt; last != nil {
			from = *last
		}
		if next, ok := reg.NextRun(def.Name, from); ok {
			jh.NextExpectedAt = &next
		}
		out = append(out, jh)
	}
	return out, nil
}

// HealthService wires a data source to the scoring pipeline.
type HealthService struct {
	Registry     Registry
	Source       Source
	FetchTimeout time.Duration
	Metrics      *metrics.Metrics
	Now          func() time.Time
}

func NewHealthService(reg Registry, src Source, fetchTimeout time.Duration, m *metrics.Metrics) *HealthService {
	return &HealthService{
		Registry:     reg,
		Source:       src,
		FetchTimeout: fetchTimeout,
		Metrics:      m,
		Now:          time.Now,
	}
}

func (s *HealthService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *HealthService) Overview(ctx context.Context) (models.HealthOverview, error) {
	now := s.now()
	snap := s.Collect(ctx, now)
	overview, err := Evaluate(s.Registry, snap, now)
	if err != nil {
		return models.HealthOverview{}, err
	}
	markUnavailable(&overview.SystemHealth.Checks, snap.Failed)
	return overview, nil
}

const unavailableNote = " (dados indisponiveis)"

// markUnavailable flags the checks scored from an empty default so they are
// not mistaken for a genuinely idle subsystem.
func markUnavailable(checks *models.HealthChecks, failed []string) {
	marked := make(map[*models.SubsystemScore]bool)
	mark := func(c *models.SubsystemScore) {
		if !marked[c] {
			c.Details += unavailableNote
			marked[c] = true
		}
	}
	for _, source := range failed {
		switch source {
		case SourceExecutions:
			mark(&checks.Jobs)
			mark(&checks.Connectivity)
		case SourceQueue:
			mark(&checks.Queue)
		case SourceDevices, SourceAlerts:
			mark(&checks.Pool)
		default:
			panic("services: unknown health source " + source)
		}
	}
}

func (s *HealthService) JobHealth(ctx context.Context) ([]models.JobHealth, error) {
	now := s.now()
	records, err := s.fetchExecutions(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("fetching executions: %w", err)
	}
	return JobHealthReport(s.Registry, records, now)
}

func (s *HealthService) fetchExecutions(ctx context.Context, now time.Time) ([]models.ExecutionRecord, error) {
	ctx, cancel := s.fetchContext(ctx)
	defer cancel()
	records, err := s.Source.Executions(ctx, now.Add(-ExecutionWindow), s.Registry.Names())
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, nil
}

func (s *HealthService) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.FetchTimeout)
}
