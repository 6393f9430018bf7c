package services

import (
	"errors"
	"fmt"
	"sort"

	"opsdash/models"

	"github.com/rs/zerolog/log"
)

var ErrInvalidInput = errors.New("invalid health input")

// ValidateRecords rejects records that break the scheduler's contract.
func ValidateRecords(records []models.ExecutionRecord) error {
	var errs []error
	for i, rec := range records {
		if _, err := models.ParseExecutionStatus(string(rec.Status)); err != nil {
			errs = append(errs, fmt.Errorf("record #%d (%s): %w", i, rec.JobName, err))
		}
		if rec.StartedAt.IsZero() {
			errs = append(errs, fmt.Errorf("record #%d (%s): missing started_at", i, rec.JobName))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// AggregateExecutions folds records into one JobRuntimeStats per registered
// job. Records are visited newest first; the first one seen for a job sets
// its last run. Records for unregistered jobs are skipped.
func AggregateExecutions(reg Registry, records []models.ExecutionRecord) map[string]models.JobRuntimeStats {
	stats := make(map[string]*models.JobRuntimeStats, reg.Len())
	for _, name := range reg.Names() {
		stats[name] = &models.JobRuntimeStats{}
	}

	ordered := make([]models.ExecutionRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartedAt.After(ordered[j].StartedAt)
	})

	for _, rec := range ordered {
		s, ok := stats[rec.JobName]
		if !ok {
			log.Debug().Str("job", rec.JobName).Msg("skipping execution for unregistered job")
			continue
		}

		s.Runs++
		switch rec.Status {
		case models.StatusSuccess:
			s.SuccessCount++
		case models.StatusError:
			s.ErrorCount++
		case models.StatusTimeout:
			s.TimeoutCount++
		case models.StatusRunning:
		default:
			panic("services: unvalidated execution status " + string(rec.Status))
		}

		if s.LastRunAt == nil {
			startedAt := rec.StartedAt
			status := rec.Status
			s.LastRunAt = &startedAt
			s.LastStatus = &status
		}
	}

	out := make(map[string]models.JobRuntimeStats, len(stats))
	for name, s := range stats {
		out[name] = *s
	}
	return out
}

type Totals struct {
	Runs     int
	Success  int
	Errors   int
	Timeouts int
	Running  int
}

func SumStats(stats map[string]models.JobRuntimeStats) Totals {
	var t Totals
	for _, s := range stats {
		t.Runs += s.Runs
		t.Success += s.SuccessCount
		t.Errors += s.ErrorCount
		t.Timeouts += s.TimeoutCount
		if s.LastStatus != nil && *s.LastStatus == models.StatusRunning {
			t.Running++
		}
	}
	return t
}
