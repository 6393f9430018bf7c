package services

import (
	"time"

	"opsdash/models"
)

type Staleness struct {
	Stale           bool
	CriticallyStale bool
	// MissingCritical marks a critical job with no run in the window. It is
	// never combined with Stale, which needs a last run to measure against.
	MissingCritical bool
	Elapsed         *time.Duration
}

// StalenessReport keeps per-job flags plus name lists in registry order.
type StalenessReport struct {
	ByJob           map[string]Staleness
	Stale           []string
	CriticallyStale []string
	MissingCritical []string
}

func DetectStaleness(reg Registry, stats map[string]models.JobRuntimeStats, now time.Time) StalenessReport {
	report := StalenessReport{
		ByJob:           make(map[string]Staleness, reg.Len()),
		Stale:           []string{},
		CriticallyStale: []string{},
		MissingCritical: []string{},
	}

	for _, def := range reg.Jobs() {
		var st Staleness
		s := stats[def.Name]

		if s.LastRunAt == nil {
			if def.IsCritical {
				st.MissingCritical = true
				report.MissingCritical = append(report.MissingCritical, def.Name)
			}
		} else {
			elapsed := now.Sub(*s.LastRunAt)
			st.Elapsed = &elapsed
			if elapsed > def.SLA() {
				st.Stale = true
				report.Stale = append(report.Stale, def.Name)
				if def.IsCritical {
					st.CriticallyStale = true
					report.CriticallyStale = append(report.CriticallyStale, def.Name)
				}
			}
		}

		report.ByJob[def.Name] = st
	}
	return report
}
