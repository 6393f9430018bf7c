package services

import "opsdash/models"

// ClassifyAlerts groups job names for alert text. Every list follows
// registry order and is non-nil.
func ClassifyAlerts(reg Registry, stats map[string]models.JobRuntimeStats, report StalenessReport) models.AlertLists {
	lists := models.AlertLists{
		CriticalStale:    append([]string{}, report.CriticallyStale...),
		JobsWithErrors:   []string{},
		JobsWithTimeouts: []string{},
		MissingCritical:  append([]string{}, report.MissingCritical...),
	}
	for _, name := range reg.Names() {
		s := stats[name]
		if s.ErrorCount > 0 {
			lists.JobsWithErrors = append(lists.JobsWithErrors, name)
		}
		if s.TimeoutCount > 0 {
			lists.JobsWithTimeouts = append(lists.JobsWithTimeouts, name)
		}
	}
	return lists
}
