package services

import (
	"fmt"
	"math"
	"time"

	"opsdash/models"
)

const (
	penaltyCriticalStale   = 40
	penaltyMissingCritical = 30
	penaltyManyErrors      = 20
	penaltyPerErroringJob  = 5
	penaltyManyStale       = 10

	manyErrorsThreshold = 3
	manyStaleThreshold  = 5
	safetyNetScore      = 50
	connectivityDown    = 50
)

type ComposeInput struct {
	Registry  Registry
	Stats     map[string]models.JobRuntimeStats
	Staleness StalenessReport
	Alerts    models.AlertLists
	Queue     models.SubsystemScore
	Pool      models.SubsystemScore
	Now       time.Time
}

// SuccessRate is the share of successful runs in percent. No runs at all
// counts as 100.
func SuccessRate(success, runs int) float64 {
	if runs <= 0 {
		return 100
	}
	rate := float64(success) / float64(runs) * 100
	return math.Max(0, math.Min(100, rate))
}

// ComposeHealth derives the overall verdict. Status only moves forward along
// healthy -> degraded -> critical within one call; nothing is kept between
// calls.
func ComposeHealth(in ComposeInput) models.HealthOverview {
	totals := SumStats(in.Stats)
	rate := SuccessRate(totals.Success, totals.Runs)

	status := models.HealthHealthy
	score := models.MaxScore

	if len(in.Alerts.CriticalStale) > 0 {
		status = models.HealthCritical
		score -= penaltyCriticalStale
	}
	if len(in.Alerts.MissingCritical) > 0 {
		status = models.HealthCritical
		score -= penaltyMissingCritical
	}

	erroring := len(in.Alerts.JobsWithErrors)
	switch {
	case erroring > manyErrorsThreshold:
		status = status.Escalate(models.HealthDegraded)
		score -= penaltyManyErrors
	case erroring > 0:
		score -= penaltyPerErroringJob * erroring
	}

	if len(in.Staleness.Stale) > manyStaleThreshold {
		status = status.Escalate(models.HealthDegraded)
		score -= penaltyManyStale
	}

	score = clampScore(score)
	status = safetyNet(status, score)

	return models.HealthOverview{
		SystemHealth: models.SystemHealth{
			Status: status,
			Score:  score,
			Checks: models.HealthChecks{
				Jobs:         jobsCheck(rate, len(in.Staleness.Stale)),
				Connectivity: connectivityCheck(len(in.Alerts.CriticalStale)),
				Queue:        in.Queue,
				Pool:         in.Pool,
			},
			LastUpdated: in.Now,
		},
		JobsStats: models.JobsStats{
			TotalJobs:      in.Registry.Len(),
			SuccessRate24h: math.Round(rate*10) / 10,
			FailedJobs24h:  totals.Errors + totals.Timeouts,
			RunningJobs:    totals.Running,
			StaleJobs:      len(in.Staleness.Stale),
		},
		Alerts:    in.Alerts,
		Timestamp: in.Now,
	}
}

// safetyNet catches a low score that no status rule flagged. It expects a
// clamped score and only ever moves healthy to degraded.
func safetyNet(status models.HealthStatus, score int) models.HealthStatus {
	if score < safetyNetScore && status == models.HealthHealthy {
		return models.HealthDegraded
	}
	return status
}

func jobsCheck(rate float64, stale int) models.SubsystemScore {
	return newScore(int(math.Round(rate)), fmt.Sprintf("%.0f%% sucesso, %d atrasado(s)", rate, stale))
}

func connectivityCheck(criticalStale int) models.SubsystemScore {
	if criticalStale == 0 {
		return newScore(models.MaxScore, "jobs criticos em dia")
	}
	return newScore(connectivityDown, fmt.Sprintf("%d job(s) critico(s) atrasado(s)", criticalStale))
}
