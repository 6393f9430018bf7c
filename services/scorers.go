package services

import (
	"fmt"
	"strings"
	"time"

	"opsdash/models"
)

const (
	trustCritical = 30
	trustWarning  = 60
)

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > models.MaxScore {
		return models.MaxScore
	}
	return score
}

func newScore(score int, details string) models.SubsystemScore {
	return models.SubsystemScore{Score: clampScore(score), Max: models.MaxScore, Details: details}
}

// ScoreQueue rates the outbound message queue. Every rule is evaluated on
// its own and deductions add up.
func ScoreQueue(q models.QueueStats, now time.Time) models.SubsystemScore {
	score := models.MaxScore
	var issues []string

	switch {
	case q.PendingCount > 500:
		score -= 50
		issues = append(issues, "critical backlog")
	case q.PendingCount > 100:
		score -= 20
		issues = append(issues, "backlog elevado")
	}

	switch {
	case q.StuckCount > 10:
		score -= 30
		issues = append(issues, "muitas travadas")
	case q.StuckCount > 0:
		score -= 10
		issues = append(issues, fmt.Sprintf("%d travada(s)", q.StuckCount))
	}

	switch {
	case q.ErrorsLastHour > 10:
		score -= 15
		issues = append(issues, "erros frequentes")
	case q.ErrorsLastHour > 0:
		score -= 5
	}

	if q.OldestPendingAt != nil && now.Sub(*q.OldestPendingAt) > time.Hour {
		score -= 10
		issues = append(issues, "msg antiga > 1h")
	}

	details := strings.Join(issues, ", ")
	if len(issues) == 0 {
		details = fmt.Sprintf("%d pendentes, %d processando", q.PendingCount, q.ProcessingCount)
	}
	return newScore(score, details)
}

// maxCounted bounds each pool count before weighting. Any count past it
// already drives the score to a bound, and the cap keeps the products from
// overflowing.
const maxCounted = 100

func capCount(n int) int {
	return max(-maxCounted, min(n, maxCounted))
}

// ScorePool rates the device pool. Large or negative counts can push the raw
// value past either bound, so both are clamped.
func ScorePool(p models.PoolStats) models.SubsystemScore {
	score := models.MaxScore -
		15*capCount(p.CriticalDeviceCount) -
		5*capCount(p.WarningDeviceCount) -
		10*capCount(p.CriticalAlertCount) -
		3*capCount(p.WarningAlertCount)

	var issues []string
	if p.CriticalDeviceCount > 0 {
		issues = append(issues, fmt.Sprintf("%d critico(s)", p.CriticalDeviceCount))
	}
	if p.CriticalAlertCount > 0 {
		issues = append(issues, fmt.Sprintf("%d alerta(s) critico(s)", p.CriticalAlertCount))
	}

	details := strings.Join(issues, ", ")
	if len(issues) == 0 {
		details = fmt.Sprintf("%d operacionais", p.TotalDevices)
	}
	return newScore(score, details)
}

// BuildPoolStats buckets devices by trust score and counts unresolved
// alerts by severity.
func BuildPoolStats(devices []models.DeviceRow, alerts []models.AlertRow) (models.PoolStats, error) {
	stats := models.PoolStats{TotalDevices: len(devices)}
	for _, d := range devices {
		switch {
		case d.TrustScore < trustCritical:
			stats.CriticalDeviceCount++
		case d.TrustScore < trustWarning:
			stats.WarningDeviceCount++
		}
	}

	for _, a := range alerts {
		if a.Resolved {
			continue
		}
		sev, err := models.ParseAlertSeverity(string(a.Severity))
		if err != nil {
			return models.PoolStats{}, fmt.Errorf("alert %s: %w", a.ID, err)
		}
		switch sev {
		case models.SeverityCritical:
			stats.CriticalAlertCount++
		case models.SeverityWarning:
			stats.WarningAlertCount++
		case models.SeverityInfo:
		}
	}
	return stats, nil
}
