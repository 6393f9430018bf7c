package models

import "time"

type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthCritical HealthStatus = "critical"
)

// Rank orders statuses healthy < degraded < critical.
func (s HealthStatus) Rank() int {
	switch s {
	case HealthHealthy:
		return 0
	case HealthDegraded:
		return 1
	case HealthCritical:
		return 2
	default:
		panic("models: unknown health status " + string(s))
	}
}

// Escalate returns the more severe of s and other.
func (s HealthStatus) Escalate(other HealthStatus) HealthStatus {
	if other.Rank() > s.Rank() {
		return other
	}
	return s
}

const MaxScore = 100

type SubsystemScore struct {
	Score   int    `json:"score"`
	Max     int    `json:"max"`
	Details string `json:"details"`
}

type HealthChecks struct {
	Jobs         SubsystemScore `json:"jobs"`
	Connectivity SubsystemScore `json:"connectivity"`
	Queue        SubsystemScore `json:"queue"`
	Pool         SubsystemScore `json:"pool"`
}

type SystemHealth struct {
	Status      HealthStatus `json:"status"`
	Score       int          `json:"score"`
	Checks      HealthChecks `json:"checks"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

type JobsStats struct {
	TotalJobs      int     `json:"totalJobs"`
	SuccessRate24h float64 `json:"successRate24h"`
	FailedJobs24h  int     `json:"failedJobs24h"`
	RunningJobs    int     `json:"runningJobs"`
	StaleJobs      int     `json:"staleJobs"`
}

// AlertLists holds job names grouped for operator-facing alert text. The
// slices are never nil so they encode as [] rather than null.
type AlertLists struct {
	CriticalStale    []string `json:"criticalStale"`
	JobsWithErrors   []string `json:"jobsWithErrors"`
	JobsWithTimeouts []string `json:"jobsWithTimeouts"`
	MissingCritical  []string `json:"missingCritical"`
}

// HealthOverview is a point-in-time snapshot. It is rebuilt on every request.
type HealthOverview struct {
	SystemHealth SystemHealth `json:"systemHealth"`
	JobsStats    JobsStats    `json:"jobsStats"`
	Alerts       AlertLists   `json:"alerts"`
	Timestamp    time.Time    `json:"timestamp"`
}

// JobHealth is the per-job view served by the jobs endpoint.
type JobHealth struct {
	JobDefinition
	Stats           JobRuntimeStats `json:"stats"`
	Stale           bool            `json:"stale"`
	CriticallyStale bool            `json:"critically_stale"`
	MissingCritical bool            `json:"missing_critical"`
	ElapsedSeconds  *int64          `json:"elapsed_seconds,omitempty"`
	NextExpectedAt  *time.Time      `json:"next_expected_at,omitempty"`
}
