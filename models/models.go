package models

import (
	"fmt"
	"time"
)

type JobCategory string

const (
	CategoryCritical JobCategory = "critical"
	CategoryFrequent JobCategory = "frequent"
	CategoryHourly   JobCategory = "hourly"
	CategoryDaily    JobCategory = "daily"
	CategoryWeekly   JobCategory = "weekly"
)

func ParseJobCategory(s string) (JobCategory, error) {
	switch c := JobCategory(s); c {
	case CategoryCritical, CategoryFrequent, CategoryHourly, CategoryDaily, CategoryWeekly:
		return c, nil
	default:
		return "", fmt.Errorf("unknown job category %q", s)
	}
}

type ExecutionStatus string

const (
	StatusSuccess ExecutionStatus = "success"
	StatusError   ExecutionStatus = "error"
	StatusTimeout ExecutionStatus = "timeout"
	StatusRunning ExecutionStatus = "running"
)

func ParseExecutionStatus(s string) (ExecutionStatus, error) {
	switch st := ExecutionStatus(s); st {
	case StatusSuccess, StatusError, StatusTimeout, StatusRunning:
		return st, nil
	default:
		return "", fmt.Errorf("unknown execution status %q", s)
	}
}

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

func ParseAlertSeverity(s string) (AlertSeverity, error) {
	switch sv := AlertSeverity(s); sv {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return sv, nil
	default:
		return "", fmt.Errorf("unknown alert severity %q", s)
	}
}

// JobDefinition is one row of the job registry. Rows are built once at
// start-up and never mutated.
type JobDefinition struct {
	Name       string      `json:"name" yaml:"name"`
	Category   JobCategory `json:"category" yaml:"category"`
	Schedule   string      `json:"schedule" yaml:"schedule"`
	SLASeconds int         `json:"sla_seconds" yaml:"sla_seconds"`
	IsCritical bool        `json:"is_critical" yaml:"is_critical"`
}

func (d JobDefinition) SLA() time.Duration {
	return time.Duration(d.SLASeconds) * time.Second
}

// ExecutionRecord is a single run reported by the external scheduler.
type ExecutionRecord struct {
	JobName    string          `json:"job_name"`
	Status     ExecutionStatus `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	DurationMs *int64          `json:"duration_ms,omitempty"`
}

type JobRuntimeStats struct {
	Runs         int              `json:"runs"`
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	TimeoutCount int              `json:"timeout_count"`
	LastRunAt    *time.Time       `json:"last_run_at"`
	LastStatus   *ExecutionStatus `json:"last_status"`
}

type QueueStats struct {
	PendingCount    int        `json:"pending"`
	ProcessingCount int        `json:"processing"`
	StuckCount      int        `json:"stuck"`
	ErrorsLastHour  int        `json:"errors_last_hour"`
	OldestPendingAt *time.Time `json:"oldest_pending_at,omitempty"`
}

type DeviceRow struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	TrustScore float64 `json:"trust_score"`
}

type AlertRow struct {
	ID       string        `json:"id"`
	Severity AlertSeverity `json:"severity"`
	Type     string        `json:"type"`
	Resolved bool          `json:"resolved"`
}

type PoolStats struct {
	TotalDevices        int `json:"total_devices"`
	CriticalDeviceCount int `json:"critical_devices"`
	WarningDeviceCount  int `json:"warning_devices"`
	CriticalAlertCount  int `json:"critical_alerts"`
	WarningAlertCount   int `json:"warning_alerts"`
}
