package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"opsdash/models"

	"github.com/lib/pq"
)

// stuckAfter is how long a message may sit in processing before it counts
// as stuck.
const stuckAfter = 10 * time.Minute

// PostgresSource reads telemetry from the platform database.
type PostgresSource struct {
	DB *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{DB: db}
}

func (p *PostgresSource) Executions(ctx context.Context, since time.Time, jobNames []string) ([]models.ExecutionRecord, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT job_name, status, started_at, finished_at, duration_ms
		FROM job_executions
		WHERE started_at >= $1 AND job_name = ANY($2)
		ORDER BY started_at DESC
	`, since, pq.Array(jobNames))
	if err != nil {
		return nil, fmt.Errorf("querying job_executions: %w", err)
	}
	defer rows.Close()

	var records []models.ExecutionRecord
	for rows.Next() {
		var (
			rec      models.ExecutionRecord
			status   string
			finished sql.NullTime
			duration sql.NullInt64
		)
		if err := rows.Scan(&rec.JobName, &status, &rec.StartedAt, &finished, &duration); err != nil {
			return nil, fmt.Errorf("scanning job_executions: %w", err)
		}
		rec.Status = models.ExecutionStatus(status)
		if finished.Valid {
			t := finished.Time
			rec.FinishedAt = &t
		}
		if duration.Valid {
			d := duration.Int64
			rec.DurationMs = &d
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (p *PostgresSource) QueueStats(ctx context.Context, now time.Time) (models.QueueStats, error) {
	var (
		q      models.QueueStats
		oldest pq.NullTime
	)
	err := p.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'processing'),
			COUNT(*) FILTER (WHERE status = 'processing' AND updated_at < $1),
			COUNT(*) FILTER (WHERE status = 'failed' AND updated_at > $2),
			MIN(created_at) FILTER (WHERE status = 'pending')
		FROM message_queue
	`, now.Add(-stuckAfter), now.Add(-time.Hour)).Scan(
		&q.PendingCount, &q.ProcessingCount, &q.StuckCount, &q.ErrorsLastHour, &oldest,
	)
	if err != nil {
		return models.QueueStats{}, fmt.Errorf("querying message_queue: %w", err)
	}
	if oldest.Valid {
		t := oldest.Time
		q.OldestPendingAt = &t
	}
	return q, nil
}

func (p *PostgresSource) Devices(ctx context.Context) ([]models.DeviceRow, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, status, COALESCE(trust_score, 0)
		FROM pool_devices
	`)
	if err != nil {
		return nil, fmt.Errorf("querying pool_devices: %w", err)
	}
	defer rows.Close()

	var devices []models.DeviceRow
	for rows.Next() {
		var d models.DeviceRow
		if err := rows.Scan(&d.ID, &d.Status, &d.TrustScore); err != nil {
			return nil, fmt.Errorf("scanning pool_devices: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (p *PostgresSource) ActiveAlerts(ctx context.Context) ([]models.AlertRow, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, severity, type, resolved
		FROM pool_alerts
		WHERE resolved = false
	`)
	if err != nil {
		return nil, fmt.Errorf("querying pool_alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.AlertRow
	for rows.Next() {
		var (
			a        models.AlertRow
			severity string
		)
		if err := rows.Scan(&a.ID, &severity, &a.Type, &a.Resolved); err != nil {
			return nil, fmt.Errorf("scanning pool_alerts: %w", err)
		}
		a.Severity = models.AlertSeverity(severity)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
