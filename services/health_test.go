package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"opsdash/metrics"
	"opsdash/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	records []models.ExecutionRecord
	queue   models.QueueStats
	devices []models.DeviceRow
	alerts  []models.AlertRow

	execErr, queueErr, devErr, alertErr error

	gotSince time.Time
	gotNames []string
}

func (f *fakeSource) Executions(_ context.Context, since time.Time, jobNames []string) ([]models.ExecutionRecord, error) {
	f.gotSince = since
	f.gotNames = jobNames
	return f.records, f.execErr
}

func (f *fakeSource) QueueStats(context.Context, time.Time) (models.QueueStats, error) {
	return f.queue, f.queueErr
}

func (f *fakeSource) Devices(context.Context) ([]models.DeviceRow, error) {
	return f.devices, f.devErr
}

func (f *fakeSource) ActiveAlerts(context.Context) ([]models.AlertRow, error) {
	return f.alerts, f.alertErr
}

func newTestService(t *testing.T, src Source) (*HealthService, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	svc := NewHealthService(testRegistry(t), src, time.Second, m)
	svc.Now = func() time.Time { return testNow }
	return svc, m
}

func TestEvaluateHealthy(t *testing.T) {
	reg := testRegistry(t)

	got, err := Evaluate(reg, Snapshot{Executions: healthyRecords()}, testNow)
	require.NoError(t, err)

	assert.Equal(t, models.HealthHealthy, got.SystemHealth.Status)
	assert.Equal(t, 100, got.SystemHealth.Score)
	checks := got.SystemHealth.Checks
	for _, c := range []models.SubsystemScore{checks.Jobs, checks.Connectivity, checks.Queue, checks.Pool} {
		assert.Equal(t, 100, c.Score)
	}
	assert.Equal(t, "0 pendentes, 0 processando", checks.Queue.Details)
	assert.Equal(t, "0 operacionais", checks.Pool.Details)
}

func TestEvaluateCriticalStaleOverridesSubsystems(t *testing.T) {
	reg := testRegistry(t)
	snap := Snapshot{
		Executions: []models.ExecutionRecord{
			run("critical-a", models.StatusSuccess, 10*time.Minute),
			run("critical-b", models.StatusSuccess, time.Minute),
		},
		Devices: []models.DeviceRow{{ID: "d1", TrustScore: 90}},
	}

	got, err := Evaluate(reg, snap, testNow)
	require.NoError(t, err)

	assert.Equal(t, models.HealthCritical, got.SystemHealth.Status)
	assert.Equal(t, []string{"critical-a"}, got.Alerts.CriticalStale)
	assert.Equal(t, 1, got.JobsStats.StaleJobs)
	assert.Equal(t, 100, got.SystemHealth.Checks.Queue.Score)
	assert.Equal(t, 100, got.SystemHealth.Checks.Pool.Score)
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	reg := testRegistry(t)

	_, err := Evaluate(reg, Snapshot{Executions: []models.ExecutionRecord{
		{JobName: "critical-a", Status: "queued", StartedAt: testNow},
	}}, testNow)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Evaluate(reg, Snapshot{Alerts: []models.AlertRow{{ID: "x", Severity: "loud"}}}, testNow)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	reg := testRegistry(t)
	snap := Snapshot{
		Executions: []models.ExecutionRecord{
			run("critical-a", models.StatusError, 20*time.Minute),
			run("frequent-a", models.StatusTimeout, time.Hour),
			run("hourly-a", models.StatusSuccess, 2*time.Hour),
		},
		Queue:   models.QueueStats{PendingCount: 150, StuckCount: 2, OldestPendingAt: ago(2 * time.Hour)},
		Devices: []models.DeviceRow{{ID: "d1", TrustScore: 10}, {ID: "d2", TrustScore: 45}},
		Alerts:  []models.AlertRow{{ID: "a1", Severity: models.SeverityCritical}},
	}

	first, err := Evaluate(reg, snap, testNow)
	require.NoError(t, err)
	second, err := Evaluate(reg, snap, testNow)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, string(a), string(b))
}

func TestOverviewUsesDefaultsForFailedSources(t *testing.T) {
	src := &fakeSource{
		records:  healthyRecords(),
		queue:    models.QueueStats{PendingCount: 900},
		devices:  []models.DeviceRow{{ID: "d1", TrustScore: 5}},
		queueErr: errors.New("connection refused"),
		devErr:   context.DeadlineExceeded,
	}
	svc, m := newTestService(t, src)

	got, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.HealthHealthy, got.SystemHealth.Status)
	assert.Equal(t, 100, got.SystemHealth.Checks.Queue.Score, "failed queue read scores as empty queue")
	assert.Equal(t, 100, got.SystemHealth.Checks.Pool.Score)
	assert.Equal(t, "0 pendentes, 0 processando (dados indisponiveis)", got.SystemHealth.Checks.Queue.Details)
	assert.Equal(t, "0 operacionais (dados indisponiveis)", got.SystemHealth.Checks.Pool.Details)
	assert.NotContains(t, got.SystemHealth.Checks.Jobs.Details, "indisponiveis")
	assert.NotContains(t, got.SystemHealth.Checks.Connectivity.Details, "indisponiveis")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues(SourceQueue)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues(SourceDevices)))
}

func TestCollect(t *testing.T) {
	src := &fakeSource{
		records:  healthyRecords(),
		queue:    models.QueueStats{PendingCount: 7},
		alerts:   []models.AlertRow{{ID: "a1", Severity: "bogus"}},
		execErr:  nil,
		alertErr: nil,
	}
	svc, _ := newTestService(t, src)

	snap := svc.Collect(context.Background(), testNow)

	assert.Len(t, snap.Executions, 2)
	assert.Equal(t, 7, snap.Queue.PendingCount)
	assert.Nil(t, snap.Alerts, "alerts with unknown severity are dropped as a failed read")
	assert.Equal(t, []string{SourceAlerts}, snap.Failed)
	assert.Equal(t, testNow.Add(-ExecutionWindow), src.gotSince)
	assert.Equal(t, svc.Registry.Names(), src.gotNames)
}

func TestCollectAllSourcesFailing(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{execErr: boom, queueErr: boom, devErr: boom, alertErr: boom}
	svc, _ := newTestService(t, src)

	got, err := svc.Overview(context.Background())
	require.NoError(t, err)

	// no executions means both critical jobs are missing
	assert.Equal(t, models.HealthCritical, got.SystemHealth.Status)
	assert.Equal(t, []string{"critical-a", "critical-b"}, got.Alerts.MissingCritical)
	assert.Equal(t, 100.0, got.JobsStats.SuccessRate24h)

	checks := got.SystemHealth.Checks
	for _, c := range []models.SubsystemScore{checks.Jobs, checks.Connectivity, checks.Queue, checks.Pool} {
		assert.True(t, strings.HasSuffix(c.Details, "(dados indisponiveis)"), c.Details)
		assert.Equal(t, 1, strings.Count(c.Details, "indisponiveis"), "marked once: %s", c.Details)
	}
}

func TestOverviewRejectsBadAlertsAsFailedRead(t *testing.T) {
	src := &fakeSource{
		records: healthyRecords(),
		devices: []models.DeviceRow{{ID: "d1", TrustScore: 90}},
		alerts: []models.AlertRow{
			{ID: "a1", Severity: models.SeverityCritical},
			{ID: "a2", Severity: "bogus"},
		},
	}
	svc, m := newTestService(t, src)

	got, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, got.SystemHealth.Checks.Pool.Score, "alerts fall back to empty")
	assert.Equal(t, "1 operacionais (dados indisponiveis)", got.SystemHealth.Checks.Pool.Details)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues(SourceAlerts)))
}

func TestCollectIgnoresResolvedAlertSeverity(t *testing.T) {
	src := &fakeSource{alerts: []models.AlertRow{{ID: "a1", Severity: "legacy", Resolved: true}}}
	svc, _ := newTestService(t, src)

	snap := svc.Collect(context.Background(), testNow)

	assert.Empty(t, snap.Failed)
	assert.Len(t, snap.Alerts, 1)
}

func TestJobHealth(t *testing.T) {
	src := &fakeSource{records: []models.ExecutionRecord{
		run("critical-a", models.StatusSuccess, 10*time.Minute),
		run("hourly-a", models.StatusSuccess, 30*time.Minute),
	}}
	svc, _ := newTestService(t, src)

	jobs, err := svc.JobHealth(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 5)

	a := jobs[0]
	assert.Equal(t, "critical-a", a.Name)
	assert.True(t, a.Stale)
	assert.True(t, a.CriticallyStale)
	require.NotNil(t, a.ElapsedSeconds)
	assert.Equal(t, int64(600), *a.ElapsedSeconds)
	require.NotNil(t, a.NextExpectedAt)
	assert.Equal(t, testNow.Add(-9*time.Minute), *a.NextExpectedAt)

	b := jobs[1]
	assert.True(t, b.MissingCritical)
	assert.Nil(t, b.ElapsedSeconds)

	h := jobs[3]
	assert.Equal(t, "hourly-a", h.Name)
	assert.False(t, h.Stale)
	require.NotNil(t, h.NextExpectedAt)
	assert.Equal(t, testNow, *h.NextExpectedAt)
}

func TestJobHealthPropagatesFetchError(t *testing.T) {
	svc, _ := newTestService(t, &fakeSource{execErr: errors.New("down")})

	_, err := svc.JobHealth(context.Background())
	assert.ErrorContains(t, err, "fetching executions")
}
