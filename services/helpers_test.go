package services

import (
	"testing"
	"time"

	"opsdash/models"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func testJobs() []models.JobDefinition {
	return []models.JobDefinition{
		{Name: "critical-a", Category: models.CategoryCritical, Schedule: "* * * * *", SLASeconds: 180, IsCritical: true},
		{Name: "critical-b", Category: models.CategoryCritical, Schedule: "*/2 * * * *", SLASeconds: 300, IsCritical: true},
		{Name: "frequent-a", Category: models.CategoryFrequent, Schedule: "*/5 * * * *", SLASeconds: 600},
		{Name: "hourly-a", Category: models.CategoryHourly, Schedule: "0 * * * *", SLASeconds: 5400},
		{Name: "daily-a", Category: models.CategoryDaily, Schedule: "0 3 * * *", SLASeconds: 93600},
	}
}

func testRegistry(t *testing.T) Registry {
	t.Helper()
	reg, err := NewRegistry(testJobs())
	require.NoError(t, err)
	return reg
}

func run(job string, status models.ExecutionStatus, ago time.Duration) models.ExecutionRecord {
	return models.ExecutionRecord{JobName: job, Status: status, StartedAt: testNow.Add(-ago)}
}

// healthyRecords keeps both critical jobs inside their SLA.
func healthyRecords() []models.ExecutionRecord {
	return []models.ExecutionRecord{
		run("critical-a", models.StatusSuccess, time.Minute),
		run("critical-b", models.StatusSuccess, time.Minute),
	}
}
