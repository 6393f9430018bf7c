package services

import "opsdash/models"

// DefaultJobs is the built-in catalog of scheduler jobs. JOB_REGISTRY_FILE
// replaces it at start-up.
var DefaultJobs = []models.JobDefinition{
	{Name: "process-message-queue", Category: models.CategoryCritical, Schedule: "* * * * *", SLASeconds: 180, IsCritical: true},
	{Name: "dispatch-campaigns", Category: models.CategoryCritical, Schedule: "*/2 * * * *", SLASeconds: 300, IsCritical: true},
	{Name: "sync-device-status", Category: models.CategoryCritical, Schedule: "*/2 * * * *", SLASeconds: 300, IsCritical: true},
	{Name: "release-stuck-messages", Category: models.CategoryFrequent, Schedule: "*/5 * * * *", SLASeconds: 600, IsCritical: false},
	{Name: "check-device-health", Category: models.CategoryFrequent, Schedule: "*/5 * * * *", SLASeconds: 600, IsCritical: false},
	{Name: "process-inbound-replies", Category: models.CategoryFrequent, Schedule: "*/10 * * * *", SLASeconds: 1200, IsCritical: false},
	{Name: "recalculate-trust-scores", Category: models.CategoryHourly, Schedule: "0 * * * *", SLASeconds: 5400, IsCritical: false},
	{Name: "rotate-device-pool", Category: models.CategoryHourly, Schedule: "15 * * * *", SLASeconds: 5400, IsCritical: false},
	{Name: "sync-contact-lists", Category: models.CategoryHourly, Schedule: "30 * * * *", SLASeconds: 5400, IsCritical: false},
	{Name: "warmup-new-devices", Category: models.CategoryDaily, Schedule: "0 9 * * *", SLASeconds: 93600, IsCritical: false},
	{Name: "aggregate-daily-metrics", Category: models.CategoryDaily, Schedule: "5 0 * * *", SLASeconds: 93600, IsCritical: false},
	{Name: "expire-opt-outs", Category: models.CategoryDaily, Schedule: "0 3 * * *", SLASeconds: 93600, IsCritical: false},
	{Name: "purge-execution-logs", Category: models.CategoryWeekly, Schedule: "0 4 * * 0", SLASeconds: 691200, IsCritical: false},
	{Name: "generate-weekly-report", Category: models.CategoryWeekly, Schedule: "0 7 * * 1", SLASeconds: 691200, IsCritical: false},
}
