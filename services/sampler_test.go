package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsdash/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSamplerTickPublishesOverview(t *testing.T) {
	src := &fakeSource{records: []models.ExecutionRecord{
		run("critical-a", models.StatusSuccess, time.Minute),
	}}
	svc, m := newTestService(t, src)
	s := NewSampler(svc, time.Minute)

	s.Tick(context.Background())

	assert.Equal(t, models.HealthCritical, s.Last())
	assert.Equal(t, 70.0, testutil.ToFloat64(m.HealthScore))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HealthStatus.WithLabelValues("critical")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MissingCritical))

	src.records = healthyRecords()
	s.Tick(context.Background())

	assert.Equal(t, models.HealthHealthy, s.Last())
	assert.Equal(t, 100.0, testutil.ToFloat64(m.HealthScore))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HealthStatus.WithLabelValues("critical")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("ok")))
}

func TestSamplerTickCountsFailedEvaluation(t *testing.T) {
	src := &fakeSource{records: []models.ExecutionRecord{
		{JobName: "critical-a", Status: "exploded", StartedAt: testNow},
	}}
	svc, m := newTestService(t, src)
	s := NewSampler(svc, time.Minute)

	s.Tick(context.Background())

	assert.Equal(t, models.HealthStatus(""), s.Last())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("error")))
}

func TestSamplerRunStopsOnCancel(t *testing.T) {
	svc, m := newTestService(t, &fakeSource{execErr: errors.New("down")})
	s := NewSampler(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.Evaluations.WithLabelValues("ok")) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop")
	}
}
