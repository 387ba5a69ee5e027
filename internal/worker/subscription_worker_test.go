package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/metrics"
)

type fakeProcessor struct {
	result *subsvc.DueResult
	err    error
	panics bool
	calls  int
}

func (f *fakeProcessor) ProcessDue(ctx context.Context) (*subsvc.DueResult, error) {
	f.calls++
	if f.panics {
		panic("boom")
	}
	return f.result, f.err
}

func TestSubscriptionWorker_RunOnceRecordsCounts(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	p := &fakeProcessor{result: &subsvc.DueResult{Expired: 2, Renewed: 3}}
	w := NewSubscriptionWorker(p, "", m)

	result, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, DefaultSubscriptionSchedule, w.schedule)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.SubscriptionsProcessedTotal.WithLabelValues("expired")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.SubscriptionsProcessedTotal.WithLabelValues("renewed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WorkerRunsTotal.WithLabelValues("subscription", "ok")))
}

func TestSubscriptionWorker_RunOnceError(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	w := NewSubscriptionWorker(&fakeProcessor{err: errors.New("mongo down")}, "@every 1m", m)

	_, err := w.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WorkerRunsTotal.WithLabelValues("subscription", "error")))
}

func TestSubscriptionWorker_RunOnceRecoversPanic(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	w := NewSubscriptionWorker(&fakeProcessor{panics: true}, "", m)

	assert.NotPanics(t, func() { _, _ = w.RunOnce(context.Background()) })
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WorkerRunsTotal.WithLabelValues("subscription", "panic")))
}

func TestSubscriptionWorker_StartRejectsBadSchedule(t *testing.T) {
	w := NewSubscriptionWorker(&fakeProcessor{}, "not a schedule", nil)
	assert.Error(t, w.Start(context.Background()))
}

func TestSubscriptionWorker_StartAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewSubscriptionWorker(&fakeProcessor{result: &subsvc.DueResult{}}, "@every 1h", nil)
	require.NoError(t, w.Start(ctx))
	w.Stop()
}
