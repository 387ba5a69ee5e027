// Package worker chứa các background worker chạy theo lịch.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	subsvc "talking_menu/internal/api/subscription/service"
	"talking_menu/internal/logger"
	"talking_menu/internal/metrics"
)

// DefaultSubscriptionSchedule là lịch mặc định (cú pháp robfig/cron)
const DefaultSubscriptionSchedule = "@every 1h"

// DueProcessor xử lý các subscription tới hạn
type DueProcessor interface {
	ProcessDue(ctx context.Context) (*subsvc.DueResult, error)
}

// SubscriptionWorker định kỳ cho hết hạn các subscription không gia hạn
// và dời kỳ cho các subscription tự gia hạn
type SubscriptionWorker struct {
	processor DueProcessor
	schedule  string
	timeout   time.Duration
	metrics   *metrics.Metrics
	cron      *cron.Cron
}

// NewSubscriptionWorker tạo SubscriptionWorker. schedule rỗng thì dùng DefaultSubscriptionSchedule.
func NewSubscriptionWorker(processor DueProcessor, schedule string, m *metrics.Metrics) *SubscriptionWorker {
	if schedule == "" {
		schedule = DefaultSubscriptionSchedule
	}
	return &SubscriptionWorker{
		processor: processor,
		schedule:  schedule,
		timeout:   5 * time.Minute,
		metrics:   m,
	}
}

// RunOnce chạy một lượt xử lý, panic được recover để lượt sau vẫn chạy
func (w *SubscriptionWorker) RunOnce(ctx context.Context) (result *subsvc.DueResult, err error) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("🔄 [SUBSCRIPTION] Panic khi xử lý subscription tới hạn, sẽ chạy lại ở lượt sau")
			w.recordRun("panic")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	result, err = w.processor.ProcessDue(ctx)
	if err != nil {
		log.WithError(err).Error("🔄 [SUBSCRIPTION] Failed to process due subscriptions")
		w.recordRun("error")
		return nil, err
	}
	w.recordRun("ok")
	if w.metrics != nil {
		w.metrics.SubscriptionsProcessedTotal.WithLabelValues("expired").Add(float64(result.Expired))
		w.metrics.SubscriptionsProcessedTotal.WithLabelValues("renewed").Add(float64(result.Renewed))
	}
	if result.Expired > 0 || result.Renewed > 0 {
		log.WithFields(map[string]interface{}{
			"expired": result.Expired,
			"renewed": result.Renewed,
		}).Info("🔄 [SUBSCRIPTION] Processed due subscriptions")
	}
	return result, nil
}

func (w *SubscriptionWorker) recordRun(status string) {
	if w.metrics != nil {
		w.metrics.WorkerRunsTotal.WithLabelValues("subscription", status).Inc()
	}
}

// Start đăng ký job với cron và chạy nền cho tới khi ctx bị hủy
func (w *SubscriptionWorker) Start(ctx context.Context) error {
	log := logger.GetAppLogger()
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.schedule, func() {
		_, _ = w.RunOnce(ctx)
	}); err != nil {
		return err
	}
	w.cron.Start()
	log.WithField("schedule", w.schedule).Info("🔄 [SUBSCRIPTION] Starting Subscription Worker...")

	go func() {
		<-ctx.Done()
		w.Stop()
		log.Info("🔄 [SUBSCRIPTION] Subscription Worker stopped")
	}()
	return nil
}

// Stop dừng cron và chờ job đang chạy kết thúc
func (w *SubscriptionWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}
