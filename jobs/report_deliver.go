package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
)

// DeliveryBuilder renders report emails.
type DeliveryBuilder interface {
	BuildDelivery(ctx context.Context, req reports.DeliveryRequest) (reports.Delivery, error)
}

// ReportDeliveryJob renders a summary and emails it.
type ReportDeliveryJob struct {
	Reports DeliveryBuilder
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportDeliveryJob wires dependencies for the delivery handler.
func NewReportDeliveryJob(builder DeliveryBuilder, mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportDeliveryJob {
	return &ReportDeliveryJob{Reports: builder, Mailer: mailer, Logger: logger, Metrics: metrics}
}

// Handle processes report delivery tasks.
func (j *ReportDeliveryJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil || j.Mailer == nil {
		return errors.New("report delivery: handler not configured")
	}
	var req reports.DeliveryRequest
	if err := json.Unmarshal(t.Payload(), &req); err != nil {
		return fmt.Errorf("report delivery payload: %v: %w", err, asynq.SkipRetry)
	}
	if req.CommerceID <= 0 || req.Recipient == "" {
		return fmt.Errorf("report delivery: commerce and recipient required: %w", asynq.SkipRetry)
	}

	metrics := jobMetrics(j.Metrics)
	tracker := metrics.Track(TaskReportDeliver)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()
	logger := jobLogger(j.Logger, TaskReportDeliver).With(slog.Int64("commerce_id", req.CommerceID))

	delivery, err := j.Reports.BuildDelivery(ctx, req)
	if err != nil {
		logger.Error("build report", slog.Any("error", err))
		return err
	}
	if err := j.Mailer.Send(ctx, Message{
		To:      req.Recipient,
		Subject: delivery.Subject,
		Text:    delivery.Text,
		HTML:    string(delivery.HTML),
	}); err != nil {
		logger.Error("send report", slog.Any("error", err))
		return err
	}
	tracker.Add(1)
	logger.Info("report delivered", slog.Int64("requested_by", req.RequestedBy))
	return nil
}
