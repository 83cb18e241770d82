package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
	"github.com/odyssey-erp/odyssey-pos/internal/tenants"
)

// TenantLister lists commerces.
type TenantLister interface {
	List(ctx context.Context) ([]tenants.Commerce, error)
}

// Dashboarder builds tenant dashboards.
type Dashboarder interface {
	Dashboard(ctx context.Context, filter reports.Filter) (reports.Summary, error)
}

// ReportWarmupJob pre-populates dashboard caches for tenants that are not inactive.
type ReportWarmupJob struct {
	Tenants TenantLister
	Reports Dashboarder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(tenantList TenantLister, dashboards Dashboarder, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Tenants: tenantList,
		Reports: dashboards,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Tenants == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("report warmup payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	metrics := jobMetrics(j.Metrics)
	tracker := metrics.Track(TaskReportWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()
	logger := jobLogger(j.Logger, TaskReportWarmup)

	commerces, err := j.Tenants.List(ctx)
	if err != nil {
		logger.Error("list tenants", slog.Any("error", err))
		return err
	}

	now := j.clock()
	warmed := 0
	for _, c := range commerces {
		if c.SubscriptionStatus == tenants.SubscriptionInactive {
			continue
		}
		if err := j.warm(ctx, c.ID, now, payload.Days); err != nil {
			logger.Error("warm tenant", slog.Int64("commerce_id", c.ID), slog.Any("error", err))
			return err
		}
		warmed++
	}
	tracker.Add(warmed)
	logger.Info("completed report warmup", slog.Int("tenants", warmed), slog.Duration("duration", time.Since(now)))
	return nil
}

func (j *ReportWarmupJob) warm(ctx context.Context, commerceID int64, now time.Time, days int) error {
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Reports.Dashboard(scopeCtx, reports.Filter{CommerceID: commerceID}); err != nil {
		return err
	}
	if days <= 0 {
		return nil
	}
	y, m, d := now.Date()
	tomorrow := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	_, err := j.Reports.Dashboard(scopeCtx, reports.Filter{
		CommerceID: commerceID,
		From:       tomorrow.AddDate(0, 0, -days),
		To:         tomorrow,
	})
	return err
}
