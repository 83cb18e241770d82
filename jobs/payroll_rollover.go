package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/payroll"
)

// PayrollRoller runs month rollovers.
type PayrollRoller interface {
	Rollover(ctx context.Context, actorID, commerceID int64) (payroll.RolloverResult, error)
	RolloverAll(ctx context.Context) (int, error)
}

// PayrollRolloverJob starts a new payroll month.
type PayrollRolloverJob struct {
	Payroll PayrollRoller
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewPayrollRolloverJob wires dependencies for the rollover handler.
func NewPayrollRolloverJob(roller PayrollRoller, logger *slog.Logger, metrics *jobmetrics.Metrics) *PayrollRolloverJob {
	return &PayrollRolloverJob{Payroll: roller, Logger: logger, Metrics: metrics}
}

// Handle processes payroll rollover tasks.
func (j *PayrollRolloverJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Payroll == nil {
		return errors.New("payroll rollover: handler not configured")
	}
	var payload PayrollRolloverPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("payroll rollover payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	metrics := jobMetrics(j.Metrics)
	tracker := metrics.Track(TaskPayrollRollover)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()
	logger := jobLogger(j.Logger, TaskPayrollRollover)

	if payload.CommerceID > 0 {
		result, err := j.Payroll.Rollover(ctx, 0, payload.CommerceID)
		if err != nil {
			logger.Error("rollover tenant", slog.Int64("commerce_id", payload.CommerceID), slog.Any("error", err))
			return err
		}
		tracker.Add(1)
		logger.Info("payroll rolled over", slog.Int64("commerce_id", payload.CommerceID), slog.Int("employees", len(result.Employees)))
		return nil
	}

	done, err := j.Payroll.RolloverAll(ctx)
	tracker.Add(done)
	if err != nil {
		logger.Error("rollover tenants", slog.Int("completed", done), slog.Any("error", err))
		return err
	}
	logger.Info("payroll rolled over", slog.Int("tenants", done))
	return nil
}
