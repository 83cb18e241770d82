package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-pos/internal/reports"
)

const (
	// TaskReportDeliver emails a rendered sales summary.
	TaskReportDeliver = "report:deliver"
	// TaskReportWarmup pre-populates dashboard caches for every live tenant.
	TaskReportWarmup = "report:warmup"
	// TaskPayrollRollover recomputes every tenant's payroll balances for a new month.
	TaskPayrollRollover = "payroll:rollover"
	// TaskIdempotencyCleanup purges expired checkout idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// DefaultIdempotencyRetention is how long claimed keys are kept.
const DefaultIdempotencyRetention = 72 * time.Hour

// NewReportDeliverTask constructs a report delivery task.
func NewReportDeliverTask(req reports.DeliveryRequest) (*asynq.Task, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportDeliver, data, asynq.Queue(QueueMail), asynq.MaxRetry(5)), nil
}

// ReportWarmupPayload selects how far back the warmed dashboards reach.
type ReportWarmupPayload struct {
	Days int `json:"days"`
}

// NewReportWarmupTask builds a warmup task covering the trailing days. Zero
// warms the all-time dashboard only.
func NewReportWarmupTask(days int) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{Days: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data, asynq.Queue(QueueDefault), asynq.MaxRetry(2)), nil
}

// PayrollRolloverPayload optionally restricts the rollover to one tenant.
type PayrollRolloverPayload struct {
	CommerceID int64 `json:"commerce_id,omitempty"`
}

// NewPayrollRolloverTask builds a rollover task. A zero commerceID rolls
// every tenant over.
func NewPayrollRolloverTask(commerceID int64) (*asynq.Task, error) {
	data, err := json.Marshal(PayrollRolloverPayload{CommerceID: commerceID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayrollRollover, data, asynq.Queue(QueueMaintenance), asynq.Unique(time.Hour)), nil
}

// IdempotencyCleanupPayload sets the retention window in hours.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask builds a cleanup task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: int(retention / time.Hour)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data, asynq.Queue(QueueMaintenance)), nil
}

// NewTaskByName builds a task with its default payload. It backs the jobs CLI.
func NewTaskByName(name string) (*asynq.Task, bool, error) {
	var task *asynq.Task
	var err error
	switch name {
	case TaskReportWarmup:
		task, err = NewReportWarmupTask(30)
	case TaskPayrollRollover:
		task, err = NewPayrollRolloverTask(0)
	case TaskIdempotencyCleanup:
		task, err = NewIdempotencyCleanupTask(DefaultIdempotencyRetention)
	default:
		return nil, false, nil
	}
	return task, true, err
}
