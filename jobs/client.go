package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-pos/internal/reports"
)

// Client submits tasks. Each task carries its own queue option.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq backed Client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// Enqueue submits a prepared task.
func (c *Client) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs: client not configured")
	}
	return c.client.EnqueueContext(ctx, task, opts...)
}

// EnqueueReportDelivery schedules a report email and returns the task id.
func (c *Client) EnqueueReportDelivery(ctx context.Context, req reports.DeliveryRequest) (string, error) {
	task, err := NewReportDeliverTask(req)
	if err != nil {
		return "", err
	}
	info, err := c.Enqueue(ctx, task)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
