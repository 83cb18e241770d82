package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/jobs"
	_ "github.com/odyssey-erp/odyssey-pos/testing"
)

func TestTriggerEnqueuesKnownJobs(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewJobsCLI(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	want := map[string]string{
		jobs.TaskReportWarmup:       jobs.QueueDefault,
		jobs.TaskPayrollRollover:    jobs.QueueMaintenance,
		jobs.TaskIdempotencyCleanup: jobs.QueueMaintenance,
	}
	for name, queue := range want {
		info, err := c.Trigger(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, name, info.Type)
		assert.Equal(t, queue, info.Queue, name)
	}

	depths, err := c.InspectQueues()
	require.NoError(t, err)
	pending := map[string]int{}
	for _, d := range depths {
		pending[d.Queue] = d.Pending
	}
	assert.Equal(t, map[string]int{jobs.QueueMail: 0, jobs.QueueDefault: 1, jobs.QueueMaintenance: 2}, pending)
}

func TestTriggerRejectsUnknownJob(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewJobsCLI(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Trigger(context.Background(), jobs.TaskReportDeliver)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported job")
}

func TestInspectEmptyQueues(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewJobsCLI(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	depths, err := c.InspectQueues()
	require.NoError(t, err)
	require.Len(t, depths, 3)
	for _, d := range depths {
		assert.Zero(t, d.Pending, d.Queue)
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintStats(&buf, []jobs.QueueDepth{{Queue: "mail", Pending: 2}, {Queue: "maintenance", Retry: 1}}))
	out := buf.String()
	assert.Contains(t, out, "ARCHIVED")
	assert.Contains(t, out, "mail")
	assert.Contains(t, out, "maintenance")
}
