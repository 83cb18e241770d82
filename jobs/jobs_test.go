package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/payroll"
	"github.com/odyssey-erp/odyssey-pos/internal/reports"
	"github.com/odyssey-erp/odyssey-pos/internal/tenants"
)

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

type stubBuilder struct {
	err error
}

func (s stubBuilder) BuildDelivery(_ context.Context, req reports.DeliveryRequest) (reports.Delivery, error) {
	if s.err != nil {
		return reports.Delivery{}, s.err
	}
	return reports.Delivery{Subject: "Sales summary", HTML: []byte("<p>hi</p>"), Text: "hi"}, nil
}

type recordingMailer struct {
	sent []Message
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func TestReportDeliveryJob(t *testing.T) {
	mailer := &recordingMailer{}
	job := NewReportDeliveryJob(stubBuilder{}, mailer, nil, testMetrics())

	task, err := NewReportDeliverTask(reports.DeliveryRequest{CommerceID: 3, Recipient: "owner@example.com"})
	require.NoError(t, err)
	assert.Equal(t, TaskReportDeliver, task.Type())

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "owner@example.com", mailer.sent[0].To)
	assert.Equal(t, "<p>hi</p>", mailer.sent[0].HTML)
}

func TestReportDeliveryJobSkipsBadPayload(t *testing.T) {
	job := NewReportDeliveryJob(stubBuilder{}, &recordingMailer{}, nil, testMetrics())

	err := job.Handle(context.Background(), asynq.NewTask(TaskReportDeliver, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	body, _ := json.Marshal(reports.DeliveryRequest{CommerceID: 3})
	err = job.Handle(context.Background(), asynq.NewTask(TaskReportDeliver, body))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestReportDeliveryJobRetriesBuildFailure(t *testing.T) {
	job := NewReportDeliveryJob(stubBuilder{err: errors.New("db down")}, &recordingMailer{}, nil, testMetrics())
	task, err := NewReportDeliverTask(reports.DeliveryRequest{CommerceID: 3, Recipient: "a@b.c"})
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

type stubTenants []tenants.Commerce

func (s stubTenants) List(context.Context) ([]tenants.Commerce, error) { return s, nil }

type recordingDashboards struct {
	filters []reports.Filter
}

func (r *recordingDashboards) Dashboard(_ context.Context, f reports.Filter) (reports.Summary, error) {
	r.filters = append(r.filters, f)
	return reports.Summary{}, nil
}

func TestReportWarmupSkipsInactiveTenants(t *testing.T) {
	dash := &recordingDashboards{}
	job := NewReportWarmupJob(stubTenants{
		{ID: 1, SubscriptionStatus: tenants.SubscriptionActive},
		{ID: 2, SubscriptionStatus: tenants.SubscriptionInactive},
		{ID: 3, SubscriptionStatus: tenants.SubscriptionTrial},
	}, dash, nil, testMetrics())
	job.clock = func() time.Time { return time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC) }

	task, err := NewReportWarmupTask(7)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Len(t, dash.filters, 4)
	assert.Equal(t, int64(1), dash.filters[0].CommerceID)
	assert.True(t, dash.filters[0].From.IsZero())
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), dash.filters[1].From)
	assert.Equal(t, time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), dash.filters[1].To)
	assert.Equal(t, int64(3), dash.filters[2].CommerceID)
}

type stubRoller struct {
	single []int64
	all    int
}

func (s *stubRoller) Rollover(_ context.Context, _, commerceID int64) (payroll.RolloverResult, error) {
	s.single = append(s.single, commerceID)
	return payroll.RolloverResult{CommerceID: commerceID}, nil
}

func (s *stubRoller) RolloverAll(context.Context) (int, error) {
	s.all++
	return 2, nil
}

func TestPayrollRolloverJob(t *testing.T) {
	roller := &stubRoller{}
	job := NewPayrollRolloverJob(roller, nil, testMetrics())

	all, err := NewPayrollRolloverTask(0)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), all))
	assert.Equal(t, 1, roller.all)

	one, err := NewPayrollRolloverTask(9)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), one))
	assert.Equal(t, []int64{9}, roller.single)
}

type stubCleaner struct {
	retention time.Duration
}

func (s *stubCleaner) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	s.retention = olderThan
	return 4, nil
}

func TestIdempotencyCleanupJob(t *testing.T) {
	store := &stubCleaner{}
	job := NewIdempotencyCleanupJob(store, nil, testMetrics())

	task, err := NewIdempotencyCleanupTask(24 * time.Hour)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 24*time.Hour, store.retention)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, nil)))
	assert.Equal(t, DefaultIdempotencyRetention, store.retention)
}

func TestNewTaskByName(t *testing.T) {
	for _, name := range []string{TaskReportWarmup, TaskPayrollRollover, TaskIdempotencyCleanup} {
		task, ok, err := NewTaskByName(name)
		require.NoError(t, err)
		require.True(t, ok, name)
		assert.Equal(t, name, task.Type())
	}
	_, ok, err := NewTaskByName(TaskReportDeliver)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSMTPMailerBuildsMultipartMessage(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	mailer := NewSMTPMailer("127.0.0.1", 1025, "no-reply@odyssey.local")
	mailer.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	err := mailer.Send(context.Background(), Message{To: "owner@example.com", Subject: "Résumé", Text: "plain", HTML: "<b>rich</b>"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1025", gotAddr)
	assert.Equal(t, []string{"owner@example.com"}, gotTo)
	raw := string(gotMsg)
	assert.Contains(t, raw, "Subject: =?utf-8?q?R=C3=A9sum=C3=A9?=")
	assert.Contains(t, raw, "multipart/alternative")
	assert.Contains(t, raw, "<b>rich</b>")
	assert.Contains(t, raw, "plain")

	assert.Error(t, mailer.Send(context.Background(), Message{}))
}

func TestClientEnqueueReportDelivery(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	id, err := client.EnqueueReportDelivery(context.Background(), reports.DeliveryRequest{CommerceID: 1, Recipient: "a@b.c"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

type stubInspector struct {
	infos map[string]*asynq.QueueInfo
	err   error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	info, ok := s.infos[queue]
	if !ok {
		return nil, asynq.ErrQueueNotFound
	}
	return info, nil
}

func TestHealthHandler(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		contains  string
	}{
		{"no inspector", nil, http.StatusOK, `"queue":"maintenance"`},
		{"queue info", stubInspector{infos: map[string]*asynq.QueueInfo{QueueMail: {Queue: QueueMail, Pending: 3}}}, http.StatusOK, `"pending":3`},
		{"unknown queues", stubInspector{}, http.StatusOK, `"queue":"default"`},
		{"redis down", stubInspector{err: errors.New("dial tcp")}, http.StatusServiceUnavailable, "queue unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Route("/jobs", NewHandler(tc.inspector, nil).MountRoutes)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
			assert.Equal(t, tc.status, rec.Code)
			assert.True(t, strings.Contains(rec.Body.String(), tc.contains), rec.Body.String())
		})
	}
}

func TestDepthsKeepsQueueOrder(t *testing.T) {
	depths, err := Depths(stubInspector{infos: map[string]*asynq.QueueInfo{
		QueueMaintenance: {Queue: QueueMaintenance, Retry: 2, Archived: 1},
	}})
	require.NoError(t, err)
	require.Len(t, depths, 3)
	assert.Equal(t, QueueMail, depths[0].Queue)
	assert.Equal(t, QueueDepth{Queue: QueueMaintenance, Retry: 2, Archived: 1}, depths[2])
}

func TestTasksRouteToQueues(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	deliver, err := NewReportDeliverTask(reports.DeliveryRequest{CommerceID: 1, Recipient: "a@b.c"})
	require.NoError(t, err)
	info, err := client.Enqueue(context.Background(), deliver)
	require.NoError(t, err)
	assert.Equal(t, QueueMail, info.Queue)

	cleanup, err := NewIdempotencyCleanupTask(DefaultIdempotencyRetention)
	require.NoError(t, err)
	info, err = client.Enqueue(context.Background(), cleanup)
	require.NoError(t, err)
	assert.Equal(t, QueueMaintenance, info.Queue)
}

func TestRetryDelayIsCapped(t *testing.T) {
	assert.Equal(t, 30*time.Second, retryDelay(0, nil, nil))
	assert.Equal(t, 10*time.Minute, retryDelay(50, nil, nil))
}
