package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/tenants"
)

type memoryRepo struct {
	invoices map[int64]Invoice
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{invoices: make(map[int64]Invoice), nextID: 1}
}

func (m *memoryRepo) ListByCommerce(_ context.Context, commerceID int64) ([]Invoice, error) {
	out := []Invoice{}
	for id := m.nextID - 1; id > 0; id-- {
		if inv, ok := m.invoices[id]; ok && inv.CommerceID == commerceID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, fmt.Errorf("invoice %d: %w", id, httpx.ErrNotFound)
	}
	return inv, nil
}

func (m *memoryRepo) Create(_ context.Context, inv Invoice) (Invoice, error) {
	inv.ID = m.nextID
	m.nextID++
	m.invoices[inv.ID] = inv
	return inv, nil
}

func (m *memoryRepo) Save(_ context.Context, inv Invoice) (Invoice, error) {
	m.invoices[inv.ID] = inv
	return inv, nil
}

type stubCommerces map[int64]tenants.Commerce

func (s stubCommerces) Get(_ context.Context, id int64) (tenants.Commerce, error) {
	c, ok := s[id]
	if !ok {
		return tenants.Commerce{}, fmt.Errorf("commerce %d: %w", id, httpx.ErrNotFound)
	}
	return c, nil
}

type recordingAuditor struct {
	actions []string
}

func (a *recordingAuditor) Record(_ context.Context, log shared.AuditLog) error {
	a.actions = append(a.actions, log.Action)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *recordingAuditor) {
	t.Helper()
	repo := newMemoryRepo()
	audit := &recordingAuditor{}
	commerces := stubCommerces{
		7: {ID: 7, Name: "Kiosko", SubscriptionPrice: decimal.RequireFromString("29.90")},
	}
	svc := NewService(repo, commerces, audit, 15, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC) }
	return svc, repo, audit
}

func TestCreateInvoiceDefaultsToSubscriptionPrice(t *testing.T) {
	svc, _, audit := newTestService(t)

	inv, err := svc.CreateInvoice(context.Background(), 1, 7, CreateInvoiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, inv.Status)
	assert.Equal(t, "29.9", inv.Amount.String())
	assert.Equal(t, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC), inv.DueDate)
	assert.Nil(t, inv.PaidAt)
	assert.Equal(t, []string{"invoice.create"}, audit.actions)
}

func TestCreateInvoiceExplicitAmountAndDueDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	inv, err := svc.CreateInvoice(context.Background(), 1, 7, CreateInvoiceRequest{
		Amount:  decimal.NewFromInt(50),
		DueDate: "2026-04-01",
	})
	require.NoError(t, err)
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), inv.DueDate)
}

func TestCreateInvoiceRejectsNegativeAmount(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateInvoice(context.Background(), 1, 7, CreateInvoiceRequest{Amount: decimal.NewFromInt(-5)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestCreateInvoiceUnknownCommerce(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateInvoice(context.Background(), 1, 99, CreateInvoiceRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestMarkPaidTransitions(t *testing.T) {
	svc, repo, audit := newTestService(t)
	inv, err := svc.CreateInvoice(context.Background(), 1, 7, CreateInvoiceRequest{})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	firstPaidAt := *paid.PaidAt

	svc.now = func() time.Time { return firstPaidAt.Add(time.Hour) }
	again, err := svc.MarkPaid(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, again.Status)
	assert.Equal(t, firstPaidAt, *again.PaidAt)
	assert.Equal(t, []string{"invoice.create", "invoice.paid"}, audit.actions)

	overdue := repo.invoices[inv.ID]
	overdue.Status = StatusOverdue
	overdue.PaidAt = nil
	repo.invoices[inv.ID] = overdue
	_, err = svc.MarkPaid(context.Background(), 1, inv.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.Equal(t, 409, httpx.StatusOf(err))
}

func TestListNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	first, err := svc.CreateInvoice(context.Background(), 1, 7, CreateInvoiceRequest{})
	require.NoError(t, err)
	second, err := svc.CreateInvoice(context.Background(), 1, 7, CreateInvoiceRequest{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	list, err := svc.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}
