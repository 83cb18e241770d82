package snapshot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/catalog"
	"github.com/odyssey-erp/odyssey-pos/internal/clients"
	"github.com/odyssey-erp/odyssey-pos/internal/expenses"
	"github.com/odyssey-erp/odyssey-pos/internal/orders"
	"github.com/odyssey-erp/odyssey-pos/internal/payroll"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/rbac"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
	_ "github.com/odyssey-erp/odyssey-pos/testing"
)

type productSource func(context.Context, int64, catalog.ListFilters) ([]catalog.Product, error)

func (f productSource) List(ctx context.Context, id int64, fl catalog.ListFilters) ([]catalog.Product, error) {
	return f(ctx, id, fl)
}

type clientSource func(context.Context, int64, clients.ListFilters) ([]clients.Client, error)

func (f clientSource) List(ctx context.Context, id int64, fl clients.ListFilters) ([]clients.Client, error) {
	return f(ctx, id, fl)
}

type employeeSource func(context.Context, int64) ([]payroll.Employee, error)

func (f employeeSource) List(ctx context.Context, id int64) ([]payroll.Employee, error) {
	return f(ctx, id)
}

type orderSource func(context.Context, int64, orders.ListFilters) ([]orders.Order, error)

func (f orderSource) List(ctx context.Context, id int64, fl orders.ListFilters) ([]orders.Order, error) {
	return f(ctx, id, fl)
}

type expenseSource func(context.Context, int64, expenses.ListFilters) ([]expenses.Expense, error)

func (f expenseSource) List(ctx context.Context, id int64, fl expenses.ListFilters) ([]expenses.Expense, error) {
	return f(ctx, id, fl)
}

type recordingStore struct {
	commerceID int64
	snap       Snapshot
	audit      shared.AuditLog
}

func (s *recordingStore) Replace(_ context.Context, commerceID int64, snap Snapshot, audit shared.AuditLog) (ImportResult, error) {
	s.commerceID, s.snap, s.audit = commerceID, snap, audit
	return ImportResult{
		Products:  len(snap.Products),
		Clients:   len(snap.Clients),
		Employees: len(snap.Employees),
		Orders:    len(snap.Orders),
		Expenses:  len(snap.Expenses),
	}, nil
}

type recordingCache struct{ bumped []int64 }

func (c *recordingCache) Bump(_ context.Context, id int64) error {
	c.bumped = append(c.bumped, id)
	return nil
}

func newTestService(orderErr error) (*Service, *recordingStore, *recordingCache) {
	store := &recordingStore{}
	cache := &recordingCache{}
	svc := NewService(ServiceParams{
		Products: productSource(func(_ context.Context, id int64, _ catalog.ListFilters) ([]catalog.Product, error) {
			return []catalog.Product{{ID: 11, CommerceID: id, Name: "Espresso", Price: decimal.RequireFromString("1.7"), Stock: 3}}, nil
		}),
		Clients: clientSource(func(_ context.Context, id int64, _ clients.ListFilters) ([]clients.Client, error) {
			return []clients.Client{{ID: 21, CommerceID: id, Name: "Ana", Credit: decimal.NewFromInt(5)}}, nil
		}),
		Employees: employeeSource(func(_ context.Context, id int64) ([]payroll.Employee, error) {
			return []payroll.Employee{{ID: 31, CommerceID: id, Name: "Luis", Salary: decimal.NewFromInt(800), Advance: decimal.NewFromInt(100)}}, nil
		}),
		Orders: orderSource(func(_ context.Context, id int64, _ orders.ListFilters) ([]orders.Order, error) {
			if orderErr != nil {
				return nil, orderErr
			}
			return []orders.Order{{ID: 41, CommerceID: id, Total: decimal.NewFromInt(2), Lines: []orders.Line{{ProductID: 11, Name: "Espresso", Price: decimal.NewFromInt(1), Quantity: 2}}}}, nil
		}),
		Expenses: expenseSource(func(_ context.Context, id int64, _ expenses.ListFilters) ([]expenses.Expense, error) {
			return []expenses.Expense{{ID: 51, CommerceID: id, Description: "Milk", Amount: decimal.NewFromInt(4), SpentOn: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}}, nil
		}),
		Store: store,
		Cache: cache,
	})
	svc.now = func() time.Time { return time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC) }
	return svc, store, cache
}

func TestExportCollectsEveryLedger(t *testing.T) {
	svc, _, _ := newTestService(nil)

	snap, err := svc.Export(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Clients, 1)
	assert.Len(t, snap.Employees, 1)
	assert.Len(t, snap.Orders, 1)
	assert.Len(t, snap.Expenses, 1)
	assert.Equal(t, int64(7), snap.Products[0].CommerceID)
	assert.Equal(t, time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC), snap.ExportedAt)
}

func TestExportFailsWhenAnySourceFails(t *testing.T) {
	svc, _, _ := newTestService(errors.New("db down"))

	_, err := svc.Export(context.Background(), 7)
	require.EqualError(t, err, "db down")
}

func TestImportRecomputesAndBumps(t *testing.T) {
	svc, store, cache := newTestService(nil)
	snap, err := svc.Export(context.Background(), 7)
	require.NoError(t, err)
	snap.Employees[0].Balance = decimal.NewFromInt(999)

	result, err := svc.Import(context.Background(), 3, 9, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Orders)
	assert.Equal(t, int64(9), store.commerceID)
	assert.Equal(t, "700", store.snap.Employees[0].Balance.String())
	assert.Equal(t, payroll.StatusPartial, store.snap.Employees[0].Status)
	assert.Equal(t, "snapshot.import", store.audit.Action)
	assert.Equal(t, int64(3), store.audit.ActorID)
	assert.Equal(t, []int64{9}, cache.bumped)
}

func TestImportKeepsPaidEmployeesSettled(t *testing.T) {
	svc, store, _ := newTestService(nil)
	snap, err := svc.Export(context.Background(), 7)
	require.NoError(t, err)
	snap.Employees[0] = payroll.Pay(snap.Employees[0])

	_, err = svc.Import(context.Background(), 3, 9, snap)
	require.NoError(t, err)
	restored := store.snap.Employees[0]
	assert.True(t, restored.Advance.IsZero())
	assert.True(t, restored.Balance.IsZero())
	assert.Equal(t, payroll.StatusPaid, restored.Status)
}

func TestNormalizeRejectsInvalidRows(t *testing.T) {
	cases := map[string]Snapshot{
		"negative price":   {Products: []catalog.Product{{Name: "x", Price: decimal.NewFromInt(-1)}}},
		"unnamed client":   {Clients: []clients.Client{{}}},
		"negative advance": {Employees: []payroll.Employee{{Name: "x", Salary: decimal.NewFromInt(1), Advance: decimal.NewFromInt(-2)}}},
		"zero expense":     {Expenses: []expenses.Expense{{Description: "x", SpentOn: time.Now()}}},
		"empty line":       {Orders: []orders.Order{{Lines: []orders.Line{{Name: "x", Quantity: 0}}}}},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(snap)
			assert.True(t, errors.Is(err, httpx.ErrValidation), "%v", err)
		})
	}
}

func TestHandlerExportAndImport(t *testing.T) {
	svc, store, _ := newTestService(nil)
	h := NewHandler(nil, svc, rbac.Middleware{Service: rbac.NewService()})
	newRouter := func(role string) http.Handler {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{UserID: 2, Role: role, CommerceID: 7})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		h.MountRoutes(r)
		return r
	}
	admin := newRouter(shared.RoleAdmin)

	rec := httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/snapshot", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "snapshot-7-20260502T100000.json")
	exported := rec.Body.String()

	rec = httptest.NewRecorder()
	admin.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/snapshot", strings.NewReader(exported)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"products":1,"clients":1,"employees":1,"orders":1,"expenses":1}`, rec.Body.String())
	assert.Equal(t, int64(7), store.commerceID)

	cashier := newRouter(shared.RoleCashier)
	rec = httptest.NewRecorder()
	cashier.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sync", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
