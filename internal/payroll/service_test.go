package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

type memoryRepo struct {
	employees map[int64]Employee
	nextID    int64
	saveErr   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{employees: make(map[int64]Employee), nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, commerceID int64) ([]Employee, error) {
	out := []Employee{}
	for _, e := range m.employees {
		if e.CommerceID == commerceID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, commerceID, id int64) (Employee, error) {
	e, ok := m.employees[id]
	if !ok || e.CommerceID != commerceID {
		return Employee{}, fmt.Errorf("employee %d: %w", id, httpx.ErrNotFound)
	}
	return e, nil
}

func (m *memoryRepo) Create(_ context.Context, e Employee) (Employee, error) {
	e.ID = m.nextID
	m.nextID++
	m.employees[e.ID] = e
	return e, nil
}

func (m *memoryRepo) Save(_ context.Context, e Employee) (Employee, error) {
	if m.saveErr != nil {
		return Employee{}, m.saveErr
	}
	m.employees[e.ID] = e
	return e, nil
}

func (m *memoryRepo) Delete(_ context.Context, _, id int64) error {
	delete(m.employees, id)
	return nil
}

func (m *memoryRepo) SaveAll(ctx context.Context, employees []Employee) error {
	for _, e := range employees {
		if _, err := m.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryRepo) CommerceIDs(context.Context) ([]int64, error) {
	seen := map[int64]bool{}
	var ids []int64
	for _, e := range m.employees {
		if !seen[e.CommerceID] {
			seen[e.CommerceID] = true
			ids = append(ids, e.CommerceID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type recordingAuditor struct{ actions []string }

func (r *recordingAuditor) Record(_ context.Context, log shared.AuditLog) error {
	r.actions = append(r.actions, log.Action)
	return nil
}

func TestServiceLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	auditor := &recordingAuditor{}
	svc := NewService(repo, auditor, nil)
	ctx := context.Background()

	e, err := svc.Create(ctx, 1, CreateEmployeeRequest{Name: "Luis", Salary: dec("800"), Advance: dec("100")})
	require.NoError(t, err)
	assert.Equal(t, "700", e.Balance.String())
	assert.Equal(t, StatusPartial, e.Status)

	e, err = svc.RecordAdvance(ctx, 9, 1, e.ID, AdvanceRequest{Amount: dec("50")})
	require.NoError(t, err)
	assert.Equal(t, "650", e.Balance.String())

	e, err = svc.Pay(ctx, 9, 1, e.ID)
	require.NoError(t, err)
	assert.True(t, e.Balance.IsZero())
	assert.True(t, e.Advance.IsZero())
	assert.Equal(t, StatusPaid, e.Status)

	result, err := svc.Rollover(ctx, 9, 1)
	require.NoError(t, err)
	require.Len(t, result.Employees, 1)
	assert.Equal(t, "800", result.Employees[0].Balance.String())

	assert.Equal(t, []string{"payroll.advance", "payroll.pay", "payroll.rollover"}, auditor.actions)
}

func TestLowerSalaryBelowAdvance(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()
	e, err := svc.Create(ctx, 1, CreateEmployeeRequest{Name: "Luis", Salary: dec("800"), Advance: dec("300")})
	require.NoError(t, err)

	salary := dec("200")
	e, err = svc.Update(ctx, 1, e.ID, UpdateEmployeeRequest{Salary: &salary})
	require.NoError(t, err)
	assert.Equal(t, "-100", e.Balance.String())
	assert.Equal(t, StatusPaid, e.Status)
}

func TestUpdateIsMergePatch(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()
	e, err := svc.Create(ctx, 1, CreateEmployeeRequest{Name: "Luis", Role: "Barista", Salary: dec("800")})
	require.NoError(t, err)

	advance := dec("300")
	e, err = svc.Update(ctx, 1, e.ID, UpdateEmployeeRequest{Advance: &advance})
	require.NoError(t, err)
	assert.Equal(t, "Barista", e.Role)
	assert.Equal(t, "500", e.Balance.String())
}

func TestPayFailureLeavesEmployee(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	e, err := svc.Create(ctx, 1, CreateEmployeeRequest{Name: "Luis", Salary: dec("800"), Advance: dec("100")})
	require.NoError(t, err)

	repo.saveErr = errors.New("connection reset")
	_, err = svc.Pay(ctx, 1, 1, e.ID)
	require.Error(t, err)

	stored, err := svc.Get(ctx, 1, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "700", stored.Balance.String())
}

func TestRolloverAll(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()
	for _, tenant := range []int64{1, 2} {
		e, err := svc.Create(ctx, tenant, CreateEmployeeRequest{Name: "E", Salary: dec("100")})
		require.NoError(t, err)
		_, err = svc.Pay(ctx, 0, tenant, e.ID)
		require.NoError(t, err)
	}

	n, err := svc.RolloverAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, e := range repo.employees {
		assert.Equal(t, "100", e.Balance.String())
	}
}
