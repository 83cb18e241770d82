package payroll

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBalanceAndStatus(t *testing.T) {
	e := Recompute(Employee{Name: "Luis", Salary: dec("800"), Advance: dec("100")})
	assert.Equal(t, "700", e.Balance.String())
	assert.Equal(t, StatusPartial, e.Status)

	paid := Pay(e)
	assert.True(t, paid.Advance.IsZero())
	assert.True(t, paid.Balance.IsZero())
	assert.Equal(t, StatusPaid, paid.Status)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		salary, advance string
		want            Status
	}{
		{"800", "0", StatusPending},
		{"800", "100", StatusPartial},
		{"800", "800", StatusPaid},
		{"0", "0", StatusPaid},
	}
	for _, tc := range cases {
		e := Recompute(Employee{Salary: dec(tc.salary), Advance: dec(tc.advance)})
		assert.Equal(t, tc.want, e.Status, "salary=%s advance=%s", tc.salary, tc.advance)
	}
}

func TestRecordAdvance(t *testing.T) {
	e := Recompute(Employee{Name: "Luis", Salary: dec("800")})

	e, err := RecordAdvance(e, dec("150.50"))
	require.NoError(t, err)
	assert.Equal(t, "150.5", e.Advance.String())
	assert.Equal(t, "649.5", e.Balance.String())

	_, err = RecordAdvance(e, dec("0"))
	assert.True(t, errors.Is(err, httpx.ErrValidation))

	e, err = RecordAdvance(e, dec("700"))
	require.NoError(t, err)
	assert.Equal(t, "-50.5", e.Balance.String())
	assert.Equal(t, StatusPaid, e.Status)
}

func TestApplyRecomputesBalance(t *testing.T) {
	e := Recompute(Employee{Name: "Luis", Salary: dec("800"), Advance: dec("100")})
	salary := dec("900")
	e = UpdateEmployeeRequest{Salary: &salary}.Apply(e)
	assert.Equal(t, "800", e.Balance.String())
	assert.True(t, e.Balance.Equal(e.Salary.Sub(e.Advance)))
}

func TestNewMonthRollover(t *testing.T) {
	paid := Pay(Recompute(Employee{Name: "A", Salary: dec("800"), Advance: dec("100")}))
	partial := Recompute(Employee{Name: "B", Salary: dec("500"), Advance: dec("50")})

	rolled := NewMonthRollover([]Employee{paid, partial})
	require.Len(t, rolled, 2)
	assert.Equal(t, "800", rolled[0].Balance.String())
	assert.Equal(t, StatusPending, rolled[0].Status)
	assert.Equal(t, "450", rolled[1].Balance.String())
	assert.Equal(t, "50", rolled[1].Advance.String())
	assert.True(t, paid.Balance.IsZero(), "input must not be mutated")
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(Employee{Salary: dec("1")}))
	assert.Error(t, Validate(Employee{Name: "x", Salary: dec("-1")}))
	assert.Error(t, Validate(Employee{Name: "x", Salary: dec("10"), Advance: dec("-1")}))
	assert.NoError(t, Validate(Employee{Name: "x", Salary: dec("10"), Advance: dec("11")}))
}

func TestRestoreKeepsSettlement(t *testing.T) {
	paid := Pay(Recompute(Employee{Name: "Luis", Salary: dec("800"), Advance: dec("100")}))
	restored := Restore(paid)
	assert.True(t, restored.Balance.IsZero())
	assert.Equal(t, StatusPaid, restored.Status)

	stale := Restore(Employee{Name: "Ana", Salary: dec("500"), Advance: dec("50"), Balance: dec("999")})
	assert.Equal(t, "450", stale.Balance.String())
	assert.Equal(t, StatusPartial, stale.Status)

	unpaid := Restore(Employee{Name: "Eva", Salary: dec("500"), Balance: dec("500")})
	assert.Equal(t, "500", unpaid.Balance.String())
	assert.Equal(t, StatusPending, unpaid.Status)
}
