package reports

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/clients"
	"github.com/odyssey-erp/odyssey-pos/internal/expenses"
	"github.com/odyssey-erp/odyssey-pos/internal/orders"
)

func order(total string, lines ...orders.Line) orders.Order {
	return orders.Order{Total: decimal.RequireFromString(total), Lines: lines}
}

func line(name string, qty int) orders.Line {
	return orders.Line{Name: name, Quantity: qty}
}

func TestTopProductsTieKeepsFirstSeen(t *testing.T) {
	list := []orders.Order{
		order("3", line("Espresso", 3)),
		order("7", line("Espresso", 2), line("Tea", 5)),
	}

	top := TopProducts(list, 2)
	assert.Equal(t, []ProductTotal{{Name: "Espresso", Quantity: 5}, {Name: "Tea", Quantity: 5}}, top)
}

func TestTopProductsOrderingAndBounds(t *testing.T) {
	list := []orders.Order{
		order("1", line("Tea", 1), line("Muffin", 4)),
		order("1", line("Latte", 9), line("Tea", 2)),
		order("1", line("Water", 1)),
	}

	for n := -1; n <= 6; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			top := TopProducts(list, n)
			require.NotNil(t, top)
			want := n
			if want < 0 {
				want = 0
			}
			if want > 4 {
				want = 4
			}
			assert.Len(t, top, want)
			for i := 1; i < len(top); i++ {
				assert.GreaterOrEqual(t, top[i-1].Quantity, top[i].Quantity)
			}
		})
	}
	assert.Equal(t, "Latte", TopProducts(list, 1)[0].Name)
}

func TestTotals(t *testing.T) {
	list := []orders.Order{order("4.4"), order("5.236")}
	assert.True(t, TotalRevenue(list).Equal(decimal.RequireFromString("9.636")))
	assert.True(t, TotalRevenue(nil).IsZero())

	cl := []clients.Client{{Credit: decimal.NewFromInt(10)}, {Credit: decimal.RequireFromString("2.5")}}
	assert.Equal(t, "12.5", TotalCredit(cl).String())

	ex := []expenses.Expense{{Amount: decimal.NewFromInt(3)}, {Amount: decimal.NewFromInt(4)}}
	assert.Equal(t, "7", TotalExpenses(ex).String())
}

func TestBuildSummary(t *testing.T) {
	list := []orders.Order{
		order("10", line("Espresso", 2)),
		order("5", line("Tea", 1)),
	}
	ex := []expenses.Expense{{Amount: decimal.NewFromInt(4)}}
	cl := []clients.Client{{Credit: decimal.NewFromInt(20)}}

	s := BuildSummary(Filter{CommerceID: 3}, list, cl, ex, DefaultTopN, fixedNow)
	assert.Equal(t, int64(3), s.CommerceID)
	assert.Equal(t, 2, s.OrderCount)
	assert.Equal(t, "15", s.Revenue.String())
	assert.Equal(t, "7.5", s.AverageTicket.String())
	assert.Equal(t, "11", s.Net.String())
	assert.Equal(t, "20", s.CreditOutstanding.String())
	assert.Nil(t, s.PeakHour)
	assert.False(t, s.PeakHourResolved)
	assert.Nil(t, s.From)

	empty := BuildSummary(Filter{CommerceID: 3}, nil, nil, nil, DefaultTopN, fixedNow)
	assert.True(t, empty.AverageTicket.IsZero())
	assert.Empty(t, empty.TopProducts)
}
