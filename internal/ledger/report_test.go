package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

func TestSameDay(t *testing.T) {
	baires := time.FixedZone("ART", -3*60*60)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, baires)

	assert.True(t, ledger.SameDay(time.Date(2026, 3, 14, 23, 0, 0, 0, baires), day))
	// 01:30 UTC on the 15th is still the 14th in Buenos Aires.
	assert.True(t, ledger.SameDay(time.Date(2026, 3, 15, 1, 30, 0, 0, time.UTC), day))
	assert.False(t, ledger.SameDay(time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC), day))
}

func stateWithActivity(t *testing.T) ledger.State {
	t.Helper()

	yesterday := fixedNow.AddDate(0, 0, -1)

	return ledger.State{
		Categories: []string{"Almacén", "Bebidas"},
		Settings:   ledger.Settings{DefaultMinStock: 5},
		Products: []ledger.Product{
			{ID: "p1", Name: "Arroz", Category: "Almacén", Price: dec("100"), Stock: 10},
			{ID: "p2", Name: "Agua", Category: "Bebidas", Price: dec("50"), Stock: 5},
			{ID: "p3", Name: "Jugo", Category: "Bebidas", Price: dec("80"), Stock: 1, MinStock: intPtr(0)},
			{ID: "p4", Name: "Sal", Category: "Almacén", Price: dec("30"), Stock: 2, MinStock: intPtr(3)},
		},
		Sales: []ledger.Sale{
			{
				ID: "s1", Timestamp: fixedNow,
				Items: []ledger.SaleItem{{ProductID: "p1", Quantity: 2, Subtotal: dec("200")}, {ProductID: "p2", Quantity: 1, Subtotal: dec("50")}},
				Total: dec("250"),
			},
			{
				ID: "s2", Timestamp: yesterday,
				Items: []ledger.SaleItem{{ProductID: "p2", Quantity: 2, Subtotal: dec("100")}},
				Total: dec("100"),
			},
		},
		Expenses: []ledger.Expense{
			{ID: "e1", Timestamp: fixedNow, Description: "Luz", Amount: dec("300"), Category: ledger.ExpenseUtility},
			{ID: "e2", Timestamp: yesterday, Description: "Sueldo", Amount: dec("40"), Category: ledger.ExpensePayroll},
		},
	}
}

func TestDailyTotals(t *testing.T) {
	st := stateWithActivity(t)

	requireDecimal(t, "250", ledger.DailySalesTotal(st, fixedNow))
	requireDecimal(t, "300", ledger.DailyExpensesTotal(st, fixedNow))
	requireDecimal(t, "-50", ledger.NetBalance(st, fixedNow))

	yesterday := fixedNow.AddDate(0, 0, -1)
	requireDecimal(t, "60", ledger.NetBalance(st, yesterday))

	empty := fixedNow.AddDate(0, 0, 5)
	requireDecimal(t, "0", ledger.NetBalance(st, empty))

	// Reads are repeatable.
	assert.Equal(t, ledger.DailySalesTotal(st, fixedNow), ledger.DailySalesTotal(st, fixedNow))
}

func TestDailyBalance(t *testing.T) {
	st := stateWithActivity(t)

	b := ledger.DailyBalance(st, fixedNow)

	require.Len(t, b.Sales, 1)
	require.Len(t, b.Expenses, 1)
	assert.Equal(t, "s1", b.Sales[0].ID)
	assert.Equal(t, "e1", b.Expenses[0].ID)
	requireDecimal(t, "250", b.SalesTotal)
	requireDecimal(t, "300", b.ExpensesTotal)
	requireDecimal(t, "-50", b.Net)
}

func TestLowStockProducts(t *testing.T) {
	st := stateWithActivity(t)

	low := ledger.LowStockProducts(st)

	var ids []string
	for _, p := range low {
		ids = append(ids, p.ID)
	}

	// p2 sits exactly at the store default, p3 has an explicit zero threshold,
	// p4 is under its own threshold.
	assert.Equal(t, []string{"p2", "p4"}, ids)

	// An explicit zero is a real threshold, not a fallback to the default.
	p3, ok := st.Product("p3")
	require.True(t, ok)
	assert.Equal(t, 0, p3.Threshold(st.Settings))
}

func TestSalesByCategory(t *testing.T) {
	st := stateWithActivity(t)

	got := ledger.SalesByCategory(st)

	require.Len(t, got, 2)
	assert.Equal(t, "Almacén", got[0].Category)
	requireDecimal(t, "200", got[0].Total)
	assert.Equal(t, "Bebidas", got[1].Category)
	requireDecimal(t, "150", got[1].Total)
}

func TestSalesByCategory_FollowsCurrentCategory(t *testing.T) {
	e := newEngine()
	st := stateWithActivity(t)

	sumAll := func(rows []ledger.CategoryTotal) string {
		total := dec("0")
		for _, r := range rows {
			total = total.Add(r.Total)
		}

		return total.String()
	}

	salesTotal := dec("0")
	for _, s := range st.Sales {
		salesTotal = salesTotal.Add(s.Total)
	}

	assert.Equal(t, salesTotal.String(), sumAll(ledger.SalesByCategory(st)))

	t.Run("RecategorizedProduct", func(t *testing.T) {
		moved, _, err := e.UpsertProduct(st, ledger.ProductParams{
			ID: "p2", Name: "Agua", Category: "Almacén", Price: dec("50"), Stock: 5,
		})
		require.NoError(t, err)

		got := ledger.SalesByCategory(moved)
		requireDecimal(t, "350", got[0].Total)
		requireDecimal(t, "0", got[1].Total)
	})

	t.Run("RemovedCategory", func(t *testing.T) {
		removed := e.RemoveCategory(st, "Bebidas")

		got := ledger.SalesByCategory(removed)
		require.Len(t, got, 1)
		assert.NotEqual(t, salesTotal.String(), sumAll(got))
		requireDecimal(t, "200", got[0].Total)
	})

	t.Run("DeletedProduct", func(t *testing.T) {
		deleted := e.DeleteProduct(st, "p1")

		got := ledger.SalesByCategory(deleted)
		requireDecimal(t, "0", got[0].Total)
		assert.Len(t, deleted.Sales, 2, "sales survive product deletion")
	})
}

func TestBuildDashboard(t *testing.T) {
	st := stateWithActivity(t)
	st.Suppliers = []ledger.Supplier{{ID: "sup1", Name: "Distribuidora"}}

	d := ledger.BuildDashboard(st, fixedNow)

	requireDecimal(t, "250", d.SalesToday)
	requireDecimal(t, "300", d.ExpensesToday)
	assert.Equal(t, 2, d.LowStockCount)
	assert.Equal(t, 1, d.SupplierCount)
	assert.Len(t, d.SalesByCategory, 2)
}
