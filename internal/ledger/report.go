package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// SameDay reports whether t falls on the calendar date of day, as seen from
// day's location.
func SameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()

	return y1 == y2 && m1 == m2 && d1 == d2
}

func DailySalesTotal(st State, day time.Time) decimal.Decimal {
	total := decimal.Zero

	for _, s := range st.Sales {
		if SameDay(s.Timestamp, day) {
			total = total.Add(s.Total)
		}
	}

	return total
}

func DailyExpensesTotal(st State, day time.Time) decimal.Decimal {
	total := decimal.Zero

	for _, e := range st.Expenses {
		if SameDay(e.Timestamp, day) {
			total = total.Add(e.Amount)
		}
	}

	return total
}

// NetBalance is the day's sales minus the day's expenses. It may be negative.
func NetBalance(st State, day time.Time) decimal.Decimal {
	return DailySalesTotal(st, day).Sub(DailyExpensesTotal(st, day))
}

// Balance is the cash summary of one day.
type Balance struct {
	Day      time.Time `json:"day"`
	Sales    []Sale    `json:"sales"`
	Expenses []Expense `json:"expenses"`

	SalesTotal    decimal.Decimal `json:"salesTotal"`
	ExpensesTotal decimal.Decimal `json:"expensesTotal"`
	Net           decimal.Decimal `json:"net"`
}

func DailyBalance(st State, day time.Time) Balance {
	b := Balance{
		Day:           day,
		Sales:         []Sale{},
		Expenses:      []Expense{},
		SalesTotal:    decimal.Zero,
		ExpensesTotal: decimal.Zero,
	}

	for _, s := range st.Sales {
		if SameDay(s.Timestamp, day) {
			b.Sales = append(b.Sales, s)
			b.SalesTotal = b.SalesTotal.Add(s.Total)
		}
	}

	for _, e := range st.Expenses {
		if SameDay(e.Timestamp, day) {
			b.Expenses = append(b.Expenses, e)
			b.ExpensesTotal = b.ExpensesTotal.Add(e.Amount)
		}
	}

	b.Net = b.SalesTotal.Sub(b.ExpensesTotal)

	return b
}

// LowStockProducts returns, in catalog order, the products at or below their
// stock threshold.
func LowStockProducts(st State) []Product {
	low := []Product{}

	for _, p := range st.Products {
		if p.Stock <= p.Threshold(st.Settings) {
			low = append(low, p)
		}
	}

	return low
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// SalesByCategory sums sale subtotals per category, in category order. Each
// line is attributed to the category its product has now, not the one it had
// when sold: lines of deleted products, or of products whose category was
// removed, count nowhere.
func SalesByCategory(st State) []CategoryTotal {
	byProduct := make(map[string]string, len(st.Products))
	for _, p := range st.Products {
		byProduct[p.ID] = p.Category
	}

	sums := make(map[string]decimal.Decimal, len(st.Categories))

	for _, s := range st.Sales {
		for _, item := range s.Items {
			cat, ok := byProduct[item.ProductID]
			if !ok {
				continue
			}

			sums[cat] = sums[cat].Add(item.Subtotal)
		}
	}

	out := make([]CategoryTotal, len(st.Categories))
	for i, c := range st.Categories {
		out[i] = CategoryTotal{Category: c, Total: sums[c]}
	}

	return out
}

// Dashboard holds the headline numbers of the store for one day.
type Dashboard struct {
	SalesToday      decimal.Decimal `json:"salesToday"`
	ExpensesToday   decimal.Decimal `json:"expensesToday"`
	LowStockCount   int             `json:"lowStockCount"`
	SupplierCount   int             `json:"supplierCount"`
	LowStock        []Product       `json:"lowStock"`
	SalesByCategory []CategoryTotal `json:"salesByCategory"`
}

func BuildDashboard(st State, day time.Time) Dashboard {
	low := LowStockProducts(st)

	return Dashboard{
		SalesToday:      DailySalesTotal(st, day),
		ExpensesToday:   DailyExpensesTotal(st, day),
		LowStockCount:   len(low),
		SupplierCount:   len(st.Suppliers),
		LowStock:        low,
		SalesByCategory: SalesByCategory(st),
	}
}
