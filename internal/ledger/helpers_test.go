package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func newEngine() *ledger.Engine {
	return ledger.NewEngine(
		ledger.WithIDGenerator(&ledger.SequenceGenerator{Prefix: "id-"}),
		ledger.WithClock(func() time.Time { return fixedNow }),
	)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func addProduct(t *testing.T, e *ledger.Engine, st ledger.State, name, category, price string, stock int) (ledger.State, ledger.Product) {
	t.Helper()

	st, p, err := e.UpsertProduct(st, ledger.ProductParams{
		Name:     name,
		Category: category,
		Price:    dec(price),
		Stock:    stock,
	})
	require.NoError(t, err)

	return st, p
}

func intPtr(v int) *int {
	return &v
}
