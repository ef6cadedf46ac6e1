package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

func TestEngine_UpsertSupplier(t *testing.T) {
	e := newEngine()
	st := ledger.NewState()

	st, sup, err := e.UpsertSupplier(st, ledger.SupplierParams{Name: "La Serenísima", Phone: "011 4444-5555"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", sup.ID)

	st, _, err = e.UpsertSupplier(st, ledger.SupplierParams{ID: sup.ID, Name: "La Serenísima SA", Phone: "011 4444-5555"})
	require.NoError(t, err)
	require.Len(t, st.Suppliers, 1)
	assert.Equal(t, "La Serenísima SA", st.Suppliers[0].Name)

	_, _, err = e.UpsertSupplier(st, ledger.SupplierParams{Name: ""})
	require.ErrorIs(t, err, ledger.ErrValidation)
}

func TestEngine_DeleteSupplier_KeepsExpenseReference(t *testing.T) {
	e := newEngine()
	st, sup, err := e.UpsertSupplier(ledger.NewState(), ledger.SupplierParams{Name: "Coca-Cola FEMSA"})
	require.NoError(t, err)

	st, exp, err := e.AddExpense(st, ledger.ExpenseParams{
		Description: "Pedido semanal",
		Amount:      dec("45000"),
		Category:    ledger.ExpenseSupplier,
		SupplierID:  sup.ID,
	})
	require.NoError(t, err)

	st = e.DeleteSupplier(st, sup.ID)

	assert.Empty(t, st.Suppliers)
	require.Len(t, st.Expenses, 1)
	assert.Equal(t, exp.ID, st.Expenses[0].ID)
	assert.Equal(t, sup.ID, st.Expenses[0].SupplierID)
}

func TestEngine_AddExpense(t *testing.T) {
	type testCase struct {
		name    string
		params  ledger.ExpenseParams
		wantErr error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: ledger.ExpenseParams{Description: "Internet", Amount: dec("12000"), Category: ledger.ExpenseUtility},
		},
		{
			name:    "MissingDescription",
			params:  ledger.ExpenseParams{Amount: dec("1"), Category: ledger.ExpenseOther},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "NegativeAmount",
			params:  ledger.ExpenseParams{Description: "x", Amount: dec("-1"), Category: ledger.ExpenseOther},
			wantErr: ledger.ErrValidation,
		},
		{
			name:    "UnknownCategory",
			params:  ledger.ExpenseParams{Description: "x", Amount: dec("1"), Category: "rent"},
			wantErr: ledger.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine()
			st := ledger.NewState()

			got, exp, err := e.AddExpense(st, tt.params)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got.Expenses)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, fixedNow, exp.Timestamp)
			require.Len(t, got.Expenses, 1)
			assert.Equal(t, exp, got.Expenses[0])
		})
	}
}

func TestEngine_DeleteExpense(t *testing.T) {
	e := newEngine()
	st, first, err := e.AddExpense(ledger.NewState(), ledger.ExpenseParams{Description: "Luz", Amount: dec("1"), Category: ledger.ExpenseUtility})
	require.NoError(t, err)
	st, second, err := e.AddExpense(st, ledger.ExpenseParams{Description: "Gas", Amount: dec("2"), Category: ledger.ExpenseUtility})
	require.NoError(t, err)

	st = e.DeleteExpense(st, first.ID)
	st = e.DeleteExpense(st, "missing")

	require.Len(t, st.Expenses, 1)
	assert.Equal(t, second.ID, st.Expenses[0].ID)
}
