package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// SupplierParams carries the fields of a supplier being created or edited.
// An empty ID creates a new supplier.
type SupplierParams struct {
	ID          string
	Name        string
	Phone       string
	Description string
}

func (e *Engine) UpsertSupplier(st State, params SupplierParams) (State, Supplier, error) {
	if strings.TrimSpace(params.Name) == "" {
		return st, Supplier{}, fmt.Errorf("%w: supplier name is required", ErrValidation)
	}

	s := Supplier{
		ID:          params.ID,
		Name:        strings.TrimSpace(params.Name),
		Phone:       strings.TrimSpace(params.Phone),
		Description: params.Description,
	}
	if s.ID == "" {
		s.ID = e.ids.NewID()
	}

	out := st.Clone()
	if i := out.supplierIndex(s.ID); i >= 0 {
		out.Suppliers[i] = s
	} else {
		out.Suppliers = append(out.Suppliers, s)
	}

	return out, s, nil
}

// DeleteSupplier removes a supplier. Expenses keep their SupplierID.
func (e *Engine) DeleteSupplier(st State, id string) State {
	i := st.supplierIndex(id)
	if i < 0 {
		return st
	}

	out := st.Clone()
	out.Suppliers = slices.Delete(out.Suppliers, i, i+1)

	return out
}

type ExpenseParams struct {
	Description string
	Amount      decimal.Decimal
	Category    ExpenseCategory
	SupplierID  string
}

// AddExpense appends an expense stamped with the engine clock.
func (e *Engine) AddExpense(st State, params ExpenseParams) (State, Expense, error) {
	if strings.TrimSpace(params.Description) == "" {
		return st, Expense{}, fmt.Errorf("%w: expense description is required", ErrValidation)
	}

	if params.Amount.IsNegative() {
		return st, Expense{}, fmt.Errorf("%w: expense amount must not be negative", ErrValidation)
	}

	if !params.Category.Valid() {
		return st, Expense{}, fmt.Errorf("%w: unknown expense category %q", ErrValidation, params.Category)
	}

	exp := Expense{
		ID:          e.ids.NewID(),
		Timestamp:   e.now(),
		Description: strings.TrimSpace(params.Description),
		Amount:      params.Amount,
		Category:    params.Category,
		SupplierID:  params.SupplierID,
	}

	out := st.Clone()
	out.Expenses = append(out.Expenses, exp)

	return out, exp, nil
}

func (e *Engine) DeleteExpense(st State, id string) State {
	i := slices.IndexFunc(st.Expenses, func(x Expense) bool { return x.ID == id })
	if i < 0 {
		return st
	}

	out := st.Clone()
	out.Expenses = slices.Delete(out.Expenses, i, i+1)

	return out
}
