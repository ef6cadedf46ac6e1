package ledger

import (
	"encoding/json"
	"fmt"
)

// EncodeState serializes the persisted fields of a state. Derived values such
// as totals or low-stock lists are never stored.
func EncodeState(st State) ([]byte, error) {
	return json.Marshal(st)
}

// DecodeState parses a saved state. Collections missing from an older document
// come back empty, and missing categories or settings fall back to the seeded
// defaults.
func DecodeState(raw []byte) (State, error) {
	st := NewState()
	st.Categories = nil

	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("decoding state: %w", err)
	}

	if st.Categories == nil {
		st.Categories = append([]string(nil), DefaultCategories...)
	}

	if st.Products == nil {
		st.Products = []Product{}
	}

	if st.Sales == nil {
		st.Sales = []Sale{}
	}

	if st.Suppliers == nil {
		st.Suppliers = []Supplier{}
	}

	if st.Expenses == nil {
		st.Expenses = []Expense{}
	}

	return st, nil
}
