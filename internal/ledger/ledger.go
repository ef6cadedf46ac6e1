package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies an expense entry.
type ExpenseCategory string

const (
	ExpenseSupplier ExpenseCategory = "supplier"
	ExpenseUtility  ExpenseCategory = "utility"
	ExpensePayroll  ExpenseCategory = "payroll"
	ExpenseOther    ExpenseCategory = "other"
)

// ExpenseCategories lists the accepted expense categories in display order.
var ExpenseCategories = []ExpenseCategory{ExpenseSupplier, ExpenseUtility, ExpensePayroll, ExpenseOther}

func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseSupplier, ExpenseUtility, ExpensePayroll, ExpenseOther:
		return true
	}

	return false
}

// Product is a catalog entry.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	MinStock    *int            `json:"minStock,omitempty"` // nil falls back to Settings.DefaultMinStock
	Barcode     string          `json:"barcode,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Threshold returns the stock level at or below which the product is considered low.
func (p Product) Threshold(settings Settings) int {
	if p.MinStock != nil {
		return *p.MinStock
	}

	return settings.DefaultMinStock
}

// SaleItem is one line of a completed sale. Subtotal is quantity times the unit
// price the product had at checkout.
type SaleItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Sale is an immutable entry of the sales log.
type Sale struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Items     []SaleItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
}

// Expense is an entry of the expense log. SupplierID may dangle once the
// supplier is deleted.
type Expense struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	SupplierID  string          `json:"supplierId,omitempty"`
}

type Supplier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

type Settings struct {
	DefaultMinStock int `json:"defaultMinStock"`
}

// State is the aggregate root of a store. Operations never modify a State in
// place; they return a new one.
type State struct {
	Products   []Product  `json:"products"`
	Sales      []Sale     `json:"sales"`
	Suppliers  []Supplier `json:"suppliers"`
	Categories []string   `json:"categories"`
	Settings   Settings   `json:"settings"`
	Expenses   []Expense  `json:"expenses"`
}

// DefaultCategories seeds a store that has no saved state yet.
var DefaultCategories = []string{"Almacén", "Bebidas", "Lácteos", "Limpieza", "Otros"}

const DefaultMinStock = 5

// NewState returns the state of a freshly opened store.
func NewState() State {
	return State{
		Products:   []Product{},
		Sales:      []Sale{},
		Suppliers:  []Supplier{},
		Categories: append([]string(nil), DefaultCategories...),
		Settings:   Settings{DefaultMinStock: DefaultMinStock},
		Expenses:   []Expense{},
	}
}

// Clone returns a deep copy of the state so callers can hold a snapshot while
// the owner keeps mutating.
func (s State) Clone() State {
	out := State{
		Products:   make([]Product, len(s.Products)),
		Sales:      make([]Sale, len(s.Sales)),
		Suppliers:  append([]Supplier{}, s.Suppliers...),
		Categories: append([]string{}, s.Categories...),
		Settings:   s.Settings,
		Expenses:   append([]Expense{}, s.Expenses...),
	}

	for i, p := range s.Products {
		if p.MinStock != nil {
			minStock := *p.MinStock
			p.MinStock = &minStock
		}

		out.Products[i] = p
	}

	for i, sale := range s.Sales {
		sale.Items = append([]SaleItem{}, sale.Items...)
		out.Sales[i] = sale
	}

	return out
}

// Product looks up a product by id.
func (s State) Product(id string) (Product, bool) {
	i := s.productIndex(id)
	if i < 0 {
		return Product{}, false
	}

	return s.Products[i], true
}

// HasCategory reports whether name is a configured category.
func (s State) HasCategory(name string) bool {
	return s.categoryIndex(name) >= 0
}

func (s State) productIndex(id string) int {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return i
		}
	}

	return -1
}

func (s State) supplierIndex(id string) int {
	for i := range s.Suppliers {
		if s.Suppliers[i].ID == id {
			return i
		}
	}

	return -1
}

func (s State) categoryIndex(name string) int {
	for i, c := range s.Categories {
		if c == name {
			return i
		}
	}

	return -1
}
