package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductParams carries the fields of a product being created or edited.
// An empty ID creates a new product.
type ProductParams struct {
	ID          string
	Name        string
	Category    string
	Price       decimal.Decimal
	Stock       int
	MinStock    *int
	Barcode     string
	Description string
}

func (p ProductParams) validate(st State) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}

	if !st.HasCategory(p.Category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, p.Category)
	}

	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}

	if p.MinStock != nil && *p.MinStock < 0 {
		return fmt.Errorf("%w: min stock must not be negative", ErrValidation)
	}

	return nil
}

// UpsertProduct inserts the product when its id is empty or unknown and
// replaces the stored one otherwise.
func (e *Engine) UpsertProduct(st State, params ProductParams) (State, Product, error) {
	if err := params.validate(st); err != nil {
		return st, Product{}, err
	}

	p := Product{
		ID:          params.ID,
		Name:        strings.TrimSpace(params.Name),
		Category:    params.Category,
		Price:       params.Price,
		Stock:       params.Stock,
		Barcode:     strings.TrimSpace(params.Barcode),
		Description: params.Description,
	}
	if params.MinStock != nil {
		minStock := *params.MinStock
		p.MinStock = &minStock
	}

	if p.ID == "" {
		p.ID = e.ids.NewID()
	}

	out := st.Clone()
	if i := out.productIndex(p.ID); i >= 0 {
		out.Products[i] = p
	} else {
		out.Products = append(out.Products, p)
	}

	return out, p, nil
}

// DeleteProduct removes a product. Sales that reference it are left untouched.
func (e *Engine) DeleteProduct(st State, id string) State {
	i := st.productIndex(id)
	if i < 0 {
		return st
	}

	out := st.Clone()
	out.Products = slices.Delete(out.Products, i, i+1)

	return out
}

func (e *Engine) AddCategory(st State, name string) (State, error) {
	if strings.TrimSpace(name) == "" {
		return st, fmt.Errorf("%w: category name is required", ErrValidation)
	}

	if st.HasCategory(name) {
		return st, fmt.Errorf("%w: category %q already exists", ErrDuplicate, name)
	}

	out := st.Clone()
	out.Categories = append(out.Categories, name)

	return out, nil
}

// RenameCategory renames oldName in place and moves its products along. When
// newName already exists the two categories are merged into newName.
func (e *Engine) RenameCategory(st State, oldName, newName string) (State, error) {
	oldIdx := st.categoryIndex(oldName)
	if oldIdx < 0 {
		return st, fmt.Errorf("%w: category %q", ErrNotFound, oldName)
	}

	if strings.TrimSpace(newName) == "" {
		return st, fmt.Errorf("%w: category name is required", ErrValidation)
	}

	if oldName == newName {
		return st, nil
	}

	out := st.Clone()
	if st.HasCategory(newName) {
		out.Categories = slices.Delete(out.Categories, oldIdx, oldIdx+1)
	} else {
		out.Categories[oldIdx] = newName
	}

	for i := range out.Products {
		if out.Products[i].Category == oldName {
			out.Products[i].Category = newName
		}
	}

	return out, nil
}

// RemoveCategory drops the category name. Products keep the removed name as
// their category.
func (e *Engine) RemoveCategory(st State, name string) State {
	i := st.categoryIndex(name)
	if i < 0 {
		return st
	}

	out := st.Clone()
	out.Categories = slices.Delete(out.Categories, i, i+1)

	return out
}

// ResolveCode finds the product a scanned code refers to. The code must match
// an id or barcode exactly; an id match wins over a barcode match.
func ResolveCode(st State, code string) (Product, error) {
	if code == "" {
		return Product{}, fmt.Errorf("%w: empty code", ErrNotFound)
	}

	if p, ok := st.Product(code); ok {
		return p, nil
	}

	for _, p := range st.Products {
		if p.Barcode == code {
			return p, nil
		}
	}

	return Product{}, fmt.Errorf("%w: no product for code %q", ErrNotFound, code)
}

func (e *Engine) UpdateSettings(st State, settings Settings) (State, error) {
	if settings.DefaultMinStock < 0 {
		return st, fmt.Errorf("%w: default min stock must not be negative", ErrValidation)
	}

	out := st.Clone()
	out.Settings = settings

	return out, nil
}

// ImportProducts upserts a batch of products as one operation. Rows without an
// id update the product with the same barcode, or failing that the same name
// (case-insensitive); other rows create new products. Any invalid row rejects
// the whole batch.
func (e *Engine) ImportProducts(st State, rows []ProductParams) (State, []Product, error) {
	out := st
	imported := make([]Product, 0, len(rows))

	for i, row := range rows {
		if row.ID == "" {
			row.ID = MatchExisting(out, row)
		}

		var (
			p   Product
			err error
		)

		out, p, err = e.UpsertProduct(out, row)
		if err != nil {
			return st, nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		imported = append(imported, p)
	}

	return out, imported, nil
}

// MatchExisting returns the id of the product an id-less import row would
// update, or "" when the row creates a new product.
func MatchExisting(st State, row ProductParams) string {
	if barcode := strings.TrimSpace(row.Barcode); barcode != "" {
		for _, p := range st.Products {
			if p.Barcode == barcode {
				return p.ID
			}
		}
	}

	name := strings.TrimSpace(row.Name)
	for _, p := range st.Products {
		if strings.EqualFold(p.Name, name) {
			return p.ID
		}
	}

	return ""
}
