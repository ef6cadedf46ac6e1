package ledger

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// CartState is the lifecycle position of a sale in progress.
type CartState string

const (
	CartEmpty    CartState = "empty"
	CartBuilding CartState = "building"
)

// CartLine is a product and quantity waiting for checkout. Name is kept for
// display only; prices are read from the catalog at checkout.
type CartLine struct {
	ProductID string
	Name      string
	Quantity  int
}

// Cart is the sale a cashier is assembling. It lives outside State until
// Checkout turns it into a Sale.
type Cart struct {
	Lines []CartLine
}

func (c *Cart) State() CartState {
	if len(c.Lines) == 0 {
		return CartEmpty
	}

	return CartBuilding
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Add puts one unit of the product in the cart. Stock is not checked.
func (c *Cart) Add(p Product) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity++
			return
		}
	}

	c.Lines = append(c.Lines, CartLine{ProductID: p.ID, Name: p.Name, Quantity: 1})
}

// SetQuantity shifts the quantity of a line by delta. The result never drops
// below one; use Remove to take a line out.
func (c *Cart) SetQuantity(productID string, delta int) error {
	i := c.index(productID)
	if i < 0 {
		return fmt.Errorf("%w: product %s is not in the cart", ErrNotFound, productID)
	}

	c.Lines[i].Quantity = max(1, c.Lines[i].Quantity+delta)

	return nil
}

func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.Lines = slices.Delete(c.Lines, i, i+1)
	}
}

func (c *Cart) Reset() {
	c.Lines = nil
}

// Scan resolves a scanned code against the catalog and adds the product.
func (c *Cart) Scan(st State, code string) (Product, error) {
	p, err := ResolveCode(st, code)
	if err != nil {
		return Product{}, err
	}

	c.Add(p)

	return p, nil
}

func (c *Cart) index(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}

	return -1
}

// Quote prices the cart against the current catalog without touching the
// state. Lines whose product is gone are priced at zero.
func Quote(st State, cart Cart) decimal.Decimal {
	total := decimal.Zero

	for _, line := range cart.Lines {
		p, ok := st.Product(line.ProductID)
		if !ok {
			continue
		}

		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	return total
}

// Checkout turns the cart into a Sale. Prices are taken from the catalog at
// this moment, stock is decremented and floored at zero, and the sale is
// appended to the log. On error the given state is returned unchanged.
func (e *Engine) Checkout(st State, cart Cart) (State, Sale, error) {
	if cart.IsEmpty() {
		return st, Sale{}, ErrEmptyCart
	}

	out := st.Clone()
	sale := Sale{
		ID:        e.ids.NewID(),
		Timestamp: e.now(),
		Items:     make([]SaleItem, 0, len(cart.Lines)),
		Total:     decimal.Zero,
	}

	for _, line := range cart.Lines {
		if line.Quantity < 1 {
			return st, Sale{}, fmt.Errorf("%w: quantity for %s must be at least 1", ErrValidation, line.ProductID)
		}

		i := out.productIndex(line.ProductID)
		if i < 0 {
			return st, Sale{}, fmt.Errorf("%w: product %s", ErrNotFound, line.ProductID)
		}

		p := &out.Products[i]
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))

		sale.Items = append(sale.Items, SaleItem{
			ProductID: p.ID,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
		})
		sale.Total = sale.Total.Add(subtotal)
		p.Stock = max(0, p.Stock-line.Quantity)
	}

	out.Sales = append(out.Sales, sale)

	return out, sale, nil
}
