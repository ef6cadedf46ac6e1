package ledger_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

func TestCart_AddSetRemove(t *testing.T) {
	a := ledger.Product{ID: "a", Name: "Alfajor"}
	b := ledger.Product{ID: "b", Name: "Bizcochos"}

	var cart ledger.Cart
	assert.Equal(t, ledger.CartEmpty, cart.State())

	cart.Add(a)
	cart.Add(b)
	cart.Add(a)

	assert.Equal(t, ledger.CartBuilding, cart.State())
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 1, cart.Lines[1].Quantity)

	require.NoError(t, cart.SetQuantity("a", -5))
	assert.Equal(t, 1, cart.Lines[0].Quantity, "quantity is clamped to one")

	require.NoError(t, cart.SetQuantity("b", 3))
	assert.Equal(t, 4, cart.Lines[1].Quantity)

	require.ErrorIs(t, cart.SetQuantity("zzz", 1), ledger.ErrNotFound)

	cart.Remove("a")
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "b", cart.Lines[0].ProductID)

	cart.Remove("b")
	assert.Equal(t, ledger.CartEmpty, cart.State())
}

func TestCart_Scan(t *testing.T) {
	e := newEngine()
	st, _, err := e.UpsertProduct(ledger.NewState(), ledger.ProductParams{
		Name: "Gaseosa", Category: "Bebidas", Price: dec("1500"), Stock: 3, Barcode: "7790895000997",
	})
	require.NoError(t, err)

	var cart ledger.Cart

	p, err := cart.Scan(st, "7790895000997")
	require.NoError(t, err)
	assert.Equal(t, "Gaseosa", p.Name)
	require.Len(t, cart.Lines, 1)

	_, err = cart.Scan(st, "0000")
	require.ErrorIs(t, err, ledger.ErrNotFound)
	assert.Len(t, cart.Lines, 1)
}

func TestEngine_Checkout(t *testing.T) {
	e := newEngine()
	st := ledger.NewState()
	st, a := addProduct(t, e, st, "A", "Almacén", "10.00", 3)
	st, b := addProduct(t, e, st, "B", "Almacén", "5.50", 7)

	var cart ledger.Cart
	cart.Add(a)
	cart.Add(a)
	cart.Add(b)

	requireDecimal(t, "25.50", ledger.Quote(st, cart))

	got, sale, err := e.Checkout(st, cart)
	require.NoError(t, err)

	requireDecimal(t, "25.50", sale.Total)
	assert.Equal(t, fixedNow, sale.Timestamp)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, ledger.SaleItem{ProductID: a.ID, Quantity: 2, Subtotal: sale.Items[0].Subtotal}, sale.Items[0])
	requireDecimal(t, "20", sale.Items[0].Subtotal)
	requireDecimal(t, "5.5", sale.Items[1].Subtotal)

	gotA, _ := got.Product(a.ID)
	gotB, _ := got.Product(b.ID)
	assert.Equal(t, 1, gotA.Stock)
	assert.Equal(t, 6, gotB.Stock)

	assert.Len(t, got.Sales, len(st.Sales)+1)
	assert.Equal(t, sale, got.Sales[len(got.Sales)-1])

	origA, _ := st.Product(a.ID)
	assert.Equal(t, 3, origA.Stock, "input state must not change")
}

func TestEngine_Checkout_OversellClampsStock(t *testing.T) {
	e := newEngine()
	st, p := addProduct(t, e, ledger.NewState(), "Pan", "Almacén", "2", 2)

	cart := ledger.Cart{Lines: []ledger.CartLine{{ProductID: p.ID, Quantity: 5}}}

	got, sale, err := e.Checkout(st, cart)
	require.NoError(t, err)

	after, _ := got.Product(p.ID)
	assert.Equal(t, 0, after.Stock)
	assert.Equal(t, 5, sale.Items[0].Quantity)
	requireDecimal(t, "10", sale.Items[0].Subtotal)
}

func TestEngine_Checkout_Failures(t *testing.T) {
	e := newEngine()
	st, p := addProduct(t, e, ledger.NewState(), "Pan", "Almacén", "2", 2)

	type testCase struct {
		name    string
		cart    ledger.Cart
		wantErr error
	}

	tests := []testCase{
		{name: "EmptyCart", cart: ledger.Cart{}, wantErr: ledger.ErrEmptyCart},
		{
			name: "DeletedProduct",
			cart: ledger.Cart{Lines: []ledger.CartLine{
				{ProductID: p.ID, Quantity: 1},
				{ProductID: "gone", Quantity: 1},
			}},
			wantErr: ledger.ErrNotFound,
		},
		{
			name:    "ZeroQuantity",
			cart:    ledger.Cart{Lines: []ledger.CartLine{{ProductID: p.ID, Quantity: 0}}},
			wantErr: ledger.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := json.Marshal(st)
			require.NoError(t, err)

			got, _, err := e.Checkout(st, tt.cart)
			require.ErrorIs(t, err, tt.wantErr)

			after, err := json.Marshal(got)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
		})
	}
}
