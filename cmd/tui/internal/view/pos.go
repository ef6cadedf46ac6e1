package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

type posFocus int

const (
	posFocusCatalog posFocus = iota
	posFocusCode
	posFocusCart
)

// POSModel is the till: pick or scan products into a cart and check it out.
type POSModel struct {
	CommonModel
	svc *ledger.Service

	focus    posFocus
	catalog  table.Model
	cartView table.Model
	code     textinput.Model

	products []ledger.Product
	cart     ledger.Cart

	checkingOut bool
	status      string
	err         error
}

func NewPOSModel(svc *ledger.Service) POSModel {
	catalog := newTable([]table.Column{
		{Title: "Producto", Width: 26},
		{Title: "Precio", Width: 14},
		{Title: "Stock", Width: 6},
	}, 15)

	cartView := newTable([]table.Column{
		{Title: "Producto", Width: 22},
		{Title: "Cant.", Width: 5},
		{Title: "Subtotal", Width: 14},
	}, 10)
	cartView.Blur()

	code := textinput.New()
	code.Placeholder = "código de barras o id"
	code.CharLimit = 64
	code.Width = 30

	m := POSModel{
		svc:      svc,
		catalog:  catalog,
		cartView: cartView,
		code:     code,
	}
	m.reload()

	return m
}

func (m POSModel) Title() string { return "Caja" }

func (m POSModel) ShortHelp() string {
	switch m.focus {
	case posFocusCode:
		return "Enter: add scanned product | Tab: cart | Esc: catalog"
	case posFocusCart:
		return "+/-: quantity | x: remove | c: checkout | Tab: next | Esc: back"
	}

	return "Enter: add to cart | /: scan code | c: checkout | Tab: next | Esc: back"
}

func (m POSModel) Init() tea.Cmd {
	return nil
}

func (m POSModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case checkoutMsg:
		m.checkingOut = false
		m.err = msg.err

		if msg.err == nil {
			m.cart.Reset()
			m.status = fmt.Sprintf("Venta registrada: %s (%d ítems).", FormatMoney(msg.sale.Total), len(msg.sale.Items))
		}

		m.reload()

		return m, nil

	case tea.WindowSizeMsg:
		m.catalog.SetHeight(msg.Height - 12)
		return m, nil

	case tea.KeyMsg:
		if m.checkingOut {
			return m, nil
		}

		if m.focus == posFocusCode {
			return m.updateCode(msg)
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "tab":
			return m.setFocus((m.focus + 1) % 3)
		case "/":
			return m.setFocus(posFocusCode)
		case "c":
			return m.checkout()
		}

		if m.focus == posFocusCart {
			return m.updateCart(msg)
		}

		if msg.String() == "enter" {
			idx := m.catalog.Cursor()
			if idx >= 0 && idx < len(m.products) {
				m.cart.Add(m.products[idx])
				m.status = "Agregado " + m.products[idx].Name + "."
				m.err = nil
				m.refreshCart()
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == posFocusCart {
		m.cartView, cmd = m.cartView.Update(msg)
	} else {
		m.catalog, cmd = m.catalog.Update(msg)
	}

	return m, cmd
}

func (m POSModel) setFocus(f posFocus) (tea.Model, tea.Cmd) {
	m.focus = f
	m.catalog.Blur()
	m.cartView.Blur()
	m.code.Blur()

	switch f {
	case posFocusCatalog:
		m.catalog.Focus()
	case posFocusCart:
		m.cartView.Focus()
	case posFocusCode:
		return m, m.code.Focus()
	}

	return m, nil
}

func (m POSModel) updateCode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.setFocus(posFocusCatalog)
	case tea.KeyTab:
		return m.setFocus(posFocusCart)
	case tea.KeyEnter:
		code := strings.TrimSpace(m.code.Value())
		m.code.Reset()

		if code == "" {
			return m, nil
		}

		p, err := m.cart.Scan(m.svc.Snapshot(), code)
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		m.status = "Agregado " + p.Name + "."
		m.refreshCart()

		return m, nil
	}

	var cmd tea.Cmd
	m.code, cmd = m.code.Update(msg)

	return m, cmd
}

func (m POSModel) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.cartView.Cursor()
	if idx < 0 || idx >= len(m.cart.Lines) {
		var cmd tea.Cmd
		m.cartView, cmd = m.cartView.Update(msg)

		return m, cmd
	}

	line := m.cart.Lines[idx]

	switch msg.String() {
	case "+", "=":
		m.err = m.cart.SetQuantity(line.ProductID, 1)
	case "-":
		m.err = m.cart.SetQuantity(line.ProductID, -1)
	case "x", "delete", "backspace":
		m.cart.Remove(line.ProductID)
	default:
		var cmd tea.Cmd
		m.cartView, cmd = m.cartView.Update(msg)

		return m, cmd
	}

	m.refreshCart()

	return m, nil
}

func (m POSModel) checkout() (tea.Model, tea.Cmd) {
	if m.cart.IsEmpty() {
		m.err = ledger.ErrEmptyCart
		return m, nil
	}

	m.checkingOut = true
	m.status = "Registrando venta..."
	m.err = nil

	cart := ledger.Cart{Lines: append([]ledger.CartLine(nil), m.cart.Lines...)}

	return m, func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		sale, err := m.svc.Checkout(ctx, &cart)
		if err != nil {
			return checkoutMsg{err: err}
		}

		return checkoutMsg{sale: *sale}
	}
}

func (m POSModel) View() string {
	catalogTitle := "Catálogo"
	cartTitle := "Carrito"

	switch m.focus {
	case posFocusCatalog:
		catalogTitle = activeStyle(catalogTitle)
	case posFocusCart:
		cartTitle = activeStyle(cartTitle)
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		catalogTitle,
		borderStyle.Render(m.catalog.View()),
		"Código: "+m.code.View(),
	)

	total := lipgloss.NewStyle().Bold(true).Render("Total: " + FormatMoney(m.svc.Quote(m.cart)))

	right := lipgloss.JoinVertical(lipgloss.Left,
		cartTitle,
		borderStyle.Render(m.cartView.View()),
		total,
	)

	content := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)

	if line := statusLine(m.status, m.err); line != "" {
		content = line + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *POSModel) reload() {
	st := m.svc.Snapshot()
	m.products = st.Products

	rows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		rows = append(rows, table.Row{p.Name, FormatMoney(p.Price), strconv.Itoa(p.Stock)})
	}

	m.catalog.SetRows(rows)
	m.refreshCart()
}

func (m *POSModel) refreshCart() {
	st := m.svc.Snapshot()

	rows := make([]table.Row, 0, len(m.cart.Lines))
	for _, line := range m.cart.Lines {
		subtotal := decimal.Zero
		if p, ok := st.Product(line.ProductID); ok {
			subtotal = p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		}

		rows = append(rows, table.Row{line.Name, strconv.Itoa(line.Quantity), FormatMoney(subtotal)})
	}

	m.cartView.SetRows(rows)

	if c := m.cartView.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.cartView.SetCursor(len(rows) - 1)
	}
}

type checkoutMsg struct {
	sale ledger.Sale
	err  error
}
