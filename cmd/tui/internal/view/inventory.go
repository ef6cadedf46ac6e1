package view

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

type inventoryState int

const (
	inventoryStateBrowse inventoryState = iota
	inventoryStateEdit
	inventoryStateConfirmDelete
	inventoryStateSaving
)

type InventoryModel struct {
	CommonModel
	svc *ledger.Service

	state    inventoryState
	table    table.Model
	products []ledger.Product
	settings ledger.Settings
	form     *huh.Form

	// categoryIdx 0 shows every category; i > 0 filters on categories[i-1].
	categoryIdx int
	categories  []string

	status string
	err    error

	fields *productFields
}

// productFields backs the edit form. It is a pointer so the huh bindings
// survive the model being copied on every Update.
type productFields struct {
	id          string
	name        string
	category    string
	price       string
	stock       string
	minStock    string
	barcode     string
	description string
	confirm     bool
	deleting    bool
}

func NewInventoryModel(svc *ledger.Service) InventoryModel {
	columns := []table.Column{
		{Title: "Producto", Width: 28},
		{Title: "Categoría", Width: 14},
		{Title: "Precio", Width: 14},
		{Title: "Stock", Width: 7},
		{Title: "Mín.", Width: 6},
		{Title: "Código", Width: 16},
		{Title: "", Width: 4},
	}

	m := InventoryModel{
		svc:   svc,
		table: newTable(columns, 15),
	}
	m.reload()

	return m
}

func (m InventoryModel) Title() string { return "Inventario" }

func (m InventoryModel) ShortHelp() string {
	if m.state != inventoryStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | e: edit | d: delete | c: category filter"
}

func (m InventoryModel) Init() tea.Cmd {
	return nil
}

func (m InventoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case inventorySaveMsg:
		m.err = msg.err
		m.status = msg.status
		m.state = inventoryStateBrowse
		m.form = nil
		m.table.Focus()
		m.reload()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case inventoryStateBrowse:
		return m.updateBrowse(msg)
	case inventoryStateEdit, inventoryStateConfirmDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m InventoryModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			return m.enterEditMode(nil)
		case "e":
			p, ok := m.selected()
			if !ok {
				return m, nil
			}

			return m.enterEditMode(&p)
		case "d":
			return m.enterConfirmDelete()
		case "c":
			m.categoryIdx = (m.categoryIdx + 1) % (len(m.categories) + 1)
			m.reload()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InventoryModel) selected() (ledger.Product, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.products) {
		return ledger.Product{}, false
	}

	return m.products[idx], true
}

func (m InventoryModel) enterEditMode(p *ledger.Product) (tea.Model, tea.Cmd) {
	f := &productFields{stock: "0"}
	if len(m.categories) > 0 {
		f.category = m.categories[0]
	}

	if p != nil {
		f.id = p.ID
		f.name = p.Name
		f.category = p.Category
		f.price = p.Price.StringFixed(2)
		f.stock = strconv.Itoa(p.Stock)
		f.barcode = p.Barcode
		f.description = p.Description

		if p.MinStock != nil {
			f.minStock = strconv.Itoa(*p.MinStock)
		}
	}

	m.fields = f

	options := huh.NewOptions(m.categories...)
	if f.category != "" && !slices.Contains(m.categories, f.category) {
		// Products keep the name of a removed category until they are moved.
		options = append(options, huh.NewOption(f.category+" (eliminada)", f.category))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Nombre").
				Value(&f.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name cannot be empty")
					}

					return nil
				}),

			huh.NewSelect[string]().
				Key("category").
				Title("Categoría").
				Options(options...).
				Value(&f.category),

			huh.NewInput().
				Key("price").
				Title("Precio").
				Placeholder("1234,50").
				Value(&f.price).
				Validate(func(s string) error {
					_, err := ParseMoney(s)
					return err
				}),

			huh.NewInput().
				Key("stock").
				Title("Stock").
				Value(&f.stock).
				Validate(func(s string) error {
					_, err := ParseCount(s)
					return err
				}),

			huh.NewInput().
				Key("min_stock").
				Title("Stock mínimo").
				Description(fmt.Sprintf("Vacío usa el valor general (%d)", m.settings.DefaultMinStock)).
				Value(&f.minStock).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					_, err := ParseCount(s)

					return err
				}),

			huh.NewInput().
				Key("barcode").
				Title("Código de barras").
				Value(&f.barcode),

			huh.NewInput().
				Key("description").
				Title("Descripción").
				Value(&f.description),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = inventoryStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m InventoryModel) enterConfirmDelete() (tea.Model, tea.Cmd) {
	p, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.fields = &productFields{id: p.ID, deleting: true}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("¿Eliminar %q?", p.Name)).
				Description("Las ventas registradas no se modifican.").
				Affirmative("Eliminar").
				Negative("Cancelar").
				Value(&m.fields.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = inventoryStateConfirmDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m InventoryModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = inventoryStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = inventoryStateSaving

	if m.fields.deleting {
		if !m.fields.confirm {
			return m, func() tea.Msg { return inventorySaveMsg{} }
		}

		return m, m.deleteCmd(m.fields.id)
	}

	return m, m.saveCmd()
}

func (m InventoryModel) View() string {
	filter := "Todas"
	if m.categoryIdx > 0 {
		filter = m.categories[m.categoryIdx-1]
	}

	header := fmt.Sprintf("Filtro: [c] Categoría: %s | %d productos", activeStyle(filter), len(m.products))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		borderStyle.Render(m.table.View()),
	)

	if m.state != inventoryStateBrowse && m.form != nil {
		title := "Nuevo producto"
		if m.fields.id != "" {
			title = "Editar producto"
		}

		if m.fields.deleting {
			title = "Eliminar producto"
		}

		panel := panelStyle.Width(48).Render(fmt.Sprintf("%s\n\n%s", title, m.form.View()))
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if line := statusLine(m.status, m.err); line != "" {
		content = line + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *InventoryModel) reload() {
	st := m.svc.Snapshot()
	m.settings = st.Settings
	m.categories = st.Categories

	if m.categoryIdx > len(m.categories) {
		m.categoryIdx = 0
	}

	m.products = nil
	for _, p := range st.Products {
		if m.categoryIdx > 0 && p.Category != m.categories[m.categoryIdx-1] {
			continue
		}

		m.products = append(m.products, p)
	}

	rows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		low := ""
		if p.Stock <= p.Threshold(st.Settings) {
			low = "bajo"
		}

		rows = append(rows, table.Row{
			p.Name,
			p.Category,
			FormatMoney(p.Price),
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.Threshold(st.Settings)),
			p.Barcode,
			low,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type inventorySaveMsg struct {
	status string
	err    error
}

func (m InventoryModel) saveCmd() tea.Cmd {
	f := m.fields
	params := ledger.ProductParams{
		ID:          f.id,
		Name:        f.name,
		Category:    f.category,
		Barcode:     strings.TrimSpace(f.barcode),
		Description: strings.TrimSpace(f.description),
	}

	// The form validated these already.
	params.Price, _ = ParseMoney(f.price)
	params.Stock, _ = ParseCount(f.stock)

	if s := strings.TrimSpace(f.minStock); s != "" {
		n, _ := ParseCount(s)
		params.MinStock = &n
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		p, err := m.svc.UpsertProduct(ctx, params)
		if err != nil {
			return inventorySaveMsg{err: err}
		}

		return inventorySaveMsg{status: fmt.Sprintf("Guardado %s.", p.Name)}
	}
}

func (m InventoryModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if err := m.svc.DeleteProduct(ctx, id); err != nil {
			return inventorySaveMsg{err: err}
		}

		return inventorySaveMsg{status: "Producto eliminado."}
	}
}
