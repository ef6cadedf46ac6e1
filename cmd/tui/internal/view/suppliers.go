package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

type suppliersState int

const (
	suppliersStateBrowse suppliersState = iota
	suppliersStateEdit
	suppliersStateSaving
)

type SuppliersModel struct {
	CommonModel
	svc *ledger.Service

	state     suppliersState
	table     table.Model
	suppliers []ledger.Supplier
	form      *huh.Form
	fields    *supplierFields

	status string
	err    error
}

type supplierFields struct {
	id          string
	name        string
	phone       string
	description string
}

func NewSuppliersModel(svc *ledger.Service) SuppliersModel {
	m := SuppliersModel{
		svc: svc,
		table: newTable([]table.Column{
			{Title: "Proveedor", Width: 26},
			{Title: "Teléfono", Width: 16},
			{Title: "Descripción", Width: 40},
		}, 15),
	}
	m.reload()

	return m
}

func (m SuppliersModel) Title() string { return "Proveedores" }

func (m SuppliersModel) ShortHelp() string {
	if m.state != suppliersStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new | e: edit | d: delete"
}

func (m SuppliersModel) Init() tea.Cmd {
	return nil
}

func (m SuppliersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case supplierSaveMsg:
		m.err = msg.err
		m.status = msg.status
		m.state = suppliersStateBrowse
		m.form = nil
		m.table.Focus()
		m.reload()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case suppliersStateBrowse:
		return m.updateBrowse(msg)
	case suppliersStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m SuppliersModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			return m.enterEditMode(nil)
		case "e":
			if sup, ok := m.selected(); ok {
				return m.enterEditMode(&sup)
			}

			return m, nil
		case "d":
			sup, ok := m.selected()
			if !ok {
				return m, nil
			}

			m.state = suppliersStateSaving

			return m, m.deleteCmd(sup)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m SuppliersModel) selected() (ledger.Supplier, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.suppliers) {
		return ledger.Supplier{}, false
	}

	return m.suppliers[idx], true
}

func (m SuppliersModel) enterEditMode(sup *ledger.Supplier) (tea.Model, tea.Cmd) {
	f := &supplierFields{}
	if sup != nil {
		f.id, f.name, f.phone, f.description = sup.ID, sup.Name, sup.Phone, sup.Description
	}

	m.fields = f
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

			huh.NewInput().
				Key("phone").
				Title("Teléfono").
				Value(&f.phone),

			huh.NewText().
				Key("description").
				Title("Descripción").
				Lines(3).
				Value(&f.description),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = suppliersStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m SuppliersModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = suppliersStateBrowse
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

	m.state = suppliersStateSaving

	return m, m.saveCmd()
}

func (m SuppliersModel) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(fmt.Sprintf("%d proveedores", len(m.suppliers))),
		borderStyle.Render(m.table.View()),
	)

	if m.state != suppliersStateBrowse && m.form != nil {
		title := "Nuevo proveedor"
		if m.fields.id != "" {
			title = "Editar proveedor"
		}

		panel := panelStyle.Width(48).Render(fmt.Sprintf("%s\n\n%s", title, m.form.View()))
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if line := statusLine(m.status, m.err); line != "" {
		content = line + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *SuppliersModel) reload() {
	m.suppliers = m.svc.Snapshot().Suppliers

	rows := make([]table.Row, 0, len(m.suppliers))
	for _, s := range m.suppliers {
		rows = append(rows, table.Row{s.Name, s.Phone, s.Description})
	}

	m.table.SetRows(rows)
}

type supplierSaveMsg struct {
	status string
	err    error
}

func (m SuppliersModel) saveCmd() tea.Cmd {
	params := ledger.SupplierParams{
		ID:          m.fields.id,
		Name:        m.fields.name,
		Phone:       strings.TrimSpace(m.fields.phone),
		Description: strings.TrimSpace(m.fields.description),
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		sup, err := m.svc.UpsertSupplier(ctx, params)
		if err != nil {
			return supplierSaveMsg{err: err}
		}

		return supplierSaveMsg{status: fmt.Sprintf("Guardado %s.", sup.Name)}
	}
}

// deleteCmd removes the supplier. Expenses that name it keep the dangling id.
func (m SuppliersModel) deleteCmd(sup ledger.Supplier) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if err := m.svc.DeleteSupplier(ctx, sup.ID); err != nil {
			return supplierSaveMsg{err: err}
		}

		return supplierSaveMsg{status: fmt.Sprintf("Eliminado %s.", sup.Name)}
	}
}
