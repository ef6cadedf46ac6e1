package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

type balanceState int

const (
	balanceStateBrowse balanceState = iota
	balanceStateAddExpense
	balanceStateSaving
)

var expenseCategoryLabels = map[ledger.ExpenseCategory]string{
	ledger.ExpenseSupplier: "Proveedor",
	ledger.ExpenseUtility:  "Servicios",
	ledger.ExpensePayroll:  "Sueldos",
	ledger.ExpenseOther:    "Otros",
}

// BalanceModel shows the cash summary of one day and its expense log.
type BalanceModel struct {
	CommonModel
	svc *ledger.Service
	loc *time.Location

	state    balanceState
	day      time.Time
	balance  ledger.Balance
	table    table.Model
	form     *huh.Form
	fields   *expenseFields
	supplier map[string]string

	status string
	err    error
}

type expenseFields struct {
	description string
	amount      string
	category    ledger.ExpenseCategory
	supplierID  string
}

func NewBalanceModel(svc *ledger.Service, loc *time.Location) BalanceModel {
	m := BalanceModel{
		svc: svc,
		loc: loc,
		day: time.Now().In(loc),
		table: newTable([]table.Column{
			{Title: "Hora", Width: 6},
			{Title: "Descripción", Width: 30},
			{Title: "Categoría", Width: 11},
			{Title: "Proveedor", Width: 20},
			{Title: "Monto", Width: 14},
		}, 12),
	}
	m.reload()

	return m
}

func (m BalanceModel) Title() string { return "Balance diario" }

func (m BalanceModel) ShortHelp() string {
	if m.state != balanceStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | ←/→: day | t: today | a: add expense | d: delete expense"
}

func (m BalanceModel) Init() tea.Cmd {
	return nil
}

func (m BalanceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case expenseSaveMsg:
		m.err = msg.err
		m.status = msg.status
		m.state = balanceStateBrowse
		m.form = nil
		m.table.Focus()
		m.reload()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 16)
		return m, nil
	}

	switch m.state {
	case balanceStateBrowse:
		return m.updateBrowse(msg)
	case balanceStateAddExpense:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m BalanceModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "left", "h":
			m.day = m.day.AddDate(0, 0, -1)
			m.reload()

			return m, nil
		case "right", "l":
			m.day = m.day.AddDate(0, 0, 1)
			m.reload()

			return m, nil
		case "t":
			m.day = time.Now().In(m.loc)
			m.reload()

			return m, nil
		case "a":
			return m.enterAddExpense()
		case "d":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.balance.Expenses) {
				return m, nil
			}

			m.state = balanceStateSaving

			return m, m.deleteCmd(m.balance.Expenses[idx])
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BalanceModel) enterAddExpense() (tea.Model, tea.Cmd) {
	f := &expenseFields{category: ledger.ExpenseOther}
	m.fields = f

	categories := make([]huh.Option[ledger.ExpenseCategory], 0, len(ledger.ExpenseCategories))
	for _, c := range ledger.ExpenseCategories {
		categories = append(categories, huh.NewOption(expenseCategoryLabels[c], c))
	}

	suppliers := []huh.Option[string]{huh.NewOption("(ninguno)", "")}
	for _, s := range m.svc.Snapshot().Suppliers {
		suppliers = append(suppliers, huh.NewOption(s.Name, s.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Descripción").
				Value(&f.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description cannot be empty")
					}

					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Monto").
				Placeholder("1234,50").
				Value(&f.amount).
				Validate(func(s string) error {
					_, err := ParseMoney(s)
					return err
				}),

			huh.NewSelect[ledger.ExpenseCategory]().
				Key("category").
				Title("Categoría").
				Options(categories...).
				Value(&f.category),

			huh.NewSelect[string]().
				Key("supplier").
				Title("Proveedor").
				Options(suppliers...).
				Value(&f.supplierID),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = balanceStateAddExpense
	m.table.Blur()

	return m, m.form.Init()
}

func (m BalanceModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = balanceStateBrowse
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

	m.state = balanceStateSaving

	return m, m.saveCmd()
}

func (m BalanceModel) View() string {
	b := m.balance

	net := okStyle
	if b.Net.IsNegative() {
		net = errorStyle
	}

	summary := lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("Día: %s", activeStyle(m.day.Format("02/01/2006"))),
		"",
		fmt.Sprintf("Ventas:  %s (%d)", FormatMoney(b.SalesTotal), len(b.Sales)),
		fmt.Sprintf("Gastos:  %s (%d)", FormatMoney(b.ExpensesTotal), len(b.Expenses)),
		"Balance: "+net.Render(FormatMoney(b.Net)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(summary),
		"Gastos del día",
		borderStyle.Render(m.table.View()),
	)

	if m.state != balanceStateBrowse && m.form != nil {
		panel := panelStyle.Width(48).Render("Nuevo gasto\n\n" + m.form.View())
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if line := statusLine(m.status, m.err); line != "" {
		content = line + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BalanceModel) reload() {
	st := m.svc.Snapshot()
	m.balance = ledger.DailyBalance(st, m.day)

	m.supplier = make(map[string]string, len(st.Suppliers))
	for _, s := range st.Suppliers {
		m.supplier[s.ID] = s.Name
	}

	rows := make([]table.Row, 0, len(m.balance.Expenses))
	for _, e := range m.balance.Expenses {
		rows = append(rows, table.Row{
			e.Timestamp.In(m.loc).Format("15:04"),
			e.Description,
			expenseCategoryLabels[e.Category],
			m.supplierName(e.SupplierID),
			FormatMoney(e.Amount),
		})
	}

	m.table.SetRows(rows)
}

// supplierName resolves a supplier id. Deleted suppliers keep showing as a
// dash since expenses are never rewritten.
func (m BalanceModel) supplierName(id string) string {
	if id == "" {
		return ""
	}

	if name, ok := m.supplier[id]; ok {
		return name
	}

	return "-"
}

type expenseSaveMsg struct {
	status string
	err    error
}

func (m BalanceModel) saveCmd() tea.Cmd {
	f := m.fields

	// The form validated the amount already.
	amount, _ := ParseMoney(f.amount)

	params := ledger.ExpenseParams{
		Description: f.description,
		Amount:      amount,
		Category:    f.category,
		SupplierID:  f.supplierID,
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		exp, err := m.svc.AddExpense(ctx, params)
		if err != nil {
			return expenseSaveMsg{err: err}
		}

		return expenseSaveMsg{status: fmt.Sprintf("Gasto registrado: %s.", FormatMoney(exp.Amount))}
	}
}

func (m BalanceModel) deleteCmd(e ledger.Expense) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		if err := m.svc.DeleteExpense(ctx, e.ID); err != nil {
			return expenseSaveMsg{err: err}
		}

		return expenseSaveMsg{status: "Gasto eliminado: " + e.Description + "."}
	}
}
