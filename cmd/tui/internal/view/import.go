package view

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/storeledger/internal/importer"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

const importTimeout = 30 * time.Second

type importState int

const (
	importStateFormatSelect importState = iota
	importStateFilePick
	importStateParsing
	importStatePreview
	importStateResult
)

// ImportModel loads a supplier price list into the catalog. Rows are parsed,
// previewed against the current catalog and applied as a single batch.
type ImportModel struct {
	CommonModel
	svc           *ledger.Service
	importService *importer.Service

	state          importState
	filePicker     filepicker.Model
	selectedFormat importer.Format
	formatOptions  []importer.Format
	formatCursor   int

	rows    []ledger.ProductParams
	preview list.Model

	status string
	err    error
}

func NewImportModel(svc *ledger.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".tsv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.Height = 15

	return ImportModel{
		svc:           svc,
		importService: impSvc,
		filePicker:    fp,
		formatOptions: []importer.Format{importer.FormatCSV, importer.FormatTSV},
	}
}

func (m ImportModel) Title() string { return "Importar lista de precios" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Enter: apply | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return nil
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateFormatSelect:
			return m.updateFormatSelect(msg)
		case importStatePreview:
			return m.updatePreview(msg)
		}

	case parseResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.rows = msg.rows
		m.state = importStatePreview
		m.preview = m.buildPreview(msg.rows)

		return m, nil

	case applyResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Importados %d productos.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Leyendo %s...", path)

		return m, m.parseCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStatePreview, importStateResult:
		m.state = importStateFormatSelect
		m.rows = nil
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.formatCursor > 0 {
			m.formatCursor--
		}
	case tea.KeyDown:
		if m.formatCursor < len(m.formatOptions)-1 {
			m.formatCursor++
		}
	case tea.KeyEnter:
		m.selectedFormat = m.formatOptions[m.formatCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		m.state = importStateParsing
		m.status = fmt.Sprintf("Aplicando %d filas...", len(m.rows))

		return m, m.applyCmd(m.rows)
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m ImportModel) buildPreview(rows []ledger.ProductParams) list.Model {
	st := m.svc.Snapshot()

	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = previewItem{row: row, updates: ledger.MatchExisting(st, row) != ""}
	}

	l := list.New(items, previewDelegate{}, 80, 20)
	l.Title = fmt.Sprintf("%d filas leídas", len(rows))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFormatSelect:
		return m.viewFormatSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Elegí el archivo (%s):\n\n%s", m.selectedFormat, m.filePicker.View()),
		)
	case importStateParsing:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(m.preview.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewFormatSelect() string {
	var b strings.Builder

	b.WriteString("Formato:\n\n")

	for i, f := range m.formatOptions {
		cursor := " "
		if i == m.formatCursor {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, strings.ToUpper(string(f)))
	}

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(okStyle.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type parseResultMsg struct {
	rows []ledger.ProductParams
	err  error
}

type applyResultMsg struct {
	count int
	err   error
}

func (m ImportModel) parseCmd(path string) tea.Cmd {
	format := m.selectedFormat
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		format = importer.FormatTSV
	}

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return parseResultMsg{err: err}
		}
		defer f.Close()

		rows, err := m.importService.Import(format, f)

		return parseResultMsg{rows: rows, err: err}
	}
}

func (m ImportModel) applyCmd(rows []ledger.ProductParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		products, err := m.svc.ImportProducts(ctx, rows)
		if err != nil {
			return applyResultMsg{err: err}
		}

		return applyResultMsg{count: len(products)}
	}
}

// Preview list item

type previewItem struct {
	row     ledger.ProductParams
	updates bool
}

func (i previewItem) Title() string       { return i.row.Name }
func (i previewItem) Description() string { return i.row.Category }
func (i previewItem) FilterValue() string { return i.row.Name }

// Preview list delegate

type previewDelegate struct{}

func (d previewDelegate) Height() int                             { return 1 }
func (d previewDelegate) Spacing() int                            { return 0 }
func (d previewDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d previewDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(previewItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	action := okStyle.Render("nuevo    ")
	if item.updates {
		action = activeStyle("actualiza")
	}

	fmt.Fprintf(w, "%s%s  %-28s %-14s %14s  stock %d",
		cursor, action,
		item.row.Name,
		item.row.Category,
		FormatMoney(item.row.Price),
		item.row.Stock,
	)
}
