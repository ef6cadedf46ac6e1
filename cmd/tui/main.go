package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/storeledger/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/storeledger/internal/config"
	"github.com/MrJamesThe3rd/storeledger/internal/export"
	"github.com/MrJamesThe3rd/storeledger/internal/importer"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
	"github.com/MrJamesThe3rd/storeledger/internal/logger"
	"github.com/MrJamesThe3rd/storeledger/internal/storage"
)

const defaultLogFile = "storeledger-tui.log"

type model struct {
	svc           *ledger.Service
	importService *importer.Service
	exportService *export.Service
	loc           *time.Location
	reportDir     string
	storeName     string

	currentView View

	posView       view.POSModel
	inventoryView view.InventoryModel
	balanceView   view.BalanceModel
	supplierView  view.SuppliersModel
	importView    view.ImportModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewPOS       View = 1
	ViewInventory View = 2
	ViewBalance   View = 3
	ViewSuppliers View = 4
	ViewImport    View = 5
	ViewExport    View = 6
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewPOS
				m.posView = view.NewPOSModel(m.svc)

				return m, m.posView.Init()
			case "2":
				m.currentView = ViewInventory
				m.inventoryView = view.NewInventoryModel(m.svc)

				return m, m.inventoryView.Init()
			case "3":
				m.currentView = ViewBalance
				m.balanceView = view.NewBalanceModel(m.svc, m.loc)

				return m, m.balanceView.Init()
			case "4":
				m.currentView = ViewSuppliers
				m.supplierView = view.NewSuppliersModel(m.svc)

				return m, m.supplierView.Init()
			case "5":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.svc, m.importService)

				return m, m.importView.Init()
			case "6":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.loc, m.reportDir)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewPOS:
		var newModel tea.Model
		newModel, cmd = m.posView.Update(msg)
		m.posView = newModel.(view.POSModel)
	case ViewInventory:
		var newModel tea.Model
		newModel, cmd = m.inventoryView.Update(msg)
		m.inventoryView = newModel.(view.InventoryModel)
	case ViewBalance:
		var newModel tea.Model
		newModel, cmd = m.balanceView.Update(msg)
		m.balanceView = newModel.(view.BalanceModel)
	case ViewSuppliers:
		var newModel tea.Model
		newModel, cmd = m.supplierView.Update(msg)
		m.supplierView = newModel.(view.SuppliersModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return m.menu()
	case ViewPOS:
		current = m.posView
	case ViewInventory:
		current = m.inventoryView
	case ViewBalance:
		current = m.balanceView
	case ViewSuppliers:
		current = m.supplierView
	case ViewImport:
		current = m.importView
	case ViewExport:
		current = m.exportView
	default:
		return "Unknown View"
	}

	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(current.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, current.View(), help)
}

func (m model) menu() string {
	st := m.svc.Snapshot()
	dash := ledger.BuildDashboard(st, time.Now().In(m.loc))

	header := fmt.Sprintf("%s\n\nVentas hoy: %s | Gastos hoy: %s | Stock bajo: %d",
		m.storeName,
		view.FormatMoney(dash.SalesToday),
		view.FormatMoney(dash.ExpensesToday),
		dash.LowStockCount,
	)

	return lipgloss.NewStyle().Padding(2).Render(
		header + "\n\n" +
			"1. Caja\n" +
			"2. Inventario\n" +
			"3. Balance diario\n" +
			"4. Proveedores\n" +
			"5. Importar lista de precios\n" +
			"6. Cierre del día\n\n" +
			"q. Salir",
	)
}

func initialModel(ctx context.Context, cfg *config.Config) (model, func() error, error) {
	loc, err := cfg.Location()
	if err != nil {
		return model{}, nil, err
	}

	repo, closeRepo, err := storage.Open(ctx, cfg)
	if err != nil {
		return model{}, nil, err
	}

	engine := ledger.NewEngine(ledger.WithClock(func() time.Time { return time.Now().In(loc) }))

	svc := ledger.NewService(repo, engine)
	if err := svc.Open(ctx); err != nil {
		closeRepo()
		return model{}, nil, err
	}

	return model{
		svc:           svc,
		importService: importer.NewService(),
		exportService: export.NewService(svc),
		loc:           loc,
		reportDir:     cfg.Report.Dir,
		storeName:     cfg.App.Name,
		currentView:   ViewMenu,
	}, closeRepo, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = defaultLogFile
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, File: logFile, Quiet: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	m, closeRepo, err := initialModel(context.Background(), cfg)
	if err != nil {
		zap.S().Errorw("failed to open store", "error", err)
		fmt.Fprintln(os.Stderr, "failed to open store:", err)
		os.Exit(1)
	}
	defer closeRepo()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		zap.S().Errorw("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
