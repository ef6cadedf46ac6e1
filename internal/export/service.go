package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

// Source hands out consistent snapshots of a store.
type Source interface {
	Snapshot() ledger.State
}

// SaleLine is one row of the sales file: a single item of a sale.
type SaleLine struct {
	SaleID    string `csv:"venta"`
	Time      string `csv:"hora"`
	ProductID string `csv:"producto_id"`
	Product   string `csv:"producto"`
	Category  string `csv:"categoria"`
	Quantity  int    `csv:"cantidad"`
	Subtotal  string `csv:"subtotal"`
}

type ExpenseLine struct {
	ExpenseID   string `csv:"gasto"`
	Time        string `csv:"hora"`
	Description string `csv:"descripcion"`
	Category    string `csv:"categoria"`
	Supplier    string `csv:"proveedor"`
	Amount      string `csv:"monto"`
}

// Report is the set of files written for one day.
type Report struct {
	Day          time.Time
	Balance      ledger.Balance
	SalesPath    string
	ExpensesPath string
	SummaryPath  string
}

// Service writes the daily report of a store.
type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// Export writes the sales, expenses and summary files for day into outputDir.
// Existing files for the same day are overwritten.
func (s *Service) Export(ctx context.Context, day time.Time, outputDir string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := s.src.Snapshot()
	balance := ledger.DailyBalance(st, day)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stamp := day.Format("20060102")
	report := &Report{
		Day:          day,
		Balance:      balance,
		SalesPath:    filepath.Join(outputDir, "ventas_"+stamp+".csv"),
		ExpensesPath: filepath.Join(outputDir, "gastos_"+stamp+".csv"),
		SummaryPath:  filepath.Join(outputDir, "resumen_"+stamp+".txt"),
	}

	if err := writeCSV(report.SalesPath, SaleLines(st, balance)); err != nil {
		return nil, fmt.Errorf("writing sales: %w", err)
	}

	if err := writeCSV(report.ExpensesPath, ExpenseLines(st, balance)); err != nil {
		return nil, fmt.Errorf("writing expenses: %w", err)
	}

	summary := Summary(st, balance)
	if err := os.WriteFile(report.SummaryPath, []byte(summary), 0o644); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	return report, nil
}

func writeCSV[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return err
	}

	return f.Close()
}

// SaleLines flattens the day's sales. Product names and categories come from
// the current catalog; deleted products keep only their id.
func SaleLines(st ledger.State, b ledger.Balance) []SaleLine {
	lines := []SaleLine{}

	for _, sale := range b.Sales {
		for _, item := range sale.Items {
			line := SaleLine{
				SaleID:    sale.ID,
				Time:      sale.Timestamp.In(b.Day.Location()).Format("15:04"),
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Subtotal:  item.Subtotal.StringFixed(2),
			}

			if p, ok := st.Product(item.ProductID); ok {
				line.Product = p.Name
				line.Category = p.Category
			}

			lines = append(lines, line)
		}
	}

	return lines
}

func ExpenseLines(st ledger.State, b ledger.Balance) []ExpenseLine {
	names := make(map[string]string, len(st.Suppliers))
	for _, sup := range st.Suppliers {
		names[sup.ID] = sup.Name
	}

	lines := []ExpenseLine{}

	for _, e := range b.Expenses {
		supplier := e.SupplierID
		if name, ok := names[e.SupplierID]; ok {
			supplier = name
		}

		lines = append(lines, ExpenseLine{
			ExpenseID:   e.ID,
			Time:        e.Timestamp.In(b.Day.Location()).Format("15:04"),
			Description: e.Description,
			Category:    string(e.Category),
			Supplier:    supplier,
			Amount:      e.Amount.StringFixed(2),
		})
	}

	return lines
}

// Summary renders the closing summary of a day as plain text.
func Summary(st ledger.State, b ledger.Balance) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Cierre del %s\n\n", b.Day.Format("02/01/2006"))
	fmt.Fprintf(&sb, "Ventas:   %3d | $ %s\n", len(b.Sales), b.SalesTotal.StringFixed(2))
	fmt.Fprintf(&sb, "Gastos:   %3d | $ %s\n", len(b.Expenses), b.ExpensesTotal.StringFixed(2))
	fmt.Fprintf(&sb, "Balance:       $ %s\n", b.Net.StringFixed(2))

	if low := ledger.LowStockProducts(st); len(low) > 0 {
		sb.WriteString("\nStock bajo:\n")

		for _, p := range low {
			fmt.Fprintf(&sb, "* %s (%s): %d\n", p.Name, p.Category, p.Stock)
		}
	}

	return sb.String()
}
