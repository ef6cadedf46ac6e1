package report

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/storeledger/internal/export"
	"github.com/MrJamesThe3rd/storeledger/internal/http/respond"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

// Handler serves the read-only aggregates and the daily report export.
type Handler struct {
	svc       *ledger.Service
	exportSvc *export.Service
	loc       *time.Location
}

func NewHandler(svc *ledger.Service, exportSvc *export.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, exportSvc: exportSvc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/balance", h.balance)
	r.Get("/dashboard", h.dashboard)
	r.Get("/low-stock", h.lowStock)
	r.Get("/sales-by-category", h.salesByCategory)
	r.Get("/export", h.exportSummary)
	r.Get("/export/download", h.download)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	day, err := respond.Day(r, h.loc)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.svc.Balance(day))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	day, err := respond.Day(r, h.loc)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, h.svc.Dashboard(day))
}

func (h *Handler) lowStock(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.svc.LowStock())
}

func (h *Handler) salesByCategory(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.svc.SalesByCategory())
}

type exportSummaryResponse struct {
	Balance  ledger.Balance       `json:"balance"`
	Sales    []export.SaleLine    `json:"sales"`
	Expenses []export.ExpenseLine `json:"expenses"`
	Summary  string               `json:"summary"`
}

func (h *Handler) exportSummary(w http.ResponseWriter, r *http.Request) {
	day, err := respond.Day(r, h.loc)
	if err != nil {
		respond.Error(w, err)
		return
	}

	st := h.svc.Snapshot()
	b := ledger.DailyBalance(st, day)

	respond.JSON(w, http.StatusOK, exportSummaryResponse{
		Balance:  b,
		Sales:    export.SaleLines(st, b),
		Expenses: export.ExpenseLines(st, b),
		Summary:  export.Summary(st, b),
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	day, err := respond.Day(r, h.loc)
	if err != nil {
		respond.Error(w, err)
		return
	}

	tmpDir, err := os.MkdirTemp("", "storeledger-export-*")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	report, err := h.exportSvc.Export(r.Context(), day, tmpDir)
	if err != nil {
		respond.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"cierre_%s.zip\"", day.Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	for _, path := range []string{report.SalesPath, report.ExpensesPath, report.SummaryPath} {
		if err := addToZip(zipWriter, path); err != nil {
			zap.S().Errorw("failed to create zip", "error", err)
			return
		}
	}
}

func addToZip(zw *zip.Writer, path string) error {
	zf, err := zw.Create(filepath.Base(path))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(zf, f)

	return err
}
