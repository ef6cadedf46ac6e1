package directory

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/storeledger/internal/http/respond"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

// Handler serves suppliers and the expense log.
type Handler struct {
	svc *ledger.Service
	loc *time.Location
}

func NewHandler(svc *ledger.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) SupplierRoutes(r chi.Router) {
	r.Get("/", h.listSuppliers)
	r.Post("/", h.createSupplier)
	r.Put("/{id}", h.updateSupplier)
	r.Delete("/{id}", h.deleteSupplier)
}

func (h *Handler) ExpenseRoutes(r chi.Router) {
	r.Get("/", h.listExpenses)
	r.Post("/", h.addExpense)
	r.Delete("/{id}", h.deleteExpense)
}

type supplierRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

func (h *Handler) listSuppliers(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, h.svc.Snapshot().Suppliers)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	h.upsertSupplier(w, r, "", http.StatusCreated)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	h.upsertSupplier(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) upsertSupplier(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sup, err := h.svc.UpsertSupplier(r.Context(), ledger.SupplierParams{
		ID:          id,
		Name:        req.Name,
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, status, sup)
}

// deleteSupplier leaves expenses that point at the supplier untouched.
func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type expenseRequest struct {
	Description string                 `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
	Category    ledger.ExpenseCategory `json:"category"`
	SupplierID  string                 `json:"supplierId,omitempty"`
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	day, err := respond.Day(r, h.loc)
	if err != nil {
		respond.Error(w, err)
		return
	}

	expenses := h.svc.Balance(day).Expenses
	if expenses == nil {
		expenses = []ledger.Expense{}
	}

	respond.JSON(w, http.StatusOK, expenses)
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	exp, err := h.svc.AddExpense(r.Context(), ledger.ExpenseParams{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		SupplierID:  req.SupplierID,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, exp)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteExpense(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
