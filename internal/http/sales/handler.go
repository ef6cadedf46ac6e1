package sales

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/storeledger/internal/http/respond"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
	loc *time.Location
}

func NewHandler(svc *ledger.Service, loc *time.Location) *Handler {
	return &Handler{svc: svc, loc: loc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/quote", h.quote)
	r.Post("/checkout", h.checkout)
}

type cartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// cartRequest carries a cart assembled by the client. The server keeps no
// cart of its own.
type cartRequest struct {
	Items []cartLine `json:"items"`
}

func (req cartRequest) cart() ledger.Cart {
	cart := ledger.Cart{Lines: make([]ledger.CartLine, 0, len(req.Items))}
	for _, it := range req.Items {
		cart.Lines = append(cart.Lines, ledger.CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	return cart
}

type quoteResponse struct {
	Total decimal.Decimal `json:"total"`
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	respond.JSON(w, http.StatusOK, quoteResponse{Total: h.svc.Quote(req.cart())})
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cart := req.cart()

	sale, err := h.svc.Checkout(r.Context(), &cart)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	day, err := respond.Day(r, h.loc)
	if err != nil {
		respond.Error(w, err)
		return
	}

	sales := h.svc.Balance(day).Sales
	if sales == nil {
		sales = []ledger.Sale{}
	}

	respond.JSON(w, http.StatusOK, sales)
}
