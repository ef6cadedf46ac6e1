package advice

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/storeledger/internal/advice"
	"github.com/MrJamesThe3rd/storeledger/internal/http/respond"
)

const clientIDHeader = "X-Client-Id"

type Handler struct {
	svc      *advice.Service
	maxBytes int64
	cacheTTL time.Duration
}

// NewHandler serves advice requests. Bodies are read up to maxBytes+1 so the
// service can tell an oversized payload from one at the limit.
func NewHandler(svc *advice.Service, maxBytes int, cacheTTL time.Duration) *Handler {
	return &Handler{svc: svc, maxBytes: int64(maxBytes), cacheTTL: cacheTTL}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.advise)
}

func (h *Handler) advise(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, h.maxBytes+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	resp, err := h.svc.Advise(r.Context(), r.Header.Get(clientIDHeader), payload)
	if err != nil {
		switch {
		case errors.Is(err, advice.ErrMissingClientID):
			http.Error(w, "Missing x-client-id", http.StatusBadRequest)
		case errors.Is(err, advice.ErrPayloadTooLarge):
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, advice.ErrInvalidPayload):
			http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		default:
			http.Error(w, "advisor unavailable", http.StatusBadGateway)
		}

		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.cacheTTL.Seconds())))
	respond.JSON(w, http.StatusOK, resp)
}
