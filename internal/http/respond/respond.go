// Package respond holds the response helpers shared by the HTTP handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("failed to encode response", "error", err)
	}
}

// Error writes err with the status of its ledger error kind. Errors of no
// known kind are logged and hidden behind a 500.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		zap.S().Errorw("request failed", "error", err)
		http.Error(w, "internal error", status)

		return
	}

	http.Error(w, err.Error(), status)
}

func Status(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}

// Day reads the "date" query parameter (YYYY-MM-DD) as midnight in loc.
// Without one it returns the current time in loc.
func Day(r *http.Request, loc *time.Location) (time.Time, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return time.Now().In(loc), nil
	}

	day, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ledger.ErrValidation)
	}

	return day, nil
}
