package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/storeledger/internal/http/advice"
	"github.com/MrJamesThe3rd/storeledger/internal/http/catalog"
	"github.com/MrJamesThe3rd/storeledger/internal/http/directory"
	"github.com/MrJamesThe3rd/storeledger/internal/http/report"
	"github.com/MrJamesThe3rd/storeledger/internal/http/sales"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

func New(
	opts Options,
	catalogV1 *catalog.Handler,
	salesV1 *sales.Handler,
	directoryV1 *directory.Handler,
	reportsV1 *report.Handler,
	adviceH *advice.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Client-Id"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			// Import is multipart; every other product route takes JSON.
			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json", "multipart/form-data"))
				catalogV1.ProductRoutes(r)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			catalogV1.CategoryRoutes(r)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			catalogV1.SettingsRoutes(r)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			salesV1.Routes(r)
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			directoryV1.SupplierRoutes(r)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			directoryV1.ExpenseRoutes(r)
		})

		r.Route("/reports", reportsV1.Routes)
	})

	// Kept at its historical path so existing browser clients keep working.
	router.Route("/api/store-advice", adviceH.Routes)

	return router
}
