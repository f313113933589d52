package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pharmapos/pharmapos/internal/catalog"
	"github.com/pharmapos/pharmapos/internal/purchases"
	"github.com/pharmapos/pharmapos/internal/returns"
	"github.com/pharmapos/pharmapos/internal/sales"
	"github.com/pharmapos/pharmapos/internal/shopctx"
	"github.com/pharmapos/pharmapos/internal/stock"
	"github.com/pharmapos/pharmapos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	StockHandler     *stock.Handler
	SalesHandler     *sales.Handler
	PurchasesHandler *purchases.Handler
	ReturnsHandler   *returns.Handler
	CatalogHandler   *catalog.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router. Every /api route runs behind the shop
// header middleware.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(shopctx.Middleware)

		if params.StockHandler != nil {
			params.StockHandler.MountRoutes(r)
		}
		if params.SalesHandler != nil {
			params.SalesHandler.MountRoutes(r)
		}
		if params.PurchasesHandler != nil {
			params.PurchasesHandler.MountRoutes(r)
		}
		if params.ReturnsHandler != nil {
			params.ReturnsHandler.MountRoutes(r)
		}
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(r)
		}
		if params.JobsHandler != nil {
			params.JobsHandler.MountRoutes(r)
		}
	})

	return r
}
