package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/palisade-ops/palisade/internal/bom"
	cataloghttp "github.com/palisade-ops/palisade/internal/catalog/http"
	"github.com/palisade-ops/palisade/internal/observability"
	"github.com/palisade-ops/palisade/internal/pricing"
	"github.com/palisade-ops/palisade/internal/quotes"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	BOMHandler     *bom.Handler
	PricingHandler *pricing.Handler
	QuotesHandler  *quotes.Handler
	CatalogHandler *cataloghttp.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Palisade defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.BOMHandler != nil {
		params.BOMHandler.MountRoutes(r)
	}
	if params.PricingHandler != nil {
		params.PricingHandler.MountRoutes(r)
	}
	if params.QuotesHandler != nil {
		params.QuotesHandler.MountRoutes(r)
	}
	if params.CatalogHandler != nil {
		params.CatalogHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
