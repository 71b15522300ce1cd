package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/potretmerdeka/server/internal/http/handlers"
	"github.com/potretmerdeka/server/internal/middleware"
)

// NewRouter wires every route behind the shared middleware chain. Health and
// the API docs stay outside the rate limit so probes and readers are never
// throttled.
func NewRouter(app *handlers.App) http.Handler {
	cfg := app.Config

	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(cfg.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/openapi.json", app.OpenAPIJSON)
	r.Get("/docs", app.OpenAPIDocs)

	var lookup middleware.CountryLookup
	if app.Country != nil {
		lookup = app.Country.CountryCode
	}

	r.Group(func(r chi.Router) {
		r.Use(
			middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
			middleware.Locale(cfg.DefaultLocale, lookup),
		)

		r.Route("/v1", func(r chi.Router) {
			r.Route("/portraits", func(r chi.Router) {
				r.Post("/", app.PortraitsCreate)
				r.Get("/{id}", app.PortraitsGet)
				r.Get("/{id}/bundle", app.PortraitsBundle)
			})
			r.Get("/outfits/suggestions", app.OutfitSuggestions)
			r.Get("/stats", app.Stats)
		})
	})

	return r
}
