package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/potretmerdeka/server/internal/db"
	"github.com/potretmerdeka/server/internal/infra"
	"github.com/potretmerdeka/server/internal/infra/geoip"
	"github.com/potretmerdeka/server/internal/providers/outfit"
	"github.com/potretmerdeka/server/internal/session"
)

// Generator turns a source photo into an Independence Day portrait.
type Generator interface {
	Generate(ctx context.Context, imageDataURL, outfitDescription string) (string, error)
}

// App bundles the dependencies the HTTP handlers work with. Audit may be nil,
// which disables the portrait_jobs ledger; Country may be nil, which disables
// GeoIP locale detection.
type App struct {
	Config    *infra.Config
	Logger    infra.Logger
	Generator Generator
	Suggester outfit.Suggester
	Sessions  *session.Store
	Audit     *db.Queries
	Country   geoip.CountryResolver

	genLimiter chan struct{}
}

// AppOptions carries the dependencies for NewApp.
type AppOptions struct {
	Config    *infra.Config
	Logger    infra.Logger
	Generator Generator
	Suggester outfit.Suggester
	Sessions  *session.Store
	Audit     *db.Queries
	Country   geoip.CountryResolver
}

func NewApp(opts AppOptions) *App {
	concurrency := 1
	if opts.Config != nil && opts.Config.GenerateConcurrency > 0 {
		concurrency = opts.Config.GenerateConcurrency
	}
	return &App{
		Config:     opts.Config,
		Logger:     opts.Logger,
		Generator:  opts.Generator,
		Suggester:  opts.Suggester,
		Sessions:   opts.Sessions,
		Audit:      opts.Audit,
		Country:    opts.Country,
		genLimiter: make(chan struct{}, concurrency),
	}
}

// tryAcquireGenerate reserves one generation slot. The returned release func
// must be called once the slot is free again. A nil limiter means unlimited.
func (a *App) tryAcquireGenerate() (func(), bool) {
	if a.genLimiter == nil {
		return func() {}, true
	}
	select {
	case a.genLimiter <- struct{}{}:
		return func() { <-a.genLimiter }, true
	default:
		return nil, false
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
