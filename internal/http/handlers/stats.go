package handlers

import (
	"net/http"
)

func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	if a.Audit == nil {
		a.json(w, http.StatusOK, map[string]any{
			"audit_enabled": false,
			"total":         0,
			"succeeded":     0,
			"failed":        0,
			"success_rate":  0.0,
			"by_locale":     map[string]int64{},
		})
		return
	}

	summary, err := a.Audit.StatsSummary(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("stats summary failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	byLocale, err := a.Audit.StatsByLocale(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("stats by locale failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}

	rate := 0.0
	if summary.SuccessRate.Valid {
		rate = summary.SuccessRate.Float64
	}
	locales := make(map[string]int64, len(byLocale))
	for _, row := range byLocale {
		locales[row.Locale] = row.Total
	}

	a.json(w, http.StatusOK, map[string]any{
		"audit_enabled": true,
		"total":         summary.Total,
		"succeeded":     summary.Succeeded,
		"failed":        summary.Failed,
		"success_rate":  rate,
		"by_locale":     locales,
	})
}
