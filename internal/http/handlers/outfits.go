package handlers

import (
	"net/http"
	"strconv"

	"github.com/potretmerdeka/server/internal/middleware"
)

func (a *App) OutfitSuggestions(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "count must be an integer")
			return
		}
		count = parsed
	}

	res, err := a.Suggester.Suggest(r.Context(), locale, count)
	if err != nil {
		a.Logger.Error().Err(err).Msg("outfit suggestions failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load suggestions")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"locale":      locale,
		"provider":    res.Provider,
		"suggestions": res.Suggestions,
	})
}
