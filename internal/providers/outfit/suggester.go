package outfit

import (
	"context"
	"strings"
)

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"

	// DefaultSuggestionCount applies when a request does not say how many
	// suggestions it wants.
	DefaultSuggestionCount = 4
	maxSuggestionCount     = 10
)

// Suggestion is one outfit idea a visitor can pick before generating a
// portrait. Description is phrased so it can be passed straight to the
// generator as the outfit instruction.
type Suggestion struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Result is a set of suggestions plus the provider that actually served
// them, which differs from the configured provider when a fallback kicked in.
type Result struct {
	Provider    string       `json:"provider"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Suggester produces outfit ideas for the portrait form.
type Suggester interface {
	Suggest(ctx context.Context, locale string, count int) (Result, error)
}

// StaticSuggester serves a curated list of traditional outfits. It never
// fails, which also makes it the fallback behind the Gemini suggester.
type StaticSuggester struct{}

func NewStaticSuggester() *StaticSuggester {
	return &StaticSuggester{}
}

var staticSuggestionsID = []Suggestion{
	{Label: "Kebaya Merah Putih", Description: "kebaya merah putih klasik dengan selendang batik"},
	{Label: "Beskap Jawa", Description: "beskap jawa hitam dengan kain batik dan blangkon"},
	{Label: "Baju Adat Minang", Description: "baju adat minang dengan songket emas"},
	{Label: "Ulos Batak", Description: "kain ulos batak tersampir di atas kemeja putih"},
	{Label: "Baju Bodo Bugis", Description: "baju bodo bugis merah dengan sarung sutra"},
	{Label: "Payas Bali", Description: "payas agung bali dengan kain songket dan udeng"},
}

var staticSuggestionsEN = []Suggestion{
	{Label: "Red and White Kebaya", Description: "a classic red and white kebaya with a batik shawl"},
	{Label: "Javanese Beskap", Description: "a black Javanese beskap with batik cloth and a blangkon"},
	{Label: "Minang Attire", Description: "traditional Minang attire with golden songket weave"},
	{Label: "Batak Ulos", Description: "a woven Batak ulos draped over a white shirt"},
	{Label: "Bugis Baju Bodo", Description: "a red Bugis baju bodo with a silk sarong"},
	{Label: "Balinese Payas", Description: "Balinese payas agung with songket cloth and an udeng"},
}

func (s *StaticSuggester) Suggest(ctx context.Context, locale string, count int) (Result, error) {
	count = clampCount(count)
	pool := staticSuggestionsEN
	if indonesianLocale(locale) {
		pool = staticSuggestionsID
	}
	if count > len(pool) {
		count = len(pool)
	}
	out := make([]Suggestion, count)
	copy(out, pool[:count])
	return Result{Provider: staticProviderName, Suggestions: out}, nil
}

func clampCount(count int) int {
	if count <= 0 {
		return DefaultSuggestionCount
	}
	if count > maxSuggestionCount {
		return maxSuggestionCount
	}
	return count
}

func indonesianLocale(locale string) bool {
	locale = strings.ToLower(strings.TrimSpace(locale))
	return locale == "" || strings.HasPrefix(locale, "id")
}

var _ Suggester = (*StaticSuggester)(nil)
