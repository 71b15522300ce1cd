package outfit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/potretmerdeka/server/internal/providers/gemini"
)

// TextModel is the slice of the Gemini client the suggester needs.
type TextModel interface {
	GenerateContentWithConfig(ctx context.Context, parts []gemini.Part, cfg *gemini.GenerationConfig) (*gemini.GenerateContentResponse, error)
}

var _ TextModel = (*gemini.Client)(nil)

// GeminiSuggester asks a Gemini text model for outfit ideas. Any failure, a
// transport error, an unparseable answer or an empty one, silently falls back
// to the static list so the endpoint always responds.
type GeminiSuggester struct {
	model    TextModel
	fallback Suggester
}

type GeminiSuggesterOptions struct {
	Model    TextModel
	Fallback Suggester
}

func NewGeminiSuggester(opts GeminiSuggesterOptions) (*GeminiSuggester, error) {
	if opts.Model == nil {
		return nil, errors.New("outfit: text model is required")
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticSuggester()
	}
	return &GeminiSuggester{model: opts.Model, fallback: fallback}, nil
}

func (g *GeminiSuggester) Suggest(ctx context.Context, locale string, count int) (Result, error) {
	count = clampCount(count)
	parts := []gemini.Part{{Text: buildSuggestPrompt(locale, count)}}
	cfg := &gemini.GenerationConfig{
		Temperature:      0.7,
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
	}
	resp, err := g.model.GenerateContentWithConfig(ctx, parts, cfg)
	if err != nil {
		return g.fallback.Suggest(ctx, locale, count)
	}
	parsed, err := parseModelPayload[suggestionsPayload](resp.Text())
	if err != nil {
		return g.fallback.Suggest(ctx, locale, count)
	}
	suggestions := normalizeSuggestions(parsed.Suggestions, count)
	if len(suggestions) == 0 {
		return g.fallback.Suggest(ctx, locale, count)
	}
	return Result{Provider: geminiProviderName, Suggestions: suggestions}, nil
}

func buildSuggestPrompt(locale string, count int) string {
	lang := "English"
	if indonesianLocale(locale) {
		lang = "Indonesian"
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Suggest %d distinct traditional Indonesian outfit ideas for an Independence Day portrait. ", count)
	sb.WriteString(`Respond strictly as JSON: {"suggestions":[{"label":string,"description":string}]}. `)
	fmt.Fprintf(sb, "Write labels and descriptions in %s. Each description must work as an image-edit instruction for dressing a person, name the garments and colors, and stay under 20 words. randomness_token=%d.", lang, time.Now().UnixNano())
	return sb.String()
}

var _ Suggester = (*GeminiSuggester)(nil)
