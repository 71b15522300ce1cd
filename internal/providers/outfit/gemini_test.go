package outfit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/potretmerdeka/server/internal/providers/gemini"
)

type fakeTextModel struct {
	resp    *gemini.GenerateContentResponse
	err     error
	prompts []string
	configs []*gemini.GenerationConfig
}

func (f *fakeTextModel) GenerateContentWithConfig(ctx context.Context, parts []gemini.Part, cfg *gemini.GenerationConfig) (*gemini.GenerateContentResponse, error) {
	for _, part := range parts {
		if part.Text != "" {
			f.prompts = append(f.prompts, part.Text)
		}
	}
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func textResponse(text string) *gemini.GenerateContentResponse {
	return &gemini.GenerateContentResponse{
		Candidates: []gemini.Candidate{{
			Content: gemini.Content{Parts: []gemini.Part{{Text: text}}},
		}},
	}
}

func TestNewGeminiSuggesterRequiresModel(t *testing.T) {
	if _, err := NewGeminiSuggester(GeminiSuggesterOptions{}); err == nil {
		t.Fatal("NewGeminiSuggester() accepted a nil model")
	}
}

func TestGeminiSuggesterParsesModelAnswer(t *testing.T) {
	model := &fakeTextModel{resp: textResponse("```json\n" +
		`{"suggestions":[{"label":"kebaya encim","description":"kebaya encim putih dengan bordir bunga"},{"label":"Baju Kurung","description":"baju kurung melayu hijau dengan kain songket"}]}` +
		"\n```")}
	suggester, err := NewGeminiSuggester(GeminiSuggesterOptions{Model: model})
	if err != nil {
		t.Fatalf("NewGeminiSuggester() error = %v", err)
	}

	res, err := suggester.Suggest(context.Background(), "id", 2)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if res.Provider != "gemini" {
		t.Fatalf("provider = %q, want %q", res.Provider, "gemini")
	}
	if len(res.Suggestions) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(res.Suggestions))
	}
	if got := res.Suggestions[0].Label; got != "Kebaya Encim" {
		t.Fatalf("label = %q, want title case %q", got, "Kebaya Encim")
	}
	if got := res.Suggestions[0].Description; got != "kebaya encim putih dengan bordir bunga" {
		t.Fatalf("description = %q, not preserved", got)
	}
}

func TestGeminiSuggesterRequestsJSONMode(t *testing.T) {
	model := &fakeTextModel{resp: textResponse(`{"suggestions":[{"label":"a","description":"b"}]}`)}
	suggester, err := NewGeminiSuggester(GeminiSuggesterOptions{Model: model})
	if err != nil {
		t.Fatalf("NewGeminiSuggester() error = %v", err)
	}

	if _, err := suggester.Suggest(context.Background(), "id", 3); err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	if len(model.configs) != 1 || model.configs[0] == nil {
		t.Fatalf("model received configs %v, want one non-nil", model.configs)
	}
	if got := model.configs[0].ResponseMIMEType; got != "application/json" {
		t.Fatalf("response mime type = %q, want application/json", got)
	}
	if len(model.prompts) != 1 {
		t.Fatalf("prompts sent = %d, want 1", len(model.prompts))
	}
	prompt := model.prompts[0]
	for _, want := range []string{"3 distinct", "Indonesian", "Independence Day"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt %q missing %q", prompt, want)
		}
	}
}

func TestGeminiSuggesterFallsBackOnError(t *testing.T) {
	model := &fakeTextModel{err: errors.New("gemini: status 500 (INTERNAL)")}
	suggester, err := NewGeminiSuggester(GeminiSuggesterOptions{Model: model})
	if err != nil {
		t.Fatalf("NewGeminiSuggester() error = %v", err)
	}

	res, err := suggester.Suggest(context.Background(), "en", 2)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if res.Provider != "static" {
		t.Fatalf("provider = %q, want fallback %q", res.Provider, "static")
	}
	if len(res.Suggestions) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(res.Suggestions))
	}
}

func TestGeminiSuggesterFallsBackOnGarbage(t *testing.T) {
	model := &fakeTextModel{resp: textResponse("I would be happy to help with outfits!")}
	suggester, err := NewGeminiSuggester(GeminiSuggesterOptions{Model: model})
	if err != nil {
		t.Fatalf("NewGeminiSuggester() error = %v", err)
	}

	res, err := suggester.Suggest(context.Background(), "id", 2)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if res.Provider != "static" {
		t.Fatalf("provider = %q, want fallback %q", res.Provider, "static")
	}
}

func TestGeminiSuggesterFallsBackOnEmptyList(t *testing.T) {
	model := &fakeTextModel{resp: textResponse(`{"suggestions":[]}`)}
	suggester, err := NewGeminiSuggester(GeminiSuggesterOptions{Model: model})
	if err != nil {
		t.Fatalf("NewGeminiSuggester() error = %v", err)
	}

	res, err := suggester.Suggest(context.Background(), "id", 2)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if res.Provider != "static" {
		t.Fatalf("provider = %q, want fallback %q", res.Provider, "static")
	}
}

func TestGeminiSuggesterDeduplicatesAndLimits(t *testing.T) {
	model := &fakeTextModel{resp: textResponse(`{"suggestions":[` +
		`{"label":"Kebaya","description":"kebaya merah"},` +
		`{"label":"kebaya","description":"kebaya duplikat"},` +
		`{"label":"","description":""},` +
		`{"label":"Beskap","description":"beskap hitam"},` +
		`{"label":"Ulos","description":"kain ulos"}]}`)}
	suggester, err := NewGeminiSuggester(GeminiSuggesterOptions{Model: model})
	if err != nil {
		t.Fatalf("NewGeminiSuggester() error = %v", err)
	}

	res, err := suggester.Suggest(context.Background(), "id", 2)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(res.Suggestions) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(res.Suggestions))
	}
	if res.Suggestions[0].Label != "Kebaya" || res.Suggestions[1].Label != "Beskap" {
		t.Fatalf("suggestions = %+v, want deduplicated Kebaya then Beskap", res.Suggestions)
	}
}

func TestExtractJSONFragment(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain json",
			raw:  `{"suggestions":[]}`,
			want: `{"suggestions":[]}`,
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "prose around json",
			raw:  "Here you go: {\"a\":1} Hope that helps!",
			want: `{"a":1}`,
		},
		{
			name: "array payload",
			raw:  "[1,2,3]",
			want: "[1,2,3]",
		},
		{
			name: "no json at all",
			raw:  "cannot help",
			want: "cannot help",
		},
		{
			name: "empty",
			raw:  "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONFragment(tt.raw); got != tt.want {
				t.Fatalf("extractJSONFragment(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
