package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/potretmerdeka/server/internal/infra"
)

var tracer = otel.Tracer("potretmerdeka/gemini")

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a lightweight REST client for the Gemini generateContent API.
// One Client is bound to one model identifier; the service constructs a
// separate instance per model it talks to.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// Content is one conversational turn in a generateContent payload.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Part carries either text or inline binary data, never both.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob is inline binary content. Data stays base64 text exactly as it moves
// over the wire; the client never decodes it.
type Blob struct {
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// Candidate is one generated answer in a model response.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// PromptFeedback reports why the API refused a prompt outright.
type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// GenerateContentResponse is the decoded body of a successful model call.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
}

// Text returns the concatenated text parts of the first candidate.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		if part.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// GenerationConfig tunes decoding for a single call. The zero value leaves
// everything at API defaults.
type GenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

type generateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// APIError is the decoded error envelope of a failed Gemini call. Its message
// carries the HTTP code and the API status string, which downstream retry
// classification matches on.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini: status %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("gemini: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini: status %d", e.StatusCode)
}

// NewClient constructs a Gemini client with sane defaults. The API key is
// mandatory; callers may omit everything else.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash-image-preview"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateContent sends the given parts as a single user turn and returns the
// decoded response. HTTP-level failures come back as *APIError.
func (c *Client) GenerateContent(ctx context.Context, parts []Part) (*GenerateContentResponse, error) {
	return c.GenerateContentWithConfig(ctx, parts, nil)
}

// GenerateContentWithConfig is GenerateContent with an explicit generation
// config, used for calls that need JSON-mode responses.
func (c *Client) GenerateContentWithConfig(ctx context.Context, parts []Part, cfg *GenerationConfig) (*GenerateContentResponse, error) {
	ctx, span := tracer.Start(ctx, "gemini.generate_content",
		trace.WithAttributes(attribute.String("gemini.model", c.model)))
	defer span.End()

	payload := generateContentRequest{
		Contents:         []Content{{Role: "user", Parts: parts}},
		GenerationConfig: cfg,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("gemini: call model: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := c.decodeError(resp)
		span.RecordError(apiErr)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("model", c.model).
			Dur("duration", time.Since(start)).
			Msg("gemini: model call failed")
		return nil, apiErr
	}

	var out GenerateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}

	c.logger.Debug().
		Str("model", c.model).
		Int("candidates", len(out.Candidates)).
		Dur("duration", time.Since(start)).
		Msg("gemini: model call succeeded")

	return &out, nil
}

func (c *Client) decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	var envelope errorResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}
