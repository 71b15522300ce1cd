package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/potretmerdeka/server/internal/infra"
	"github.com/potretmerdeka/server/internal/providers/gemini"
)

// Model is the slice of the Gemini API the generator consumes. It is
// satisfied by *gemini.Client.
type Model interface {
	GenerateContent(ctx context.Context, parts []gemini.Part) (*gemini.GenerateContentResponse, error)
}

var _ Model = (*gemini.Client)(nil)

const (
	maxAttempts    = 3
	baseRetryDelay = 1000 * time.Millisecond
)

// Generator runs the portrait pipeline: validate the source image, build the
// prompt, call the model with bounded retries, and extract the generated
// image. Each call is independent; the Generator holds no per-request state.
type Generator struct {
	model  Model
	logger *infra.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// Options configures a Generator.
type Options struct {
	Model  Model
	Logger *infra.Logger
}

// NewGenerator wires a Generator around the given model.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Model == nil {
		return nil, errors.New("imagegen: model is required")
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Generator{
		model:  opts.Model,
		logger: logger,
		sleep:  sleepContext,
	}, nil
}

// Generate turns a base64 image data URL and an optional outfit description
// into the data URL of the generated portrait. Failures are either
// ErrInvalidImage (bad input, no model call made) or *GenerationError (the
// model call failed for good, or the model answered without an image).
func (g *Generator) Generate(ctx context.Context, imageDataURL, outfitDescription string) (string, error) {
	portrait, err := g.generate(ctx, imageDataURL, outfitDescription)
	if err != nil {
		return "", fmt.Errorf("portrait generation failed: %w", err)
	}
	return portrait, nil
}

func (g *Generator) generate(ctx context.Context, imageDataURL, outfitDescription string) (string, error) {
	source, err := ParseImageDataURL(imageDataURL)
	if err != nil {
		return "", err
	}

	prompt := BuildPrompt(outfitDescription)

	resp, err := g.invokeWithRetry(ctx, source, prompt)
	if err != nil {
		return "", &GenerationError{Reason: "model call failed", Err: err}
	}

	return extractImage(resp)
}

// invokeWithRetry issues the model call up to maxAttempts times. Only the
// transient classes recognized by isRetryable earn another attempt; the pause
// before each retry doubles, starting at baseRetryDelay.
func (g *Generator) invokeWithRetry(ctx context.Context, source EncodedImage, prompt string) (*gemini.GenerateContentResponse, error) {
	parts := []gemini.Part{
		{InlineData: &gemini.Blob{MIMEType: source.MIMEType, Data: source.Data}},
		{Text: prompt},
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := backoffDelay(attempt - 1)
			g.logger.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("imagegen: retrying model call")
			if err := g.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := g.model.GenerateContent(ctx, parts)
		if err == nil {
			if attempt > 1 {
				g.logger.Info().Int("attempt", attempt).Msg("imagegen: model call recovered")
			}
			return resp, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("all retries failed")
	}
	return nil, lastErr
}

// backoffDelay returns the pause after the given number of failed attempts:
// 1s after the first failure, doubling each time.
func backoffDelay(failures int) time.Duration {
	return baseRetryDelay << (failures - 1)
}

// isRetryable is the single seam deciding which upstream failures earn
// another attempt. The Gemini API encodes the class in the error text, so
// classification matches markers: the internal-server class and the
// rate-limit class. Everything else surfaces immediately.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "500") || strings.Contains(msg, "INTERNAL") {
		return true
	}
	if strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED") {
		return true
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// modelOutput is the tagged outcome of one model response: exactly one of
// Image and Text is meaningful.
type modelOutput struct {
	Image *EncodedImage
	Text  string
}

// parseResponse reduces a model response to its outcome: the first inline
// image in the first candidate's parts, or whatever text came back instead.
func parseResponse(resp *gemini.GenerateContentResponse) modelOutput {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return modelOutput{Text: "prompt blocked: " + resp.PromptFeedback.BlockReason}
		}
		return modelOutput{}
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return modelOutput{Image: &EncodedImage{MIMEType: mime, Data: part.InlineData.Data}}
		}
	}
	return modelOutput{Text: resp.Text()}
}

func extractImage(resp *gemini.GenerateContentResponse) (string, error) {
	out := parseResponse(resp)
	if out.Image != nil {
		return out.Image.DataURL(), nil
	}
	if out.Text != "" {
		return "", &GenerationError{Reason: "model returned no image; response text: " + out.Text}
	}
	return "", &GenerationError{Reason: "model returned no image and no explanatory text"}
}
