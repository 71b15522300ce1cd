package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/potretmerdeka/server/internal/db"
	"github.com/potretmerdeka/server/internal/imagegen"
	"github.com/potretmerdeka/server/internal/middleware"
	"github.com/potretmerdeka/server/internal/session"
	"github.com/potretmerdeka/server/internal/share"
	"github.com/potretmerdeka/server/pkg/zip"
)

// maxPortraitRequestBytes caps the request body. Source photos arrive as
// base64 data URLs, which inflate the raw image by about a third.
const maxPortraitRequestBytes = 12 << 20

type portraitCreateRequest struct {
	ImageDataURL      string `json:"image_data_url"`
	OutfitDescription string `json:"outfit_description"`
}

type portraitResponse struct {
	ID                string    `json:"id"`
	ImageDataURL      string    `json:"image_data_url"`
	OutfitDescription string    `json:"outfit_description"`
	Locale            string    `json:"locale"`
	Caption           string    `json:"caption"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
}

func newPortraitResponse(p session.Portrait) portraitResponse {
	return portraitResponse{
		ID:                p.ID,
		ImageDataURL:      p.ImageDataURL,
		OutfitDescription: p.OutfitDescription,
		Locale:            p.Locale,
		Caption:           share.Caption(p.Locale, p.OutfitDescription),
		CreatedAt:         p.CreatedAt,
		ExpiresAt:         p.ExpiresAt,
	}
}

func (a *App) PortraitsCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPortraitRequestBytes)
	var req portraitCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body exceeds the upload limit")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	release, ok := a.tryAcquireGenerate()
	if !ok {
		a.error(w, http.StatusTooManyRequests, "capacity_exhausted", "all generation slots are busy, retry shortly")
		return
	}
	defer release()

	locale := middleware.LocaleFromContext(r.Context())
	outfitDescription := strings.TrimSpace(req.OutfitDescription)
	if outfitDescription == "" {
		outfitDescription = imagegen.DefaultOutfitDescription
	}

	jobID := a.startAudit(r.Context(), outfitDescription, locale)
	start := time.Now()
	portraitDataURL, err := a.Generator.Generate(r.Context(), req.ImageDataURL, outfitDescription)
	elapsed := time.Since(start)
	if err != nil {
		a.finishAuditFailure(r.Context(), jobID, err, elapsed)
		a.respondGenerateError(w, err)
		return
	}
	a.finishAuditSuccess(r.Context(), jobID, portraitDataURL, elapsed)

	stored := a.Sessions.Put(session.Portrait{
		ImageDataURL:      portraitDataURL,
		OutfitDescription: outfitDescription,
		Locale:            locale,
	})

	a.Logger.Info().
		Str("portrait_id", stored.ID).
		Str("locale", locale).
		Dur("duration", elapsed).
		Msg("portrait generated")

	a.json(w, http.StatusCreated, newPortraitResponse(stored))
}

func (a *App) PortraitsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := a.Sessions.Get(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "portrait not found or expired")
		return
	}
	a.json(w, http.StatusOK, newPortraitResponse(p))
}

func (a *App) PortraitsBundle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := a.Sessions.Get(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "portrait not found or expired")
		return
	}

	parsed, err := imagegen.ParseImageDataURL(p.ImageDataURL)
	if err != nil {
		a.Logger.Error().Err(err).Str("portrait_id", p.ID).Msg("stored portrait is not a data URL")
		a.error(w, http.StatusInternalServerError, "internal", "portrait payload unavailable")
		return
	}
	imageBytes, err := base64.StdEncoding.DecodeString(parsed.Data)
	if err != nil {
		a.Logger.Error().Err(err).Str("portrait_id", p.ID).Msg("stored portrait payload is not base64")
		a.error(w, http.StatusInternalServerError, "internal", "portrait payload unavailable")
		return
	}

	archive, err := zip.Archive([]zip.Entry{
		{Name: "potret-merdeka." + extensionForMIME(parsed.MIMEType), Data: imageBytes},
		{Name: "caption.txt", Data: []byte(share.BundleText(p.Locale, p.OutfitDescription))},
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build bundle")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=potret-merdeka-%s.zip", p.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) respondGenerateError(w http.ResponseWriter, err error) {
	if errors.Is(err, imagegen.ErrInvalidImage) {
		a.error(w, http.StatusUnprocessableEntity, "invalid_image", "image_data_url must be a data:image/<type>;base64 payload")
		return
	}
	var genErr *imagegen.GenerationError
	if errors.As(err, &genErr) {
		a.Logger.Error().Err(err).Msg("portrait generation failed")
		reason := genErr.Reason
		if reason == "" {
			reason = "portrait generation failed"
		}
		a.error(w, http.StatusBadGateway, "generation_failed", reason)
		return
	}
	a.Logger.Error().Err(err).Msg("portrait generation failed")
	a.error(w, http.StatusInternalServerError, "internal", "portrait generation failed")
}

func (a *App) startAudit(ctx context.Context, outfitDescription, locale string) uuid.UUID {
	if a.Audit == nil {
		return uuid.Nil
	}
	model := ""
	if a.Config != nil {
		model = a.Config.GeminiImageModel
	}
	id, err := a.Audit.CreatePortraitJob(ctx, db.CreatePortraitJobParams{
		Outfit: outfitDescription,
		Locale: locale,
		Model:  model,
	})
	if err != nil {
		a.Logger.Warn().Err(err).Msg("audit: create portrait job failed")
		return uuid.Nil
	}
	return id
}

func (a *App) finishAuditSuccess(ctx context.Context, id uuid.UUID, portraitDataURL string, elapsed time.Duration) {
	if a.Audit == nil || id == uuid.Nil {
		return
	}
	mime := ""
	if parsed, err := imagegen.ParseImageDataURL(portraitDataURL); err == nil {
		mime = parsed.MIMEType
	}
	err := a.Audit.CompletePortraitJob(context.WithoutCancel(ctx), db.CompletePortraitJobParams{
		ID:         id,
		ResultMIME: mime,
		DurationMs: elapsed.Milliseconds(),
	})
	if err != nil {
		a.Logger.Warn().Err(err).Msg("audit: complete portrait job failed")
	}
}

func (a *App) finishAuditFailure(ctx context.Context, id uuid.UUID, genErr error, elapsed time.Duration) {
	if a.Audit == nil || id == uuid.Nil {
		return
	}
	err := a.Audit.FailPortraitJob(context.WithoutCancel(ctx), db.FailPortraitJobParams{
		ID:         id,
		Error:      genErr.Error(),
		DurationMs: elapsed.Milliseconds(),
	})
	if err != nil {
		a.Logger.Warn().Err(err).Msg("audit: fail portrait job failed")
	}
}

func extensionForMIME(mime string) string {
	if mime == "image/jpeg" {
		return "jpg"
	}
	ext := strings.TrimPrefix(mime, "image/")
	if ext == "" || ext == mime {
		return "png"
	}
	return ext
}
