package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/potretmerdeka/server/internal/db"
	"github.com/potretmerdeka/server/internal/http/handlers"
	"github.com/potretmerdeka/server/internal/http/httpapi"
	"github.com/potretmerdeka/server/internal/imagegen"
	"github.com/potretmerdeka/server/internal/infra"
	"github.com/potretmerdeka/server/internal/infra/geoip"
	"github.com/potretmerdeka/server/internal/providers/gemini"
	"github.com/potretmerdeka/server/internal/providers/outfit"
	"github.com/potretmerdeka/server/internal/session"
	"github.com/potretmerdeka/server/migrations"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	opts := handlers.AppOptions{
		Config:   cfg,
		Logger:   logger,
		Sessions: session.NewStore(cfg.SessionTTL, cfg.SessionCapacity),
	}

	// Audit ledger (opsional): tanpa DATABASE_URL service jalan full in-memory.
	if cfg.DatabaseURL != "" {
		if err := infra.Migrate(ctx, cfg.DatabaseURL, migrations.FS, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		opts.Audit = db.New(dbpool)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, audit ledger disabled")
	}

	// GeoIP (opsional): tanpa database, deteksi locale pakai header saja.
	if cfg.GeoIPDBPath != "" {
		resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.GeoIPDBPath).Msg("failed to open geoip database")
		}
		defer resolver.Close()
		opts.Country = resolver
	}

	imageModel, err := gemini.NewClient(gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiImageModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini image client")
	}
	generator, err := imagegen.NewGenerator(imagegen.Options{
		Model:  imageModel,
		Logger: &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build portrait generator")
	}
	opts.Generator = generator

	opts.Suggester = buildSuggester(cfg, &logger)

	app := handlers.NewApp(opts)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildSuggester(cfg *infra.Config, logger *infra.Logger) outfit.Suggester {
	if cfg.OutfitProvider != "gemini" {
		return outfit.NewStaticSuggester()
	}

	textModel, err := gemini.NewClient(gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiTextModel,
		Logger:  logger,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("gemini text client unavailable, using static outfit suggestions")
		return outfit.NewStaticSuggester()
	}
	suggester, err := outfit.NewGeminiSuggester(outfit.GeminiSuggesterOptions{Model: textModel})
	if err != nil {
		logger.Warn().Err(err).Msg("gemini suggester unavailable, using static outfit suggestions")
		return outfit.NewStaticSuggester()
	}
	return suggester
}
