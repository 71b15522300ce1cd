package infra

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// Migrate applies pending SQL migrations from fsys against the database at
// dsn. It opens its own short-lived connection so the pgx pool is untouched.
func Migrate(ctx context.Context, dsn string, fsys fs.FS, logger zerolog.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("migrate: open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(fsys)
	goose.SetLogger(gooseLogger{logger: logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

type gooseLogger struct {
	logger zerolog.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logger.Info().Msgf("migrate: %s", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logger.Fatal().Msgf("migrate: %s", strings.TrimSpace(fmt.Sprintf(format, v...)))
}
