package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Queries records portrait generation outcomes in the portrait_jobs ledger.
// Only request metadata is stored, never image bytes.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type CreatePortraitJobParams struct {
	Outfit string
	Locale string
	Model  string
}

func (q *Queries) CreatePortraitJob(ctx context.Context, arg CreatePortraitJobParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, `
INSERT INTO portrait_jobs (status, outfit, locale, model)
VALUES ('RUNNING', $1, $2, $3)
RETURNING id
`, arg.Outfit, arg.Locale, arg.Model)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

type CompletePortraitJobParams struct {
	ID         uuid.UUID
	ResultMIME string
	DurationMs int64
}

func (q *Queries) CompletePortraitJob(ctx context.Context, arg CompletePortraitJobParams) error {
	_, err := q.db.Exec(ctx, `
UPDATE portrait_jobs
SET status = 'SUCCEEDED', result_mime = $2, duration_ms = $3, updated_at = now()
WHERE id = $1
`, arg.ID, arg.ResultMIME, arg.DurationMs)
	return err
}

type FailPortraitJobParams struct {
	ID         uuid.UUID
	Error      string
	DurationMs int64
}

func (q *Queries) FailPortraitJob(ctx context.Context, arg FailPortraitJobParams) error {
	_, err := q.db.Exec(ctx, `
UPDATE portrait_jobs
SET status = 'FAILED', error = $2, duration_ms = $3, updated_at = now()
WHERE id = $1
`, arg.ID, arg.Error, arg.DurationMs)
	return err
}

type StatsSummaryRow struct {
	Total       int64
	Succeeded   int64
	Failed      int64
	SuccessRate sql.NullFloat64
}

func (q *Queries) StatsSummary(ctx context.Context) (StatsSummaryRow, error) {
	row := q.db.QueryRow(ctx, `
WITH agg AS (
  SELECT
    count(*) AS total,
    count(*) FILTER (WHERE status = 'SUCCEEDED') AS succeeded,
    count(*) FILTER (WHERE status = 'FAILED') AS failed
  FROM portrait_jobs
)
SELECT total, succeeded, failed,
       ROUND(100.0 * succeeded / NULLIF(total, 0), 2) AS success_rate
FROM agg
`)
	var summary StatsSummaryRow
	err := row.Scan(&summary.Total, &summary.Succeeded, &summary.Failed, &summary.SuccessRate)
	return summary, err
}

type LocaleCountRow struct {
	Locale string
	Total  int64
}

func (q *Queries) StatsByLocale(ctx context.Context) ([]LocaleCountRow, error) {
	rows, err := q.db.Query(ctx, `
SELECT locale, count(*) AS total
FROM portrait_jobs
GROUP BY locale
ORDER BY total DESC, locale
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []LocaleCountRow
	for rows.Next() {
		var row LocaleCountRow
		if err := rows.Scan(&row.Locale, &row.Total); err != nil {
			return nil, err
		}
		counts = append(counts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
