package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/potretmerdeka/server/internal/db"
)

type statsResponse struct {
	AuditEnabled bool             `json:"audit_enabled"`
	Total        int64            `json:"total"`
	Succeeded    int64            `json:"succeeded"`
	Failed       int64            `json:"failed"`
	SuccessRate  float64          `json:"success_rate"`
	ByLocale     map[string]int64 `json:"by_locale"`
}

type localeStatsRows struct {
	rows []db.LocaleCountRow
	idx  int
}

func (r *localeStatsRows) Close()                                       {}
func (r *localeStatsRows) Err() error                                   { return nil }
func (r *localeStatsRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *localeStatsRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *localeStatsRows) Values() ([]any, error)                       { return nil, nil }
func (r *localeStatsRows) RawValues() [][]byte                          { return nil }
func (r *localeStatsRows) Conn() *pgx.Conn                              { return nil }

func (r *localeStatsRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *localeStatsRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	*(dest[0].(*string)) = row.Locale
	*(dest[1].(*int64)) = row.Total
	return nil
}

type statsDB struct {
	summaryErr error
	localeErr  error
}

var _ db.DBTX = (*statsDB)(nil)

func (s *statsDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("stats fake: unexpected exec")
}

func (s *statsDB) QueryRow(_ context.Context, query string, _ ...any) pgx.Row {
	if !strings.Contains(query, "WITH agg") {
		return stubRow{}
	}
	return stubRow{scan: func(dest ...any) error {
		if s.summaryErr != nil {
			return s.summaryErr
		}
		*(dest[0].(*int64)) = 10
		*(dest[1].(*int64)) = 8
		*(dest[2].(*int64)) = 2
		*(dest[3].(*sql.NullFloat64)) = sql.NullFloat64{Float64: 80, Valid: true}
		return nil
	}}
}

func (s *statsDB) Query(_ context.Context, query string, _ ...any) (pgx.Rows, error) {
	if s.localeErr != nil {
		return nil, s.localeErr
	}
	if !strings.Contains(query, "GROUP BY locale") {
		return nil, errors.New("stats fake: unexpected query")
	}
	return &localeStatsRows{rows: []db.LocaleCountRow{
		{Locale: "id", Total: 7},
		{Locale: "en", Total: 3},
	}}, nil
}

func TestStatsWithoutAudit(t *testing.T) {
	app := newTestApp(&stubGenerator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	app.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp statsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AuditEnabled {
		t.Fatal("audit_enabled = true, want false without a ledger")
	}
	if resp.Total != 0 || resp.Succeeded != 0 || resp.Failed != 0 {
		t.Fatalf("counters = %+v, want zeros", resp)
	}
}

func TestStatsAggregatesLedger(t *testing.T) {
	app := newTestApp(&stubGenerator{}, &statsDB{})

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	app.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp statsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.AuditEnabled {
		t.Fatal("audit_enabled = false, want true")
	}
	if resp.Total != 10 || resp.Succeeded != 8 || resp.Failed != 2 {
		t.Fatalf("counters = %+v, want 10/8/2", resp)
	}
	if resp.SuccessRate != 80 {
		t.Fatalf("success_rate = %v, want 80", resp.SuccessRate)
	}
	if resp.ByLocale["id"] != 7 || resp.ByLocale["en"] != 3 {
		t.Fatalf("by_locale = %v, want id=7 en=3", resp.ByLocale)
	}
}

func TestStatsSummaryFailure(t *testing.T) {
	app := newTestApp(&stubGenerator{}, &statsDB{summaryErr: errors.New("connection reset")})

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	app.Stats(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if envelope := decodeError(t, rec); envelope.Error.Code != "internal" {
		t.Fatalf("error code = %q, want internal", envelope.Error.Code)
	}
}
