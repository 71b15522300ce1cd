package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/potretmerdeka/server/internal/db"
	"github.com/potretmerdeka/server/internal/infra"
	"github.com/potretmerdeka/server/internal/providers/outfit"
	"github.com/potretmerdeka/server/internal/session"
)

type stubGenerator struct {
	mu      sync.Mutex
	result  string
	err     error
	calls   int
	release chan struct{}
}

func (s *stubGenerator) Generate(ctx context.Context, imageDataURL, outfitDescription string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return "", s.err
	}
	return s.result, nil
}

func (s *stubGenerator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type auditJob struct {
	ID       uuid.UUID
	Status   string
	Outfit   string
	Locale   string
	Model    string
	MIME     string
	Error    string
	Duration int64
}

type auditDB struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*auditJob
}

func newAuditDB() *auditDB {
	return &auditDB{jobs: make(map[uuid.UUID]*auditJob)}
}

var _ db.DBTX = (*auditDB)(nil)

func (s *auditDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case strings.Contains(query, "SET status = 'SUCCEEDED'"):
		id := args[0].(uuid.UUID)
		job := s.jobs[id]
		if job == nil {
			return pgconn.CommandTag{}, fmt.Errorf("job not found")
		}
		job.Status = "SUCCEEDED"
		job.MIME = args[1].(string)
		job.Duration = args[2].(int64)
	case strings.Contains(query, "SET status = 'FAILED'"):
		id := args[0].(uuid.UUID)
		job := s.jobs[id]
		if job == nil {
			return pgconn.CommandTag{}, fmt.Errorf("job not found")
		}
		job.Status = "FAILED"
		job.Error = args[1].(string)
		job.Duration = args[2].(int64)
	default:
		return pgconn.CommandTag{}, fmt.Errorf("unsupported exec: %s", query)
	}
	return pgconn.CommandTag{}, nil
}

func (s *auditDB) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, fmt.Errorf("unsupported query: %s", query)
}

func (s *auditDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if strings.Contains(query, "INSERT INTO portrait_jobs") {
		id := uuid.New()
		job := &auditJob{
			ID:     id,
			Status: "RUNNING",
			Outfit: args[0].(string),
			Locale: args[1].(string),
			Model:  args[2].(string),
		}
		s.mu.Lock()
		s.jobs[id] = job
		s.mu.Unlock()
		return stubRow{scan: func(dest ...any) error {
			*(dest[0].(*uuid.UUID)) = id
			return nil
		}}
	}
	return stubRow{scan: func(dest ...any) error {
		return fmt.Errorf("unsupported query: %s", query)
	}}
}

func (s *auditDB) lastJob() *auditJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		copied := *job
		return &copied
	}
	return nil
}

func newTestApp(gen Generator, audit db.DBTX) *App {
	app := &App{
		Config: &infra.Config{
			GeminiImageModel: "gemini-2.5-flash-image-preview",
		},
		Logger:     zerolog.Nop(),
		Generator:  gen,
		Suggester:  outfit.NewStaticSuggester(),
		Sessions:   session.NewStore(30*time.Minute, 16),
		genLimiter: make(chan struct{}, 2),
	}
	if audit != nil {
		app.Audit = db.New(audit)
	}
	return app
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
