// Package auditStore keeps a Postgres log of every consultation the assistant
// answered, so clinicians can review what was asked and what was returned.
package auditStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DermaRAG/internal/config"
	"github.com/akolanti/DermaRAG/internal/domain/commonModels"
	"github.com/akolanti/DermaRAG/pkg/logger_i"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS consultations (
	id           BIGSERIAL PRIMARY KEY,
	trace_id     TEXT NOT NULL DEFAULT '',
	question     TEXT NOT NULL,
	conversation TEXT NOT NULL DEFAULT '',
	answer       TEXT NOT NULL DEFAULT '',
	sources      TEXT[] NOT NULL DEFAULT '{}',
	cached       BOOLEAN NOT NULL DEFAULT FALSE,
	error        TEXT NOT NULL DEFAULT '',
	latency_ms   BIGINT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS consultations_created_at_idx ON consultations (created_at DESC);
`

const insertConsultation = `
INSERT INTO consultations (trace_id, question, conversation, answer, sources, cached, error, latency_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// db is the subset of pgxpool.Pool the store needs.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	db     db
	logger *logger_i.Logger
}

// Open connects, applies the schema and closes the pool when ctx ends.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 0
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err = pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate consultations: %w", err)
	}

	s := &Store{db: pool, logger: logger_i.NewLogger("AuditStore")}
	go func() {
		<-ctx.Done()
		s.logger.Info("Closing Postgres pool")
		pool.Close()
	}()
	s.logger.Info("Audit store ready")
	return s, nil
}

func (s *Store) Record(ctx context.Context, c commonModels.Consultation) error {
	// outlives the request context
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.AuditInsertTimeout)
	defer cancel()

	sources := c.Sources
	if sources == nil {
		sources = []string{}
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(insertCtx, insertConsultation,
		c.TraceId, c.Question, c.Conversation, c.Answer, sources, c.Cached, c.Error,
		c.Latency.Milliseconds(), createdAt)
	if err != nil {
		return fmt.Errorf("insert consultation: %w", err)
	}
	return nil
}
