// Package postgres stores claim documents as jsonb rows through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS claims (
	id           TEXT PRIMARY KEY,
	claim_number TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL,
	doc          JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_claims_number ON claims(claim_number);
`

// Config holds pool settings
type Config struct {
	DSN         string
	MaxConns    int32
	DialTimeout time.Duration
}

// Store is a Postgres-backed claim store
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open connects, pings and ensures the schema exists
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "marincop"

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(dialCtx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logger.Info("postgres store connected", zap.Int32("max_conns", pc.MaxConns))
	return &Store{pool: pool, logger: logger}, nil
}

// Get returns the claim with id
func (s *Store) Get(ctx context.Context, id string) (*model.Claim, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM claims WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NotFoundError("claim", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query claim %s: %w", id, err)
	}
	return store.DecodeClaim(doc)
}

// List returns all claims, newest first
func (s *Store) List(ctx context.Context) ([]*model.Claim, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM claims ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	var out []*model.Claim
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		c, err := store.DecodeClaim(doc)
		if err != nil {
			s.logger.Warn("skipping unreadable claim", zap.Error(err))
			continue
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}

	store.SortNewestFirst(out)
	return out, nil
}

// Upsert inserts or replaces the claim document
func (s *Store) Upsert(ctx context.Context, claim *model.Claim) error {
	doc, err := store.EncodeClaim(claim)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO claims (id, claim_number, created_at, updated_at, doc)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
	claim_number = EXCLUDED.claim_number,
	updated_at   = EXCLUDED.updated_at,
	doc          = EXCLUDED.doc`,
		claim.ID, claim.ClaimNumber, claim.CreatedAt, claim.UpdatedAt, doc,
	)
	if err != nil {
		return fmt.Errorf("upsert claim %s: %w", claim.ID, err)
	}
	return nil
}

// Close releases the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

var _ store.Store = (*Store)(nil)
