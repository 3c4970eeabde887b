// Package sqlite stores claim documents in a SQLite database using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS claims (
	id           TEXT PRIMARY KEY,
	claim_number TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	doc          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_claims_number ON claims(claim_number);
`

// Store is a SQLite-backed claim store
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens or creates the database at path
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer; the claim service already serializes mutations
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialize database: %w", err)
		}
	}

	logger.Debug("sqlite store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Get returns the claim with id
func (s *Store) Get(ctx context.Context, id string) (*model.Claim, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM claims WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundError("claim", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query claim %s: %w", id, err)
	}
	return store.DecodeClaim([]byte(doc))
}

// List returns all claims, newest first
func (s *Store) List(ctx context.Context) ([]*model.Claim, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM claims`)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Claim
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		c, err := store.DecodeClaim([]byte(doc))
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

	_, err = s.db.ExecContext(ctx, `
INSERT INTO claims (id, claim_number, created_at, updated_at, doc)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	claim_number = excluded.claim_number,
	updated_at   = excluded.updated_at,
	doc          = excluded.doc`,
		claim.ID, claim.ClaimNumber,
		claim.CreatedAt.UTC().Format(time.RFC3339Nano),
		claim.UpdatedAt.UTC().Format(time.RFC3339Nano),
		string(doc),
	)
	if err != nil {
		return fmt.Errorf("upsert claim %s: %w", claim.ID, err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)
