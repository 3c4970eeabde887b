// Package jsonfile stores all claims in one JSON document of the form
// {"claims": [...]}, rewritten atomically on every upsert.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/store"
)

// Store is a single-file claim store
type Store struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

type document struct {
	Claims []json.RawMessage `json:"claims"`
}

// Open creates the store, creating the file with an empty claim list if it
// does not exist
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return s, nil
}

// Get returns the claim with id
func (s *Store) Get(ctx context.Context, id string) (*model.Claim, error) {
	claims, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range claims {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, model.NotFoundError("claim", id)
}

// List returns all claims, newest first
func (s *Store) List(_ context.Context) ([]*model.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Upsert replaces the claim with the same id or prepends it. Documents
// that fail to decode are carried over untouched.
func (s *Store) Upsert(_ context.Context, claim *model.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := store.EncodeClaim(claim)
	if err != nil {
		return err
	}

	raws, err := s.readRaw()
	if err != nil {
		return err
	}

	replaced := false
	for i, raw := range raws {
		var head struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(raw, &head) == nil && head.ID == claim.ID {
			raws[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		raws = append([]json.RawMessage{doc}, raws...)
	}

	return s.write(raws)
}

// Close is a no-op; every upsert is already on disk
func (s *Store) Close() error { return nil }

func (s *Store) readRaw() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return doc.Claims, nil
}

func (s *Store) read() ([]*model.Claim, error) {
	raws, err := s.readRaw()
	if err != nil {
		return nil, err
	}

	out := make([]*model.Claim, 0, len(raws))
	for i, raw := range raws {
		c, err := store.DecodeClaim(raw)
		if err != nil {
			s.logger.Warn("skipping unreadable claim", zap.String("path", s.path), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, c)
	}
	store.SortNewestFirst(out)
	return out, nil
}

func (s *Store) write(raws []json.RawMessage) error {
	if raws == nil {
		raws = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(document{Claims: raws}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".claims-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
