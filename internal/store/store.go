// Package store defines the claim store contract shared by the backends.
package store

import (
	"context"
	"sort"

	"github.com/ppiankov/marincop/internal/model"
)

// ErrNotFound is returned by Get for an unknown claim id
var ErrNotFound = model.ErrNotFound

// Store is a keyed claim document store. Callers serialize writes; backends
// only guarantee that each Upsert is atomic.
type Store interface {
	Get(ctx context.Context, id string) (*model.Claim, error)
	List(ctx context.Context) ([]*model.Claim, error)
	Upsert(ctx context.Context, claim *model.Claim) error
	Close() error
}

// SortNewestFirst orders claims by creation time, newest first, then by id
func SortNewestFirst(claims []*model.Claim) {
	sort.SliceStable(claims, func(i, j int) bool {
		if !claims[i].CreatedAt.Equal(claims[j].CreatedAt) {
			return claims[i].CreatedAt.After(claims[j].CreatedAt)
		}
		return claims[i].ID < claims[j].ID
	})
}

// ClaimNumbers returns the claim numbers of claims
func ClaimNumbers(claims []*model.Claim) []string {
	out := make([]string, 0, len(claims))
	for _, c := range claims {
		if c.ClaimNumber != "" {
			out = append(out, c.ClaimNumber)
		}
	}
	return out
}
