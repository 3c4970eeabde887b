// Package storetest holds the behaviour every claim store backend must show.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/store"
)

// NewClaim builds a minimal claim created at t
func NewClaim(id, number string, t time.Time) *model.Claim {
	vessel := "MV Nova Star"
	return &model.Claim{
		ID:             id,
		ClaimNumber:    number,
		Company:        "Nova Carriers",
		CreatedAt:      t,
		UpdatedAt:      t,
		CreatedBy:      "tester",
		ProgressStatus: model.ProgressNotificationReceived,
		Extraction: model.Extraction{
			RawText:          "MV Nova Star collided with a tug near Singapore",
			Summary:          "MV Nova Star collided with a tug near Singapore",
			VesselName:       &vessel,
			IncidentKeywords: []string{"collision"},
			Confidence:       0.45,
			Source:           model.SourceRules,
		},
		Classification: model.Classification{
			Covers:       []model.Cover{{Type: model.CoverPI, Confidence: 0.9, Reasoning: "Third-party contact."}},
			BusinessRole: model.RoleUnclear,
			Source:       model.SourceRules,
		},
		Actions: []model.Action{{
			ID:        id + "-a1",
			Title:     "Create claim file and preserve evidence",
			OwnerRole: model.OwnerClaims,
			DueAt:     t,
			Status:    model.ActionOpen,
			CreatedAt: t,
			UpdatedAt: t,
		}},
		Finance: model.FinanceState{Currency: "USD"},
	}
}

// Run exercises a fresh store returned by open
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), "nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrNotFound), "want ErrNotFound, got %v", err)
	})

	t.Run("UpsertAndGet", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

		c := NewClaim("c1", "MC-NOVA-2026-0001", at)
		require.NoError(t, s.Upsert(ctx, c))

		got, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "MC-NOVA-2026-0001", got.ClaimNumber)
		require.NotNil(t, got.Extraction.VesselName)
		assert.Equal(t, "MV Nova Star", *got.Extraction.VesselName)
		assert.True(t, got.CreatedAt.Equal(at))
		require.Len(t, got.Actions, 1)
		assert.Equal(t, model.ActionOpen, got.Actions[0].Status)
		assert.Equal(t, model.CoverPI, got.Classification.Covers[0].Type)
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

		c := NewClaim("c1", "MC-NOVA-2026-0001", at)
		require.NoError(t, s.Upsert(ctx, c))

		c.ProgressStatus = "Survey Appointed"
		c.Finance = model.FinanceState{Currency: "EUR", CashOut: 100, RecoverableExpected: 100, OutstandingRecovery: 100}
		require.NoError(t, s.Upsert(ctx, c))

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Survey Appointed", all[0].ProgressStatus)
		assert.Equal(t, "EUR", all[0].Finance.Currency)
		assert.Equal(t, 100.0, all[0].Finance.OutstandingRecovery)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		for i := 1; i <= 3; i++ {
			c := NewClaim(fmt.Sprintf("c%d", i), fmt.Sprintf("MC-NOVA-2026-%04d", i), base.Add(time.Duration(i)*time.Hour))
			require.NoError(t, s.Upsert(ctx, c))
		}

		all, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"c3", "c2", "c1"}, []string{all[0].ID, all[1].ID, all[2].ID})
		assert.Equal(t, []string{"MC-NOVA-2026-0003", "MC-NOVA-2026-0002", "MC-NOVA-2026-0001"}, store.ClaimNumbers(all))
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		c := NewClaim("c1", "MC-NOVA-2026-0001", time.Now().UTC())
		require.NoError(t, s.Upsert(ctx, c))

		got, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		got.ProgressStatus = "mutated"

		again, err := s.Get(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, model.ProgressNotificationReceived, again.ProgressStatus)
	})
}
