// Package claims is the single-writer service over the claim store. Every
// mutation runs inside one critical section so claim numbers stay unique.
package claims

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/marincop/internal/finance"
	"github.com/ppiankov/marincop/internal/metrics"
	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/pipeline"
	"github.com/ppiankov/marincop/internal/store"
)

// Service owns claim creation and mutation
type Service struct {
	mu       sync.Mutex
	store    store.Store
	pipeline *pipeline.Pipeline
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithMetrics records created claims and finance updates
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source for mutations
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service over st
func NewService(st store.Store, p *pipeline.Pipeline, opts ...Option) *Service {
	s := &Service{
		store:    st,
		pipeline: p,
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draft runs the pipeline without touching the store. It is safe to call
// concurrently.
func (s *Service) Draft(ctx context.Context, createdBy, raw string) (*model.Claim, error) {
	return s.pipeline.Draft(ctx, createdBy, raw)
}

// Create drafts a claim from notification text and commits it
func (s *Service) Create(ctx context.Context, createdBy, raw string) (*model.Claim, error) {
	draft, err := s.Draft(ctx, createdBy, raw)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, draft)
}

// Commit assigns the next claim number and stores the draft. Numbering and
// the write happen in the same critical section. A draft that already has a
// number or is already stored is refused, so a number never changes.
func (s *Service) Commit(ctx context.Context, draft *model.Claim) (*model.Claim, error) {
	if draft == nil {
		return nil, model.NewValidationError("claim", "draft is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.ClaimNumber != "" {
		return nil, model.NewValidationError("claimNumber", "claim "+draft.ClaimNumber+" is already committed")
	}
	if _, err := s.store.Get(ctx, draft.ID); err == nil {
		return nil, model.NewValidationError("id", "claim "+draft.ID+" already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get claim: %w", err)
	}

	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	number := s.pipeline.NextNumber(draft, store.ClaimNumbers(existing))

	record := *draft
	record.ClaimNumber = number
	if err := s.store.Upsert(ctx, &record); err != nil {
		return nil, fmt.Errorf("store claim: %w", err)
	}
	draft.ClaimNumber = number

	s.metrics.ClaimCreated(string(draft.Extraction.Source))
	s.logger.Info("claim created",
		zap.String("id", draft.ID),
		zap.String("claim_number", draft.ClaimNumber),
		zap.Strings("covers", draft.Classification.CoverTypes()),
	)
	return draft, nil
}

// Get returns a claim by id or claim number
func (s *Service) Get(ctx context.Context, ref string) (*model.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(ctx, ref)
}

// ListSummaries returns one register row per claim, newest first
func (s *Service) ListSummaries(ctx context.Context) ([]model.ClaimSummary, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	out := make([]model.ClaimSummary, 0, len(all))
	for _, c := range all {
		out = append(out, c.Summarize())
	}
	return out, nil
}

// List returns every claim, newest first
func (s *Service) List(ctx context.Context) ([]*model.Claim, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return all, nil
}

// Portfolio aggregates finance and cover figures over every stored claim
func (s *Service) Portfolio(ctx context.Context) (finance.Portfolio, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return finance.Portfolio{}, fmt.Errorf("list claims: %w", err)
	}
	return finance.Aggregate(all), nil
}

// UpdateProgress sets the progress status and logs it
func (s *Service) UpdateProgress(ctx context.Context, ref, by, status string) (*model.Claim, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, model.NewValidationError("progressStatus", "is required")
	}

	return s.mutate(ctx, ref, by, func(c *model.Claim, at time.Time) error {
		c.ProgressStatus = status
		c.StatusLog = append(c.StatusLog, model.StatusLogEntry{At: at, By: by, Status: status, Note: "Progress updated"})
		c.Audit(at, by, model.AuditStatusUpdated, "Progress set to: "+status)
		return nil
	})
}

// UpdateFinance merges patch into the claim's finance state
func (s *Service) UpdateFinance(ctx context.Context, ref, by string, patch finance.Patch) (model.FinanceState, error) {
	if len(patch) == 0 {
		return model.FinanceState{}, model.NewValidationError("finance", "patch is empty")
	}

	c, err := s.mutate(ctx, ref, by, func(c *model.Claim, at time.Time) error {
		finance.ReconcileClaim(c, patch, by, at)
		return nil
	})
	if err != nil {
		return model.FinanceState{}, err
	}
	s.metrics.FinanceReconciled()
	return c.Finance, nil
}

// ActionUpdate is a partial action change. Nil fields are left as is.
type ActionUpdate struct {
	Status        *model.ActionStatus
	Notes         *string
	ReminderAt    *time.Time
	ClearReminder bool
}

// UpdateAction applies upd to one action
func (s *Service) UpdateAction(ctx context.Context, ref, actionID, by string, upd ActionUpdate) (*model.Action, error) {
	var status model.ActionStatus
	if upd.Status != nil {
		status = model.ActionStatus(strings.ToUpper(strings.TrimSpace(string(*upd.Status))))
		if !status.Valid() {
			return nil, model.NewValidationError("status", "must be OPEN or DONE, got %q", *upd.Status)
		}
	}
	if upd.ClearReminder && upd.ReminderAt != nil {
		return nil, model.NewValidationError("reminderAt", "cannot set and clear the reminder at once")
	}

	var updated model.Action
	_, err := s.mutate(ctx, ref, by, func(c *model.Claim, at time.Time) error {
		a := c.FindAction(actionID)
		if a == nil {
			return model.NotFoundError("action", actionID)
		}
		if upd.Status != nil {
			a.Status = status
		}
		if upd.Notes != nil {
			a.Notes = *upd.Notes
		}
		switch {
		case upd.ClearReminder:
			a.ReminderAt = nil
		case upd.ReminderAt != nil:
			r := upd.ReminderAt.UTC()
			a.ReminderAt = &r
		}
		a.UpdatedAt = at
		c.Audit(at, by, model.AuditActionUpdated, fmt.Sprintf("Action updated: %s (status=%s)", a.Title, a.Status))
		updated = *a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DueReminders lists every open action whose reminder is at or before
// before, earliest first
func (s *Service) DueReminders(ctx context.Context, before time.Time) ([]model.DueReminder, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	out := []model.DueReminder{}
	for _, c := range all {
		for _, a := range c.Actions {
			if a.Status != model.ActionOpen || a.ReminderAt == nil || a.ReminderAt.After(before) {
				continue
			}
			vessel := ""
			if c.Extraction.VesselName != nil {
				vessel = *c.Extraction.VesselName
			}
			out = append(out, model.DueReminder{
				ClaimID:     c.ID,
				ClaimNumber: c.ClaimNumber,
				VesselName:  vessel,
				ActionID:    a.ID,
				Title:       a.Title,
				OwnerRole:   a.OwnerRole,
				ReminderAt:  *a.ReminderAt,
				DueAt:       a.DueAt,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ReminderAt.Equal(out[j].ReminderAt) {
			return out[i].ReminderAt.Before(out[j].ReminderAt)
		}
		return out[i].ClaimNumber < out[j].ClaimNumber
	})
	return out, nil
}

// SnoozeReminder moves an action's reminder days forward from its current
// reminder, or from now when none is set
func (s *Service) SnoozeReminder(ctx context.Context, ref, actionID, by string, days int) (*model.Action, error) {
	if days <= 0 {
		return nil, model.NewValidationError("days", "must be a positive number, got %d", days)
	}

	var updated model.Action
	_, err := s.mutate(ctx, ref, by, func(c *model.Claim, at time.Time) error {
		a := c.FindAction(actionID)
		if a == nil {
			return model.NotFoundError("action", actionID)
		}
		base := at
		if a.ReminderAt != nil {
			base = *a.ReminderAt
		}
		next := base.AddDate(0, 0, days)
		a.ReminderAt = &next
		a.UpdatedAt = at
		c.Audit(at, by, model.AuditReminderSnoozed, fmt.Sprintf("Reminder snoozed by %d day(s) for action: %s", days, a.Title))
		updated = *a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Replan returns the action plan the current classification would produce,
// without changing the claim
func (s *Service) Replan(ctx context.Context, ref string) ([]model.Action, error) {
	c, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.pipeline.PlanActions(c.Classification, c.CreatedAt), nil
}

// mutate loads a claim, applies fn and stores the result, all under the lock
func (s *Service) mutate(ctx context.Context, ref, by string, fn func(c *model.Claim, at time.Time) error) (*model.Claim, error) {
	by = strings.TrimSpace(by)
	if by == "" {
		return nil, model.NewValidationError("by", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}

	at := s.now()
	if err := fn(c, at); err != nil {
		return nil, err
	}
	c.UpdatedAt = at

	if err := s.store.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("store claim: %w", err)
	}
	return c, nil
}

// find resolves ref as an id, then as a claim number. Callers hold s.mu.
func (s *Service) find(ctx context.Context, ref string) (*model.Claim, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, model.NewValidationError("claim", "id or claim number is required")
	}

	c, err := s.store.Get(ctx, ref)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	for _, c := range all {
		if strings.EqualFold(c.ClaimNumber, ref) {
			return c, nil
		}
	}
	return nil, model.NotFoundError("claim", ref)
}
