package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/marincop/internal/cache"
	"github.com/ppiankov/marincop/internal/classify"
	"github.com/ppiankov/marincop/internal/extract"
	"github.com/ppiankov/marincop/internal/metrics"
	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/worker"
)

// Oracle failure kinds. Callers treat every error as "use the rules".
var (
	ErrDisabled     = errors.New("oracle disabled")
	ErrEmptyReply   = errors.New("oracle returned empty output")
	ErrInvalidReply = errors.New("oracle returned invalid output")
)

// defaultReplyConfidence applies when a reply omits its confidence
const defaultReplyConfidence = 0.6

const cacheTTL = 7 * 24 * time.Hour

// Oracle is the best-effort language-model extractor and classifier.
// A nil *Oracle is valid and always reports ErrDisabled.
type Oracle struct {
	provider Provider
	config   Config
	company  string
	cache    cache.Cache
	limiter  *worker.Limiter
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// OracleOption configures an Oracle
type OracleOption func(*Oracle)

// WithCache stores validated replies
func WithCache(c cache.Cache) OracleOption {
	return func(o *Oracle) { o.cache = c }
}

// WithLimiter throttles provider calls
func WithLimiter(l *worker.Limiter) OracleOption {
	return func(o *Oracle) { o.limiter = l }
}

// WithMetrics counts cache hits and provider errors
func WithMetrics(m *metrics.Metrics) OracleOption {
	return func(o *Oracle) { o.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) OracleOption {
	return func(o *Oracle) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCompany names the notifying company in prompts
func WithCompany(name string) OracleOption {
	return func(o *Oracle) { o.company = name }
}

// NewOracle wraps a provider. A nil provider yields a nil Oracle.
func NewOracle(provider Provider, config Config, opts ...OracleOption) *Oracle {
	if provider == nil {
		return nil
	}
	o := &Oracle{
		provider: provider,
		config:   config,
		cache:    cache.NopCache{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cache == nil {
		o.cache = cache.NopCache{}
	}
	return o
}

// Enabled reports whether calls reach a provider
func (o *Oracle) Enabled() bool {
	return o != nil && o.provider != nil
}

// MinConfidence is the floor below which extraction replies are rejected
func (o *Oracle) MinConfidence() float64 {
	if o == nil {
		return 0
	}
	return o.config.MinConfidence
}

// extractionReply mirrors ExtractionSchema
type extractionReply struct {
	Summary               string   `json:"summary"`
	VesselName            *string  `json:"vesselName"`
	IMO                   *string  `json:"imo"`
	EventDateText         *string  `json:"eventDateText"`
	LocationText          *string  `json:"locationText"`
	CounterpartyText      *string  `json:"counterpartyText"`
	IncidentType          *string  `json:"incidentType"`
	AllegedCause          *string  `json:"allegedCause"`
	PilotInvolved         *bool    `json:"pilotInvolved"`
	PollutionReported     *bool    `json:"pollutionReported"`
	InjuriesReported      *bool    `json:"injuriesReported"`
	IncidentKeywords      []string `json:"incidentKeywords"`
	ImmediateActionsTaken []string `json:"immediateActionsTaken"`
	MissingInfoToRequest  []string `json:"missingInfoToRequest"`
	Confidence            *float64 `json:"confidence"`
	Warnings              []string `json:"warnings"`
}

// classificationReply mirrors ClassificationSchema
type classificationReply struct {
	BusinessRole *string `json:"businessRole"`
	Covers       []struct {
		Type       string  `json:"type"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	} `json:"covers"`
}

// TryExtract asks the provider for an Extraction of normalized text. The
// result is sanitized to the same field contract as the rule extractor.
func (o *Oracle) TryExtract(ctx context.Context, text string) (*model.Extraction, error) {
	if !o.Enabled() {
		return nil, ErrDisabled
	}

	req := CompletionRequest{
		System:    ExtractionSystemPrompt(o.company),
		User:      ExtractionUserPrompt(text),
		MaxTokens: o.config.MaxTokens,
		JSONMode:  true,
	}
	content, err := o.complete(ctx, metrics.StageExtract, req, ExtractionSchema)
	if err != nil {
		return nil, err
	}

	var reply extractionReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}

	confidence := defaultReplyConfidence
	if reply.Confidence != nil {
		confidence = *reply.Confidence
	}

	ex := extract.Sanitize(model.Extraction{
		RawText:               text,
		Summary:               reply.Summary,
		VesselName:            reply.VesselName,
		IMO:                   reply.IMO,
		EventDateText:         reply.EventDateText,
		LocationText:          reply.LocationText,
		CounterpartyText:      reply.CounterpartyText,
		IncidentKeywords:      reply.IncidentKeywords,
		IncidentType:          reply.IncidentType,
		AllegedCause:          reply.AllegedCause,
		PilotInvolved:         reply.PilotInvolved,
		PollutionReported:     reply.PollutionReported,
		InjuriesReported:      reply.InjuriesReported,
		ImmediateActionsTaken: reply.ImmediateActionsTaken,
		MissingInfoToRequest:  reply.MissingInfoToRequest,
		Confidence:            confidence,
		Warnings:              reply.Warnings,
		Source:                model.SourceOracle,
	})
	return &ex, nil
}

// TryClassify asks the provider to rank covers for an extraction. Cover
// names are normalized and the charterer rule is enforced on the result.
func (o *Oracle) TryClassify(ctx context.Context, ex model.Extraction) (*model.Classification, error) {
	if !o.Enabled() {
		return nil, ErrDisabled
	}

	user, err := ClassificationUserPrompt(ex)
	if err != nil {
		return nil, err
	}
	req := CompletionRequest{
		System:    ClassificationSystemPrompt(),
		User:      user,
		MaxTokens: o.config.MaxTokens,
		JSONMode:  true,
	}
	content, err := o.complete(ctx, metrics.StageClassify, req, ClassificationSchema)
	if err != nil {
		return nil, err
	}

	var reply classificationReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}

	covers := make([]model.Cover, 0, len(reply.Covers))
	for _, c := range reply.Covers {
		covers = append(covers, model.Cover{
			Type:       model.CoverType(c.Type),
			Confidence: c.Confidence,
			Reasoning:  strings.TrimSpace(c.Reasoning),
		})
	}
	covers = classify.Normalize(covers)
	if len(covers) == 0 {
		return nil, fmt.Errorf("%w: no recognised cover types", ErrInvalidReply)
	}

	role := classify.DetectRole(ex.RawText)
	if role != model.RoleCharterer && reply.BusinessRole != nil {
		switch r := model.BusinessRole(strings.ToLower(strings.TrimSpace(*reply.BusinessRole))); r {
		case model.RoleCharterer, model.RoleVesselOwner:
			role = r
		}
	}

	cl := classify.EnforceRole(model.Classification{
		Covers:       covers,
		BusinessRole: role,
		Source:       model.SourceOracle,
	})
	return &cl, nil
}

// complete runs one cached, rate-limited, schema-checked provider call and
// returns the bare JSON text.
func (o *Oracle) complete(ctx context.Context, stage string, req CompletionRequest, schema map[string]any) (string, error) {
	key := cache.CacheKey(o.provider.Name(), o.config.Model, stage, req.System, req.User)
	if b, ok := o.cache.Get(key); ok {
		o.metrics.OracleRequest(stage, metrics.OutcomeCacheHit)
		o.logger.Debug("oracle cache hit", zap.String("stage", stage))
		return string(b), nil
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx, o.provider.Name()); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := o.provider.Complete(ctx, req)
	if err != nil {
		o.metrics.OracleRequest(stage, metrics.OutcomeError)
		return "", err
	}
	o.logger.Debug("oracle reply",
		zap.String("stage", stage),
		zap.String("provider", o.provider.Name()),
		zap.String("model", resp.Model),
		zap.Int("tokens", resp.TokensUsed),
		zap.Duration("elapsed", time.Since(start)),
	)

	content := StripCodeFence(resp.Content)
	if content == "" {
		o.metrics.OracleRequest(stage, metrics.OutcomeEmpty)
		return "", ErrEmptyReply
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(content)); err != nil {
		o.metrics.OracleRequest(stage, metrics.OutcomeError)
		return "", fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}

	if err := o.cache.Set(key, []byte(content), cacheTTL); err != nil {
		o.logger.Warn("oracle cache write failed", zap.Error(err))
	}
	return content, nil
}
