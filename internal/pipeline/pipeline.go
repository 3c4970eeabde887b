package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/marincop/internal/actions"
	"github.com/ppiankov/marincop/internal/cache"
	"github.com/ppiankov/marincop/internal/claimno"
	"github.com/ppiankov/marincop/internal/classify"
	"github.com/ppiankov/marincop/internal/extract"
	"github.com/ppiankov/marincop/internal/finance"
	"github.com/ppiankov/marincop/internal/llm"
	"github.com/ppiankov/marincop/internal/metrics"
	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/worker"
)

const createdNote = "Claim created from first notification."

// Pipeline turns notification text into a claim record
type Pipeline struct {
	extractor  *extract.FieldExtractor
	classifier *classify.Classifier
	planner    *actions.Planner
	allocator  *claimno.Allocator
	oracle     *llm.Oracle // Optional (nil if disabled)
	config     *model.Config
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithOracle replaces the oracle built from configuration
func WithOracle(o *llm.Oracle) Option {
	return func(p *Pipeline) { p.oracle = o }
}

// WithMetrics records outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithIDGenerator overrides claim and action id generation
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// NewPipeline creates a new pipeline with the given configuration. The
// oracle is built from cfg.LLM unless WithOracle is given; a provider that
// cannot be initialized leaves the pipeline on the rule path.
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	p := &Pipeline{
		extractor:  extract.NewFieldExtractor(extract.NewNormalizer(cfg.Extraction.MaxChars, cfg.Extraction.SummaryChars)),
		classifier: classify.NewClassifier(),
		allocator:  claimno.NewAllocator(cfg.Org),
		config:     cfg,
		logger:     zap.NewNop(),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}

	for _, opt := range opts {
		opt(p)
	}
	p.planner = actions.NewPlanner().WithIDGenerator(p.newID)

	if p.oracle == nil && cfg.LLM.Provider != "" {
		p.oracle = p.buildOracle(cfg)
	}

	return p
}

func (p *Pipeline) buildOracle(cfg *model.Config) *llm.Oracle {
	llmConfig := llm.ConfigFromModel(cfg.LLM)
	if llmConfig.APIKey == "" {
		llmConfig.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	provider, err := llm.NewProvider(llmConfig)
	if err != nil {
		p.logger.Warn("oracle disabled", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		return nil
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	if provider.Name() == "ollama" {
		// local model, no request budget
		limiter.SetKeyRate(provider.Name(), 0, cfg.RateLimiting.BurstSize)
	}

	return llm.NewOracle(provider, llmConfig,
		llm.WithCache(cache.New(cfg.Cache)),
		llm.WithLimiter(limiter),
		llm.WithMetrics(p.metrics),
		llm.WithLogger(p.logger),
		llm.WithCompany(cfg.Company),
	)
}

// OracleEnabled reports whether an oracle is consulted
func (p *Pipeline) OracleEnabled() bool {
	return p.oracle.Enabled()
}

// Org is the organisation code used in claim numbers
func (p *Pipeline) Org() string {
	return p.allocator.Org()
}

// Draft runs normalization, extraction, classification and planning and
// returns a claim without a claim number. Text that is empty after
// normalization is rejected before any extraction runs.
func (p *Pipeline) Draft(ctx context.Context, createdBy, raw string) (*model.Claim, error) {
	text := p.extractor.Normalizer().Normalize(raw)
	if strings.TrimSpace(text) == "" {
		return nil, model.NewValidationError("rawNotificationText", "notification text is empty")
	}

	start := time.Now()
	createdAt := p.now()
	createdBy = strings.TrimSpace(createdBy)

	ex := p.Extract(ctx, text)
	cl := p.Classify(ctx, ex)

	claim := &model.Claim{
		ID:             p.newID(),
		Company:        p.config.Company,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
		CreatedBy:      createdBy,
		ProgressStatus: model.ProgressNotificationReceived,
		Extraction:     ex,
		Classification: cl,
		Actions:        p.PlanActions(cl, createdAt),
		Finance:        finance.Default(p.config.Currency),
		StatusLog: []model.StatusLogEntry{{
			At:     createdAt,
			By:     createdBy,
			Status: model.ProgressNotificationReceived,
			Note:   createdNote,
		}},
		AuditTrail: []model.AuditEntry{},
	}
	claim.Audit(createdAt, createdBy, model.AuditClaimCreated, model.ProgressNotificationReceived+" - "+createdNote)
	claim.Audit(createdAt, createdBy, model.AuditClassified, classifiedNote(cl))

	p.metrics.ObserveDraft(time.Since(start))
	p.logger.Debug("claim drafted",
		zap.String("id", claim.ID),
		zap.String("source", string(ex.Source)),
		zap.Strings("covers", cl.CoverTypes()),
		zap.String("role", string(cl.BusinessRole)),
	)

	return claim, nil
}

// CreateClaimRecord drafts a claim and assigns the next claim number after
// existingNumbers for the creation year.
func (p *Pipeline) CreateClaimRecord(ctx context.Context, createdBy, raw string, existingNumbers []string) (*model.Claim, error) {
	claim, err := p.Draft(ctx, createdBy, raw)
	if err != nil {
		return nil, err
	}
	claim.ClaimNumber = p.NextNumber(claim, existingNumbers)
	return claim, nil
}

// NextNumber returns the claim number that follows existingNumbers in the
// claim's creation year. The claim itself is not modified.
func (p *Pipeline) NextNumber(claim *model.Claim, existingNumbers []string) string {
	return p.allocator.Allocate(existingNumbers, claim.CreatedAt.Year())
}

// PlanActions builds the action checklist for a classification
func (p *Pipeline) PlanActions(cl model.Classification, createdAt time.Time) []model.Action {
	return p.planner.Plan(cl, createdAt)
}

// Extract prefers the oracle and falls back to the rules when the oracle is
// disabled, fails, returns no summary or reports low confidence. The
// result always carries the lexicon keywords found in text.
func (p *Pipeline) Extract(ctx context.Context, text string) model.Extraction {
	rules := p.extractor.ExtractNormalized(text)
	rules.Warnings = []string{}

	if !p.oracle.Enabled() {
		return rules
	}

	ex, err := p.oracle.TryExtract(ctx, text)
	reason, outcome := "", metrics.OutcomeSuccess
	switch {
	case err != nil:
		reason, outcome = err.Error(), ""
	case ex == nil || ex.Summary == "":
		reason, outcome = "empty summary", metrics.OutcomeEmpty
	case ex.Confidence < p.oracle.MinConfidence():
		reason = fmt.Sprintf("confidence %.2f below %.2f", ex.Confidence, p.oracle.MinConfidence())
		outcome = metrics.OutcomeLowConfidence
	}
	if outcome != "" {
		p.metrics.OracleRequest(metrics.StageExtract, outcome)
	}

	if reason != "" {
		p.logger.Warn("oracle extraction rejected, using rules", zap.String("reason", reason))
		rules.Warnings = append(rules.Warnings, "Oracle extraction not used ("+reason+"); rule-based fallback applied.")
		return rules
	}

	ex.IncidentKeywords = extract.MergeKeywords(ex.IncidentKeywords, rules.IncidentKeywords)
	return *ex
}

// Classify prefers the oracle and falls back to the indicator table. The
// business-role rule holds on both paths.
func (p *Pipeline) Classify(ctx context.Context, ex model.Extraction) model.Classification {
	if p.oracle.Enabled() {
		cl, err := p.oracle.TryClassify(ctx, ex)
		if err == nil && cl != nil && len(cl.Covers) > 0 {
			p.metrics.OracleRequest(metrics.StageClassify, metrics.OutcomeSuccess)
			return classify.EnforceRole(*cl)
		}
		if err == nil {
			err = errors.New("no covers")
			p.metrics.OracleRequest(metrics.StageClassify, metrics.OutcomeEmpty)
		}
		p.logger.Warn("oracle classification rejected, using indicators", zap.Error(err))
	}
	return p.classifier.Classify(ex)
}

func classifiedNote(cl model.Classification) string {
	return fmt.Sprintf("Classified as %s (role=%s, source=%s)",
		strings.Join(cl.CoverTypes(), ", "), cl.BusinessRole, cl.Source)
}
