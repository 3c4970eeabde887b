package classify

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/marincop/internal/extract"
	"github.com/ppiankov/marincop/internal/model"
)

const (
	// InclusionThreshold is the minimum score for a cover to be offered
	InclusionThreshold = 0.35

	// UnclearConfidence is attached to the fallback entry when nothing fired
	UnclearConfidence = 0.25

	// promotionMargin separates Charterers' Liability from the next cover
	promotionMargin = 0.05
)

// Signal records one indicator that fired
type Signal struct {
	Name   string
	Weight float64
	Reason string
}

// Score is the additive result for one candidate cover
type Score struct {
	Cover   model.CoverType
	Value   float64
	Signals []Signal
}

// Classifier scores candidate covers with a transparent rule table
type Classifier struct {
	indicators []Indicator
	threshold  float64
}

// NewClassifier creates a classifier with the default rule table
func NewClassifier() *Classifier {
	return &Classifier{
		indicators: DefaultIndicators,
		threshold:  InclusionThreshold,
	}
}

// Classify ranks plausible covers for an extraction. It never fails: an
// extraction with no signal yields a single low-confidence review entry.
func (c *Classifier) Classify(ex model.Extraction) model.Classification {
	scores := c.Scores(ex)
	role := DetectRole(ex.RawText)

	fired := false
	var selected []model.Cover
	for _, s := range scores {
		if len(s.Signals) > 0 {
			fired = true
		}
		if s.Value >= c.threshold {
			selected = append(selected, s.cover())
		}
	}

	if !fired {
		return model.Classification{
			Covers:       []model.Cover{unclearCover()},
			BusinessRole: role,
			Source:       model.SourceRules,
		}
	}

	if len(selected) == 0 {
		selected = []model.Cover{best(scores).cover()}
	}

	return EnforceRole(model.Classification{
		Covers:       selected,
		BusinessRole: role,
		Source:       model.SourceRules,
	})
}

// Scores evaluates every candidate cover, in tie-break order
func (c *Classifier) Scores(ex model.Extraction) []Score {
	text := strings.ToLower(ex.RawText)

	byCover := make(map[model.CoverType]*Score, len(Candidates))
	scores := make([]Score, len(Candidates))
	for i, ct := range Candidates {
		scores[i] = Score{Cover: ct}
		byCover[ct] = &scores[i]
	}

	for _, ind := range c.indicators {
		s, ok := byCover[ind.Cover]
		if !ok || !ind.fires(ex, text) {
			continue
		}
		s.Value += ind.Weight
		s.Signals = append(s.Signals, Signal{Name: ind.Name, Weight: ind.Weight, Reason: ind.Reason})
	}

	for i := range scores {
		scores[i].Value = round2(clamp01(scores[i].Value))
	}

	return scores
}

func (ind Indicator) fires(ex model.Extraction, lowerText string) bool {
	for _, tag := range ind.Tags {
		if ex.HasKeyword(tag) {
			return true
		}
	}
	return containsAny(lowerText, ind.Terms)
}

func (s Score) cover() model.Cover {
	reasons := make([]string, 0, len(s.Signals))
	seen := make(map[string]bool)
	for _, sig := range s.Signals {
		if !seen[sig.Reason] {
			seen[sig.Reason] = true
			reasons = append(reasons, sig.Reason)
		}
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Weak signal; best available match.")
	}
	return model.Cover{
		Type:       s.Cover,
		Confidence: s.Value,
		Reasoning:  strings.Join(reasons, " "),
	}
}

func best(scores []Score) Score {
	b := scores[0]
	for _, s := range scores[1:] {
		if s.Value > b.Value {
			b = s
		}
	}
	return b
}

func unclearCover() model.Cover {
	return model.Cover{
		Type:       model.CoverUnclear,
		Confidence: UnclearConfidence,
		Reasoning:  "No cover indicators found in the notification; manual review required.",
	}
}

// DetectRole infers the claim owner's role from the notification text.
// Charterer signals take precedence over owner signals.
func DetectRole(text string) model.BusinessRole {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, chartererTerms):
		return model.RoleCharterer
	case containsAny(lower, ownerTerms):
		return model.RoleVesselOwner
	default:
		return model.RoleUnclear
	}
}

// EnforceRole applies the business-role rule to a classification. For a
// charterer H&M is removed and Charterers' Liability is ranked first; every
// other cover keeps its place below it. Covers are then sorted.
func EnforceRole(cl model.Classification) model.Classification {
	if cl.BusinessRole != model.RoleCharterer {
		cl.Covers = Sort(cl.Covers)
		return cl
	}

	var others []model.Cover
	var chartererCover *model.Cover
	for _, cv := range cl.Covers {
		switch cv.Type {
		case model.CoverHM, model.CoverUnclear:
			continue
		case model.CoverCharterersLiability:
			if chartererCover == nil || cv.Confidence > chartererCover.Confidence {
				cv := cv
				chartererCover = &cv
			}
		default:
			others = append(others, cv)
		}
	}

	maxOther := 0.0
	for _, cv := range others {
		maxOther = math.Max(maxOther, cv.Confidence)
	}

	promoted := model.Cover{
		Type:      model.CoverCharterersLiability,
		Reasoning: "Claim owner acts as charterer.",
	}
	if chartererCover != nil {
		promoted = *chartererCover
	}
	floor := math.Max(maxOther+promotionMargin, 0.5)
	if promoted.Confidence < floor {
		promoted.Confidence = floor
	}
	promoted.Confidence = round2(clamp01(promoted.Confidence))
	promoted.Reasoning = strings.TrimSpace(promoted.Reasoning +
		" Charterer role: ranked first; H&M excluded as a vessel owner's cover.")

	out := []model.Cover{promoted}
	for _, cv := range others {
		if cv.Confidence >= promoted.Confidence {
			cv.Confidence = round2(promoted.Confidence - promotionMargin)
			cv.Reasoning = strings.TrimSpace(cv.Reasoning + " Ranked below Charterers' Liability for charterer role.")
		}
		out = append(out, cv)
	}

	cl.Covers = Sort(out)
	return cl
}

// Normalize cleans an externally produced cover list: unknown types are
// dropped, aliases resolved, confidences clamped, duplicates collapsed to the
// highest-confidence instance, and the review entry removed when a real cover
// is present.
func Normalize(covers []model.Cover) []model.Cover {
	byType := make(map[model.CoverType]model.Cover)
	for _, cv := range covers {
		t, ok := model.ParseCoverType(string(cv.Type))
		if !ok {
			continue
		}
		cv.Type = t
		cv.Confidence = round2(clamp01(cv.Confidence))
		cv.Reasoning = strings.TrimSpace(cv.Reasoning)
		if prev, seen := byType[t]; seen && prev.Confidence >= cv.Confidence {
			continue
		}
		byType[t] = cv
	}

	if len(byType) > 1 {
		delete(byType, model.CoverUnclear)
	}

	out := make([]model.Cover, 0, len(byType))
	for _, cv := range byType {
		out = append(out, cv)
	}
	return Sort(out)
}

// Sort orders covers by descending confidence, ties by cover priority
func Sort(covers []model.Cover) []model.Cover {
	sort.SliceStable(covers, func(i, j int) bool {
		if covers[i].Confidence != covers[j].Confidence {
			return covers[i].Confidence > covers[j].Confidence
		}
		return covers[i].Type.Priority() < covers[j].Type.Priority()
	})
	return covers
}

// containsAny reports whether any term occurs in text starting at a word
// boundary, so "tug" does not fire inside "portugal".
func containsAny(text string, terms []string) bool {
	return extract.ContainsAnyWord(text, terms)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
