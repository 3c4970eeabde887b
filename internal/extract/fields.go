package extract

import (
	"github.com/ppiankov/marincop/internal/model"
)

// RuleConfidence is the confidence attached to a rule-based extraction
const RuleConfidence = 0.45

// FieldExtractor derives structured facts from notification text
type FieldExtractor struct {
	normalizer   *Normalizer
	vessel       []Rule
	imo          []Rule
	date         []Rule
	location     []Rule
	counterparty []Rule
	lexicon      []KeywordTag
}

// NewFieldExtractor creates a field extractor with the default rule tables
func NewFieldExtractor(normalizer *Normalizer) *FieldExtractor {
	if normalizer == nil {
		normalizer = NewNormalizer(0, 0)
	}
	return &FieldExtractor{
		normalizer:   normalizer,
		vessel:       VesselRules(),
		imo:          IMORules(),
		date:         DateRules(),
		location:     LocationRules(),
		counterparty: CounterpartyRules(),
		lexicon:      DefaultLexicon,
	}
}

// Normalizer returns the normalizer used by the extractor
func (e *FieldExtractor) Normalizer() *Normalizer {
	return e.normalizer
}

// Extract derives an Extraction from raw notification text. It never fails;
// a missing signal leaves the field nil.
func (e *FieldExtractor) Extract(raw string) model.Extraction {
	text := e.normalizer.Normalize(raw)
	return e.ExtractNormalized(text)
}

// ExtractNormalized is Extract for text that has already been normalized
func (e *FieldExtractor) ExtractNormalized(text string) model.Extraction {
	vessel, _ := FirstAccepted(e.vessel, text, AcceptVesselName)
	imo, _ := FirstAccepted(e.imo, text, ValidIMO)
	date, _ := FirstAccepted(e.date, text, nil)
	location, _ := FirstAccepted(e.location, text, AcceptLocation)
	counterparty, _ := FirstAccepted(e.counterparty, text, AcceptShortText)

	return model.Extraction{
		RawText:               text,
		Summary:               e.normalizer.Summary(text),
		VesselName:            model.StringPtr(vessel),
		IMO:                   model.StringPtr(imo),
		EventDateText:         model.StringPtr(date),
		LocationText:          model.StringPtr(location),
		IncidentKeywords:      MatchKeywords(e.lexicon, text),
		CounterpartyText:      model.StringPtr(counterparty),
		ImmediateActionsTaken: []string{},
		MissingInfoToRequest:  []string{},
		Confidence:            RuleConfidence,
		Source:                model.SourceRules,
	}
}

// Keywords returns the lexicon tags found in text
func (e *FieldExtractor) Keywords(text string) []string {
	return MatchKeywords(e.lexicon, text)
}
