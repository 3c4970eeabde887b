package extract

import (
	"math"
	"strings"

	"github.com/ppiankov/marincop/internal/model"
)

// Sanitize enforces the Extraction field contract on externally produced
// values: nullable text is trimmed and nil when blank, vessel names and IMO
// numbers pass the same acceptance checks as the rules, keywords are
// lower-cased and de-duplicated, and confidence is clamped to [0,1].
func Sanitize(ex model.Extraction) model.Extraction {
	ex.VesselName = acceptPtr(ex.VesselName, AcceptVesselName)
	ex.IMO = acceptPtr(ex.IMO, ValidIMO)
	ex.EventDateText = acceptPtr(ex.EventDateText, nil)
	ex.LocationText = acceptPtr(ex.LocationText, AcceptLocation)
	ex.CounterpartyText = acceptPtr(ex.CounterpartyText, AcceptShortText)
	ex.IncidentType = acceptPtr(ex.IncidentType, nil)
	ex.AllegedCause = acceptPtr(ex.AllegedCause, nil)

	ex.Summary = strings.TrimSpace(ex.Summary)
	ex.IncidentKeywords = normalizeTags(ex.IncidentKeywords)
	ex.ImmediateActionsTaken = compactStrings(ex.ImmediateActionsTaken)
	ex.MissingInfoToRequest = compactStrings(ex.MissingInfoToRequest)
	ex.Warnings = compactStrings(ex.Warnings)

	if math.IsNaN(ex.Confidence) || ex.Confidence < 0 {
		ex.Confidence = 0
	}
	if ex.Confidence > 1 {
		ex.Confidence = 1
	}

	return ex
}

// MergeKeywords returns the union of tag sets, first-seen order
func MergeKeywords(sets ...[]string) []string {
	var all []string
	for _, s := range sets {
		all = append(all, s...)
	}
	return normalizeTags(all)
}

func acceptPtr(p *string, accept func(string) bool) *string {
	if p == nil {
		return nil
	}
	v := cleanValue(*p)
	if IsPlaceholder(v) {
		return nil
	}
	if accept != nil && !accept(v) {
		return nil
	}
	return &v
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	for _, t := range tags {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
