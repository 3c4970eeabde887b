package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/marincop/internal/model"
)

// ExtractionSystemPrompt instructs the model to return the extraction object
func ExtractionSystemPrompt(company string) string {
	if company == "" {
		company = "the shipowner"
	}
	return strings.Join([]string{
		fmt.Sprintf("You are Marincop, a marine insurance claims assistant for %s.", company),
		"Extract structured fields from a messy first notification of a marine casualty (email, chat message, forwarded chain).",
		"Return ONLY one JSON object with exactly these keys:",
		"summary, vesselName, imo, eventDateText, locationText, counterpartyText, incidentType, allegedCause,",
		"pilotInvolved, pollutionReported, injuriesReported, incidentKeywords, immediateActionsTaken, missingInfoToRequest, confidence, warnings.",
		"If a field is unknown, return null (not an empty string). Booleans are true, false or null.",
		"imo is the 7-digit IMO number only.",
		"incidentKeywords are short lower-case tags (e.g., contact, collision, grounding, pollution, injury, cargo damage, fire, machinery, weather).",
		"locationText is any port, anchorage, city or sea area mentioned (e.g., 'off Singapore', 'Balikpapan', 'Port Said').",
		"confidence is a number between 0 and 1 describing how complete and unambiguous the notification is.",
	}, "\n")
}

// ExtractionUserPrompt wraps the notification text
func ExtractionUserPrompt(text string) string {
	return strings.Join([]string{
		"FIRST NOTIFICATION TEXT (raw):",
		"```",
		text,
		"```",
	}, "\n")
}

// ClassificationSystemPrompt instructs the model to rank insurance covers
func ClassificationSystemPrompt() string {
	covers := make([]string, 0, 6)
	for _, t := range []model.CoverType{
		model.CoverPI, model.CoverHM, model.CoverCharterersLiability,
		model.CoverCargo, model.CoverFDD, model.CoverUnclear,
	} {
		covers = append(covers, fmt.Sprintf("%q", string(t)))
	}

	return strings.Join([]string{
		"You are Marincop, a marine insurance claims assistant.",
		"Given the extracted facts of a marine casualty notification, decide which insurance covers are likely engaged.",
		"Allowed cover types: " + strings.Join(covers, ", ") + ".",
		"Return ONLY one JSON object: {\"businessRole\": \"vessel_owner\"|\"charterer\"|\"unclear\", \"covers\": [{\"type\": string, \"confidence\": number, \"reasoning\": string}]}.",
		"confidence is between 0 and 1. reasoning is one short sentence.",
		"If the notifying party is a charterer, H&M must not be listed and Charterers' Liability ranks first.",
		"Use \"Unclear / Needs Review\" only when no other cover is supported.",
	}, "\n")
}

// ClassificationUserPrompt renders the extraction facts the classifier sees
func ClassificationUserPrompt(ex model.Extraction) (string, error) {
	facts := struct {
		Summary           string   `json:"summary"`
		VesselName        *string  `json:"vesselName"`
		EventDateText     *string  `json:"eventDateText"`
		LocationText      *string  `json:"locationText"`
		CounterpartyText  *string  `json:"counterpartyText"`
		IncidentType      *string  `json:"incidentType,omitempty"`
		AllegedCause      *string  `json:"allegedCause,omitempty"`
		IncidentKeywords  []string `json:"incidentKeywords"`
		PilotInvolved     *bool    `json:"pilotInvolved,omitempty"`
		PollutionReported *bool    `json:"pollutionReported,omitempty"`
		InjuriesReported  *bool    `json:"injuriesReported,omitempty"`
	}{
		Summary:           ex.Summary,
		VesselName:        ex.VesselName,
		EventDateText:     ex.EventDateText,
		LocationText:      ex.LocationText,
		CounterpartyText:  ex.CounterpartyText,
		IncidentType:      ex.IncidentType,
		AllegedCause:      ex.AllegedCause,
		IncidentKeywords:  ex.IncidentKeywords,
		PilotInvolved:     ex.PilotInvolved,
		PollutionReported: ex.PollutionReported,
		InjuriesReported:  ex.InjuriesReported,
	}

	b, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal extraction facts: %w", err)
	}

	return strings.Join([]string{
		"EXTRACTED FACTS:",
		string(b),
		"",
		"NOTIFICATION TEXT:",
		"```",
		ex.RawText,
		"```",
	}, "\n"), nil
}
