package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/marincop/internal/finance"
	"github.com/ppiankov/marincop/internal/model"
)

// legacyFields are shapes written by earlier versions of the claim record
type legacyFields struct {
	VesselName            *string        `json:"vesselName"`
	FirstNotificationText string         `json:"firstNotificationText"`
	Finance               map[string]any `json:"finance"`
}

// EncodeClaim serializes a claim document
func EncodeClaim(c *model.Claim) ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode claim %s: %w", c.ID, err)
	}
	return b, nil
}

// DecodeClaim parses a claim document and resolves legacy field names:
// finance aliases, derived finance values, cover type aliases, lower-case
// action statuses and a root-level vessel name.
func DecodeClaim(data []byte) (*model.Claim, error) {
	var c model.Claim
	if err := json.Unmarshal(data, &c); err != nil {
		// finance amounts stored as strings are coerced below
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || !strings.HasPrefix(typeErr.Field, "finance") {
			return nil, fmt.Errorf("decode claim: %w", err)
		}
	}

	var legacy legacyFields
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("decode claim: %w", err)
	}

	if legacy.Finance != nil {
		c.Finance = finance.Reconcile(model.FinanceState{}, finance.Patch(legacy.Finance))
	} else {
		c.Finance = finance.Recompute(c.Finance)
	}
	if c.Finance.Currency == "" {
		c.Finance.Currency = "USD"
	}

	if c.Extraction.VesselName == nil && legacy.VesselName != nil {
		c.Extraction.VesselName = model.StringPtr(strings.TrimSpace(*legacy.VesselName))
	}
	if c.Extraction.RawText == "" {
		c.Extraction.RawText = legacy.FirstNotificationText
	}
	if c.Extraction.IncidentKeywords == nil {
		c.Extraction.IncidentKeywords = []string{}
	}
	if c.Extraction.Source == "" {
		c.Extraction.Source = model.SourceRules
	}

	for i, cv := range c.Classification.Covers {
		if t, ok := model.ParseCoverType(string(cv.Type)); ok {
			c.Classification.Covers[i].Type = t
		}
	}
	if c.Classification.BusinessRole == "" {
		c.Classification.BusinessRole = model.RoleUnclear
	}

	for i := range c.Actions {
		c.Actions[i].Status = model.ActionStatus(strings.ToUpper(strings.TrimSpace(string(c.Actions[i].Status))))
		if !c.Actions[i].Status.Valid() {
			c.Actions[i].Status = model.ActionOpen
		}
	}

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	return &c, nil
}

// DecodeClaims parses a JSON array of claim documents
func DecodeClaims(data []byte) ([]*model.Claim, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	out := make([]*model.Claim, 0, len(raws))
	for _, raw := range raws {
		c, err := DecodeClaim(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
