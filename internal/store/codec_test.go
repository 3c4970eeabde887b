package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/marincop/internal/model"
)

const legacyDoc = `{
  "id": "5b1c",
  "claimNumber": "MC-NOVA-2025-0003",
  "company": "Nova Carriers",
  "createdAt": "2025-11-02T08:15:00.000Z",
  "createdBy": "ops",
  "vesselName": "MV Ocean Pearl",
  "firstNotificationText": "Contact with berth at Port Said",
  "progressStatus": "Notification Received",
  "extraction": {"summary": "Contact with berth", "vesselName": null},
  "classification": {"covers": [
    {"type": "H&M (Hull)", "confidence": 0.6, "reasoning": "Hull damage"},
    {"type": "Charterers Liability", "confidence": 0.4, "reasoning": "Charter"}
  ]},
  "actions": [
    {"id": "5b1c-A1", "title": "Create claim file and preserve evidence", "ownerRole": "Claims",
     "dueAt": "2025-11-02T08:15:00.000Z", "status": "open", "reminderAt": null, "notes": ""},
    {"id": "5b1c-A9", "title": "Notify relevant correspondents", "ownerRole": "Claims",
     "dueAt": "2025-11-03T08:15:00.000Z", "status": "done", "reminderAt": "2025-11-04T00:00:00Z"}
  ],
  "finance": {"currency": "usd", "reserve": "12,000", "paid": 25000, "deductible": 0,
              "recovered": 0, "outstanding": 999, "recoverable": 1},
  "files": []
}`

func TestDecodeClaim_Legacy(t *testing.T) {
	c, err := DecodeClaim([]byte(legacyDoc))
	require.NoError(t, err)

	require.NotNil(t, c.Extraction.VesselName)
	assert.Equal(t, "MV Ocean Pearl", *c.Extraction.VesselName)
	assert.Equal(t, "Contact with berth at Port Said", c.Extraction.RawText)
	assert.NotNil(t, c.Extraction.IncidentKeywords)
	assert.Equal(t, model.SourceRules, c.Extraction.Source)

	assert.Equal(t, []string{"H&M", "Charterers' Liability"}, c.Classification.CoverTypes())
	assert.Equal(t, model.RoleUnclear, c.Classification.BusinessRole)

	require.Len(t, c.Actions, 2)
	assert.Equal(t, model.ActionOpen, c.Actions[0].Status)
	assert.Equal(t, model.ActionDone, c.Actions[1].Status)
	require.NotNil(t, c.Actions[1].ReminderAt)

	f := c.Finance
	assert.Equal(t, "USD", f.Currency)
	assert.Equal(t, 12000.0, f.ReserveEstimated)
	assert.Equal(t, 25000.0, f.CashOut)
	assert.Equal(t, 25000.0, f.RecoverableExpected)
	assert.Equal(t, 25000.0, f.OutstandingRecovery)

	assert.True(t, c.UpdatedAt.Equal(c.CreatedAt))
}

func TestDecodeClaim_CurrentShapeRecomputesDerived(t *testing.T) {
	doc := `{"id":"x","createdAt":"2026-01-01T00:00:00Z",
	  "finance":{"currency":"USD","cashOut":100,"deductible":30,"recovered":10,
	             "recoverableExpected":5000,"outstandingRecovery":5000}}`

	c, err := DecodeClaim([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 70.0, c.Finance.RecoverableExpected)
	assert.Equal(t, 60.0, c.Finance.OutstandingRecovery)
}

func TestDecodeClaim_Invalid(t *testing.T) {
	_, err := DecodeClaim([]byte(`{"id": 12`))
	assert.Error(t, err)

	_, err = DecodeClaim([]byte(`{"id": "x", "actions": "none"}`))
	assert.Error(t, err)
}

func TestEncodeDecodeClaims(t *testing.T) {
	c := &model.Claim{ID: "a", ClaimNumber: "MC-NOVA-2026-0001"}
	b, err := EncodeClaim(c)
	require.NoError(t, err)

	all, err := DecodeClaims([]byte("[" + string(b) + "]"))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "MC-NOVA-2026-0001", all[0].ClaimNumber)
	assert.Equal(t, "USD", all[0].Finance.Currency)
}
