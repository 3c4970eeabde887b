package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/marincop/internal/model"
)

func sampleClaim() *model.Claim {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	vessel, imo := "MV Ocean Pearl", "9321456"
	remind := at.Add(24 * time.Hour)
	return &model.Claim{
		ID:             "c1",
		ClaimNumber:    "MC-NOVA-2026-0001",
		CreatedAt:      at,
		UpdatedAt:      at,
		ProgressStatus: model.ProgressNotificationReceived,
		Extraction:     model.Extraction{VesselName: &vessel, IMO: &imo},
		Classification: model.Classification{
			Covers:       []model.Cover{{Type: model.CoverPI, Confidence: 0.9}, {Type: model.CoverHM, Confidence: 0.6}},
			BusinessRole: model.RoleVesselOwner,
		},
		Actions: []model.Action{
			{ID: "a1", Title: "Create claim file and preserve evidence", OwnerRole: model.OwnerClaims, DueAt: at, Status: model.ActionOpen, ReminderAt: &remind},
			{ID: "a2", Title: "Track updates and maintain status log", OwnerRole: model.OwnerClaims, DueAt: at, Status: model.ActionDone},
		},
		Finance: model.FinanceState{Currency: "USD", ReserveEstimated: 12000, CashOut: 25000, RecoverableExpected: 25000, OutstandingRecovery: 25000},
	}
}

func TestClaimsXLSX(t *testing.T) {
	b, err := ClaimsXLSX([]*model.Claim{sampleClaim()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{ClaimsSheet, ActionsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ClaimsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, claimHeaders, rows[0])
	assert.Equal(t, "MC-NOVA-2026-0001", rows[1][0])
	assert.Equal(t, "MV Ocean Pearl", rows[1][1])
	assert.Equal(t, "P&I, H&M", rows[1][5])
	assert.Equal(t, "vessel_owner", rows[1][6])
	assert.Equal(t, "25000", rows[1][14])
	assert.Equal(t, "1", rows[1][15])

	actions, err := f.GetRows(ActionsSheet)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, "OPEN", actions[1][4])
	assert.Equal(t, "2026-03-15 09:30", actions[1][5])
	assert.Equal(t, "DONE", actions[2][4])
}

func TestClaimsXLSX_Empty(t *testing.T) {
	b, err := ClaimsXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(ClaimsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.xlsx")
	require.NoError(t, WriteFile(path, []*model.Claim{sampleClaim()}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue(ClaimsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "MC-NOVA-2026-0001", v)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
