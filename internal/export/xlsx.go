// Package export writes the claims register as an XLSX workbook.
package export

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/marincop/internal/model"
)

// Sheet names
const (
	ClaimsSheet  = "Claims"
	ActionsSheet = "Actions"
)

var claimHeaders = []string{
	"Claim Number",
	"Vessel",
	"IMO",
	"Event Date",
	"Location",
	"Covers",
	"Role",
	"Progress",
	"Currency",
	"Reserve",
	"Cash Out",
	"Deductible",
	"Recovered",
	"Recoverable",
	"Outstanding",
	"Open Actions",
	"Created",
	"Updated",
}

var actionHeaders = []string{
	"Claim Number",
	"Action",
	"Owner",
	"Due",
	"Status",
	"Reminder",
	"Notes",
}

// ClaimsXLSX renders one row per claim on the Claims sheet and one row per
// action on the Actions sheet
func ClaimsXLSX(claims []*model.Claim) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ClaimsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ActionsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	writeRow(f, ClaimsSheet, 1, toAny(claimHeaders))
	writeRow(f, ActionsSheet, 1, toAny(actionHeaders))

	claimRow, actionRow := 2, 2
	for _, c := range claims {
		open := 0
		for _, a := range c.Actions {
			if a.Status == model.ActionOpen {
				open++
			}
			writeRow(f, ActionsSheet, actionRow, []any{
				c.ClaimNumber,
				a.Title,
				string(a.OwnerRole),
				formatTime(a.DueAt),
				string(a.Status),
				formatTimePtr(a.ReminderAt),
				truncate(a.Notes, 140),
			})
			actionRow++
		}

		ex, fin := c.Extraction, c.Finance
		writeRow(f, ClaimsSheet, claimRow, []any{
			c.ClaimNumber,
			deref(ex.VesselName),
			deref(ex.IMO),
			deref(ex.EventDateText),
			deref(ex.LocationText),
			strings.Join(c.Classification.CoverTypes(), ", "),
			string(c.Classification.BusinessRole),
			c.ProgressStatus,
			fin.Currency,
			fin.ReserveEstimated,
			fin.CashOut,
			fin.Deductible,
			fin.Recovered,
			fin.RecoverableExpected,
			fin.OutstandingRecovery,
			open,
			formatTime(c.CreatedAt),
			formatTime(c.UpdatedAt),
		})
		claimRow++
	}

	_ = f.SetColWidth(ClaimsSheet, "A", "A", 20) // claim number
	_ = f.SetColWidth(ClaimsSheet, "B", "B", 24) // vessel
	_ = f.SetColWidth(ClaimsSheet, "E", "F", 32) // location, covers
	_ = f.SetColWidth(ClaimsSheet, "J", "O", 14) // amounts
	_ = f.SetColWidth(ActionsSheet, "A", "A", 20)
	_ = f.SetColWidth(ActionsSheet, "B", "B", 64)
	_ = f.SetColWidth(ActionsSheet, "G", "G", 48)

	if idx, err := f.GetSheetIndex(ClaimsSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders claims to path
func WriteFile(path string, claims []*model.Claim) error {
	b, err := ClaimsXLSX(claims)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
