package finance

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/marincop/internal/model"
)

func TestReconcile_DeductibleExceedsCashOut(t *testing.T) {
	got := Reconcile(Default("USD"), Patch{"cashOut": 12000, "deductible": 25000, "recovered": 0})

	if got.RecoverableExpected != 0 {
		t.Errorf("expected recoverable 0, got %v", got.RecoverableExpected)
	}
	if got.OutstandingRecovery != 0 {
		t.Errorf("expected outstanding 0, got %v", got.OutstandingRecovery)
	}
}

func TestReconcile_Formula(t *testing.T) {
	tests := []struct {
		name        string
		patch       Patch
		recoverable float64
		outstanding float64
	}{
		{"simple", Patch{"cashOut": 100000, "deductible": 25000, "recovered": 10000}, 75000, 65000},
		{"over-recovered", Patch{"cashOut": 50000, "deductible": 10000, "recovered": 60000}, 40000, 0},
		{"negative inputs", Patch{"cashOut": -5, "deductible": -10, "recovered": -3}, 5, 8},
		{"strings", Patch{"cashOut": " 1,500.50 ", "deductible": "500", "recovered": "abc"}, 1000.5, 1000.5},
		{"json numbers", Patch{"cashOut": json.Number("300"), "deductible": json.Number("x")}, 300, 300},
		{"nan and inf", Patch{"cashOut": math.Inf(1), "deductible": math.NaN()}, 0, 0},
		{"unsupported type", Patch{"cashOut": []int{1}, "deductible": nil}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(model.FinanceState{}, tt.patch)
			if got.RecoverableExpected != tt.recoverable {
				t.Errorf("recoverable: expected %v, got %v", tt.recoverable, got.RecoverableExpected)
			}
			if got.OutstandingRecovery != tt.outstanding {
				t.Errorf("outstanding: expected %v, got %v", tt.outstanding, got.OutstandingRecovery)
			}
			want := math.Max(0, math.Max(0, got.CashOut-got.Deductible)-got.Recovered)
			if got.OutstandingRecovery != want {
				t.Errorf("invariant broken: %+v", got)
			}
		})
	}
}

func TestReconcile_MergePolicy(t *testing.T) {
	current := Reconcile(model.FinanceState{Currency: "USD"}, Patch{
		"reserveEstimated": 80000,
		"cashOut":          40000,
		"deductible":       10000,
		"notes":            "initial",
	})

	got := Reconcile(current, Patch{"recovered": 5000})

	if got.ReserveEstimated != 80000 || got.CashOut != 40000 || got.Deductible != 10000 {
		t.Errorf("absent fields must keep prior values: %+v", got)
	}
	if got.Notes != "initial" || got.Currency != "USD" {
		t.Errorf("unexpected text fields: %+v", got)
	}
	if got.OutstandingRecovery != 25000 {
		t.Errorf("expected outstanding 25000, got %v", got.OutstandingRecovery)
	}
}

func TestReconcile_DerivedOverridesDiscarded(t *testing.T) {
	got := Reconcile(model.FinanceState{}, Patch{
		"cashOut":             10000,
		"recoverableExpected": 999999,
		"outstandingRecovery": 999999,
		"outstanding":         1,
		"recoverable":         1,
	})

	if got.RecoverableExpected != 10000 || got.OutstandingRecovery != 10000 {
		t.Errorf("derived fields must be recomputed, got %+v", got)
	}
}

func TestReconcile_Aliases(t *testing.T) {
	got := Reconcile(model.FinanceState{}, Patch{"paid": 3000, "reserve": "7000", "currency": "eur"})
	if got.CashOut != 3000 || got.ReserveEstimated != 7000 || got.Currency != "EUR" {
		t.Errorf("aliases not resolved: %+v", got)
	}

	got = Reconcile(model.FinanceState{}, Patch{"paid": 1, "cashOut": 2})
	if got.CashOut != 2 {
		t.Errorf("canonical key should win over alias, got %v", got.CashOut)
	}
}

func TestReconcileClaim_AppendsAudit(t *testing.T) {
	c := &model.Claim{Finance: Default("USD")}
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	fs := ReconcileClaim(c, Patch{"reserveEstimated": 50000, "cashOut": 30000, "deductible": 10000, "recovered": 2500}, "ops@nova", at)

	if fs.OutstandingRecovery != 17500 {
		t.Errorf("expected outstanding 17500, got %v", fs.OutstandingRecovery)
	}
	if len(c.AuditTrail) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(c.AuditTrail))
	}
	entry := c.AuditTrail[0]
	if entry.Action != model.AuditFinanceUpdated || entry.By != "ops@nova" || !entry.At.Equal(at) {
		t.Errorf("unexpected audit entry: %+v", entry)
	}
	for _, want := range []string{"reserve=50000", "recovered=2500", "outstanding=17500"} {
		if !strings.Contains(entry.Note, want) {
			t.Errorf("expected %q in note %q", want, entry.Note)
		}
	}
	if !c.UpdatedAt.Equal(at) {
		t.Errorf("expected UpdatedAt bumped")
	}
}
