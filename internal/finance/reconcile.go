package finance

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/marincop/internal/model"
)

// Patch is a partial finance update. Keys use the canonical JSON names;
// legacy aliases are resolved on merge.
type Patch map[string]any

// Canonical patch keys
const (
	KeyCurrency         = "currency"
	KeyReserveEstimated = "reserveEstimated"
	KeyCashOut          = "cashOut"
	KeyDeductible       = "deductible"
	KeyRecovered        = "recovered"
	KeyNotes            = "notes"
)

var aliases = map[string]string{
	"paid":              KeyCashOut,
	"cashout":           KeyCashOut,
	"cash_out":          KeyCashOut,
	"reserve":           KeyReserveEstimated,
	"reserve_estimated": KeyReserveEstimated,
	"reserveestimated":  KeyReserveEstimated,
	"deductible":        KeyDeductible,
	"recovered":         KeyRecovered,
	"currency":          KeyCurrency,
	"notes":             KeyNotes,
}

// derived keys are never accepted as input
var derived = map[string]bool{
	"recoverableexpected":  true,
	"recoverable_expected": true,
	"recoverable":          true,
	"outstandingrecovery":  true,
	"outstanding_recovery": true,
	"outstanding":          true,
}

// CanonicalKey resolves an input key to its canonical name. Derived and
// unknown keys return "".
func CanonicalKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if derived[k] {
		return ""
	}
	if c, ok := aliases[k]; ok {
		return c
	}
	return ""
}

// Reconcile merges patch into current and recomputes the derived fields.
// Present keys overwrite, absent keys keep the prior value, and invalid
// numbers become 0.
func Reconcile(current model.FinanceState, patch Patch) model.FinanceState {
	next := current

	for _, key := range orderedKeys(patch) {
		raw := patch[key]
		switch CanonicalKey(key) {
		case KeyCurrency:
			if s := strings.TrimSpace(coerceString(raw)); s != "" {
				next.Currency = strings.ToUpper(s)
			}
		case KeyNotes:
			next.Notes = coerceString(raw)
		case KeyReserveEstimated:
			next.ReserveEstimated = CoerceNumber(raw)
		case KeyCashOut:
			next.CashOut = CoerceNumber(raw)
		case KeyDeductible:
			next.Deductible = CoerceNumber(raw)
		case KeyRecovered:
			next.Recovered = CoerceNumber(raw)
		}
	}

	return Recompute(next)
}

// orderedKeys sorts patch keys so that canonical spellings are applied after
// their aliases and win when both are present.
func orderedKeys(patch Patch) []string {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := CanonicalKey(keys[i]) == keys[i], CanonicalKey(keys[j]) == keys[j]
		if ci != cj {
			return !ci
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Recompute derives recoverable and outstanding amounts from the inputs
func Recompute(f model.FinanceState) model.FinanceState {
	f.ReserveEstimated = finite(f.ReserveEstimated)
	f.CashOut = finite(f.CashOut)
	f.Deductible = finite(f.Deductible)
	f.Recovered = finite(f.Recovered)

	f.RecoverableExpected = math.Max(0, f.CashOut-f.Deductible)
	f.OutstandingRecovery = math.Max(0, f.RecoverableExpected-f.Recovered)
	return f
}

// ReconcileClaim applies patch to the claim's finance state and records an
// audit entry with the resulting figures.
func ReconcileClaim(c *model.Claim, patch Patch, by string, at time.Time) model.FinanceState {
	c.Finance = Reconcile(c.Finance, patch)
	c.Audit(at, by, model.AuditFinanceUpdated, AuditNote(c.Finance))
	return c.Finance
}

// AuditNote summarizes finance figures for the audit trail
func AuditNote(f model.FinanceState) string {
	return fmt.Sprintf("Finance updated (reserve=%s, cashOut=%s, recovered=%s, outstanding=%s)",
		formatAmount(f.ReserveEstimated), formatAmount(f.CashOut),
		formatAmount(f.Recovered), formatAmount(f.OutstandingRecovery))
}

// Default returns the finance state of a new claim
func Default(currency string) model.FinanceState {
	if currency == "" {
		currency = "USD"
	}
	return Recompute(model.FinanceState{Currency: currency})
}

// CoerceNumber converts patch values to a finite float, 0 on invalid input
func CoerceNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		s = strings.ReplaceAll(s, "_", "")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	return finite(f)
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
