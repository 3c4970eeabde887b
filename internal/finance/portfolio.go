package finance

import (
	"sort"
	"strings"

	"github.com/ppiankov/marincop/internal/model"
)

// Totals are the summed finance figures of the claims booked in one currency
type Totals struct {
	Currency            string  `json:"currency"`
	Claims              int     `json:"claims"`
	CashOut             float64 `json:"cashOut"`
	Recovered           float64 `json:"recovered"`
	OutstandingRecovery float64 `json:"outstandingRecovery"`
}

// Portfolio is the aggregate view over a set of claims. Amounts are never
// converted: Totals holds one entry per currency, and the vessel and claim
// highlights compare amounts as booked.
type Portfolio struct {
	Claims int      `json:"claims"`
	Totals []Totals `json:"totals"`

	TopCover      string `json:"topCover,omitempty"`
	TopCoverCount int    `json:"topCoverCount,omitempty"`

	TopVessel         string  `json:"topVessel,omitempty"`
	TopVesselCurrency string  `json:"topVesselCurrency,omitempty"`
	TopVesselCashOut  float64 `json:"topVesselCashOut,omitempty"`

	LargestClaim    string  `json:"largestClaim,omitempty"`
	LargestVessel   string  `json:"largestVessel,omitempty"`
	LargestCurrency string  `json:"largestCurrency,omitempty"`
	LargestCashOut  float64 `json:"largestCashOut,omitempty"`
}

type vesselKey struct {
	name     string
	currency string
}

// Aggregate sums cash-out, recoveries and outstanding recovery per currency
// and picks the most frequent cover, the vessel with the highest cash-out
// and the single largest claim. Ties break alphabetically. Claims without a
// vessel name or without cash-out do not compete for the highlights.
func Aggregate(claims []*model.Claim) Portfolio {
	p := Portfolio{Totals: []Totals{}}
	byCurrency := make(map[string]*Totals)
	coverCounts := make(map[string]int)
	vesselCash := make(map[vesselKey]float64)

	for _, c := range claims {
		if c == nil {
			continue
		}
		p.Claims++
		f := Recompute(c.Finance)
		currency := strings.ToUpper(strings.TrimSpace(f.Currency))

		t, ok := byCurrency[currency]
		if !ok {
			t = &Totals{Currency: currency}
			byCurrency[currency] = t
		}
		t.Claims++
		t.CashOut += f.CashOut
		t.Recovered += f.Recovered
		t.OutstandingRecovery += f.OutstandingRecovery

		for _, cv := range c.Classification.CoverTypes() {
			coverCounts[cv]++
		}

		if f.CashOut <= 0 {
			continue
		}
		vessel := ""
		if c.Extraction.VesselName != nil {
			vessel = strings.TrimSpace(*c.Extraction.VesselName)
		}
		if vessel != "" {
			vesselCash[vesselKey{vessel, currency}] += f.CashOut
		}
		if f.CashOut > p.LargestCashOut || (f.CashOut == p.LargestCashOut && c.ClaimNumber < p.LargestClaim) {
			p.LargestClaim = c.ClaimNumber
			p.LargestVessel = vessel
			p.LargestCurrency = currency
			p.LargestCashOut = f.CashOut
		}
	}

	for _, t := range byCurrency {
		p.Totals = append(p.Totals, *t)
	}
	sort.Slice(p.Totals, func(i, j int) bool { return p.Totals[i].Currency < p.Totals[j].Currency })

	for cover, n := range coverCounts {
		if n > p.TopCoverCount || (n == p.TopCoverCount && cover < p.TopCover) {
			p.TopCover, p.TopCoverCount = cover, n
		}
	}

	for k, cash := range vesselCash {
		if cash > p.TopVesselCashOut || (cash == p.TopVesselCashOut && k.name < p.TopVessel) {
			p.TopVessel, p.TopVesselCurrency, p.TopVesselCashOut = k.name, k.currency, cash
		}
	}

	return p
}
