package actions

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/marincop/internal/model"
)

// Template is an action before it is scheduled on a claim
type Template struct {
	Title string
	Owner model.OwnerRole
	Due   time.Duration
}

const day = 24 * time.Hour

// Baseline actions apply to every claim
var Baseline = []Template{
	{"Create claim file and preserve evidence", model.OwnerClaims, 0},
	{"Confirm cover(s) and notify relevant insurers/club", model.OwnerClaims, 0},
	{"Collect supporting documents (log extracts, photos, reports)", model.OwnerOps, day},
	{"Appoint / confirm surveyor (if required)", model.OwnerClaims, day},
	{"Establish initial reserve (estimate) and deductible impact", model.OwnerFinance, 2 * day},
	{"Track updates and maintain status log", model.OwnerClaims, 0},
}

// ByCover lists follow-up actions per cover type
var ByCover = map[model.CoverType][]Template{
	model.CoverPI: {
		{"Identify third-party involvement and liability exposure", model.OwnerClaims, day},
		{"Obtain statements (Master/crew) and incident report", model.OwnerOps, day},
		{"Notify correspondents / local agents if required", model.OwnerClaims, day},
	},
	model.CoverHM: {
		{"Confirm class involvement and arrange class attendance (if required)", model.OwnerTechnical, day},
		{"Collect repair estimates / yard quotation", model.OwnerTechnical, 3 * day},
		{"Confirm H&M insurer notification and claims handling instructions", model.OwnerClaims, day},
		{"Appoint / confirm surveyor (if required)", model.OwnerTechnical, day},
	},
	model.CoverCargo: {
		{"Collect cargo documents (B/L, mate's receipt, tally, condition)", model.OwnerOps, day},
		{"Mitigate loss and preserve damaged cargo evidence", model.OwnerOps, 0},
		{"Arrange joint cargo survey", model.OwnerOps, day},
		{"Obtain statements (master/crew) and incident report", model.OwnerOps, day},
	},
	model.CoverCharterersLiability: {
		{"Extract charterparty clause highlights relevant to liability/indemnities", model.OwnerChartering, day},
		{"Notify charterers' liability insurer/handlers with preliminary position", model.OwnerChartering, day},
	},
	model.CoverFDD: {
		{"Brief FD&D club on dispute and preserve correspondence", model.OwnerClaims, day},
		{"Confirm time bars and contractual notice deadlines", model.OwnerChartering, day},
	},
	model.CoverUnclear: {
		{"Review notification and request missing information", model.OwnerClaims, 0},
	},
}

// Planner turns a classification into a starter task list
type Planner struct {
	baseline []Template
	byCover  map[model.CoverType][]Template
	newID    func() string
}

// NewPlanner creates a planner with the default templates
func NewPlanner() *Planner {
	return &Planner{
		baseline: Baseline,
		byCover:  ByCover,
		newID:    uuid.NewString,
	}
}

// WithIDGenerator replaces the action id source
func (p *Planner) WithIDGenerator(newID func() string) *Planner {
	p.newID = newID
	return p
}

// Plan returns the baseline actions followed by the follow-ups of each cover,
// in rank order. Titles are unique case-insensitively; the first occurrence
// wins, so baseline actions win over cover-specific ones.
func (p *Planner) Plan(cl model.Classification, createdAt time.Time) []model.Action {
	templates := append([]Template{}, p.baseline...)
	for _, cv := range cl.Covers {
		templates = append(templates, p.byCover[cv.Type]...)
	}

	out := make([]model.Action, 0, len(templates))
	seen := make(map[string]bool, len(templates))
	for _, tpl := range templates {
		key := strings.ToLower(strings.TrimSpace(tpl.Title))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, model.Action{
			ID:         p.newID(),
			Title:      tpl.Title,
			OwnerRole:  tpl.Owner,
			DueAt:      createdAt.Add(tpl.Due),
			Status:     model.ActionOpen,
			ReminderAt: nil,
			Notes:      "",
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		})
	}

	return out
}
