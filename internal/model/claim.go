package model

import "time"

// Claim is the root record for one marine incident
type Claim struct {
	ID             string           `json:"id"`
	ClaimNumber    string           `json:"claimNumber"`
	Company        string           `json:"company,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	CreatedBy      string           `json:"createdBy"`
	ProgressStatus string           `json:"progressStatus"`
	Extraction     Extraction       `json:"extraction"`
	Classification Classification   `json:"classification"`
	Actions        []Action         `json:"actions"`
	Finance        FinanceState     `json:"finance"`
	StatusLog      []StatusLogEntry `json:"statusLog"`
	AuditTrail     []AuditEntry     `json:"auditTrail"`
}

// ProgressNotificationReceived is the progress status of a freshly created claim
const ProgressNotificationReceived = "Notification Received"

// FindAction returns a pointer into c.Actions, or nil
func (c *Claim) FindAction(id string) *Action {
	for i := range c.Actions {
		if c.Actions[i].ID == id {
			return &c.Actions[i]
		}
	}
	return nil
}

// Audit appends an audit entry and bumps UpdatedAt
func (c *Claim) Audit(at time.Time, by string, action AuditAction, note string) {
	c.AuditTrail = append(c.AuditTrail, AuditEntry{At: at, By: by, Action: action, Note: note})
	c.UpdatedAt = at
}

// Extraction holds the structured facts derived from a first notification.
// Nullable fields are either nil or a trimmed, non-empty string.
type Extraction struct {
	RawText          string   `json:"rawText"`
	Summary          string   `json:"summary"`
	VesselName       *string  `json:"vesselName"`
	IMO              *string  `json:"imo"`
	EventDateText    *string  `json:"eventDateText"`
	LocationText     *string  `json:"locationText"`
	IncidentKeywords []string `json:"incidentKeywords"`
	CounterpartyText *string  `json:"counterpartyText"`

	// Populated by the oracle only
	IncidentType          *string  `json:"incidentType"`
	AllegedCause          *string  `json:"allegedCause"`
	PilotInvolved         *bool    `json:"pilotInvolved"`
	PollutionReported     *bool    `json:"pollutionReported"`
	InjuriesReported      *bool    `json:"injuriesReported"`
	ImmediateActionsTaken []string `json:"immediateActionsTaken"`
	MissingInfoToRequest  []string `json:"missingInfoToRequest"`

	Confidence float64          `json:"confidence"`
	Warnings   []string         `json:"warnings,omitempty"`
	Source     ExtractionSource `json:"source"`
}

// HasKeyword reports whether tag is in the keyword set
func (e Extraction) HasKeyword(tag string) bool {
	for _, k := range e.IncidentKeywords {
		if k == tag {
			return true
		}
	}
	return false
}

// ExtractionSource records which path produced an extraction or classification
type ExtractionSource string

const (
	SourceRules  ExtractionSource = "rules"
	SourceOracle ExtractionSource = "oracle"
)

// Classification is the ranked list of plausible covers
type Classification struct {
	Covers       []Cover          `json:"covers"`
	BusinessRole BusinessRole     `json:"businessRole,omitempty"`
	Source       ExtractionSource `json:"source,omitempty"`
}

// CoverTypes returns the cover types in rank order
func (c Classification) CoverTypes() []string {
	out := make([]string, 0, len(c.Covers))
	for _, cv := range c.Covers {
		out = append(out, string(cv.Type))
	}
	return out
}

// Has reports whether t is among the covers
func (c Classification) Has(t CoverType) bool {
	for _, cv := range c.Covers {
		if cv.Type == t {
			return true
		}
	}
	return false
}

// Cover is one candidate insurance cover with its confidence
type Cover struct {
	Type       CoverType `json:"type"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
}

// CoverType names an insurance cover
type CoverType string

const (
	CoverPI                  CoverType = "P&I"
	CoverHM                  CoverType = "H&M"
	CoverCharterersLiability CoverType = "Charterers' Liability"
	CoverCargo               CoverType = "Cargo"
	CoverFDD                 CoverType = "FD&D"
	CoverUnclear             CoverType = "Unclear / Needs Review"
)

// coverPriority breaks confidence ties; lower ranks first
var coverPriority = map[CoverType]int{
	CoverPI:                  0,
	CoverHM:                  1,
	CoverCharterersLiability: 2,
	CoverCargo:               3,
	CoverFDD:                 4,
	CoverUnclear:             5,
}

// Priority returns the tie-break rank of the cover type
func (t CoverType) Priority() int {
	if p, ok := coverPriority[t]; ok {
		return p
	}
	return len(coverPriority)
}

// BusinessRole is the claim owner's role relative to the vessel
type BusinessRole string

const (
	RoleVesselOwner BusinessRole = "vessel_owner"
	RoleCharterer   BusinessRole = "charterer"
	RoleUnclear     BusinessRole = "unclear"
)

// Action is a task on the claim
type Action struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	OwnerRole  OwnerRole    `json:"ownerRole"`
	DueAt      time.Time    `json:"dueAt"`
	Status     ActionStatus `json:"status"`
	ReminderAt *time.Time   `json:"reminderAt"`
	Notes      string       `json:"notes"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// OwnerRole is the team that owns an action
type OwnerRole string

const (
	OwnerClaims     OwnerRole = "Claims"
	OwnerOps        OwnerRole = "Ops"
	OwnerFinance    OwnerRole = "Finance"
	OwnerTechnical  OwnerRole = "Technical"
	OwnerChartering OwnerRole = "Chartering"
)

// ActionStatus is OPEN or DONE
type ActionStatus string

const (
	ActionOpen ActionStatus = "OPEN"
	ActionDone ActionStatus = "DONE"
)

// Valid reports whether s is a known status
func (s ActionStatus) Valid() bool {
	return s == ActionOpen || s == ActionDone
}

// FinanceState is the claim's financial exposure. RecoverableExpected and
// OutstandingRecovery are derived and recomputed on every read and write.
type FinanceState struct {
	Currency            string  `json:"currency"`
	ReserveEstimated    float64 `json:"reserveEstimated"`
	CashOut             float64 `json:"cashOut"`
	Deductible          float64 `json:"deductible"`
	Recovered           float64 `json:"recovered"`
	Notes               string  `json:"notes"`
	RecoverableExpected float64 `json:"recoverableExpected"`
	OutstandingRecovery float64 `json:"outstandingRecovery"`
}

// StatusLogEntry records a progress status change
type StatusLogEntry struct {
	At     time.Time `json:"at"`
	By     string    `json:"by"`
	Status string    `json:"status"`
	Note   string    `json:"note"`
}

// AuditEntry records a mutation of the claim
type AuditEntry struct {
	At     time.Time   `json:"at"`
	By     string      `json:"by"`
	Action AuditAction `json:"action"`
	Note   string      `json:"note"`
}

// AuditAction classifies an audit entry
type AuditAction string

const (
	AuditClaimCreated    AuditAction = "CLAIM_CREATED"
	AuditClassified      AuditAction = "CLASSIFIED"
	AuditStatusUpdated   AuditAction = "STATUS_UPDATED"
	AuditFinanceUpdated  AuditAction = "FINANCE_UPDATED"
	AuditActionUpdated   AuditAction = "ACTION_UPDATED"
	AuditReminderSnoozed AuditAction = "REMINDER_SNOOZED"
)
