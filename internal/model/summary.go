package model

import "time"

// ClaimSummary is the register row for one claim
type ClaimSummary struct {
	ID                  string    `json:"id"`
	ClaimNumber         string    `json:"claimNumber"`
	VesselName          string    `json:"vesselName"`
	EventDateText       string    `json:"eventDateText"`
	LocationText        string    `json:"locationText"`
	ProgressStatus      string    `json:"progressStatus"`
	Covers              []string  `json:"covers"`
	Currency            string    `json:"currency"`
	ReserveEstimated    float64   `json:"reserveEstimated"`
	Recovered           float64   `json:"recovered"`
	OutstandingRecovery float64   `json:"outstandingRecovery"`
	OpenActions         int       `json:"openActions"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Summarize builds the register row for c
func (c *Claim) Summarize() ClaimSummary {
	open := 0
	for _, a := range c.Actions {
		if a.Status == ActionOpen {
			open++
		}
	}
	return ClaimSummary{
		ID:                  c.ID,
		ClaimNumber:         c.ClaimNumber,
		VesselName:          deref(c.Extraction.VesselName),
		EventDateText:       deref(c.Extraction.EventDateText),
		LocationText:        deref(c.Extraction.LocationText),
		ProgressStatus:      c.ProgressStatus,
		Covers:              c.Classification.CoverTypes(),
		Currency:            c.Finance.Currency,
		ReserveEstimated:    c.Finance.ReserveEstimated,
		Recovered:           c.Finance.Recovered,
		OutstandingRecovery: c.Finance.OutstandingRecovery,
		OpenActions:         open,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// DueReminder is an open action whose reminder has come due
type DueReminder struct {
	ClaimID     string    `json:"claimId"`
	ClaimNumber string    `json:"claimNumber"`
	VesselName  string    `json:"vesselName"`
	ActionID    string    `json:"actionId"`
	Title       string    `json:"title"`
	OwnerRole   OwnerRole `json:"ownerRole"`
	ReminderAt  time.Time `json:"reminderAt"`
	DueAt       time.Time `json:"dueAt"`
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
