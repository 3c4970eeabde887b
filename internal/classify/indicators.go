package classify

import (
	"github.com/ppiankov/marincop/internal/extract"
	"github.com/ppiankov/marincop/internal/model"
)

// Indicator is one additive rule. It fires when the extraction carries any of
// Tags or the lower-cased text contains any of Terms.
type Indicator struct {
	Cover  model.CoverType
	Name   string
	Tags   []string
	Terms  []string
	Weight float64
	Reason string
}

// chartererTerms signal that the claim owner is acting as charterer
var chartererTerms = []string{
	"charterer", "time charter", "voyage charter", "bareboat charter", "under charter",
	"chartered", "charter party", "charterparty", "off-hire", "offhire",
}

// ownerTerms signal that the claim owner is the vessel owner
var ownerTerms = []string{
	"shipowner", "ship owner", "owners", "as owner", "registered owner",
	"our vessel", "owned vessel", "owner's", "owners'",
}

// DefaultIndicators is the reference rule table
var DefaultIndicators = []Indicator{
	// P&I
	{
		Cover: model.CoverPI, Name: "third-party-contact",
		Tags:   []string{extract.TagCollision, extract.TagContact},
		Terms:  []string{"third party", "third-party"},
		Weight: 0.45,
		Reason: "Collision/contact suggests third-party property liabilities (typical P&I).",
	},
	{
		Cover: model.CoverPI, Name: "pollution",
		Tags:   []string{extract.TagPollution},
		Weight: 0.45,
		Reason: "Pollution/spill exposure is primarily P&I.",
	},
	{
		Cover: model.CoverPI, Name: "injury",
		Tags:   []string{extract.TagInjury},
		Weight: 0.45,
		Reason: "Crew/third-party injury or fatality exposure is primarily P&I.",
	},
	{
		Cover: model.CoverPI, Name: "operational-parties",
		Terms:  []string{"pilot", "tug", "stevedore", "mooring", "agent"},
		Weight: 0.15,
		Reason: "Operational third-party involvement often triggers P&I handling.",
	},
	{
		Cover: model.CoverPI, Name: "liability",
		Terms:  []string{"liability claim", "claim against", "held liable", "wreck removal"},
		Weight: 0.2,
		Reason: "Liability claim or wreck removal language points to P&I.",
	},

	// H&M
	{
		Cover: model.CoverHM, Name: "hull-damage",
		Terms:  []string{"hull", "shell plating", "denting", "dented", "propeller", "rudder", "damage to vessel", "damage to the vessel", "bottom damage"},
		Weight: 0.45,
		Reason: "Physical damage to vessel hull or appendages suggests H&M.",
	},
	{
		Cover: model.CoverHM, Name: "machinery",
		Tags:   []string{extract.TagMachinery},
		Weight: 0.4,
		Reason: "Machinery breakdown or damage is an H&M peril.",
	},
	{
		Cover: model.CoverHM, Name: "grounding",
		Tags:   []string{extract.TagGrounding},
		Weight: 0.45,
		Reason: "Grounding often involves hull damage (H&M) and liabilities (P&I).",
	},
	{
		Cover: model.CoverHM, Name: "fire",
		Tags:   []string{extract.TagFire},
		Weight: 0.35,
		Reason: "Fire/explosion frequently results in vessel damage (H&M).",
	},
	{
		Cover: model.CoverHM, Name: "flooding",
		Tags:   []string{extract.TagFlooding},
		Weight: 0.35,
		Reason: "Water ingress threatens the vessel itself (H&M).",
	},
	{
		Cover: model.CoverHM, Name: "collision-damage",
		Tags:   []string{extract.TagCollision, extract.TagContact},
		Weight: 0.25,
		Reason: "Collision/contact may also damage the insured vessel (H&M).",
	},
	{
		Cover: model.CoverHM, Name: "repairs",
		Terms:  []string{"repair", "drydock", "dry dock", "dry-dock", "shipyard"},
		Weight: 0.2,
		Reason: "Repair or drydocking references point to hull claim handling.",
	},

	// Cargo
	{
		Cover: model.CoverCargo, Name: "cargo-damage",
		Tags:   []string{extract.TagCargoDamage},
		Weight: 0.5,
		Reason: "Cargo damage/shortage indicators suggest cargo-related claim handling.",
	},
	{
		Cover: model.CoverCargo, Name: "commodity-hold",
		Terms:  []string{"cargo hold", "hatch", "grain", "coal", "steel coil", "pulp", "clinker", "container", "reefer"},
		Weight: 0.2,
		Reason: "Commodity/hold-related incident hints at cargo interest involvement.",
	},
	{
		Cover: model.CoverCargo, Name: "cargo-interests",
		Terms:  []string{"bill of lading", "b/l", "receivers", "shippers", "cargo claim"},
		Weight: 0.15,
		Reason: "Cargo interests or transport documents are referenced.",
	},

	// Charterers' Liability
	{
		Cover: model.CoverCharterersLiability, Name: "charterer-role",
		Terms:  chartererTerms,
		Weight: 0.5,
		Reason: "Text indicates charterer-related responsibilities/liabilities.",
	},
	{
		Cover: model.CoverCharterersLiability, Name: "employment",
		Terms:  []string{"unsafe port", "unsafe berth", "employment orders", "berth nomination"},
		Weight: 0.35,
		Reason: "Unsafe port/berth or employment orders can trigger charterers' liability exposure.",
	},

	// FD&D
	{
		Cover: model.CoverFDD, Name: "dispute",
		Terms:  []string{"dispute", "arbitration", "lawyer", "litigation", "breach", "deny liability", "denied liability", "denies liability", "legal action"},
		Weight: 0.45,
		Reason: "Dispute or legal proceedings suggest FD&D support.",
	},
	{
		Cover: model.CoverFDD, Name: "commercial",
		Terms:  []string{"demurrage", "despatch", "unpaid freight", "unpaid hire", "freight claim"},
		Weight: 0.3,
		Reason: "Freight, hire or demurrage claims fall under FD&D.",
	},
}

// Candidates is the evaluated cover set in tie-break order
var Candidates = []model.CoverType{
	model.CoverPI,
	model.CoverHM,
	model.CoverCharterersLiability,
	model.CoverCargo,
	model.CoverFDD,
}
