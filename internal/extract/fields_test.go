package extract

import (
	"strings"
	"testing"
)

func strOrNil(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestFieldExtractor_CollisionScenario(t *testing.T) {
	e := NewFieldExtractor(nil)

	ex := e.Extract("MV Nova Star collided with a tug near Singapore, minor injuries reported")

	if got := strOrNil(ex.VesselName); got != "MV Nova Star" {
		t.Errorf("expected vessel 'MV Nova Star', got %q", got)
	}
	if ex.LocationText == nil || !strings.Contains(*ex.LocationText, "Singapore") {
		t.Errorf("expected location containing Singapore, got %q", strOrNil(ex.LocationText))
	}
	if !ex.HasKeyword(TagCollision) {
		t.Errorf("expected collision keyword, got %v", ex.IncidentKeywords)
	}
	if !ex.HasKeyword(TagInjury) {
		t.Errorf("expected injury keyword, got %v", ex.IncidentKeywords)
	}
	if ex.IMO != nil {
		t.Errorf("expected nil IMO, got %q", *ex.IMO)
	}
	if ex.EventDateText != nil {
		t.Errorf("expected nil event date, got %q", *ex.EventDateText)
	}
}

func TestFieldExtractor_LabeledNotification(t *testing.T) {
	e := NewFieldExtractor(nil)

	text := `Dear all,

Vessel: MV Ocean Pearl (IMO 9321456)
Date: 14 March 2026
Position: Singapore Eastern Anchorage
Charterer: Blue Ocean Trading Ltd

During discharge the vessel made contact with the jetty fender.
Some shell plating denting reported. No pollution observed.`

	ex := e.Extract(text)

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"vessel", strOrNil(ex.VesselName), "MV Ocean Pearl"},
		{"imo", strOrNil(ex.IMO), "9321456"},
		{"date", strOrNil(ex.EventDateText), "14 March 2026"},
		{"location", strOrNil(ex.LocationText), "Singapore Eastern Anchorage"},
		{"counterparty", strOrNil(ex.CounterpartyText), "Blue Ocean Trading Ltd"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.field, tt.want, tt.got)
		}
	}

	if !ex.HasKeyword(TagContact) {
		t.Errorf("expected contact keyword, got %v", ex.IncidentKeywords)
	}
	// "No pollution observed" still carries the word
	if !ex.HasKeyword(TagPollution) {
		t.Errorf("expected pollution keyword, got %v", ex.IncidentKeywords)
	}
}

func TestFieldExtractor_VesselRejection(t *testing.T) {
	e := NewFieldExtractor(nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "labeled prose falls through to prefix",
			text: "Vessel: incident report pending\nMV Coral Bay grounded off Batam",
			want: "MV Coral Bay",
		},
		{
			name: "overlong labeled value rejected",
			text: "Vessel: " + strings.Repeat("A", 70),
			want: "<nil>",
		},
		{
			name: "digits only rejected",
			text: "Ship: 12345",
			want: "<nil>",
		},
		{
			name: "first short line",
			text: "Nova Horizon\nWe regret to inform you the vessel grounded on 2026-01-04.",
			want: "Nova Horizon",
		},
		{
			name: "greeting line skipped",
			text: "Hello team\nengine failure reported overnight",
			want: "<nil>",
		},
		{
			name: "M/V prefix",
			text: "Report from m/v Atlantic Star regarding cargo",
			want: "M/V Atlantic Star",
		},
		{
			name: "tonnage is not a tanker prefix",
			text: "Discharging 25000 MT Steel Coils at Qingdao when the gantry failed",
			want: "<nil>",
		},
		{
			name: "tonnage with thousands separator",
			text: "Vessel loaded 42,000 MT Wheat at Rouen, sailing tomorrow",
			want: "<nil>",
		},
		{
			name: "tonnage skipped before real name",
			text: "Discharged 25000 MT Steel Coils from MV Nova Star at Qingdao",
			want: "MV Nova Star",
		},
		{
			name: "mount is not a prefix",
			text: "Anchored in the lee of Mt Fuji, awaiting orders from owners",
			want: "<nil>",
		},
		{
			name: "placeholder vessel falls through",
			text: "Vessel: TBA\nMV Coral Bay grounded off Batam",
			want: "MV Coral Bay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := e.Extract(tt.text)
			if got := strOrNil(ex.VesselName); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFieldExtractor_IMO(t *testing.T) {
	e := NewFieldExtractor(nil)

	tests := []struct {
		text string
		want string
	}{
		{"IMO: 9123456", "9123456"},
		{"imo no. 9123456", "9123456"},
		{"IMO#9123456 reported", "9123456"},
		{"IMO 91234567", "<nil>"},
		{"IMO 912345", "<nil>"},
		{"reference 9123456", "<nil>"},
	}

	for _, tt := range tests {
		ex := e.Extract(tt.text)
		if got := strOrNil(ex.IMO); got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestFieldExtractor_EventDate(t *testing.T) {
	e := NewFieldExtractor(nil)

	tests := []struct {
		text string
		want string
	}{
		{"Incident on 3rd Feb 2026 at 0400LT", "3rd Feb 2026"},
		{"Occurred 2026-02-03, reported 5 February 2026", "2026-02-03"},
		{"Reported 5 February 2026 for event of 2026-02-03", "5 February 2026"},
		{"Happened 45 March 2026", "<nil>"},
		{"Happened 10 Smarch 2026", "<nil>"},
		{"no date here", "<nil>"},
	}

	for _, tt := range tests {
		ex := e.Extract(tt.text)
		if got := strOrNil(ex.EventDateText); got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestFieldExtractor_Location(t *testing.T) {
	e := NewFieldExtractor(nil)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled port", "Port: Rotterdam\ncontact with quay", "Rotterdam"},
		{"preposition", "vessel grounded off Cape Town during storm", "Cape Town"},
		{"month is not a place", "happened in March near Fujairah", "Fujairah"},
		{"anchorage last resort", "Anchored at 0300. Vessel waiting Kuala Tanjung Anchorage", "Kuala Tanjung Anchorage"},
		{"none", "engine breakdown, drifting", "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := e.Extract(tt.text)
			if got := strOrNil(ex.LocationText); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFieldExtractor_NeverEmptyStrings(t *testing.T) {
	e := NewFieldExtractor(nil)

	inputs := []string{
		"",
		"   \n\t  ",
		"Vessel:   \nIMO:\nPosition: \n",
		"<html><body><script>var x=1;</script></body></html>",
		strings.Repeat("x", 50000),
		"Ship: ???",
	}

	for _, in := range inputs {
		ex := e.Extract(in)
		for name, p := range map[string]*string{
			"vessel":       ex.VesselName,
			"imo":          ex.IMO,
			"date":         ex.EventDateText,
			"location":     ex.LocationText,
			"counterparty": ex.CounterpartyText,
		} {
			if p != nil && (*p == "" || strings.TrimSpace(*p) != *p) {
				t.Errorf("input %.20q: %s must be nil or trimmed non-empty, got %q", in, name, *p)
			}
		}
		if ex.IncidentKeywords == nil {
			t.Errorf("input %.20q: keywords must not be nil", in)
		}
	}
}

func TestMatchKeywords_CanonicalTags(t *testing.T) {
	tags := MatchKeywords(DefaultLexicon, "Main engine breakdown followed by FIRE; cargo damage from water ingress. Fire again.")

	want := []string{TagFire, TagCargoDamage, TagMachinery, TagFlooding}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], tags[i])
		}
	}
}

func TestMatchKeywords_BerthIsNotContact(t *testing.T) {
	tags := MatchKeywords(DefaultLexicon, "cargo hold sustained wet damage at berth")
	for _, tag := range tags {
		if tag == TagContact {
			t.Errorf("berth alone should not tag contact: %v", tags)
		}
	}
}

func TestMatchKeywords_WordStartsOnly(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		present []string
		absent  []string
	}{
		{"engine overheating", "Main engine overheating, vessel drifting off Fujairah", []string{TagMachinery}, []string{TagCargoDamage}},
		{"bunker contamination", "Bunker contamination found after stemming at Singapore", nil, []string{TagCargoDamage}},
		{"moored at quay", "Vessel moored alongside the quay awaiting pilot", nil, []string{TagContact}},
		{"berthed at jetty", "Vessel berthed at jetty no. 3, pier 4 closed for works", nil, []string{TagContact}},
		{"water shortage", "Crew reported a shortage of fresh water", nil, []string{TagCargoDamage}},
		{"cargo heating", "Coal cargo heating detected in hold 2", []string{TagCargoDamage}, nil},
		{"struck the quay", "Vessel struck the quay while berthing", []string{TagContact}, nil},
		{"contact with jetty", "Vessel made contact with the jetty", []string{TagContact}, nil},
		{"cargo shortage", "Receivers allege cargo shortage of 120 mt", []string{TagCargoDamage}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := MatchKeywords(DefaultLexicon, tt.text)
			has := make(map[string]bool)
			for _, tag := range tags {
				has[tag] = true
			}
			for _, want := range tt.present {
				if !has[want] {
					t.Errorf("expected %q in %v", want, tags)
				}
			}
			for _, unwanted := range tt.absent {
				if has[unwanted] {
					t.Errorf("did not expect %q in %v", unwanted, tags)
				}
			}
		})
	}
}

func TestFieldExtractor_PlaceholderLocation(t *testing.T) {
	e := NewFieldExtractor(nil)

	ex := e.Extract("Position: unknown\nPlease advise next steps, crew safe, awaiting survey")
	if ex.LocationText != nil {
		t.Errorf("expected nil location for placeholder, got %q", *ex.LocationText)
	}
}

func TestIsPlaceholder(t *testing.T) {
	for _, s := range []string{"", "  ", "unknown", "Unknown", "TBA", "n/a", "N/A", "tbc", "Not  Known", "null"} {
		if !IsPlaceholder(s) {
			t.Errorf("IsPlaceholder(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"Rotterdam", "MV Unknown Star", "TBA Shipping Ltd"} {
		if IsPlaceholder(s) {
			t.Errorf("IsPlaceholder(%q) = true, want false", s)
		}
	}
}
