package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/marincop/internal/cache"
	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/worker"
)

// fakeProvider replays a canned reply and counts calls
type fakeProvider struct {
	content string
	err     error
	calls   int
	lastReq CompletionRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) IsAvailable(context.Context) bool { return true }

func (f *fakeProvider) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &CompletionResponse{Content: f.content, Model: "fake-1"}, nil
}

const extractionReplyJSON = "```json\n" + `{
  "summary": "MV Ocean Pearl contacted the berth at Singapore.",
  "vesselName": "MV Ocean Pearl",
  "imo": "IMO 93214",
  "eventDateText": "14 March 2026",
  "locationText": "Singapore",
  "counterpartyText": null,
  "incidentType": "contact",
  "allegedCause": "unknown",
  "pilotInvolved": true,
  "pollutionReported": false,
  "injuriesReported": null,
  "incidentKeywords": ["Contact", "contact", " berth damage "],
  "immediateActionsTaken": ["Tug assistance", ""],
  "missingInfoToRequest": ["Pilot statement"],
  "confidence": 0.82,
  "warnings": []
}` + "\n```"

func TestOracle_TryExtract(t *testing.T) {
	p := &fakeProvider{content: extractionReplyJSON}
	o := NewOracle(p, Config{MaxTokens: 500}, WithCompany("Nova Carriers"))

	ex, err := o.TryExtract(context.Background(), "notification text")
	if err != nil {
		t.Fatalf("TryExtract failed: %v", err)
	}

	if !p.lastReq.JSONMode {
		t.Error("Expected JSON mode request")
	}
	if p.lastReq.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", p.lastReq.MaxTokens)
	}
	if ex.Source != model.SourceOracle {
		t.Errorf("Source = %s, want oracle", ex.Source)
	}
	if ex.RawText != "notification text" {
		t.Errorf("RawText = %q", ex.RawText)
	}
	if ex.VesselName == nil || *ex.VesselName != "MV Ocean Pearl" {
		t.Errorf("VesselName = %v", ex.VesselName)
	}
	if ex.IMO != nil {
		t.Errorf("Expected malformed IMO to be dropped, got %q", *ex.IMO)
	}
	if ex.AllegedCause != nil {
		t.Errorf("Expected 'unknown' cause to be dropped, got %q", *ex.AllegedCause)
	}
	if ex.CounterpartyText != nil {
		t.Errorf("Expected nil counterparty, got %q", *ex.CounterpartyText)
	}
	if ex.PilotInvolved == nil || !*ex.PilotInvolved {
		t.Error("Expected pilotInvolved=true")
	}
	if ex.InjuriesReported != nil {
		t.Error("Expected injuriesReported=null")
	}
	if len(ex.IncidentKeywords) != 2 || ex.IncidentKeywords[0] != "contact" || ex.IncidentKeywords[1] != "berth damage" {
		t.Errorf("IncidentKeywords = %v", ex.IncidentKeywords)
	}
	if len(ex.ImmediateActionsTaken) != 1 {
		t.Errorf("ImmediateActionsTaken = %v", ex.ImmediateActionsTaken)
	}
	if ex.Confidence != 0.82 {
		t.Errorf("Confidence = %v", ex.Confidence)
	}
}

func TestOracle_TryExtract_DefaultConfidence(t *testing.T) {
	p := &fakeProvider{content: `{"summary":"s","incidentKeywords":[]}`}
	o := NewOracle(p, Config{})

	ex, err := o.TryExtract(context.Background(), "x")
	if err != nil {
		t.Fatalf("TryExtract failed: %v", err)
	}
	if ex.Confidence != defaultReplyConfidence {
		t.Errorf("Confidence = %v, want %v", ex.Confidence, defaultReplyConfidence)
	}
}

func TestOracle_TryExtract_Failures(t *testing.T) {
	tests := []struct {
		name    string
		p       *fakeProvider
		wantErr error
	}{
		{"provider error", &fakeProvider{err: errors.New("boom")}, nil},
		{"empty", &fakeProvider{content: "   "}, ErrEmptyReply},
		{"schema mismatch", &fakeProvider{content: `{"vesselName":"X"}`}, ErrInvalidReply},
		{"not json", &fakeProvider{content: "I could not parse that"}, ErrInvalidReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOracle(tt.p, Config{})
			ex, err := o.TryExtract(context.Background(), "x")
			if err == nil {
				t.Fatalf("Expected error, got %+v", ex)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOracle_Disabled(t *testing.T) {
	var o *Oracle
	if o.Enabled() {
		t.Error("nil oracle must be disabled")
	}
	if _, err := o.TryExtract(context.Background(), "x"); !errors.Is(err, ErrDisabled) {
		t.Errorf("TryExtract error = %v, want ErrDisabled", err)
	}
	if _, err := o.TryClassify(context.Background(), model.Extraction{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("TryClassify error = %v, want ErrDisabled", err)
	}
	if NewOracle(nil, Config{}) != nil {
		t.Error("NewOracle(nil) must return nil")
	}
}

func TestOracle_CachesReplies(t *testing.T) {
	p := &fakeProvider{content: `{"summary":"s","incidentKeywords":["fire"]}`}
	o := NewOracle(p, Config{Model: "m"},
		WithCache(cache.NewMemoryCache(time.Minute, time.Minute)),
		WithLimiter(worker.NewLimiter(0, 1)),
	)

	for i := 0; i < 3; i++ {
		if _, err := o.TryExtract(context.Background(), "same text"); err != nil {
			t.Fatalf("TryExtract failed: %v", err)
		}
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls)
	}

	if _, err := o.TryExtract(context.Background(), "other text"); err != nil {
		t.Fatalf("TryExtract failed: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls)
	}
}

func TestOracle_InvalidRepliesNotCached(t *testing.T) {
	p := &fakeProvider{content: `{"oops":true}`}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	o := NewOracle(p, Config{}, WithCache(c))

	_, _ = o.TryExtract(context.Background(), "x")
	_, _ = o.TryExtract(context.Background(), "x")
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls)
	}
	if c.Len() != 0 {
		t.Errorf("cache entries = %d, want 0", c.Len())
	}
}

func TestOracle_TryClassify(t *testing.T) {
	p := &fakeProvider{content: `{"businessRole":"vessel_owner","covers":[
		{"type":"H&M (Hull)","confidence":0.7,"reasoning":"Hull damage."},
		{"type":"P&I","confidence":0.9,"reasoning":"Third-party berth."},
		{"type":"Space Cover","confidence":0.99},
		{"type":"Unclear","confidence":0.2}
	]}`}
	o := NewOracle(p, Config{})

	cl, err := o.TryClassify(context.Background(), model.Extraction{RawText: "Our vessel hit the berth."})
	if err != nil {
		t.Fatalf("TryClassify failed: %v", err)
	}

	if cl.Source != model.SourceOracle {
		t.Errorf("Source = %s", cl.Source)
	}
	if cl.BusinessRole != model.RoleVesselOwner {
		t.Errorf("BusinessRole = %s", cl.BusinessRole)
	}
	got := cl.CoverTypes()
	want := []string{"P&I", "H&M"}
	if len(got) != len(want) {
		t.Fatalf("covers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("covers[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOracle_TryClassify_ChartererOverride(t *testing.T) {
	p := &fakeProvider{content: `{"businessRole":"vessel_owner","covers":[
		{"type":"H&M","confidence":0.9},
		{"type":"Cargo","confidence":0.8}
	]}`}
	o := NewOracle(p, Config{})

	cl, err := o.TryClassify(context.Background(), model.Extraction{
		RawText: "We are time charterers of the vessel. Cargo wetted in hold 3.",
	})
	if err != nil {
		t.Fatalf("TryClassify failed: %v", err)
	}

	if cl.BusinessRole != model.RoleCharterer {
		t.Errorf("BusinessRole = %s, want charterer", cl.BusinessRole)
	}
	if cl.Has(model.CoverHM) {
		t.Error("H&M must not be listed for a charterer")
	}
	if len(cl.Covers) == 0 || cl.Covers[0].Type != model.CoverCharterersLiability {
		t.Errorf("first cover = %+v, want Charterers' Liability", cl.Covers)
	}
}

func TestOracle_TryClassify_NoKnownCovers(t *testing.T) {
	p := &fakeProvider{content: `{"covers":[{"type":"Space Cover","confidence":0.9}]}`}
	o := NewOracle(p, Config{})

	if _, err := o.TryClassify(context.Background(), model.Extraction{}); !errors.Is(err, ErrInvalidReply) {
		t.Errorf("error = %v, want ErrInvalidReply", err)
	}
}
