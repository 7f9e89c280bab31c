package warmth

import (
	"testing"

	"leadintel_backend/internal/leads/behavior"
)

func newDefaultScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultWeights())
	if err != nil {
		t.Fatalf("NewScorer failed with default weights: %v", err)
	}
	return s
}

func TestNewScorerRejectsBadWeights(t *testing.T) {
	w := DefaultWeights()
	w.QuoteIntent = 51
	if _, err := NewScorer(w); err == nil {
		t.Fatal("weight above 50 should fail construction")
	}

	w = DefaultWeights()
	w.QuoteIntent = -1
	if _, err := NewScorer(w); err == nil {
		t.Fatal("negative weight should fail construction")
	}

	w = Weights{TimeOnSite: 50, RepeatVisits: 50, FormCompletion: 50, Retargeting: 50, ScrollDepth: 50}
	if _, err := NewScorer(w); err == nil {
		t.Fatal("total weight above 200 should fail construction")
	}
}

func TestScoreZeroBehaviorIsZero(t *testing.T) {
	s := newDefaultScorer(t)
	if got := s.Score(behavior.Data{}); got != 0 {
		t.Fatalf("all-zero counters should score 0, got %d", got)
	}
}

func TestScoreSaturationClampsAt100(t *testing.T) {
	s := newDefaultScorer(t)
	d := behavior.Data{
		TotalTimeSeconds:        3000,
		VisitsLast14Days:        50,
		FormCompletionRate:      1,
		RetargetingInteractions: 100,
		MaxScrollDepthPct:       100,
		EmailsOpened:            50,
		PricingPageSeconds:      900,
		QuoteClicksNoSubmit:     30,
	}
	// Default weights sum to 140; everything saturated must clamp to 100.
	if got := s.Score(d); got != 100 {
		t.Fatalf("saturated behavior should clamp to 100, got %d", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := newDefaultScorer(t)
	d := behavior.Data{
		TotalTimeSeconds:    120,
		VisitsLast14Days:    3,
		FormCompletionRate:  0.4,
		MaxScrollDepthPct:   60,
		EmailsOpened:        1,
		PricingPageSeconds:  30,
		QuoteClicksNoSubmit: 1,
	}
	first := s.Score(d)
	for i := 0; i < 10; i++ {
		if got := s.Score(d); got != first {
			t.Fatalf("score not deterministic: %d then %d", first, got)
		}
	}
	if first < 0 || first > 100 {
		t.Fatalf("score out of range: %d", first)
	}
}

func TestScoreHotLeadScenario(t *testing.T) {
	s := newDefaultScorer(t)
	d := behavior.Data{
		PricingPageSeconds:      180,
		QuoteClicksNoSubmit:     3,
		EmailsOpened:            5,
		VisitsLast14Days:        7,
		FormCompletionRate:      0.8,
		MaxScrollDepthPct:       95,
		RetargetingInteractions: 0,
	}
	if got := s.Score(d); got < 85 {
		t.Fatalf("hot lead scenario should reach the high-value threshold, got %d", got)
	}
}

func TestDetectSignalsThresholds(t *testing.T) {
	d := behavior.Data{
		PricingPageSeconds:  46,
		QuoteClicksNoSubmit: 1,
		VisitsLast14Days:    1,
		MaxScrollDepthPct:   80,
		FormCompletionRate:  0.5,
		EmailsOpened:        2,
	}
	s := DetectSignals(d)
	if !s.PricingDwell {
		t.Fatal("46s pricing dwell should fire the signal")
	}
	if !s.QuoteClickedNoSub {
		t.Fatal("one quote click should fire the signal")
	}
	// Boundary values do not fire: thresholds are strict.
	if s.RepeatVisits || s.DeepScroll || s.FormEngagement || s.EmailEngagement || s.AdClickedNoConv {
		t.Fatalf("boundary values should not fire signals: %+v", s)
	}
}

func TestIsWarmRequiresTwoSignals(t *testing.T) {
	one := Signals{PricingDwell: true}
	if one.IsWarm() {
		t.Fatal("a single signal should not mark a lead warm")
	}

	two := Signals{PricingDwell: true, RepeatVisits: true}
	if !two.IsWarm() {
		t.Fatal("two signals should mark a lead warm")
	}
	if got := len(two.Names()); got != 2 {
		t.Fatalf("expected 2 signal names, got %d", got)
	}
}
