package threat

import (
	"context"
	"testing"
	"time"
)

func newTestCalculator() *Calculator {
	return NewCalculator(NewKeywordAnalyzer(), nil)
}

func validLead() Lead {
	return Lead{
		Email:   "jane@acme.com",
		Company: "Acme",
	}
}

func TestCalculateRejectsMissingIdentity(t *testing.T) {
	calc := newTestCalculator()
	_, err := calc.Calculate(context.Background(), Lead{Company: "Acme"}, nil, nil)
	if err == nil {
		t.Fatal("lead without email and phone should be rejected")
	}
}

func TestCalculateEmptyInputsYieldsCompleteScore(t *testing.T) {
	calc := newTestCalculator()
	score, err := calc.Calculate(context.Background(), validLead(), nil, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if score.OverallScore < 0 || score.OverallScore > 100 {
		t.Fatalf("overall score out of range: %d", score.OverallScore)
	}
	if score.ThreatLevel == "" {
		t.Fatal("threat level missing")
	}
	if len(score.RecommendedActions) == 0 {
		t.Fatal("recommended actions missing")
	}
	if score.Indicators.EvaluationStage != "awareness" {
		t.Fatalf("no signals should mean awareness stage, got %s", score.Indicators.EvaluationStage)
	}

	// No conversations and no competitors: competitive factors sit at floor.
	if score.Factors.CompetitivePressure != 20 {
		t.Fatalf("competitive pressure floor should be 20, got %d", score.Factors.CompetitivePressure)
	}
	if score.Factors.CompetitorInfluence != 10 {
		t.Fatalf("competitor influence floor should be 10, got %d", score.Factors.CompetitorInfluence)
	}

	if !score.ExpiresAt.Equal(score.CalculatedAt.Add(24 * time.Hour)) {
		t.Fatal("score should expire 24h after calculation")
	}
}

func TestCalculateIdempotent(t *testing.T) {
	calc := newTestCalculator()
	lead := validLead()
	lead.DemoRequested = true
	lead.PricingPageVisits = 3
	conversations := []Conversation{
		{Transcript: "We need to implement this ASAP, what does the contract look like?", OccurredAt: time.Now().Add(-time.Hour)},
	}
	competitors := []Competitor{{Name: "RivalCo", AdSpendEstimate: 5000, ActiveCreatives: 4}}

	first, err := calc.Calculate(context.Background(), lead, conversations, competitors)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	second, err := calc.Calculate(context.Background(), lead, conversations, competitors)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if first.OverallScore != second.OverallScore || first.Factors != second.Factors {
		t.Fatalf("re-scoring the same snapshot changed the result: %d vs %d", first.OverallScore, second.OverallScore)
	}
}

func TestLevelForScoreBands(t *testing.T) {
	cases := []struct {
		score int
		level string
	}{
		{0, LevelLow},
		{44, LevelLow},
		{45, LevelMedium},
		{64, LevelMedium},
		{65, LevelHigh},
		{79, LevelHigh},
		{80, LevelCritical},
		{100, LevelCritical},
	}
	for _, tc := range cases {
		if got := LevelForScore(tc.score); got != tc.level {
			t.Fatalf("score %d: got %s, want %s", tc.score, got, tc.level)
		}
	}

	// Monotonic: a higher score never maps to a lower band.
	rank := map[string]int{LevelLow: 0, LevelMedium: 1, LevelHigh: 2, LevelCritical: 3}
	prev := 0
	for s := 0; s <= 100; s++ {
		r := rank[LevelForScore(s)]
		if r < prev {
			t.Fatalf("banding not monotonic at score %d", s)
		}
		prev = r
	}
}

func TestActionsForLevelSLAs(t *testing.T) {
	critical := actionsForLevel(LevelCritical)
	if critical[0].ResponseSLA != 2*time.Hour || !critical[0].Escalate {
		t.Fatalf("critical should mean 2h SLA with escalation, got %+v", critical[0])
	}

	high := actionsForLevel(LevelHigh)
	if high[0].ResponseSLA != 4*time.Hour || high[0].Escalate {
		t.Fatalf("high should mean 4h SLA without escalation, got %+v", high[0])
	}

	medium := actionsForLevel(LevelMedium)
	if medium[0].ResponseSLA != 12*time.Hour {
		t.Fatalf("medium should mean 12h SLA, got %v", medium[0].ResponseSLA)
	}

	low := actionsForLevel(LevelLow)
	if low[0].ResponseSLA != 24*time.Hour {
		t.Fatalf("low should mean 24h SLA, got %v", low[0].ResponseSLA)
	}
}

func TestBuyingConversationRaisesIntent(t *testing.T) {
	calc := newTestCalculator()
	lead := validLead()

	quiet, err := calc.Calculate(context.Background(), lead, nil, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	loud, err := calc.Calculate(context.Background(), lead, []Conversation{
		{Transcript: "We want to buy and need a quote for the pricing plan before end of quarter. Budget is approved.", OccurredAt: time.Now()},
	}, nil)
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if loud.Factors.IntentStrength <= quiet.Factors.IntentStrength {
		t.Fatalf("buying language should raise intent: %d vs %d", loud.Factors.IntentStrength, quiet.Factors.IntentStrength)
	}
	if loud.OverallScore <= quiet.OverallScore {
		t.Fatalf("buying language should raise the overall score: %d vs %d", loud.OverallScore, quiet.OverallScore)
	}
	if loud.Indicators.EvaluationStage == "awareness" {
		t.Fatal("buying signals should advance the evaluation stage")
	}
}

func TestCompetitorMentionsDetected(t *testing.T) {
	calc := newTestCalculator()
	score, err := calc.Calculate(context.Background(), validLead(), []Conversation{
		{Transcript: "We are also talking to RivalCo, they say they are cheaper.", OccurredAt: time.Now()},
	}, []Competitor{{Name: "RivalCo"}})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}

	if len(score.Indicators.CompetitorMentions) != 1 || score.Indicators.CompetitorMentions[0] != "RivalCo" {
		t.Fatalf("expected RivalCo mention, got %v", score.Indicators.CompetitorMentions)
	}
	if score.Factors.CompetitivePressure <= 20 {
		t.Fatalf("a mention should raise competitive pressure above the floor, got %d", score.Factors.CompetitivePressure)
	}
}

func TestKeywordAnalyzerVocabularies(t *testing.T) {
	analyzer := NewKeywordAnalyzer()
	insights, err := analyzer.Analyze(context.Background(),
		"We need to purchase soon, the deadline is this week but it seems too expensive. Budget is approved though.",
		[]string{"RivalCo"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if len(insights.IntentSignals) == 0 {
		t.Fatal("expected intent signals")
	}
	if len(insights.UrgencySignals) == 0 {
		t.Fatal("expected urgency signals")
	}
	if len(insights.Objections) == 0 {
		t.Fatal("expected objections")
	}
	if len(insights.BudgetSignals) == 0 {
		t.Fatal("expected budget signals")
	}
	if len(insights.CompetitorMentions) != 0 {
		t.Fatal("RivalCo is not in this transcript")
	}
}
