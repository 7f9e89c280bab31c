package threat

import (
	"context"
	"math"
	"strings"
	"time"

	"leadintel_backend/platform/apperr"
	"leadintel_backend/platform/logger"
)

// Factor weights; they sum to exactly 1.0.
const (
	weightIntent              = 0.25
	weightCompetitivePressure = 0.20
	weightUrgency             = 0.20
	weightBudgetAuthority     = 0.15
	weightFit                 = 0.10
	weightEngagement          = 0.05
	weightCompetitorInfluence = 0.05
)

// Threat levels and their score bands. Banding is canonical here and
// nowhere else: critical >=80, high >=65, medium >=45, else low.
const (
	LevelCritical = "critical"
	LevelHigh     = "high"
	LevelMedium   = "medium"
	LevelLow      = "low"

	criticalBand = 80
	highBand     = 65
	mediumBand   = 45
)

// scoreTTL is the cache validity window of one calculation.
const scoreTTL = 24 * time.Hour

// Lead is the profile snapshot the calculator scores.
type Lead struct {
	Email             string
	Phone             string
	Company           string
	Source            string
	DemoRequested     bool
	PricingPageVisits int
	EmailsOpened      int
	VisitsLast14Days  int
}

// Conversation is one transcript with its timestamp.
type Conversation struct {
	Transcript string
	OccurredAt time.Time
}

// Competitor is a known competitor record feeding the pressure factors.
type Competitor struct {
	Name            string
	AdSpendEstimate float64
	ActiveCreatives int
}

// Factors holds the seven per-factor scores, each in [0,100].
type Factors struct {
	IntentStrength      int `json:"intentStrength"`
	CompetitivePressure int `json:"competitivePressure"`
	Urgency             int `json:"urgency"`
	BudgetAuthority     int `json:"budgetAuthority"`
	Fit                 int `json:"fit"`
	Engagement          int `json:"engagement"`
	CompetitorInfluence int `json:"competitorInfluence"`
}

// Indicators are derived competitive-intelligence flags.
type Indicators struct {
	CompetitorMentions []string `json:"competitorMentions"`
	PriceSensitivity   bool     `json:"priceSensitivity"`
	EvaluationStage    string   `json:"evaluationStage"` // awareness, evaluation, decision
}

// RecommendedAction is one follow-up step keyed off the threat level.
type RecommendedAction struct {
	Priority    int           `json:"priority"` // 1 (highest) to 5
	Action      string        `json:"action"`
	ResponseSLA time.Duration `json:"responseSla"`
	Escalate    bool          `json:"escalate"`
}

// Score is one complete, internally consistent scoring snapshot. There is
// no partial score: Calculate returns either all of this or an error.
type Score struct {
	OverallScore       int                 `json:"overallScore"`
	ThreatLevel        string              `json:"threatLevel"`
	Factors            Factors             `json:"factors"`
	Indicators         Indicators          `json:"indicators"`
	RecommendedActions []RecommendedAction `json:"recommendedActions"`
	AnalyzerUsed       string              `json:"analyzerUsed"`
	CalculatedAt       time.Time           `json:"calculatedAt"`
	ExpiresAt          time.Time           `json:"expiresAt"`
}

// Calculator computes threat scores.
type Calculator struct {
	analyzer ConversationAnalyzer
	log      *logger.Logger
}

// NewCalculator creates a calculator using the given conversation analyzer.
func NewCalculator(analyzer ConversationAnalyzer, log *logger.Logger) *Calculator {
	return &Calculator{analyzer: analyzer, log: log}
}

// Calculate scores a lead snapshot against its conversation history and the
// known competitor set. A lead with neither email nor phone cannot be
// followed up and is rejected outright.
func (c *Calculator) Calculate(ctx context.Context, lead Lead, conversations []Conversation, competitors []Competitor) (*Score, error) {
	if strings.TrimSpace(lead.Email) == "" && strings.TrimSpace(lead.Phone) == "" {
		return nil, apperr.Validation("lead has no email or phone; cannot score")
	}

	competitorNames := make([]string, 0, len(competitors))
	for _, comp := range competitors {
		competitorNames = append(competitorNames, comp.Name)
	}

	aggregated, lastContact := c.analyzeConversations(ctx, conversations, competitorNames)

	factors := Factors{
		IntentStrength:      scoreIntent(lead, aggregated),
		CompetitivePressure: scoreCompetitivePressure(aggregated, competitors),
		Urgency:             scoreUrgency(aggregated, lastContact),
		BudgetAuthority:     scoreBudgetAuthority(lead, aggregated),
		Fit:                 scoreFit(lead),
		Engagement:          scoreEngagement(lead, len(conversations)),
		CompetitorInfluence: scoreCompetitorInfluence(competitors),
	}

	overall := clampScore(
		float64(factors.IntentStrength)*weightIntent +
			float64(factors.CompetitivePressure)*weightCompetitivePressure +
			float64(factors.Urgency)*weightUrgency +
			float64(factors.BudgetAuthority)*weightBudgetAuthority +
			float64(factors.Fit)*weightFit +
			float64(factors.Engagement)*weightEngagement +
			float64(factors.CompetitorInfluence)*weightCompetitorInfluence)

	level := LevelForScore(overall)
	now := time.Now().UTC()

	score := &Score{
		OverallScore:       overall,
		ThreatLevel:        level,
		Factors:            factors,
		Indicators:         deriveIndicators(aggregated),
		RecommendedActions: actionsForLevel(level),
		AnalyzerUsed:       c.analyzer.Name(),
		CalculatedAt:       now,
		ExpiresAt:          now.Add(scoreTTL),
	}

	return score, nil
}

// LevelForScore maps an overall score to its threat level band.
func LevelForScore(score int) string {
	switch {
	case score >= criticalBand:
		return LevelCritical
	case score >= highBand:
		return LevelHigh
	case score >= mediumBand:
		return LevelMedium
	default:
		return LevelLow
	}
}

// analyzeConversations runs the analyzer per conversation and merges the
// results. A failed analysis contributes empty insights rather than
// aborting the calculation.
func (c *Calculator) analyzeConversations(ctx context.Context, conversations []Conversation, competitorNames []string) (Insights, time.Time) {
	var merged Insights
	var lastContact time.Time
	sentimentSum := 0.0
	analyzed := 0

	for _, conv := range conversations {
		if conv.OccurredAt.After(lastContact) {
			lastContact = conv.OccurredAt
		}

		insights, err := c.analyzer.Analyze(ctx, conv.Transcript, competitorNames)
		if err != nil {
			if c.log != nil {
				c.log.Warn("conversation analysis failed", "error", err)
			}
			continue
		}

		merged.IntentSignals = append(merged.IntentSignals, insights.IntentSignals...)
		merged.BuyingSignals = append(merged.BuyingSignals, insights.BuyingSignals...)
		merged.CompetitorMentions = append(merged.CompetitorMentions, insights.CompetitorMentions...)
		merged.Objections = append(merged.Objections, insights.Objections...)
		merged.UrgencySignals = append(merged.UrgencySignals, insights.UrgencySignals...)
		merged.BudgetSignals = append(merged.BudgetSignals, insights.BudgetSignals...)
		sentimentSum += insights.Sentiment
		analyzed++
	}

	if analyzed > 0 {
		merged.Sentiment = sentimentSum / float64(analyzed)
	}
	return merged, lastContact
}

// scoreIntent: base 50, +10 per intent signal, +15 per buying signal, plus
// behavioral bonuses for demo requests and pricing-page visits.
func scoreIntent(lead Lead, insights Insights) int {
	score := 50.0
	score += float64(len(insights.IntentSignals)) * 10
	score += float64(len(insights.BuyingSignals)) * 15
	if lead.DemoRequested {
		score += 10
	}
	score += math.Min(float64(lead.PricingPageVisits), 5) * 3
	return clampScore(score)
}

// scoreCompetitivePressure: floor of 20 when nothing is known, raised by
// competitor mentions, the size of the known competitor set, and negative
// sentiment (an unhappy lead is shopping around).
func scoreCompetitivePressure(insights Insights, competitors []Competitor) int {
	score := 20.0
	score += float64(len(uniqueStrings(insights.CompetitorMentions))) * 15
	score += math.Min(float64(len(competitors)), 5) * 5
	if insights.Sentiment < -0.2 {
		score += 10
	}
	return clampScore(score)
}

// scoreUrgency: base 30, +12 per urgency signal, recency bonus for fresh
// conversations.
func scoreUrgency(insights Insights, lastContact time.Time) int {
	score := 30.0
	score += float64(len(insights.UrgencySignals)) * 12

	if !lastContact.IsZero() {
		since := time.Since(lastContact)
		switch {
		case since <= 48*time.Hour:
			score += 15
		case since <= 7*24*time.Hour:
			score += 8
		}
	}
	return clampScore(score)
}

// scoreBudgetAuthority: base 40, +12 per budget signal, small bonus for a
// demo request (self-selected evaluators usually hold budget).
func scoreBudgetAuthority(lead Lead, insights Insights) int {
	score := 40.0
	score += float64(len(insights.BudgetSignals)) * 12
	if lead.DemoRequested {
		score += 5
	}
	return clampScore(score)
}

var freeMailDomains = []string{"gmail.", "yahoo.", "hotmail.", "outlook.", "icloud.", "proton."}

// scoreFit: base 50, raised by a known company, a corporate email domain,
// and a high-intent acquisition source.
func scoreFit(lead Lead) int {
	score := 50.0
	if strings.TrimSpace(lead.Company) != "" {
		score += 15
	}

	if email := strings.ToLower(lead.Email); strings.Contains(email, "@") {
		domain := email[strings.LastIndex(email, "@")+1:]
		free := false
		for _, d := range freeMailDomains {
			if strings.HasPrefix(domain, d) {
				free = true
				break
			}
		}
		if !free {
			score += 15
		}
	}

	source := strings.ToLower(lead.Source)
	switch {
	case strings.Contains(source, "referral"), strings.Contains(source, "direct"):
		score += 10
	case strings.Contains(source, "purchased"), strings.Contains(source, "cold"):
		score -= 10
	}
	return clampScore(score)
}

// scoreEngagement counts touchpoints across channels.
func scoreEngagement(lead Lead, conversationCount int) int {
	score := 0.0
	score += math.Min(float64(conversationCount), 5) * 10
	score += math.Min(float64(lead.EmailsOpened), 8) * 5
	score += math.Min(float64(lead.VisitsLast14Days), 10) * 4
	if lead.DemoRequested {
		score += 15
	}
	return clampScore(score)
}

// scoreCompetitorInfluence: floor of 10, raised by observed competitor ad
// spend and active creative volume.
func scoreCompetitorInfluence(competitors []Competitor) int {
	score := 10.0
	var spend float64
	var creatives int
	for _, comp := range competitors {
		spend += comp.AdSpendEstimate
		creatives += comp.ActiveCreatives
	}

	switch {
	case spend >= 10000:
		score += 40
	case spend >= 1000:
		score += 25
	case spend > 0:
		score += 10
	}
	score += math.Min(float64(creatives), 10) * 3
	return clampScore(score)
}

func deriveIndicators(insights Insights) Indicators {
	priceSensitive := false
	for _, objection := range insights.Objections {
		lower := strings.ToLower(objection)
		if strings.Contains(lower, "expensive") || strings.Contains(lower, "price") || strings.Contains(lower, "cost") {
			priceSensitive = true
			break
		}
	}

	stage := "awareness"
	switch {
	case len(insights.BuyingSignals) >= 2:
		stage = "decision"
	case len(insights.IntentSignals) > 0 || len(insights.BuyingSignals) > 0:
		stage = "evaluation"
	}

	return Indicators{
		CompetitorMentions: uniqueStrings(insights.CompetitorMentions),
		PriceSensitivity:   priceSensitive,
		EvaluationStage:    stage,
	}
}

// actionsForLevel is the follow-up lookup table keyed by threat level.
func actionsForLevel(level string) []RecommendedAction {
	switch level {
	case LevelCritical:
		return []RecommendedAction{
			{Priority: 1, Action: "call the lead immediately", ResponseSLA: 2 * time.Hour, Escalate: true},
			{Priority: 2, Action: "loop in an executive sponsor", ResponseSLA: 2 * time.Hour, Escalate: true},
		}
	case LevelHigh:
		return []RecommendedAction{
			{Priority: 2, Action: "schedule a call today", ResponseSLA: 4 * time.Hour},
			{Priority: 3, Action: "send a tailored competitive comparison", ResponseSLA: 4 * time.Hour},
		}
	case LevelMedium:
		return []RecommendedAction{
			{Priority: 3, Action: "follow up with relevant case studies", ResponseSLA: 12 * time.Hour},
		}
	default:
		return []RecommendedAction{
			{Priority: 4, Action: "add to the standard nurture sequence", ResponseSLA: 24 * time.Hour},
		}
	}
}

func uniqueStrings(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
