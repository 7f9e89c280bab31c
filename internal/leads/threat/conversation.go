// Package threat computes lead threat scores: a weighted composite over
// lead attributes, conversation intelligence, and competitor pressure.
package threat

import (
	"context"
	"strings"
)

// Insights is the structured output of conversation analysis, produced
// either by the LLM analyzer or the keyword fallback.
type Insights struct {
	Sentiment          float64  `json:"sentiment"` // [-1,1]
	IntentSignals      []string `json:"intentSignals"`
	BuyingSignals      []string `json:"buyingSignals"`
	CompetitorMentions []string `json:"competitorMentions"`
	Objections         []string `json:"objections"`
	UrgencySignals     []string `json:"urgencySignals"`
	BudgetSignals      []string `json:"budgetSignals"`
}

// ConversationAnalyzer extracts Insights from a transcript. The LLM-backed
// implementation and the keyword fallback are interchangeable strategies,
// not an error path: callers never see which one ran.
type ConversationAnalyzer interface {
	Analyze(ctx context.Context, transcript string, competitorNames []string) (Insights, error)
	Name() string
}

// Fixed vocabularies for the deterministic fallback. Matching is
// case-insensitive substring search.
var (
	intentVocabulary = []string{
		"buy", "purchase", "implement", "need", "looking for", "evaluate",
		"switch to", "trial",
	}
	buyingVocabulary = []string{
		"contract", "quote", "proposal", "onboarding", "sign up",
		"pricing plan", "how much", "discount",
	}
	objectionVocabulary = []string{
		"too expensive", "not sure", "concern", "worried", "risk",
		"think about it", "already using",
	}
	urgencyVocabulary = []string{
		"asap", "urgent", "deadline", "this week", "this month",
		"end of quarter", "right away",
	}
	budgetVocabulary = []string{
		"budget", "approved", "cfo", "finance", "sign-off", "procurement",
		"decision maker",
	}
	positiveVocabulary = []string{
		"great", "love", "impressed", "excellent", "perfect", "exactly what",
	}
	negativeVocabulary = []string{
		"disappointed", "frustrated", "bad", "terrible", "useless", "waste",
	}
)

// KeywordAnalyzer is the deterministic substring-matching fallback.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer creates the fallback analyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

func (a *KeywordAnalyzer) Name() string { return "keyword" }

// Analyze matches the transcript against the fixed vocabularies. It never
// fails: an empty transcript yields empty insights.
func (a *KeywordAnalyzer) Analyze(_ context.Context, transcript string, competitorNames []string) (Insights, error) {
	lower := strings.ToLower(transcript)

	insights := Insights{
		IntentSignals:  matchVocabulary(lower, intentVocabulary),
		BuyingSignals:  matchVocabulary(lower, buyingVocabulary),
		Objections:     matchVocabulary(lower, objectionVocabulary),
		UrgencySignals: matchVocabulary(lower, urgencyVocabulary),
		BudgetSignals:  matchVocabulary(lower, budgetVocabulary),
		Sentiment:      keywordSentiment(lower),
	}

	for _, name := range competitorNames {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(trimmed)) {
			insights.CompetitorMentions = append(insights.CompetitorMentions, trimmed)
		}
	}

	return insights, nil
}

func matchVocabulary(lower string, vocabulary []string) []string {
	var matched []string
	for _, word := range vocabulary {
		if strings.Contains(lower, word) {
			matched = append(matched, word)
		}
	}
	return matched
}

// keywordSentiment returns a coarse sentiment in [-1,1] from positive and
// negative word counts.
func keywordSentiment(lower string) float64 {
	pos := len(matchVocabulary(lower, positiveVocabulary))
	neg := len(matchVocabulary(lower, negativeVocabulary))
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}
