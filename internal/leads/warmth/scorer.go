package warmth

import (
	"fmt"
	"math"

	"leadintel_backend/internal/leads/behavior"
)

// Normalization baselines: the input value at which a sub-score saturates
// its factor weight.
const (
	baselineTotalTimeSecs  = 300.0
	baselineVisits14d      = 5.0
	baselineRetargetClicks = 10.0
	baselineEmailOpens     = 5.0
	baselinePricingSecs    = 45.0
	baselineQuoteClicks    = 3.0
	maxFactorWeight        = 50.0
	maxTotalWeight         = 200.0
)

// Weights configures how many points each behavioral factor can contribute.
// The defaults sum to 140, above the 100-point ceiling; the final score is
// clamped, so no single factor combination is required to saturate it. That
// overflow is intentional and changes which combinations can reach 100.
type Weights struct {
	TimeOnSite     float64
	RepeatVisits   float64
	FormCompletion float64
	Retargeting    float64
	ScrollDepth    float64
	EmailOpens     float64
	PricingDwell   float64
	QuoteIntent    float64
}

// DefaultWeights returns the production weight profile.
func DefaultWeights() Weights {
	return Weights{
		TimeOnSite:     15,
		RepeatVisits:   20,
		FormCompletion: 25,
		Retargeting:    10,
		ScrollDepth:    8,
		EmailOpens:     12,
		PricingDwell:   20,
		QuoteIntent:    30,
	}
}

// Scorer computes warmth scores. Pure and deterministic: the same behavior
// snapshot always yields the same score.
type Scorer struct {
	weights Weights
}

// NewScorer validates the weight profile and constructs a Scorer.
// Each weight must be in [0,50] and the total must not exceed 200.
func NewScorer(w Weights) (*Scorer, error) {
	total := 0.0
	for name, weight := range map[string]float64{
		"time_on_site":    w.TimeOnSite,
		"repeat_visits":   w.RepeatVisits,
		"form_completion": w.FormCompletion,
		"retargeting":     w.Retargeting,
		"scroll_depth":    w.ScrollDepth,
		"email_opens":     w.EmailOpens,
		"pricing_dwell":   w.PricingDwell,
		"quote_intent":    w.QuoteIntent,
	} {
		if weight < 0 || weight > maxFactorWeight {
			return nil, fmt.Errorf("warmth weight %s out of range [0,%v]: %v", name, maxFactorWeight, weight)
		}
		total += weight
	}
	if total > maxTotalWeight {
		return nil, fmt.Errorf("warmth weight total %v exceeds %v", total, maxTotalWeight)
	}
	return &Scorer{weights: w}, nil
}

// Score computes the warmth score for a behavior snapshot: eight
// independently capped sub-scores summed, rounded, and clamped to [0,100].
func (s *Scorer) Score(d behavior.Data) int {
	w := s.weights
	score := 0.0

	// Time on site, normalized against a 5-minute baseline
	score += capAt(w.TimeOnSite, d.TotalTimeSeconds/baselineTotalTimeSecs*w.TimeOnSite)

	// Repeat visits, saturating at 5 visits in 14 days
	score += capAt(w.RepeatVisits, float64(d.VisitsLast14Days)/baselineVisits14d*w.RepeatVisits)

	// Form completion rate contributes directly, no baseline
	score += clampFloat(d.FormCompletionRate, 0, 1) * w.FormCompletion

	// Retargeting interactions, 10 to saturate
	score += capAt(w.Retargeting, float64(d.RetargetingInteractions)*w.Retargeting/baselineRetargetClicks)

	// Scroll depth as a straight fraction of its weight
	score += clampFloat(d.MaxScrollDepthPct, 0, 100) / 100 * w.ScrollDepth

	// Email opens, 5 to saturate
	score += capAt(w.EmailOpens, float64(d.EmailsOpened)/baselineEmailOpens*w.EmailOpens)

	// Pricing-page dwell, 45s to saturate
	score += capAt(w.PricingDwell, d.PricingPageSeconds/baselinePricingSecs*w.PricingDwell)

	// Quote-intent clicks, 3 to saturate
	score += capAt(w.QuoteIntent, float64(d.QuoteClicksNoSubmit)*w.QuoteIntent/baselineQuoteClicks)

	return clampScore(score)
}

func capAt(limit, value float64) float64 {
	if value > limit {
		return limit
	}
	return value
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

func clampFloat(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
