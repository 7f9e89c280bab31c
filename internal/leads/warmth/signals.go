// Package warmth detects warm buying signals in behavior snapshots and
// computes the 0-100 warmth score that drives seizure campaigns.
package warmth

import "leadintel_backend/internal/leads/behavior"

// Signal thresholds. Deliberately low bar: detection is recall-biased and
// false positives are filtered later by the qualification threshold.
const (
	pricingDwellThresholdSecs = 45
	scrollDepthThresholdPct   = 80
	formCompletionThreshold   = 0.5
	emailOpensThreshold       = 2
	minSignalsForWarm         = 2
)

// Signals holds the seven independent warm-lead indicators.
type Signals struct {
	PricingDwell      bool `json:"pricingDwell"`      // >45s on pricing pages
	QuoteClickedNoSub bool `json:"quoteClickedNoSub"` // clicked quote CTA, never submitted
	RepeatVisits      bool `json:"repeatVisits"`      // more than one visit in 14 days
	DeepScroll        bool `json:"deepScroll"`        // scrolled past 80%
	FormEngagement    bool `json:"formEngagement"`    // completed more than half a form
	EmailEngagement   bool `json:"emailEngagement"`   // opened more than two emails
	AdClickedNoConv   bool `json:"adClickedNoConv"`   // clicked retargeting ad, no conversion
}

// DetectSignals evaluates the seven booleans against sanitized behavior data.
func DetectSignals(d behavior.Data) Signals {
	return Signals{
		PricingDwell:      d.PricingPageSeconds > pricingDwellThresholdSecs,
		QuoteClickedNoSub: d.QuoteClicksNoSubmit > 0,
		RepeatVisits:      d.VisitsLast14Days > 1,
		DeepScroll:        d.MaxScrollDepthPct > scrollDepthThresholdPct,
		FormEngagement:    d.FormCompletionRate > formCompletionThreshold,
		EmailEngagement:   d.EmailsOpened > emailOpensThreshold,
		AdClickedNoConv:   d.RetargetingInteractions > 0,
	}
}

// Count returns how many signals fired.
func (s Signals) Count() int {
	count := 0
	for _, on := range []bool{
		s.PricingDwell, s.QuoteClickedNoSub, s.RepeatVisits, s.DeepScroll,
		s.FormEngagement, s.EmailEngagement, s.AdClickedNoConv,
	} {
		if on {
			count++
		}
	}
	return count
}

// IsWarm reports whether the lead qualifies as warm (at least two signals).
func (s Signals) IsWarm() bool {
	return s.Count() >= minSignalsForWarm
}

// Names returns the identifiers of the fired signals, for events and logging.
func (s Signals) Names() []string {
	names := make([]string, 0, 7)
	if s.PricingDwell {
		names = append(names, "pricing_dwell")
	}
	if s.QuoteClickedNoSub {
		names = append(names, "quote_clicked_no_submit")
	}
	if s.RepeatVisits {
		names = append(names, "repeat_visits")
	}
	if s.DeepScroll {
		names = append(names, "deep_scroll")
	}
	if s.FormEngagement {
		names = append(names, "form_engagement")
	}
	if s.EmailEngagement {
		names = append(names, "email_engagement")
	}
	if s.AdClickedNoConv {
		names = append(names, "ad_clicked_no_conversion")
	}
	return names
}
