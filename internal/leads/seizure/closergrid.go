package seizure

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"leadintel_backend/internal/leads/repository"
	"leadintel_backend/platform/phone"
)

const autoDialerMinAge = 3 * 24 * time.Hour

// CloserGrid bundles the conversion artifacts prepared for a warm lead.
type CloserGrid struct {
	LandingPageURL    string    `json:"landingPageUrl"`
	Testimonials      []string  `json:"testimonials"`
	ScarcityCountdown string    `json:"scarcityCountdown"`
	CalendarBooking   string    `json:"calendarBooking"`
	CaseStudies       []string  `json:"caseStudies"`
	AutoDialerTrigger bool      `json:"autoDialerTrigger"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// GenerateCloserGrid composes the artifact bundle deterministically from the
// lead snapshot and its seizure history. The auto-dialer only fires for
// high-value leads detected at least three days ago that already received
// outreach and have a dialable phone: never cold-auto-dial a fresh detection.
func GenerateCloserGrid(lead repository.WarmLead, history []repository.SeizureAction, now time.Time) CloserGrid {
	company := displayCompany(lead.Company)

	autoDial := lead.WarmthScore >= HighValueThreshold &&
		now.Sub(lead.DetectedAt) >= autoDialerMinAge &&
		len(history) > 0 &&
		phone.IsDialable(lead.Phone)

	return CloserGrid{
		LandingPageURL: landingPageURL(lead),
		Testimonials: []string{
			fmt.Sprintf("\"We cut our lead response time in half.\" - a company like %s", company),
			"\"The competitive view alone paid for the subscription.\"",
			"\"Setup took an afternoon, not a quarter.\"",
		},
		ScarcityCountdown: "Evaluation discount ends in 72 hours",
		CalendarBooking:   "/book-demo?utm_source=closer_grid",
		CaseStudies: []string{
			"/case-studies/mid-market-rollout",
			"/case-studies/agency-switch",
		},
		AutoDialerTrigger: autoDial,
		GeneratedAt:       now,
	}
}

func landingPageURL(lead repository.WarmLead) string {
	slug := strings.ToLower(strings.TrimSpace(lead.Company))
	if slug == "" {
		return "/welcome-back"
	}
	return "/welcome-back/" + url.PathEscape(strings.ReplaceAll(slug, " ", "-"))
}
