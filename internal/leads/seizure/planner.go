// Package seizure plans multi-day outreach campaigns and conversion
// artifacts for qualified warm leads. Planning is a pure function of the
// lead snapshot: no randomness, no external calls.
package seizure

import (
	"fmt"
	"strings"

	"leadintel_backend/internal/leads/repository"
	"leadintel_backend/platform/apperr"
	"leadintel_backend/platform/phone"
)

const (
	// QualificationThreshold gates campaign planning.
	QualificationThreshold = 65
	// HighValueThreshold unlocks immediate chat and SMS outreach.
	HighValueThreshold = 85

	maxContentLen  = 5000
	maxTriggerDay  = 30
	maxPagesInCopy = 3
)

// Action types.
const (
	ActionEmail = "email"
	ActionSMS   = "sms"
	ActionAd    = "ad"
	ActionChat  = "chat"
	ActionCall  = "call"
)

// Action is one planned outreach step, before persistence assigns IDs and
// schedule timestamps.
type Action struct {
	Type       string
	TriggerDay int
	Subject    string
	Content    string
}

// PlanCampaign emits the deterministic outreach sequence for a warm lead.
// Below the qualification threshold it returns an empty plan. Scores at or
// above the high-value threshold add a day-0 chat prompt and, when a
// dialable phone number is present, a day-0 SMS.
func PlanCampaign(lead repository.WarmLead) ([]Action, error) {
	if lead.WarmthScore < QualificationThreshold {
		return nil, nil
	}

	company := displayCompany(lead.Company)
	pages := topPages(lead.VisitedPages)

	actions := []Action{
		{
			Type:       ActionEmail,
			TriggerDay: 1,
			Subject:    fmt.Sprintf("Still comparing options, %s?", company),
			Content:    personalizedEmailBody(company, pages),
		},
		{
			Type:       ActionAd,
			TriggerDay: 2,
			Subject:    "Retargeting creative",
			Content: fmt.Sprintf(
				"Retargeting ad for %s: highlight the features they explored and a direct link back to their last session.", company),
		},
		{
			Type:       ActionEmail,
			TriggerDay: 3,
			Subject:    "How teams like yours decided",
			Content: fmt.Sprintf(
				"Hi %s team,\n\nThree companies in your segment switched to us last quarter. Here is what changed for them: faster lead response, consolidated competitive intel, and a clear view of which deals were at risk.\n\nWant the full case studies? Just reply.\n", company),
		},
		{
			Type:       ActionEmail,
			TriggerDay: 5,
			Subject:    "Your evaluation discount expires soon",
			Content: fmt.Sprintf(
				"Hi %s team,\n\nWe reserved an evaluation discount for accounts that engaged this deeply. It expires at the end of the week. Book a call and we will apply it to your first year.\n", company),
		},
	}

	if lead.WarmthScore >= HighValueThreshold {
		actions = append(actions, Action{
			Type:       ActionChat,
			TriggerDay: 0,
			Subject:    "Live chat prompt",
			Content: fmt.Sprintf(
				"Proactive chat for %s: \"Looks like you are evaluating right now. Want a 10-minute walkthrough of the parts you have been exploring?\"", company),
		})
		if phone.IsDialable(lead.Phone) {
			actions = append(actions, Action{
				Type:       ActionSMS,
				TriggerDay: 0,
				Subject:    "Immediate SMS",
				Content: fmt.Sprintf(
					"%s: thanks for taking a close look at us. Reply YES and a specialist will call you within the hour.", company),
			})
		}
	}

	for _, a := range actions {
		// Template lengths make violations impossible; this guards future edits.
		if len(a.Content) > maxContentLen {
			return nil, apperr.Internal(fmt.Sprintf("seizure action content exceeds %d chars", maxContentLen))
		}
		if a.TriggerDay < 0 || a.TriggerDay > maxTriggerDay {
			return nil, apperr.Internal(fmt.Sprintf("seizure action trigger day %d out of range", a.TriggerDay))
		}
	}

	return actions, nil
}

func personalizedEmailBody(company string, pages []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s team,\n\nWe noticed you spent real time evaluating us", company)
	if len(pages) > 0 {
		b.WriteString(", including ")
		b.WriteString(strings.Join(pages, ", "))
	}
	b.WriteString(".\n\nIf pricing or rollout questions are holding things up, a 15-minute call usually settles both. Pick a slot that works for you.\n")
	return b.String()
}

func displayCompany(company string) string {
	trimmed := strings.TrimSpace(company)
	if trimmed == "" {
		return "there"
	}
	return trimmed
}

func topPages(pages []string) []string {
	if len(pages) <= maxPagesInCopy {
		return pages
	}
	return pages[:maxPagesInCopy]
}
