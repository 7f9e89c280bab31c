package seizure

import (
	"strings"
	"testing"
	"time"

	"leadintel_backend/internal/leads/repository"
)

func TestPlanCampaignBelowThresholdIsEmpty(t *testing.T) {
	actions, err := PlanCampaign(repository.WarmLead{WarmthScore: 64, Company: "Acme"})
	if err != nil {
		t.Fatalf("PlanCampaign returned error: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("score below 65 should yield no actions, got %d", len(actions))
	}
}

func TestPlanCampaignQualifiedYieldsFourActions(t *testing.T) {
	actions, err := PlanCampaign(repository.WarmLead{WarmthScore: 70, Company: "Acme"})
	if err != nil {
		t.Fatalf("PlanCampaign returned error: %v", err)
	}
	if len(actions) != 4 {
		t.Fatalf("qualified lead should get 4 actions, got %d", len(actions))
	}

	wantDays := []int{1, 2, 3, 5}
	wantTypes := []string{ActionEmail, ActionAd, ActionEmail, ActionEmail}
	for i, a := range actions {
		if a.TriggerDay != wantDays[i] {
			t.Fatalf("action %d: trigger day %d, want %d", i, a.TriggerDay, wantDays[i])
		}
		if a.Type != wantTypes[i] {
			t.Fatalf("action %d: type %s, want %s", i, a.Type, wantTypes[i])
		}
		if len(a.Content) == 0 || len(a.Content) > 5000 {
			t.Fatalf("action %d: content length %d out of bounds", i, len(a.Content))
		}
	}
}

func TestPlanCampaignHighValueWithPhone(t *testing.T) {
	actions, err := PlanCampaign(repository.WarmLead{
		WarmthScore: 90,
		Company:     "Acme",
		Phone:       "+14155552671",
	})
	if err != nil {
		t.Fatalf("PlanCampaign returned error: %v", err)
	}
	if len(actions) != 6 {
		t.Fatalf("high-value lead with phone should get 6 actions, got %d", len(actions))
	}

	var chat, sms int
	for _, a := range actions {
		switch a.Type {
		case ActionChat:
			chat++
			if a.TriggerDay != 0 {
				t.Fatalf("chat should fire day 0, got %d", a.TriggerDay)
			}
		case ActionSMS:
			sms++
			if a.TriggerDay != 0 {
				t.Fatalf("sms should fire day 0, got %d", a.TriggerDay)
			}
		}
	}
	if chat != 1 || sms != 1 {
		t.Fatalf("expected 1 chat and 1 sms, got %d and %d", chat, sms)
	}
}

func TestPlanCampaignHighValueWithoutPhone(t *testing.T) {
	actions, err := PlanCampaign(repository.WarmLead{WarmthScore: 85, Company: "Acme"})
	if err != nil {
		t.Fatalf("PlanCampaign returned error: %v", err)
	}
	if len(actions) != 5 {
		t.Fatalf("high-value lead without phone should get 5 actions, got %d", len(actions))
	}
}

func TestPlanCampaignContentUsesVisitedPages(t *testing.T) {
	actions, err := PlanCampaign(repository.WarmLead{
		WarmthScore:  70,
		Company:      "Acme",
		VisitedPages: []string{"/pricing", "/features", "/security", "/about"},
	})
	if err != nil {
		t.Fatalf("PlanCampaign returned error: %v", err)
	}

	body := actions[0].Content
	for _, page := range []string{"/pricing", "/features", "/security"} {
		if !strings.Contains(body, page) {
			t.Fatalf("day-1 email should mention %s:\n%s", page, body)
		}
	}
	if strings.Contains(body, "/about") {
		t.Fatal("day-1 email should mention at most 3 pages")
	}
}

func TestGenerateCloserGridAutoDialer(t *testing.T) {
	now := time.Now()
	base := repository.WarmLead{
		WarmthScore: 90,
		Company:     "Acme",
		Phone:       "+14155552671",
		DetectedAt:  now.Add(-4 * 24 * time.Hour),
	}
	history := []repository.SeizureAction{{Type: ActionEmail}}

	if grid := GenerateCloserGrid(base, history, now); !grid.AutoDialerTrigger {
		t.Fatal("all conditions met: auto-dialer should trigger")
	}

	fresh := base
	fresh.DetectedAt = now.Add(-24 * time.Hour)
	if grid := GenerateCloserGrid(fresh, history, now); grid.AutoDialerTrigger {
		t.Fatal("lead detected 1 day ago must not be auto-dialed")
	}

	lukewarm := base
	lukewarm.WarmthScore = 84
	if grid := GenerateCloserGrid(lukewarm, history, now); grid.AutoDialerTrigger {
		t.Fatal("score below 85 must not trigger auto-dialer")
	}

	if grid := GenerateCloserGrid(base, nil, now); grid.AutoDialerTrigger {
		t.Fatal("empty seizure history must not trigger auto-dialer")
	}

	noPhone := base
	noPhone.Phone = ""
	if grid := GenerateCloserGrid(noPhone, history, now); grid.AutoDialerTrigger {
		t.Fatal("missing phone must not trigger auto-dialer")
	}
}

func TestGenerateCloserGridComplete(t *testing.T) {
	now := time.Now()
	grid := GenerateCloserGrid(repository.WarmLead{WarmthScore: 70, Company: "Acme Corp"}, nil, now)

	if grid.LandingPageURL == "" || grid.ScarcityCountdown == "" || grid.CalendarBooking == "" {
		t.Fatalf("grid artifacts incomplete: %+v", grid)
	}
	if len(grid.Testimonials) == 0 || len(grid.CaseStudies) == 0 {
		t.Fatal("grid should include testimonials and case studies")
	}
	if !grid.GeneratedAt.Equal(now) {
		t.Fatal("generatedAt should be the provided timestamp")
	}
}
