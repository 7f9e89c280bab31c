package repository

import (
	"time"

	"github.com/google/uuid"
)

// Lead is the minimal lead record the scoring engines operate on.
type Lead struct {
	ID                uuid.UUID
	Email             *string
	Phone             *string
	Company           *string
	Source            *string
	DemoRequested     bool
	PricingPageVisits int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BehaviorSnapshot is one sanitized telemetry record for a lead.
type BehaviorSnapshot struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Data      []byte // sanitized behavior.Data as JSONB
	CreatedAt time.Time
}

// WarmLead is the derived profile for a lead that crossed the warm
// signal threshold. Detection metadata is immutable; score, status and
// seizure history evolve.
type WarmLead struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	Email         string
	Phone         string
	Company       string
	WarmthScore   int
	Status        string
	Signals       []string
	VisitedPages  []string
	SourceChannel string
	DetectedAt    time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SeizureAction is one scheduled outreach step of a seizure campaign.
// Rows are append-only; only status advances.
type SeizureAction struct {
	ID           uuid.UUID
	WarmLeadID   uuid.UUID
	CampaignID   uuid.UUID
	Type         string
	TriggerDay   int
	Subject      string
	Content      string
	Status       string
	ScheduledFor time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Conversation is one transcript attached to a lead.
type Conversation struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	Transcript string
	OccurredAt time.Time
}

// ThreatScoreRecord is one scoring snapshot; recomputed, never mutated.
type ThreatScoreRecord struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	OverallScore int
	ThreatLevel  string
	Factors      []byte // per-factor breakdown as JSONB
	Indicators   []byte
	Actions      []byte
	CalculatedAt time.Time
	ExpiresAt    time.Time
}
