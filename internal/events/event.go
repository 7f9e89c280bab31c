// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadintel_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Behavior Domain Events
// =============================================================================

// BehaviorIngested is published when a behavior snapshot is sanitized and stored.
type BehaviorIngested struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	SnapshotID   uuid.UUID `json:"snapshotId"`
	SourceDomain string    `json:"sourceDomain,omitempty"`
}

func (e BehaviorIngested) EventName() string { return "behavior.snapshot.ingested" }

// =============================================================================
// Warm Lead Domain Events
// =============================================================================

// WarmLeadDetected is published when a lead first crosses the warm signal threshold.
type WarmLeadDetected struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	WarmthScore int       `json:"warmthScore"`
	Signals     []string  `json:"signals"`
}

func (e WarmLeadDetected) EventName() string { return "warmth.lead.detected" }

// WarmLeadQualified is published when a warm lead's score reaches the
// qualification threshold and becomes eligible for a seizure campaign.
type WarmLeadQualified struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	WarmthScore int       `json:"warmthScore"`
	HighValue   bool      `json:"highValue"`
}

func (e WarmLeadQualified) EventName() string { return "warmth.lead.qualified" }

// =============================================================================
// Seizure Domain Events
// =============================================================================

// CampaignPlanned is published when a seizure campaign is generated for a lead.
type CampaignPlanned struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	CampaignID  uuid.UUID `json:"campaignId"`
	ActionCount int       `json:"actionCount"`
	HighValue   bool      `json:"highValue"`
}

func (e CampaignPlanned) EventName() string { return "seizure.campaign.planned" }

// SeizureActionDispatched is published when a scheduled outreach action is sent.
type SeizureActionDispatched struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	ActionID   uuid.UUID `json:"actionId"`
	ActionType string    `json:"actionType"`
	Channel    string    `json:"channel"`
}

func (e SeizureActionDispatched) EventName() string { return "seizure.action.dispatched" }

// =============================================================================
// Threat Score Domain Events
// =============================================================================

// ThreatScoreCalculated is published after a threat score is computed and stored.
type ThreatScoreCalculated struct {
	BaseEvent
	LeadID       uuid.UUID  `json:"leadId"`
	ScoreID      uuid.UUID  `json:"scoreId"`
	OverallScore int        `json:"overallScore"`
	ThreatLevel  string     `json:"threatLevel"`
	SLADeadline  *time.Time `json:"slaDeadline,omitempty"`
}

func (e ThreatScoreCalculated) EventName() string { return "threat.score.calculated" }

// =============================================================================
// Lead Lifecycle Domain Events
// =============================================================================

// LeadConverted is published when a warm lead converts. All pending outreach
// for the lead must be cancelled by subscribers.
type LeadConverted struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// LeadUnsubscribed is published when a lead opts out of outreach.
type LeadUnsubscribed struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LeadUnsubscribed) EventName() string { return "leads.lead.unsubscribed" }
