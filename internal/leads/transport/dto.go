// Package transport defines the request and response DTOs for the leads API.
package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Batch limits for ingestion and scoring endpoints.
const (
	MaxBehaviorBatch = 100
	MaxScoreBatch    = 100
)

// Request DTOs

// IngestBehaviorRequest carries one raw telemetry record. The payload is
// deliberately untyped; the sanitizer owns all coercion and clamping.
type IngestBehaviorRequest struct {
	Payload map[string]any `json:"payload" validate:"required"`
}

// IngestBehaviorBatchRequest carries up to 100 raw telemetry records.
type IngestBehaviorBatchRequest struct {
	Payloads []map[string]any `json:"payloads" validate:"required,min=1,max=100"`
}

// SeizeRequest triggers campaign planning for a warm lead.
type SeizeRequest struct {
	// Force replans even when a campaign already exists.
	Force bool `json:"force,omitempty"`
}

// ActionStatusRequest advances one seizure action.
type ActionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending sent opened clicked converted failed cancelled"`
}

// RecordConversationRequest stores one sales conversation transcript.
type RecordConversationRequest struct {
	Transcript string     `json:"transcript" validate:"required,min=1,max=50000"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
}

// ThreatScoreBatchRequest scores up to 100 leads in one call.
type ThreatScoreBatchRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=100"`
}

// CreateCompetitorRequest registers a competitor for threat scoring.
type CreateCompetitorRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Domain string `json:"domain,omitempty" validate:"omitempty,max=200"`
}

// Response DTOs

// BehaviorIngestResponse reports the outcome of one ingestion.
type BehaviorIngestResponse struct {
	LeadID      uuid.UUID `json:"leadId"`
	SnapshotID  uuid.UUID `json:"snapshotId"`
	Warm        bool      `json:"warm"`
	WarmthScore int       `json:"warmthScore"`
	Signals     []string  `json:"signals"`
}

// BehaviorBatchItemResult is the per-item outcome inside a batch response.
type BehaviorBatchItemResult struct {
	Index    int                     `json:"index"`
	Success  bool                    `json:"success"`
	Error    string                  `json:"error,omitempty"`
	Ingested *BehaviorIngestResponse `json:"ingested,omitempty"`
}

// BatchSummary aggregates per-item outcomes.
type BatchSummary struct {
	Total       int     `json:"total"`
	Succeeded   int     `json:"succeeded"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"successRate"`
}

// BehaviorBatchResponse is the envelope for batch ingestion.
type BehaviorBatchResponse struct {
	Results []BehaviorBatchItemResult `json:"results"`
	Summary BatchSummary              `json:"summary"`
}

// WarmLeadResponse is the API shape of a warm lead profile.
type WarmLeadResponse struct {
	ID            uuid.UUID `json:"id"`
	LeadID        uuid.UUID `json:"leadId"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Company       string    `json:"company,omitempty"`
	WarmthScore   int       `json:"warmthScore"`
	Status        string    `json:"status"`
	Signals       []string  `json:"signals"`
	SourceChannel string    `json:"sourceChannel,omitempty"`
	DetectedAt    time.Time `json:"detectedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SeizureActionResponse is the API shape of one campaign step.
type SeizureActionResponse struct {
	ID           uuid.UUID `json:"id"`
	CampaignID   uuid.UUID `json:"campaignId"`
	Type         string    `json:"type"`
	TriggerDay   int       `json:"triggerDay"`
	Subject      string    `json:"subject"`
	Content      string    `json:"content"`
	Status       string    `json:"status"`
	ScheduledFor time.Time `json:"scheduledFor"`
}

// SeizeResponse returns the planned campaign.
type SeizeResponse struct {
	WarmLeadID uuid.UUID               `json:"warmLeadId"`
	Status     string                  `json:"status"`
	Actions    []SeizureActionResponse `json:"actions"`
}

// ThreatScoreResponse is the API shape of one scoring snapshot.
type ThreatScoreResponse struct {
	LeadID       uuid.UUID       `json:"leadId"`
	OverallScore int             `json:"overallScore"`
	ThreatLevel  string          `json:"threatLevel"`
	Factors      json.RawMessage `json:"factors"`
	Indicators   json.RawMessage `json:"indicators"`
	Actions      json.RawMessage `json:"recommendedActions"`
	CalculatedAt time.Time       `json:"calculatedAt"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	Cached       bool            `json:"cached"`
}

// ThreatScoreBatchItemResult is the per-item outcome inside a batch score.
type ThreatScoreBatchItemResult struct {
	LeadID  uuid.UUID            `json:"leadId"`
	Success bool                 `json:"success"`
	Error   string               `json:"error,omitempty"`
	Score   *ThreatScoreResponse `json:"score,omitempty"`
}

// ThreatScoreBatchResponse is the envelope for batch scoring.
type ThreatScoreBatchResponse struct {
	Results []ThreatScoreBatchItemResult `json:"results"`
	Summary BatchSummary                 `json:"summary"`
}
