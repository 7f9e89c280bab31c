// Package service orchestrates the scoring engines: behavior ingestion,
// warm-lead lifecycle, seizure planning, and threat score calculation.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadintel_backend/internal/events"
	"leadintel_backend/internal/leads/behavior"
	"leadintel_backend/internal/leads/domain"
	"leadintel_backend/internal/leads/repository"
	"leadintel_backend/internal/leads/seizure"
	"leadintel_backend/internal/leads/threat"
	"leadintel_backend/internal/leads/transport"
	"leadintel_backend/internal/leads/warmth"
	"leadintel_backend/platform/apperr"
	"leadintel_backend/platform/logger"
	"leadintel_backend/platform/sanitize"

	"github.com/google/uuid"
)

// ActionScheduler enqueues delivery of a seizure action at its trigger time.
type ActionScheduler interface {
	ScheduleActionDue(ctx context.Context, actionID uuid.UUID, at time.Time) error
}

// CompetitorProvider supplies the known competitor set for threat scoring.
type CompetitorProvider interface {
	ListForScoring(ctx context.Context) ([]threat.Competitor, error)
}

// Service wires the pure engines to persistence, events, and scheduling.
type Service struct {
	repo        *repository.Repository
	scorer      *warmth.Scorer
	calculator  *threat.Calculator
	competitors CompetitorProvider
	scheduler   ActionScheduler
	bus         events.Bus
	log         *logger.Logger
}

// New creates the leads service. scheduler and competitors may be nil;
// planning then skips delivery scheduling and scoring sees no competitors.
func New(
	repo *repository.Repository,
	scorer *warmth.Scorer,
	calculator *threat.Calculator,
	competitors CompetitorProvider,
	scheduler ActionScheduler,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:        repo,
		scorer:      scorer,
		calculator:  calculator,
		competitors: competitors,
		scheduler:   scheduler,
		bus:         bus,
		log:         log,
	}
}

// IngestBehavior sanitizes one telemetry record, persists the snapshot, and
// creates or re-scores the warm-lead profile when signals fire.
func (s *Service) IngestBehavior(ctx context.Context, raw map[string]any) (*transport.BehaviorIngestResponse, error) {
	data, err := behavior.Sanitize(raw)
	if err != nil {
		return nil, err
	}

	lead, err := s.repo.UpsertLead(ctx, data.Email, data.Phone, data.Company, data.SourceChannel)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, apperr.Internal("failed to encode behavior snapshot")
	}
	snapshot, err := s.repo.InsertBehaviorSnapshot(ctx, lead.ID, payload)
	if err != nil {
		return nil, err
	}

	if data.PricingPageSeconds > 0 {
		if err := s.repo.IncrementPricingPageVisits(ctx, lead.ID, 1); err != nil && s.log != nil {
			s.log.DatabaseError("increment pricing visits", err)
		}
	}

	signals := warmth.DetectSignals(data)
	resp := &transport.BehaviorIngestResponse{
		LeadID:     lead.ID,
		SnapshotID: snapshot.ID,
		Signals:    signals.Names(),
	}

	s.publish(ctx, events.BehaviorIngested{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		SnapshotID:   snapshot.ID,
		SourceDomain: data.SourceChannel,
	})

	if !signals.IsWarm() {
		return resp, nil
	}

	score := s.scorer.Score(data)
	warmLead, created, err := s.upsertWarmProfile(ctx, lead.ID, data, score, signals)
	if err != nil {
		return nil, err
	}

	resp.Warm = true
	resp.WarmthScore = warmLead.WarmthScore

	if created {
		s.publish(ctx, events.WarmLeadDetected{
			BaseEvent:   events.NewBaseEvent(),
			LeadID:      lead.ID,
			WarmthScore: score,
			Signals:     signals.Names(),
		})
	}
	if s.log != nil {
		s.log.ScoreCalculated("warmth", lead.ID.String(), score, warmLead.Status)
	}

	return resp, nil
}

func (s *Service) upsertWarmProfile(ctx context.Context, leadID uuid.UUID, data behavior.Data, score int, signals warmth.Signals) (repository.WarmLead, bool, error) {
	existing, err := s.repo.GetWarmLeadByLeadID(ctx, leadID)
	created := errors.Is(err, repository.ErrNotFound)
	if err != nil && !created {
		return repository.WarmLead{}, false, err
	}

	// Terminal profiles keep their state; we still record the fresh score.
	if !created && domain.IsTerminalWarmLeadStatus(existing.Status) {
		if err := s.repo.UpdateWarmLeadScore(ctx, existing.ID, score, signals.Names()); err != nil {
			return repository.WarmLead{}, false, err
		}
		existing.WarmthScore = score
		return existing, false, nil
	}

	warmLead, err := s.repo.UpsertWarmLead(ctx, repository.WarmLead{
		LeadID:        leadID,
		Email:         data.Email,
		Phone:         data.Phone,
		Company:       data.Company,
		WarmthScore:   score,
		Status:        domain.WarmLeadDetected,
		Signals:       signals.Names(),
		VisitedPages:  data.VisitedPages,
		SourceChannel: data.SourceChannel,
	})
	if err != nil {
		return repository.WarmLead{}, false, err
	}

	if score >= seizure.QualificationThreshold &&
		domain.CanTransitionWarmLead(warmLead.Status, domain.WarmLeadQualified) {
		if err := s.repo.UpdateWarmLeadStatus(ctx, warmLead.ID, domain.WarmLeadQualified); err != nil {
			return repository.WarmLead{}, false, err
		}
		warmLead.Status = domain.WarmLeadQualified

		s.publish(ctx, events.WarmLeadQualified{
			BaseEvent:   events.NewBaseEvent(),
			LeadID:      leadID,
			WarmthScore: score,
			HighValue:   score >= seizure.HighValueThreshold,
		})
	}

	return warmLead, created, nil
}

// IngestBehaviorBatch processes up to 100 records with per-item isolation.
// The sanitizer's own circuit breaker is applied across the raw batch first.
func (s *Service) IngestBehaviorBatch(ctx context.Context, raws []map[string]any) (*transport.BehaviorBatchResponse, error) {
	if len(raws) == 0 || len(raws) > transport.MaxBehaviorBatch {
		return nil, apperr.Validation(fmt.Sprintf("batch size must be between 1 and %d", transport.MaxBehaviorBatch))
	}

	// Reject producer-level garbage before touching storage.
	if _, err := behavior.SanitizeBatch(raws); err != nil {
		return nil, err
	}

	results := make([]transport.BehaviorBatchItemResult, 0, len(raws))
	succeeded := 0
	for i, raw := range raws {
		item := transport.BehaviorBatchItemResult{Index: i}
		ingested, err := s.IngestBehavior(ctx, raw)
		if err != nil {
			item.Error = err.Error()
			if s.log != nil {
				s.log.Warn("batch item failed", "index", i, "error", err)
			}
		} else {
			item.Success = true
			item.Ingested = ingested
			succeeded++
		}
		results = append(results, item)
	}

	return &transport.BehaviorBatchResponse{
		Results: results,
		Summary: batchSummary(len(raws), succeeded),
	}, nil
}

// GetWarmLead returns one profile.
func (s *Service) GetWarmLead(ctx context.Context, id uuid.UUID) (repository.WarmLead, error) {
	warmLead, err := s.repo.GetWarmLeadByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.WarmLead{}, apperr.NotFound("warm lead not found")
	}
	return warmLead, err
}

// ListWarmLeads returns profiles ordered by score.
func (s *Service) ListWarmLeads(ctx context.Context, status string, limit, offset int) ([]repository.WarmLead, error) {
	return s.repo.ListWarmLeads(ctx, status, limit, offset)
}

// PlanSeizure plans and persists the outreach campaign for a warm lead,
// schedules delivery, and advances the lifecycle to seized.
func (s *Service) PlanSeizure(ctx context.Context, warmLeadID uuid.UUID, force bool) (*transport.SeizeResponse, error) {
	warmLead, err := s.GetWarmLead(ctx, warmLeadID)
	if err != nil {
		return nil, err
	}

	if domain.IsTerminalWarmLeadStatus(warmLead.Status) {
		return nil, apperr.Conflict("warm lead is in a terminal state")
	}

	existing, err := s.repo.CountSeizureActions(ctx, warmLeadID)
	if err != nil {
		return nil, err
	}
	if existing > 0 && !force {
		return nil, apperr.Conflict("campaign already planned for this lead")
	}

	planned, err := seizure.PlanCampaign(warmLead)
	if err != nil {
		return nil, err
	}
	if len(planned) == 0 {
		return nil, apperr.Validation("warm lead is below the qualification threshold")
	}

	campaignID := uuid.New()
	toStore := make([]repository.SeizureAction, 0, len(planned))
	for _, action := range planned {
		toStore = append(toStore, repository.SeizureAction{
			WarmLeadID:   warmLeadID,
			CampaignID:   campaignID,
			Type:         action.Type,
			TriggerDay:   action.TriggerDay,
			Subject:      action.Subject,
			Content:      action.Content,
			Status:       domain.ActionPending,
			ScheduledFor: warmLead.DetectedAt.Add(time.Duration(action.TriggerDay) * 24 * time.Hour),
		})
	}

	stored, err := s.repo.InsertSeizureActions(ctx, toStore)
	if err != nil {
		return nil, err
	}

	if domain.CanTransitionWarmLead(warmLead.Status, domain.WarmLeadSeized) {
		if err := s.repo.UpdateWarmLeadStatus(ctx, warmLeadID, domain.WarmLeadSeized); err != nil {
			return nil, err
		}
		warmLead.Status = domain.WarmLeadSeized
	}

	if s.scheduler != nil {
		for _, action := range stored {
			if err := s.scheduler.ScheduleActionDue(ctx, action.ID, action.ScheduledFor); err != nil && s.log != nil {
				s.log.Error("failed to schedule seizure action", "actionId", action.ID, "error", err)
			}
		}
	}

	s.publish(ctx, events.CampaignPlanned{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      warmLead.LeadID,
		CampaignID:  campaignID,
		ActionCount: len(stored),
		HighValue:   warmLead.WarmthScore >= seizure.HighValueThreshold,
	})
	if s.log != nil {
		s.log.CampaignPlanned(warmLead.LeadID.String(), len(stored))
	}

	return &transport.SeizeResponse{
		WarmLeadID: warmLeadID,
		Status:     warmLead.Status,
		Actions:    toActionResponses(stored),
	}, nil
}

// GenerateCloserGrid composes the conversion artifact bundle.
func (s *Service) GenerateCloserGrid(ctx context.Context, warmLeadID uuid.UUID) (seizure.CloserGrid, error) {
	warmLead, err := s.GetWarmLead(ctx, warmLeadID)
	if err != nil {
		return seizure.CloserGrid{}, err
	}

	history, err := s.repo.ListSeizureActions(ctx, warmLeadID)
	if err != nil {
		return seizure.CloserGrid{}, err
	}

	return seizure.GenerateCloserGrid(warmLead, history, time.Now().UTC()), nil
}

// ListSeizureActions returns the campaign history for a warm lead.
func (s *Service) ListSeizureActions(ctx context.Context, warmLeadID uuid.UUID) ([]repository.SeizureAction, error) {
	return s.repo.ListSeizureActions(ctx, warmLeadID)
}

// MarkActionStatus advances one action, enforcing forward-only transitions.
func (s *Service) MarkActionStatus(ctx context.Context, actionID uuid.UUID, status string) error {
	if !domain.IsKnownActionStatus(status) {
		return apperr.Validation("unknown action status: " + status)
	}

	action, err := s.repo.GetSeizureActionByID(ctx, actionID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("seizure action not found")
	}
	if err != nil {
		return err
	}

	if !domain.CanTransitionAction(action.Status, status) {
		return apperr.Conflict(fmt.Sprintf("action cannot move from %s to %s", action.Status, status))
	}

	return s.repo.UpdateSeizureActionStatus(ctx, actionID, status)
}

// MarkConverted moves a warm lead to its happy terminal state and cancels
// all pending outreach. actorID is the operator recording the conversion.
func (s *Service) MarkConverted(ctx context.Context, warmLeadID, actorID uuid.UUID) error {
	if s.log != nil {
		s.log.Info("warm lead marked converted", "warmLeadId", warmLeadID, "actorId", actorID)
	}
	return s.terminate(ctx, warmLeadID, domain.WarmLeadConverted)
}

// Unsubscribe opts a lead out of all outreach.
func (s *Service) Unsubscribe(ctx context.Context, warmLeadID uuid.UUID) error {
	return s.terminate(ctx, warmLeadID, domain.WarmLeadUnsubscribed)
}

func (s *Service) terminate(ctx context.Context, warmLeadID uuid.UUID, status string) error {
	warmLead, err := s.GetWarmLead(ctx, warmLeadID)
	if err != nil {
		return err
	}

	if !domain.CanTransitionWarmLead(warmLead.Status, status) {
		return apperr.Conflict(fmt.Sprintf("warm lead cannot move from %s to %s", warmLead.Status, status))
	}

	if err := s.repo.UpdateWarmLeadStatus(ctx, warmLeadID, status); err != nil {
		return err
	}

	cancelled, err := s.repo.CancelPendingActions(ctx, warmLeadID)
	if err != nil {
		return err
	}
	if s.log != nil && cancelled > 0 {
		s.log.Info("pending seizure actions cancelled", "warmLeadId", warmLeadID, "count", cancelled)
	}

	switch status {
	case domain.WarmLeadConverted:
		s.publish(ctx, events.LeadConverted{BaseEvent: events.NewBaseEvent(), LeadID: warmLead.LeadID})
	case domain.WarmLeadUnsubscribed:
		s.publish(ctx, events.LeadUnsubscribed{BaseEvent: events.NewBaseEvent(), LeadID: warmLead.LeadID})
	}
	return nil
}

// CalculateThreatScore computes (or returns the cached) threat score for a
// lead. Scores live 24 hours; force bypasses the cache. History is
// append-only: recalculation inserts, never mutates.
func (s *Service) CalculateThreatScore(ctx context.Context, leadID uuid.UUID, force bool) (*transport.ThreatScoreResponse, error) {
	lead, err := s.repo.GetLeadByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("lead not found")
	}
	if err != nil {
		return nil, err
	}

	if !force {
		if cached, err := s.repo.GetLatestThreatScore(ctx, leadID); err == nil && cached.ExpiresAt.After(time.Now().UTC()) {
			return toThreatResponse(cached, true), nil
		}
	}

	profile := threat.Lead{
		Email:             derefOrEmpty(lead.Email),
		Phone:             derefOrEmpty(lead.Phone),
		Company:           derefOrEmpty(lead.Company),
		Source:            derefOrEmpty(lead.Source),
		DemoRequested:     lead.DemoRequested,
		PricingPageVisits: lead.PricingPageVisits,
	}

	if snap, err := s.repo.GetLatestBehaviorSnapshot(ctx, leadID); err == nil {
		var data behavior.Data
		if err := json.Unmarshal(snap.Data, &data); err == nil {
			profile.EmailsOpened = data.EmailsOpened
			profile.VisitsLast14Days = data.VisitsLast14Days
		}
	}

	rows, err := s.repo.ListConversations(ctx, leadID)
	if err != nil {
		return nil, err
	}
	conversations := make([]threat.Conversation, 0, len(rows))
	for _, row := range rows {
		conversations = append(conversations, threat.Conversation{
			Transcript: row.Transcript,
			OccurredAt: row.OccurredAt,
		})
	}

	var competitors []threat.Competitor
	if s.competitors != nil {
		competitors, err = s.competitors.ListForScoring(ctx)
		if err != nil {
			// Scoring degrades to floor competitive factors; it does not fail.
			if s.log != nil {
				s.log.Warn("competitor lookup failed, scoring without competitors", "error", err)
			}
			competitors = nil
		}
	}

	score, err := s.calculator.Calculate(ctx, profile, conversations, competitors)
	if err != nil {
		return nil, err
	}

	record, err := s.storeThreatScore(ctx, leadID, score)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ThreatScoreCalculated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       leadID,
		ScoreID:      record.ID,
		OverallScore: record.OverallScore,
		ThreatLevel:  record.ThreatLevel,
	})
	if s.log != nil {
		s.log.ScoreCalculated("threat", leadID.String(), record.OverallScore, record.ThreatLevel)
	}

	return toThreatResponse(record, false), nil
}

func (s *Service) storeThreatScore(ctx context.Context, leadID uuid.UUID, score *threat.Score) (repository.ThreatScoreRecord, error) {
	factors, err := json.Marshal(score.Factors)
	if err != nil {
		return repository.ThreatScoreRecord{}, apperr.Internal("failed to encode threat factors")
	}
	indicators, err := json.Marshal(score.Indicators)
	if err != nil {
		return repository.ThreatScoreRecord{}, apperr.Internal("failed to encode threat indicators")
	}
	actions, err := json.Marshal(score.RecommendedActions)
	if err != nil {
		return repository.ThreatScoreRecord{}, apperr.Internal("failed to encode recommended actions")
	}

	return s.repo.InsertThreatScore(ctx, repository.ThreatScoreRecord{
		LeadID:       leadID,
		OverallScore: score.OverallScore,
		ThreatLevel:  score.ThreatLevel,
		Factors:      factors,
		Indicators:   indicators,
		Actions:      actions,
		CalculatedAt: score.CalculatedAt,
		ExpiresAt:    score.ExpiresAt,
	})
}

// GetThreatScore returns the latest stored score without recalculating.
func (s *Service) GetThreatScore(ctx context.Context, leadID uuid.UUID) (*transport.ThreatScoreResponse, error) {
	record, err := s.repo.GetLatestThreatScore(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("no threat score calculated for this lead")
	}
	if err != nil {
		return nil, err
	}
	return toThreatResponse(record, true), nil
}

// BatchScore scores up to 100 leads sequentially with per-item isolation.
// Only batch-level malformation is an error; item failures are reported in
// the summary.
func (s *Service) BatchScore(ctx context.Context, leadIDs []uuid.UUID) (*transport.ThreatScoreBatchResponse, error) {
	if len(leadIDs) == 0 || len(leadIDs) > transport.MaxScoreBatch {
		return nil, apperr.Validation(fmt.Sprintf("batch size must be between 1 and %d", transport.MaxScoreBatch))
	}

	results := make([]transport.ThreatScoreBatchItemResult, 0, len(leadIDs))
	succeeded := 0
	for _, leadID := range leadIDs {
		item := transport.ThreatScoreBatchItemResult{LeadID: leadID}
		score, err := s.CalculateThreatScore(ctx, leadID, false)
		if err != nil {
			item.Error = err.Error()
			if s.log != nil {
				s.log.Warn("batch score item failed", "leadId", leadID, "error", err)
			}
		} else {
			item.Success = true
			item.Score = score
			succeeded++
		}
		results = append(results, item)
	}

	return &transport.ThreatScoreBatchResponse{
		Results: results,
		Summary: batchSummary(len(leadIDs), succeeded),
	}, nil
}

// RescoreWarmLead recomputes the warmth score from the latest stored
// snapshot, used by the backfill command.
func (s *Service) RescoreWarmLead(ctx context.Context, warmLeadID uuid.UUID) error {
	warmLead, err := s.GetWarmLead(ctx, warmLeadID)
	if err != nil {
		return err
	}

	snap, err := s.repo.GetLatestBehaviorSnapshot(ctx, warmLead.LeadID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil // nothing to rescore from
	}
	if err != nil {
		return err
	}

	var data behavior.Data
	if err := json.Unmarshal(snap.Data, &data); err != nil {
		return apperr.Internal("stored behavior snapshot is unreadable")
	}

	signals := warmth.DetectSignals(data)
	return s.repo.UpdateWarmLeadScore(ctx, warmLeadID, s.scorer.Score(data), signals.Names())
}

// RecordConversation stores a sales conversation transcript. The next
// threat calculation folds it into the factor analysis.
func (s *Service) RecordConversation(ctx context.Context, leadID uuid.UUID, transcript string, occurredAt time.Time) (repository.Conversation, error) {
	if _, err := s.repo.GetLeadByID(ctx, leadID); errors.Is(err, repository.ErrNotFound) {
		return repository.Conversation{}, apperr.NotFound("lead not found")
	} else if err != nil {
		return repository.Conversation{}, err
	}

	transcript = sanitize.TextMax(transcript, 50000)
	if transcript == "" {
		return repository.Conversation{}, apperr.Validation("transcript is empty")
	}

	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return s.repo.InsertConversation(ctx, leadID, transcript, occurredAt)
}

// MarkDemoRequested flags a lead as having requested a demo, which raises
// intent on the next threat calculation.
func (s *Service) MarkDemoRequested(ctx context.Context, leadID uuid.UUID) error {
	if _, err := s.repo.GetLeadByID(ctx, leadID); errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	} else if err != nil {
		return err
	}
	return s.repo.MarkDemoRequested(ctx, leadID)
}

// ListWarmLeadIDs exposes profile IDs for backfill jobs.
func (s *Service) ListWarmLeadIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListWarmLeadIDs(ctx)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func batchSummary(total, succeeded int) transport.BatchSummary {
	rate := 0.0
	if total > 0 {
		rate = float64(succeeded) / float64(total)
	}
	return transport.BatchSummary{
		Total:       total,
		Succeeded:   succeeded,
		Failed:      total - succeeded,
		SuccessRate: rate,
	}
}

func toActionResponses(actions []repository.SeizureAction) []transport.SeizureActionResponse {
	out := make([]transport.SeizureActionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, transport.SeizureActionResponse{
			ID:           a.ID,
			CampaignID:   a.CampaignID,
			Type:         a.Type,
			TriggerDay:   a.TriggerDay,
			Subject:      a.Subject,
			Content:      a.Content,
			Status:       a.Status,
			ScheduledFor: a.ScheduledFor,
		})
	}
	return out
}

func toThreatResponse(record repository.ThreatScoreRecord, cached bool) *transport.ThreatScoreResponse {
	return &transport.ThreatScoreResponse{
		LeadID:       record.LeadID,
		OverallScore: record.OverallScore,
		ThreatLevel:  record.ThreatLevel,
		Factors:      record.Factors,
		Indicators:   record.Indicators,
		Actions:      record.Actions,
		CalculatedAt: record.CalculatedAt,
		ExpiresAt:    record.ExpiresAt,
		Cached:       cached,
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
