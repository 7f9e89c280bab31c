// Package repository persists leads, warm-lead profiles, seizure actions
// and threat score history.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("record not found")

// DB is the slice of pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	pool DB
}

func New(pool DB) *Repository {
	return &Repository{pool: pool}
}

// UpsertLead finds a lead by email (preferred) or phone, creating one when
// neither matches. Identity fields are refreshed on conflict.
func (r *Repository) UpsertLead(ctx context.Context, email, phone, company, source string) (Lead, error) {
	var lead Lead

	if email != "" {
		err := r.pool.QueryRow(ctx, `
			INSERT INTO leads (email, phone, company, source)
			VALUES (NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
			ON CONFLICT (email) DO UPDATE SET
				phone = COALESCE(NULLIF(EXCLUDED.phone, ''), leads.phone),
				company = COALESCE(NULLIF(EXCLUDED.company, ''), leads.company),
				updated_at = now()
			RETURNING id, email, phone, company, source, demo_requested, pricing_page_visits, created_at, updated_at
		`, email, phone, company, source).Scan(
			&lead.ID, &lead.Email, &lead.Phone, &lead.Company, &lead.Source,
			&lead.DemoRequested, &lead.PricingPageVisits, &lead.CreatedAt, &lead.UpdatedAt,
		)
		return lead, err
	}

	if phone != "" {
		err := r.pool.QueryRow(ctx, `
			SELECT id, email, phone, company, source, demo_requested, pricing_page_visits, created_at, updated_at
			FROM leads WHERE phone = $1
		`, phone).Scan(
			&lead.ID, &lead.Email, &lead.Phone, &lead.Company, &lead.Source,
			&lead.DemoRequested, &lead.PricingPageVisits, &lead.CreatedAt, &lead.UpdatedAt,
		)
		if err == nil {
			return lead, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, err
		}
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (email, phone, company, source)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
		RETURNING id, email, phone, company, source, demo_requested, pricing_page_visits, created_at, updated_at
	`, email, phone, company, source).Scan(
		&lead.ID, &lead.Email, &lead.Phone, &lead.Company, &lead.Source,
		&lead.DemoRequested, &lead.PricingPageVisits, &lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func (r *Repository) GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, phone, company, source, demo_requested, pricing_page_visits, created_at, updated_at
		FROM leads WHERE id = $1
	`, id).Scan(
		&lead.ID, &lead.Email, &lead.Phone, &lead.Company, &lead.Source,
		&lead.DemoRequested, &lead.PricingPageVisits, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// InsertBehaviorSnapshot appends a sanitized telemetry record for a lead.
func (r *Repository) InsertBehaviorSnapshot(ctx context.Context, leadID uuid.UUID, data []byte) (BehaviorSnapshot, error) {
	var snap BehaviorSnapshot
	err := r.pool.QueryRow(ctx, `
		INSERT INTO behavior_snapshots (lead_id, data)
		VALUES ($1, $2)
		RETURNING id, lead_id, data, created_at
	`, leadID, data).Scan(&snap.ID, &snap.LeadID, &snap.Data, &snap.CreatedAt)
	return snap, err
}

func (r *Repository) GetLatestBehaviorSnapshot(ctx context.Context, leadID uuid.UUID) (BehaviorSnapshot, error) {
	var snap BehaviorSnapshot
	err := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, data, created_at
		FROM behavior_snapshots
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, leadID).Scan(&snap.ID, &snap.LeadID, &snap.Data, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return BehaviorSnapshot{}, ErrNotFound
	}
	return snap, err
}

// UpsertWarmLead creates the warm-lead profile on first detection or
// refreshes the mutable fields on re-detection. DetectedAt is set once.
func (r *Repository) UpsertWarmLead(ctx context.Context, w WarmLead) (WarmLead, error) {
	var out WarmLead
	err := r.pool.QueryRow(ctx, `
		INSERT INTO warm_leads (lead_id, email, phone, company, warmth_score, status, signals, visited_pages, source_channel, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (lead_id) DO UPDATE SET
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			company = EXCLUDED.company,
			warmth_score = EXCLUDED.warmth_score,
			signals = EXCLUDED.signals,
			visited_pages = EXCLUDED.visited_pages,
			updated_at = now()
		RETURNING id, lead_id, email, phone, company, warmth_score, status, signals, visited_pages, source_channel, detected_at, created_at, updated_at
	`, w.LeadID, w.Email, w.Phone, w.Company, w.WarmthScore, w.Status, w.Signals, w.VisitedPages, w.SourceChannel).Scan(
		&out.ID, &out.LeadID, &out.Email, &out.Phone, &out.Company, &out.WarmthScore,
		&out.Status, &out.Signals, &out.VisitedPages, &out.SourceChannel,
		&out.DetectedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *Repository) GetWarmLeadByID(ctx context.Context, id uuid.UUID) (WarmLead, error) {
	return r.getWarmLead(ctx, "id", id)
}

func (r *Repository) GetWarmLeadByLeadID(ctx context.Context, leadID uuid.UUID) (WarmLead, error) {
	return r.getWarmLead(ctx, "lead_id", leadID)
}

func (r *Repository) getWarmLead(ctx context.Context, column string, id uuid.UUID) (WarmLead, error) {
	var out WarmLead
	query := `
		SELECT id, lead_id, email, phone, company, warmth_score, status, signals, visited_pages, source_channel, detected_at, created_at, updated_at
		FROM warm_leads WHERE ` + column + ` = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&out.ID, &out.LeadID, &out.Email, &out.Phone, &out.Company, &out.WarmthScore,
		&out.Status, &out.Signals, &out.VisitedPages, &out.SourceChannel,
		&out.DetectedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return WarmLead{}, ErrNotFound
	}
	return out, err
}

// ListWarmLeads returns profiles ordered by score, optionally filtered by status.
func (r *Repository) ListWarmLeads(ctx context.Context, status string, limit, offset int) ([]WarmLead, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, lead_id, email, phone, company, warmth_score, status, signals, visited_pages, source_channel, detected_at, created_at, updated_at
		FROM warm_leads`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY warmth_score DESC, detected_at DESC`
	if status != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]WarmLead, 0)
	for rows.Next() {
		var out WarmLead
		if err := rows.Scan(
			&out.ID, &out.LeadID, &out.Email, &out.Phone, &out.Company, &out.WarmthScore,
			&out.Status, &out.Signals, &out.VisitedPages, &out.SourceChannel,
			&out.DetectedAt, &out.CreatedAt, &out.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, out)
	}
	return items, rows.Err()
}

// ListWarmLeadIDs returns every profile ID, for backfill jobs.
func (r *Repository) ListWarmLeadIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM warm_leads ORDER BY detected_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateWarmLeadScore refreshes the score on an existing profile.
func (r *Repository) UpdateWarmLeadScore(ctx context.Context, id uuid.UUID, score int, signals []string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE warm_leads SET warmth_score = $2, signals = $3, updated_at = now() WHERE id = $1
	`, id, score, signals)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateWarmLeadStatus sets a new status. Transition legality is enforced by
// the caller against the current row.
func (r *Repository) UpdateWarmLeadStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE warm_leads SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertSeizureActions appends a planned campaign. Actions are never updated
// in content, only in status.
func (r *Repository) InsertSeizureActions(ctx context.Context, actions []SeizureAction) ([]SeizureAction, error) {
	out := make([]SeizureAction, 0, len(actions))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for _, a := range actions {
		var stored SeizureAction
		err := tx.QueryRow(ctx, `
			INSERT INTO seizure_actions (warm_lead_id, campaign_id, type, trigger_day, subject, content, status, scheduled_for)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, warm_lead_id, campaign_id, type, trigger_day, subject, content, status, scheduled_for, created_at, updated_at
		`, a.WarmLeadID, a.CampaignID, a.Type, a.TriggerDay, a.Subject, a.Content, a.Status, a.ScheduledFor).Scan(
			&stored.ID, &stored.WarmLeadID, &stored.CampaignID, &stored.Type, &stored.TriggerDay,
			&stored.Subject, &stored.Content, &stored.Status, &stored.ScheduledFor,
			&stored.CreatedAt, &stored.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) GetSeizureActionByID(ctx context.Context, id uuid.UUID) (SeizureAction, error) {
	var a SeizureAction
	err := r.pool.QueryRow(ctx, `
		SELECT id, warm_lead_id, campaign_id, type, trigger_day, subject, content, status, scheduled_for, created_at, updated_at
		FROM seizure_actions WHERE id = $1
	`, id).Scan(
		&a.ID, &a.WarmLeadID, &a.CampaignID, &a.Type, &a.TriggerDay,
		&a.Subject, &a.Content, &a.Status, &a.ScheduledFor, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return SeizureAction{}, ErrNotFound
	}
	return a, err
}

func (r *Repository) ListSeizureActions(ctx context.Context, warmLeadID uuid.UUID) ([]SeizureAction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, warm_lead_id, campaign_id, type, trigger_day, subject, content, status, scheduled_for, created_at, updated_at
		FROM seizure_actions
		WHERE warm_lead_id = $1
		ORDER BY trigger_day ASC, created_at ASC
	`, warmLeadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]SeizureAction, 0)
	for rows.Next() {
		var a SeizureAction
		if err := rows.Scan(
			&a.ID, &a.WarmLeadID, &a.CampaignID, &a.Type, &a.TriggerDay,
			&a.Subject, &a.Content, &a.Status, &a.ScheduledFor, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *Repository) CountSeizureActions(ctx context.Context, warmLeadID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM seizure_actions WHERE warm_lead_id = $1
	`, warmLeadID).Scan(&count)
	return count, err
}

// UpdateSeizureActionStatus advances the action status. The caller checks
// transition legality first.
func (r *Repository) UpdateSeizureActionStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE seizure_actions SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelPendingActions cancels every pending action for a warm lead, used
// on conversion and unsubscribe.
func (r *Repository) CancelPendingActions(ctx context.Context, warmLeadID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE seizure_actions SET status = 'cancelled', updated_at = now()
		WHERE warm_lead_id = $1 AND status = 'pending'
	`, warmLeadID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// InsertConversation records one sales conversation transcript for scoring.
func (r *Repository) InsertConversation(ctx context.Context, leadID uuid.UUID, transcript string, occurredAt time.Time) (Conversation, error) {
	var c Conversation
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (lead_id, transcript, occurred_at)
		VALUES ($1, $2, $3)
		RETURNING id, lead_id, transcript, occurred_at
	`, leadID, transcript, occurredAt).Scan(&c.ID, &c.LeadID, &c.Transcript, &c.OccurredAt)
	return c, err
}

func (r *Repository) ListConversations(ctx context.Context, leadID uuid.UUID) ([]Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, transcript, occurred_at
		FROM conversations
		WHERE lead_id = $1
		ORDER BY occurred_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Conversation, 0)
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.LeadID, &c.Transcript, &c.OccurredAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// InsertThreatScore appends a scoring snapshot to the history.
func (r *Repository) InsertThreatScore(ctx context.Context, rec ThreatScoreRecord) (ThreatScoreRecord, error) {
	var out ThreatScoreRecord
	err := r.pool.QueryRow(ctx, `
		INSERT INTO threat_scores (lead_id, overall_score, threat_level, factors, indicators, actions, calculated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, lead_id, overall_score, threat_level, factors, indicators, actions, calculated_at, expires_at
	`, rec.LeadID, rec.OverallScore, rec.ThreatLevel, rec.Factors, rec.Indicators, rec.Actions, rec.CalculatedAt, rec.ExpiresAt).Scan(
		&out.ID, &out.LeadID, &out.OverallScore, &out.ThreatLevel,
		&out.Factors, &out.Indicators, &out.Actions, &out.CalculatedAt, &out.ExpiresAt,
	)
	return out, err
}

// GetLatestThreatScore returns the newest scoring snapshot for a lead.
func (r *Repository) GetLatestThreatScore(ctx context.Context, leadID uuid.UUID) (ThreatScoreRecord, error) {
	var out ThreatScoreRecord
	err := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, overall_score, threat_level, factors, indicators, actions, calculated_at, expires_at
		FROM threat_scores
		WHERE lead_id = $1
		ORDER BY calculated_at DESC
		LIMIT 1
	`, leadID).Scan(
		&out.ID, &out.LeadID, &out.OverallScore, &out.ThreatLevel,
		&out.Factors, &out.Indicators, &out.Actions, &out.CalculatedAt, &out.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ThreatScoreRecord{}, ErrNotFound
	}
	return out, err
}

// MarkDemoRequested records demo interest on the base lead record.
func (r *Repository) MarkDemoRequested(ctx context.Context, leadID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET demo_requested = true, updated_at = now() WHERE id = $1
	`, leadID)
	return err
}

// IncrementPricingPageVisits bumps the pricing-visit counter used by the
// threat calculator's behavioral bonuses.
func (r *Repository) IncrementPricingPageVisits(ctx context.Context, leadID uuid.UUID, by int) error {
	if by <= 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET pricing_page_visits = pricing_page_visits + $2, updated_at = now() WHERE id = $1
	`, leadID, by)
	return err
}
