// Package repository provides PostgreSQL persistence for competitors.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a competitor does not exist.
var ErrNotFound = errors.New("competitor not found")

// Competitor is a tracked rival whose presence raises lead threat scores.
type Competitor struct {
	ID              uuid.UUID
	Name            string
	Domain          string
	AdSpendEstimate float64
	ActiveCreatives int
	LastRefreshedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const competitorColumns = `id, name, domain, ad_spend_estimate, active_creatives, last_refreshed_at, created_at, updated_at`

// Upsert creates a competitor or updates its domain when the name already
// exists. Names are the natural key.
func (r *Repository) Upsert(ctx context.Context, name, domain string) (Competitor, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO competitors (name, domain)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			domain = COALESCE(NULLIF(EXCLUDED.domain, ''), competitors.domain),
			updated_at = NOW()
		RETURNING `+competitorColumns,
		name, domain)
	return scanCompetitor(row)
}

// GetByID returns one competitor.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Competitor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+competitorColumns+` FROM competitors WHERE id = $1`, id)
	return scanCompetitor(row)
}

// List returns all competitors ordered by name.
func (r *Repository) List(ctx context.Context) ([]Competitor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+competitorColumns+` FROM competitors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Competitor
	for rows.Next() {
		c, err := scanCompetitor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateAdIntel stores refreshed ad-library metrics.
func (r *Repository) UpdateAdIntel(ctx context.Context, id uuid.UUID, adSpend float64, creatives int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE competitors
		SET ad_spend_estimate = $2, active_creatives = $3, last_refreshed_at = NOW(), updated_at = NOW()
		WHERE id = $1`,
		id, adSpend, creatives)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCompetitor(row pgx.Row) (Competitor, error) {
	var c Competitor
	err := row.Scan(
		&c.ID, &c.Name, &c.Domain, &c.AdSpendEstimate, &c.ActiveCreatives,
		&c.LastRefreshedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Competitor{}, ErrNotFound
	}
	return c, err
}
