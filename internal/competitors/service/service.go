// Package service provides competitor tracking and ad-intelligence refresh.
package service

import (
	"context"
	"errors"

	"leadintel_backend/internal/competitors/client"
	"leadintel_backend/internal/competitors/repository"
	"leadintel_backend/internal/leads/threat"
	"leadintel_backend/platform/apperr"
	"leadintel_backend/platform/logger"

	"github.com/google/uuid"
)

// AdIntelClient fetches advertising metrics for one advertiser.
type AdIntelClient interface {
	FetchAdIntel(ctx context.Context, advertiser string) (client.AdIntel, error)
}

// Service manages the competitor roster used by threat scoring.
type Service struct {
	repo    *repository.Repository
	adIntel AdIntelClient
	log     *logger.Logger
}

// New creates the competitors service. adIntel may be nil when the ad-library
// integration is disabled; refresh then returns a conflict.
func New(repo *repository.Repository, adIntel AdIntelClient, log *logger.Logger) *Service {
	return &Service{repo: repo, adIntel: adIntel, log: log}
}

// Create registers a competitor, or updates the domain of an existing one.
func (s *Service) Create(ctx context.Context, name, domain string) (repository.Competitor, error) {
	return s.repo.Upsert(ctx, name, domain)
}

// List returns all tracked competitors.
func (s *Service) List(ctx context.Context) ([]repository.Competitor, error) {
	return s.repo.List(ctx)
}

// RefreshAdIntel pulls fresh ad-library metrics for one competitor.
func (s *Service) RefreshAdIntel(ctx context.Context, id uuid.UUID) (repository.Competitor, error) {
	if s.adIntel == nil {
		return repository.Competitor{}, apperr.Conflict("ad-library integration is not configured")
	}

	competitor, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Competitor{}, apperr.NotFound("competitor not found")
	}
	if err != nil {
		return repository.Competitor{}, err
	}

	intel, err := s.adIntel.FetchAdIntel(ctx, competitor.Name)
	if err != nil {
		return repository.Competitor{}, apperr.Internal("ad-library refresh failed: " + err.Error())
	}

	if err := s.repo.UpdateAdIntel(ctx, id, intel.AdSpendEstimate, intel.ActiveCreatives); err != nil {
		return repository.Competitor{}, err
	}

	s.log.Info("competitor ad intel refreshed",
		"competitorId", id, "adSpend", intel.AdSpendEstimate, "creatives", intel.ActiveCreatives)
	return s.repo.GetByID(ctx, id)
}

// ListForScoring adapts the roster for the threat calculator.
func (s *Service) ListForScoring(ctx context.Context) ([]threat.Competitor, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]threat.Competitor, 0, len(rows))
	for _, row := range rows {
		out = append(out, threat.Competitor{
			Name:            row.Name,
			AdSpendEstimate: row.AdSpendEstimate,
			ActiveCreatives: row.ActiveCreatives,
		})
	}
	return out, nil
}
