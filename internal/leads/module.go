// Package leads provides the lead intelligence bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"

	"leadintel_backend/internal/events"
	apphttp "leadintel_backend/internal/http"
	"leadintel_backend/internal/leads/handler"
	"leadintel_backend/internal/leads/repository"
	"leadintel_backend/internal/leads/service"
	"leadintel_backend/internal/leads/threat"
	"leadintel_backend/internal/leads/warmth"
	"leadintel_backend/platform/ai/moonshot"
	"leadintel_backend/platform/config"
	"leadintel_backend/platform/logger"
	"leadintel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// competitors and scheduler may be nil when those integrations are disabled.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	val *validator.Validator,
	aiCfg config.AIConfig,
	competitors service.CompetitorProvider,
	scheduler service.ActionScheduler,
	log *logger.Logger,
) (*Module, error) {
	repo := repository.New(pool)

	scorer, err := warmth.NewScorer(warmth.DefaultWeights())
	if err != nil {
		return nil, err
	}

	// Conversation analysis runs on the Kimi model when configured and falls
	// back to keyword matching otherwise.
	var analyzer threat.ConversationAnalyzer = threat.NewKeywordAnalyzer()
	if aiCfg != nil && aiCfg.IsConversationAIEnabled() {
		model := moonshot.NewModel(moonshot.Config{
			APIKey:  aiCfg.GetMoonshotAPIKey(),
			BaseURL: aiCfg.GetMoonshotBaseURL(),
			Model:   aiCfg.GetMoonshotModel(),
		})
		analyzer = threat.NewLLMAnalyzer(model, log)
	}
	calculator := threat.NewCalculator(analyzer, log)

	svc := service.New(repo, scorer, calculator, competitors, scheduler, eventBus, log)

	// High-value qualifications trigger campaign planning without waiting for
	// an operator. Conflicts just mean a campaign already exists.
	eventBus.Subscribe(events.WarmLeadQualified{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.WarmLeadQualified)
		if !ok || !e.HighValue {
			return nil
		}

		go func() {
			warmLead, err := repo.GetWarmLeadByLeadID(context.Background(), e.LeadID)
			if err != nil {
				log.Error("auto-seizure lookup failed", "error", err, "leadId", e.LeadID)
				return
			}
			if _, err := svc.PlanSeizure(context.Background(), warmLead.ID, false); err != nil {
				log.Warn("auto-seizure planning skipped", "error", err, "leadId", e.LeadID)
			}
		}()

		return nil
	}))

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for external use (workers, backfills).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	var quota gin.HandlerFunc
	if ctx.ScoringQuota != nil {
		quota = ctx.ScoringQuota.Quota()
	}
	m.handler.RegisterRoutes(ctx.Protected, quota)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
