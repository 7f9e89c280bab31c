// Package competitors provides the competitor intelligence bounded context module.
package competitors

import (
	"leadintel_backend/internal/competitors/client"
	"leadintel_backend/internal/competitors/handler"
	"leadintel_backend/internal/competitors/repository"
	"leadintel_backend/internal/competitors/service"
	apphttp "leadintel_backend/internal/http"
	"leadintel_backend/platform/config"
	"leadintel_backend/platform/logger"
	"leadintel_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the competitors bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the competitors module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, adCfg config.AdIntelConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)

	var adIntel service.AdIntelClient
	if adCfg != nil && adCfg.IsAdIntelEnabled() {
		adIntel = client.New(adCfg.GetAdLibraryURL(), adCfg.GetAdLibraryToken(), log)
	}

	svc := service.New(repo, adIntel, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "competitors"
}

// Service returns the competitors service so the leads module can consume
// the roster during threat scoring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts competitors routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/competitors"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
