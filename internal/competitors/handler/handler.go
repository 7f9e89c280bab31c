// Package handler exposes the competitors API over HTTP.
package handler

import (
	"net/http"

	"leadintel_backend/internal/competitors/repository"
	"leadintel_backend/internal/competitors/service"
	"leadintel_backend/internal/leads/transport"
	"leadintel_backend/platform/httpkit"
	"leadintel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/:id/refresh-ads", h.RefreshAds)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateCompetitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	competitor, err := h.svc.Create(c.Request.Context(), req.Name, req.Domain)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toResponse(competitor))
}

func (h *Handler) List(c *gin.Context) {
	competitors, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]gin.H, 0, len(competitors))
	for _, competitor := range competitors {
		out = append(out, toResponse(competitor))
	}
	httpkit.OK(c, gin.H{"competitors": out, "count": len(out)})
}

func (h *Handler) RefreshAds(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}

	competitor, err := h.svc.RefreshAdIntel(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(competitor))
}

func toResponse(c repository.Competitor) gin.H {
	return gin.H{
		"id":              c.ID,
		"name":            c.Name,
		"domain":          c.Domain,
		"adSpendEstimate": c.AdSpendEstimate,
		"activeCreatives": c.ActiveCreatives,
		"lastRefreshedAt": c.LastRefreshedAt,
	}
}
