// Package handler exposes the leads API over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"leadintel_backend/internal/leads/repository"
	"leadintel_backend/internal/leads/service"
	"leadintel_backend/internal/leads/transport"
	"leadintel_backend/platform/httpkit"
	"leadintel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

// RegisterRoutes mounts the leads API. quota may be nil; scoring routes
// then run unthrottled.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, quota gin.HandlerFunc) {
	warm := rg.Group("/warm-leads")
	warm.GET("", h.ListWarmLeads)
	warm.GET("/:id", h.GetWarmLead)
	warm.POST("/:id/seize", h.Seize)
	warm.GET("/:id/actions", h.ListActions)
	warm.GET("/:id/closer-grid", h.CloserGrid)
	warm.POST("/:id/convert", h.Convert)
	warm.POST("/:id/unsubscribe", h.Unsubscribe)

	rg.PATCH("/seizure-actions/:id/status", h.UpdateActionStatus)

	leads := rg.Group("/leads")
	leads.POST("/behavior", h.IngestBehavior)
	leads.POST("/:id/demo-requested", h.DemoRequested)
	leads.POST("/:id/conversations", h.RecordConversation)
	leads.GET("/:id/threat-score", h.GetThreatScore)
	if quota != nil {
		leads.POST("/behavior/batch", quota, h.IngestBehaviorBatch)
		leads.POST("/:id/threat-score", quota, h.CalculateThreatScore)
		leads.POST("/threat-score/batch", quota, h.BatchThreatScore)
	} else {
		leads.POST("/behavior/batch", h.IngestBehaviorBatch)
		leads.POST("/:id/threat-score", h.CalculateThreatScore)
		leads.POST("/threat-score/batch", h.BatchThreatScore)
	}
}

func (h *Handler) IngestBehavior(c *gin.Context) {
	var req transport.IngestBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.IngestBehavior(c.Request.Context(), req.Payload)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) IngestBehaviorBatch(c *gin.Context) {
	var req transport.IngestBehaviorBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.IngestBehaviorBatch(c.Request.Context(), req.Payloads)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListWarmLeads(c *gin.Context) {
	status := c.Query("status")
	limit := intQuery(c, "limit", 0)
	offset := intQuery(c, "offset", 0)

	warmLeads, err := h.svc.ListWarmLeads(c.Request.Context(), status, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.WarmLeadResponse, 0, len(warmLeads))
	for _, wl := range warmLeads {
		out = append(out, toWarmLeadResponse(wl))
	}
	httpkit.OK(c, gin.H{"warmLeads": out, "count": len(out)})
}

func (h *Handler) GetWarmLead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	warmLead, err := h.svc.GetWarmLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toWarmLeadResponse(warmLead))
}

func (h *Handler) Seize(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.SeizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}

	resp, err := h.svc.PlanSeizure(c.Request.Context(), id, req.Force)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) ListActions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actions, err := h.svc.ListSeizureActions(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

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
	httpkit.OK(c, gin.H{"actions": out, "count": len(out)})
}

func (h *Handler) CloserGrid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	grid, err := h.svc.GenerateCloserGrid(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, grid)
}

func (h *Handler) UpdateActionStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.ActionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if httpkit.HandleError(c, h.svc.MarkActionStatus(c.Request.Context(), id, req.Status)) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "status": req.Status})
}

func (h *Handler) Convert(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	actor := httpkit.MustGetIdentity(c)
	if actor == nil {
		return
	}
	if httpkit.HandleError(c, h.svc.MarkConverted(c.Request.Context(), id, actor.UserID())) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "status": "converted"})
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Unsubscribe(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "status": "unsubscribed"})
}

func (h *Handler) DemoRequested(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.MarkDemoRequested(c.Request.Context(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "demoRequested": true})
}

func (h *Handler) RecordConversation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.RecordConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	occurredAt := time.Time{}
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}
	conversation, err := h.svc.RecordConversation(c.Request.Context(), id, req.Transcript, occurredAt)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, gin.H{
		"id":         conversation.ID,
		"leadId":     conversation.LeadID,
		"occurredAt": conversation.OccurredAt,
	})
}

func (h *Handler) CalculateThreatScore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	force := c.Query("force") == "true"
	resp, err := h.svc.CalculateThreatScore(c.Request.Context(), id, force)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetThreatScore(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetThreatScore(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) BatchThreatScore(c *gin.Context) {
	var req transport.ThreatScoreBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.BatchScore(c.Request.Context(), req.LeadIDs)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func toWarmLeadResponse(wl repository.WarmLead) transport.WarmLeadResponse {
	return transport.WarmLeadResponse{
		ID:            wl.ID,
		LeadID:        wl.LeadID,
		Email:         wl.Email,
		Phone:         wl.Phone,
		Company:       wl.Company,
		WarmthScore:   wl.WarmthScore,
		Status:        wl.Status,
		Signals:       wl.Signals,
		SourceChannel: wl.SourceChannel,
		DetectedAt:    wl.DetectedAt,
		UpdatedAt:     wl.UpdatedAt,
	}
}
