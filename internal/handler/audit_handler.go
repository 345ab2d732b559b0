package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/richwell/registrar-api/internal/models"
	"github.com/richwell/registrar-api/pkg/response"
)

type auditReader interface {
	ListByEntity(ctx context.Context, entity, entityID string) ([]models.AuditEvent, error)
}

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	audit auditReader
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit auditReader) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListByEntity godoc
// @Summary List audit events for one entity
// @Tags Audit
// @Produce json
// @Param entity path string true "Entity name"
// @Param entityId path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /audit/{entity}/{entityId} [get]
func (h *AuditHandler) ListByEntity(c *gin.Context) {
	events, err := h.audit.ListByEntity(c.Request.Context(), c.Param("entity"), c.Param("entityId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}
