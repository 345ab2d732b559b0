package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/richwell/registrar-api/internal/service"
	appErrors "github.com/richwell/registrar-api/pkg/errors"
	"github.com/richwell/registrar-api/pkg/response"
)

// LifecycleHandler exposes manual triggers for the record lifecycle jobs.
type LifecycleHandler struct {
	incompletes *service.IncompleteService
}

// NewLifecycleHandler constructs LifecycleHandler.
func NewLifecycleHandler(incompletes *service.IncompleteService) *LifecycleHandler {
	return &LifecycleHandler{incompletes: incompletes}
}

// SweepIncomplete godoc
// @Summary Expire overdue incomplete grades now
// @Tags Lifecycle
// @Produce json
// @Param asOf query string false "Evaluate expiry as of this RFC3339 instant instead of now"
// @Success 200 {object} response.Envelope
// @Router /lifecycle/incomplete-sweep [post]
func (h *LifecycleHandler) SweepIncomplete(c *gin.Context) {
	now := time.Now().UTC()
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid asOf timestamp"))
			return
		}
		now = parsed
	}

	transitioned, err := h.incompletes.Sweep(c.Request.Context(), now)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"transitioned": transitioned,
		"count":        len(transitioned),
	})
}
