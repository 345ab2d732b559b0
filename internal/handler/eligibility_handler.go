package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/richwell/registrar-api/internal/service"
	"github.com/richwell/registrar-api/pkg/response"
)

// EligibilityHandler exposes the read-only progression endpoints.
type EligibilityHandler struct {
	eligibility *service.EligibilityService
}

// NewEligibilityHandler constructs EligibilityHandler.
func NewEligibilityHandler(eligibility *service.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{eligibility: eligibility}
}

// AvailableSubjects godoc
// @Summary List subjects a student may enroll in
// @Tags Eligibility
// @Produce json
// @Param id path string true "Student ID"
// @Param termId query string false "Term ID, defaults to the active term"
// @Param includeIncomplete query bool false "Count passing incomplete grades toward eligibility (default true)"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/available-subjects [get]
func (h *EligibilityHandler) AvailableSubjects(c *gin.Context) {
	includeIncomplete := true
	if raw := c.Query("includeIncomplete"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			includeIncomplete = parsed
		}
	}

	available, err := h.eligibility.AvailableSubjects(c.Request.Context(), c.Param("id"), c.Query("termId"), includeIncomplete)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, available)
}

// CheckPrerequisites godoc
// @Summary Check the prerequisite standing of one subject for a student
// @Tags Eligibility
// @Produce json
// @Param id path string true "Student ID"
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/subjects/{subjectId}/prerequisites [get]
func (h *EligibilityHandler) CheckPrerequisites(c *gin.Context) {
	check, err := h.eligibility.CheckPrerequisites(c.Request.Context(), c.Param("id"), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, check)
}
