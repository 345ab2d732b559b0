package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/richwell/registrar-api/internal/models"
	"github.com/richwell/registrar-api/internal/service"
	appErrors "github.com/richwell/registrar-api/pkg/errors"
	"github.com/richwell/registrar-api/pkg/response"
)

// EnrollmentRequest is the payload for committing an enrollment batch.
type EnrollmentRequest struct {
	Selections []models.SubjectSelection `json:"selections"`
}

// EnrollmentHandler exposes the enrollment endpoint.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Create godoc
// @Summary Enroll a student in a batch of subjects
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body EnrollmentRequest true "Subject selections"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /students/{id}/enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	actor := c.GetHeader("X-Actor")
	if actor == "" {
		actor = "registrar"
	}

	result, err := h.enrollments.ValidateAndCommit(c.Request.Context(), c.Param("id"), actor, req.Selections)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
