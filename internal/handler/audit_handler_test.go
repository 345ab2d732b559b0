package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richwell/registrar-api/internal/models"
	"github.com/richwell/registrar-api/pkg/response"
)

type auditReaderMock struct {
	events []models.AuditEvent
	err    error
}

func (m *auditReaderMock) ListByEntity(ctx context.Context, entity, entityID string) ([]models.AuditEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func TestAuditHandlerListByEntity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuditHandler(&auditReaderMock{events: []models.AuditEvent{
		{ID: "evt-1", Actor: "system", Action: models.AuditActionIncExpired, Entity: models.AuditEntityAcademicRecord, EntityID: "rec-1"},
	}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/audit/AcademicRecord/rec-1", nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "entity", Value: "AcademicRecord"}, {Key: "entityId", Value: "rec-1"}}

	h.ListByEntity(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 1)
}
