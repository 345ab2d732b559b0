package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richwell/registrar-api/internal/models"
	"github.com/richwell/registrar-api/internal/service"
	"github.com/richwell/registrar-api/pkg/response"
)

type graphProviderMock struct {
	graph *service.CurriculumGraph
}

func (m *graphProviderMock) Graph(ctx context.Context, programID string) (*service.CurriculumGraph, error) {
	return m.graph, nil
}

type studentReaderMock struct {
	detail *models.StudentDetail
}

func (m *studentReaderMock) FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if m.detail == nil || m.detail.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.detail, nil
}

type termReaderMock struct {
	active *models.Term
}

func (m *termReaderMock) FindByID(ctx context.Context, id string) (*models.Term, error) {
	return nil, sql.ErrNoRows
}

func (m *termReaderMock) FindActiveByLevel(ctx context.Context, level string) (*models.Term, error) {
	if m.active == nil {
		return nil, sql.ErrNoRows
	}
	return m.active, nil
}

type recordReaderMock struct {
	history []models.AcademicRecord
}

func (m *recordReaderMock) ListByStudent(ctx context.Context, studentID string) ([]models.AcademicRecord, error) {
	return m.history, nil
}

type policyProviderMock struct{}

func (m *policyProviderMock) Policy(ctx context.Context) models.EnrollmentPolicy {
	return models.EnrollmentPolicy{
		FreshmanUnitCap:     30,
		DefaultPassingGrade: 2.0,
		MajorIncExpiry:      6 * 30 * 24 * time.Hour,
		MinorIncExpiry:      12 * 30 * 24 * time.Hour,
	}
}

type committerMock struct {
	recordIDs []string
}

func (m *committerMock) CommitEnrollment(ctx context.Context, studentID, termID string, selections []models.SubjectSelection) ([]string, error) {
	return m.recordIDs, nil
}

func newEnrollmentHandlerFixture(t *testing.T) *EnrollmentHandler {
	t.Helper()
	subjects := []models.Subject{
		{ID: "sub-1", ProgramID: "prog-1", Code: "MATH101", Title: "MATH101", Units: 3, Kind: models.SubjectKindMinor, Active: true},
	}
	mappings := []models.CurriculumMapping{
		{CurriculumID: "cur-1", SubjectID: "sub-1", YearLevel: 1, TermNo: 1},
	}
	graph, err := service.BuildCurriculumGraph(subjects, nil, mappings)
	require.NoError(t, err)

	svc := service.NewEnrollmentService(
		&graphProviderMock{graph: graph},
		&studentReaderMock{detail: &models.StudentDetail{
			Student:             models.Student{ID: "stu-1", ProgramID: "prog-1", CurriculumID: "cur-1"},
			ProgramLevel:        "tertiary",
			ProgramPassingGrade: 2.0,
		}},
		&termReaderMock{active: &models.Term{ID: "term-1", Level: "tertiary", IsActive: true}},
		&recordReaderMock{},
		&policyProviderMock{},
		&committerMock{recordIDs: []string{"rec-1"}},
		nil,
		nil,
		nil,
		nil,
		nil,
	)
	return NewEnrollmentHandler(svc)
}

func performEnrollment(t *testing.T, h *EnrollmentHandler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/students/stu-1/enrollments", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	h.Create(c)
	return w
}

func TestEnrollmentHandlerCreate(t *testing.T) {
	h := newEnrollmentHandlerFixture(t)
	body, _ := json.Marshal(EnrollmentRequest{Selections: []models.SubjectSelection{
		{SubjectID: "sub-1", SectionID: "sec-1"},
	}})

	w := performEnrollment(t, h, body)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 3.0, data["total_units"])
}

func TestEnrollmentHandlerInvalidPayload(t *testing.T) {
	h := newEnrollmentHandlerFixture(t)

	w := performEnrollment(t, h, []byte(`not-json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerEmptySelection(t *testing.T) {
	h := newEnrollmentHandlerFixture(t)
	body, _ := json.Marshal(EnrollmentRequest{})

	w := performEnrollment(t, h, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "EMPTY_SELECTION", envelope.Error.Code)
}
