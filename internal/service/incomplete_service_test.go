package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richwell/registrar-api/internal/models"
)

type mockIncompleteRepo struct {
	list        []models.IncompleteDetail
	listErr     error
	denied      map[string]bool
	transitions []string
}

func (m *mockIncompleteRepo) ListIncomplete(ctx context.Context) ([]models.IncompleteDetail, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list, nil
}

func (m *mockIncompleteRepo) Transition(ctx context.Context, id string, from, to models.RecordStatus) (bool, error) {
	if m.denied[id] {
		return false, nil
	}
	m.transitions = append(m.transitions, id)
	return true, nil
}

func incompleteDetail(id, studentID string, kind models.SubjectKind, age time.Duration, now time.Time) models.IncompleteDetail {
	postedAt := now.Add(-age)
	return models.IncompleteDetail{
		AcademicRecord: models.AcademicRecord{
			ID:        id,
			StudentID: studentID,
			SubjectID: "sub-" + id,
			Status:    models.RecordStatusInc,
			PostedAt:  &postedAt,
			CreatedAt: postedAt.Add(-2 * month),
		},
		SubjectCode: "SUBJ-" + id,
		SubjectKind: kind,
	}
}

const month = 30 * 24 * time.Hour

func newIncompleteFixture(repo *mockIncompleteRepo) (*IncompleteService, *mockAudit, *mockInvalidator) {
	audit := &mockAudit{}
	invalidator := &mockInvalidator{}
	svc := NewIncompleteService(repo, &mockPolicy{policy: testPolicy()}, audit, invalidator, nil, nil)
	return svc, audit, invalidator
}

func TestSweepExpiresOverdueMajor(t *testing.T) {
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	repo := &mockIncompleteRepo{list: []models.IncompleteDetail{
		incompleteDetail("rec-1", "stu-1", models.SubjectKindMajor, 7*month, now),
	}}
	svc, audit, invalidator := newIncompleteFixture(repo)

	transitioned, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-1"}, transitioned)
	assert.Equal(t, []string{"rec-1"}, repo.transitions)

	require.Len(t, audit.events, 1)
	event := audit.events[0]
	assert.Equal(t, models.AuditActionIncExpired, event.Action)
	assert.Equal(t, "system", event.Actor)
	assert.Equal(t, models.AuditEntityAcademicRecord, event.Entity)
	assert.Equal(t, "rec-1", event.EntityID)

	var oldValue, newValue map[string]string
	require.NoError(t, json.Unmarshal(event.OldValue, &oldValue))
	require.NoError(t, json.Unmarshal(event.NewValue, &newValue))
	assert.Equal(t, "inc", oldValue["status"])
	assert.Equal(t, "repeat_required", newValue["status"])

	assert.Equal(t, []string{"stu-1"}, invalidator.students)
}

func TestSweepLeavesRecentMajorAlone(t *testing.T) {
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	repo := &mockIncompleteRepo{list: []models.IncompleteDetail{
		incompleteDetail("rec-1", "stu-1", models.SubjectKindMajor, 5*month, now),
	}}
	svc, audit, _ := newIncompleteFixture(repo)

	transitioned, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, transitioned)
	assert.Empty(t, repo.transitions)
	assert.Empty(t, audit.events)
}

func TestSweepMeasuresFromPostingTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	// Enrolled 7 months ago, but the inc grade landed only 5 months ago. The
	// window runs from posting, so the record is still inside it.
	postedAt := now.Add(-5 * month)
	repo := &mockIncompleteRepo{list: []models.IncompleteDetail{
		{
			AcademicRecord: models.AcademicRecord{
				ID:        "rec-1",
				StudentID: "stu-1",
				SubjectID: "sub-1",
				Status:    models.RecordStatusInc,
				PostedAt:  &postedAt,
				CreatedAt: now.Add(-7 * month),
			},
			SubjectCode: "SUBJ-1",
			SubjectKind: models.SubjectKindMajor,
		},
	}}
	svc, audit, _ := newIncompleteFixture(repo)

	transitioned, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, transitioned)
	assert.Empty(t, repo.transitions)
	assert.Empty(t, audit.events)
}

func TestSweepFallsBackToCreationWhenUnposted(t *testing.T) {
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	repo := &mockIncompleteRepo{list: []models.IncompleteDetail{
		{
			AcademicRecord: models.AcademicRecord{
				ID:        "rec-1",
				StudentID: "stu-1",
				SubjectID: "sub-1",
				Status:    models.RecordStatusInc,
				CreatedAt: now.Add(-7 * month),
			},
			SubjectCode: "SUBJ-1",
			SubjectKind: models.SubjectKindMajor,
		},
	}}
	svc, _, _ := newIncompleteFixture(repo)

	transitioned, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-1"}, transitioned)
}

func TestSweepMinorUsesLongerWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	repo := &mockIncompleteRepo{list: []models.IncompleteDetail{
		incompleteDetail("rec-minor", "stu-1", models.SubjectKindMinor, 7*month, now),
		incompleteDetail("rec-old-minor", "stu-2", models.SubjectKindMinor, 13*month, now),
	}}
	svc, _, _ := newIncompleteFixture(repo)

	transitioned, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-old-minor"}, transitioned)
}

func TestSweepSkipsRecordsThatLostTheRace(t *testing.T) {
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	repo := &mockIncompleteRepo{
		list: []models.IncompleteDetail{
			incompleteDetail("rec-1", "stu-1", models.SubjectKindMajor, 7*month, now),
			incompleteDetail("rec-2", "stu-2", models.SubjectKindMajor, 8*month, now),
		},
		denied: map[string]bool{"rec-1": true},
	}
	svc, audit, invalidator := newIncompleteFixture(repo)

	transitioned, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"rec-2"}, transitioned)
	require.Len(t, audit.events, 1)
	assert.Equal(t, "rec-2", audit.events[0].EntityID)
	assert.Equal(t, []string{"stu-2"}, invalidator.students)
}

func TestSweepRerunIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	repo := &mockIncompleteRepo{list: []models.IncompleteDetail{
		incompleteDetail("rec-1", "stu-1", models.SubjectKindMajor, 7*month, now),
	}}
	svc, audit, _ := newIncompleteFixture(repo)

	first, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, []string{"rec-1"}, first)

	// The record is no longer inc; a second pass finds nothing to do.
	repo.denied = map[string]bool{"rec-1": true}
	second, err := svc.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, audit.events, 1)
}
