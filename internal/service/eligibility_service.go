package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/richwell/registrar-api/internal/models"
	appErrors "github.com/richwell/registrar-api/pkg/errors"
)

type graphProvider interface {
	Graph(ctx context.Context, programID string) (*CurriculumGraph, error)
}

type policyProvider interface {
	Policy(ctx context.Context) models.EnrollmentPolicy
}

type studentReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type termReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
	FindActiveByLevel(ctx context.Context, level string) (*models.Term, error)
}

type recordReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AcademicRecord, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// EligibilityService answers the read-only progression questions: which
// subjects a student may take next and whether a single subject's
// prerequisites are met. All paths operate on a snapshot of the student's
// history and take no locks.
type EligibilityService struct {
	curricula graphProvider
	students  studentReader
	terms     termReader
	records   recordReader
	policy    policyProvider
	cache     snapshotCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewEligibilityService constructs EligibilityService. cache may be nil to
// disable snapshot caching.
func NewEligibilityService(curricula graphProvider, students studentReader, terms termReader, records recordReader, policy policyProvider, cache snapshotCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{
		curricula: curricula,
		students:  students,
		terms:     terms,
		records:   records,
		policy:    policy,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		logger:    logger,
	}
}

func availabilityCacheKey(studentID, termID string, includeIncomplete bool) string {
	return fmt.Sprintf("eligibility:%s:%s:%t", studentID, termID, includeIncomplete)
}

// AvailableSubjects lists the subjects in the student's curriculum placed
// at or before the resolved level that have not yet been passed or
// attempted-and-pending, each annotated with prerequisite standing. When
// includeIncomplete is false the incomplete grace path does not count
// toward CanTake, though the advisory annotations are still returned.
func (s *EligibilityService) AvailableSubjects(ctx context.Context, studentID, termID string, includeIncomplete bool) (*models.AvailableSubjects, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	term, err := s.resolveTerm(ctx, termID, student.ProgramLevel)
	if err != nil {
		return nil, err
	}

	key := availabilityCacheKey(studentID, term.ID, includeIncomplete)
	if s.cache != nil {
		var cached models.AvailableSubjects
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.ObserveEligibilityQuery(true)
			return &cached, nil
		}
		// Only count a miss when a cache is actually in play, so the hit
		// rate stays meaningful on cache-less deployments.
		s.metrics.ObserveEligibilityQuery(false)
	}

	graph, err := s.curricula.Graph(ctx, student.ProgramID)
	if err != nil {
		return nil, err
	}

	history, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic records")
	}

	level := ResolveLevel(graph, student.CurriculumID, history)
	passingGrade := s.passingGrade(ctx, student)

	hasIncomplete := false
	blocked := make(map[string]bool)
	for _, rec := range history {
		switch rec.Status {
		case models.RecordStatusInc:
			hasIncomplete = true
			blocked[rec.SubjectID] = true
		case models.RecordStatusCompleted, models.RecordStatusEnrolled:
			blocked[rec.SubjectID] = true
		}
	}

	result := &models.AvailableSubjects{
		StudentID:     studentID,
		TermID:        term.ID,
		CurrentLevel:  level,
		Subjects:      []models.SubjectAvailability{},
		HasIncomplete: hasIncomplete,
	}

	for _, mapping := range graph.Mappings(student.CurriculumID) {
		subject, ok := graph.Subject(mapping.SubjectID)
		if !ok || !subject.Active {
			continue
		}
		placement := models.Level{Year: mapping.YearLevel, TermNo: mapping.TermNo}
		if level.Before(placement) {
			continue
		}
		if blocked[subject.ID] {
			continue
		}

		eval := EvaluatePrerequisites(graph, subject.ID, history, passingGrade)
		canTake := eval.Satisfied
		if !includeIncomplete && len(eval.SatisfiedViaIncomplete) > 0 {
			canTake = false
		}

		result.Subjects = append(result.Subjects, models.SubjectAvailability{
			Subject:                subject,
			CurriculumLevel:        placement,
			CurrentLevel:           level,
			CanTake:                canTake,
			UnmetPrerequisites:     eval.Unmet,
			SatisfiedViaIncomplete: eval.SatisfiedViaIncomplete,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache availability", zap.String("student_id", studentID), zap.Error(err))
		}
	}

	return result, nil
}

// CheckPrerequisites reports the standing of each direct prerequisite of
// one subject for the student.
func (s *EligibilityService) CheckPrerequisites(ctx context.Context, studentID, subjectID string) (*models.PrerequisiteCheck, error) {
	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	graph, err := s.curricula.Graph(ctx, student.ProgramID)
	if err != nil {
		return nil, err
	}

	subject, ok := graph.Subject(subjectID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}

	history, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic records")
	}

	passingGrade := s.passingGrade(ctx, student)

	statuses := make(map[string]models.RecordStatus)
	incGrades := make(map[string]float64)
	for _, rec := range history {
		if rec.Status == models.RecordStatusCompleted {
			statuses[rec.SubjectID] = rec.Status
			continue
		}
		if _, done := statuses[rec.SubjectID]; !done || statuses[rec.SubjectID] != models.RecordStatusCompleted {
			statuses[rec.SubjectID] = rec.Status
		}
		if rec.Status == models.RecordStatusInc && rec.Grade != nil {
			if best, seen := incGrades[rec.SubjectID]; !seen || *rec.Grade > best {
				incGrades[rec.SubjectID] = *rec.Grade
			}
		}
	}

	check := &models.PrerequisiteCheck{SubjectCode: subject.Code, AllMet: true, PerPrerequisite: []models.PrerequisiteStatusRow{}}
	for _, prereq := range graph.PrerequisitesOf(subjectID) {
		status, attempted := statuses[prereq.ID]
		isMet := status == models.RecordStatusCompleted
		if !isMet && status == models.RecordStatusInc {
			if grade, ok := incGrades[prereq.ID]; ok && grade >= passingGrade {
				isMet = true
			}
		}
		label := "not_taken"
		if attempted {
			label = string(status)
		}
		if !isMet {
			check.AllMet = false
		}
		check.PerPrerequisite = append(check.PerPrerequisite, models.PrerequisiteStatusRow{
			Subject: prereq,
			IsMet:   isMet,
			Status:  label,
		})
	}

	return check, nil
}

// InvalidateAvailability drops cached availability snapshots for a student.
func (s *EligibilityService) InvalidateAvailability(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("eligibility:%s:*", studentID)); err != nil {
		s.logger.Warn("failed to invalidate availability cache", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *EligibilityService) loadStudent(ctx context.Context, studentID string) (*models.StudentDetail, error) {
	student, err := s.students.FindDetailByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.CurriculumID == "" {
		return nil, appErrors.Clone(appErrors.ErrNoCurriculum, "")
	}
	return student, nil
}

func (s *EligibilityService) resolveTerm(ctx context.Context, termID, programLevel string) (*models.Term, error) {
	if termID == "" {
		term, err := s.terms.FindActiveByLevel(ctx, programLevel)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNoActiveTerm, "")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
		}
		return term, nil
	}

	term, err := s.terms.FindByID(ctx, termID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}
	if !term.IsActive {
		return nil, appErrors.Clone(appErrors.ErrNoActiveTerm, "term is not active")
	}
	return term, nil
}

func (s *EligibilityService) passingGrade(ctx context.Context, student *models.StudentDetail) float64 {
	if student.ProgramPassingGrade > 0 {
		return student.ProgramPassingGrade
	}
	return s.policy.Policy(ctx).DefaultPassingGrade
}
