package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/richwell/registrar-api/internal/models"
	appErrors "github.com/richwell/registrar-api/pkg/errors"
)

type enrollmentCommitter interface {
	CommitEnrollment(ctx context.Context, studentID, termID string, selections []models.SubjectSelection) ([]string, error)
}

type auditEmitter interface {
	Create(ctx context.Context, event *models.AuditEvent) error
}

type availabilityInvalidator interface {
	InvalidateAvailability(ctx context.Context, studentID string)
}

// EnrollmentService validates a batch of subject selections against every
// enrollment constraint and commits them atomically. Either every selection
// becomes an enrolled record or none does.
type EnrollmentService struct {
	curricula   graphProvider
	students    studentReader
	terms       termReader
	records     recordReader
	policy      policyProvider
	enrollments enrollmentCommitter
	audit       auditEmitter
	invalidator availabilityInvalidator
	validate    *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. audit and invalidator
// may be nil.
func NewEnrollmentService(curricula graphProvider, students studentReader, terms termReader, records recordReader, policy policyProvider, enrollments enrollmentCommitter, audit auditEmitter, invalidator availabilityInvalidator, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		curricula:   curricula,
		students:    students,
		terms:       terms,
		records:     records,
		policy:      policy,
		enrollments: enrollments,
		audit:       audit,
		invalidator: invalidator,
		validate:    validate,
		metrics:     metrics,
		logger:      logger,
	}
}

// ValidateAndCommit runs the full validation pipeline over the selections
// and, only if every check passes, commits them in one transaction. Checks
// run in a fixed order and the first failing class of constraint rejects
// the whole batch; partial enrollment never happens.
func (s *EnrollmentService) ValidateAndCommit(ctx context.Context, studentID, actor string, selections []models.SubjectSelection) (*models.EnrollmentResult, error) {
	result, err := s.validateAndCommit(ctx, studentID, actor, selections)
	s.metrics.ObserveEnrollment(enrollmentOutcome(err))
	return result, err
}

func (s *EnrollmentService) validateAndCommit(ctx context.Context, studentID, actor string, selections []models.SubjectSelection) (*models.EnrollmentResult, error) {
	if len(selections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptySelection, "")
	}
	for i := range selections {
		if err := s.validate.Struct(&selections[i]); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject selection")
		}
	}

	seen := make(map[string]bool, len(selections))
	for _, sel := range selections {
		if seen[sel.SubjectID] {
			return nil, appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrDuplicateEnrollment, "subject selected more than once"),
				sel.SubjectID,
			)
		}
		seen[sel.SubjectID] = true
	}

	student, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	term, err := s.terms.FindActiveByLevel(ctx, student.ProgramLevel)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNoActiveTerm, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active term")
	}

	graph, err := s.curricula.Graph(ctx, student.ProgramID)
	if err != nil {
		return nil, err
	}

	history, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic records")
	}

	// Passed or still-pending attempts block a re-enrollment; failed and
	// repeat_required attempts may be retaken.
	attempted := make(map[string]models.RecordStatus)
	for _, rec := range history {
		switch rec.Status {
		case models.RecordStatusCompleted, models.RecordStatusEnrolled, models.RecordStatusInc:
			attempted[rec.SubjectID] = rec.Status
		}
	}

	policy := s.policy.Policy(ctx)
	passingGrade := policy.DefaultPassingGrade
	if student.ProgramPassingGrade > 0 {
		passingGrade = student.ProgramPassingGrade
	}

	var (
		totalUnits    float64
		unmetDetails  []string
		viaIncomplete []models.IncompletePass
	)
	for _, sel := range selections {
		subject, ok := graph.Subject(sel.SubjectID)
		if !ok || !subject.Active {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s not found", sel.SubjectID))
		}
		if status, dup := attempted[sel.SubjectID]; dup {
			return nil, appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrDuplicateEnrollment, ""),
				fmt.Sprintf("%s already has a %s record", subject.Code, status),
			)
		}
		if _, mapped := graph.Placement(student.CurriculumID, sel.SubjectID); !mapped {
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrMappingMissing, ""), subject.Code)
		}

		totalUnits += subject.Units

		eval := EvaluatePrerequisites(graph, sel.SubjectID, history, passingGrade)
		if !eval.Satisfied {
			codes := make([]string, 0, len(eval.Unmet))
			for _, u := range eval.Unmet {
				codes = append(codes, u.Code)
			}
			unmetDetails = append(unmetDetails, fmt.Sprintf("%s requires %s", subject.Code, strings.Join(codes, ", ")))
		}
		viaIncomplete = append(viaIncomplete, eval.SatisfiedViaIncomplete...)
	}

	if unitCap, applies := policy.UnitCap(IsFreshman(history)); applies && totalUnits > unitCap {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrUnitCapExceeded, ""),
			fmt.Sprintf("selected %.1f units, cap is %.1f", totalUnits, unitCap),
		)
	}

	if len(unmetDetails) > 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrPrerequisitesUnmet, ""), unmetDetails...)
	}

	recordIDs, err := s.enrollments.CommitEnrollment(ctx, studentID, term.ID, selections)
	if err != nil {
		return nil, err
	}

	s.emitEnrollmentAudit(ctx, actor, studentID, term.ID, selections, recordIDs, totalUnits)
	if s.invalidator != nil {
		s.invalidator.InvalidateAvailability(ctx, studentID)
	}

	s.logger.Info("enrollment committed",
		zap.String("student_id", studentID),
		zap.String("term_id", term.ID),
		zap.Int("subjects", len(recordIDs)),
		zap.Float64("total_units", totalUnits),
	)

	return &models.EnrollmentResult{
		RecordIDs:              recordIDs,
		TotalUnits:             totalUnits,
		SatisfiedViaIncomplete: viaIncomplete,
	}, nil
}

// emitEnrollmentAudit writes one event per created record plus a batch
// confirmation. The enrollment is already committed; emission failures are
// logged, never surfaced.
func (s *EnrollmentService) emitEnrollmentAudit(ctx context.Context, actor, studentID, termID string, selections []models.SubjectSelection, recordIDs []string, totalUnits float64) {
	if s.audit == nil {
		return
	}
	now := time.Now().UTC()
	for i, sel := range selections {
		if i >= len(recordIDs) {
			break
		}
		newValue, _ := json.Marshal(map[string]interface{}{
			"student_id": studentID,
			"subject_id": sel.SubjectID,
			"section_id": sel.SectionID,
			"term_id":    termID,
			"status":     models.RecordStatusEnrolled,
		})
		event := &models.AuditEvent{
			Actor:     actor,
			Action:    models.AuditActionEnrollSubject,
			Entity:    models.AuditEntityAcademicRecord,
			EntityID:  recordIDs[i],
			NewValue:  newValue,
			CreatedAt: now,
		}
		if err := s.audit.Create(ctx, event); err != nil {
			s.logger.Warn("failed to emit audit event", zap.String("action", event.Action), zap.Error(err))
		}
	}

	summary, _ := json.Marshal(map[string]interface{}{
		"record_ids":  recordIDs,
		"term_id":     termID,
		"total_units": totalUnits,
	})
	confirm := &models.AuditEvent{
		Actor:     actor,
		Action:    models.AuditActionConfirmEnrollment,
		Entity:    models.AuditEntityEnrollment,
		EntityID:  studentID,
		NewValue:  summary,
		CreatedAt: now,
	}
	if err := s.audit.Create(ctx, confirm); err != nil {
		s.logger.Warn("failed to emit audit event", zap.String("action", confirm.Action), zap.Error(err))
	}
}

func (s *EnrollmentService) loadStudent(ctx context.Context, studentID string) (*models.StudentDetail, error) {
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

func enrollmentOutcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case appErrors.Is(err, appErrors.ErrEmptySelection):
		return "empty_selection"
	case appErrors.Is(err, appErrors.ErrDuplicateEnrollment):
		return "duplicate"
	case appErrors.Is(err, appErrors.ErrUnitCapExceeded):
		return "unit_cap"
	case appErrors.Is(err, appErrors.ErrPrerequisitesUnmet):
		return "prerequisites"
	case appErrors.Is(err, appErrors.ErrMappingMissing):
		return "mapping_missing"
	case appErrors.Is(err, appErrors.ErrSectionFull):
		return "section_full"
	case appErrors.Is(err, appErrors.ErrSectionClosed):
		return "section_closed"
	case appErrors.Is(err, appErrors.ErrConcurrencyConflict):
		return "conflict"
	default:
		return "error"
	}
}
