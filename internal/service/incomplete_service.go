package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/richwell/registrar-api/internal/models"
	appErrors "github.com/richwell/registrar-api/pkg/errors"
)

type incompleteRepository interface {
	ListIncomplete(ctx context.Context) ([]models.IncompleteDetail, error)
	Transition(ctx context.Context, id string, from, to models.RecordStatus) (bool, error)
}

// IncompleteService runs the incomplete-grade lifecycle sweep: inc records
// older than their subject-kind expiry window become repeat_required. The
// transition is a guarded update, so a sweep re-run or a concurrent grade
// posting simply finds nothing to do.
type IncompleteService struct {
	records     incompleteRepository
	policy      policyProvider
	audit       auditEmitter
	invalidator availabilityInvalidator
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewIncompleteService constructs IncompleteService. audit and invalidator
// may be nil.
func NewIncompleteService(records incompleteRepository, policy policyProvider, audit auditEmitter, invalidator availabilityInvalidator, metrics *MetricsService, logger *zap.Logger) *IncompleteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncompleteService{
		records:     records,
		policy:      policy,
		audit:       audit,
		invalidator: invalidator,
		metrics:     metrics,
		logger:      logger,
	}
}

// Sweep expires every incomplete record whose window has elapsed as of now
// and returns the IDs actually transitioned. Ages are measured from the
// grade's posting timestamp; a record without one falls back to its creation
// time. Each record is handled independently; one failure does not stop the
// rest.
func (s *IncompleteService) Sweep(ctx context.Context, now time.Time) ([]string, error) {
	started := time.Now()

	incompletes, err := s.records.ListIncomplete(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incomplete records")
	}

	policy := s.policy.Policy(ctx)
	transitioned := make([]string, 0)
	for _, rec := range incompletes {
		postedAt := rec.CreatedAt
		if rec.PostedAt != nil {
			postedAt = *rec.PostedAt
		}
		if now.Sub(postedAt) < policy.IncExpiry(rec.SubjectKind) {
			continue
		}

		ok, err := s.records.Transition(ctx, rec.ID, models.RecordStatusInc, models.RecordStatusRepeatRequired)
		if err != nil {
			s.logger.Error("failed to expire incomplete record",
				zap.String("record_id", rec.ID),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			// Lost the race to a grade posting; the record is no longer inc.
			continue
		}

		transitioned = append(transitioned, rec.ID)
		s.emitExpiryAudit(ctx, rec)
		if s.invalidator != nil {
			s.invalidator.InvalidateAvailability(ctx, rec.StudentID)
		}
	}

	s.metrics.ObserveSweep(len(transitioned), time.Since(started))
	s.logger.Info("incomplete sweep finished",
		zap.Int("scanned", len(incompletes)),
		zap.Int("transitioned", len(transitioned)),
	)
	return transitioned, nil
}

func (s *IncompleteService) emitExpiryAudit(ctx context.Context, rec models.IncompleteDetail) {
	if s.audit == nil {
		return
	}
	oldValue, _ := json.Marshal(map[string]interface{}{"status": models.RecordStatusInc})
	newValue, _ := json.Marshal(map[string]interface{}{"status": models.RecordStatusRepeatRequired})
	event := &models.AuditEvent{
		Actor:     "system",
		Action:    models.AuditActionIncExpired,
		Entity:    models.AuditEntityAcademicRecord,
		EntityID:  rec.ID,
		OldValue:  oldValue,
		NewValue:  newValue,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.audit.Create(ctx, event); err != nil {
		s.logger.Warn("failed to emit audit event", zap.String("action", event.Action), zap.Error(err))
	}
}
