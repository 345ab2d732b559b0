package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/richwell/registrar-api/internal/models"
	"github.com/richwell/registrar-api/pkg/config"
)

// Settings keys recognised by the policy overlay.
const (
	settingFreshmanUnitCap = "freshman_unit_cap"
	settingGeneralUnitCap  = "general_unit_cap"
	settingCapAppliesToAll = "cap_applies_to_all"
	settingPassingGrade    = "default_passing_grade"
)

type settingsReader interface {
	GetFloat(ctx context.Context, key string) (float64, bool, error)
	GetBool(ctx context.Context, key string) (bool, bool, error)
}

// PolicyService assembles the explicit EnrollmentPolicy passed into engine
// calls: configuration defaults overlaid by rows from the settings table.
type PolicyService struct {
	settings   settingsReader
	enrollment config.EnrollmentConfig
	sweep      config.SweepConfig
	logger     *zap.Logger
}

// NewPolicyService constructs PolicyService.
func NewPolicyService(settings settingsReader, enrollment config.EnrollmentConfig, sweep config.SweepConfig, logger *zap.Logger) *PolicyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolicyService{settings: settings, enrollment: enrollment, sweep: sweep, logger: logger}
}

// Policy returns the current enrollment policy. Settings lookups that fail
// fall back to configuration defaults; a missing settings table must not
// take enrollment down.
func (s *PolicyService) Policy(ctx context.Context) models.EnrollmentPolicy {
	policy := models.EnrollmentPolicy{
		FreshmanUnitCap:     s.enrollment.FreshmanUnitCap,
		CapAppliesToAll:     s.enrollment.CapAppliesToAll,
		GeneralUnitCap:      s.enrollment.GeneralUnitCap,
		DefaultPassingGrade: s.enrollment.DefaultPassingGrade,
		MajorIncExpiry:      s.sweep.MajorExpiry,
		MinorIncExpiry:      s.sweep.MinorExpiry,
	}

	if s.settings == nil {
		return policy
	}

	if v, ok, err := s.settings.GetFloat(ctx, settingFreshmanUnitCap); err != nil {
		s.logger.Warn("settings lookup failed", zap.String("key", settingFreshmanUnitCap), zap.Error(err))
	} else if ok && v > 0 {
		policy.FreshmanUnitCap = v
	}

	if v, ok, err := s.settings.GetFloat(ctx, settingGeneralUnitCap); err != nil {
		s.logger.Warn("settings lookup failed", zap.String("key", settingGeneralUnitCap), zap.Error(err))
	} else if ok && v > 0 {
		policy.GeneralUnitCap = v
	}

	if v, ok, err := s.settings.GetBool(ctx, settingCapAppliesToAll); err != nil {
		s.logger.Warn("settings lookup failed", zap.String("key", settingCapAppliesToAll), zap.Error(err))
	} else if ok {
		policy.CapAppliesToAll = v
	}

	if v, ok, err := s.settings.GetFloat(ctx, settingPassingGrade); err != nil {
		s.logger.Warn("settings lookup failed", zap.String("key", settingPassingGrade), zap.Error(err))
	} else if ok && v > 0 {
		policy.DefaultPassingGrade = v
	}

	return policy
}
