package models

import "time"

// EnrollmentPolicy is the explicit policy object passed into engine calls.
// It is assembled from configuration defaults overlaid by settings rows;
// the engine holds no mutable policy state of its own.
type EnrollmentPolicy struct {
	FreshmanUnitCap     float64       `json:"freshman_unit_cap"`
	CapAppliesToAll     bool          `json:"cap_applies_to_all"`
	GeneralUnitCap      float64       `json:"general_unit_cap"`
	DefaultPassingGrade float64       `json:"default_passing_grade"`
	MajorIncExpiry      time.Duration `json:"major_inc_expiry"`
	MinorIncExpiry      time.Duration `json:"minor_inc_expiry"`
}

// UnitCap returns the cap applicable to a student class, and whether a cap
// applies at all. Freshmen are always capped; non-freshmen only when the
// policy says so.
func (p EnrollmentPolicy) UnitCap(freshman bool) (float64, bool) {
	if freshman {
		return p.FreshmanUnitCap, true
	}
	if p.CapAppliesToAll && p.GeneralUnitCap > 0 {
		return p.GeneralUnitCap, true
	}
	return 0, false
}

// IncExpiry returns the expiry window for an incomplete grade by subject
// kind: majors 6 months, minors 12, unless overridden.
func (p EnrollmentPolicy) IncExpiry(kind SubjectKind) time.Duration {
	if kind == SubjectKindMajor {
		return p.MajorIncExpiry
	}
	return p.MinorIncExpiry
}
