package models

// IncompletePass identifies a prerequisite provisionally satisfied by a
// pending-but-passing incomplete grade.
type IncompletePass struct {
	Subject Subject `json:"subject"`
	Grade   float64 `json:"grade"`
}

// PrerequisiteResult is the outcome of evaluating a single subject's
// direct prerequisites. Every prerequisite lands in exactly one bucket:
// satisfied (via a completed record), SatisfiedViaIncomplete, or Unmet.
type PrerequisiteResult struct {
	Satisfied              bool             `json:"satisfied"`
	Unmet                  []Subject        `json:"unmet"`
	SatisfiedViaIncomplete []IncompletePass `json:"satisfied_via_incomplete"`
}

// SubjectAvailability annotates one curriculum subject for the
// availability listing.
type SubjectAvailability struct {
	Subject                Subject          `json:"subject"`
	CurriculumLevel        Level            `json:"curriculum_level"`
	CurrentLevel           Level            `json:"current_level"`
	CanTake                bool             `json:"can_take"`
	UnmetPrerequisites     []Subject        `json:"unmet_prerequisites"`
	SatisfiedViaIncomplete []IncompletePass `json:"satisfied_via_incomplete"`
}

// AvailableSubjects is the full availability response for one student and
// term.
type AvailableSubjects struct {
	StudentID     string                `json:"student_id"`
	TermID        string                `json:"term_id"`
	CurrentLevel  Level                 `json:"current_level"`
	Subjects      []SubjectAvailability `json:"subjects"`
	HasIncomplete bool                  `json:"has_incomplete"`
}

// PrerequisiteStatusRow reports one prerequisite for the synchronous
// per-subject check.
type PrerequisiteStatusRow struct {
	Subject Subject `json:"subject"`
	IsMet   bool    `json:"is_met"`
	Status  string  `json:"status"`
}

// PrerequisiteCheck is the response of the per-subject prerequisite check.
type PrerequisiteCheck struct {
	SubjectCode     string                  `json:"subject_code"`
	AllMet          bool                    `json:"all_met"`
	PerPrerequisite []PrerequisiteStatusRow `json:"per_prerequisite"`
}

// SubjectSelection pairs a subject with the section chosen for it.
type SubjectSelection struct {
	SubjectID string `json:"subject_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
}

// EnrollmentResult reports a committed enrollment transaction.
type EnrollmentResult struct {
	RecordIDs              []string         `json:"record_ids"`
	TotalUnits             float64          `json:"total_units"`
	SatisfiedViaIncomplete []IncompletePass `json:"satisfied_via_incomplete,omitempty"`
}
