package models

import "time"

// RecordStatus is the lifecycle state of an academic record. Transitions
// only move forward: enrolled → completed/failed/inc (grade posting), and
// inc → repeat_required (lifecycle sweep). completed, failed, and
// repeat_required are terminal.
type RecordStatus string

const (
	RecordStatusEnrolled       RecordStatus = "enrolled"
	RecordStatusCompleted      RecordStatus = "completed"
	RecordStatusFailed         RecordStatus = "failed"
	RecordStatusInc            RecordStatus = "inc"
	RecordStatusRepeatRequired RecordStatus = "repeat_required"
)

// Graded reports whether the status represents an attempted-and-graded
// outcome for level-resolution purposes.
func (s RecordStatus) Graded() bool {
	return s == RecordStatusCompleted || s == RecordStatusFailed
}

// Terminal reports whether no further transition is permitted.
func (s RecordStatus) Terminal() bool {
	switch s {
	case RecordStatusCompleted, RecordStatusFailed, RecordStatusRepeatRequired:
		return true
	}
	return false
}

// CanTransitionTo enumerates the permitted forward transitions.
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	switch s {
	case RecordStatusEnrolled:
		return next == RecordStatusCompleted || next == RecordStatusFailed || next == RecordStatusInc
	case RecordStatusInc:
		return next == RecordStatusCompleted || next == RecordStatusFailed || next == RecordStatusRepeatRequired
	}
	return false
}

// AcademicRecord is one student × subject × term attempt. Exactly one
// record may exist per (student, subject, term); repeats land in later
// terms as new records.
type AcademicRecord struct {
	ID        string       `db:"id" json:"id"`
	StudentID string       `db:"student_id" json:"student_id"`
	SubjectID string       `db:"subject_id" json:"subject_id"`
	TermID    string       `db:"term_id" json:"term_id"`
	SectionID string       `db:"section_id" json:"section_id"`
	Status    RecordStatus `db:"status" json:"status"`
	Grade     *float64     `db:"grade" json:"grade,omitempty"`
	PostedAt  *time.Time   `db:"posted_at" json:"posted_at,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// IncompleteDetail pairs an inc record with the subject data the sweep
// needs to pick the expiry window.
type IncompleteDetail struct {
	AcademicRecord
	SubjectCode string      `db:"subject_code" json:"subject_code"`
	SubjectKind SubjectKind `db:"subject_kind" json:"subject_kind"`
}
