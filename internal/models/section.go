package models

import "time"

// SectionStatus represents the offerability of a section.
type SectionStatus string

const (
	SectionStatusOpen   SectionStatus = "open"
	SectionStatusFull   SectionStatus = "full"
	SectionStatusClosed SectionStatus = "closed"
)

// Section is an offering of a subject within a term. Occupancy never
// exceeds capacity; the enrollment commit enforces that atomically.
type Section struct {
	ID        string        `db:"id" json:"id"`
	SubjectID string        `db:"subject_id" json:"subject_id"`
	TermID    string        `db:"term_id" json:"term_id"`
	Code      string        `db:"code" json:"code"`
	Capacity  int           `db:"capacity" json:"capacity"`
	Occupancy int           `db:"occupancy" json:"occupancy"`
	Status    SectionStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}
