package models

import "time"

// SubjectKind classifies a subject for unit arithmetic and INC expiry.
type SubjectKind string

const (
	SubjectKindMajor SubjectKind = "major"
	SubjectKindMinor SubjectKind = "minor"
)

// Subject represents an academic subject within a program.
type Subject struct {
	ID              string      `db:"id" json:"id"`
	ProgramID       string      `db:"program_id" json:"program_id"`
	Code            string      `db:"code" json:"code"`
	Title           string      `db:"title" json:"title"`
	Units           float64     `db:"units" json:"units"`
	Kind            SubjectKind `db:"kind" json:"kind"`
	RecommendedYear int         `db:"recommended_year" json:"recommended_year"`
	RecommendedTerm int         `db:"recommended_term" json:"recommended_term"`
	Active          bool        `db:"active" json:"active"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// PrerequisiteEdge links a subject to one of its required subjects. The
// full edge set over a program must form an acyclic directed graph.
type PrerequisiteEdge struct {
	SubjectID         string `db:"subject_id" json:"subject_id"`
	RequiredSubjectID string `db:"required_subject_id" json:"required_subject_id"`
}
