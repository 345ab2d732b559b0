package models

import "time"

// Term models an academic term. At most one term per program level is
// active at a time.
type Term struct {
	ID                    string     `db:"id" json:"id"`
	Name                  string     `db:"name" json:"name"`
	Level                 string     `db:"level" json:"level"`
	StartDate             time.Time  `db:"start_date" json:"start_date"`
	EndDate               time.Time  `db:"end_date" json:"end_date"`
	AddDropDeadline       *time.Time `db:"add_drop_deadline" json:"add_drop_deadline,omitempty"`
	GradeEncodingDeadline *time.Time `db:"grade_encoding_deadline" json:"grade_encoding_deadline,omitempty"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
}
