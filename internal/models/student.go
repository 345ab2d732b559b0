package models

import "time"

// StudentStatus represents the standing of a student record.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusInactive  StudentStatus = "inactive"
	StudentStatusGraduated StudentStatus = "graduated"
)

// Student is a learner assigned to a program and a curriculum version.
// Freshman standing is never stored; it is derived from the absence of
// graded history.
type Student struct {
	ID           string        `db:"id" json:"id"`
	ProgramID    string        `db:"program_id" json:"program_id"`
	CurriculumID string        `db:"curriculum_id" json:"curriculum_id"`
	Status       StudentStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// StudentDetail enriches Student with program context needed by the
// eligibility paths.
type StudentDetail struct {
	Student
	ProgramLevel        string  `db:"program_level" json:"program_level"`
	ProgramPassingGrade float64 `db:"program_passing_grade" json:"program_passing_grade"`
}
