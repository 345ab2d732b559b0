package models

import (
	"fmt"
	"time"
)

// Program groups curricula and defines the passing-grade threshold used by
// prerequisite evaluation.
type Program struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Level        string    `db:"level" json:"level"`
	PassingGrade float64   `db:"passing_grade" json:"passing_grade"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Curriculum is a versioned subject plan for a program.
type Curriculum struct {
	ID          string    `db:"id" json:"id"`
	ProgramID   string    `db:"program_id" json:"program_id"`
	Version     string    `db:"version" json:"version"`
	EffectiveSY string    `db:"effective_sy" json:"effective_sy"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CurriculumMapping places a subject at a (year, term) slot within a
// curriculum version. A subject may appear in multiple curricula with
// different placements.
type CurriculumMapping struct {
	CurriculumID  string `db:"curriculum_id" json:"curriculum_id"`
	SubjectID     string `db:"subject_id" json:"subject_id"`
	YearLevel     int    `db:"year_level" json:"year_level"`
	TermNo        int    `db:"term_no" json:"term_no"`
	IsRecommended bool   `db:"is_recommended" json:"is_recommended"`
}

// Level is a (year, term) position within a curriculum, ordered
// lexicographically with the year as the primary key.
type Level struct {
	Year   int `json:"year"`
	TermNo int `json:"term_no"`
}

// Before reports whether l precedes other in curriculum order.
func (l Level) Before(other Level) bool {
	if l.Year != other.Year {
		return l.Year < other.Year
	}
	return l.TermNo < other.TermNo
}

// Next returns the term that follows l. Term 2 wraps to the next year's
// term 1; year progression is unbounded.
func (l Level) Next() Level {
	if l.TermNo >= 2 {
		return Level{Year: l.Year + 1, TermNo: 1}
	}
	return Level{Year: l.Year, TermNo: l.TermNo + 1}
}

// String renders the level for logs and audit payloads.
func (l Level) String() string {
	return fmt.Sprintf("Y%dT%d", l.Year, l.TermNo)
}
