package service

import "github.com/richwell/registrar-api/internal/models"

// ResolveLevel infers a student's current (year, term) position in a
// curriculum from graded history. Completed and failed attempts both count
// as having moved past a term; pending statuses do not. The resolved level
// is the term after the highest graded placement, with term 2 wrapping to
// the next year. A student with no graded history resolves to (1, 1).
//
// Pure and deterministic: identical history always yields the same level.
// Records whose subject has no placement in the curriculum are ignored.
func ResolveLevel(graph *CurriculumGraph, curriculumID string, history []models.AcademicRecord) models.Level {
	var highest *models.Level
	for _, rec := range history {
		if !rec.Status.Graded() {
			continue
		}
		placement, ok := graph.Placement(curriculumID, rec.SubjectID)
		if !ok {
			continue
		}
		if highest == nil || highest.Before(placement) {
			p := placement
			highest = &p
		}
	}

	if highest == nil {
		return models.Level{Year: 1, TermNo: 1}
	}
	return highest.Next()
}

// IsFreshman reports whether the history carries no graded attempt at all.
// Freshman standing gates the unconditional unit cap.
func IsFreshman(history []models.AcademicRecord) bool {
	for _, rec := range history {
		if rec.Status.Graded() {
			return false
		}
	}
	return true
}
