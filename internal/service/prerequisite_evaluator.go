package service

import "github.com/richwell/registrar-api/internal/models"

// EvaluatePrerequisites checks the direct prerequisites of one subject
// against a student's history:
//
//   - a completed record satisfies the prerequisite regardless of grade;
//   - an inc record whose posted grade is at or above passingGrade
//     satisfies it provisionally and is reported under
//     SatisfiedViaIncomplete;
//   - anything else leaves the prerequisite unmet.
//
// Satisfied is true iff Unmet is empty. The function performs no writes.
func EvaluatePrerequisites(graph *CurriculumGraph, subjectID string, history []models.AcademicRecord, passingGrade float64) models.PrerequisiteResult {
	completed := make(map[string]bool)
	incGrades := make(map[string]float64)
	for _, rec := range history {
		switch rec.Status {
		case models.RecordStatusCompleted:
			completed[rec.SubjectID] = true
		case models.RecordStatusInc:
			if rec.Grade == nil {
				continue
			}
			// A repeat may carry a second inc; keep the best posted grade.
			if best, ok := incGrades[rec.SubjectID]; !ok || *rec.Grade > best {
				incGrades[rec.SubjectID] = *rec.Grade
			}
		}
	}

	var result models.PrerequisiteResult
	for _, prereq := range graph.PrerequisitesOf(subjectID) {
		switch {
		case completed[prereq.ID]:
			// Satisfied outright; completion already encodes the posting rule.
		case hasPassingInc(incGrades, prereq.ID, passingGrade):
			result.SatisfiedViaIncomplete = append(result.SatisfiedViaIncomplete, models.IncompletePass{
				Subject: prereq,
				Grade:   incGrades[prereq.ID],
			})
		default:
			result.Unmet = append(result.Unmet, prereq)
		}
	}
	result.Satisfied = len(result.Unmet) == 0
	return result
}

func hasPassingInc(incGrades map[string]float64, subjectID string, passingGrade float64) bool {
	grade, ok := incGrades[subjectID]
	return ok && grade >= passingGrade
}
