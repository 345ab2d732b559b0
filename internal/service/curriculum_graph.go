package service

import (
	"fmt"
	"sort"

	"github.com/richwell/registrar-api/internal/models"
	appErrors "github.com/richwell/registrar-api/pkg/errors"
)

// CurriculumGraph is an immutable view over a program's subjects, its
// prerequisite edges, and the placements of each curriculum version.
// Construction validates the edge set; a graph is never produced from a
// cyclic configuration. Edge changes require rebuilding.
type CurriculumGraph struct {
	subjects   map[string]models.Subject
	prereqs    map[string][]string
	placements map[string]map[string]models.Level
	mappings   map[string][]models.CurriculumMapping
}

// BuildCurriculumGraph assembles the dependency structure for a program.
// It fails with CYCLE_DETECTED when the prerequisite edges contain a cycle
// and with CONFIGURATION_ERROR when an edge references an unknown subject;
// both are fatal configuration faults, not runtime validation failures.
func BuildCurriculumGraph(subjects []models.Subject, edges []models.PrerequisiteEdge, mappings []models.CurriculumMapping) (*CurriculumGraph, error) {
	g := &CurriculumGraph{
		subjects:   make(map[string]models.Subject, len(subjects)),
		prereqs:    make(map[string][]string),
		placements: make(map[string]map[string]models.Level),
		mappings:   make(map[string][]models.CurriculumMapping),
	}

	for _, s := range subjects {
		g.subjects[s.ID] = s
	}

	for _, e := range edges {
		if _, ok := g.subjects[e.SubjectID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("prerequisite edge references unknown subject %s", e.SubjectID))
		}
		if _, ok := g.subjects[e.RequiredSubjectID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("prerequisite edge references unknown subject %s", e.RequiredSubjectID))
		}
		g.prereqs[e.SubjectID] = append(g.prereqs[e.SubjectID], e.RequiredSubjectID)
	}

	if err := detectCycle(g.subjects, g.prereqs); err != nil {
		return nil, err
	}

	for _, m := range mappings {
		bySubject, ok := g.placements[m.CurriculumID]
		if !ok {
			bySubject = make(map[string]models.Level)
			g.placements[m.CurriculumID] = bySubject
		}
		bySubject[m.SubjectID] = models.Level{Year: m.YearLevel, TermNo: m.TermNo}
		g.mappings[m.CurriculumID] = append(g.mappings[m.CurriculumID], m)
	}

	for _, list := range g.mappings {
		sort.Slice(list, func(i, j int) bool {
			if list[i].YearLevel != list[j].YearLevel {
				return list[i].YearLevel < list[j].YearLevel
			}
			if list[i].TermNo != list[j].TermNo {
				return list[i].TermNo < list[j].TermNo
			}
			return list[i].SubjectID < list[j].SubjectID
		})
	}

	return g, nil
}

// detectCycle runs Kahn's algorithm over the prerequisite edges. Any node
// left unprocessed sits on a cycle.
func detectCycle(subjects map[string]models.Subject, prereqs map[string][]string) error {
	indegree := make(map[string]int, len(subjects))
	for id := range subjects {
		indegree[id] = 0
	}
	for _, required := range prereqs {
		for _, dep := range required {
			indegree[dep]++
		}
	}

	queue := make([]string, 0, len(subjects))
	for id, deg := range indegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	processed := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		processed++
		for _, dep := range prereqs[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if processed != len(subjects) {
		return appErrors.Clone(appErrors.ErrCycleDetected, "")
	}
	return nil
}

// Subject returns the subject with the given ID.
func (g *CurriculumGraph) Subject(id string) (models.Subject, bool) {
	s, ok := g.subjects[id]
	return s, ok
}

// PrerequisitesOf returns the direct prerequisites of a subject, ordered
// by code. Evaluation is one hop per subject; transitive requirements are
// carried by the prerequisites' own records.
func (g *CurriculumGraph) PrerequisitesOf(subjectID string) []models.Subject {
	ids := g.prereqs[subjectID]
	if len(ids) == 0 {
		return nil
	}
	out := make([]models.Subject, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.subjects[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Placement returns the (year, term) slot of a subject within a
// curriculum version, when mapped.
func (g *CurriculumGraph) Placement(curriculumID, subjectID string) (models.Level, bool) {
	bySubject, ok := g.placements[curriculumID]
	if !ok {
		return models.Level{}, false
	}
	level, ok := bySubject[subjectID]
	return level, ok
}

// Mappings returns all placements of a curriculum version in curriculum
// order.
func (g *CurriculumGraph) Mappings(curriculumID string) []models.CurriculumMapping {
	return g.mappings[curriculumID]
}
