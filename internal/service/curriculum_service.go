package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/richwell/registrar-api/internal/models"
	appErrors "github.com/richwell/registrar-api/pkg/errors"
)

type curriculumRepository interface {
	ListSubjectsByProgram(ctx context.Context, programID string) ([]models.Subject, error)
	ListPrerequisiteEdges(ctx context.Context, programID string) ([]models.PrerequisiteEdge, error)
	ListMappingsByProgram(ctx context.Context, programID string) ([]models.CurriculumMapping, error)
}

// CurriculumService loads curriculum data and serves immutable graphs per
// program. Built graphs are memoised; registrar-side edits to subjects or
// edges must call Invalidate to force a rebuild.
type CurriculumService struct {
	repo   curriculumRepository
	logger *zap.Logger

	mu     sync.RWMutex
	graphs map[string]*CurriculumGraph
}

// NewCurriculumService constructs CurriculumService.
func NewCurriculumService(repo curriculumRepository, logger *zap.Logger) *CurriculumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CurriculumService{repo: repo, logger: logger, graphs: make(map[string]*CurriculumGraph)}
}

// Graph returns the prerequisite graph for a program, building it on first
// use. A cyclic edge set is fatal: the error surfaces and nothing is
// cached, so every caller keeps failing until the configuration is fixed.
func (s *CurriculumService) Graph(ctx context.Context, programID string) (*CurriculumGraph, error) {
	s.mu.RLock()
	g, ok := s.graphs[programID]
	s.mu.RUnlock()
	if ok {
		return g, nil
	}

	subjects, err := s.repo.ListSubjectsByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	edges, err := s.repo.ListPrerequisiteEdges(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prerequisite edges")
	}
	mappings, err := s.repo.ListMappingsByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load curriculum mappings")
	}

	g, err = BuildCurriculumGraph(subjects, edges, mappings)
	if err != nil {
		s.logger.Error("curriculum graph rejected",
			zap.String("program_id", programID),
			zap.Error(err),
		)
		return nil, err
	}

	s.mu.Lock()
	s.graphs[programID] = g
	s.mu.Unlock()
	return g, nil
}

// Invalidate drops the memoised graph for a program.
func (s *CurriculumService) Invalidate(programID string) {
	s.mu.Lock()
	delete(s.graphs, programID)
	s.mu.Unlock()
}
