package service

import (
	"context"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/store"
)

// ProjectStore is the persistence contract the service depends on.
type ProjectStore interface {
	Get(ctx context.Context, id string) (domain.Project, error)
	Create(ctx context.Context, fields domain.ProjectFields) (domain.Project, error)
	Update(ctx context.Context, id string, expected int64, mutate store.Mutator) (domain.Project, error)
	AddComment(ctx context.Context, id string, expected int64, c domain.Comment) (domain.Project, error)
	RemoveComment(ctx context.Context, id string, expected int64, commentID string) (domain.Project, error)
	Delete(ctx context.Context, id string, expected int64) error
	List(ctx context.Context, f domain.Filter) iter.Seq2[domain.Project, error]
}

// ProjectService handles project-related business logic
type ProjectService struct {
	store ProjectStore
	log   *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(st ProjectStore, log *zap.Logger) *ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectService{store: st, log: log}
}

// Create creates a new project
func (s *ProjectService) Create(ctx context.Context, fields domain.ProjectFields) (domain.Project, error) {
	return s.store.Create(ctx, fields)
}

// Get returns a single project
func (s *ProjectService) Get(ctx context.Context, id string) (domain.Project, error) {
	return s.store.Get(ctx, id)
}

// List returns matching projects ordered by comments due date, then title
func (s *ProjectService) List(ctx context.Context, f domain.Filter) ([]domain.Project, error) {
	out := make([]domain.Project, 0, 16)
	for p, err := range s.store.List(ctx, f) {
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return domain.Sorted(out), nil
}

// Patch applies the non-nil fields of patch to the project at revision rev
func (s *ProjectService) Patch(ctx context.Context, id string, rev int64, patch ProjectPatch) (domain.Project, error) {
	if patch.Empty() {
		return domain.Project{}, domain.NewValidationError("body", "no fields to update")
	}
	p, err := s.store.Update(ctx, id, rev, patch.Apply)
	if err != nil {
		return domain.Project{}, err
	}
	s.log.Debug("project updated", zap.String("project_id", id), zap.Int64("revision", p.Revision))
	return p, nil
}

// Comment adds a comment written by author
func (s *ProjectService) Comment(ctx context.Context, id string, rev int64, author, body string) (domain.Project, error) {
	return s.store.AddComment(ctx, id, rev, domain.Comment{
		Author: strings.TrimSpace(author),
		Body:   strings.TrimSpace(body),
	})
}

// Uncomment removes a single comment
func (s *ProjectService) Uncomment(ctx context.Context, id string, rev int64, commentID string) (domain.Project, error) {
	return s.store.RemoveComment(ctx, id, rev, commentID)
}

// Delete tombstones a project
func (s *ProjectService) Delete(ctx context.Context, id string, rev int64) error {
	return s.store.Delete(ctx, id, rev)
}
