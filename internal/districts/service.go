package districts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for districts.
type RepositoryPort interface {
	List(ctx context.Context) ([]District, error)
	Get(ctx context.Context, id string) (District, error)
	Create(ctx context.Context, id, name string) (District, error)
	Update(ctx context.Context, id, name string) (District, error)
	Delete(ctx context.Context, id string) error
}

// Service handles district business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all districts.
func (s *Service) List(ctx context.Context) ([]District, error) {
	return s.repo.List(ctx)
}

// Get returns one district.
func (s *Service) Get(ctx context.Context, id string) (District, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a district.
func (s *Service) Create(ctx context.Context, name string) (District, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return District{}, errors.New("districts: name required")
	}
	return s.repo.Create(ctx, uuid.NewString(), name)
}

// Update renames a district.
func (s *Service) Update(ctx context.Context, id, name string) (District, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return District{}, errors.New("districts: name required")
	}
	return s.repo.Update(ctx, id, name)
}

// Delete removes a district.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
