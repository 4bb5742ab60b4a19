package villages

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/GenQServe/citilyst-backend/internal/districts"
)

// RepositoryPort defines data access methods for villages.
type RepositoryPort interface {
	List(ctx context.Context, districtID string) ([]Village, error)
	Get(ctx context.Context, id string) (Village, error)
	Create(ctx context.Context, id, name, districtID string) (Village, error)
	Update(ctx context.Context, id, name, districtID string) (Village, error)
	Delete(ctx context.Context, id string) error
}

// DistrictPort verifies the parent district exists.
type DistrictPort interface {
	Get(ctx context.Context, id string) (districts.District, error)
}

// ErrDistrictNotFound indicates the referenced parent district is missing.
var ErrDistrictNotFound = errors.New("villages: district not found")

// Service handles village business logic.
type Service struct {
	repo      RepositoryPort
	districts DistrictPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, districtRepo DistrictPort) *Service {
	return &Service{repo: repo, districts: districtRepo}
}

// List returns villages, optionally restricted to one district.
func (s *Service) List(ctx context.Context, districtID string) ([]Village, error) {
	return s.repo.List(ctx, districtID)
}

// Get returns one village.
func (s *Service) Get(ctx context.Context, id string) (Village, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a village under an existing district.
func (s *Service) Create(ctx context.Context, name, districtID string) (Village, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Village{}, errors.New("villages: name required")
	}
	if _, err := s.districts.Get(ctx, districtID); err != nil {
		if errors.Is(err, districts.ErrNotFound) {
			return Village{}, ErrDistrictNotFound
		}
		return Village{}, err
	}
	return s.repo.Create(ctx, uuid.NewString(), name, districtID)
}

// Update changes a village's name or district.
func (s *Service) Update(ctx context.Context, id, name, districtID string) (Village, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Village{}, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = current.Name
	}
	if districtID == "" {
		districtID = current.DistrictID
	} else if districtID != current.DistrictID {
		if _, err := s.districts.Get(ctx, districtID); err != nil {
			if errors.Is(err, districts.ErrNotFound) {
				return Village{}, ErrDistrictNotFound
			}
			return Village{}, err
		}
	}
	return s.repo.Update(ctx, id, name, districtID)
}

// Delete removes a village.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
