package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id string) error
}

// ProfileUpdate carries the optional fields a profile update may change.
type ProfileUpdate struct {
	Name        *string
	NIK         *string
	PhoneNumber *string
	Address     *string
	ImageURL    *string
	Password    *string
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns a single user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByEmail returns a single user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// UpdateProfile applies the non-nil fields of the update to the user. A new
// password is re-hashed before storage.
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.NIK != nil {
		user.NIK = *update.NIK
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.ImageURL != nil {
		user.ImageURL = *update.ImageURL
	}
	if update.Password != nil && *update.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = string(hashed)
	}
	return s.repo.Update(ctx, user)
}

// Delete removes a user account.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// IsNotFound reports whether the error means a missing user.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
