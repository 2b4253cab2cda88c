package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/repository"
)

const maxBioLength = 500

// UserService manages profiles and admin account administration.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UpdateProfile applies the set fields to the caller's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.NewValidation("Name cannot be empty", "name")
		}
		update.Name = &name
	}
	if update.Bio != nil && len([]rune(*update.Bio)) > maxBioLength {
		return nil, domain.NewValidation("Bio must be at most 500 characters", "bio")
	}
	if update.Phone != nil {
		phone := strings.TrimSpace(*update.Phone)
		if !validPhone(phone) {
			return nil, domain.NewValidation("Please provide a valid phone number", "phone")
		}
		update.Phone = &phone
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	update.Apply(user)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return user, nil
}

// ListUsers returns one page of accounts, newest first.
func (s *UserService) ListUsers(ctx context.Context, req PageRequest) ([]domain.User, Page, error) {
	req = req.normalize()
	users, total, err := s.users.List(ctx, req.Limit, req.offset())
	if err != nil {
		return nil, Page{}, err
	}
	return users, newPage(req, total), nil
}

// SetActive toggles activation of another account.
func (s *UserService) SetActive(ctx context.Context, actorID, targetID string, active bool) (*domain.User, error) {
	if actorID == targetID && !active {
		return nil, domain.ErrSelfDeactivation
	}
	if err := s.users.SetActive(ctx, targetID, active); err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return user, nil
}

func validPhone(phone string) bool {
	if phone == "" {
		return true
	}
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

// notFound swaps pgx.ErrNoRows for the given domain error.
func notFound(err, replacement error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return replacement
	}
	return err
}
