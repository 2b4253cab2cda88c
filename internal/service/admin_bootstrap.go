package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/storefront-labs/storefront-api/internal/auth"
	"github.com/storefront-labs/storefront-api/internal/domain"
)

// BootstrapAdmin creates a verified admin account, or promotes, activates and
// verifies an existing one. The password is only used for new accounts.
func (s *AuthService) BootstrapAdmin(ctx context.Context, in RegisterInput) (*domain.User, bool, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.promote(ctx, existing)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, false, err
	}

	if err := s.checkPassword(in.Password); err != nil {
		return nil, false, err
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, false, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Administrator"
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *AuthService) promote(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	user.Role = domain.RoleAdmin
	user.IsActive = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, false, err
	}
	if user.IsVerified {
		return user, false, nil
	}

	now := s.now()
	code, err := auth.IssueCode(s.generate, domain.PendingActionVerification, now, s.codeTTL)
	if err != nil {
		return nil, false, err
	}
	if err := s.users.SetPendingCode(ctx, user.ID, code); err != nil {
		return nil, false, err
	}
	if _, err := s.users.ConsumeVerification(ctx, user.ID, code.Code, now); err != nil {
		return nil, false, err
	}
	user.IsVerified = true
	user.Pending = nil
	return user, false, nil
}
