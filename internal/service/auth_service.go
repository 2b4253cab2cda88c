package service

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/storefront-labs/storefront-api/internal/auth"
	"github.com/storefront-labs/storefront-api/internal/config"
	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/events"
	"github.com/storefront-labs/storefront-api/internal/mail"
	"github.com/storefront-labs/storefront-api/internal/repository"
)

// AuthService coordinates registration, verification, login and password flows.
type AuthService struct {
	users       repository.UserRepository
	mailer      mail.Sender
	tokenMgr    *auth.TokenManager
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	generate    auth.CodeGenerator
	now         func() time.Time
	bcryptCost  int
	codeTTL     time.Duration
	minPassword int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	Mailer        mail.Sender
	Tokens        *auth.TokenManager
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	CodeGenerator auth.CodeGenerator
	Clock         func() time.Time
}

// RegisterInput is the payload for a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:       deps.UserRepo,
		mailer:      deps.Mailer,
		tokenMgr:    deps.Tokens,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		generate:    deps.CodeGenerator,
		now:         deps.Clock,
		bcryptCost:  cfg.BcryptCost,
		codeTTL:     cfg.CodeTTL(),
		minPassword: cfg.MinPasswordChars,
	}
	if s.generate == nil {
		s.generate = auth.GenerateCode
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.codeTTL <= 0 {
		s.codeTTL = 10 * time.Minute
	}
	return s
}

// Register creates an unverified account and e-mails its verification code.
// If the e-mail cannot be sent the account is removed again.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := s.checkPassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	code, err := auth.IssueCode(s.generate, domain.PendingActionVerification, s.now(), s.codeTTL)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		IsVerified:   false,
		Pending:      &code,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	msg, err := mail.VerificationEmail(user.Email, user.Name, code.Code, s.codeTTL)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		if delErr := s.users.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			s.logger.Error("registration rollback failed", zap.String("user_id", user.ID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("send verification email: %w", err)
	}
	return user, nil
}

// VerifyOTP checks a verification code and, on success, marks the account
// verified and signs a session.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*domain.User, domain.Session, error) {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return nil, domain.Session{}, err
	}
	if user.IsVerified {
		return nil, domain.Session{}, domain.ErrAlreadyVerified
	}

	now := s.now()
	if err := auth.CheckCode(user.Pending, domain.PendingActionVerification, strings.TrimSpace(code), now); err != nil {
		return nil, domain.Session{}, err
	}
	ok, err := s.users.ConsumeVerification(ctx, user.ID, user.Pending.Code, now)
	if err != nil {
		return nil, domain.Session{}, err
	}
	if !ok {
		return nil, domain.Session{}, domain.ErrInvalidCode
	}
	user.IsVerified = true
	user.Pending = nil

	session, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.Session{}, err
	}
	s.publish(ctx, events.EventUserVerified, user.ID, events.UserVerifiedPayload{UserID: user.ID, Email: user.Email})
	return user, session, nil
}

// ResendOTP replaces the pending code with a fresh verification code.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return domain.ErrAlreadyVerified
	}
	return s.issueAndSend(ctx, user, domain.PendingActionVerification, mail.VerificationEmail)
}

// Login checks credentials, then activation, then verification.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.Session{}, domain.ErrInvalidCredentials
		}
		return nil, domain.Session{}, err
	}
	match, err := auth.PasswordMatches(user.PasswordHash, password)
	if err != nil {
		return nil, domain.Session{}, err
	}
	if !match {
		return nil, domain.Session{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.Session{}, domain.ErrAccountInactive
	}
	if !user.IsVerified {
		return nil, domain.Session{}, domain.ErrEmailNotVerified
	}

	session, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.Session{}, err
	}
	return user, session, nil
}

// ForgotPassword e-mails a password reset code.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	return s.issueAndSend(ctx, user, domain.PendingActionPasswordReset, mail.PasswordResetEmail)
}

// ResetPassword stores a new password when code is the pending reset code.
// The code is cleared in the same update, so it works once.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}
	user, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}

	now := s.now()
	if err := auth.CheckCode(user.Pending, domain.PendingActionPasswordReset, strings.TrimSpace(code), now); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	ok, err := s.users.ConsumePasswordReset(ctx, user.ID, user.Pending.Code, hash, now)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCode
	}

	s.publishPasswordChanged(ctx, user, "reset")
	return nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.requirePassword(user, currentPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.publishPasswordChanged(ctx, user, "change")
	return nil
}

// DeleteAccount removes the caller's account after re-checking the password.
func (s *AuthService) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.requirePassword(user, password); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

type codeEmail func(to, name, code string, ttl time.Duration) (mail.Message, error)

func (s *AuthService) issueAndSend(ctx context.Context, user *domain.User, action domain.PendingAction, render codeEmail) error {
	code, err := auth.IssueCode(s.generate, action, s.now(), s.codeTTL)
	if err != nil {
		return err
	}
	if err := s.users.SetPendingCode(ctx, user.ID, code); err != nil {
		return err
	}
	msg, err := render(user.Email, user.Name, code.Code, s.codeTTL)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s email: %w", action, err)
	}
	return nil
}

func (s *AuthService) lookup(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) userByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) requirePassword(user *domain.User, password string) error {
	match, err := auth.PasswordMatches(user.PasswordHash, password)
	if err != nil {
		return err
	}
	if !match {
		return domain.ErrInvalidCredentials
	}
	return nil
}

func (s *AuthService) checkPassword(password string) error {
	if len(password) < s.minPassword {
		return domain.NewValidation(fmt.Sprintf("Password must be at least %d characters", s.minPassword), "password")
	}
	return nil
}

func (s *AuthService) publishPasswordChanged(ctx context.Context, user *domain.User, via string) {
	s.publish(ctx, events.EventPasswordChanged, user.ID, events.PasswordChangedPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Via:    via,
	})
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actorID string, payload any) {
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := netmail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewValidation("Please provide a valid email address", "email")
	}
	return email, nil
}
