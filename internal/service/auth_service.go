package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bus-booking-service/internal/auth"
	"github.com/spec-kit/bus-booking-service/internal/config"
	"github.com/spec-kit/bus-booking-service/internal/domain"
	"github.com/spec-kit/bus-booking-service/internal/repository"
	apperrors "github.com/spec-kit/bus-booking-service/pkg/util"
)

const minPasswordLength = 6

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLHours),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new account. Role defaults to customer when omitted.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*domain.User, string, time.Time, error) {
	if err := validateRegistration(name, email, password); err != nil {
		return nil, "", time.Time{}, err
	}

	userRole := domain.RoleCustomer
	if role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return nil, "", time.Time{}, apperrors.NewValidationError("invalid role",
				apperrors.FieldError{Field: "role", Message: "Invalid role"})
		}
		userRole = parsed
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Role:         userRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", time.Time{}, apperrors.NewValidationError("email already registered",
				apperrors.FieldError{Field: "email", Message: "Email already registered"})
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Login authenticates an account by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid email or password")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func validateRegistration(name, email, password string) error {
	var fields []apperrors.FieldError

	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		fields = append(fields, apperrors.FieldError{Field: "email", Message: "Valid email is required"})
	}
	if len(password) < minPasswordLength {
		fields = append(fields, apperrors.FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}
	if strings.TrimSpace(name) == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Message: "Name is required"})
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid registration input", fields...)
	}
	return nil
}
