package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"shopapi/internal/auth"
	apperrors "shopapi/internal/errors"
	"shopapi/internal/model"
	"shopapi/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+@([a-zA-Z0-9\-]+\.)+[a-zA-Z0-9]{2,}$`)

// SignupInput carries the fields of a new principal.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	PhoneNo   string
}

// TokenIssuer mints bearer tokens for a principal.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens TokenIssuer
	log    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer, log *slog.Logger) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email has a local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Signup registers a principal with a hashed password.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	email := NormalizeEmail(in.Email)
	if !ValidEmail(email) {
		return nil, apperrors.Validation("invalid email")
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, apperrors.Validation("firstName and lastName are required")
	}
	if in.Password == "" {
		return nil, apperrors.Validation("password is required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrMailExists
	}

	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: digest,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PhoneNo:      strings.TrimSpace(in.PhoneNo),
	}
	// The store's unique index settles concurrent signups for the same email.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrMailExists) {
			return nil, apperrors.ErrMailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user created", "user_id", user.ID.String())
	return user, nil
}

// Login authenticates a principal and returns a signed token. Unknown email
// and wrong password both yield ErrAuthFailed.
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", apperrors.ErrAuthFailed
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		s.log.WarnContext(ctx, "password verification failed", "user_id", user.ID.String(), "error", err)
		return "", apperrors.ErrAuthFailed
	}
	if !ok {
		return "", apperrors.ErrAuthFailed
	}

	token, err := s.tokens.Issue(user.ID.String(), user.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
