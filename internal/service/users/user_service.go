// Package users registers accounts and authenticates them with passwords or
// OAuth provider tokens.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
	"github.com/mamadbah2/billing/pkg/clients/oauth"
)

const minPasswordLength = 6

// RegisterInput creates a password account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput authenticates a password account.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OAuthInput authenticates with an access token obtained from a provider.
type OAuthInput struct {
	Provider    string `json:"provider"`
	AccessToken string `json:"accessToken"`
}

// Session is returned after a successful authentication.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Service manages accounts.
type Service struct {
	repo     repository.UserRepository
	tokens   *Tokens
	profiles oauth.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new user service. A nil profiles client disables OAuth login.
func NewService(repo repository.UserRepository, tokens *Tokens, profiles oauth.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, tokens: tokens, profiles: profiles, logger: logger, now: time.Now}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.Validation("Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Validation("Email is invalid")
	}
	return email, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.session(user)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	if !user.Active {
		return nil, apperr.Unauthorized("Account is disabled")
	}
	return s.session(user)
}

// OAuthLogin resolves the provider token into a profile and signs in the
// matching account, creating it on first use.
func (s *Service) OAuthLogin(ctx context.Context, in OAuthInput) (*Session, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider != models.ProviderGoogle && provider != models.ProviderGitHub {
		return nil, apperr.Validation("Provider must be google or github")
	}
	if strings.TrimSpace(in.AccessToken) == "" {
		return nil, apperr.Validation("Access token is required")
	}
	if s.profiles == nil {
		return nil, apperr.Unauthorized("OAuth login is not available")
	}

	profile, err := s.profiles.Profile(ctx, provider, in.AccessToken)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidToken) {
			return nil, apperr.Unauthorized("Invalid OAuth token")
		}
		return nil, err
	}
	email, err := normalizeEmail(profile.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid OAuth token")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.Active {
			return nil, apperr.Unauthorized("Account is disabled")
		}
		return s.session(user)
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = email
	}
	now := s.now()
	user = &models.User{
		Name:          name,
		Email:         email,
		OAuth:         true,
		OAuthProvider: provider,
		Role:          models.RoleUser,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("oauth user provisioned", zap.String("user_id", user.ID), zap.String("provider", provider))
	return s.session(user)
}

// Me returns the active account behind an authenticated request.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("Account not found")
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperr.Unauthorized("Account is disabled")
	}
	return user, nil
}

// Authenticate verifies a bearer token and returns the owner id it carries.
func (s *Service) Authenticate(raw string) (string, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}
