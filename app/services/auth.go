package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/internal/docstore"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("auth: invalid email or password")

// RoleAdmin is the only role the admin surface knows.
const RoleAdmin = "admin"

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Tokens is what a successful sign-in returns.
type Tokens struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"`
	User         models.AdminUser `json:"user"`
}

// AuthService signs admins in and out.
type AuthService struct {
	users *repositories.AdminUserRepository
}

func NewAuthService(users *repositories.AdminUserRepository) *AuthService {
	return &AuthService{users: users}
}

// Login checks the credentials and issues tokens.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (Tokens, error) {
	if err := check(in); err != nil {
		return Tokens{}, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, docstore.ErrNotFound) {
		return Tokens{}, ErrInvalidCredentials
	}
	if err != nil {
		return Tokens{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		logger.WithCtx(ctx).Warn("auth: failed sign-in", "email", user.Email)
		return Tokens{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Refresh exchanges a refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	claims, err := auth.ValidateRefreshToken(refreshToken)
	if err != nil {
		return Tokens{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return Tokens{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user models.AdminUser) (Tokens, error) {
	access, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return Tokens{}, fmt.Errorf("auth: sign access token: %w", err)
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return Tokens{}, fmt.Errorf("auth: sign refresh token: %w", err)
	}
	return Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(auth.AccessTTL.Seconds()),
		User:         user,
	}, nil
}

// Me returns the admin behind a validated token.
func (s *AuthService) Me(ctx context.Context, userID string) (models.AdminUser, error) {
	return s.users.FindByID(ctx, userID)
}

// CreateAdmin registers an admin account.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (models.AdminUser, error) {
	if err := check(LoginInput{Email: email, Password: password}); err != nil {
		return models.AdminUser{}, err
	}
	if len(password) < 8 {
		return models.AdminUser{}, &ValidationError{Fields: map[string]string{
			"password": "The password must be at least 8 characters.",
		}}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("auth: hash password: %w", err)
	}
	user := models.AdminUser{Email: strings.TrimSpace(email), PasswordHash: hash, Role: RoleAdmin}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.AdminUser{}, err
	}
	return user, nil
}
