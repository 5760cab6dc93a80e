package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/frelance/internal/apperror"
	"github.com/sakif/frelance/internal/auth"
	"github.com/sakif/frelance/internal/model"
	"github.com/sakif/frelance/internal/repository"
)

// msgBadCredentials is deliberately the same for an unknown email and a wrong
// password, so sign-in cannot be used to probe which emails are registered.
const msgBadCredentials = "The email or password is incorrect."

// AuthService turns an identity proof (a GitHub profile, or an email and
// password) into a user record and a session token:
//
//	AuthHandler → AuthService → UserRepository
//	                          ↘ TokenService, PasswordService
//
// It never touches cookies or session state; the handler sets the cookie and
// asks AppService to load the user.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is what a successful sign-in hands back to the handler.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub signs in a GitHub user, creating the account on first
// sight and refreshing login, email and avatar afterwards.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, errors.New("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Login:     ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)
	return s.issue(user)
}

// SignUp registers an email/password account and signs it in.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := validEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Passwords need at least %d characters.", auth.MinPasswordLength))
	}
	if len(password) > auth.MaxPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Passwords are limited to %d bytes.", auth.MaxPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Login:        strings.SplitN(email, "@", 2)[0],
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateWithPassword(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "An account with this email already exists.",
				Field:   "email",
			}
		}
		return nil, fmt.Errorf("service/auth: creating user %s: %w", email, err)
	}

	s.logger.Info("user registered with email", slog.String("userID", user.ID))
	return s.issue(user)
}

// SignIn checks an email and password and signs the account in.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := validEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthorized(msgBadCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("failed sign-in", slog.String("userID", user.ID))
			return nil, apperror.Unauthorized(msgBadCredentials)
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	s.logger.Info("user authenticated with email", slog.String("userID", user.ID))
	return s.issue(user)
}

// GetUserByID backs GET /api/session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, errors.New("service/auth: user ID must not be empty")
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

// ValidateToken returns the user ID a session token was issued for.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func validEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.ValidationFailed("email", "Enter a valid email address.")
	}
	return email, nil
}
