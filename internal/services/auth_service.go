package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/olholv/contactbook/internal/auth"
	"github.com/olholv/contactbook/internal/models"
	pkgauth "github.com/olholv/contactbook/pkg/auth"
	pkglogger "github.com/olholv/contactbook/pkg/logger"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID string, refreshToken *string) error
	UpdateAccessToken(ctx context.Context, userID string, accessToken *string) error
	ConfirmByEmail(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	UpdatePasswordTx(ctx context.Context, tx pgx.Tx, userID, passwordHash string) error
}

// Mailer queues outbound mail; sends are fire-and-forget relative to the
// triggering request.
type Mailer interface {
	EnqueueConfirmation(email, token string)
	EnqueuePasswordReset(email, token string)
}

// AuthService handles registration, login, token refresh and email
// confirmation.
type AuthService struct {
	repo   UserRepository
	tm     *auth.TokenManager
	mailer Mailer
	logger *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo UserRepository, tm *auth.TokenManager, mailer Mailer, logger *slog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		tm:     tm,
		mailer: mailer,
		logger: logger,
	}
}

// TokenPair is the response from a successful login
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register creates a new user account. A duplicate email fails with
// ErrConflict; any other failure during the write surfaces as
// ErrInternalServer with nothing partially committed.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	email = strings.TrimSpace(email)

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("registration failed: email already registered",
			slog.String("email", pkglogger.SanitizedEmail(email)))
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check if user exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     lastName,
	}

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", createdUser.ID))
	return createdUser, nil
}

// Login authenticates a user and returns an access/refresh token pair. The
// new refresh token overwrites the one stored on the user row. Unknown
// email and wrong password are reported separately, matching the login
// endpoint's contract.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: unknown email",
				slog.String("email", pkglogger.SanitizedEmail(email)))
			return nil, models.ErrInvalidEmail
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: wrong password", slog.String("user_id", user.ID))
		return nil, models.ErrInvalidPassword
	}

	accessToken, err := s.tm.GenerateAccessToken(user.Email)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	refreshToken, err := s.tm.GenerateRefreshToken(user.Email)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		s.logger.Error("failed to store refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Refresh validates a refresh-scope token and issues a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tm.Verify(refreshToken, models.ScopeRefresh)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return "", models.ErrUnauthorized
	}

	user, err := s.repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrUnauthorized
		}
		s.logger.Error("failed to get user for token refresh", slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	accessToken, err := s.tm.GenerateAccessToken(user.Email)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("token refreshed", slog.String("user_id", user.ID))
	return accessToken, nil
}

// SendConfirmation issues a confirmation token, stores it on the user row
// and queues the confirmation email. The request returns before the email
// leaves the system.
func (s *AuthService) SendConfirmation(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user for confirmation", slog.Any("error", err))
		return models.ErrInternalServer
	}

	token, err := s.tm.GenerateAccessToken(user.Email)
	if err != nil {
		s.logger.Error("failed to generate confirmation token", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdateAccessToken(ctx, user.ID, &token); err != nil {
		s.logger.Error("failed to store confirmation token", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.mailer.EnqueueConfirmation(user.Email, token)

	s.logger.Info("confirmation email queued", slog.String("user_id", user.ID))
	return nil
}

// ConfirmEmail validates a confirmation token and marks the addressed user
// as confirmed and active.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	email, err := s.tm.VerifyEmailToken(token)
	if err != nil {
		return err
	}

	if err := s.repo.ConfirmByEmail(ctx, email); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to confirm email", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("email confirmed", slog.String("email", pkglogger.SanitizedEmail(email)))
	return nil
}
