package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/olholv/contactbook/internal/models"
	pkgauth "github.com/olholv/contactbook/pkg/auth"
	pkglogger "github.com/olholv/contactbook/pkg/logger"
)

// PasswordResetRepository defines the interface for reset-token persistence
type PasswordResetRepository interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.PasswordResetToken, error)
	GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	DeleteTx(ctx context.Context, tx pgx.Tx, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Transactor runs a function inside a database transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// PasswordResetService handles the request/reset flow. Tokens are opaque
// random values with a fixed lifetime; a token is consumed in the same
// transaction that writes the new password hash, so it can never be
// replayed even when two resets race.
type PasswordResetService struct {
	resets      PasswordResetRepository
	users       UserRepository
	db          Transactor
	mailer      Mailer
	tokenExpiry time.Duration
	logger      *slog.Logger
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(
	resets PasswordResetRepository,
	users UserRepository,
	db Transactor,
	mailer Mailer,
	tokenExpiry time.Duration,
	logger *slog.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		resets:      resets,
		users:       users,
		db:          db,
		mailer:      mailer,
		tokenExpiry: tokenExpiry,
		logger:      logger,
	}
}

// Request creates a reset token for the account behind email and queues
// the reset email. Unknown addresses are reported as ErrNotFound.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user for password reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	token := uuid.New().String()
	expiresAt := time.Now().UTC().Add(s.tokenExpiry)

	if _, err := s.resets.Create(ctx, user.ID, token, expiresAt); err != nil {
		s.logger.Error("failed to create reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.mailer.EnqueuePasswordReset(user.Email, token)

	s.logger.Info("password reset requested",
		slog.String("user_id", user.ID),
		slog.String("email", pkglogger.SanitizedEmail(user.Email)))
	return nil
}

// Reset consumes a token and sets the account's password to newPassword.
// The token row is deleted and the hash updated atomically.
func (s *PasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %s", models.ErrBadRequest, err.Error())
	}

	reset, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrTokenInvalid
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if reset.IsExpired() {
		return models.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, reset.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user for reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	err = s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.users.UpdatePasswordTx(ctx, tx, user.ID, hashedPassword); err != nil {
			return err
		}
		return s.resets.DeleteTx(ctx, tx, reset.ID)
	})
	if err != nil {
		s.logger.Error("failed to apply password reset", slog.String("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// Peek checks a token without consuming it, so a reset form can reject a
// dead link before asking for a new password.
func (s *PasswordResetService) Peek(ctx context.Context, token string) error {
	reset, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrTokenInvalid
		}
		s.logger.Error("failed to look up reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if reset.IsExpired() {
		return models.ErrTokenExpired
	}
	return nil
}
