package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/olholv/contactbook/internal/database"
	"github.com/olholv/contactbook/internal/models"
)

const resetTokenColumns = `id, user_id, token, expires_at, created_at`

type PasswordResetRepository struct {
	db *database.DB
}

func NewPasswordResetRepository(db *database.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func scanResetTokenRow(scanner rowScanner) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken

	err := scanner.Scan(
		&token.ID, &token.UserID, &token.Token,
		&token.ExpiresAt, &token.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &token, nil
}

func (r *PasswordResetRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.PasswordResetToken, error) {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + resetTokenColumns

	return scanResetTokenRow(r.db.Pool.QueryRow(ctx, query,
		uuid.New().String(), userID, token, expiresAt, time.Now(),
	))
}

func (r *PasswordResetRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `SELECT ` + resetTokenColumns + ` FROM password_reset_tokens WHERE token = $1`
	return scanResetTokenRow(r.db.Pool.QueryRow(ctx, query, token))
}

// DeleteTx consumes a token inside an existing transaction so deletion
// commits together with the password overwrite.
func (r *PasswordResetRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id string) error {
	result, err := tx.Exec(ctx, `DELETE FROM password_reset_tokens WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteExpired purges rows past their expiry; run by the background
// cleanup task.
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
