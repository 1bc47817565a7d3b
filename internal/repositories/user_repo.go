package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/olholv/contactbook/internal/database"
	"github.com/olholv/contactbook/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, confirmed, is_active, avatar, refresh_token, access_token, created_at, updated_at`

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User

	err := scanner.Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName,
		&user.Confirmed, &user.IsActive,
		&user.Avatar, &user.RefreshToken, &user.AccessToken,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, confirmed, is_active, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + userColumns

	return scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName,
		user.Confirmed, user.IsActive, user.Avatar,
		user.CreatedAt, user.UpdatedAt,
	))
}

// UpdateRefreshToken overwrites the stored refresh token; called on every login.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshToken *string) error {
	query := `UPDATE users SET refresh_token = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Pool.Exec(ctx, query, refreshToken, time.Now(), userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateAccessToken stores the short-lived token issued for the
// email-confirmation flow.
func (r *UserRepository) UpdateAccessToken(ctx context.Context, userID string, accessToken *string) error {
	query := `UPDATE users SET access_token = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Pool.Exec(ctx, query, accessToken, time.Now(), userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ConfirmByEmail flips confirmed and is_active for the addressed user.
func (r *UserRepository) ConfirmByEmail(ctx context.Context, email string) error {
	query := `UPDATE users SET confirmed = TRUE, is_active = TRUE, updated_at = $1 WHERE email = $2`

	result, err := r.db.Pool.Exec(ctx, query, time.Now(), email)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateAvatar overwrites the stored avatar URL after a successful upload.
func (r *UserRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	query := `UPDATE users SET avatar = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Pool.Exec(ctx, query, avatarURL, time.Now(), userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdatePasswordTx overwrites the password hash inside an existing
// transaction so the reset flow can commit it together with the token
// consumption.
func (r *UserRepository) UpdatePasswordTx(ctx context.Context, tx pgx.Tx, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := tx.Exec(ctx, query, passwordHash, time.Now(), userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a user row; exposed for test fixtures only.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
