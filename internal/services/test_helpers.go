package services

import (
	"context"
	"io"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/olholv/contactbook/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc            func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.User, error)
	CreateFunc             func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateRefreshTokenFunc func(ctx context.Context, userID string, refreshToken *string) error
	UpdateAccessTokenFunc  func(ctx context.Context, userID string, accessToken *string) error
	ConfirmByEmailFunc     func(ctx context.Context, email string) error
	UpdateAvatarFunc       func(ctx context.Context, userID, avatarURL string) error
	UpdatePasswordTxFunc   func(ctx context.Context, tx pgx.Tx, userID, passwordHash string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshToken *string) error {
	if m.UpdateRefreshTokenFunc != nil {
		return m.UpdateRefreshTokenFunc(ctx, userID, refreshToken)
	}
	return nil
}

func (m *MockUserRepository) UpdateAccessToken(ctx context.Context, userID string, accessToken *string) error {
	if m.UpdateAccessTokenFunc != nil {
		return m.UpdateAccessTokenFunc(ctx, userID, accessToken)
	}
	return nil
}

func (m *MockUserRepository) ConfirmByEmail(ctx context.Context, email string) error {
	if m.ConfirmByEmailFunc != nil {
		return m.ConfirmByEmailFunc(ctx, email)
	}
	return nil
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	if m.UpdateAvatarFunc != nil {
		return m.UpdateAvatarFunc(ctx, userID, avatarURL)
	}
	return nil
}

func (m *MockUserRepository) UpdatePasswordTx(ctx context.Context, tx pgx.Tx, userID, passwordHash string) error {
	if m.UpdatePasswordTxFunc != nil {
		return m.UpdatePasswordTxFunc(ctx, tx, userID, passwordHash)
	}
	return nil
}

// MockContactRepository implements ContactRepository for testing
type MockContactRepository struct {
	ListByOwnerFunc       func(ctx context.Context, ownerID string, limit, offset int) ([]*models.Contact, error)
	GetByIDFunc           func(ctx context.Context, id, ownerID string) (*models.Contact, error)
	CreateFunc            func(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	UpdateFunc            func(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	DeleteFunc            func(ctx context.Context, id, ownerID string) (*models.Contact, error)
	SearchFunc            func(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error)
	ListWithBirthdaysFunc func(ctx context.Context, ownerID string) ([]*models.Contact, error)
}

func (m *MockContactRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Contact, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, limit, offset)
	}
	return []*models.Contact{}, nil
}

func (m *MockContactRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Contact, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, ownerID)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, contact)
	}
	return nil, models.ErrInternalServer
}

func (m *MockContactRepository) Update(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, contact)
	}
	return nil, models.ErrInternalServer
}

func (m *MockContactRepository) Delete(ctx context.Context, id, ownerID string) (*models.Contact, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, ownerID)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactRepository) Search(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, ownerID, filter)
	}
	return []*models.Contact{}, nil
}

func (m *MockContactRepository) ListWithBirthdays(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	if m.ListWithBirthdaysFunc != nil {
		return m.ListWithBirthdaysFunc(ctx, ownerID)
	}
	return []*models.Contact{}, nil
}

// MockPasswordResetRepository implements PasswordResetRepository for testing
type MockPasswordResetRepository struct {
	CreateFunc        func(ctx context.Context, userID, token string, expiresAt time.Time) (*models.PasswordResetToken, error)
	GetByTokenFunc    func(ctx context.Context, token string) (*models.PasswordResetToken, error)
	DeleteTxFunc      func(ctx context.Context, tx pgx.Tx, id string) error
	DeleteExpiredFunc func(ctx context.Context) (int64, error)
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.PasswordResetToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, token, expiresAt)
	}
	return &models.PasswordResetToken{UserID: userID, Token: token, ExpiresAt: expiresAt}, nil
}

func (m *MockPasswordResetRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	if m.GetByTokenFunc != nil {
		return m.GetByTokenFunc(ctx, token)
	}
	return nil, models.ErrNotFound
}

func (m *MockPasswordResetRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id string) error {
	if m.DeleteTxFunc != nil {
		return m.DeleteTxFunc(ctx, tx, id)
	}
	return nil
}

func (m *MockPasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockMailer implements Mailer for testing, recording what was queued
type MockMailer struct {
	Confirmations []MockMailerCall
	Resets        []MockMailerCall
}

type MockMailerCall struct {
	Email string
	Token string
}

func (m *MockMailer) EnqueueConfirmation(email, token string) {
	m.Confirmations = append(m.Confirmations, MockMailerCall{Email: email, Token: token})
}

func (m *MockMailer) EnqueuePasswordReset(email, token string) {
	m.Resets = append(m.Resets, MockMailerCall{Email: email, Token: token})
}

// MockTransactor implements Transactor for testing. It invokes fn with a
// nil transaction, which is fine for mocks that ignore the tx argument.
type MockTransactor struct {
	WithTransactionFunc func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func (m *MockTransactor) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(nil)
}

// MockObjectStorage implements storage.ObjectStorage for testing
type MockObjectStorage struct {
	EnsureBucketFunc func(ctx context.Context) error
	PutFunc          func(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	DeleteFunc       func(ctx context.Context, key string) error
	PublicURLFunc    func(key string) string

	PutKeys     []string
	DeletedKeys []string
}

func (m *MockObjectStorage) EnsureBucket(ctx context.Context) error {
	if m.EnsureBucketFunc != nil {
		return m.EnsureBucketFunc(ctx)
	}
	return nil
}

func (m *MockObjectStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	m.PutKeys = append(m.PutKeys, key)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, body, size, contentType)
	}
	return nil
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	m.DeletedKeys = append(m.DeletedKeys, key)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *MockObjectStorage) PublicURL(key string) string {
	if m.PublicURLFunc != nil {
		return m.PublicURLFunc(key)
	}
	return "http://storage.local/avatars-bucket/" + key
}
