package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olholv/contactbook/internal/auth"
	"github.com/olholv/contactbook/internal/models"
	"github.com/olholv/contactbook/internal/services"
)

func strPtr(s string) *string { return &s }

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext places a resolved user in the request context, standing in
// for the auth guard on protected endpoints
func WithAuthContext(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), auth.UserContextKey, user))
}

// WithURLParam attaches a chi route parameter to the request context
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// DecodeResponse decodes a JSON response body into dst
func DecodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc         func(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	LoginFunc            func(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshFunc          func(ctx context.Context, refreshToken string) (string, error)
	SendConfirmationFunc func(ctx context.Context, email string) error
	ConfirmEmailFunc     func(ctx context.Context, token string) error
}

func (m *MockAuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, firstName, lastName)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return "", models.ErrUnauthorized
}

func (m *MockAuthService) SendConfirmation(ctx context.Context, email string) error {
	if m.SendConfirmationFunc != nil {
		return m.SendConfirmationFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ConfirmEmail(ctx context.Context, token string) error {
	if m.ConfirmEmailFunc != nil {
		return m.ConfirmEmailFunc(ctx, token)
	}
	return nil
}

// MockContactService implements ContactServiceInterface for testing
type MockContactService struct {
	ListFunc              func(ctx context.Context, ownerID string, limit, offset int) ([]*models.Contact, error)
	GetFunc               func(ctx context.Context, id, ownerID string) (*models.Contact, error)
	CreateFunc            func(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error)
	UpdateFunc            func(ctx context.Context, id, ownerID string, upd *models.ContactUpdate) (*models.Contact, error)
	DeleteFunc            func(ctx context.Context, id, ownerID string) (*models.Contact, error)
	SearchFunc            func(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error)
	UpcomingBirthdaysFunc func(ctx context.Context, ownerID string, days int) ([]*models.Contact, error)
}

func (m *MockContactService) List(ctx context.Context, ownerID string, limit, offset int) ([]*models.Contact, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, limit, offset)
	}
	return []*models.Contact{}, nil
}

func (m *MockContactService) Get(ctx context.Context, id, ownerID string) (*models.Contact, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id, ownerID)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactService) Create(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, contact)
	}
	return nil, models.ErrInternalServer
}

func (m *MockContactService) Update(ctx context.Context, id, ownerID string, upd *models.ContactUpdate) (*models.Contact, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, ownerID, upd)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactService) Delete(ctx context.Context, id, ownerID string) (*models.Contact, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, ownerID)
	}
	return nil, models.ErrNotFound
}

func (m *MockContactService) Search(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, ownerID, filter)
	}
	return []*models.Contact{}, nil
}

func (m *MockContactService) UpcomingBirthdays(ctx context.Context, ownerID string, days int) ([]*models.Contact, error) {
	if m.UpcomingBirthdaysFunc != nil {
		return m.UpcomingBirthdaysFunc(ctx, ownerID, days)
	}
	return []*models.Contact{}, nil
}

// MockPasswordResetService implements PasswordResetServiceInterface for testing
type MockPasswordResetService struct {
	RequestFunc func(ctx context.Context, email string) error
	ResetFunc   func(ctx context.Context, token, newPassword string) error
	PeekFunc    func(ctx context.Context, token string) error
}

func (m *MockPasswordResetService) Request(ctx context.Context, email string) error {
	if m.RequestFunc != nil {
		return m.RequestFunc(ctx, email)
	}
	return nil
}

func (m *MockPasswordResetService) Reset(ctx context.Context, token, newPassword string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, token, newPassword)
	}
	return nil
}

func (m *MockPasswordResetService) Peek(ctx context.Context, token string) error {
	if m.PeekFunc != nil {
		return m.PeekFunc(ctx, token)
	}
	return nil
}

// MockAvatarService implements AvatarServiceInterface for testing
type MockAvatarService struct {
	UploadFunc func(ctx context.Context, userID, filename string, size int64, body io.Reader) (string, error)
}

func (m *MockAvatarService) Upload(ctx context.Context, userID, filename string, size int64, body io.Reader) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, userID, filename, size, body)
	}
	return "", models.ErrInternalServer
}
