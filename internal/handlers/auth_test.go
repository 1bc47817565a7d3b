package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olholv/contactbook/internal/models"
	"github.com/olholv/contactbook/internal/services"
)

func TestRegister_Success(t *testing.T) {
	mockService := &MockAuthService{
		RegisterFunc: func(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
			return &models.User{
				ID:        "user123",
				Email:     email,
				FirstName: firstName,
				LastName:  lastName,
				CreatedAt: time.Now(),
			}, nil
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/register", RegisterRequest{
		Email:     "user@example.com",
		Password:  "pw12345678",
		FirstName: "John",
		LastName:  "Doe",
	})
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp UserResponse
	DecodeResponse(t, rec, &resp)
	assert.Equal(t, "user123", resp.ID)
	assert.Equal(t, "user@example.com", resp.Email)
}

func TestRegister_NormalizesEmail(t *testing.T) {
	var gotEmail string
	mockService := &MockAuthService{
		RegisterFunc: func(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
			gotEmail = email
			return &models.User{ID: "user123", Email: email}, nil
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/register", RegisterRequest{
		Email:     "  User@Example.COM ",
		Password:  "pw12345678",
		FirstName: "John",
		LastName:  "Doe",
	})
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user@example.com", gotEmail)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mockService := &MockAuthService{
		RegisterFunc: func(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/register", RegisterRequest{
		Email:     "user@example.com",
		Password:  "pw12345678",
		FirstName: "John",
		LastName:  "Doe",
	})
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")
}

func TestRegister_MissingFields(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{})

	req := NewTestRequest(t, "POST", "/auth/register", RegisterRequest{
		Email: "user@example.com",
	})
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_ServiceFailure(t *testing.T) {
	mockService := &MockAuthService{
		RegisterFunc: func(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
			return nil, models.ErrInternalServer
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/register", RegisterRequest{
		Email:     "user@example.com",
		Password:  "pw12345678",
		FirstName: "John",
		LastName:  "Doe",
	})
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogin_Success(t *testing.T) {
	mockService := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.TokenPair, error) {
			return &services.TokenPair{
				AccessToken:  "access-jwt",
				RefreshToken: "refresh-jwt",
				TokenType:    "bearer",
			}, nil
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "pw12345678",
	})
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp services.TokenPair
	DecodeResponse(t, rec, &resp)
	assert.Equal(t, "access-jwt", resp.AccessToken)
	assert.Equal(t, "refresh-jwt", resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestLogin_UnknownEmail(t *testing.T) {
	mockService := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.TokenPair, error) {
			return nil, models.ErrInvalidEmail
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "pw12345678",
	})
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email")
}

func TestLogin_WrongPassword(t *testing.T) {
	mockService := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.TokenPair, error) {
			return nil, models.ErrInvalidPassword
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "wrong",
	})
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid password")
}

func TestRefresh_Success(t *testing.T) {
	mockService := &MockAuthService{
		RefreshFunc: func(ctx context.Context, refreshToken string) (string, error) {
			return "new-access-jwt", nil
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/refresh", RefreshRequest{RefreshToken: "refresh-jwt"})
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AccessTokenResponse
	DecodeResponse(t, rec, &resp)
	assert.Equal(t, "new-access-jwt", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
}

func TestRefresh_InvalidToken(t *testing.T) {
	mockService := &MockAuthService{
		RefreshFunc: func(ctx context.Context, refreshToken string) (string, error) {
			return "", models.ErrUnauthorized
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/refresh", RefreshRequest{RefreshToken: "garbage"})
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not validate credentials")
}

func TestSendConfirmation_UnknownEmail(t *testing.T) {
	mockService := &MockAuthService{
		SendConfirmationFunc: func(ctx context.Context, email string) error {
			return models.ErrNotFound
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "POST", "/auth/send-confirmation", SendConfirmationRequest{Email: "nobody@example.com"})
	rec := httptest.NewRecorder()

	handler.SendConfirmation(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestSendConfirmation_Success(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{})

	req := NewTestRequest(t, "POST", "/auth/send-confirmation", SendConfirmationRequest{Email: "user@example.com"})
	rec := httptest.NewRecorder()

	handler.SendConfirmation(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestConfirmEmail_Success(t *testing.T) {
	var gotToken string
	mockService := &MockAuthService{
		ConfirmEmailFunc: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "GET", "/auth/confirm/some-token", nil)
	req = WithURLParam(req, "token", "some-token")
	rec := httptest.NewRecorder()

	handler.ConfirmEmail(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "some-token", gotToken)
}

func TestConfirmEmail_ExpiredToken(t *testing.T) {
	mockService := &MockAuthService{
		ConfirmEmailFunc: func(ctx context.Context, token string) error {
			return models.ErrTokenExpired
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "GET", "/auth/confirm/stale-token", nil)
	req = WithURLParam(req, "token", "stale-token")
	rec := httptest.NewRecorder()

	handler.ConfirmEmail(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has expired")
}

func TestConfirmEmail_InvalidToken(t *testing.T) {
	mockService := &MockAuthService{
		ConfirmEmailFunc: func(ctx context.Context, token string) error {
			return models.ErrTokenInvalid
		},
	}
	handler := NewAuthHandler(mockService)

	req := NewTestRequest(t, "GET", "/auth/confirm/garbage", nil)
	req = WithURLParam(req, "token", "garbage")
	rec := httptest.NewRecorder()

	handler.ConfirmEmail(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")
}
