package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/olholv/contactbook/internal/auth"
	"github.com/olholv/contactbook/internal/database"
	"github.com/olholv/contactbook/internal/handlers"
	middlewareCustom "github.com/olholv/contactbook/internal/middleware"
	"github.com/olholv/contactbook/internal/repositories"
	"github.com/olholv/contactbook/internal/routes"
	"github.com/olholv/contactbook/internal/services"
)

const (
	TestJWTSecret   = "test-secret-32-characters-long-for-testing"
	TestResetExpiry = time.Hour
)

// QueuedMail records a token handed to the mailer, standing in for a sent
// email. Queuing is synchronous here so tests can read the token right
// after the request returns.
type QueuedMail struct {
	Email string
	Token string
}

// CapturingMailer implements the mailer used by the services and records
// every queued message
type CapturingMailer struct {
	mu            sync.Mutex
	Confirmations []QueuedMail
	Resets        []QueuedMail
}

func (m *CapturingMailer) EnqueueConfirmation(email, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirmations = append(m.Confirmations, QueuedMail{Email: email, Token: token})
}

func (m *CapturingMailer) EnqueuePasswordReset(email, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets = append(m.Resets, QueuedMail{Email: email, Token: token})
}

// LastConfirmation returns the most recently queued confirmation, or nil
func (m *CapturingMailer) LastConfirmation() *QueuedMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Confirmations) == 0 {
		return nil
	}
	return &m.Confirmations[len(m.Confirmations)-1]
}

// LastReset returns the most recently queued reset mail, or nil
func (m *CapturingMailer) LastReset() *QueuedMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Resets) == 0 {
		return nil
	}
	return &m.Resets[len(m.Resets)-1]
}

// MemoryStorage is an in-memory object store for avatar tests
type MemoryStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: make(map[string][]byte)}
}

func (s *MemoryStorage) EnsureBucket(ctx context.Context) error { return nil }

func (s *MemoryStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[key] = data
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	return nil
}

func (s *MemoryStorage) PublicURL(key string) string {
	return "http://storage.test/avatars-bucket/" + key
}

// TestServer wraps httptest.Server with the full application stack on a
// real database, with outbound mail captured and object storage in memory
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	Mailer       *CapturingMailer
	Storage      *MemoryStorage
	TokenManager *auth.TokenManager
}

// NewTestServer initializes a complete HTTP server with real database
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokenManager := auth.NewTokenManager(TestJWTSecret, 15*time.Minute, 7*24*time.Hour)

	userRepo := repositories.NewUserRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)

	mailer := &CapturingMailer{}
	store := NewMemoryStorage()

	authService := services.NewAuthService(userRepo, tokenManager, mailer, logger)
	contactService := services.NewContactService(contactRepo, logger)
	resetService := services.NewPasswordResetService(resetRepo, userRepo, db, mailer, TestResetExpiry, logger)
	avatarService := services.NewAvatarService(store, userRepo, logger)

	authHandler := handlers.NewAuthHandler(authService)
	contactHandler := handlers.NewContactHandler(contactService)
	resetHandler := handlers.NewPasswordResetHandler(resetService)
	avatarHandler := handlers.NewAvatarHandler(avatarService)

	// No Redis in integration tests; the limiter fails open when the
	// backend is unreachable, so contact creation is effectively unlimited.
	deadRedis := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	contactCreateLimiter := middlewareCustom.NewUserRateLimiter(deadRedis, "test:contact-create", 5, time.Minute, logger)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	routes.RegisterRoutes(router, authHandler, contactHandler, resetHandler, avatarHandler, tokenManager, userRepo, contactCreateLimiter)

	return &TestServer{
		Server:       httptest.NewServer(router),
		DB:           db,
		Mailer:       mailer,
		Storage:      store,
		TokenManager: tokenManager,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// PostJSON sends a JSON POST request to the test server
func (ts *TestServer) PostJSON(path string, body interface{}, accessToken string) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest("POST", ts.Server.URL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return http.DefaultClient.Do(req)
}

// Request sends a request with optional JSON body and bearer token
func (ts *TestServer) Request(method, path string, body interface{}, accessToken string) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return http.DefaultClient.Do(req)
}

// DecodeBody decodes a JSON response body into dst and closes the body
func DecodeBody(resp *http.Response, dst interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(dst)
}

// LoginAs performs a login request and returns the token pair
func (ts *TestServer) LoginAs(email, password string) (accessToken, refreshToken string, err error) {
	resp, err := ts.PostJSON("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := DecodeBody(resp, &pair); err != nil {
		return "", "", err
	}
	return pair.AccessToken, pair.RefreshToken, nil
}
