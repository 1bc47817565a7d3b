package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimitByIP_AllowsUnderLimit(t *testing.T) {
	limiter := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 3})

	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, recorder.Code)
		}
	}
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	limiter := RateLimitByIP(RateLimitConfig{RequestsPerMinute: 2})

	handler := limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var lastCode int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, req)
		lastCode = recorder.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429 after exceeding limit, got %d", lastCode)
	}
}

func TestUserRateLimiter_PassesThroughWithoutUser(t *testing.T) {
	// No Redis client needed: an unauthenticated request never reaches it.
	limiter := NewUserRateLimiter(nil, "test", 1, 0, nil)

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/contacts", nil)
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", recorder.Code)
	}
}
