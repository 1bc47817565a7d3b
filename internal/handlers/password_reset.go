package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olholv/contactbook/internal/models"
	pkghttp "github.com/olholv/contactbook/pkg/http"
)

// PasswordResetServiceInterface defines the interface for the reset flow
type PasswordResetServiceInterface interface {
	Request(ctx context.Context, email string) error
	Reset(ctx context.Context, token, newPassword string) error
	Peek(ctx context.Context, token string) error
}

// PasswordResetHandler handles the password reset request/reset endpoints
type PasswordResetHandler struct {
	service PasswordResetServiceInterface
}

// NewPasswordResetHandler creates a new PasswordResetHandler
func NewPasswordResetHandler(service PasswordResetServiceInterface) *PasswordResetHandler {
	return &PasswordResetHandler{service: service}
}

// PasswordResetRequestRequest represents the request body for requesting a
// reset email
type PasswordResetRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetRequest represents the request body for completing a reset
type PasswordResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// Request queues a password reset email
func (h *PasswordResetHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequestRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.service.Request(r.Context(), req.Email); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusAccepted, MessageResponse{Message: "Password reset email sent"})
}

// Reset consumes a reset token and sets a new password
func (h *PasswordResetHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Reset(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, models.ErrTokenExpired):
			pkghttp.WriteBadRequest(w, "Token has expired")
		case errors.Is(err, models.ErrTokenInvalid):
			pkghttp.WriteBadRequest(w, "Invalid or expired token")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password updated"})
}

// Peek validates a reset token without consuming it
func (h *PasswordResetHandler) Peek(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		pkghttp.WriteBadRequest(w, "Missing token")
		return
	}

	if err := h.service.Peek(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, models.ErrTokenExpired):
			pkghttp.WriteBadRequest(w, "Token has expired")
		case errors.Is(err, models.ErrTokenInvalid):
			pkghttp.WriteBadRequest(w, "Invalid or expired token")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Token is valid"})
}
