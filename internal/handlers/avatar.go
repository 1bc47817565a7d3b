package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/olholv/contactbook/internal/models"
	"github.com/olholv/contactbook/internal/services"
	pkghttp "github.com/olholv/contactbook/pkg/http"
)

// AvatarServiceInterface defines the interface for avatar uploads
type AvatarServiceInterface interface {
	Upload(ctx context.Context, userID, filename string, size int64, body io.Reader) (string, error)
}

// AvatarHandler handles avatar upload requests
type AvatarHandler struct {
	service AvatarServiceInterface
}

// NewAvatarHandler creates a new AvatarHandler
func NewAvatarHandler(service AvatarServiceInterface) *AvatarHandler {
	return &AvatarHandler{service: service}
}

// AvatarResponse returns the public URL of the stored avatar
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// Upload accepts a multipart form with a "file" part and stores it as the
// authenticated user's avatar.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	// Cap the whole request body slightly above the avatar limit so an
	// oversized upload fails the form parse instead of buffering fully.
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarSize+1024)

	if err := r.ParseMultipartForm(services.MaxAvatarSize); err != nil {
		pkghttp.WriteBadRequest(w, "File exceeds the 5MB limit or the form is malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		pkghttp.WriteBadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	url, err := h.service.Upload(r.Context(), user.ID, header.Filename, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Avatar must be a jpg, jpeg or png file no larger than 5MB")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, AvatarResponse{AvatarURL: url})
}
