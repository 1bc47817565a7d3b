package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/olholv/contactbook/internal/models"
	"github.com/olholv/contactbook/internal/storage"
)

// MaxAvatarSize is the largest accepted avatar upload in bytes.
const MaxAvatarSize = 5 << 20

var allowedAvatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// AvatarService stores user avatar images in object storage and records
// the public URL on the user row.
type AvatarService struct {
	store  storage.ObjectStorage
	users  UserRepository
	logger *slog.Logger
}

// NewAvatarService creates a new AvatarService
func NewAvatarService(store storage.ObjectStorage, users UserRepository, logger *slog.Logger) *AvatarService {
	return &AvatarService{
		store:  store,
		users:  users,
		logger: logger,
	}
}

// Upload validates and stores an avatar for userID, then returns its
// public URL. Uploads over MaxAvatarSize or with an extension other than
// jpg, jpeg or png are rejected with ErrBadRequest.
func (s *AvatarService) Upload(ctx context.Context, userID, filename string, size int64, body io.Reader) (string, error) {
	if size <= 0 || size > MaxAvatarSize {
		return "", models.ErrBadRequest
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAvatarExts[ext] {
		return "", models.ErrBadRequest
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)

	contentType := "image/jpeg"
	if ext == ".png" {
		contentType = "image/png"
	}

	if err := s.store.Put(ctx, key, body, size, contentType); err != nil {
		s.logger.Error("failed to store avatar", slog.String("user_id", userID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	url := s.store.PublicURL(key)

	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		// The object is already stored; remove it so a failed row update
		// does not leave an orphan behind.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned avatar object", slog.String("key", key), slog.Any("error", delErr))
		}
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		s.logger.Error("failed to record avatar URL", slog.String("user_id", userID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("avatar updated", slog.String("user_id", userID))
	return url, nil
}
