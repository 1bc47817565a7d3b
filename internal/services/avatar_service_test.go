package services

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olholv/contactbook/internal/models"
)

func TestAvatarService_Upload_Success(t *testing.T) {
	var recordedURL string
	mockUsers := &MockUserRepository{
		UpdateAvatarFunc: func(ctx context.Context, userID, avatarURL string) error {
			recordedURL = avatarURL
			return nil
		},
	}
	store := &MockObjectStorage{}

	svc := NewAvatarService(store, mockUsers, slog.Default())

	body := bytes.NewReader([]byte("fake image bytes"))
	url, err := svc.Upload(context.Background(), "user123", "me.png", int64(body.Len()), body)

	require.NoError(t, err)
	require.Len(t, store.PutKeys, 1)
	assert.True(t, strings.HasPrefix(store.PutKeys[0], "avatars/user123/"))
	assert.True(t, strings.HasSuffix(store.PutKeys[0], ".png"))
	assert.Contains(t, url, store.PutKeys[0])
	assert.Equal(t, url, recordedURL)
}

func TestAvatarService_Upload_TooLarge(t *testing.T) {
	store := &MockObjectStorage{}
	svc := NewAvatarService(store, &MockUserRepository{}, slog.Default())

	_, err := svc.Upload(context.Background(), "user123", "me.jpg", MaxAvatarSize+1, bytes.NewReader(nil))

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Empty(t, store.PutKeys)
}

func TestAvatarService_Upload_BadExtension(t *testing.T) {
	store := &MockObjectStorage{}
	svc := NewAvatarService(store, &MockUserRepository{}, slog.Default())

	for _, filename := range []string{"script.svg", "doc.pdf", "noext", "archive.png.zip"} {
		_, err := svc.Upload(context.Background(), "user123", filename, 100, bytes.NewReader(nil))
		assert.ErrorIs(t, err, models.ErrBadRequest, "filename %q should be rejected", filename)
	}
	assert.Empty(t, store.PutKeys)
}

func TestAvatarService_Upload_ExtensionCaseInsensitive(t *testing.T) {
	svc := NewAvatarService(&MockObjectStorage{}, &MockUserRepository{}, slog.Default())

	body := bytes.NewReader([]byte("fake image bytes"))
	_, err := svc.Upload(context.Background(), "user123", "ME.JPEG", int64(body.Len()), body)

	assert.NoError(t, err)
}

func TestAvatarService_Upload_RowUpdateFailureRemovesObject(t *testing.T) {
	mockUsers := &MockUserRepository{
		UpdateAvatarFunc: func(ctx context.Context, userID, avatarURL string) error {
			return models.ErrNotFound
		},
	}
	store := &MockObjectStorage{}

	svc := NewAvatarService(store, mockUsers, slog.Default())

	body := bytes.NewReader([]byte("fake image bytes"))
	_, err := svc.Upload(context.Background(), "ghost", "me.jpg", int64(body.Len()), body)

	assert.ErrorIs(t, err, models.ErrNotFound)
	require.Len(t, store.PutKeys, 1)
	assert.Equal(t, store.PutKeys, store.DeletedKeys)
}
