package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olholv/contactbook/internal/models"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func newTestContact(id, ownerID string) *models.Contact {
	return &models.Contact{
		ID:        id,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		OwnerID:   ownerID,
	}
}

// ============================================================================
// CRUD Tests
// ============================================================================

func TestContactService_Create_ForcesOwner(t *testing.T) {
	mockRepo := &MockContactRepository{
		CreateFunc: func(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
			contact.ID = "contact123"
			return contact, nil
		},
	}

	svc := NewContactService(mockRepo, slog.Default())

	payload := newTestContact("", "")
	payload.OwnerID = "someone-else"

	created, err := svc.Create(context.Background(), "owner123", payload)

	require.NoError(t, err)
	assert.Equal(t, "owner123", created.OwnerID)
}

func TestContactService_Create_DuplicateEmail(t *testing.T) {
	mockRepo := &MockContactRepository{
		CreateFunc: func(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
			return nil, models.ErrConflict
		},
	}

	svc := NewContactService(mockRepo, slog.Default())

	_, err := svc.Create(context.Background(), "owner123", newTestContact("", ""))

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestContactService_Get_NotFound(t *testing.T) {
	svc := NewContactService(&MockContactRepository{}, slog.Default())

	_, err := svc.Get(context.Background(), "contact123", "owner123")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestContactService_Update_PartialFields(t *testing.T) {
	stored := newTestContact("contact123", "owner123")
	stored.PhoneNumber = strPtr("+1-555-0100")

	var written *models.Contact
	mockRepo := &MockContactRepository{
		GetByIDFunc: func(ctx context.Context, id, ownerID string) (*models.Contact, error) {
			return stored, nil
		},
		UpdateFunc: func(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
			written = contact
			return contact, nil
		},
	}

	svc := NewContactService(mockRepo, slog.Default())

	upd := &models.ContactUpdate{FirstName: strPtr("Grace")}
	updated, err := svc.Update(context.Background(), "contact123", "owner123", upd)

	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
	// untouched fields keep their stored values
	assert.Equal(t, "Lovelace", written.LastName)
	assert.Equal(t, "ada@example.com", written.Email)
	require.NotNil(t, written.PhoneNumber)
	assert.Equal(t, "+1-555-0100", *written.PhoneNumber)
}

func TestContactService_Update_WrongOwner(t *testing.T) {
	svc := NewContactService(&MockContactRepository{}, slog.Default())

	_, err := svc.Update(context.Background(), "contact123", "intruder", &models.ContactUpdate{})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestContactService_Delete_ReturnsSnapshot(t *testing.T) {
	mockRepo := &MockContactRepository{
		DeleteFunc: func(ctx context.Context, id, ownerID string) (*models.Contact, error) {
			return newTestContact(id, ownerID), nil
		},
	}

	svc := NewContactService(mockRepo, slog.Default())

	deleted, err := svc.Delete(context.Background(), "contact123", "owner123")

	require.NoError(t, err)
	assert.Equal(t, "contact123", deleted.ID)
	assert.Equal(t, "Ada", deleted.FirstName)
}

func TestContactService_List_DefaultsPagination(t *testing.T) {
	var gotLimit, gotOffset int
	mockRepo := &MockContactRepository{
		ListByOwnerFunc: func(ctx context.Context, ownerID string, limit, offset int) ([]*models.Contact, error) {
			gotLimit, gotOffset = limit, offset
			return []*models.Contact{}, nil
		},
	}

	svc := NewContactService(mockRepo, slog.Default())

	_, err := svc.List(context.Background(), "owner123", 0, -5)

	require.NoError(t, err)
	assert.Equal(t, 100, gotLimit)
	assert.Equal(t, 0, gotOffset)
}

func TestContactService_Search_PassesFilter(t *testing.T) {
	var gotFilter models.ContactFilter
	mockRepo := &MockContactRepository{
		SearchFunc: func(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error) {
			gotFilter = filter
			return []*models.Contact{newTestContact("contact123", ownerID)}, nil
		},
	}

	svc := NewContactService(mockRepo, slog.Default())

	results, err := svc.Search(context.Background(), "owner123", models.ContactFilter{FirstName: "Ada"})

	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "Ada", gotFilter.FirstName)
}

// ============================================================================
// Upcoming Birthdays Tests
// ============================================================================

func TestContactService_UpcomingBirthdays_Window(t *testing.T) {
	now := time.Now().UTC()

	inWindow := newTestContact("c1", "owner123")
	inWindow.Birthday = timePtr(time.Date(1990, now.AddDate(0, 0, 3).Month(), now.AddDate(0, 0, 3).Day(), 0, 0, 0, 0, time.UTC))

	today := newTestContact("c2", "owner123")
	today.Email = "today@example.com"
	today.Birthday = timePtr(time.Date(1985, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))

	outOfWindow := newTestContact("c3", "owner123")
	outOfWindow.Email = "later@example.com"
	outOfWindow.Birthday = timePtr(time.Date(1970, now.AddDate(0, 0, 30).Month(), now.AddDate(0, 0, 30).Day(), 0, 0, 0, 0, time.UTC))

	mockRepo := &MockContactRepository{
		ListWithBirthdaysFunc: func(ctx context.Context, ownerID string) ([]*models.Contact, error) {
			return []*models.Contact{inWindow, today, outOfWindow}, nil
		},
	}

	svc := NewContactService(mockRepo, slog.Default())

	results, err := svc.UpcomingBirthdays(context.Background(), "owner123", 7)

	require.NoError(t, err)
	ids := make([]string, 0, len(results))
	for _, c := range results {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{"c1", "c2"}, ids)
}

func TestContactService_UpcomingBirthdays_NegativeDays(t *testing.T) {
	svc := NewContactService(&MockContactRepository{}, slog.Default())

	_, err := svc.UpcomingBirthdays(context.Background(), "owner123", -1)

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestBirthdayInWindow_YearWrap(t *testing.T) {
	dec29 := time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		birthday time.Time
		days     int
		want     bool
	}{
		{
			name:     "early january birthday seen from late december",
			birthday: time.Date(1992, time.January, 2, 0, 0, 0, 0, time.UTC),
			days:     7,
			want:     true,
		},
		{
			name:     "mid january birthday outside the window",
			birthday: time.Date(1992, time.January, 15, 0, 0, 0, 0, time.UTC),
			days:     7,
			want:     false,
		},
		{
			name:     "birthday on the window start",
			birthday: time.Date(1988, time.December, 29, 0, 0, 0, 0, time.UTC),
			days:     7,
			want:     true,
		},
		{
			name:     "birthday on the window end",
			birthday: time.Date(1988, time.January, 5, 0, 0, 0, 0, time.UTC),
			days:     7,
			want:     true,
		},
		{
			name:     "zero-day window matches today only",
			birthday: time.Date(1988, time.December, 29, 0, 0, 0, 0, time.UTC),
			days:     0,
			want:     true,
		},
		{
			name:     "zero-day window excludes tomorrow",
			birthday: time.Date(1988, time.December, 30, 0, 0, 0, 0, time.UTC),
			days:     0,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := birthdayInWindow(tt.birthday, dec29, tt.days)
			assert.Equal(t, tt.want, got)
		})
	}
}
