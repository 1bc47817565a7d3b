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
)

func authedUser() *models.User {
	return &models.User{ID: "owner123", Email: "owner@example.com", IsActive: true}
}

func sampleContact(id string) *models.Contact {
	bday := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)
	return &models.Contact{
		ID:        id,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Birthday:  &bday,
		OwnerID:   "owner123",
	}
}

func TestContacts_RequireAuth(t *testing.T) {
	handler := NewContactHandler(&MockContactService{})

	endpoints := []func(http.ResponseWriter, *http.Request){
		handler.List, handler.Get, handler.Create, handler.Update,
		handler.Delete, handler.Search, handler.Birthdays,
	}

	for _, endpoint := range endpoints {
		req := NewTestRequest(t, "GET", "/contacts", nil)
		rec := httptest.NewRecorder()

		endpoint(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestContactCreate_Success(t *testing.T) {
	var gotOwner string
	mockService := &MockContactService{
		CreateFunc: func(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error) {
			gotOwner = ownerID
			contact.ID = "contact123"
			contact.OwnerID = ownerID
			return contact, nil
		},
	}
	handler := NewContactHandler(mockService)

	req := NewTestRequest(t, "POST", "/contacts", ContactRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Birthday:  strPtr("1990-06-15"),
	})
	req = WithAuthContext(req, authedUser())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "owner123", gotOwner)

	var resp ContactResponse
	DecodeResponse(t, rec, &resp)
	assert.Equal(t, "contact123", resp.ID)
	require.NotNil(t, resp.Birthday)
	assert.Equal(t, "1990-06-15", *resp.Birthday)
}

func TestContactCreate_BadBirthdayFormat(t *testing.T) {
	handler := NewContactHandler(&MockContactService{})

	req := NewTestRequest(t, "POST", "/contacts", ContactRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Birthday:  strPtr("15/06/1990"),
	})
	req = WithAuthContext(req, authedUser())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")
}

func TestContactCreate_DuplicateEmail(t *testing.T) {
	mockService := &MockContactService{
		CreateFunc: func(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error) {
			return nil, models.ErrConflict
		},
	}
	handler := NewContactHandler(mockService)

	req := NewTestRequest(t, "POST", "/contacts", ContactRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	req = WithAuthContext(req, authedUser())
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestContactGet_NotFound(t *testing.T) {
	handler := NewContactHandler(&MockContactService{})

	req := NewTestRequest(t, "GET", "/contacts/missing", nil)
	req = WithAuthContext(req, authedUser())
	req = WithURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Contact not found")
}

func TestContactGet_Success(t *testing.T) {
	mockService := &MockContactService{
		GetFunc: func(ctx context.Context, id, ownerID string) (*models.Contact, error) {
			assert.Equal(t, "owner123", ownerID)
			return sampleContact(id), nil
		},
	}
	handler := NewContactHandler(mockService)

	req := NewTestRequest(t, "GET", "/contacts/contact123", nil)
	req = WithAuthContext(req, authedUser())
	req = WithURLParam(req, "id", "contact123")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ContactResponse
	DecodeResponse(t, rec, &resp)
	assert.Equal(t, "contact123", resp.ID)
	assert.Equal(t, "Ada", resp.FirstName)
}

func TestContactUpdate_PartialBody(t *testing.T) {
	var gotUpd *models.ContactUpdate
	mockService := &MockContactService{
		UpdateFunc: func(ctx context.Context, id, ownerID string, upd *models.ContactUpdate) (*models.Contact, error) {
			gotUpd = upd
			c := sampleContact(id)
			c.FirstName = *upd.FirstName
			return c, nil
		},
	}
	handler := NewContactHandler(mockService)

	req := NewTestRequest(t, "PUT", "/contacts/contact123", map[string]string{"first_name": "Grace"})
	req = WithAuthContext(req, authedUser())
	req = WithURLParam(req, "id", "contact123")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotUpd.FirstName)
	assert.Equal(t, "Grace", *gotUpd.FirstName)
	assert.Nil(t, gotUpd.LastName)
	assert.Nil(t, gotUpd.Email)
	assert.Nil(t, gotUpd.Birthday)
}

func TestContactDelete_ReturnsSnapshot(t *testing.T) {
	mockService := &MockContactService{
		DeleteFunc: func(ctx context.Context, id, ownerID string) (*models.Contact, error) {
			return sampleContact(id), nil
		},
	}
	handler := NewContactHandler(mockService)

	req := NewTestRequest(t, "DELETE", "/contacts/contact123", nil)
	req = WithAuthContext(req, authedUser())
	req = WithURLParam(req, "id", "contact123")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ContactResponse
	DecodeResponse(t, rec, &resp)
	assert.Equal(t, "contact123", resp.ID)
}

func TestContactSearch_PassesQueryFilters(t *testing.T) {
	var gotFilter models.ContactFilter
	mockService := &MockContactService{
		SearchFunc: func(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error) {
			gotFilter = filter
			return []*models.Contact{sampleContact("contact123")}, nil
		},
	}
	handler := NewContactHandler(mockService)

	req := NewTestRequest(t, "GET", "/contacts/search?first_name=Ada&email=ada", nil)
	req = WithAuthContext(req, authedUser())
	rec := httptest.NewRecorder()

	handler.Search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", gotFilter.FirstName)
	assert.Equal(t, "ada", gotFilter.Email)
	assert.Empty(t, gotFilter.LastName)
}

func TestContactBirthdays_DefaultsToSevenDays(t *testing.T) {
	var gotDays int
	mockService := &MockContactService{
		UpcomingBirthdaysFunc: func(ctx context.Context, ownerID string, days int) ([]*models.Contact, error) {
			gotDays = days
			return []*models.Contact{sampleContact("contact123")}, nil
		},
	}
	handler := NewContactHandler(mockService)

	req := NewTestRequest(t, "GET", "/contacts/birthdays", nil)
	req = WithAuthContext(req, authedUser())
	rec := httptest.NewRecorder()

	handler.Birthdays(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, gotDays)
}

func TestContactBirthdays_RejectsOutOfRangeDays(t *testing.T) {
	handler := NewContactHandler(&MockContactService{})

	for _, raw := range []string{"0", "366", "-1", "abc"} {
		req := NewTestRequest(t, "GET", "/contacts/birthdays?days="+raw, nil)
		req = WithAuthContext(req, authedUser())
		rec := httptest.NewRecorder()

		handler.Birthdays(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s should be rejected", raw)
	}
}

func TestContactBirthdays_NotFoundWhenEmpty(t *testing.T) {
	handler := NewContactHandler(&MockContactService{})

	req := NewTestRequest(t, "GET", "/contacts/birthdays?days=7", nil)
	req = WithAuthContext(req, authedUser())
	rec := httptest.NewRecorder()

	handler.Birthdays(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No upcoming birthdays")
}
