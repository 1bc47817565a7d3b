package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olholv/contactbook/internal/auth"
	"github.com/olholv/contactbook/internal/models"
	pkghttp "github.com/olholv/contactbook/pkg/http"
)

const birthdayLayout = "2006-01-02"

// ContactServiceInterface defines the interface for contact business logic
type ContactServiceInterface interface {
	List(ctx context.Context, ownerID string, limit, offset int) ([]*models.Contact, error)
	Get(ctx context.Context, id, ownerID string) (*models.Contact, error)
	Create(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, id, ownerID string, upd *models.ContactUpdate) (*models.Contact, error)
	Delete(ctx context.Context, id, ownerID string) (*models.Contact, error)
	Search(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error)
	UpcomingBirthdays(ctx context.Context, ownerID string, days int) ([]*models.Contact, error)
}

// ContactHandler handles contact CRUD, search and birthday lookups
type ContactHandler struct {
	service ContactServiceInterface
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(service ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// Request DTOs

// ContactRequest represents the request body for creating a contact
type ContactRequest struct {
	FirstName      string  `json:"first_name" validate:"required,min=1,max=100"`
	LastName       string  `json:"last_name" validate:"required,min=1,max=100"`
	Email          string  `json:"email" validate:"required,email"`
	PhoneNumber    *string `json:"phone_number" validate:"omitempty,max=50"`
	Birthday       *string `json:"birthday"`
	AdditionalInfo *string `json:"additional_info"`
}

// ContactUpdateRequest represents the request body for updating a contact.
// Absent fields are left unchanged.
type ContactUpdateRequest struct {
	FirstName      *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName       *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email          *string `json:"email" validate:"omitempty,email"`
	PhoneNumber    *string `json:"phone_number" validate:"omitempty,max=50"`
	Birthday       *string `json:"birthday"`
	AdditionalInfo *string `json:"additional_info"`
}

// ContactResponse is the public view of a contact
type ContactResponse struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    *string   `json:"phone_number"`
	Birthday       *string   `json:"birthday"`
	AdditionalInfo *string   `json:"additional_info"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toContactResponse(c *models.Contact) ContactResponse {
	resp := ContactResponse{
		ID:             c.ID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		PhoneNumber:    c.PhoneNumber,
		AdditionalInfo: c.AdditionalInfo,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.Birthday != nil {
		s := c.Birthday.Format(birthdayLayout)
		resp.Birthday = &s
	}
	return resp
}

func toContactResponses(contacts []*models.Contact) []ContactResponse {
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(c))
	}
	return out
}

func parseBirthday(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(birthdayLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// requireUser resolves the authenticated user placed in the context by the
// auth guard. The guard always runs first on these routes, so a missing
// user means a wiring bug, answered with a generic 401 rather than a panic.
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
		return nil, false
	}
	return user, true
}

// List returns the authenticated user's contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	contacts, err := h.service.List(r.Context(), user.ID, limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toContactResponses(contacts))
}

// Get returns a single contact by id
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	contact, err := h.service.Get(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Contact not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toContactResponse(contact))
}

// Create stores a new contact for the authenticated user
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Birthday must be formatted as YYYY-MM-DD")
		return
	}

	contact := &models.Contact{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       birthday,
		AdditionalInfo: req.AdditionalInfo,
	}

	created, err := h.service.Create(r.Context(), user.ID, contact)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "Contact with this email already exists")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, toContactResponse(created))
}

// Update applies a partial update to a contact
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	var req ContactUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Birthday must be formatted as YYYY-MM-DD")
		return
	}

	upd := &models.ContactUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Birthday:       birthday,
		AdditionalInfo: req.AdditionalInfo,
	}

	updated, err := h.service.Update(r.Context(), id, user.ID, upd)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Contact not found")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Contact with this email already exists")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toContactResponse(updated))
}

// Delete removes a contact and returns its last state
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	deleted, err := h.service.Delete(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Contact not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toContactResponse(deleted))
}

// Search filters the user's contacts by first name, last name and email
func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := models.ContactFilter{
		FirstName: q.Get("first_name"),
		LastName:  q.Get("last_name"),
		Email:     q.Get("email"),
	}

	contacts, err := h.service.Search(r.Context(), user.ID, filter)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toContactResponses(contacts))
}

// Birthdays returns contacts whose birthday falls within the next N days
func (h *ContactHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			pkghttp.WriteBadRequest(w, "days must be an integer between 1 and 365")
			return
		}
		days = parsed
	}

	contacts, err := h.service.UpcomingBirthdays(r.Context(), user.ID, days)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	if len(contacts) == 0 {
		pkghttp.WriteNotFound(w, "No upcoming birthdays")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toContactResponses(contacts))
}
