package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/olholv/contactbook/internal/models"
)

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Contact, error)
	GetByID(ctx context.Context, id, ownerID string) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Delete(ctx context.Context, id, ownerID string) (*models.Contact, error)
	Search(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error)
	ListWithBirthdays(ctx context.Context, ownerID string) ([]*models.Contact, error)
}

// ContactService handles the per-user contact book. Every operation is
// scoped to the owning user; a contact belonging to someone else behaves
// exactly like a contact that does not exist.
type ContactService struct {
	repo   ContactRepository
	logger *slog.Logger
}

// NewContactService creates a new ContactService
func NewContactService(repo ContactRepository, logger *slog.Logger) *ContactService {
	return &ContactService{
		repo:   repo,
		logger: logger,
	}
}

// List returns a page of the owner's contacts.
func (s *ContactService) List(ctx context.Context, ownerID string, limit, offset int) ([]*models.Contact, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	contacts, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list contacts", slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return contacts, nil
}

// Get returns a single contact owned by ownerID.
func (s *ContactService) Get(ctx context.Context, id, ownerID string) (*models.Contact, error) {
	contact, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get contact", slog.String("contact_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return contact, nil
}

// Create stores a new contact for ownerID. The owner comes from the
// authenticated request, never from the payload.
func (s *ContactService) Create(ctx context.Context, ownerID string, contact *models.Contact) (*models.Contact, error) {
	contact.OwnerID = ownerID

	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create contact", slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("contact created", slog.String("contact_id", created.ID), slog.String("owner_id", ownerID))
	return created, nil
}

// Update applies a partial update to a contact. Only fields set in upd are
// changed; everything else keeps its stored value.
func (s *ContactService) Update(ctx context.Context, id, ownerID string, upd *models.ContactUpdate) (*models.Contact, error) {
	contact, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get contact for update", slog.String("contact_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if upd.FirstName != nil {
		contact.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		contact.LastName = *upd.LastName
	}
	if upd.Email != nil {
		contact.Email = *upd.Email
	}
	if upd.PhoneNumber != nil {
		contact.PhoneNumber = upd.PhoneNumber
	}
	if upd.Birthday != nil {
		contact.Birthday = upd.Birthday
	}
	if upd.AdditionalInfo != nil {
		contact.AdditionalInfo = upd.AdditionalInfo
	}

	updated, err := s.repo.Update(ctx, contact)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update contact", slog.String("contact_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("contact updated", slog.String("contact_id", id), slog.String("owner_id", ownerID))
	return updated, nil
}

// Delete removes a contact and returns its last stored state.
func (s *ContactService) Delete(ctx context.Context, id, ownerID string) (*models.Contact, error) {
	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to delete contact", slog.String("contact_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("contact deleted", slog.String("contact_id", id), slog.String("owner_id", ownerID))
	return deleted, nil
}

// Search returns the owner's contacts matching all provided filter fields.
// An empty filter matches everything the owner has.
func (s *ContactService) Search(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error) {
	contacts, err := s.repo.Search(ctx, ownerID, filter)
	if err != nil {
		s.logger.Error("failed to search contacts", slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return contacts, nil
}

// UpcomingBirthdays returns the owner's contacts whose birthday falls
// within the next days days, counting today. Matching is by month and day
// only, so a window that crosses December 31 still picks up early-January
// birthdays.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, ownerID string, days int) ([]*models.Contact, error) {
	if days < 0 {
		return nil, models.ErrBadRequest
	}

	contacts, err := s.repo.ListWithBirthdays(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list birthdays", slog.String("owner_id", ownerID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := time.Now().UTC()
	matched := make([]*models.Contact, 0)
	for _, c := range contacts {
		if c.Birthday == nil {
			continue
		}
		if birthdayInWindow(*c.Birthday, now, days) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// birthdayInWindow reports whether the month/day of birthday lands on one
// of the days in [today, today+days]. Walking the window day by day keeps
// year boundaries and leap days correct without any modular arithmetic.
func birthdayInWindow(birthday, today time.Time, days int) bool {
	bm, bd := birthday.Month(), birthday.Day()
	for i := 0; i <= days; i++ {
		d := today.AddDate(0, 0, i)
		if d.Month() == bm && d.Day() == bd {
			return true
		}
	}
	return false
}
