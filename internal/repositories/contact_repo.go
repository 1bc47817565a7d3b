package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/olholv/contactbook/internal/database"
	"github.com/olholv/contactbook/internal/models"
)

const contactColumns = `id, first_name, last_name, email, phone_number, birthday, additional_info, owner_id, created_at, updated_at`

// ContactRepository persists contacts. Every query is scoped to the owning
// user; "not found" and "not owned" are indistinguishable by design.
type ContactRepository struct {
	db *database.DB
}

func NewContactRepository(db *database.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func scanContactRow(scanner rowScanner) (*models.Contact, error) {
	var contact models.Contact

	err := scanner.Scan(
		&contact.ID, &contact.FirstName, &contact.LastName, &contact.Email,
		&contact.PhoneNumber, &contact.Birthday, &contact.AdditionalInfo,
		&contact.OwnerID, &contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &contact, nil
}

func scanContactRows(rows pgx.Rows) ([]*models.Contact, error) {
	defer rows.Close()

	contacts := make([]*models.Contact, 0)

	for rows.Next() {
		contact, err := scanContactRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return contacts, nil
}

func (r *ContactRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}

	return scanContactRows(rows)
}

func (r *ContactRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND owner_id = $2`
	return scanContactRow(r.db.Pool.QueryRow(ctx, query, id, ownerID))
}

func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	contact.ID = uuid.New().String()

	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	query := `
		INSERT INTO contacts (id, first_name, last_name, email, phone_number, birthday, additional_info, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + contactColumns

	return scanContactRow(r.db.Pool.QueryRow(ctx, query,
		contact.ID, contact.FirstName, contact.LastName, contact.Email,
		contact.PhoneNumber, contact.Birthday, contact.AdditionalInfo,
		contact.OwnerID, contact.CreatedAt, contact.UpdatedAt,
	))
}

// Update writes all mutable columns of an already-loaded contact. The
// service applies partial-update semantics before calling this.
func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	contact.UpdatedAt = time.Now()

	query := `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone_number = $4, birthday = $5, additional_info = $6, updated_at = $7
		WHERE id = $8 AND owner_id = $9
		RETURNING ` + contactColumns

	return scanContactRow(r.db.Pool.QueryRow(ctx, query,
		contact.FirstName, contact.LastName, contact.Email,
		contact.PhoneNumber, contact.Birthday, contact.AdditionalInfo,
		contact.UpdatedAt, contact.ID, contact.OwnerID,
	))
}

// Delete removes the contact if owned by ownerID and returns the deleted
// row's snapshot.
func (r *ContactRepository) Delete(ctx context.Context, id, ownerID string) (*models.Contact, error) {
	query := `DELETE FROM contacts WHERE id = $1 AND owner_id = $2 RETURNING ` + contactColumns
	return scanContactRow(r.db.Pool.QueryRow(ctx, query, id, ownerID))
}

// Search applies case-insensitive substring filters, AND-combined, always
// scoped to the owner. Absent filters are not applied.
func (r *ContactRepository) Search(ctx context.Context, ownerID string, filter models.ContactFilter) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if filter.FirstName != "" {
		args = append(args, "%"+filter.FirstName+"%")
		query += fmt.Sprintf(" AND first_name ILIKE $%d", len(args))
	}
	if filter.LastName != "" {
		args = append(args, "%"+filter.LastName+"%")
		query += fmt.Sprintf(" AND last_name ILIKE $%d", len(args))
	}
	if filter.Email != "" {
		args = append(args, "%"+filter.Email+"%")
		query += fmt.Sprintf(" AND email ILIKE $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}

	return scanContactRows(rows)
}

// ListWithBirthdays returns the owner's contacts that have a birthday set.
// The upcoming-window filter is calendar math, done in the service.
func (r *ContactRepository) ListWithBirthdays(ctx context.Context, ownerID string) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1 AND birthday IS NOT NULL`

	rows, err := r.db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts with birthdays: %w", err)
	}

	return scanContactRows(rows)
}
