package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tapin-io/attendance-api/internal/models"
)

// OrganizationRepository manages persistence for organizations.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository constructs an OrganizationRepository.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const organizationColumns = "id, user_id, name, contact_number, description, reader_token, created_at, updated_at"

// FindByID fetches an organization by identifier.
func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	query := fmt.Sprintf("SELECT %s FROM organizations WHERE id = $1 LIMIT 1", organizationColumns)
	var org models.Organization
	if err := r.db.GetContext(ctx, &org, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find organization by id: %w", err)
	}
	return &org, nil
}

// FindByUserID fetches the organization profile behind a login account.
func (r *OrganizationRepository) FindByUserID(ctx context.Context, userID string) (*models.Organization, error) {
	query := fmt.Sprintf("SELECT %s FROM organizations WHERE user_id = $1 LIMIT 1", organizationColumns)
	var org models.Organization
	if err := r.db.GetContext(ctx, &org, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find organization by user id: %w", err)
	}
	return &org, nil
}

// FindByReaderToken resolves the organization a hardware scanner belongs to.
func (r *OrganizationRepository) FindByReaderToken(ctx context.Context, token string) (*models.Organization, error) {
	query := fmt.Sprintf("SELECT %s FROM organizations WHERE reader_token = $1 LIMIT 1", organizationColumns)
	var org models.Organization
	if err := r.db.GetContext(ctx, &org, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find organization by reader token: %w", err)
	}
	return &org, nil
}
