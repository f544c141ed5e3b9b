package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/placementboard/backend/internal/store"
)

// Directory answers identity, company and listing questions from tables owned
// by the rest of the marketplace (user_roles, companies, placements).
type Directory struct {
	db *sql.DB
}

func NewDirectory(db *sql.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles WHERE user_id = $1 AND role = 'admin'
		)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admin role: %w", err)
	}
	return exists, nil
}

func (d *Directory) IsCompanyOwner(ctx context.Context, companyID, userID string) (bool, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM companies WHERE id::text = $1 AND owner_id::text = $2
		)`, companyID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check company ownership: %w", err)
	}
	return exists, nil
}

// ListingOwner returns the creator of a listing, or store.ErrNotFound.
func (d *Directory) ListingOwner(ctx context.Context, listingID string) (string, error) {
	var createdBy sql.NullString
	err := d.db.QueryRowContext(ctx,
		`SELECT created_by FROM placements WHERE id::text = $1`, listingID).Scan(&createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up listing: %w", err)
	}
	return createdBy.String, nil
}
