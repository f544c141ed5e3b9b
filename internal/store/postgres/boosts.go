package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/store"
)

var _ store.BoostStore = (*BoostStore)(nil)

const boostColumns = `id, entity_id, entity_type, starts_at, ends_at, is_active, payment_id, created_at`

type BoostStore struct {
	db *sql.DB
}

func NewBoostStore(db *sql.DB) *BoostStore {
	return &BoostStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBoost(row rowScanner) (*models.Boost, error) {
	var b models.Boost
	var entityType string
	if err := row.Scan(&b.ID, &b.EntityID, &entityType, &b.StartsAt, &b.EndsAt, &b.IsActive, &b.PaymentID, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.EntityType = models.EntityType(entityType)
	return &b, nil
}

func (s *BoostStore) CreateBoost(ctx context.Context, b *models.Boost) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO boosts (id, entity_id, entity_type, starts_at, ends_at, is_active, payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.EntityID, string(b.EntityType), b.StartsAt, b.EndsAt, b.IsActive, b.PaymentID, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create boost: %w", err)
	}
	return nil
}

func (s *BoostStore) GetBoost(ctx context.Context, boostID string) (*models.Boost, error) {
	b, err := scanBoost(s.db.QueryRowContext(ctx,
		`SELECT `+boostColumns+` FROM boosts WHERE id = $1`, boostID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get boost: %w", err)
	}
	return b, nil
}

func (s *BoostStore) DeleteBoost(ctx context.Context, boostID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM boosts WHERE id = $1`, boostID); err != nil {
		return fmt.Errorf("failed to delete boost: %w", err)
	}
	return nil
}

func (s *BoostStore) DeactivateBoost(ctx context.Context, boostID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE boosts SET is_active = false WHERE id = $1`, boostID); err != nil {
		return fmt.Errorf("failed to deactivate boost: %w", err)
	}
	return nil
}

func (s *BoostStore) UpdateBoost(ctx context.Context, boostID string, patch models.BoostPatch) (*models.Boost, error) {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if patch.IsActive != nil {
		args = append(args, *patch.IsActive)
		sets = append(sets, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if patch.StartsAt != nil {
		args = append(args, *patch.StartsAt)
		sets = append(sets, fmt.Sprintf("starts_at = $%d", len(args)))
	}
	if patch.EndsAt != nil {
		args = append(args, *patch.EndsAt)
		sets = append(sets, fmt.Sprintf("ends_at = $%d", len(args)))
	}
	if len(sets) == 0 {
		return s.GetBoost(ctx, boostID)
	}
	args = append(args, boostID)

	query := fmt.Sprintf(`UPDATE boosts SET %s WHERE id = $%d RETURNING `+boostColumns,
		strings.Join(sets, ", "), len(args))
	b, err := scanBoost(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update boost: %w", err)
	}
	return b, nil
}

func (s *BoostStore) ListBoosts(ctx context.Context) ([]models.Boost, error) {
	return s.query(ctx, `SELECT `+boostColumns+` FROM boosts ORDER BY starts_at DESC`)
}

func (s *BoostStore) ListActiveBoosts(ctx context.Context, now time.Time) ([]models.Boost, error) {
	return s.query(ctx, `
		SELECT `+boostColumns+`
		FROM boosts
		WHERE is_active = true AND starts_at <= $1 AND ends_at > $1
		ORDER BY ends_at DESC`, now)
}

func (s *BoostStore) ExpireBoosts(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE boosts
		SET is_active = false
		WHERE is_active = true AND ends_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire boosts: %w", err)
	}
	return result.RowsAffected()
}

func (s *BoostStore) query(ctx context.Context, query string, args ...any) ([]models.Boost, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query boosts: %w", err)
	}
	defer rows.Close()

	boosts := make([]models.Boost, 0)
	for rows.Next() {
		b, err := scanBoost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan boost row: %w", err)
		}
		boosts = append(boosts, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating boost rows: %w", err)
	}
	return boosts, nil
}
