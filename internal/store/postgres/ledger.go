package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/store"
)

var _ store.LedgerStore = (*LedgerStore)(nil)

type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) GetBalance(ctx context.Context, ownerID string) (*models.OwnerBalance, error) {
	var b models.OwnerBalance
	err := s.db.QueryRowContext(ctx, `
		SELECT owner_id, balance, version, created_at, updated_at
		FROM bullets
		WHERE owner_id = $1`, ownerID).Scan(&b.OwnerID, &b.Balance, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &b, nil
}

func (s *LedgerStore) ListTransactions(ctx context.Context, ownerID string, limit int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, delta, reason, created_by, request_id, balance_after, created_at
		FROM bullet_transactions
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0, limit)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Delta, &t.Reason, &t.CreatedBy, &t.RequestID, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txs, nil
}

func (s *LedgerStore) ListBalances(ctx context.Context, limit int) ([]models.OwnerBalance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id, balance, version, created_at, updated_at
		FROM bullets
		ORDER BY updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	balances := make([]models.OwnerBalance, 0, limit)
	for rows.Next() {
		var b models.OwnerBalance
		if err := rows.Scan(&b.OwnerID, &b.Balance, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}
	return balances, nil
}

func (s *LedgerStore) SumDeltas(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM bullet_transactions WHERE owner_id = $1`,
		ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum deltas: %w", err)
	}
	return total, nil
}

// ApplyAdjustment locks the owner's row for the duration of one database
// transaction, so concurrent adjustments for the same owner are applied one
// after another against the committed balance.
func (s *LedgerStore) ApplyAdjustment(ctx context.Context, adj models.Adjustment) (*models.AdjustmentResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin adjustment: %w", err)
	}
	defer tx.Rollback()

	if err := s.ensureBalanceRow(ctx, tx, adj); err != nil {
		return nil, err
	}

	current, err := s.lockBalance(ctx, tx, adj.OwnerID)
	if err != nil {
		return nil, err
	}

	if adj.RequestID != "" {
		prior, err := s.findByRequestID(ctx, tx, adj.OwnerID, adj.RequestID)
		switch {
		case err == nil:
			if prior.Delta != adj.Delta {
				return nil, store.ErrRequestConflict
			}
			return &models.AdjustmentResult{Balance: prior.BalanceAfter, TransactionID: prior.ID, Replayed: true}, nil
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("failed to look up request id: %w", err)
		}
	}

	if adj.Delta > 0 && current.Balance > math.MaxInt64-adj.Delta {
		return nil, store.ErrBalanceOverflow
	}
	next := current.Balance + adj.Delta
	if next < 0 {
		return nil, store.ErrInsufficientBalance
	}

	if err := s.updateBalance(ctx, tx, adj, next, current.Version); err != nil {
		return nil, err
	}

	if err := s.appendTransaction(ctx, tx, adj, next); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", translate(err))
	}

	return &models.AdjustmentResult{Balance: next, TransactionID: adj.TransactionID}, nil
}

// ensureBalanceRow creates the zero row on first use. It is rolled back with
// everything else when the adjustment is rejected.
func (s *LedgerStore) ensureBalanceRow(ctx context.Context, tx *sql.Tx, adj models.Adjustment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bullets (owner_id, balance, version, created_at, updated_at)
		VALUES ($1, 0, 0, $2, $2)
		ON CONFLICT (owner_id) DO NOTHING`,
		adj.OwnerID, adj.At)
	if err != nil {
		return fmt.Errorf("failed to initialize balance: %w", err)
	}
	return nil
}

func (s *LedgerStore) lockBalance(ctx context.Context, tx *sql.Tx, ownerID string) (*models.OwnerBalance, error) {
	var b models.OwnerBalance
	err := tx.QueryRowContext(ctx, `
		SELECT owner_id, balance, version
		FROM bullets
		WHERE owner_id = $1
		FOR UPDATE`, ownerID).Scan(&b.OwnerID, &b.Balance, &b.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to lock balance: %w", err)
	}
	return &b, nil
}

func (s *LedgerStore) findByRequestID(ctx context.Context, tx *sql.Tx, ownerID, requestID string) (*models.Transaction, error) {
	var t models.Transaction
	err := tx.QueryRowContext(ctx, `
		SELECT id, delta, balance_after
		FROM bullet_transactions
		WHERE owner_id = $1 AND request_id = $2`,
		ownerID, requestID).Scan(&t.ID, &t.Delta, &t.BalanceAfter)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *LedgerStore) updateBalance(ctx context.Context, tx *sql.Tx, adj models.Adjustment, balance, version int64) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE bullets
		SET balance = $1, version = version + 1, updated_at = $2
		WHERE owner_id = $3 AND version = $4`,
		balance, adj.At, adj.OwnerID, version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", translate(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("owner %s: %w", adj.OwnerID, store.ErrVersionConflict)
	}
	return nil
}

func (s *LedgerStore) appendTransaction(ctx context.Context, tx *sql.Tx, adj models.Adjustment, balanceAfter int64) error {
	var requestID sql.NullString
	if adj.RequestID != "" {
		requestID = sql.NullString{String: adj.RequestID, Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bullet_transactions (id, owner_id, delta, reason, created_by, request_id, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		adj.TransactionID, adj.OwnerID, adj.Delta, adj.Reason, adj.Actor, requestID, balanceAfter, adj.At)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", translate(err))
	}
	return nil
}
