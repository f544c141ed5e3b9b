// Package store declares the persistence contracts of the bullet ledger and
// the boost registry. The postgres package is the production implementation;
// the memory package backs local development and tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/placementboard/backend/internal/models"
)

var (
	ErrNotFound            = errors.New("store: not found")
	ErrInsufficientBalance = errors.New("store: insufficient balance")
	// ErrRequestConflict is returned when a request id is replayed with a different delta.
	ErrRequestConflict = errors.New("store: request id already used for a different adjustment")
	ErrVersionConflict = errors.New("store: optimistic lock failed")
	// ErrBalanceOverflow is returned when a credit would push a balance past math.MaxInt64.
	ErrBalanceOverflow = errors.New("store: balance overflow")
)

// LedgerStore owns the per-owner balance rows and the transaction log.
//
// ApplyAdjustment is the only method that writes either of them. It must run as
// one unit serialized per owner: read, check non-negativity, write the balance
// and append the transaction, or change nothing.
type LedgerStore interface {
	GetBalance(ctx context.Context, ownerID string) (*models.OwnerBalance, error)
	ListTransactions(ctx context.Context, ownerID string, limit int) ([]models.Transaction, error)
	ListBalances(ctx context.Context, limit int) ([]models.OwnerBalance, error)
	SumDeltas(ctx context.Context, ownerID string) (int64, error)
	ApplyAdjustment(ctx context.Context, adj models.Adjustment) (*models.AdjustmentResult, error)
}

// BoostStore persists boosts. It never touches the ledger.
type BoostStore interface {
	CreateBoost(ctx context.Context, b *models.Boost) error
	GetBoost(ctx context.Context, boostID string) (*models.Boost, error)
	DeleteBoost(ctx context.Context, boostID string) error
	DeactivateBoost(ctx context.Context, boostID string) error
	UpdateBoost(ctx context.Context, boostID string, patch models.BoostPatch) (*models.Boost, error)
	ListBoosts(ctx context.Context) ([]models.Boost, error)
	ListActiveBoosts(ctx context.Context, now time.Time) ([]models.Boost, error)
	// ExpireBoosts deactivates every active boost whose window ended at or before now.
	ExpireBoosts(ctx context.Context, now time.Time) (int64, error)
}
