package models

import (
	"time"
)

// OwnerBalance is the spendable bullet balance of one owner (a user or a company).
// CreatedAt and UpdatedAt are nil for the synthetic zero record returned before
// the first adjustment.
type OwnerBalance struct {
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	Balance   int64      `json:"balance" db:"balance"`
	Version   int64      `json:"-" db:"version"` // for optimistic locking
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// ZeroBalance returns the record reported for an owner that has never been adjusted.
func ZeroBalance(ownerID string) *OwnerBalance {
	return &OwnerBalance{OwnerID: ownerID}
}

// Adjustment is a single balance mutation as handed to the ledger store.
type Adjustment struct {
	TransactionID string
	OwnerID       string
	Delta         int64
	Reason        string
	Actor         string
	RequestID     string
	RequireAdmin  bool
	At            time.Time
}

// AdjustmentResult is what a committed (or replayed) adjustment produced.
type AdjustmentResult struct {
	Balance       int64  `json:"balance"`
	TransactionID string `json:"transaction_id"`
	Replayed      bool   `json:"replayed,omitempty"`
}
