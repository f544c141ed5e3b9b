package models

import (
	"time"
)

// Transaction is one immutable row of the bullet audit trail.
type Transaction struct {
	ID           string    `json:"id" db:"id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	Delta        int64     `json:"delta" db:"delta"`
	Reason       string    `json:"reason" db:"reason"`
	CreatedBy    string    `json:"created_by" db:"created_by"`
	RequestID    *string   `json:"request_id,omitempty" db:"request_id"`
	BalanceAfter int64     `json:"balance_after" db:"balance_after"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
