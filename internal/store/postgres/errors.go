package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/placementboard/backend/internal/store"
)

const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
)

// translate maps constraint violations onto store sentinels. The balance CHECK
// constraint is a backstop for the in-transaction non-negative check.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case codeCheckViolation:
		if pqErr.Constraint == "bullets_balance_check" || pqErr.Constraint == "bullet_transactions_balance_after_check" {
			return store.ErrInsufficientBalance
		}
	case codeUniqueViolation:
		if pqErr.Constraint == "idx_bullet_tx_owner_request" {
			return store.ErrRequestConflict
		}
	}
	return err
}
