package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/placementboard/backend/internal/audit"
	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/store"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
	defaultBalanceLimit = 100
	maxReasonLength     = 500

	// MaxDelta bounds the magnitude of a single adjustment.
	MaxDelta int64 = 1_000_000_000
)

type LedgerConfig struct {
	StoreTimeout time.Duration
	HistoryLimit int
	BalanceLimit int
}

// LedgerService is the only writer of bullet balances. Every mutation goes
// through Adjust.
type LedgerService struct {
	store  store.LedgerStore
	gate   *AccessGate
	audit  *audit.Logger
	logger zerolog.Logger
	cfg    LedgerConfig
	now    func() time.Time
}

// Summary is a balance and its most recent transactions.
type Summary struct {
	Balance      models.OwnerBalance  `json:"balance"`
	Transactions []models.Transaction `json:"transactions"`
}

func NewLedgerService(st store.LedgerStore, gate *AccessGate, auditLogger *audit.Logger, logger zerolog.Logger, cfg LedgerConfig) *LedgerService {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.BalanceLimit <= 0 {
		cfg.BalanceLimit = defaultBalanceLimit
	}
	return &LedgerService{
		store:  st,
		gate:   gate,
		audit:  auditLogger,
		logger: logger.With().Str("component", "ledger").Logger(),
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *LedgerService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// Summary returns the owner's balance and history after passing the access gate.
func (s *LedgerService) Summary(ctx context.Context, p models.Principal, ownerID string) (*Summary, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, validationError("owner_id is required")
	}
	if err := s.gate.Authorize(ctx, p, ownerID); err != nil {
		return nil, err
	}

	balance, err := s.GetBalance(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	txs, err := s.ListTransactions(ctx, ownerID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}
	return &Summary{Balance: *balance, Transactions: txs}, nil
}

// GetBalance returns the stored balance or a zero record for an owner that has
// never been adjusted. Callers must have passed the access gate.
func (s *LedgerService) GetBalance(ctx context.Context, ownerID string) (*models.OwnerBalance, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	balance, err := s.store.GetBalance(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ZeroBalance(ownerID), nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to load balance")
		return nil, storeFailure("failed to load balance", err)
	}
	return balance, nil
}

// ListTransactions returns the owner's transactions newest first. Callers must
// have passed the access gate.
func (s *LedgerService) ListTransactions(ctx context.Context, ownerID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	txs, err := s.store.ListTransactions(ctx, ownerID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to load transactions")
		return nil, storeFailure("failed to load transactions", err)
	}
	return txs, nil
}

// ListBalances returns the most recently updated balances. Admin only.
func (s *LedgerService) ListBalances(ctx context.Context, p models.Principal) ([]models.OwnerBalance, error) {
	if err := s.gate.RequireAdmin(ctx, p); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	balances, err := s.store.ListBalances(ctx, s.cfg.BalanceLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("actor", p.ID).Msg("failed to list balances")
		return nil, storeFailure("failed to load bullet balances", err)
	}
	return balances, nil
}

// AdminSummary is Summary restricted to admins.
func (s *LedgerService) AdminSummary(ctx context.Context, p models.Principal, ownerID string) (*Summary, error) {
	if err := s.gate.RequireAdmin(ctx, p); err != nil {
		return nil, err
	}
	return s.Summary(ctx, p, ownerID)
}

// AdminAdjust credits or debits any owner. The admin capability is checked
// again inside Adjust.
func (s *LedgerService) AdminAdjust(ctx context.Context, p models.Principal, req models.AdminAdjustRequest) (*models.AdjustmentResult, error) {
	return s.Adjust(ctx, models.Adjustment{
		OwnerID:      strings.TrimSpace(req.OwnerID),
		Delta:        req.Delta,
		Reason:       req.Reason,
		Actor:        p.ID,
		RequestID:    req.RequestID,
		RequireAdmin: true,
	})
}

// Spend debits the owner's balance on behalf of p.
func (s *LedgerService) Spend(ctx context.Context, p models.Principal, req models.SelfSpend) (*models.AdjustmentResult, error) {
	if req.Delta >= 0 {
		return nil, validationError("a negative integer delta is required")
	}
	if err := s.gate.Authorize(ctx, p, req.OwnerID); err != nil {
		return nil, err
	}
	return s.Adjust(ctx, models.Adjustment{
		OwnerID:   req.OwnerID,
		Delta:     req.Delta,
		Reason:    req.Reason,
		Actor:     p.ID,
		RequestID: req.RequestID,
	})
}

// Adjust applies one balance change atomically and returns the resulting
// balance. A rejected adjustment persists nothing.
func (s *LedgerService) Adjust(ctx context.Context, adj models.Adjustment) (*models.AdjustmentResult, error) {
	adj.Reason = strings.TrimSpace(adj.Reason)
	adj.RequestID = strings.TrimSpace(adj.RequestID)
	if err := validateAdjustment(adj); err != nil {
		return nil, err
	}

	if adj.RequireAdmin {
		isAdmin, err := s.gate.IsAdmin(ctx, adj.Actor)
		if err != nil {
			return nil, err
		}
		if !isAdmin {
			s.audit.LogRejected(adj, errors.New("admin role required"))
			return nil, permissionDenied("admin role required")
		}
	}

	if adj.TransactionID == "" {
		adj.TransactionID = uuid.NewString()
	}
	if adj.At.IsZero() {
		adj.At = s.now().UTC()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.store.ApplyAdjustment(ctx, adj)
	if err != nil {
		s.audit.LogRejected(adj, err)
		return nil, s.adjustmentError(adj, err)
	}

	s.audit.LogAdjustment(adj, result)
	return result, nil
}

func (s *LedgerService) adjustmentError(adj models.Adjustment, err error) error {
	switch {
	case errors.Is(err, store.ErrInsufficientBalance):
		return insufficientBalance(err)
	case errors.Is(err, store.ErrBalanceOverflow):
		return validationError("credit of %d would overflow the balance", adj.Delta)
	case errors.Is(err, store.ErrRequestConflict):
		return validationError("request_id %q was already used for a different adjustment", adj.RequestID)
	}

	s.logger.Error().
		Err(err).
		Str("owner_id", adj.OwnerID).
		Int64("delta", adj.Delta).
		Str("reason", adj.Reason).
		Str("actor", adj.Actor).
		Bool("timeout", IsTimeout(err)).
		Msg("bullet adjustment failed")
	return storeFailure("failed to adjust bullet balance", err)
}

func validateAdjustment(adj models.Adjustment) error {
	switch {
	case strings.TrimSpace(adj.OwnerID) == "":
		return validationError("owner_id is required")
	case adj.Delta == 0:
		return validationError("delta must be a non-zero integer")
	case adj.Delta > MaxDelta || adj.Delta < -MaxDelta:
		return validationError("delta must be between -%d and %d", MaxDelta, MaxDelta)
	case adj.Reason == "":
		return validationError("reason is required")
	case len(adj.Reason) > maxReasonLength:
		return validationError("reason must be at most %d characters", maxReasonLength)
	case adj.Actor == "":
		return permissionDenied("authentication required")
	}
	return nil
}

// VerifyInvariant recomputes the sum of the owner's deltas and compares it with
// the stored balance.
func (s *LedgerService) VerifyInvariant(ctx context.Context, ownerID string) error {
	balance, err := s.GetBalance(ctx, ownerID)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sum, err := s.store.SumDeltas(ctx, ownerID)
	if err != nil {
		return storeFailure("failed to sum transactions", err)
	}

	if sum != balance.Balance || balance.Balance < 0 {
		s.logger.Error().
			Str("owner_id", ownerID).
			Int64("stored_balance", balance.Balance).
			Int64("transaction_sum", sum).
			Msg("balance discrepancy detected")
		return storeFailure("ledger invariant violated",
			fmt.Errorf("owner %s: balance %d, sum %d: %w", ownerID, balance.Balance, sum, ErrLedgerCorrupted))
	}
	return nil
}
