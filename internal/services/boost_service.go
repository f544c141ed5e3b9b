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
	sweepLockKey = "boosts:sweep"

	DefaultBoostDurationDays = 7
	// MaxBoostDurationDays is the longest boost that can be bought in one purchase.
	MaxBoostDurationDays = 30
)

// ListingDirectory resolves who created a listing. It returns store.ErrNotFound
// for unknown listings.
type ListingDirectory interface {
	ListingOwner(ctx context.Context, listingID string) (string, error)
}

// Locker serializes work across replicas.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type BoostConfig struct {
	DefaultDurationDays  int
	MaxDurationDays      int
	StoreTimeout         time.Duration
	CompensationTimeout  time.Duration
	CompensationAttempts int
	SweepLockTTL         time.Duration
}

// PurchaseResult is the outcome of a paid boost activation.
type PurchaseResult struct {
	Balance       int64         `json:"balance"`
	TransactionID string        `json:"transaction_id"`
	Replayed      bool          `json:"replayed,omitempty"`
	Boost         *models.Boost `json:"boost,omitempty"`
}

// BoostService owns the boost registry. It debits the ledger only through
// LedgerService.Adjust.
type BoostService struct {
	boosts   store.BoostStore
	ledger   *LedgerService
	gate     *AccessGate
	listings ListingDirectory
	pricing  Pricing
	locker   Locker
	audit    *audit.Logger
	logger   zerolog.Logger
	cfg      BoostConfig
	now      func() time.Time
}

// NewBoostService wires the boost workflow. locker may be nil, in which case
// sweeps are not coordinated across replicas. Zero durations take the
// defaults; a max above MaxBoostDurationDays or a default above the max is an
// error.
func NewBoostService(
	boosts store.BoostStore,
	ledger *LedgerService,
	gate *AccessGate,
	listings ListingDirectory,
	pricing Pricing,
	locker Locker,
	auditLogger *audit.Logger,
	logger zerolog.Logger,
	cfg BoostConfig,
) (*BoostService, error) {
	if cfg.DefaultDurationDays <= 0 {
		cfg.DefaultDurationDays = DefaultBoostDurationDays
	}
	if cfg.MaxDurationDays <= 0 {
		cfg.MaxDurationDays = MaxBoostDurationDays
	}
	if cfg.MaxDurationDays > MaxBoostDurationDays {
		return nil, fmt.Errorf("boosts: max duration of %d days exceeds %d", cfg.MaxDurationDays, MaxBoostDurationDays)
	}
	if cfg.DefaultDurationDays > cfg.MaxDurationDays {
		return nil, fmt.Errorf("boosts: default duration of %d days exceeds max of %d", cfg.DefaultDurationDays, cfg.MaxDurationDays)
	}
	if cfg.CompensationAttempts <= 0 {
		cfg.CompensationAttempts = 1
	}
	if cfg.CompensationTimeout <= 0 {
		cfg.CompensationTimeout = 10 * time.Second
	}
	if cfg.SweepLockTTL <= 0 {
		cfg.SweepLockTTL = 2 * time.Minute
	}
	return &BoostService{
		boosts:   boosts,
		ledger:   ledger,
		gate:     gate,
		listings: listings,
		pricing:  pricing,
		locker:   locker,
		audit:    auditLogger,
		logger:   logger.With().Str("component", "boosts").Logger(),
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// ClampDuration returns def when days is nil and otherwise clamps days into
// [1, maxDays]. Negative durations are rejected.
func ClampDuration(days *int, def, maxDays int) (int, error) {
	if days == nil {
		return def, nil
	}
	switch d := *days; {
	case d < 0:
		return 0, validationError("duration_days must not be negative")
	case d < 1:
		return 1, nil
	case d > maxDays:
		return maxDays, nil
	default:
		return d, nil
	}
}

// Quote returns the effective duration and bullet price for a requested
// duration. A nil duration quotes the default.
func (s *BoostService) Quote(durationDays *int) (int, int64, error) {
	days, err := ClampDuration(durationDays, s.cfg.DefaultDurationDays, s.cfg.MaxDurationDays)
	if err != nil {
		return 0, 0, err
	}
	price, err := s.pricing.BoostPrice(days)
	if err != nil {
		s.logger.Error().Err(err).Int("duration_days", days).Msg("boost pricing unavailable")
		return 0, 0, storeFailure("boost pricing unavailable", err)
	}
	return days, price, nil
}

func (s *BoostService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// Purchase creates a boost on a listing the principal created and debits its
// price. The boost is written first; if the debit does not commit the boost is
// removed again, so a paid boost always has exactly one debit.
func (s *BoostService) Purchase(ctx context.Context, p models.Principal, req models.BoostPurchase) (*PurchaseResult, error) {
	req.ListingID = strings.TrimSpace(req.ListingID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.ListingID == "" {
		return nil, validationError("boost.listing_id is required")
	}
	if req.Delta > 0 {
		return nil, validationError("a negative integer delta is required")
	}
	if req.Reason == "" {
		return nil, validationError("reason is required")
	}

	days, price, err := s.Quote(req.DurationDays)
	if err != nil {
		return nil, err
	}
	if req.Delta != 0 && req.Delta != -price {
		return nil, validationError("delta %d does not match the boost price of %d bullets", req.Delta, price)
	}

	if err := s.gate.Authorize(ctx, p, req.OwnerID); err != nil {
		return nil, err
	}
	if err := s.checkListingOwner(ctx, p, req.ListingID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	txID := uuid.NewString()
	boost := &models.Boost{
		ID:         uuid.NewString(),
		EntityID:   req.ListingID,
		EntityType: models.EntityListing,
		StartsAt:   now,
		EndsAt:     now.AddDate(0, 0, days),
		IsActive:   true,
		PaymentID:  &txID,
		CreatedAt:  now,
	}

	createCtx, cancel := s.withTimeout(ctx)
	err = s.boosts.CreateBoost(createCtx, boost)
	cancel()
	if err != nil {
		s.logger.Error().Err(err).
			Str("owner_id", req.OwnerID).
			Str("listing_id", req.ListingID).
			Str("actor", p.ID).
			Msg("failed to create boost")
		return nil, storeFailure("failed to create boost", err)
	}

	result, err := s.ledger.Adjust(ctx, models.Adjustment{
		TransactionID: txID,
		OwnerID:       req.OwnerID,
		Delta:         -price,
		Reason:        req.Reason,
		Actor:         p.ID,
		RequestID:     req.RequestID,
		At:            now,
	})
	if err != nil {
		s.compensate(ctx, boost, req.OwnerID, err)
		return nil, err
	}

	if result.Replayed {
		// The original request already paid for its own boost.
		s.compensate(ctx, boost, req.OwnerID, errors.New("request replayed"))
		return &PurchaseResult{Balance: result.Balance, TransactionID: result.TransactionID, Replayed: true}, nil
	}

	s.audit.LogBoost(audit.EventBoostCreated, boost, p.ID)
	s.logger.Info().
		Str("boost_id", boost.ID).
		Str("owner_id", req.OwnerID).
		Str("listing_id", req.ListingID).
		Int("duration_days", days).
		Int64("price", price).
		Msg("boost purchased")

	return &PurchaseResult{Balance: result.Balance, TransactionID: result.TransactionID, Boost: boost}, nil
}

func (s *BoostService) checkListingOwner(ctx context.Context, p models.Principal, listingID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	createdBy, err := s.listings.ListingOwner(ctx, listingID)
	if errors.Is(err, store.ErrNotFound) {
		return notFound("listing not found")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("listing_id", listingID).Msg("listing lookup failed")
		return storeFailure("failed to load listing", err)
	}
	if createdBy != p.ID {
		// Someone else's listing is reported the same as a missing one.
		return notFound("listing not found")
	}
	return nil
}

// compensate removes a boost whose debit did not commit. It runs on a context
// detached from the caller so a cancelled request still cleans up.
func (s *BoostService) compensate(ctx context.Context, boost *models.Boost, ownerID string, cause error) {
	base := context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 1; attempt <= s.cfg.CompensationAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(base, s.cfg.CompensationTimeout)
		lastErr = s.boosts.DeleteBoost(attemptCtx, boost.ID)
		cancel()
		if lastErr == nil || errors.Is(lastErr, store.ErrNotFound) {
			s.audit.LogCompensation(boost.ID, ownerID, "DELETED", cause)
			return
		}
		s.logger.Warn().Err(lastErr).
			Str("boost_id", boost.ID).
			Int("attempt", attempt).
			Msg("boost compensation attempt failed")
	}

	deactivateCtx, cancel := context.WithTimeout(base, s.cfg.CompensationTimeout)
	err := s.boosts.DeactivateBoost(deactivateCtx, boost.ID)
	cancel()
	if err == nil {
		s.audit.LogCompensation(boost.ID, ownerID, "DEACTIVATED", cause)
		return
	}

	s.audit.LogCompensation(boost.ID, ownerID, "FAILED", cause)
	s.logger.Error().
		AnErr("cause", cause).
		AnErr("delete_error", lastErr).
		AnErr("deactivate_error", err).
		Str("boost_id", boost.ID).
		Str("owner_id", ownerID).
		Str("entity_id", boost.EntityID).
		Time("ends_at", boost.EndsAt).
		Msg("unpaid boost could not be removed")
}

// Sweep deactivates every boost whose window has ended and returns how many
// rows changed. When another replica holds the sweep lock it returns 0.
func (s *BoostService) Sweep(ctx context.Context) (int64, error) {
	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, sweepLockKey, s.cfg.SweepLockTTL)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to acquire sweep lock")
			return 0, storeFailure("failed to acquire sweep lock", err)
		}
		if !acquired {
			s.logger.Debug().Msg("boost sweep already running elsewhere")
			return 0, nil
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), sweepLockKey); err != nil {
				s.logger.Warn().Err(err).Msg("failed to release sweep lock")
			}
		}()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.boosts.ExpireBoosts(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Msg("boost sweep failed")
		return 0, storeFailure("failed to deactivate expired boosts", err)
	}
	s.audit.LogSweep(n)
	return n, nil
}

// ListActive returns the boosts that are currently promoting something.
func (s *BoostService) ListActive(ctx context.Context) ([]models.Boost, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, err := s.boosts.ListActiveBoosts(ctx, s.now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list active boosts")
		return nil, storeFailure("failed to load boosts", err)
	}
	return items, nil
}

func (s *BoostService) AdminList(ctx context.Context, p models.Principal) ([]models.Boost, error) {
	if err := s.gate.RequireAdmin(ctx, p); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, err := s.boosts.ListBoosts(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list boosts")
		return nil, storeFailure("failed to load boosts", err)
	}
	return items, nil
}

// AdminCreate inserts an unpaid boost. Listing targets must exist.
func (s *BoostService) AdminCreate(ctx context.Context, p models.Principal, req models.AdminBoostCreateRequest) (*models.Boost, error) {
	if err := s.gate.RequireAdmin(ctx, p); err != nil {
		return nil, err
	}

	entityID := strings.TrimSpace(req.EntityID)
	if entityID == "" {
		return nil, validationError("entity_id is required")
	}
	entityType := req.EntityType
	if entityType == "" {
		entityType = models.EntityListing
	}
	if !entityType.Valid() {
		return nil, validationError("entity_type must be listing or company")
	}
	if req.EndsAt == nil {
		return nil, validationError("ends_at is required")
	}

	now := s.now().UTC()
	startsAt := now
	if req.StartsAt != nil {
		startsAt = req.StartsAt.UTC()
	}
	endsAt := req.EndsAt.UTC()
	if !endsAt.After(startsAt) {
		return nil, validationError("ends_at must be after starts_at")
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	if entityType == models.EntityListing {
		lookupCtx, cancel := s.withTimeout(ctx)
		_, err := s.listings.ListingOwner(lookupCtx, entityID)
		cancel()
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("listing not found")
		}
		if err != nil {
			return nil, storeFailure("failed to load listing", err)
		}
	}

	boost := &models.Boost{
		ID:         uuid.NewString(),
		EntityID:   entityID,
		EntityType: entityType,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		IsActive:   isActive,
		CreatedAt:  now,
	}

	createCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.boosts.CreateBoost(createCtx, boost); err != nil {
		s.logger.Error().Err(err).Str("entity_id", entityID).Str("actor", p.ID).Msg("failed to create boost")
		return nil, storeFailure("failed to create boost", err)
	}

	s.audit.LogBoost(audit.EventBoostCreated, boost, p.ID)
	return boost, nil
}

// AdminUpdate applies a partial update. The merged window must stay non-empty.
func (s *BoostService) AdminUpdate(ctx context.Context, p models.Principal, boostID string, patch models.BoostPatch) (*models.Boost, error) {
	if err := s.gate.RequireAdmin(ctx, p); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, validationError("nothing to update")
	}

	existing, err := s.getBoost(ctx, boostID)
	if err != nil {
		return nil, err
	}
	merged := patch.Apply(*existing)
	if !merged.EndsAt.After(merged.StartsAt) {
		return nil, validationError("ends_at must be after starts_at")
	}

	return s.update(ctx, p, boostID, patch, audit.EventBoostUpdated)
}

// Revoke ends a boost now. A boost that has not started yet keeps its window
// and is only deactivated.
func (s *BoostService) Revoke(ctx context.Context, p models.Principal, boostID string) (*models.Boost, error) {
	if err := s.gate.RequireAdmin(ctx, p); err != nil {
		return nil, err
	}

	existing, err := s.getBoost(ctx, boostID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	inactive := false
	patch := models.BoostPatch{IsActive: &inactive}
	if now.After(existing.StartsAt) && now.Before(existing.EndsAt) {
		patch.EndsAt = &now
	}

	return s.update(ctx, p, boostID, patch, audit.EventBoostRevoked)
}

func (s *BoostService) getBoost(ctx context.Context, boostID string) (*models.Boost, error) {
	if _, err := uuid.Parse(boostID); err != nil {
		return nil, notFound("boost not found")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	b, err := s.boosts.GetBoost(ctx, boostID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("boost not found")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("boost_id", boostID).Msg("failed to load boost")
		return nil, storeFailure("failed to load boost", err)
	}
	return b, nil
}

func (s *BoostService) update(ctx context.Context, p models.Principal, boostID string, patch models.BoostPatch, event string) (*models.Boost, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	updated, err := s.boosts.UpdateBoost(ctx, boostID, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound("boost not found")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("boost_id", boostID).Str("actor", p.ID).Msg("failed to update boost")
		return nil, storeFailure("failed to update boost", err)
	}

	s.audit.LogBoost(event, updated, p.ID)
	return updated, nil
}
