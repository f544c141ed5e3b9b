package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/placementboard/backend/internal/audit"
	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/store"
	"github.com/placementboard/backend/internal/store/memory"
)

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockIdentityDirectory struct {
	mock.Mock
}

func (m *MockIdentityDirectory) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockCompanyDirectory struct {
	mock.Mock
}

func (m *MockCompanyDirectory) IsCompanyOwner(ctx context.Context, companyID, userID string) (bool, error) {
	args := m.Called(ctx, companyID, userID)
	return args.Bool(0), args.Error(1)
}

// failingLedger rejects every adjustment with err and otherwise reads from the
// embedded store.
type failingLedger struct {
	*memory.Store
	err error
}

func (f *failingLedger) ApplyAdjustment(ctx context.Context, adj models.Adjustment) (*models.AdjustmentResult, error) {
	return nil, f.err
}

// blockingLedger waits for the caller's context to end before failing.
type blockingLedger struct {
	*memory.Store
}

func (b *blockingLedger) ApplyAdjustment(ctx context.Context, adj models.Adjustment) (*models.AdjustmentResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// flakyBoosts fails the first deleteFailures deletes and optionally every
// deactivation.
type flakyBoosts struct {
	*memory.Store
	deleteFailures   int32
	failDeactivate   bool
	deletes          atomic.Int32
	deactivations    atomic.Int32
	deleteCtxExpired atomic.Bool
}

func (f *flakyBoosts) DeleteBoost(ctx context.Context, boostID string) error {
	if ctx.Err() != nil {
		f.deleteCtxExpired.Store(true)
	}
	n := f.deletes.Add(1)
	if n <= f.deleteFailures {
		return errors.New("delete failed")
	}
	return f.Store.DeleteBoost(ctx, boostID)
}

func (f *flakyBoosts) DeactivateBoost(ctx context.Context, boostID string) error {
	f.deactivations.Add(1)
	if f.failDeactivate {
		return errors.New("deactivate failed")
	}
	return f.Store.DeactivateBoost(ctx, boostID)
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	mem    *memory.Store
	gate   *AccessGate
	ledger *LedgerService
	boosts *BoostService
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	ledgerStore func(*memory.Store) store.LedgerStore
	boostStore  func(*memory.Store) store.BoostStore
	locker      Locker
	ledgerCfg   LedgerConfig
}

func withLedgerStore(fn func(*memory.Store) store.LedgerStore) fixtureOption {
	return func(c *fixtureConfig) { c.ledgerStore = fn }
}

func withBoostStore(fn func(*memory.Store) store.BoostStore) fixtureOption {
	return func(c *fixtureConfig) { c.boostStore = fn }
}

func withLocker(l Locker) fixtureOption {
	return func(c *fixtureConfig) { c.locker = l }
}

func withStoreTimeout(d time.Duration) fixtureOption {
	return func(c *fixtureConfig) { c.ledgerCfg.StoreTimeout = d }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := fixtureConfig{ledgerCfg: LedgerConfig{StoreTimeout: time.Second}}
	for _, opt := range opts {
		opt(&cfg)
	}

	mem := memory.New()
	logger := zerolog.Nop()
	auditLogger := audit.NewLogger(logger)
	gate := NewAccessGate(mem, mem, logger)

	var ledgerStore store.LedgerStore = mem
	if cfg.ledgerStore != nil {
		ledgerStore = cfg.ledgerStore(mem)
	}
	var boostStore store.BoostStore = mem
	if cfg.boostStore != nil {
		boostStore = cfg.boostStore(mem)
	}

	ledger := NewLedgerService(ledgerStore, gate, auditLogger, logger, cfg.ledgerCfg)
	ledger.now = func() time.Time { return testNow }

	boosts, err := NewBoostService(boostStore, ledger, gate, mem,
		NewTierPricing(map[int]int64{1: 15, 7: 80, 14: 150, 30: 300}, 12),
		cfg.locker, auditLogger, logger, BoostConfig{
			DefaultDurationDays:  7,
			MaxDurationDays:      30,
			StoreTimeout:         time.Second,
			CompensationTimeout:  time.Second,
			CompensationAttempts: 3,
			SweepLockTTL:         time.Minute,
		})
	require.NoError(t, err)
	boosts.now = func() time.Time { return testNow }

	return &fixture{mem: mem, gate: gate, ledger: ledger, boosts: boosts}
}
