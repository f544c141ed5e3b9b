package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/store"
	"github.com/placementboard/backend/internal/store/memory"
)

const (
	adminID = "admin-1"
	ownerA  = "owner-a"
	ownerB  = "owner-b"
)

func admin() models.Principal { return models.Principal{ID: adminID} }

func grant(t *testing.T, f *fixture, ownerID string, amount int64) {
	t.Helper()
	f.mem.GrantAdmin(adminID)
	_, err := f.ledger.AdminAdjust(context.Background(), admin(), models.AdminAdjustRequest{
		OwnerID: ownerID,
		Delta:   amount,
		Reason:  "grant",
	})
	require.NoError(t, err)
}

func TestLedgerService_AdminAdjust(t *testing.T) {
	t.Run("credit from zero records one transaction", func(t *testing.T) {
		f := newFixture(t)
		f.mem.GrantAdmin(adminID)

		result, err := f.ledger.AdminAdjust(context.Background(), admin(), models.AdminAdjustRequest{
			OwnerID: ownerA,
			Delta:   100,
			Reason:  "grant",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(100), result.Balance)
		assert.NotEmpty(t, result.TransactionID)

		summary, err := f.ledger.Summary(context.Background(), models.Principal{ID: ownerA}, ownerA)
		require.NoError(t, err)
		assert.Equal(t, int64(100), summary.Balance.Balance)
		require.Len(t, summary.Transactions, 1)
		assert.Equal(t, int64(100), summary.Transactions[0].Delta)
		assert.Equal(t, "grant", summary.Transactions[0].Reason)
		assert.Equal(t, adminID, summary.Transactions[0].CreatedBy)
		assert.Equal(t, int64(100), summary.Transactions[0].BalanceAfter)
	})

	t.Run("non-admin is denied and nothing is written", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.ledger.AdminAdjust(context.Background(), models.Principal{ID: ownerA}, models.AdminAdjustRequest{
			OwnerID: ownerA,
			Delta:   100,
			Reason:  "grant",
		})
		assert.True(t, IsKind(err, KindPermissionDenied))

		_, err = f.mem.GetBalance(context.Background(), ownerA)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("debit below zero is rejected", func(t *testing.T) {
		f := newFixture(t)
		grant(t, f, ownerA, 10)

		_, err := f.ledger.AdminAdjust(context.Background(), admin(), models.AdminAdjustRequest{
			OwnerID: ownerA,
			Delta:   -11,
			Reason:  "correction",
		})
		assert.True(t, IsKind(err, KindInsufficientBalance))

		balance, err := f.ledger.GetBalance(context.Background(), ownerA)
		require.NoError(t, err)
		assert.Equal(t, int64(10), balance.Balance)
	})

	t.Run("debit to exactly zero is allowed", func(t *testing.T) {
		f := newFixture(t)
		grant(t, f, ownerA, 10)

		result, err := f.ledger.AdminAdjust(context.Background(), admin(), models.AdminAdjustRequest{
			OwnerID: ownerA,
			Delta:   -10,
			Reason:  "correction",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Balance)
	})
}

func TestLedgerService_AdjustValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		adj  models.Adjustment
		kind ErrorKind
	}{
		{"zero delta", models.Adjustment{OwnerID: ownerA, Delta: 0, Reason: "x", Actor: ownerA}, KindValidation},
		{"blank reason", models.Adjustment{OwnerID: ownerA, Delta: 5, Reason: "   ", Actor: ownerA}, KindValidation},
		{"missing owner", models.Adjustment{Delta: 5, Reason: "x", Actor: ownerA}, KindValidation},
		{"missing actor", models.Adjustment{OwnerID: ownerA, Delta: 5, Reason: "x"}, KindPermissionDenied},
		{"credit above bound", models.Adjustment{OwnerID: ownerA, Delta: MaxDelta + 1, Reason: "x", Actor: ownerA}, KindValidation},
		{"debit above bound", models.Adjustment{OwnerID: ownerA, Delta: -MaxDelta - 1, Reason: "x", Actor: ownerA}, KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Adjust(context.Background(), tt.adj)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestLedgerService_AdminAdjustHugeCredit(t *testing.T) {
	f := newFixture(t)
	grant(t, f, ownerA, 100)

	_, err := f.ledger.AdminAdjust(context.Background(), admin(), models.AdminAdjustRequest{
		OwnerID: ownerA,
		Delta:   math.MaxInt64,
		Reason:  "grant",
	})
	assert.True(t, IsKind(err, KindValidation), "got %v", err)
	assert.False(t, IsKind(err, KindInsufficientBalance))

	balance, err := f.ledger.GetBalance(context.Background(), ownerA)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Balance)
}

func TestLedgerService_BalanceOverflowIsValidationError(t *testing.T) {
	f := newFixture(t, withLedgerStore(func(m *memory.Store) store.LedgerStore {
		return &failingLedger{Store: m, err: store.ErrBalanceOverflow}
	}))
	f.mem.GrantAdmin(adminID)

	_, err := f.ledger.AdminAdjust(context.Background(), admin(), models.AdminAdjustRequest{
		OwnerID: ownerA,
		Delta:   MaxDelta,
		Reason:  "grant",
	})
	assert.True(t, IsKind(err, KindValidation), "got %v", err)
	assert.Equal(t, 400, StatusFor(err))
}

func TestLedgerService_Spend(t *testing.T) {
	t.Run("positive delta is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ledger.Spend(context.Background(), models.Principal{ID: ownerA}, models.SelfSpend{
			OwnerID: ownerA,
			Delta:   5,
			Reason:  "free money",
		})
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("company owner spends company balance", func(t *testing.T) {
		f := newFixture(t)
		f.mem.RegisterCompany("company-1", ownerA)
		grant(t, f, "company-1", 50)

		result, err := f.ledger.Spend(context.Background(), models.Principal{ID: ownerA}, models.SelfSpend{
			OwnerID: "company-1",
			Delta:   -20,
			Reason:  "featured slot",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(30), result.Balance)
	})

	t.Run("stranger cannot spend", func(t *testing.T) {
		f := newFixture(t)
		grant(t, f, ownerB, 50)

		_, err := f.ledger.Spend(context.Background(), models.Principal{ID: ownerA}, models.SelfSpend{
			OwnerID: ownerB,
			Delta:   -20,
			Reason:  "steal",
		})
		assert.True(t, IsKind(err, KindPermissionDenied))
	})
}

func TestLedgerService_RequestIDReplay(t *testing.T) {
	f := newFixture(t)
	grant(t, f, ownerA, 100)
	p := models.Principal{ID: ownerA}

	first, err := f.ledger.Spend(context.Background(), p, models.SelfSpend{
		OwnerID: ownerA, Delta: -30, Reason: "spend", RequestID: "req-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(70), first.Balance)

	second, err := f.ledger.Spend(context.Background(), p, models.SelfSpend{
		OwnerID: ownerA, Delta: -30, Reason: "spend", RequestID: "req-1",
	})
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, int64(70), second.Balance)
	assert.Equal(t, first.TransactionID, second.TransactionID)

	_, err = f.ledger.Spend(context.Background(), p, models.SelfSpend{
		OwnerID: ownerA, Delta: -10, Reason: "spend", RequestID: "req-1",
	})
	assert.True(t, IsKind(err, KindValidation))

	balance, err := f.ledger.GetBalance(context.Background(), ownerA)
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance.Balance)
	require.NoError(t, f.ledger.VerifyInvariant(context.Background(), ownerA))
}

func TestLedgerService_Summary(t *testing.T) {
	t.Run("unknown owner reads as zero", func(t *testing.T) {
		f := newFixture(t)

		summary, err := f.ledger.Summary(context.Background(), models.Principal{ID: ownerA}, ownerA)
		require.NoError(t, err)
		assert.Equal(t, int64(0), summary.Balance.Balance)
		assert.Nil(t, summary.Balance.UpdatedAt)
		assert.Empty(t, summary.Transactions)
	})

	t.Run("stranger gets permission denied and no data", func(t *testing.T) {
		f := newFixture(t)
		grant(t, f, ownerB, 40)

		summary, err := f.ledger.Summary(context.Background(), models.Principal{ID: ownerA}, ownerB)
		assert.Nil(t, summary)
		assert.True(t, IsKind(err, KindPermissionDenied))
	})

	t.Run("admin reads any owner", func(t *testing.T) {
		f := newFixture(t)
		grant(t, f, ownerB, 40)

		summary, err := f.ledger.AdminSummary(context.Background(), admin(), ownerB)
		require.NoError(t, err)
		assert.Equal(t, int64(40), summary.Balance.Balance)
	})

	t.Run("history is newest first", func(t *testing.T) {
		f := newFixture(t)
		grant(t, f, ownerA, 10)
		f.ledger.now = func() time.Time { return testNow.Add(time.Minute) }
		grant(t, f, ownerA, 20)

		summary, err := f.ledger.Summary(context.Background(), models.Principal{ID: ownerA}, ownerA)
		require.NoError(t, err)
		require.Len(t, summary.Transactions, 2)
		assert.Equal(t, int64(20), summary.Transactions[0].Delta)
		assert.Equal(t, int64(10), summary.Transactions[1].Delta)
	})
}

func TestLedgerService_ListBalances(t *testing.T) {
	f := newFixture(t)
	grant(t, f, ownerA, 10)
	grant(t, f, ownerB, 20)

	balances, err := f.ledger.ListBalances(context.Background(), admin())
	require.NoError(t, err)
	assert.Len(t, balances, 2)

	_, err = f.ledger.ListBalances(context.Background(), models.Principal{ID: ownerA})
	assert.True(t, IsKind(err, KindPermissionDenied))
}

func TestLedgerService_StoreFailures(t *testing.T) {
	t.Run("store error is a store failure without internals", func(t *testing.T) {
		f := newFixture(t, withLedgerStore(func(m *memory.Store) store.LedgerStore {
			return &failingLedger{Store: m, err: errors.New("connection reset by peer")}
		}))
		f.mem.GrantAdmin(adminID)

		_, err := f.ledger.AdminAdjust(context.Background(), admin(), models.AdminAdjustRequest{
			OwnerID: ownerA, Delta: 5, Reason: "grant",
		})
		require.Error(t, err)
		assert.Equal(t, KindStoreFailure, KindOf(err))

		var e *Error
		require.True(t, errors.As(err, &e))
		assert.NotContains(t, e.Message, "connection reset")
	})

	t.Run("store timeout is reported as a timeout", func(t *testing.T) {
		f := newFixture(t, withStoreTimeout(20*time.Millisecond), withLedgerStore(func(m *memory.Store) store.LedgerStore {
			return &blockingLedger{Store: m}
		}))
		f.mem.GrantAdmin(adminID)

		_, err := f.ledger.AdminAdjust(context.Background(), admin(), models.AdminAdjustRequest{
			OwnerID: ownerA, Delta: 5, Reason: "grant",
		})
		assert.Equal(t, KindStoreFailure, KindOf(err))
		assert.True(t, IsTimeout(err))
	})
}

func TestLedgerService_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	grant(t, f, ownerA, 100)
	p := models.Principal{ID: ownerA}

	const attempts = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Spend(context.Background(), p, models.SelfSpend{
				OwnerID: ownerA, Delta: -30, Reason: "race",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				committed++
				return
			}
			assert.True(t, IsKind(err, KindInsufficientBalance))
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, committed)
	assert.Equal(t, attempts-3, rejected)

	balance, err := f.ledger.GetBalance(context.Background(), ownerA)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance.Balance)
	require.NoError(t, f.ledger.VerifyInvariant(context.Background(), ownerA))
}

func TestLedgerService_ConcurrentMixedAdjustments(t *testing.T) {
	f := newFixture(t)
	f.mem.GrantAdmin(adminID)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		delta := int64(7)
		if i%2 == 1 {
			delta = -9
		}
		wg.Add(1)
		go func(delta int64) {
			defer wg.Done()
			_, _ = f.ledger.AdminAdjust(context.Background(), admin(), models.AdminAdjustRequest{
				OwnerID: ownerA, Delta: delta, Reason: "mixed",
			})
		}(delta)
	}
	wg.Wait()

	balance, err := f.ledger.GetBalance(context.Background(), ownerA)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, balance.Balance, int64(0))
	require.NoError(t, f.ledger.VerifyInvariant(context.Background(), ownerA))
}
