package memory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/store"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func adj(owner string, delta int64, requestID string) models.Adjustment {
	return models.Adjustment{
		TransactionID: fmt.Sprintf("tx-%s-%d-%s", owner, delta, requestID),
		OwnerID:       owner,
		Delta:         delta,
		Reason:        "test",
		Actor:         "admin-1",
		RequestID:     requestID,
		At:            now,
	}
}

func TestApplyAdjustment(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetBalance(ctx, "owner-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	res, err := s.ApplyAdjustment(ctx, adj("owner-1", 100, ""))
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Balance)

	_, err = s.ApplyAdjustment(ctx, adj("owner-1", -120, ""))
	assert.ErrorIs(t, err, store.ErrInsufficientBalance)

	res, err = s.ApplyAdjustment(ctx, adj("owner-1", -100, ""))
	require.NoError(t, err)
	assert.Zero(t, res.Balance)

	b, err := s.GetBalance(ctx, "owner-1")
	require.NoError(t, err)
	assert.Zero(t, b.Balance)
	assert.Equal(t, int64(2), b.Version)

	sum, err := s.SumDeltas(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, b.Balance, sum)

	txs, err := s.ListTransactions(ctx, "owner-1", 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(-100), txs[0].Delta)
}

func TestApplyAdjustment_RejectedDebitLeavesNoRow(t *testing.T) {
	s := New()

	_, err := s.ApplyAdjustment(context.Background(), adj("owner-1", -5, ""))
	assert.ErrorIs(t, err, store.ErrInsufficientBalance)

	_, err = s.GetBalance(context.Background(), "owner-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApplyAdjustment_CreditOverflow(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.ApplyAdjustment(ctx, adj("owner-1", 100, ""))
	require.NoError(t, err)

	_, err = s.ApplyAdjustment(ctx, adj("owner-1", math.MaxInt64, ""))
	assert.ErrorIs(t, err, store.ErrBalanceOverflow)

	b, err := s.GetBalance(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), b.Balance)

	res, err := s.ApplyAdjustment(ctx, adj("owner-1", math.MaxInt64-100, ""))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), res.Balance)
}

func TestApplyAdjustment_RequestID(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.ApplyAdjustment(ctx, adj("owner-1", 100, ""))
	require.NoError(t, err)

	first, err := s.ApplyAdjustment(ctx, adj("owner-1", -30, "req-1"))
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	again, err := s.ApplyAdjustment(ctx, adj("owner-1", -30, "req-1"))
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.TransactionID, again.TransactionID)
	assert.Equal(t, int64(70), again.Balance)

	_, err = s.ApplyAdjustment(ctx, adj("owner-1", -10, "req-1"))
	assert.ErrorIs(t, err, store.ErrRequestConflict)

	txs, err := s.ListTransactions(ctx, "owner-1", 10)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestApplyAdjustment_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ApplyAdjustment(ctx, adj("owner-1", 10, ""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplyAdjustment_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.ApplyAdjustment(ctx, adj("owner-1", 50, ""))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := adj("owner-1", -10, "")
			a.TransactionID = fmt.Sprintf("tx-%d", i)
			if _, err := s.ApplyAdjustment(ctx, a); err == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, committed)
	b, err := s.GetBalance(ctx, "owner-1")
	require.NoError(t, err)
	assert.Zero(t, b.Balance)
	sum, err := s.SumDeltas(ctx, "owner-1")
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestListBalances(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := adj("owner-1", 10, "")
	second := adj("owner-2", 20, "")
	second.At = now.Add(time.Minute)
	_, err := s.ApplyAdjustment(ctx, first)
	require.NoError(t, err)
	_, err = s.ApplyAdjustment(ctx, second)
	require.NoError(t, err)

	balances, err := s.ListBalances(ctx, 1)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "owner-2", balances[0].OwnerID)
}

func TestBoosts(t *testing.T) {
	ctx := context.Background()
	s := New()

	running := &models.Boost{ID: "b-1", EntityID: "listing-1", EntityType: models.EntityListing,
		StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour), IsActive: true}
	ended := &models.Boost{ID: "b-2", EntityID: "listing-2", EntityType: models.EntityListing,
		StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-time.Hour), IsActive: true}
	scheduled := &models.Boost{ID: "b-3", EntityID: "company-1", EntityType: models.EntityCompany,
		StartsAt: now.Add(time.Hour), EndsAt: now.Add(48 * time.Hour), IsActive: true}
	for _, b := range []*models.Boost{running, ended, scheduled} {
		require.NoError(t, s.CreateBoost(ctx, b))
	}

	active, err := s.ListActiveBoosts(ctx, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "b-1", active[0].ID)

	n, err := s.ExpireBoosts(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.ExpireBoosts(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	off := false
	updated, err := s.UpdateBoost(ctx, "b-3", models.BoostPatch{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = s.UpdateBoost(ctx, "b-9", models.BoostPatch{IsActive: &off})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteBoost(ctx, "b-1"))
	_, err = s.GetBoost(ctx, "b-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	all, err := s.ListBoosts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.GrantAdmin("admin-1")
	s.RegisterCompany("company-1", "user-1")
	s.RegisterListing("listing-1", "user-1")

	ok, _ := s.IsAdmin(ctx, "admin-1")
	assert.True(t, ok)
	ok, _ = s.IsAdmin(ctx, "user-1")
	assert.False(t, ok)

	ok, _ = s.IsCompanyOwner(ctx, "company-1", "user-1")
	assert.True(t, ok)
	ok, _ = s.IsCompanyOwner(ctx, "company-1", "user-2")
	assert.False(t, ok)

	owner, err := s.ListingOwner(ctx, "listing-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", owner)
	_, err = s.ListingOwner(ctx, "listing-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
