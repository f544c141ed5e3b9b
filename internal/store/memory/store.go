// Package memory is an in-process implementation of the store contracts and
// of the marketplace directory. It is used for local development and tests.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/store"
)

var (
	_ store.LedgerStore = (*Store)(nil)
	_ store.BoostStore  = (*Store)(nil)
)

type Store struct {
	mu sync.RWMutex

	// Ledger storage
	balances     map[string]*models.OwnerBalance
	transactions map[string][]models.Transaction

	// Boost storage
	boosts map[string]*models.Boost

	// Directory
	admins    map[string]bool
	companies map[string]string // company id -> owner user id
	listings  map[string]string // listing id -> created_by

	ownerLocks sync.Map
}

func New() *Store {
	return &Store{
		balances:     make(map[string]*models.OwnerBalance),
		transactions: make(map[string][]models.Transaction),
		boosts:       make(map[string]*models.Boost),
		admins:       make(map[string]bool),
		companies:    make(map[string]string),
		listings:     make(map[string]string),
	}
}

func (s *Store) ownerLock(ownerID string) *sync.Mutex {
	mu, _ := s.ownerLocks.LoadOrStore(ownerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Ledger Store implementation
func (s *Store) GetBalance(_ context.Context, ownerID string) (*models.OwnerBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.balances[ownerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string, limit int) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.transactions[ownerID]
	result := make([]models.Transaction, 0, min(limit, len(rows)))
	for i := len(rows) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, rows[i])
	}
	return result, nil
}

func (s *Store) ListBalances(_ context.Context, limit int) ([]models.OwnerBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.OwnerBalance, 0, len(s.balances))
	for _, b := range s.balances {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(*result[j].UpdatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) SumDeltas(_ context.Context, ownerID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, t := range s.transactions[ownerID] {
		total += t.Delta
	}
	return total, nil
}

// ApplyAdjustment holds the owner's mutex from the read of the current balance
// to the append of the transaction.
func (s *Store) ApplyAdjustment(ctx context.Context, adj models.Adjustment) (*models.AdjustmentResult, error) {
	lock := s.ownerLock(adj.OwnerID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if adj.RequestID != "" {
		for _, t := range s.transactions[adj.OwnerID] {
			if t.RequestID != nil && *t.RequestID == adj.RequestID {
				if t.Delta != adj.Delta {
					return nil, store.ErrRequestConflict
				}
				return &models.AdjustmentResult{Balance: t.BalanceAfter, TransactionID: t.ID, Replayed: true}, nil
			}
		}
	}

	var current int64
	existing, ok := s.balances[adj.OwnerID]
	if ok {
		current = existing.Balance
	}

	if adj.Delta > 0 && current > math.MaxInt64-adj.Delta {
		return nil, store.ErrBalanceOverflow
	}
	next := current + adj.Delta
	if next < 0 {
		return nil, store.ErrInsufficientBalance
	}

	at := adj.At
	if !ok {
		created := at
		existing = &models.OwnerBalance{OwnerID: adj.OwnerID, CreatedAt: &created}
		s.balances[adj.OwnerID] = existing
	}
	existing.Balance = next
	existing.Version++
	existing.UpdatedAt = &at

	t := models.Transaction{
		ID:           adj.TransactionID,
		OwnerID:      adj.OwnerID,
		Delta:        adj.Delta,
		Reason:       adj.Reason,
		CreatedBy:    adj.Actor,
		BalanceAfter: next,
		CreatedAt:    at,
	}
	if adj.RequestID != "" {
		requestID := adj.RequestID
		t.RequestID = &requestID
	}
	s.transactions[adj.OwnerID] = append(s.transactions[adj.OwnerID], t)

	return &models.AdjustmentResult{Balance: next, TransactionID: adj.TransactionID}, nil
}

// Boost Store implementation
func (s *Store) CreateBoost(_ context.Context, b *models.Boost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *b
	s.boosts[b.ID] = &cp
	return nil
}

func (s *Store) GetBoost(_ context.Context, boostID string) (*models.Boost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boosts[boostID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) DeleteBoost(_ context.Context, boostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.boosts, boostID)
	return nil
}

func (s *Store) DeactivateBoost(_ context.Context, boostID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.boosts[boostID]; ok {
		b.IsActive = false
	}
	return nil
}

func (s *Store) UpdateBoost(_ context.Context, boostID string, patch models.BoostPatch) (*models.Boost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boosts[boostID]
	if !ok {
		return nil, store.ErrNotFound
	}
	*b = patch.Apply(*b)
	cp := *b
	return &cp, nil
}

func (s *Store) ListBoosts(_ context.Context) ([]models.Boost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Boost, 0, len(s.boosts))
	for _, b := range s.boosts {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartsAt.After(result[j].StartsAt)
	})
	return result, nil
}

func (s *Store) ListActiveBoosts(_ context.Context, now time.Time) ([]models.Boost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Boost, 0)
	for _, b := range s.boosts {
		if b.State(now) == models.BoostActive {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EndsAt.After(result[j].EndsAt)
	})
	return result, nil
}

func (s *Store) ExpireBoosts(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, b := range s.boosts {
		if b.IsActive && !now.Before(b.EndsAt) {
			b.IsActive = false
			count++
		}
	}
	return count, nil
}

// Directory implementation
func (s *Store) GrantAdmin(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[userID] = true
}

func (s *Store) RegisterCompany(companyID, ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[companyID] = ownerID
}

func (s *Store) RegisterListing(listingID, createdBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[listingID] = createdBy
}

func (s *Store) IsAdmin(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admins[userID], nil
}

func (s *Store) IsCompanyOwner(_ context.Context, companyID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.companies[companyID]
	return ok && owner == userID, nil
}

func (s *Store) ListingOwner(_ context.Context, listingID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.listings[listingID]
	if !ok {
		return "", store.ErrNotFound
	}
	return owner, nil
}
