package models

import (
	"time"
)

// EntityType tags what a Boost points at. The referenced entity is owned by
// another subsystem and is only checked when the boost is created.
type EntityType string

const (
	EntityListing EntityType = "listing"
	EntityCompany EntityType = "company"
)

func (t EntityType) Valid() bool {
	return t == EntityListing || t == EntityCompany
}

type BoostState string

const (
	BoostScheduled BoostState = "scheduled"
	BoostActive    BoostState = "active"
	BoostExpired   BoostState = "expired"
	BoostRevoked   BoostState = "revoked"
)

// Boost is a time-bounded promotion of a listing or company profile.
type Boost struct {
	ID         string     `json:"id" db:"id"`
	EntityID   string     `json:"entity_id" db:"entity_id"`
	EntityType EntityType `json:"entity_type" db:"entity_type"`
	StartsAt   time.Time  `json:"starts_at" db:"starts_at"`
	EndsAt     time.Time  `json:"ends_at" db:"ends_at"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	PaymentID  *string    `json:"payment_id" db:"payment_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// State reports the lifecycle state of the boost at now.
func (b *Boost) State(now time.Time) BoostState {
	switch {
	case !now.Before(b.EndsAt):
		return BoostExpired
	case !b.IsActive:
		return BoostRevoked
	case now.Before(b.StartsAt):
		return BoostScheduled
	default:
		return BoostActive
	}
}

// BoostPatch holds the optional fields an admin may change on a boost.
type BoostPatch struct {
	IsActive *bool
	StartsAt *time.Time
	EndsAt   *time.Time
}

func (p BoostPatch) Empty() bool {
	return p.IsActive == nil && p.StartsAt == nil && p.EndsAt == nil
}

// Apply returns a copy of b with the patch applied.
func (p BoostPatch) Apply(b Boost) Boost {
	if p.IsActive != nil {
		b.IsActive = *p.IsActive
	}
	if p.StartsAt != nil {
		b.StartsAt = *p.StartsAt
	}
	if p.EndsAt != nil {
		b.EndsAt = *p.EndsAt
	}
	return b
}
