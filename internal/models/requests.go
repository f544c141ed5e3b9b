package models

import "time"

// AdminAdjustRequest is the body of a privileged credit or debit.
type AdminAdjustRequest struct {
	OwnerID   string `json:"owner_id" validate:"required,max=128" example:"3f0c8a5e-7f0e-4b8b-9f43-6a1c2d9e0b11"`
	Delta     int64  `json:"delta" validate:"required,min=-1000000000,max=1000000000" example:"100"`
	Reason    string `json:"reason" validate:"required,max=500" example:"grant"`
	RequestID string `json:"request_id,omitempty" validate:"omitempty,max=128"`
}

// SpendRequest is the body of a self-service spend. A present Boost turns it
// into a boost purchase.
type SpendRequest struct {
	Delta     int64        `json:"delta" validate:"required,lt=0,min=-1000000000" example:"-80"`
	Reason    string       `json:"reason" validate:"required,max=500" example:"boost listing"`
	RequestID string       `json:"request_id,omitempty" validate:"omitempty,max=128"`
	Boost     *BoostOption `json:"boost,omitempty"`
}

type BoostOption struct {
	ListingID    string `json:"listing_id" validate:"required,max=128"`
	DurationDays *int   `json:"duration_days,omitempty" validate:"omitempty,gte=0" example:"7"`
}

// SelfSpend is a plain debit of the caller's (or their company's) balance.
type SelfSpend struct {
	OwnerID   string
	Delta     int64
	Reason    string
	RequestID string
}

// BoostPurchase is a debit that pays for a listing boost.
type BoostPurchase struct {
	OwnerID      string
	ListingID    string
	DurationDays *int // nil means the default duration
	Delta        int64
	Reason       string
	RequestID    string
}

// Variant resolves the request into SelfSpend or BoostPurchase.
func (r SpendRequest) Variant(ownerID string) any {
	if r.Boost != nil {
		return BoostPurchase{
			OwnerID:      ownerID,
			ListingID:    r.Boost.ListingID,
			DurationDays: r.Boost.DurationDays,
			Delta:        r.Delta,
			Reason:       r.Reason,
			RequestID:    r.RequestID,
		}
	}
	return SelfSpend{
		OwnerID:   ownerID,
		Delta:     r.Delta,
		Reason:    r.Reason,
		RequestID: r.RequestID,
	}
}

type AdminBoostCreateRequest struct {
	EntityID   string     `json:"entity_id" validate:"required,max=128"`
	EntityType EntityType `json:"entity_type,omitempty" validate:"omitempty,oneof=listing company"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	EndsAt     *time.Time `json:"ends_at" validate:"required"`
	IsActive   *bool      `json:"is_active,omitempty"`
}

type AdminBoostUpdateRequest struct {
	IsActive *bool      `json:"is_active,omitempty"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

func (r AdminBoostUpdateRequest) Patch() BoostPatch {
	return BoostPatch{IsActive: r.IsActive, StartsAt: r.StartsAt, EndsAt: r.EndsAt}
}
