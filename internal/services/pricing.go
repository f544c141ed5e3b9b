package services

import (
	"fmt"
	"sort"
)

// Pricing quotes the bullet cost of a boost. It is configuration owned outside
// the ledger.
type Pricing interface {
	BoostPrice(durationDays int) (int64, error)
}

// TierPricing charges the exact tier price when one is configured for the
// duration and PerDay bullets per day otherwise.
type TierPricing struct {
	tiers  map[int]int64
	perDay int64
}

func NewTierPricing(tiers map[int]int64, perDay int64) *TierPricing {
	cp := make(map[int]int64, len(tiers))
	for days, price := range tiers {
		cp[days] = price
	}
	return &TierPricing{tiers: cp, perDay: perDay}
}

func (p *TierPricing) BoostPrice(durationDays int) (int64, error) {
	if durationDays < 1 {
		return 0, fmt.Errorf("pricing: invalid duration %d", durationDays)
	}
	if price, ok := p.tiers[durationDays]; ok {
		return price, nil
	}
	if p.perDay <= 0 {
		return 0, fmt.Errorf("pricing: no price configured for %d days", durationDays)
	}
	return p.perDay * int64(durationDays), nil
}

type PriceTier struct {
	DurationDays int   `json:"duration_days"`
	Price        int64 `json:"price"`
}

// Tiers lists the configured tiers ordered by duration.
func (p *TierPricing) Tiers() []PriceTier {
	tiers := make([]PriceTier, 0, len(p.tiers))
	for days, price := range p.tiers {
		tiers = append(tiers, PriceTier{DurationDays: days, Price: price})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].DurationDays < tiers[j].DurationDays })
	return tiers
}
