package handlers

import (
	"net/http"
	"strconv"

	"github.com/placementboard/backend/internal/services"
)

// TierLister exposes the configured boost price tiers.
type TierLister interface {
	Tiers() []services.PriceTier
}

type BoostsHandler struct {
	boosts *services.BoostService
	tiers  TierLister
}

func NewBoostsHandler(boosts *services.BoostService, tiers TierLister) *BoostsHandler {
	return &BoostsHandler{boosts: boosts, tiers: tiers}
}

type PricingResponse struct {
	Tiers        []services.PriceTier `json:"tiers"`
	DurationDays int                  `json:"duration_days,omitempty"`
	Price        int64                `json:"price,omitempty"`
}

type SweepResponse struct {
	OK          bool  `json:"ok"`
	Deactivated int64 `json:"deactivated"`
}

// ListActive lists boosts that are running now
// @Summary Active boosts
// @Tags Boosts
// @Produce json
// @Success 200 {object} BoostListResponse
// @Router /boosts [get]
func (h *BoostsHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	items, err := h.boosts.ListActive(r.Context())
	if err != nil {
		services.SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoostListResponse{Items: items})
}

// Pricing returns the boost price list
// @Summary Boost pricing
// @Description Configured price tiers. With duration_days, also the effective duration and price of that purchase.
// @Tags Boosts
// @Produce json
// @Param duration_days query int false "Requested duration"
// @Success 200 {object} PricingResponse
// @Failure 400 {object} services.ErrorResponse
// @Router /boosts/pricing [get]
func (h *BoostsHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	resp := PricingResponse{Tiers: h.tiers.Tiers()}

	if raw := r.URL.Query().Get("duration_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			services.SendErrorResponse(w, "duration_days must be an integer", http.StatusBadRequest, nil)
			return
		}
		resp.DurationDays, resp.Price, err = h.boosts.Quote(&days)
		if err != nil {
			services.SendServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Sweep deactivates expired boosts
// @Summary Boost expiry sweep
// @Tags Maintenance
// @Produce json
// @Param X-Cron-Secret header string true "Shared maintenance secret"
// @Success 200 {object} SweepResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /internal/boosts/sweep [post]
func (h *BoostsHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.boosts.Sweep(r.Context())
	if err != nil {
		services.SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{OK: true, Deactivated: n})
}
