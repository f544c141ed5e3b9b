package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	mW "github.com/placementboard/backend/internal/middleware"
	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/services"
)

type AdminHandler struct {
	ledger    *services.LedgerService
	boosts    *services.BoostService
	validator *services.ValidationHelper
}

func NewAdminHandler(ledger *services.LedgerService, boosts *services.BoostService) *AdminHandler {
	return &AdminHandler{
		ledger:    ledger,
		boosts:    boosts,
		validator: services.NewValidationHelper(),
	}
}

// GetBullets lists balances or returns one owner's summary
// @Summary Admin bullet balances
// @Description Without owner_id: the 100 most recently updated balances. With owner_id: that owner's balance and recent transactions.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param owner_id query string false "Owner ID"
// @Success 200 {object} BalanceListResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /admin/bullets [get]
func (h *AdminHandler) GetBullets(w http.ResponseWriter, r *http.Request) {
	p := mW.PrincipalFrom(r.Context())

	if ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id")); ownerID != "" {
		summary, err := h.ledger.AdminSummary(r.Context(), p, ownerID)
		if err != nil {
			services.SendServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	balances, err := h.ledger.ListBalances(r.Context(), p)
	if err != nil {
		services.SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceListResponse{Items: balances})
}

// AdjustBullets credits or debits any owner
// @Summary Admin bullet adjustment
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AdminAdjustRequest true "Adjustment"
// @Success 200 {object} models.AdjustmentResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /admin/bullets [post]
func (h *AdminHandler) AdjustBullets(w http.ResponseWriter, r *http.Request) {
	p := mW.PrincipalFrom(r.Context())

	var req models.AdminAdjustRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	result, err := h.ledger.AdminAdjust(r.Context(), p, req)
	if err != nil {
		services.SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListBoosts lists every boost
// @Summary Admin boost list
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BoostListResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /admin/boosts [get]
func (h *AdminHandler) ListBoosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.boosts.AdminList(r.Context(), mW.PrincipalFrom(r.Context()))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoostListResponse{Items: items})
}

// CreateBoost creates an unpaid boost
// @Summary Admin boost create
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AdminBoostCreateRequest true "Boost"
// @Success 201 {object} BoostResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/boosts [post]
func (h *AdminHandler) CreateBoost(w http.ResponseWriter, r *http.Request) {
	var req models.AdminBoostCreateRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	boost, err := h.boosts.AdminCreate(r.Context(), mW.PrincipalFrom(r.Context()), req)
	if err != nil {
		services.SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, BoostResponse{Item: boost})
}

// UpdateBoost changes a boost's window or active flag
// @Summary Admin boost update
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param boostId path string true "Boost ID"
// @Param request body models.AdminBoostUpdateRequest true "Fields to change"
// @Success 200 {object} BoostResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/boosts/{boostId} [patch]
func (h *AdminHandler) UpdateBoost(w http.ResponseWriter, r *http.Request) {
	var req models.AdminBoostUpdateRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	boost, err := h.boosts.AdminUpdate(r.Context(), mW.PrincipalFrom(r.Context()), chi.URLParam(r, "boostId"), req.Patch())
	if err != nil {
		services.SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoostResponse{Item: boost})
}

// RevokeBoost ends a boost now
// @Summary Admin boost revoke
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param boostId path string true "Boost ID"
// @Success 200 {object} BoostResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /admin/boosts/{boostId} [delete]
func (h *AdminHandler) RevokeBoost(w http.ResponseWriter, r *http.Request) {
	boost, err := h.boosts.Revoke(r.Context(), mW.PrincipalFrom(r.Context()), chi.URLParam(r, "boostId"))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BoostResponse{Item: boost})
}
