package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	mW "github.com/placementboard/backend/internal/middleware"
	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/services"
)

type BulletsHandler struct {
	ledger    *services.LedgerService
	boosts    *services.BoostService
	validator *services.ValidationHelper
}

func NewBulletsHandler(ledger *services.LedgerService, boosts *services.BoostService) *BulletsHandler {
	return &BulletsHandler{
		ledger:    ledger,
		boosts:    boosts,
		validator: services.NewValidationHelper(),
	}
}

// ownerParam returns the {ownerId} path value, defaulting to the caller.
func ownerParam(r *http.Request, p models.Principal) string {
	if ownerID := strings.TrimSpace(chi.URLParam(r, "ownerId")); ownerID != "" {
		return ownerID
	}
	return p.ID
}

// GetBullets returns a balance and its recent transactions
// @Summary Get bullet balance
// @Description Balance and the 50 most recent transactions of the caller, a company they own, or any owner for admins
// @Tags Bullets
// @Produce json
// @Security BearerAuth
// @Param ownerId path string false "Owner ID (defaults to the caller)"
// @Success 200 {object} services.Summary
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Router /bullets/{ownerId} [get]
func (h *BulletsHandler) GetBullets(w http.ResponseWriter, r *http.Request) {
	p := mW.PrincipalFrom(r.Context())

	summary, err := h.ledger.Summary(r.Context(), p, ownerParam(r, p))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Spend debits bullets, optionally buying a listing boost
// @Summary Spend bullets
// @Description Debit the owner's balance. With a boost option the debit pays for a listing boost and the boost is only kept if the debit commits.
// @Tags Bullets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ownerId path string false "Owner ID (defaults to the caller)"
// @Param request body models.SpendRequest true "Spend request"
// @Success 200 {object} services.PurchaseResult
// @Failure 400 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /bullets/{ownerId}/transactions [post]
func (h *BulletsHandler) Spend(w http.ResponseWriter, r *http.Request) {
	p := mW.PrincipalFrom(r.Context())

	var req models.SpendRequest
	if !decodeBody(w, r, h.validator, &req) {
		return
	}

	switch v := req.Variant(ownerParam(r, p)).(type) {
	case models.BoostPurchase:
		result, err := h.boosts.Purchase(r.Context(), p, v)
		if err != nil {
			services.SendServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case models.SelfSpend:
		result, err := h.ledger.Spend(r.Context(), p, v)
		if err != nil {
			services.SendServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, services.PurchaseResult{
			Balance:       result.Balance,
			TransactionID: result.TransactionID,
			Replayed:      result.Replayed,
		})
	}
}
