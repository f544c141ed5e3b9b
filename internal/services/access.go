package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/placementboard/backend/internal/models"
)

// IdentityDirectory resolves roles of authenticated users.
type IdentityDirectory interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// CompanyDirectory resolves verified company ownership.
type CompanyDirectory interface {
	IsCompanyOwner(ctx context.Context, companyID, userID string) (bool, error)
}

// AccessGate decides whether a principal may read or spend an owner's bullets.
type AccessGate struct {
	identity  IdentityDirectory
	companies CompanyDirectory
	logger    zerolog.Logger
}

func NewAccessGate(identity IdentityDirectory, companies CompanyDirectory, logger zerolog.Logger) *AccessGate {
	return &AccessGate{
		identity:  identity,
		companies: companies,
		logger:    logger.With().Str("component", "access_gate").Logger(),
	}
}

// Authorize allows the owner themselves, the owner of the company ownerID, and admins.
func (g *AccessGate) Authorize(ctx context.Context, p models.Principal, ownerID string) error {
	if p.ID == "" {
		return permissionDenied("authentication required")
	}
	if p.ID == ownerID {
		return nil
	}

	isAdmin, err := g.IsAdmin(ctx, p.ID)
	if err != nil {
		return err
	}
	if isAdmin {
		return nil
	}

	owns, err := g.companies.IsCompanyOwner(ctx, ownerID, p.ID)
	if err != nil {
		g.logger.Error().Err(err).Str("owner_id", ownerID).Str("actor", p.ID).Msg("company ownership lookup failed")
		return storeFailure("failed to check access", err)
	}
	if owns {
		return nil
	}

	g.logger.Warn().Str("owner_id", ownerID).Str("actor", p.ID).Msg("ledger access denied")
	return permissionDenied("not authorized to access this balance")
}

func (g *AccessGate) RequireAdmin(ctx context.Context, p models.Principal) error {
	if p.ID == "" {
		return permissionDenied("authentication required")
	}
	isAdmin, err := g.IsAdmin(ctx, p.ID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return permissionDenied("admin role required")
	}
	return nil
}

func (g *AccessGate) IsAdmin(ctx context.Context, userID string) (bool, error) {
	isAdmin, err := g.identity.IsAdmin(ctx, userID)
	if err != nil {
		g.logger.Error().Err(err).Str("actor", userID).Msg("role lookup failed")
		return false, storeFailure("failed to check access", err)
	}
	return isAdmin, nil
}
