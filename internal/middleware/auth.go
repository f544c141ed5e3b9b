package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/placementboard/backend/internal/models"
	"github.com/placementboard/backend/internal/services"
)

type contextKey string

const principalKey contextKey = "principal"

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticator turns a bearer JWT into a Principal on the request context.
type Authenticator struct {
	secret      []byte
	revocations RevocationChecker
	logger      zerolog.Logger
}

// NewAuthenticator builds the JWT middleware. revocations may be nil.
func NewAuthenticator(secret string, revocations RevocationChecker, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		secret:      []byte(secret),
		revocations: revocations,
		logger:      logger.With().Str("component", "auth").Logger(),
	}
}

func (a *Authenticator) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Get token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
			return
		}

		// Extract token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
			return
		}

		principal, err := a.validateToken(parts[1])
		if err != nil {
			a.logger.Debug().Err(err).Msg("rejected bearer token")
			services.SendErrorResponse(w, "Invalid token", http.StatusUnauthorized, nil)
			return
		}

		if a.revocations != nil && principal.TokenID != "" {
			revoked, err := a.revocations.IsRevoked(r.Context(), principal.TokenID)
			if err != nil {
				a.logger.Error().Err(err).Str("actor", principal.ID).Msg("token revocation check failed")
				services.SendErrorResponse(w, "Authentication unavailable", http.StatusServiceUnavailable, nil)
				return
			}
			if revoked {
				services.SendErrorResponse(w, "Token has been revoked", http.StatusUnauthorized, nil)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func (a *Authenticator) validateToken(tokenString string) (models.Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return models.Principal{}, err
	}
	if !token.Valid {
		return models.Principal{}, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, errors.New("unexpected claims type")
	}

	userID := claimString(claims, "sub")
	if userID == "" {
		userID = claimString(claims, "user_id")
	}
	if userID == "" {
		return models.Principal{}, errors.New("token has no subject")
	}

	return models.Principal{ID: userID, TokenID: claimString(claims, "jti")}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	v, ok := claims[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated caller, or the zero Principal.
func PrincipalFrom(ctx context.Context) models.Principal {
	p, _ := ctx.Value(principalKey).(models.Principal)
	return p
}
