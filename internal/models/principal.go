package models

// Principal is the authenticated caller. Roles are resolved through the
// identity directory, never carried in the token.
type Principal struct {
	ID      string
	TokenID string
}
