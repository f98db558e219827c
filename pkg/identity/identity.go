package identity

import "context"

// ClaimsSetter mirrors application state into auth-side custom claims.
type ClaimsSetter interface {
	SetPlanClaim(ctx context.Context, userID, plan string) error
}

// TokenVerifier resolves a caller's ID token to their user ID.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}
