package identity

import (
	"context"
	"log/slog"
	"strings"
)

// InsecureVerifier treats the bearer token itself as the user ID.
// Development only.
type InsecureVerifier struct{}

func (InsecureVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	uid := strings.TrimSpace(idToken)
	if uid == "" {
		return "", ErrInvalidToken
	}
	return uid, nil
}

// LogClaimsSetter logs claim updates instead of applying them.
// Development only.
type LogClaimsSetter struct {
	Log *slog.Logger
}

func (s LogClaimsSetter) SetPlanClaim(ctx context.Context, userID, plan string) error {
	if s.Log != nil {
		s.Log.InfoContext(ctx, "dev claims update", slog.String("user_id", userID), slog.String("plan", plan))
	}
	return nil
}
