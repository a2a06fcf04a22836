package service

import (
	"context"
	"errors"
	"time"

	"github.com/lanewaylabs/gatehouse/internal/auth/store"
	"github.com/lanewaylabs/gatehouse/pkg/jwtx"
	"github.com/lanewaylabs/gatehouse/pkg/slogx"
)

// TokenContext is the resolved identity behind a validated bearer token.
type TokenContext struct {
	TokenID   string
	ClientID  string
	UserID    string
	Scopes    []string
	ExpiresAt time.Time
}

// HasScope reports whether the token was granted the given scope.
func (tc TokenContext) HasScope(scope string) bool {
	for _, s := range tc.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ResourceService validates bearer tokens presented to protected endpoints.
// Signature and claims checks happen locally against the key set; the store
// lookup catches tokens revoked before their natural expiry.
type ResourceService struct {
	Verifier jwtx.Verifier
	Store    store.Store
}

// ValidateBearerToken verifies a compact JWT access token end to end. Every
// failure collapses into ErrUnauthorized so callers can't distinguish a
// forged token from a revoked one.
func (s *ResourceService) ValidateBearerToken(ctx context.Context, raw string) (TokenContext, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(raw)
	if err != nil {
		return TokenContext{}, ErrUnauthorized
	}

	if claims.ID == "" {
		return TokenContext{}, ErrUnauthorized
	}

	at, err := s.Store.AccessTokens().GetAccessTokenByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenContext{}, ErrUnauthorized
		}
		return TokenContext{}, err
	}
	if at.Revoked {
		l.Info("revoked access token presented", "token_id", at.ID)
		return TokenContext{}, ErrUnauthorized
	}
	if time.Now().UTC().After(at.ExpiresAt) {
		return TokenContext{}, ErrUnauthorized
	}

	// A deactivated client invalidates its outstanding tokens immediately.
	client, err := s.Store.Clients().GetClientByID(ctx, at.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TokenContext{}, ErrUnauthorized
		}
		return TokenContext{}, err
	}
	if !client.Active {
		l.Info("token presented for deactivated client", "client_id", client.ID)
		return TokenContext{}, ErrUnauthorized
	}

	return TokenContext{
		TokenID:   at.ID,
		ClientID:  at.ClientID,
		UserID:    at.UserIdentifier,
		Scopes:    at.Scopes,
		ExpiresAt: at.ExpiresAt,
	}, nil
}
