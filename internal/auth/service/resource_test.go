package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
)

func TestValidateBearerToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, domain.FrontendBackOffice, "svc", "pw")
	client, secret := env.seedConfidentialClient(t, func(c *domain.Client) {
		c.OwnerEntityClass = "user"
		c.OwnerEntityID = owner.ID
	})

	pair, err := env.tokens.ExchangeClientCredentials(ctx, client.ID, secret, []string{"orders:read"})
	require.NoError(t, err)

	t.Run("valid token resolves its context", func(t *testing.T) {
		tc, err := env.resource.ValidateBearerToken(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, client.ID, tc.ClientID)
		require.Equal(t, owner.ID, tc.UserID)
		require.True(t, tc.HasScope("orders:read"))
		require.False(t, tc.HasScope("orders:write"))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := env.resource.ValidateBearerToken(ctx, "not.a.jwt")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("revoked token", func(t *testing.T) {
		revocable, err := env.tokens.ExchangeClientCredentials(ctx, client.ID, secret, nil)
		require.NoError(t, err)

		require.NoError(t, env.tokens.Revoke(ctx, client.ID, secret, revocable.AccessToken))

		_, err = env.resource.ValidateBearerToken(ctx, revocable.AccessToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("deactivating the client kills its outstanding tokens", func(t *testing.T) {
		require.NoError(t, env.clients.SetClientActive(ctx, client.ID, false))
		defer func() {
			require.NoError(t, env.clients.SetClientActive(ctx, client.ID, true))
		}()

		_, err := env.resource.ValidateBearerToken(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("reactivated client tokens work again", func(t *testing.T) {
		tc, err := env.resource.ValidateBearerToken(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, client.ID, tc.ClientID)
	})
}
