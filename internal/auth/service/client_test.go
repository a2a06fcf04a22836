package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
)

func TestAuthenticateClient(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	client, secret := env.seedConfidentialClient(t, func(c *domain.Client) {
		c.Grants = []string{domain.GrantClientCredentials}
	})

	t.Run("happy path", func(t *testing.T) {
		got, err := env.clients.AuthenticateClient(ctx, client.ID, secret, domain.GrantClientCredentials)
		require.NoError(t, err)
		require.Equal(t, client.ID, got.ID)
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := env.clients.AuthenticateClient(ctx, "missing", secret, domain.GrantClientCredentials)
		require.ErrorIs(t, err, ErrInvalidClient)
	})

	t.Run("inactive client", func(t *testing.T) {
		require.NoError(t, env.store.Clients().SetClientActive(ctx, client.ID, false))
		t.Cleanup(func() {
			require.NoError(t, env.store.Clients().SetClientActive(ctx, client.ID, true))
		})

		_, err := env.clients.AuthenticateClient(ctx, client.ID, secret, domain.GrantClientCredentials)
		require.ErrorIs(t, err, ErrInvalidClient)
	})

	t.Run("disallowed grant", func(t *testing.T) {
		_, err := env.clients.AuthenticateClient(ctx, client.ID, secret, domain.GrantPassword)
		require.ErrorIs(t, err, ErrInvalidClient)
	})

	t.Run("bad or missing secret", func(t *testing.T) {
		_, err := env.clients.AuthenticateClient(ctx, client.ID, "wrong", domain.GrantClientCredentials)
		require.ErrorIs(t, err, ErrInvalidClient)

		_, err = env.clients.AuthenticateClient(ctx, client.ID, "", domain.GrantClientCredentials)
		require.ErrorIs(t, err, ErrInvalidClient)
	})

	t.Run("empty grant list allows every grant", func(t *testing.T) {
		legacy, legacySecret := env.seedConfidentialClient(t, func(c *domain.Client) {
			c.Name = "legacy"
			c.Grants = nil
		})

		for _, grant := range domain.AllGrants {
			_, err := env.clients.AuthenticateClient(ctx, legacy.ID, legacySecret, grant)
			require.NoError(t, err, "grant %s", grant)
		}
	})

	t.Run("public client needs no secret", func(t *testing.T) {
		public := env.seedPublicClient(t, nil)
		got, err := env.clients.AuthenticateClient(ctx, public.ID, "", domain.GrantAuthorizationCode)
		require.NoError(t, err)
		require.Equal(t, public.ID, got.ID)
	})
}

func TestCreateClient(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("confidential client gets a verifiable secret", func(t *testing.T) {
		client, secret, err := env.clients.CreateClient(ctx, CreateClientParams{
			Name:             "back-office-portal",
			Confidential:     true,
			Grants:           []string{domain.GrantClientCredentials},
			Scopes:           []string{"catalog:write"},
			Frontend:         domain.FrontendBackOffice,
			OwnerEntityClass: "user",
			OwnerEntityID:    "owner-1",
		})
		require.NoError(t, err)
		require.NotEmpty(t, client.ID)
		require.NotEmpty(t, secret)
		require.NoError(t, cryptox.VerifySecret(secret, client.SecretHash))

		stored, err := env.store.Clients().GetClientByID(ctx, client.ID)
		require.NoError(t, err)
		require.True(t, stored.Active)
		require.True(t, stored.Confidential)
	})

	t.Run("public client has no secret", func(t *testing.T) {
		client, secret, err := env.clients.CreateClient(ctx, CreateClientParams{
			Name:         "storefront-spa",
			Grants:       []string{domain.GrantAuthorizationCode, domain.GrantRefreshToken},
			RedirectURIs: []string{"https://shop.test/cb"},
		})
		require.NoError(t, err)
		require.Empty(t, secret)
		require.Empty(t, client.SecretHash)
	})

	t.Run("authorization_code clients need a redirect uri", func(t *testing.T) {
		_, _, err := env.clients.CreateClient(ctx, CreateClientParams{
			Name:   "broken",
			Grants: []string{domain.GrantAuthorizationCode},
		})
		require.Error(t, err)
	})
}
