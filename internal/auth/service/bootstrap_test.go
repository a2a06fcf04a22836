package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
)

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	svc := &BootstrapService{Store: env.store, Token: "super-secret-bootstrap"}

	data := BootstrapData{
		Username:     "admin",
		Password:     "initial password",
		ClientName:   "back-office",
		ClientScopes: []string{"catalog:write"},
	}

	t.Run("wrong token rejected", func(t *testing.T) {
		_, _, _, err := svc.Bootstrap(ctx, "nope", data)
		require.ErrorIs(t, err, ErrBootstrapUnauthorized)
	})

	t.Run("seeds one user and one owned client", func(t *testing.T) {
		userID, clientID, clientSecret, err := svc.Bootstrap(ctx, "super-secret-bootstrap", data)
		require.NoError(t, err)
		require.NotEmpty(t, clientSecret)

		ok, err := svc.IsBootstrapped(ctx)
		require.NoError(t, err)
		require.True(t, ok)

		client, err := env.store.Clients().GetClientByID(ctx, clientID)
		require.NoError(t, err)
		require.True(t, client.Confidential)
		require.Equal(t, "user", client.OwnerEntityClass)
		require.Equal(t, userID, client.OwnerEntityID)

		// The seeded pair works for real grants straight away.
		pair, err := env.tokens.ExchangePassword(ctx, clientID, clientSecret, "admin", "initial password", nil)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)

		ccPair, err := env.tokens.ExchangeClientCredentials(ctx, clientID, clientSecret, nil)
		require.NoError(t, err)

		claims, err := env.verifier.Verify(ccPair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, userID, claims.Subject)
	})

	t.Run("second bootstrap rejected", func(t *testing.T) {
		_, _, _, err := svc.Bootstrap(ctx, "super-secret-bootstrap", data)
		require.ErrorIs(t, err, ErrBootstrapAlready)
	})
}

func TestBootstrapSeedsBackOfficeRealm(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	svc := &BootstrapService{Store: env.store, Token: "tok"}
	userID, _, _, err := svc.Bootstrap(ctx, "tok", BootstrapData{
		Username:   "admin",
		Password:   "pw",
		ClientName: "ops",
	})
	require.NoError(t, err)

	user, err := env.store.Users().GetUserByID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, domain.FrontendBackOffice, user.Frontend)
}
