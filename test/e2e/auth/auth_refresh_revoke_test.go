package auth_test

import (
	"context"
	"testing"

	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRefreshTokenRotation verifies refresh tokens are single-use and the
// rotated-out pair stops working.
func TestRefreshTokenRotation(t *testing.T) {
	baseURL, cleanup := setupGatehouseContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, clientSecret, _ := bootstrapService(t, client)

	first, err := client.PasswordGrant(ctx, clientID, clientSecret, adminUsername, adminPassword, nil)
	require.NoError(t, err)
	require.NotEmpty(t, first.RefreshToken)

	second, err := client.RefreshGrant(ctx, clientID, clientSecret, first.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, second)
	require.NotEmpty(t, second.RefreshToken)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.NotEqual(t, first.AccessToken, second.AccessToken)

	t.Run("old pair no longer works", func(t *testing.T) {
		_, err := client.GetTokenInfo(ctx, first.AccessToken)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidToken)

		_, err = client.RefreshGrant(ctx, clientID, clientSecret, first.RefreshToken)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidGrant)
	})

	t.Run("new pair works", func(t *testing.T) {
		_, err := client.GetTokenInfo(ctx, second.AccessToken)
		require.NoError(t, err)
	})

	t.Run("garbage refresh token is rejected", func(t *testing.T) {
		_, err := client.RefreshGrant(ctx, clientID, clientSecret, "not-a-refresh-token")
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidGrant)
	})
}

// TestTokenRevocation covers RFC 7009 semantics at the revocation endpoint.
func TestTokenRevocation(t *testing.T) {
	baseURL, cleanup := setupGatehouseContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, clientSecret, _ := bootstrapService(t, client)

	t.Run("revoking a refresh token kills both tokens", func(t *testing.T) {
		tokens, err := client.PasswordGrant(ctx, clientID, clientSecret, adminUsername, adminPassword, nil)
		require.NoError(t, err)

		require.NoError(t, client.RevokeToken(ctx, clientID, clientSecret, tokens.RefreshToken))

		_, err = client.GetTokenInfo(ctx, tokens.AccessToken)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidToken)

		_, err = client.RefreshGrant(ctx, clientID, clientSecret, tokens.RefreshToken)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidGrant)
	})

	t.Run("revoking an access token leaves the refresh token usable", func(t *testing.T) {
		tokens, err := client.PasswordGrant(ctx, clientID, clientSecret, adminUsername, adminPassword, nil)
		require.NoError(t, err)

		require.NoError(t, client.RevokeToken(ctx, clientID, clientSecret, tokens.AccessToken))

		_, err = client.GetTokenInfo(ctx, tokens.AccessToken)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidToken)

		rotated, err := client.RefreshGrant(ctx, clientID, clientSecret, tokens.RefreshToken)
		require.NoError(t, err)
		assertTokenResponse(t, rotated)
	})

	t.Run("unknown token succeeds silently", func(t *testing.T) {
		require.NoError(t, client.RevokeToken(ctx, clientID, clientSecret, "completely-unknown-token"))
	})

	t.Run("wrong client secret is rejected", func(t *testing.T) {
		err := client.RevokeToken(ctx, clientID, "wrong-secret", "whatever")
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidClient)
	})
}
