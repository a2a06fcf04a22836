package auth_test

import (
	"context"
	"testing"

	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestBootstrapFlow verifies the one-time setup endpoint seeds a working
// admin user and client.
func TestBootstrapFlow(t *testing.T) {
	baseURL, cleanup := setupGatehouseContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	t.Run("rejects wrong bootstrap token", func(t *testing.T) {
		_, err := client.Bootstrap(ctx, "wrong-token", authsdk.BootstrapRequest{
			Username:   adminUsername,
			Password:   adminPassword,
			ClientName: clientName,
		})
		require.Error(t, err)
	})

	clientID, clientSecret, adminUserID := bootstrapService(t, client)

	t.Run("seeded credentials work via password grant", func(t *testing.T) {
		tokens, err := client.PasswordGrant(ctx, clientID, clientSecret, adminUsername, adminPassword, nil)
		require.NoError(t, err)
		assertTokenResponse(t, tokens)

		info, err := client.GetTokenInfo(ctx, tokens.AccessToken)
		require.NoError(t, err)
		require.Equal(t, adminUserID, info.UserID)
		require.Equal(t, clientID, info.ClientID)
	})

	t.Run("seeded client works via client credentials grant", func(t *testing.T) {
		tokens, err := client.ClientCredentialsGrant(ctx, clientID, clientSecret, nil)
		require.NoError(t, err)
		assertTokenResponse(t, tokens)
		require.Empty(t, tokens.RefreshToken, "client_credentials must not return a refresh token")
	})

	t.Run("second bootstrap is rejected", func(t *testing.T) {
		_, err := client.Bootstrap(ctx, bootstrapToken, authsdk.BootstrapRequest{
			Username:   "second",
			Password:   "Second123!",
			ClientName: "second-client",
		})
		require.Error(t, err)
	})
}
