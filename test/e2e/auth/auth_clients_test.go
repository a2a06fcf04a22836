package auth_test

import (
	"context"
	"testing"

	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestClientManagement exercises the client registration endpoints and their
// scope enforcement.
func TestClientManagement(t *testing.T) {
	baseURL, cleanup := setupGatehouseContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	adminToken, bootstrapClientID, bootstrapSecret := adminAccessToken(t, client)

	var createdID string

	t.Run("create confidential client", func(t *testing.T) {
		created, err := client.CreateClient(ctx, adminToken, authsdk.CreateClientRequest{
			Name:             "reporting-service",
			Confidential:     true,
			Grants:           []string{"client_credentials"},
			Scopes:           []string{"orders:read"},
			OwnerEntityClass: "service",
			OwnerEntityID:    "reporting",
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ClientID)
		require.NotEmpty(t, created.ClientSecret)
		createdID = created.ClientID

		tokens, err := client.ClientCredentialsGrant(ctx, created.ClientID, created.ClientSecret, nil)
		require.NoError(t, err)
		assertTokenResponse(t, tokens)
	})

	t.Run("list includes both clients", func(t *testing.T) {
		list, err := client.ListClients(ctx, adminToken)
		require.NoError(t, err)
		require.Len(t, list.Clients, 2)

		ids := []string{list.Clients[0].ClientID, list.Clients[1].ClientID}
		require.Contains(t, ids, bootstrapClientID)
		require.Contains(t, ids, createdID)
	})

	t.Run("token without the management scope is forbidden", func(t *testing.T) {
		tokens, err := client.PasswordGrant(ctx, bootstrapClientID, bootstrapSecret, adminUsername, adminPassword, []string{"orders:read"})
		require.NoError(t, err)

		_, err = client.ListClients(ctx, tokens.AccessToken)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInsufficientScope)
	})

	t.Run("missing bearer token is unauthorized", func(t *testing.T) {
		_, err := client.ListClients(ctx, "")
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidToken)
	})

	t.Run("delete client", func(t *testing.T) {
		require.NoError(t, client.DeleteClient(ctx, adminToken, createdID))

		list, err := client.ListClients(ctx, adminToken)
		require.NoError(t, err)
		require.Len(t, list.Clients, 1)

		err = client.DeleteClient(ctx, adminToken, createdID)
		require.Error(t, err, "double delete should 404")
	})
}
