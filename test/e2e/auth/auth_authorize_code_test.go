package auth_test

import (
	"context"
	"testing"

	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

// TestAuthorizationCodeFlow walks the full front-channel flow for the
// bootstrap client: describe, authenticate, approve, exchange, introspect.
func TestAuthorizationCodeFlow(t *testing.T) {
	baseURL, cleanup := setupGatehouseContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	clientID, clientSecret, adminUserID := bootstrapService(t, client)

	verifier, err := cryptox.NewCodeVerifier()
	require.NoError(t, err)

	params := authsdk.AuthorizeParams{
		ClientID:            clientID,
		RedirectURI:         redirectURI,
		Scopes:              []string{"orders:read"},
		State:               "xyz-state",
		CodeChallenge:       cryptox.ChallengeS256(verifier),
		CodeChallengeMethod: "S256",
	}

	t.Run("describe", func(t *testing.T) {
		desc, err := client.DescribeAuthorize(ctx, params)
		require.NoError(t, err)
		require.Equal(t, clientID, desc.ClientID)
		require.Equal(t, clientName, desc.ClientName)
		require.Equal(t, []string{"orders:read"}, desc.Scopes)
	})

	t.Run("unknown client is rejected before redirect", func(t *testing.T) {
		bad := params
		bad.ClientID = "nonexistent"
		_, err := client.DescribeAuthorize(ctx, bad)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidClient)
	})

	t.Run("scope outside registration is relayed to the callback", func(t *testing.T) {
		bad := params
		bad.Scopes = []string{"admin:everything"}
		_, err := client.DescribeAuthorize(ctx, bad)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidScope)
	})

	t.Run("wrong password does not mint a code", func(t *testing.T) {
		_, _, err := client.Authorize(ctx, params, adminUsername, "nope")
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidCredentials)
	})

	code, state, err := client.Authorize(ctx, params, adminUsername, adminPassword)
	require.NoError(t, err)
	require.Equal(t, "xyz-state", state, "state must round-trip unchanged")

	tokens, err := client.AuthorizationCodeGrant(ctx, clientID, clientSecret, code, redirectURI, verifier)
	require.NoError(t, err)
	assertTokenResponse(t, tokens)
	require.NotEmpty(t, tokens.RefreshToken)
	require.Equal(t, "orders:read", tokens.Scope)

	info, err := client.GetTokenInfo(ctx, tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, adminUserID, info.UserID)
	require.Equal(t, []string{"orders:read"}, info.Scopes)

	t.Run("code replay revokes the issued tokens", func(t *testing.T) {
		_, err := client.AuthorizationCodeGrant(ctx, clientID, clientSecret, code, redirectURI, verifier)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidGrant)

		// The first exchange's tokens are dead too
		_, err = client.GetTokenInfo(ctx, tokens.AccessToken)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidToken)

		_, err = client.RefreshGrant(ctx, clientID, clientSecret, tokens.RefreshToken)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidGrant)
	})
}

// TestAuthorizationCodePublicClient covers the PKCE-only path for a public
// client created through the management API.
func TestAuthorizationCodePublicClient(t *testing.T) {
	baseURL, cleanup := setupGatehouseContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	adminToken, _, _ := adminAccessToken(t, client)

	created, err := client.CreateClient(ctx, adminToken, authsdk.CreateClientRequest{
		Name:         "spa-client",
		Confidential: false,
		Grants:       []string{"authorization_code", "refresh_token"},
		Scopes:       []string{"orders:read"},
		RedirectURIs: []string{redirectURI},
	})
	require.NoError(t, err)
	require.Empty(t, created.ClientSecret, "public clients have no secret")

	verifier, err := cryptox.NewCodeVerifier()
	require.NoError(t, err)

	params := authsdk.AuthorizeParams{
		ClientID:            created.ClientID,
		RedirectURI:         redirectURI,
		CodeChallenge:       cryptox.ChallengeS256(verifier),
		CodeChallengeMethod: "S256",
	}

	t.Run("public client without a challenge is rejected", func(t *testing.T) {
		bare := params
		bare.CodeChallenge = ""
		bare.CodeChallengeMethod = ""
		_, err := client.DescribeAuthorize(ctx, bare)
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidRequest)
	})

	code, _, err := client.Authorize(ctx, params, adminUsername, adminPassword)
	require.NoError(t, err)

	t.Run("wrong verifier fails the exchange", func(t *testing.T) {
		_, err := client.AuthorizationCodeGrant(ctx, created.ClientID, "", code, redirectURI, "not-the-verifier-but-long-enough-000000000")
		assertOAuth2Error(t, err, authsdk.ErrorCodeInvalidGrant)
	})

	tokens, err := client.AuthorizationCodeGrant(ctx, created.ClientID, "", code, redirectURI, verifier)
	require.NoError(t, err)
	assertTokenResponse(t, tokens)
}
