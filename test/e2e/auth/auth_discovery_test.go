package auth_test

import (
	"context"
	"testing"

	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestDiscoveryEndpoints(t *testing.T) {
	baseURL, cleanup := setupGatehouseContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	ctx := context.Background()

	t.Run("server metadata", func(t *testing.T) {
		meta, err := client.GetMetadata(ctx)
		require.NoError(t, err)
		require.Equal(t, "http://gatehouse.test", meta.Issuer)
		require.Equal(t, []string{"authorization_code", "refresh_token"}, meta.GrantTypesSupported)
		require.Equal(t, []string{"code"}, meta.ResponseTypesSupported)
		require.Equal(t, []string{"S256"}, meta.CodeChallengeMethodsSupported)
	})

	t.Run("jwks publishes the signing key", func(t *testing.T) {
		jwks, err := client.GetJWKS(ctx)
		require.NoError(t, err)
		require.Len(t, jwks.Keys, 1)
		require.Equal(t, "gatehouse-test-key-001", jwks.Keys[0].Kid)
		require.Equal(t, "RS256", jwks.Keys[0].Alg)
		require.NotEmpty(t, jwks.Keys[0].N)
		require.NotEmpty(t, jwks.Keys[0].E)
	})

	t.Run("health endpoints", func(t *testing.T) {
		require.NoError(t, client.Livez(ctx))
		require.NoError(t, client.Readyz(ctx))
	})
}
