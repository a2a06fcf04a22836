package cryptox_test

import (
	"testing"

	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseRSAKey(t *testing.T) {
	t.Parallel()

	pemKey, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)
	require.Contains(t, string(pemKey), "RSA PRIVATE KEY")

	priv, err := cryptox.ParseRSAPrivateKey(pemKey)
	require.NoError(t, err)

	pubPEM, err := cryptox.MarshalRSAPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	require.Contains(t, string(pubPEM), "PUBLIC KEY")

	pub, err := cryptox.ParseRSAPublicKey(pubPEM)
	require.NoError(t, err)
	require.Equal(t, priv.PublicKey.N, pub.N)
}

func TestGenerateRSAKeyRejectsWeakSizes(t *testing.T) {
	t.Parallel()

	_, err := cryptox.GenerateRSAKey(1024)
	require.Error(t, err)
}

func TestParseRSAKeysRejectGarbage(t *testing.T) {
	t.Parallel()

	_, err := cryptox.ParseRSAPrivateKey([]byte("not pem"))
	require.Error(t, err)

	_, err = cryptox.ParseRSAPublicKey([]byte("not pem"))
	require.Error(t, err)
}
