package cryptox_test

import (
	"strings"
	"testing"

	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifySecret(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.HashSecret("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, cryptox.VerifySecret("correct horse battery staple", hash))
	require.ErrorIs(t, cryptox.VerifySecret("wrong", hash), cryptox.ErrSecretMismatch)
}

func TestHashSecretProducesUniqueSalts(t *testing.T) {
	t.Parallel()

	a, err := cryptox.HashSecret("same-input")
	require.NoError(t, err)
	b, err := cryptox.HashSecret("same-input")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, cryptox.VerifySecret("same-input", a))
	require.NoError(t, cryptox.VerifySecret("same-input", b))
}

func TestVerifySecretRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=banana$c2FsdA$aGFzaA",
	}

	for _, encoded := range cases {
		err := cryptox.VerifySecret("secret", encoded)
		require.Error(t, err)
		require.NotErrorIs(t, err, cryptox.ErrSecretMismatch)
	}
}
