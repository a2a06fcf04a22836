package jwtx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/lanewaylabs/gatehouse/pkg/jwtx"
)

func opaqueID(t *testing.T) string {
	t.Helper()

	id, err := cryptox.NewOpaqueID()
	require.NoError(t, err)
	return id
}

func newTestSigner(t *testing.T, kid string) *jwtx.RS256Signer {
	t.Helper()

	pemKey, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerRS256(kid, pemKey)
	require.NoError(t, err)
	return signer
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "test-key-1")

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	verifier := jwtx.NewVerifierRS256(keys, "https://auth.example.com")

	now := time.Now().UTC().Truncate(time.Second)
	claims := jwtx.NewAccessClaims(
		opaqueID(t),
		"user-123",
		"client-abc",
		[]string{"orders:read", "orders:write"},
		time.Hour,
		"https://auth.example.com",
		now,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, claims.ID, got.ID)
	assert.Equal(t, "user-123", got.Subject)
	assert.Equal(t, "client-abc", got.ClientID())
	assert.Equal(t, []string{"orders:read", "orders:write"}, got.Scopes)
	assert.Equal(t, "https://auth.example.com", got.Issuer)

	// exp - iat must be exactly the requested TTL
	assert.Equal(t, time.Hour, got.ExpiresAt.Sub(got.IssuedAt.Time))
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "test-key-exp")

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	verifier := jwtx.NewVerifierRS256(keys, "")

	claims := jwtx.NewAccessClaims(
		opaqueID(t),
		"user-123",
		"client-abc",
		nil,
		time.Minute,
		"",
		time.Now().UTC().Add(-2*time.Minute),
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "test-key-iss")

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	verifier := jwtx.NewVerifierRS256(keys, "https://auth.example.com")

	claims := jwtx.NewAccessClaims(
		opaqueID(t), "user-123", "client-abc", nil,
		time.Hour, "https://evil.example.com", time.Now().UTC(),
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyRejectsUnknownKID(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "known-key")
	other := newTestSigner(t, "rogue-key")

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	verifier := jwtx.NewVerifierRS256(keys, "")

	claims := jwtx.NewAccessClaims(
		opaqueID(t), "user-123", "client-abc", nil,
		time.Hour, "", time.Now().UTC(),
	)

	token, err := other.Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsTampered(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "test-key-tamper")

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	verifier := jwtx.NewVerifierRS256(keys, "")

	claims := jwtx.NewAccessClaims(
		opaqueID(t), "user-123", "client-abc", nil,
		time.Hour, "", time.Now().UTC(),
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = verifier.Verify(tampered)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestKeySetPublicJWKS(t *testing.T) {
	t.Parallel()

	keys := jwtx.NewKeySet()
	assert.False(t, keys.IsReady())

	signer := newTestSigner(t, "jwks-key")
	require.NoError(t, keys.AddSigner(signer))

	assert.True(t, keys.IsReady())

	jwks := keys.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	assert.Equal(t, "RSA", jwks.Keys[0].Kty)
	assert.Equal(t, "RS256", jwks.Keys[0].Alg)
	assert.Equal(t, "jwks-key", jwks.Keys[0].Kid)
	assert.NotEmpty(t, jwks.Keys[0].N)
	assert.NotEmpty(t, jwks.Keys[0].E)
}

func TestClaimsValidateAudience(t *testing.T) {
	t.Parallel()

	claims := jwtx.NewAccessClaims(
		opaqueID(t), "user-123", "client-abc", nil,
		time.Hour, "", time.Now().UTC(),
	)

	assert.NoError(t, claims.ValidateAudience(nil))
	assert.NoError(t, claims.ValidateAudience([]string{"client-abc"}))
	assert.ErrorIs(t, claims.ValidateAudience([]string{"client-xyz"}), jwtx.ErrAudience)
}
