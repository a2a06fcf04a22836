package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
	"github.com/lanewaylabs/gatehouse/internal/auth/store"
	"github.com/lanewaylabs/gatehouse/internal/auth/store/drivers/sqlite"
	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/lanewaylabs/gatehouse/pkg/idx"
	"github.com/lanewaylabs/gatehouse/pkg/jwtx"
)

const testIssuer = "https://auth.test"

type testEnv struct {
	store     store.Store
	verifier  jwtx.Verifier
	clients   *ClientService
	tokens    *TokenService
	authorize *AuthorizeService
	resource  *ResourceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	pemKey, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerRS256("test-key", pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierRS256(keys, testIssuer)

	sealer, err := cryptox.NewSealer("test-refresh-sealer-secret")
	require.NoError(t, err)

	clients := &ClientService{Store: st}
	tokens := &TokenService{
		Clients:    clients,
		Store:      st,
		Signer:     signer,
		Sealer:     sealer,
		Issuer:     testIssuer,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		PasswordGates: PasswordGrantGates{
			Storefront: true,
			BackOffice: true,
		},
	}

	return &testEnv{
		store:     st,
		verifier:  verifier,
		clients:   clients,
		tokens:    tokens,
		authorize: &AuthorizeService{Store: st, Clients: clients, CodeTTL: jwtx.DefaultAuthCodeTTL},
		resource:  &ResourceService{Verifier: verifier, Store: st},
	}
}

func (e *testEnv) seedUser(t *testing.T, frontend domain.Frontend, username, password string) domain.User {
	t.Helper()

	hash, err := cryptox.HashSecret(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Frontend:     frontend,
		Active:       true,
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), u))
	return u
}

// seedConfidentialClient registers a confidential client and returns it with
// the plaintext secret.
func (e *testEnv) seedConfidentialClient(t *testing.T, mutate func(*domain.Client)) (domain.Client, string) {
	t.Helper()

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	hash, err := cryptox.HashSecret(secret)
	require.NoError(t, err)

	c := domain.Client{
		ID:           idx.New().String(),
		Name:         "test-confidential",
		SecretHash:   hash,
		Scopes:       []string{"orders:read", "orders:write"},
		RedirectURIs: []string{"https://app.test/callback"},
		Active:       true,
		Confidential: true,
		Frontend:     domain.FrontendStorefront,
	}
	if mutate != nil {
		mutate(&c)
	}
	require.NoError(t, e.store.Clients().CreateClient(context.Background(), c))
	return c, secret
}

func (e *testEnv) seedPublicClient(t *testing.T, mutate func(*domain.Client)) domain.Client {
	t.Helper()

	c := domain.Client{
		ID:           idx.New().String(),
		Name:         "test-public",
		Scopes:       []string{"orders:read"},
		RedirectURIs: []string{"https://spa.test/callback"},
		Active:       true,
		Confidential: false,
		Frontend:     domain.FrontendStorefront,
	}
	if mutate != nil {
		mutate(&c)
	}
	require.NoError(t, e.store.Clients().CreateClient(context.Background(), c))
	return c
}

// seedAuthCode plants a ready-to-exchange authorization code and returns the
// raw code value.
func (e *testEnv) seedAuthCode(t *testing.T, mutate func(*domain.AuthorizationCode)) string {
	t.Helper()

	code, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)

	record := domain.AuthorizationCode{
		ID:        idx.New().String(),
		CodeHash:  cryptox.FingerprintToken(code),
		Scopes:    []string{"orders:read"},
		ExpiresAt: time.Now().UTC().Add(5 * time.Minute),
	}
	if mutate != nil {
		mutate(&record)
	}
	require.NoError(t, e.store.AuthorizationCodes().CreateAuthorizationCode(context.Background(), record))
	return code
}
