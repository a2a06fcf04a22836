package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
	"github.com/lanewaylabs/gatehouse/internal/auth/store"
	"github.com/lanewaylabs/gatehouse/internal/auth/store/drivers/sqlite"
	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/lanewaylabs/gatehouse/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func opaqueID(t *testing.T) string {
	t.Helper()

	id, err := cryptox.NewOpaqueID()
	require.NoError(t, err)
	return id
}

func seedClient(t *testing.T, s store.Store, c domain.Client) domain.Client {
	t.Helper()

	if c.ID == "" {
		c.ID = idx.New().String()
	}
	if c.Frontend == "" {
		c.Frontend = domain.FrontendStorefront
	}
	require.NoError(t, s.Clients().CreateClient(context.Background(), c))
	return c
}

func TestClientRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := seedClient(t, s, domain.Client{
		Name:                 "storefront-web",
		SecretHash:           "$argon2id$...",
		Grants:               []string{domain.GrantAuthorizationCode, domain.GrantRefreshToken},
		Scopes:               []string{"orders:read"},
		RedirectURIs:         []string{"https://shop.example.com/cb"},
		Active:               true,
		Confidential:         true,
		PlainTextPKCEAllowed: true,
		OwnerEntityClass:     "user",
		OwnerEntityID:        "u-1",
	})

	got, err := s.Clients().GetClientByID(ctx, c.ID)
	require.NoError(t, err)

	require.Equal(t, c.Name, got.Name)
	require.Equal(t, c.SecretHash, got.SecretHash)
	require.Equal(t, c.Grants, got.Grants)
	require.Equal(t, []string{"orders:read"}, got.Scopes)
	require.Equal(t, c.RedirectURIs, got.RedirectURIs)
	require.True(t, got.Active)
	require.True(t, got.Confidential)
	require.True(t, got.PlainTextPKCEAllowed)
	require.Equal(t, "user", got.OwnerEntityClass)
	require.Equal(t, "u-1", got.OwnerEntityID)
}

func TestClientScopesNilMeansUnrestricted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	unrestricted := seedClient(t, s, domain.Client{Name: "open", Active: true})
	restricted := seedClient(t, s, domain.Client{Name: "closed", Active: true, Scopes: []string{}})

	got, err := s.Clients().GetClientByID(ctx, unrestricted.ID)
	require.NoError(t, err)
	require.Nil(t, got.Scopes)

	got, err = s.Clients().GetClientByID(ctx, restricted.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Scopes)
	require.Empty(t, got.Scopes)
}

func TestGetClientByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Clients().GetClientByID(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserLookupScopedToFrontend(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		PasswordHash: "$argon2id$...",
		Frontend:     domain.FrontendStorefront,
		Active:       true,
	}))

	_, err := s.Users().GetUserByUsername(ctx, domain.FrontendStorefront, "alice")
	require.NoError(t, err)

	_, err = s.Users().GetUserByUsername(ctx, domain.FrontendBackOffice, "alice")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func seedCode(t *testing.T, s store.Store, clientID string, expiresAt time.Time) domain.AuthorizationCode {
	t.Helper()

	code := domain.AuthorizationCode{
		ID:                  idx.New().String(),
		ClientID:            clientID,
		UserIdentifier:      "u-1",
		CodeHash:            cryptox.FingerprintToken(opaqueID(t)),
		RedirectURI:         "https://shop.example.com/cb",
		Scopes:              []string{"orders:read"},
		CodeChallenge:       "challenge",
		CodeChallengeMethod: cryptox.PKCEMethodS256,
		ExpiresAt:           expiresAt,
	}
	require.NoError(t, s.AuthorizationCodes().CreateAuthorizationCode(context.Background(), code))
	return code
}

func TestConsumeAuthorizationCodeOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s, domain.Client{Name: "c", Active: true})
	code := seedCode(t, s, client.ID, time.Now().UTC().Add(10*time.Minute))

	require.NoError(t, s.AuthorizationCodes().ConsumeAuthorizationCode(ctx, code.ID))

	// Second consume of the same code must lose.
	err := s.AuthorizationCodes().ConsumeAuthorizationCode(ctx, code.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, code.CodeHash)
	require.NoError(t, err)
	require.NotNil(t, got.UsedAt)
}

func TestConsumeAuthorizationCodeConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s, domain.Client{Name: "c", Active: true})
	code := seedCode(t, s, client.ID, time.Now().UTC().Add(10*time.Minute))

	const attempts = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.AuthorizationCodes().ConsumeAuthorizationCode(ctx, code.ID); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestRevokeRefreshTokenOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s, domain.Client{Name: "c", Active: true})

	at := domain.AccessToken{
		ID:        opaqueID(t),
		ClientID:  client.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, s.AccessTokens().CreateAccessToken(ctx, at))

	rt := domain.RefreshToken{
		ID:            opaqueID(t),
		AccessTokenID: at.ID,
		ExpiresAt:     time.Now().UTC().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, rt))

	require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, rt.ID))

	// Second revoke of the same token must lose.
	err := s.RefreshTokens().RevokeRefreshToken(ctx, rt.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.RefreshTokens().GetRefreshTokenByID(ctx, rt.ID)
	require.NoError(t, err)
	require.True(t, got.Revoked)
}

func TestRevokeTokensByAuthCode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s, domain.Client{Name: "c", Active: true})
	code := seedCode(t, s, client.ID, time.Now().UTC().Add(10*time.Minute))

	at := domain.AccessToken{
		ID:             opaqueID(t),
		ClientID:       client.ID,
		UserIdentifier: "u-1",
		AuthCodeID:     code.ID,
		ExpiresAt:      time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, s.AccessTokens().CreateAccessToken(ctx, at))

	rt := domain.RefreshToken{
		ID:            opaqueID(t),
		AccessTokenID: at.ID,
		ExpiresAt:     time.Now().UTC().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, rt))

	require.NoError(t, s.AccessTokens().RevokeAccessTokensByAuthCode(ctx, code.ID))
	require.NoError(t, s.RefreshTokens().RevokeRefreshTokensByAuthCode(ctx, code.ID))

	gotAT, err := s.AccessTokens().GetAccessTokenByID(ctx, at.ID)
	require.NoError(t, err)
	require.True(t, gotAT.Revoked)

	gotRT, err := s.RefreshTokens().GetRefreshTokenByID(ctx, rt.ID)
	require.NoError(t, err)
	require.True(t, gotRT.Revoked)
}

func TestDeleteDefunctAccessTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s, domain.Client{Name: "c", Active: true})
	past := time.Now().UTC().Add(-time.Hour)

	// Expired access token with a live refresh token must survive.
	kept := domain.AccessToken{
		ID:        opaqueID(t),
		ClientID:  client.ID,
		ExpiresAt: past,
	}
	require.NoError(t, s.AccessTokens().CreateAccessToken(ctx, kept))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:            opaqueID(t),
		AccessTokenID: kept.ID,
		ExpiresAt:     time.Now().UTC().Add(time.Hour),
	}))

	// Expired access token with no refresh token gets deleted.
	gone := domain.AccessToken{
		ID:        opaqueID(t),
		ClientID:  client.ID,
		ExpiresAt: past,
	}
	require.NoError(t, s.AccessTokens().CreateAccessToken(ctx, gone))

	require.NoError(t, s.AccessTokens().DeleteDefunctAccessTokens(ctx))

	_, err := s.AccessTokens().GetAccessTokenByID(ctx, kept.ID)
	require.NoError(t, err)

	_, err = s.AccessTokens().GetAccessTokenByID(ctx, gone.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteClientsWithMissingOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := domain.User{
		ID:           idx.New().String(),
		Username:     "owner",
		PasswordHash: "$argon2id$...",
		Frontend:     domain.FrontendBackOffice,
		Active:       true,
	}
	require.NoError(t, s.Users().CreateUser(ctx, user))

	owned := seedClient(t, s, domain.Client{
		Name: "owned", Active: true,
		OwnerEntityClass: "user", OwnerEntityID: user.ID,
	})
	orphaned := seedClient(t, s, domain.Client{
		Name: "orphaned", Active: true,
		OwnerEntityClass: "user", OwnerEntityID: idx.New().String(),
	})

	require.NoError(t, s.Clients().DeleteClientsWithMissingOwner(ctx))

	_, err := s.Clients().GetClientByID(ctx, owned.ID)
	require.NoError(t, err)

	_, err = s.Clients().GetClientByID(ctx, orphaned.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client := seedClient(t, s, domain.Client{Name: "c", Active: true})

	tokenID := opaqueID(t)
	boom := context.Canceled
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.AccessTokens().CreateAccessToken(ctx, domain.AccessToken{
			ID:        tokenID,
			ClientID:  client.ID,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing from the failed tx may be visible.
	_, err = s.AccessTokens().GetAccessTokenByID(ctx, tokenID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
