package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
	"github.com/lanewaylabs/gatehouse/internal/auth/store"
	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/lanewaylabs/gatehouse/pkg/jwtx"
	"github.com/lanewaylabs/gatehouse/pkg/slogx"
)

var (
	ErrInvalidClient       = errors.New("invalid_client")
	ErrInvalidGrant        = errors.New("invalid_grant")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidScope        = errors.New("invalid_scope")
	ErrInvalidRequest      = errors.New("invalid_request")
	ErrUnauthorizedClient  = errors.New("unauthorized_client")
	ErrUnsupportedResponse = errors.New("unsupported_response_type")
	ErrAccessDenied        = errors.New("access_denied")
	ErrUnauthorized        = errors.New("unauthorized")
)

// GrantEvent describes the outcome of one token-endpoint exchange. Err is
// nil on success.
type GrantEvent struct {
	GrantType      string
	ClientID       string
	UserIdentifier string
	Scopes         []string
	Err            error
}

// GrantObserver is a side-effect-only callback invoked after every exchange,
// in registration order. Observers must never mutate the response.
type GrantObserver func(ctx context.Context, ev GrantEvent)

// PasswordGrantGates enables the password grant per identity realm. A
// disabled realm fails with invalid_credentials before credentials are even
// looked at.
type PasswordGrantGates struct {
	Storefront bool
	BackOffice bool
}

func (g PasswordGrantGates) enabled(f domain.Frontend) bool {
	switch f {
	case domain.FrontendStorefront:
		return g.Storefront
	case domain.FrontendBackOffice:
		return g.BackOffice
	default:
		return false
	}
}

type TokenService struct {
	Clients *ClientService
	Store   store.Store
	Signer  jwtx.Signer
	Sealer  *cryptox.Sealer

	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	PasswordGates PasswordGrantGates

	// Observers run after each exchange, in order.
	Observers []GrantObserver
}

// refreshBlob is the plaintext inside a sealed refresh token. The client
// only ever sees the AES-GCM ciphertext.
type refreshBlob struct {
	RTI string `json:"rti"` // refresh token row id
	ATI string `json:"ati"` // access token row id
	Exp int64  `json:"exp"` // epoch seconds
}

// ExchangeAuthorizationCode implements the OAuth2 authorization_code grant.
//
// Confidential clients authenticate with their secret; public clients must
// instead present a PKCE verifier matching the challenge stored with the
// code. Consumption of the code is atomic, and replay of a consumed code
// revokes every token that was issued from it.
func (s *TokenService) ExchangeAuthorizationCode(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI, codeVerifier string,
) (*domain.TokenPair, error) {
	pair, user, err := s.exchangeAuthorizationCode(ctx, clientID, clientSecret, code, redirectURI, codeVerifier)
	s.notify(ctx, GrantEvent{
		GrantType:      domain.GrantAuthorizationCode,
		ClientID:       clientID,
		UserIdentifier: user,
		Scopes:         pairScopes(pair),
		Err:            err,
	})
	return pair, err
}

func (s *TokenService) exchangeAuthorizationCode(
	ctx context.Context,
	clientID, clientSecret, code, redirectURI, codeVerifier string,
) (*domain.TokenPair, string, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	client, err := s.Clients.AuthenticateClient(ctx, clientID, clientSecret, domain.GrantAuthorizationCode)
	if err != nil {
		return nil, "", err
	}

	code = strings.TrimSpace(code)
	redirectURI = strings.TrimSpace(redirectURI)
	codeVerifier = strings.TrimSpace(codeVerifier)
	if code == "" || redirectURI == "" {
		return nil, "", ErrInvalidRequest
	}

	codeHash := cryptox.FingerprintToken(code)

	authCode, err := s.Store.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, codeHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidGrant
		}
		return nil, "", err
	}

	if authCode.ClientID != client.ID {
		return nil, "", ErrInvalidGrant
	}

	// Replay of an already-consumed code is a protocol violation: contain
	// it by revoking everything minted from that code.
	if authCode.UsedAt != nil || authCode.Revoked {
		l.Warn("authorization code replay detected",
			"client_id", client.ID, "code_id", authCode.ID)
		return nil, "", s.containCodeReplay(ctx, authCode.ID)
	}

	if now.After(authCode.ExpiresAt) {
		return nil, "", ErrInvalidGrant
	}
	if authCode.RedirectURI != redirectURI {
		return nil, "", ErrInvalidGrant
	}

	if err := s.checkPKCE(client, authCode, codeVerifier); err != nil {
		return nil, "", err
	}

	var result *domain.TokenPair

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Conditional update: concurrent duplicate exchanges get one winner.
		if err := tx.AuthorizationCodes().ConsumeAuthorizationCode(ctx, authCode.ID); err != nil {
			return err
		}

		pair, err := s.issueTokens(ctx, tx, client, issueParams{
			UserIdentifier: authCode.UserIdentifier,
			Scopes:         authCode.Scopes,
			AuthCodeID:     authCode.ID,
			WithRefresh:    true,
			Now:            now,
		})
		if err != nil {
			return err
		}

		result = pair
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the consumption race: treat exactly like a replay.
			l.Warn("authorization code lost consumption race",
				"client_id", client.ID, "code_id", authCode.ID)
			return nil, "", s.containCodeReplay(ctx, authCode.ID)
		}
		return nil, "", err
	}

	return result, authCode.UserIdentifier, nil
}

// containCodeReplay revokes the full token lineage of a replayed code and
// returns the invalid_grant the replaying caller gets. It runs in its own
// transaction: the revocations must survive the rollback of the exchange
// that detected the replay.
func (s *TokenService) containCodeReplay(ctx context.Context, authCodeID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.AccessTokens().RevokeAccessTokensByAuthCode(ctx, authCodeID); err != nil {
			return err
		}
		if err := tx.RefreshTokens().RevokeRefreshTokensByAuthCode(ctx, authCodeID); err != nil {
			return err
		}
		if err := tx.AuthorizationCodes().RevokeAuthorizationCode(ctx, authCodeID); err != nil &&
			!errors.Is(err, store.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	return ErrInvalidGrant
}

// checkPKCE enforces the per-client PKCE rules: public clients must always
// present a valid verifier, confidential clients only when a challenge was
// stored with the code.
func (s *TokenService) checkPKCE(client domain.Client, authCode domain.AuthorizationCode, verifier string) error {
	if !client.Confidential {
		if authCode.CodeChallenge == "" || verifier == "" {
			return ErrInvalidGrant
		}
	}
	if authCode.CodeChallenge == "" {
		return nil
	}

	err := cryptox.ValidatePKCE(
		authCode.CodeChallengeMethod,
		authCode.CodeChallenge,
		verifier,
		client.PlainTextPKCEAllowed,
	)
	if err != nil {
		return ErrInvalidGrant
	}
	return nil
}

// ExchangeClientCredentials implements the OAuth2 client_credentials grant.
//
// The client authenticates as itself; the subject of the issued token is the
// client's configured owner entity. No refresh token is issued since the
// client can always re-authenticate.
func (s *TokenService) ExchangeClientCredentials(
	ctx context.Context,
	clientID, clientSecret string,
	requestedScopes []string,
) (*domain.TokenPair, error) {
	pair, err := s.exchangeClientCredentials(ctx, clientID, clientSecret, requestedScopes)
	s.notify(ctx, GrantEvent{
		GrantType: domain.GrantClientCredentials,
		ClientID:  clientID,
		Scopes:    pairScopes(pair),
		Err:       err,
	})
	return pair, err
}

func (s *TokenService) exchangeClientCredentials(
	ctx context.Context,
	clientID, clientSecret string,
	requestedScopes []string,
) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	client, err := s.Clients.AuthenticateClient(ctx, clientID, clientSecret, domain.GrantClientCredentials)
	if err != nil {
		return nil, err
	}

	// Only confidential clients can authenticate as themselves.
	if !client.Confidential {
		l.Warn("client_credentials attempted by public client", "client_id", clientID)
		return nil, ErrInvalidClient
	}

	if client.OwnerEntityID == "" {
		l.Warn("client_credentials attempted without owner entity", "client_id", clientID)
		return nil, ErrUnauthorizedClient
	}

	scopes, err := effectiveScopes(requestedScopes, client)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, s.Store, client, issueParams{
		UserIdentifier: client.OwnerEntityID,
		Scopes:         scopes,
		WithRefresh:    false,
		Now:            now,
	})
}

// ExchangePassword implements the resource owner password grant.
//
// The realm feature gate is checked before any credential work, and a
// disabled gate fails identically to bad credentials.
func (s *TokenService) ExchangePassword(
	ctx context.Context,
	clientID, clientSecret, username, password string,
	requestedScopes []string,
) (*domain.TokenPair, error) {
	pair, user, err := s.exchangePassword(ctx, clientID, clientSecret, username, password, requestedScopes)
	s.notify(ctx, GrantEvent{
		GrantType:      domain.GrantPassword,
		ClientID:       clientID,
		UserIdentifier: user,
		Scopes:         pairScopes(pair),
		Err:            err,
	})
	return pair, err
}

func (s *TokenService) exchangePassword(
	ctx context.Context,
	clientID, clientSecret, username, password string,
	requestedScopes []string,
) (*domain.TokenPair, string, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	client, err := s.Clients.AuthenticateClient(ctx, clientID, clientSecret, domain.GrantPassword)
	if err != nil {
		return nil, "", err
	}

	// Gate first. A disabled realm must not reach credential validation.
	if !s.PasswordGates.enabled(client.Frontend) {
		l.Info("password grant disabled for realm",
			"client_id", clientID, "frontend", string(client.Frontend))
		return nil, "", ErrInvalidCredentials
	}

	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, client.Frontend, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.Active {
		return nil, "", ErrInvalidCredentials
	}
	if err := cryptox.VerifySecret(password, user.PasswordHash); err != nil {
		l.Info("password verification failed", "client_id", clientID, "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	scopes, err := effectiveScopes(requestedScopes, client)
	if err != nil {
		return nil, "", err
	}

	var pair *domain.TokenPair
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		pair, err = s.issueTokens(ctx, tx, client, issueParams{
			UserIdentifier: user.ID,
			Scopes:         scopes,
			WithRefresh:    true,
			Now:            now,
		})
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return pair, user.ID, nil
}

// ExchangeRefreshToken implements the OAuth2 refresh_token grant.
//
// Rotation is mandatory: the old access/refresh pair is revoked and a new
// pair issued in one transaction, so a leaked refresh token dies the first
// time its legitimate holder rotates.
func (s *TokenService) ExchangeRefreshToken(
	ctx context.Context,
	clientID, clientSecret, sealedRefresh string,
) (*domain.TokenPair, error) {
	pair, user, err := s.exchangeRefreshToken(ctx, clientID, clientSecret, sealedRefresh)
	s.notify(ctx, GrantEvent{
		GrantType:      domain.GrantRefreshToken,
		ClientID:       clientID,
		UserIdentifier: user,
		Scopes:         pairScopes(pair),
		Err:            err,
	})
	return pair, err
}

func (s *TokenService) exchangeRefreshToken(
	ctx context.Context,
	clientID, clientSecret, sealedRefresh string,
) (*domain.TokenPair, string, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	client, err := s.Clients.AuthenticateClient(ctx, clientID, clientSecret, domain.GrantRefreshToken)
	if err != nil {
		return nil, "", err
	}

	blob, err := s.openRefresh(sealedRefresh, now)
	if err != nil {
		return nil, "", err
	}

	var (
		result *domain.TokenPair
		userID string
	)

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByID(ctx, blob.RTI)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}
		if rt.Revoked || now.After(rt.ExpiresAt) {
			l.Info("rotated or expired refresh token presented",
				"client_id", clientID, "refresh_id", rt.ID)
			return ErrInvalidGrant
		}
		if rt.AccessTokenID != blob.ATI {
			return ErrInvalidGrant
		}

		at, err := tx.AccessTokens().GetAccessTokenByID(ctx, rt.AccessTokenID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidGrant
			}
			return err
		}

		// The lineage must belong to the client doing the refresh.
		if at.ClientID != client.ID {
			return ErrInvalidGrant
		}

		if err := tx.AccessTokens().RevokeAccessToken(ctx, at.ID); err != nil {
			return err
		}
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, rt.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Lost a concurrent rotation; the winner already revoked it.
				l.Warn("refresh token lost rotation race",
					"client_id", clientID, "refresh_id", rt.ID)
				return ErrInvalidGrant
			}
			return err
		}

		userID = at.UserIdentifier

		pair, err := s.issueTokens(ctx, tx, client, issueParams{
			UserIdentifier: at.UserIdentifier,
			Scopes:         at.Scopes,
			AuthCodeID:     at.AuthCodeID, // keep the lineage for replay containment
			WithRefresh:    true,
			Now:            now,
		})
		if err != nil {
			return err
		}

		result = pair
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return result, userID, nil
}

// Revoke implements RFC 7009 revocation for both token kinds. Per the RFC,
// a token that can't be resolved is not an error: the desired end state
// (token unusable) already holds.
func (s *TokenService) Revoke(ctx context.Context, clientID, clientSecret, token string) error {
	l := slogx.FromContext(ctx)

	client, err := s.Clients.FindActiveClient(ctx, clientID)
	if err != nil {
		return err
	}
	if client.Confidential {
		if clientSecret == "" || cryptox.VerifySecret(clientSecret, client.SecretHash) != nil {
			return ErrInvalidClient
		}
	}

	// Refresh tokens are sealed blobs; try that shape first.
	if blob, err := s.openRefresh(token, time.Now().UTC()); err == nil {
		return s.revokeRefreshLineage(ctx, client, blob)
	}

	// Otherwise treat it as an access-token JWT and revoke by jti.
	claims := jwtx.Claims{}
	if err := json.Unmarshal(unverifiedClaims(token), &claims); err != nil || claims.ID == "" {
		return nil // unknown token shape, already as good as revoked
	}

	at, err := s.Store.AccessTokens().GetAccessTokenByID(ctx, claims.ID)
	if err != nil {
		return nil
	}
	if at.ClientID != client.ID {
		// Not this client's token; silently ignore per RFC 7009.
		return nil
	}

	if err := s.Store.AccessTokens().RevokeAccessToken(ctx, at.ID); err != nil {
		return err
	}
	l.Info("access token revoked", "client_id", client.ID, "token_id", at.ID)
	return nil
}

func (s *TokenService) revokeRefreshLineage(ctx context.Context, client domain.Client, blob refreshBlob) error {
	l := slogx.FromContext(ctx)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByID(ctx, blob.RTI)
		if err != nil {
			return nil // already gone
		}

		at, err := tx.AccessTokens().GetAccessTokenByID(ctx, rt.AccessTokenID)
		if err == nil && at.ClientID != client.ID {
			return nil
		}

		// A token that is already revoked is the end state the caller wants.
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, rt.ID); err != nil &&
			!errors.Is(err, store.ErrNotFound) {
			return err
		}
		// Revoking a refresh token takes its access token with it.
		if err := tx.AccessTokens().RevokeAccessToken(ctx, rt.AccessTokenID); err != nil &&
			!errors.Is(err, store.ErrNotFound) {
			return err
		}

		l.Info("refresh token revoked", "client_id", client.ID, "refresh_id", rt.ID)
		return nil
	})
}

// openRefresh decrypts and validates a sealed refresh token blob.
func (s *TokenService) openRefresh(sealed string, now time.Time) (refreshBlob, error) {
	plaintext, err := s.Sealer.Open(sealed)
	if err != nil {
		return refreshBlob{}, ErrInvalidGrant
	}

	var blob refreshBlob
	if err := json.Unmarshal(plaintext, &blob); err != nil {
		return refreshBlob{}, ErrInvalidGrant
	}
	if blob.RTI == "" || blob.ATI == "" {
		return refreshBlob{}, ErrInvalidGrant
	}
	if now.Unix() >= blob.Exp {
		return refreshBlob{}, ErrInvalidGrant
	}
	return blob, nil
}

type issueParams struct {
	UserIdentifier string
	Scopes         []string
	AuthCodeID     string
	WithRefresh    bool
	Now            time.Time
}

// issueTokens persists the token rows and produces the wire pair: a signed
// JWT whose jti is the access-token row id, plus (optionally) a sealed
// refresh blob. It accepts either the root store or a Tx.
func (s *TokenService) issueTokens(
	ctx context.Context,
	st store.Store,
	client domain.Client,
	p issueParams,
) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	accessID, err := cryptox.NewOpaqueID()
	if err != nil {
		return nil, err
	}

	at := domain.AccessToken{
		ID:             accessID,
		ClientID:       client.ID,
		UserIdentifier: p.UserIdentifier,
		Scopes:         p.Scopes,
		AuthCodeID:     p.AuthCodeID,
		ExpiresAt:      p.Now.Add(s.AccessTTL),
	}
	if err := st.AccessTokens().CreateAccessToken(ctx, at); err != nil {
		return nil, err
	}

	claims := jwtx.NewAccessClaims(
		at.ID,
		p.UserIdentifier,
		client.ID,
		p.Scopes,
		s.AccessTTL,
		s.Issuer,
		p.Now,
	)
	signed, err := s.Signer.Sign(claims)
	if err != nil {
		l.Error("failed to sign access token", "error", err)
		return nil, err
	}

	pair := &domain.TokenPair{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   s.AccessTTL,
		Scope:       strings.Join(p.Scopes, " "),
	}

	if p.WithRefresh {
		refreshID, err := cryptox.NewOpaqueID()
		if err != nil {
			return nil, err
		}

		rt := domain.RefreshToken{
			ID:            refreshID,
			AccessTokenID: at.ID,
			ExpiresAt:     p.Now.Add(s.RefreshTTL),
		}
		if err := st.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
			return nil, err
		}

		blob, err := json.Marshal(refreshBlob{
			RTI: rt.ID,
			ATI: at.ID,
			Exp: rt.ExpiresAt.Unix(),
		})
		if err != nil {
			return nil, err
		}

		sealed, err := s.Sealer.Seal(blob)
		if err != nil {
			l.Error("failed to seal refresh token", "error", err)
			return nil, err
		}
		pair.RefreshToken = sealed
	}

	return pair, nil
}

// effectiveScopes narrows the requested scopes to what the client is
// registered for. No request means the client's full registered set.
func effectiveScopes(requested []string, client domain.Client) ([]string, error) {
	if len(requested) == 0 {
		return client.Scopes, nil
	}

	requested = dedupe(requested)
	if !client.AllowsScopes(requested) {
		return nil, ErrInvalidScope
	}
	return requested, nil
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// unverifiedClaims extracts the payload JSON of a compact JWT without
// checking the signature. Fine for revocation: the jti is only ever matched
// against rows the presenting client already owns.
func unverifiedClaims(token string) []byte {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}
	return payload
}

func pairScopes(pair *domain.TokenPair) []string {
	if pair == nil {
		return nil
	}
	return strings.Fields(pair.Scope)
}

func (s *TokenService) notify(ctx context.Context, ev GrantEvent) {
	for _, observer := range s.Observers {
		observer(ctx, ev)
	}
}
