package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
	"github.com/lanewaylabs/gatehouse/internal/auth/store"
	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/lanewaylabs/gatehouse/pkg/idx"
	"github.com/lanewaylabs/gatehouse/pkg/slogx"
)

// AuthorizeService handles the authorization endpoint of the code flow:
// validating incoming authorization requests, authenticating resource
// owners, and minting single-use authorization codes.
type AuthorizeService struct {
	Store   store.Store
	Clients *ClientService

	// CodeTTL bounds how long an issued code stays exchangeable.
	CodeTTL time.Duration
}

// AuthorizeParams are the raw query parameters of an authorization request.
type AuthorizeParams struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               string // space-delimited
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizationRequest is a validated authorization request, ready to be
// approved or denied by the resource owner.
type AuthorizationRequest struct {
	Client              domain.Client
	RedirectURI         string
	Scopes              []string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string

	// SkipConsent is set for first-party clients that may be approved
	// without showing a consent prompt.
	SkipConsent bool
}

// Validate checks an authorization request against the client registration.
//
// An unregistered client or a redirect URI that doesn't match exactly must
// never be redirected to, so those fail with a nil request and the handler
// renders them directly. Failures past the redirect check return a partial
// request carrying the proven redirect URI and state alongside the error,
// so the handler can relay them to the client callback.
func (s *AuthorizeService) Validate(ctx context.Context, p AuthorizeParams) (*AuthorizationRequest, error) {
	l := slogx.FromContext(ctx)

	client, err := s.Clients.FindActiveClient(ctx, p.ClientID)
	if err != nil {
		return nil, err
	}

	p.RedirectURI = strings.TrimSpace(p.RedirectURI)
	if p.RedirectURI == "" || !client.AllowsRedirectURI(p.RedirectURI) {
		l.Info("authorization request with unregistered redirect uri",
			"client_id", client.ID, "redirect_uri", p.RedirectURI)
		return nil, ErrInvalidRequest
	}

	// The redirect URI is proven good past this point.
	redirectable := &AuthorizationRequest{
		Client:      client,
		RedirectURI: p.RedirectURI,
		State:       p.State,
	}

	if p.ResponseType != "code" {
		return redirectable, ErrUnsupportedResponse
	}

	if !client.AllowsGrant(domain.GrantAuthorizationCode) {
		return redirectable, ErrUnauthorizedClient
	}

	scopes := dedupe(strings.Fields(p.Scope))
	if len(scopes) == 0 {
		scopes = client.Scopes
	} else if !client.AllowsScopes(scopes) {
		return redirectable, ErrInvalidScope
	}

	challenge := strings.TrimSpace(p.CodeChallenge)
	method := strings.TrimSpace(p.CodeChallengeMethod)

	// Public clients have no secret to present at the token endpoint, so a
	// code challenge is their only proof of possession.
	if !client.Confidential && challenge == "" {
		return redirectable, ErrInvalidRequest
	}
	if challenge != "" {
		switch {
		case method == "" || strings.EqualFold(method, cryptox.PKCEMethodS256):
			method = cryptox.PKCEMethodS256
		case strings.EqualFold(method, cryptox.PKCEMethodPlain):
			if !client.PlainTextPKCEAllowed {
				return redirectable, ErrInvalidRequest
			}
			method = cryptox.PKCEMethodPlain
		default:
			return redirectable, ErrInvalidRequest
		}
	} else {
		method = ""
	}

	return &AuthorizationRequest{
		Client:              client,
		RedirectURI:         p.RedirectURI,
		Scopes:              scopes,
		State:               p.State,
		CodeChallenge:       challenge,
		CodeChallengeMethod: method,
		SkipConsent:         client.SkipAuthorizeClientAllowed,
	}, nil
}

// AuthenticateUser verifies the resource owner's credentials within the
// given realm. All failures collapse into ErrInvalidCredentials.
func (s *AuthorizeService) AuthenticateUser(
	ctx context.Context,
	frontend domain.Frontend,
	username, password string,
) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, frontend, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !user.Active {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := cryptox.VerifySecret(password, user.PasswordHash); err != nil {
		l.Info("user password verification failed",
			"frontend", string(frontend), "user_id", user.ID)
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Approve mints a single-use authorization code for an approved request.
// Only the SHA-256 fingerprint hits the database; the raw code goes back to
// the client through the redirect.
func (s *AuthorizeService) Approve(
	ctx context.Context,
	req *AuthorizationRequest,
	userID, visitorSessionID string,
) (string, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	code, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	authCode := domain.AuthorizationCode{
		ID:                  idx.New().String(),
		ClientID:            req.Client.ID,
		UserIdentifier:      userID,
		VisitorSessionID:    visitorSessionID,
		CodeHash:            cryptox.FingerprintToken(code),
		RedirectURI:         req.RedirectURI,
		Scopes:              req.Scopes,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		ExpiresAt:           now.Add(s.CodeTTL),
	}

	if err := s.Store.AuthorizationCodes().CreateAuthorizationCode(ctx, authCode); err != nil {
		return "", err
	}

	l.Info("authorization code issued",
		"client_id", req.Client.ID, "user_id", userID, "code_id", authCode.ID)
	return code, nil
}

// Deny records the resource owner's refusal. The handler relays the
// access_denied error to the client via redirect.
func (s *AuthorizeService) Deny(ctx context.Context, req *AuthorizationRequest) error {
	slogx.FromContext(ctx).Info("authorization request denied",
		"client_id", req.Client.ID)
	return ErrAccessDenied
}
