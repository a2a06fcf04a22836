package authsdk

import (
	"github.com/lanewaylabs/gatehouse/pkg/jwtx"
)

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// This is used internally for parsing HTTP error responses.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`

	// Hint carries optional extra detail from the server
	Hint string `json:"hint,omitempty"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the OAuth2 token endpoint response per RFC 6749.
// This is returned from the POST /v1/oauth2/token endpoint for every grant
// type. RefreshToken is absent for the client_credentials grant.
type TokenResponse struct {
	// AccessToken is the JWT access token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque refresh token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer" per OAuth2 spec
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// Scope is the space-delimited list of scopes granted to this token
	Scope string `json:"scope,omitempty"`
}

// TokenInfoResponse is returned from GET /v1/tokeninfo and echoes the
// resolved context of the presented bearer token.
type TokenInfoResponse struct {
	// TokenID is the opaque identifier of the access token (the JWT "jti")
	TokenID string `json:"token_id"`

	// ClientID is the client the token was issued to
	ClientID string `json:"client_id"`

	// UserID is the resource owner, empty for client_credentials tokens
	UserID string `json:"user_id,omitempty"`

	// Scopes granted to the token
	Scopes []string `json:"scopes,omitempty"`

	// ExpiresAt is the token expiry as epoch seconds
	ExpiresAt int64 `json:"expires_at"`
}

// ============================================================================
// Discovery Types
// ============================================================================

// ServerMetadata is the RFC 8414-shaped authorization server metadata served
// on /.well-known/oauth-authorization-server.
type ServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	RevocationEndpoint                string   `json:"revocation_endpoint"`
	JWKSURI                           string   `json:"jwks_uri"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
}

// JWKSResponse is the JSON Web Key Set served on /.well-known/jwks.json.
type JWKSResponse = jwtx.JWKS

// ============================================================================
// Authorization Endpoint Types
// ============================================================================

// AuthorizeDescription is returned from GET /v1/oauth2/authorize describing
// the validated pending request. Rendering a consent page from it is the
// caller's problem.
type AuthorizeDescription struct {
	// ClientID of the requesting client
	ClientID string `json:"client_id"`

	// ClientName is the registered display name of the client
	ClientName string `json:"client_name"`

	// RedirectURI the code will be delivered to
	RedirectURI string `json:"redirect_uri"`

	// Scopes being requested
	Scopes []string `json:"scopes,omitempty"`

	// SkipConsent is true when the client is trusted enough to approve
	// without showing a consent prompt
	SkipConsent bool `json:"skip_consent"`
}

// ============================================================================
// Client Management Types
// ============================================================================

// CreateClientRequest registers a new OAuth2 client via POST /v1/clients.
type CreateClientRequest struct {
	// Name is the display name of the client
	Name string `json:"name"`

	// Confidential clients get a generated secret; public clients do not
	Confidential bool `json:"confidential,omitempty"`

	// Grants the client may use; empty means every grant type
	Grants []string `json:"grants,omitempty"`

	// Scopes the client may request; omitted means unrestricted
	Scopes []string `json:"scopes,omitempty"`

	// RedirectURIs registered for the authorization-code flow
	RedirectURIs []string `json:"redirect_uris,omitempty"`

	// Frontend realm the client belongs to ("storefront" or "back_office")
	Frontend string `json:"frontend,omitempty"`

	// PlainTextPKCEAllowed permits the "plain" code challenge method
	PlainTextPKCEAllowed bool `json:"plain_text_pkce_allowed,omitempty"`

	// SkipAuthorizeClientAllowed marks first-party clients that skip consent
	SkipAuthorizeClientAllowed bool `json:"skip_authorize_client_allowed,omitempty"`

	// OwnerEntityClass and OwnerEntityID name the entity client_credentials
	// tokens act for
	OwnerEntityClass string `json:"owner_entity_class,omitempty"`
	OwnerEntityID    string `json:"owner_entity_id,omitempty"`
}

// CreateClientResponse carries the new client's identifier and, for
// confidential clients, the secret. The secret is only ever returned here.
type CreateClientResponse struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// ClientSummary is one entry of ListClientsResponse.
type ClientSummary struct {
	ClientID     string   `json:"client_id"`
	Name         string   `json:"name"`
	Confidential bool     `json:"confidential"`
	Active       bool     `json:"active"`
	Grants       []string `json:"grants,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
	Frontend     string   `json:"frontend"`
}

// ListClientsResponse is returned from GET /v1/clients.
type ListClientsResponse struct {
	Clients []ClientSummary `json:"clients"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthChecks reports the state of each critical dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is served on /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest contains the data needed to seed the service with its
// first confidential client and back-office user. The endpoint is guarded by
// a configured bootstrap token and refuses to run twice.
type BootstrapRequest struct {
	// Username for the initial back-office user (3-32 chars, alphanumeric with _ or -)
	Username string `json:"username"`

	// Password for the initial back-office user (8-128 chars)
	Password string `json:"password"`

	// ClientName is the name for the initial OAuth2 client (max 100 chars)
	ClientName string `json:"client_name"`

	// ClientScopes the client is allowed to request
	ClientScopes []string `json:"client_scopes,omitempty"`

	// ClientRedirectURIs registered for the authorization-code flow
	ClientRedirectURIs []string `json:"client_redirect_uris,omitempty"`
}

// BootstrapResponse contains the created identifiers. ClientSecret is only
// ever returned here, once.
type BootstrapResponse struct {
	UserID       string `json:"user_id"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}
