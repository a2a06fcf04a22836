package domain

import "time"

// Frontend names the realm a client (and its users) belongs to. Password
// grants are gated per realm by configuration.
type Frontend string

const (
	FrontendStorefront Frontend = "storefront"
	FrontendBackOffice Frontend = "back_office"
)

// Client is a registered OAuth2 client application.
type Client struct {
	ID         string
	Name       string
	SecretHash string // argon2 encoded, empty for public clients

	// Grants lists the grant types the client may use. Empty means every
	// grant type is allowed (legacy registrations).
	Grants []string

	// Scopes the client may request. Nil means unrestricted.
	Scopes []string

	// RedirectURIs registered for the authorization-code flow. Requested
	// redirect URIs must match one of these exactly.
	RedirectURIs []string

	Active       bool
	Confidential bool

	// PlainTextPKCEAllowed permits the "plain" code challenge method for
	// this client. S256 is always accepted.
	PlainTextPKCEAllowed bool

	// SkipAuthorizeClientAllowed marks first-party clients whose
	// authorization requests may be approved without a consent prompt.
	SkipAuthorizeClientAllowed bool

	Frontend Frontend

	// OwnerEntityClass/OwnerEntityID reference the entity the client acts
	// for in client_credentials exchanges (e.g. "user" + a user id).
	OwnerEntityClass string
	OwnerEntityID    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Grant type identifiers per RFC 6749.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantClientCredentials = "client_credentials"
	GrantPassword          = "password"
	GrantRefreshToken      = "refresh_token"
)

// AllGrants lists every grant type the server supports.
var AllGrants = []string{
	GrantAuthorizationCode,
	GrantClientCredentials,
	GrantPassword,
	GrantRefreshToken,
}

// AllowsGrant reports whether the client may use the given grant type.
// An empty Grants list allows everything.
func (c *Client) AllowsGrant(grant string) bool {
	if len(c.Grants) == 0 {
		return true
	}
	for _, g := range c.Grants {
		if g == grant {
			return true
		}
	}
	return false
}

// AllowsRedirectURI reports whether uri exactly matches a registered
// redirect URI.
func (c *Client) AllowsRedirectURI(uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// AllowsScopes reports whether every requested scope is within the client's
// registered scopes. A nil Scopes list is unrestricted.
func (c *Client) AllowsScopes(requested []string) bool {
	if c.Scopes == nil {
		return true
	}
	allowed := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		allowed[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := allowed[s]; !ok {
			return false
		}
	}
	return true
}
