package domain

import "time"

// TokenPair is what the token endpoint returns: the short-lived access token
// (JWT) and, for user-facing grants, the opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until expiry
	Scope        string        `json:"scope,omitempty"`      // space-delimited
}

// AccessToken models the stored access token record. The ID doubles as the
// JWT "jti" claim, so the raw JWT never needs to be stored.
type AccessToken struct {
	ID       string // 80-char opaque identifier
	ClientID string

	// UserIdentifier is the resource owner the token acts for. Empty for
	// client_credentials tokens acting as the client's owner entity.
	UserIdentifier string

	Scopes []string

	// AuthCodeID links tokens minted from an authorization code back to it,
	// so replay of a consumed code can revoke the whole lineage. Empty for
	// other grants.
	AuthCodeID string

	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// RefreshToken models the stored refresh token record. The opaque value
// handed to the client is a sealed blob referencing this row; only the row
// id and linkage live in the DB.
type RefreshToken struct {
	ID            string // 80-char opaque identifier
	AccessTokenID string
	ExpiresAt     time.Time
	Revoked       bool
	CreatedAt     time.Time
}
