package domain

import "time"

// AuthorizationCode represents an OAuth 2.0 authorization code issuance.
// The code itself is stored only as a fingerprint.
type AuthorizationCode struct {
	ID       string
	ClientID string

	// UserIdentifier is the resource owner who approved the request.
	UserIdentifier string

	// VisitorSessionID optionally ties the approval to an anonymous visitor
	// session, carried alongside the user identifier rather than encoded
	// into it.
	VisitorSessionID string

	CodeHash    string // deterministic fingerprint (base64url SHA-256)
	RedirectURI string
	Scopes      []string

	CodeChallenge       string
	CodeChallengeMethod string

	ExpiresAt time.Time
	UsedAt    *time.Time
	Revoked   bool
	CreatedAt time.Time
}
