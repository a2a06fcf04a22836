package store

import (
	"context"
	"errors"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable. We can change having the sub-repos as methods later but we do it
// now so we can have more control and actively stop people from accidently
// doing transactions within transactions.
type Store interface {
	Users() Users
	Clients() Clients
	AccessTokens() AccessTokens
	RefreshTokens() RefreshTokens
	AuthorizationCodes() AuthorizationCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh rotation).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername resolves a username within a realm, used during
	// password grant.
	GetUserByUsername(ctx context.Context, frontend domain.Frontend, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// SetUserActive flips the active flag and bumps updated_at.
	SetUserActive(ctx context.Context, userID string, active bool) error

	// DeleteUser removes the user row.
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Clients interface {
	// GetClientByID fetches a client for grant processing.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient inserts a new client (id is ULID; secret_hash may be empty for public clients).
	CreateClient(ctx context.Context, c domain.Client) error

	UpdateClientSecretHash(ctx context.Context, clientID, secretHash string) error

	// SetClientActive flips the active flag and bumps updated_at.
	SetClientActive(ctx context.Context, clientID string, active bool) error

	// DeleteClient removes the client row; token rows cascade per schema.
	DeleteClient(ctx context.Context, clientID string) error

	// DeleteClientsWithMissingOwner removes clients whose owner entity is a
	// user row that no longer exists (housekeeping).
	DeleteClientsWithMissingOwner(ctx context.Context) error

	// IsEmpty returns true if there are no clients.
	IsEmpty(ctx context.Context) (bool, error)
}

type AccessTokens interface {
	// CreateAccessToken stores a new access token record.
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error

	// GetAccessTokenByID fetches a token row by its opaque id (the JWT jti).
	GetAccessTokenByID(ctx context.Context, id string) (domain.AccessToken, error)

	// RevokeAccessToken flips revoked=1. Revocation is one-way.
	RevokeAccessToken(ctx context.Context, id string) error

	// RevokeAccessTokensByAuthCode revokes every access token minted from
	// the given authorization code (replay containment).
	RevokeAccessTokensByAuthCode(ctx context.Context, authCodeID string) error

	// DeleteDefunctAccessTokens removes expired access tokens that no
	// unexpired refresh token still references (housekeeping).
	DeleteDefunctAccessTokens(ctx context.Context) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByID fetches a token row by its opaque id.
	GetRefreshTokenByID(ctx context.Context, id string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1. Revocation is one-way.
	RevokeRefreshToken(ctx context.Context, id string) error

	// RevokeRefreshTokensByAuthCode revokes every refresh token whose access
	// token was minted from the given authorization code.
	RevokeRefreshTokensByAuthCode(ctx context.Context, authCodeID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type AuthorizationCodes interface {
	// CreateAuthorizationCode stores a freshly minted authorization code.
	CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error

	// GetAuthorizationCodeByHash fetches a code by its hashed value when redeeming.
	GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// ConsumeAuthorizationCode marks the code used if and only if it is
	// still unused and unrevoked. It returns ErrNotFound when another
	// exchange already consumed it, so concurrent redeems get exactly one
	// winner.
	ConsumeAuthorizationCode(ctx context.Context, id string) error

	// RevokeAuthorizationCode flips revoked=1.
	RevokeAuthorizationCode(ctx context.Context, id string) error

	// DeleteExpiredAuthorizationCodes removes any codes that are no longer valid.
	DeleteExpiredAuthorizationCodes(ctx context.Context) error
}
