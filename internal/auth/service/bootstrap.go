package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
	"github.com/lanewaylabs/gatehouse/internal/auth/store"
	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/lanewaylabs/gatehouse/pkg/idx"
	"github.com/lanewaylabs/gatehouse/pkg/slogx"
)

var (
	ErrBootstrapAlready              = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized         = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapFailedToCreateUser   = errors.New("failed to create user")
	ErrBootstrapFailedToCreateClient = errors.New("failed to create client")
)

// BootstrapData is the caller-supplied seed for a fresh installation: one
// back-office user and one confidential client owned by that user.
type BootstrapData struct {
	Username string
	Password string

	ClientName         string
	ClientScopes       []string
	ClientRedirectURIs []string
}

type BootstrapService struct {
	Store store.Store
	Token string // Pre-configured bootstrap token
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	userEmpty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	clientEmpty, err := s.Store.Clients().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !userEmpty && !clientEmpty, nil
}

// Bootstrap seeds the first user and client. It returns the new user id,
// client id and the plaintext client secret, which is shown exactly once.
func (s *BootstrapService) Bootstrap(
	ctx context.Context,
	token string,
	req BootstrapData,
) (string, string, string, error) {
	l := slogx.FromContext(ctx)

	// 1. Check if already bootstrapped
	if bootstrapped, _ := s.IsBootstrapped(ctx); bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return "", "", "", ErrBootstrapAlready
	}

	// 2. Validate provided token
	if s.Token == "" || token != s.Token {
		l.Warn("unauthorized bootstrap attempt")
		return "", "", "", ErrBootstrapUnauthorized
	}

	if req.Username == "" || req.Password == "" || req.ClientName == "" {
		return "", "", "", errors.New("bootstrap requires username, password and client name")
	}

	// 3. Hash the user password
	passHash, err := cryptox.HashSecret(req.Password)
	if err != nil {
		l.Error("failed to hash bootstrap password", slog.Any("error", err))
		return "", "", "", ErrBootstrapFailedToCreateUser
	}

	// 4. Generate the client secret
	clientSecret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		l.Error("failed to generate client secret", slog.Any("error", err))
		return "", "", "", ErrBootstrapFailedToCreateClient
	}

	clientSecretHash, err := cryptox.HashSecret(clientSecret)
	if err != nil {
		l.Error("failed to hash client secret", slog.Any("error", err))
		return "", "", "", ErrBootstrapFailedToCreateClient
	}

	// 5. Create the user and client in a transaction
	userID := idx.New().String()
	clientID := idx.New().String()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Users().CreateUser(ctx, domain.User{
			ID:           userID,
			Username:     req.Username,
			PasswordHash: passHash,
			Frontend:     domain.FrontendBackOffice,
			Active:       true,
		})
		if err != nil {
			l.Error("failed to create bootstrap user",
				slog.String("user_id", userID),
				slog.Any("error", err),
			)
			return ErrBootstrapFailedToCreateUser
		}

		err = tx.Clients().CreateClient(ctx, domain.Client{
			ID:               clientID,
			Name:             req.ClientName,
			SecretHash:       clientSecretHash,
			Grants:           nil, // every grant allowed
			Scopes:           req.ClientScopes,
			RedirectURIs:     req.ClientRedirectURIs,
			Active:           true,
			Confidential:     true,
			Frontend:         domain.FrontendBackOffice,
			OwnerEntityClass: "user",
			OwnerEntityID:    userID,
		})
		if err != nil {
			l.Error("failed to create bootstrap client",
				slog.String("client_id", clientID),
				slog.Any("error", err),
			)
			return ErrBootstrapFailedToCreateClient
		}
		return nil
	})
	if err != nil {
		return "", "", "", err
	}

	l.Info("successfully bootstrapped system",
		slog.String("user_id", userID),
		slog.String("client_id", clientID),
	)
	return userID, clientID, clientSecret, nil
}
