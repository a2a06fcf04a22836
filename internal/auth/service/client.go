package service

import (
	"context"
	"errors"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
	"github.com/lanewaylabs/gatehouse/internal/auth/store"
	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/lanewaylabs/gatehouse/pkg/idx"
	"github.com/lanewaylabs/gatehouse/pkg/slogx"
)

type ClientService struct {
	Store store.Store
}

// FindActiveClient returns the client only if it exists and is active.
// Either failure surfaces as ErrInvalidClient.
func (s *ClientService) FindActiveClient(ctx context.Context, clientID string) (domain.Client, error) {
	client, err := s.Store.Clients().GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}
	if !client.Active {
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}

// AuthenticateClient authenticates a client for the given grant type.
//
// Checks run in order: the client exists, it is active, the grant type is
// allowed, and confidential clients must present a secret verifying against
// the stored hash. Every failure collapses into the same ErrInvalidClient so
// callers can't probe which check tripped.
func (s *ClientService) AuthenticateClient(
	ctx context.Context,
	clientID, clientSecret, grantType string,
) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	client, err := s.FindActiveClient(ctx, clientID)
	if err != nil {
		return domain.Client{}, err
	}

	if !client.AllowsGrant(grantType) {
		l.Info("client attempted disallowed grant",
			"client_id", clientID, "grant_type", grantType)
		return domain.Client{}, ErrInvalidClient
	}

	if client.Confidential {
		if clientSecret == "" || client.SecretHash == "" {
			return domain.Client{}, ErrInvalidClient
		}
		if err := cryptox.VerifySecret(clientSecret, client.SecretHash); err != nil {
			l.Info("client secret verification failed", "client_id", clientID)
			return domain.Client{}, ErrInvalidClient
		}
	}

	return client, nil
}

// CreateClientParams are the caller-supplied fields for a new client. The
// identifier and, for confidential clients, the secret are generated here.
type CreateClientParams struct {
	Name                       string
	Confidential               bool
	Grants                     []string
	Scopes                     []string
	RedirectURIs               []string
	PlainTextPKCEAllowed       bool
	SkipAuthorizeClientAllowed bool
	Frontend                   domain.Frontend
	OwnerEntityClass           string
	OwnerEntityID              string
}

// CreateClient registers a new OAuth2 client. For confidential clients a
// secure secret is generated and returned in plaintext exactly once.
func (s *ClientService) CreateClient(
	ctx context.Context,
	p CreateClientParams,
) (client domain.Client, plaintextSecret string, err error) {
	l := slogx.FromContext(ctx)

	if len(p.RedirectURIs) == 0 {
		for _, g := range p.Grants {
			if g == domain.GrantAuthorizationCode {
				return domain.Client{}, "", errors.New("service: authorization_code clients need a redirect URI")
			}
		}
	}
	if p.OwnerEntityID == "" {
		for _, g := range p.Grants {
			if g == domain.GrantClientCredentials {
				return domain.Client{}, "", errors.New("service: client_credentials clients need an owner entity")
			}
		}
	}

	var secretHash string
	if p.Confidential {
		secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			l.Error("failed to generate client secret", "error", err)
			return domain.Client{}, "", err
		}
		plaintextSecret = secret

		secretHash, err = cryptox.HashSecret(secret)
		if err != nil {
			l.Error("failed to hash client secret", "error", err)
			return domain.Client{}, "", err
		}
	}

	frontend := p.Frontend
	if frontend == "" {
		frontend = domain.FrontendStorefront
	}

	client = domain.Client{
		ID:                         idx.New().String(),
		Name:                       p.Name,
		SecretHash:                 secretHash,
		Grants:                     p.Grants,
		Scopes:                     p.Scopes,
		RedirectURIs:               p.RedirectURIs,
		Active:                     true,
		Confidential:               p.Confidential,
		PlainTextPKCEAllowed:       p.PlainTextPKCEAllowed,
		SkipAuthorizeClientAllowed: p.SkipAuthorizeClientAllowed,
		Frontend:                   frontend,
		OwnerEntityClass:           p.OwnerEntityClass,
		OwnerEntityID:              p.OwnerEntityID,
	}

	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		l.Error("failed to create client", "error", err)
		return domain.Client{}, "", err
	}

	l.Info("client created",
		"client_id", client.ID, "name", p.Name, "confidential", p.Confidential)
	return client, plaintextSecret, nil
}

// ListClients returns all OAuth2 clients.
func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// SetClientActive flips the active flag. Deactivated clients fail every
// grant and bearer validation until reactivated.
func (s *ClientService) SetClientActive(ctx context.Context, clientID string, active bool) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.Clients().SetClientActive(ctx, clientID, active); err != nil {
		return err
	}

	l.Info("client active flag changed", "client_id", clientID, "active", active)
	return nil
}

// DeleteClient deletes an OAuth2 client by ID. Issued tokens cascade away
// with the row.
func (s *ClientService) DeleteClient(ctx context.Context, clientID string) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.Clients().DeleteClient(ctx, clientID); err != nil {
		return err
	}

	l.Info("client deleted", "client_id", clientID)
	return nil
}
