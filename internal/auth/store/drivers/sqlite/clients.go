package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
)

type clientsRepo struct {
	db DBTX
}

const clientColumns = `id, name, secret_hash, grants, scopes, redirect_uris,
	active, confidential, plain_pkce_allowed, skip_authorize_allowed,
	frontend, owner_entity_class, owner_entity_id, created_at, updated_at`

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (
			id, name, secret_hash, grants, scopes, redirect_uris,
			active, confidential, plain_pkce_allowed, skip_authorize_allowed,
			frontend, owner_entity_class, owner_entity_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, mapStringNull(c.SecretHash),
		strings.Join(c.Grants, " "), scopesToDB(c.Scopes),
		strings.Join(c.RedirectURIs, " "),
		c.Active, c.Confidential, c.PlainTextPKCEAllowed, c.SkipAuthorizeClientAllowed,
		string(c.Frontend), c.OwnerEntityClass, c.OwnerEntityID, ts, ts,
	)
	return err
}

func (r *clientsRepo) UpdateClientSecretHash(ctx context.Context, clientID, secretHash string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE clients SET secret_hash = ?, updated_at = ? WHERE id = ?`,
		mapStringNull(secretHash), now(), clientID))
}

func (r *clientsRepo) SetClientActive(ctx context.Context, clientID string, active bool) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE clients SET active = ?, updated_at = ? WHERE id = ?`,
		active, now(), clientID))
}

func (r *clientsRepo) DeleteClient(ctx context.Context, clientID string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM clients WHERE id = ?`, clientID))
}

func (r *clientsRepo) DeleteClientsWithMissingOwner(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM clients
		WHERE owner_entity_class = 'user'
		  AND owner_entity_id <> ''
		  AND NOT EXISTS (SELECT 1 FROM users u WHERE u.id = clients.owner_entity_id)`)
	return err
}

func (r *clientsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// scopesToDB keeps the nil-vs-set distinction: NULL means the client is
// unrestricted, a value (even empty) means the listed scopes only.
func scopesToDB(scopes []string) sql.NullString {
	if scopes == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.Join(scopes, " "), Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (domain.Client, error) {
	var (
		c          domain.Client
		secretHash sql.NullString
		grants     string
		scopes     sql.NullString
		redirects  string
		frontend   string
	)

	err := row.Scan(
		&c.ID, &c.Name, &secretHash, &grants, &scopes, &redirects,
		&c.Active, &c.Confidential, &c.PlainTextPKCEAllowed, &c.SkipAuthorizeClientAllowed,
		&frontend, &c.OwnerEntityClass, &c.OwnerEntityID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}

	c.SecretHash = mapNullString(secretHash)
	c.Grants = splitAndFilter(grants)
	c.RedirectURIs = splitAndFilter(redirects)
	c.Frontend = domain.Frontend(frontend)

	if scopes.Valid {
		c.Scopes = splitAndFilter(scopes.String)
		if c.Scopes == nil {
			c.Scopes = []string{}
		}
	}

	return c, nil
}
