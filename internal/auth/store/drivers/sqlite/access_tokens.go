package sqlite

import (
	"context"
	"strings"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
)

type accessTokensRepo struct {
	db DBTX
}

const accessTokenColumns = `id, client_id, user_identifier, scopes, auth_code_id,
	expires_at, revoked, created_at`

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_tokens (id, client_id, user_identifier, scopes, auth_code_id, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ClientID, t.UserIdentifier, strings.Join(t.Scopes, " "),
		t.AuthCodeID, t.ExpiresAt.UTC(), t.Revoked, now(),
	)
	return err
}

func (r *accessTokensRepo) GetAccessTokenByID(ctx context.Context, id string) (domain.AccessToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accessTokenColumns+` FROM access_tokens WHERE id = ?`, id)

	var (
		t      domain.AccessToken
		scopes string
	)
	err := row.Scan(&t.ID, &t.ClientID, &t.UserIdentifier, &scopes,
		&t.AuthCodeID, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}

	t.Scopes = splitAndFilter(scopes)
	return t, nil
}

func (r *accessTokensRepo) RevokeAccessToken(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE access_tokens SET revoked = 1 WHERE id = ?`, id))
}

func (r *accessTokensRepo) RevokeAccessTokensByAuthCode(ctx context.Context, authCodeID string) error {
	if authCodeID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE access_tokens SET revoked = 1 WHERE auth_code_id = ?`, authCodeID)
	return err
}

// DeleteDefunctAccessTokens removes expired access tokens unless an unexpired
// refresh token still references them; those rows must survive so a refresh
// exchange can still see its lineage.
func (r *accessTokensRepo) DeleteDefunctAccessTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM access_tokens
		WHERE expires_at < ?
		  AND NOT EXISTS (
			SELECT 1 FROM refresh_tokens rt
			WHERE rt.access_token_id = access_tokens.id
			  AND rt.expires_at >= ?
		  )`, now(), now())
	return err
}
