package sqlite

import (
	"context"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
)

type refreshTokensRepo struct {
	db DBTX
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, access_token_id, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.AccessTokenID, t.ExpiresAt.UTC(), t.Revoked, now(),
	)
	return err
}

func (r *refreshTokensRepo) GetRefreshTokenByID(ctx context.Context, id string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, access_token_id, expires_at, revoked, created_at
		FROM refresh_tokens WHERE id = ?`, id)

	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.AccessTokenID, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

// RevokeRefreshToken flips the revoked flag exactly once. A token already
// revoked (or unknown) reports ErrNotFound so concurrent rotations get a
// single winner at the storage layer.
func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE id = ? AND revoked = 0`, id))
}

func (r *refreshTokensRepo) RevokeRefreshTokensByAuthCode(ctx context.Context, authCodeID string) error {
	if authCodeID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = 1
		WHERE access_token_id IN (
			SELECT id FROM access_tokens WHERE auth_code_id = ?
		)`, authCodeID)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, now())
	return err
}
