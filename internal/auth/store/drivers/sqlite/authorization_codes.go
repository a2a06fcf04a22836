package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
)

type authorizationCodesRepo struct {
	db DBTX
}

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO authorization_codes (
			id, client_id, user_identifier, visitor_session_id, code_hash,
			redirect_uri, scopes, code_challenge, code_challenge_method,
			expires_at, revoked, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.ID, code.ClientID, code.UserIdentifier, code.VisitorSessionID, code.CodeHash,
		code.RedirectURI, strings.Join(code.Scopes, " "),
		code.CodeChallenge, code.CodeChallengeMethod,
		code.ExpiresAt.UTC(), code.Revoked, now(),
	)
	return err
}

func (r *authorizationCodesRepo) GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, user_identifier, visitor_session_id, code_hash,
		       redirect_uri, scopes, code_challenge, code_challenge_method,
		       expires_at, used_at, revoked, created_at
		FROM authorization_codes WHERE code_hash = ?`, hash)

	var (
		code   domain.AuthorizationCode
		scopes string
		usedAt sql.NullTime
	)
	err := row.Scan(
		&code.ID, &code.ClientID, &code.UserIdentifier, &code.VisitorSessionID, &code.CodeHash,
		&code.RedirectURI, &scopes, &code.CodeChallenge, &code.CodeChallengeMethod,
		&code.ExpiresAt, &usedAt, &code.Revoked, &code.CreatedAt,
	)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}

	code.Scopes = splitAndFilter(scopes)
	code.UsedAt = mapNullTimePtr(usedAt)
	return code, nil
}

// ConsumeAuthorizationCode is a single conditional UPDATE so two concurrent
// exchanges of the same code get at most one winner; the loser sees
// ErrNotFound.
func (r *authorizationCodesRepo) ConsumeAuthorizationCode(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE authorization_codes SET used_at = ?
		WHERE id = ? AND used_at IS NULL AND revoked = 0`, now(), id))
}

func (r *authorizationCodesRepo) RevokeAuthorizationCode(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE authorization_codes SET revoked = 1 WHERE id = ?`, id))
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM authorization_codes WHERE expires_at < ?`, now())
	return err
}
