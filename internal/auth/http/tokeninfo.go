package http

import (
	"net/http"

	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/lanewaylabs/gatehouse/pkg/httpx"
)

// TokenInfoHandler echoes the resolved context of the presented bearer
// token. It must sit behind RequireBearer.
//
//	@Summary		Token Introspection for the Token Holder
//	@Description	Returns the resolved identity, scopes and expiry of the bearer token used to call it.
//	@Tags			OAuth2
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.TokenInfoResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/tokeninfo [get].
func TokenInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := TokenContextFrom(r.Context())
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="gatehouse"`)
			authsdk.ErrInvalidToken.WriteError(w)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, authsdk.TokenInfoResponse{
			TokenID:   tc.TokenID,
			ClientID:  tc.ClientID,
			UserID:    tc.UserID,
			Scopes:    tc.Scopes,
			ExpiresAt: tc.ExpiresAt.Unix(),
		})
	}
}
