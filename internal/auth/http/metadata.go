package http

import (
	"net/http"
	"strings"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/lanewaylabs/gatehouse/pkg/cryptox"
	"github.com/lanewaylabs/gatehouse/pkg/httpx"
)

// MetadataHandler serves the RFC 8414 authorization server metadata
// document. The issuer doubles as the base URL for every advertised
// endpoint.
//
//	@Summary		Authorization Server Metadata
//	@Description	Returns the RFC 8414 metadata document describing this server's endpoints and capabilities.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.ServerMetadata
//	@Router			/.well-known/oauth-authorization-server [get].
func MetadataHandler(issuer string) http.HandlerFunc {
	base := strings.TrimRight(issuer, "/")
	meta := authsdk.ServerMetadata{
		Issuer:                issuer,
		AuthorizationEndpoint: base + "/v1/oauth2/authorize",
		TokenEndpoint:         base + "/v1/oauth2/token",
		RevocationEndpoint:    base + "/v1/oauth2/revoke",
		JWKSURI:               base + "/.well-known/jwks.json",
		// Only the redirect-flow grants are advertised; client_credentials
		// and password are provisioned out of band. Plain PKCE is a
		// per-client concession and never published server-wide.
		GrantTypesSupported: []string{
			domain.GrantAuthorizationCode,
			domain.GrantRefreshToken,
		},
		ResponseTypesSupported:        []string{"code"},
		CodeChallengeMethodsSupported: []string{cryptox.PKCEMethodS256},
		TokenEndpointAuthMethodsSupported: []string{
			"client_secret_post",
			"none",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, meta)
	}
}
