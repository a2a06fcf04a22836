package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/lanewaylabs/gatehouse/internal/auth/service"
	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/lanewaylabs/gatehouse/pkg/httpx"
	"github.com/lanewaylabs/gatehouse/pkg/idx"
	"github.com/lanewaylabs/gatehouse/pkg/slogx"
)

// visitorSessionCookie carries the anonymous browser session identifier so
// codes minted for the same visitor can be tied together.
const visitorSessionCookie = "gatehouse_visitor"

// AuthorizeHandler processes the authorization-code flow endpoint. GET
// describes the validated pending request as JSON (the consent UI lives
// elsewhere); POST authenticates the resource owner and approves or denies.
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
}

// HandleGet godoc
//
//	@Summary		Describe a pending authorization request
//	@Description	Validates the authorization request parameters and returns a JSON description of what approval would grant. Rendering a consent page from it is the frontend's job.
//	@Tags			OAuth2
//	@Produce		json
//	@Param			response_type			query		string	true	"Must be 'code'"	default(code)
//	@Param			client_id				query		string	true	"OAuth2 client identifier"
//	@Param			redirect_uri			query		string	true	"Callback URI (must match a registered redirect URI exactly)"
//	@Param			scope					query		string	false	"Space-delimited list of scopes"
//	@Param			state					query		string	false	"Opaque value echoed back on the redirect"
//	@Param			code_challenge			query		string	false	"PKCE code challenge (required for public clients)"
//	@Param			code_challenge_method	query		string	false	"PKCE method (S256 or plain, defaults to S256)"	Enums(S256, plain)
//	@Success		200						{object}	authsdk.AuthorizeDescription
//	@Failure		400						{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401						{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/oauth2/authorize [get]
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	req, err := h.AuthorizeService.Validate(r.Context(), paramsFromQuery(r.URL.Query()))
	if err != nil {
		writeAuthorizeValidationError(w, r, req, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthorizeDescription{
		ClientID:    req.Client.ID,
		ClientName:  req.Client.Name,
		RedirectURI: req.RedirectURI,
		Scopes:      req.Scopes,
		SkipConsent: req.SkipConsent,
	})
}

// HandlePost godoc
//
//	@Summary		Approve or deny an authorization request
//	@Description	Authenticates the resource owner with username/password and completes the flow. Success is a 302 redirect carrying code and state; a denial or post-validation failure redirects the error to the client.
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			response_type			query		string	true	"Must be 'code'"	default(code)
//	@Param			client_id				query		string	true	"OAuth2 client identifier"
//	@Param			redirect_uri			query		string	true	"Callback URI (must match a registered redirect URI exactly)"
//	@Param			scope					query		string	false	"Space-delimited list of scopes"
//	@Param			state					query		string	false	"Opaque value echoed back on the redirect"
//	@Param			code_challenge			query		string	false	"PKCE code challenge (required for public clients)"
//	@Param			code_challenge_method	query		string	false	"PKCE method (S256 or plain, defaults to S256)"	Enums(S256, plain)
//	@Param			username				formData	string	true	"Resource owner username"
//	@Param			password				formData	string	true	"Resource owner password"
//	@Param			approve					formData	string	false	"Anything but 'true' is a denial"
//	@Success		302						{string}	string	"Redirect to redirect_uri with code and state (or error)"
//	@Failure		400						{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401						{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/oauth2/authorize [post]
func (h *AuthorizeHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	// Authorization parameters may ride the query string or the form body;
	// the query wins when both are present.
	req, err := h.AuthorizeService.Validate(ctx, mergedParams(r.URL.Query(), r.Form))
	if err != nil {
		writeAuthorizeValidationError(w, r, req, err)
		return
	}

	if r.Form.Get("approve") != "true" && !req.SkipConsent {
		_ = h.AuthorizeService.Deny(ctx, req)
		redirectError(w, r, req, "access_denied", "the resource owner denied the request")
		return
	}

	user, err := h.AuthorizeService.AuthenticateUser(ctx,
		req.Client.Frontend,
		strings.TrimSpace(r.Form.Get("username")),
		r.Form.Get("password"),
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			authsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		log.Error("authorize authentication failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	code, err := h.AuthorizeService.Approve(ctx, req, user.ID, h.visitorSession(w, r))
	if err != nil {
		log.Error("failed to approve authorization request", "err", err)
		redirectError(w, r, req, "server_error", "could not issue an authorization code")
		return
	}

	dest, _ := url.Parse(req.RedirectURI)
	q := dest.Query()
	q.Set("code", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	dest.RawQuery = q.Encode()

	httpx.NoCache(w)
	http.Redirect(w, r, dest.String(), http.StatusFound)
}

// visitorSession returns the visitor session id, minting and setting the
// cookie on first sight.
func (h *AuthorizeHandler) visitorSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorSessionCookie); err == nil && c.Value != "" {
		if id, err := idx.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := idx.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorSessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func paramsFromQuery(q url.Values) service.AuthorizeParams {
	return service.AuthorizeParams{
		ResponseType:        strings.TrimSpace(q.Get("response_type")),
		ClientID:            strings.TrimSpace(q.Get("client_id")),
		RedirectURI:         strings.TrimSpace(q.Get("redirect_uri")),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		CodeChallenge:       strings.TrimSpace(q.Get("code_challenge")),
		CodeChallengeMethod: strings.TrimSpace(q.Get("code_challenge_method")),
	}
}

func mergedParams(query, form url.Values) service.AuthorizeParams {
	merged := url.Values{}
	for _, src := range []url.Values{form, query} {
		for k, v := range src {
			if len(v) > 0 && v[0] != "" {
				merged.Set(k, v[0])
			}
		}
	}
	return paramsFromQuery(merged)
}

// writeAuthorizeValidationError reports a validation failure. Failures past
// the redirect-URI check carry a partial request with the proven redirect
// URI and are relayed to the client callback. An unknown client or
// unregistered redirect URI must never be redirected to, so those render as
// JSON and never leave the endpoint.
func writeAuthorizeValidationError(
	w http.ResponseWriter,
	r *http.Request,
	req *service.AuthorizationRequest,
	err error,
) {
	if req != nil && req.RedirectURI != "" {
		code, description := authorizeErrorParams(err)
		redirectError(w, r, req, code, description)
		return
	}

	if errors.Is(err, service.ErrInvalidClient) {
		authsdk.ErrInvalidClient.WriteError(w)
		return
	}
	authsdk.ErrInvalidRequest.WriteError(w)
}

func authorizeErrorParams(err error) (code, description string) {
	switch {
	case errors.Is(err, service.ErrUnsupportedResponse):
		return "unsupported_response_type", "only response_type=code is supported"
	case errors.Is(err, service.ErrUnauthorizedClient):
		return "unauthorized_client", "the client may not request an authorization code"
	case errors.Is(err, service.ErrInvalidScope):
		return "invalid_scope", "requested scope exceeds the client registration"
	default:
		return "invalid_request", "the authorization request is malformed"
	}
}

// redirectError relays a post-validation failure to the client callback per
// RFC 6749 section 4.1.2.1. The redirect URI is known good at this point.
func redirectError(
	w http.ResponseWriter,
	r *http.Request,
	req *service.AuthorizationRequest,
	code, description string,
) {
	dest, _ := url.Parse(req.RedirectURI)
	q := dest.Query()
	q.Set("error", code)
	q.Set("error_description", description)
	if req.State != "" {
		q.Set("state", req.State)
	}
	dest.RawQuery = q.Encode()

	httpx.NoCache(w)
	http.Redirect(w, r, dest.String(), http.StatusFound)
}
