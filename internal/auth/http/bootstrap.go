package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lanewaylabs/gatehouse/internal/auth/service"
	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/lanewaylabs/gatehouse/pkg/httpx"
	"github.com/lanewaylabs/gatehouse/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the authorization service
//	@Description	Seeds the service with its first back-office user and confidential OAuth2 client. Only available while a bootstrap token is configured, and only once.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token for authorization"
//	@Param			request				body		authsdk.BootstrapRequest	true	"Bootstrap configuration"
//	@Success		201					{object}	authsdk.BootstrapResponse	"Created identifiers and the one-time client secret"
//	@Failure		400					{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		401					{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		404					{object}	authsdk.ErrorResponse		"Bootstrap not enabled (no token configured)"
//	@Failure		500					{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		httpx.WriteJSON(w, http.StatusNotFound, authsdk.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "Bootstrap endpoint is not enabled",
		})
		return
	}

	// 2. Require bootstrap token header
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, authsdk.ErrorResponse{
			Error:            "unauthorized",
			ErrorDescription: "Bootstrap token is required in X-Bootstrap-Token header",
		})
		return
	}

	// 3. Parse request body
	var req authsdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Request body must be valid JSON",
		})
		return
	}

	// 4. Perform bootstrap
	userID, clientID, clientSecret, err := h.BootstrapService.Bootstrap(
		r.Context(),
		token,
		service.BootstrapData{
			Username:           strings.TrimSpace(req.Username),
			Password:           req.Password,
			ClientName:         strings.TrimSpace(req.ClientName),
			ClientScopes:       req.ClientScopes,
			ClientRedirectURIs: req.ClientRedirectURIs,
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapAlready):
			httpx.WriteJSON(w, http.StatusUnauthorized, authsdk.ErrorResponse{
				Error:            "unauthorized",
				ErrorDescription: "System has already been bootstrapped",
			})
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			httpx.WriteJSON(w, http.StatusUnauthorized, authsdk.ErrorResponse{
				Error:            "unauthorized",
				ErrorDescription: "Invalid bootstrap token",
			})
		case errors.Is(err, service.ErrBootstrapFailedToCreateUser),
			errors.Is(err, service.ErrBootstrapFailedToCreateClient):
			l.Error("bootstrap seeding failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to seed initial records",
			})
		default:
			httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: err.Error(),
			})
		}
		return
	}

	l.Info("system bootstrapped", "user_id", userID, "client_id", clientID)

	// 5. Respond with created IDs and client secret (only shown once)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.BootstrapResponse{
		UserID:       userID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}
