package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lanewaylabs/gatehouse/internal/auth/domain"
	"github.com/lanewaylabs/gatehouse/internal/auth/service"
	"github.com/lanewaylabs/gatehouse/internal/auth/store"
	"github.com/lanewaylabs/gatehouse/pkg/authsdk"
	"github.com/lanewaylabs/gatehouse/pkg/httpx"
	"github.com/lanewaylabs/gatehouse/pkg/slogx"
)

// ClientsHandler handles the client management endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// HandleCreate handles POST /v1/clients
//
//	@Summary		Create OAuth2 Client
//	@Description	Registers a new OAuth2 client. Confidential clients get a generated secret returned exactly once.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.CreateClientRequest		true	"Client registration"
//	@Success		201		{object}	authsdk.CreateClientResponse	"client_id and client_secret (if confidential)"
//	@Failure		400		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		403		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Request body must be valid JSON",
		})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Client name is required",
		})
		return
	}

	client, secret, err := h.ClientService.CreateClient(ctx, service.CreateClientParams{
		Name:                       strings.TrimSpace(req.Name),
		Confidential:               req.Confidential,
		Grants:                     req.Grants,
		Scopes:                     req.Scopes,
		RedirectURIs:               req.RedirectURIs,
		PlainTextPKCEAllowed:       req.PlainTextPKCEAllowed,
		SkipAuthorizeClientAllowed: req.SkipAuthorizeClientAllowed,
		Frontend:                   domain.Frontend(req.Frontend),
		OwnerEntityClass:           req.OwnerEntityClass,
		OwnerEntityID:              req.OwnerEntityID,
	})
	if err != nil {
		log.Error("failed to create client", "error", err)
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: err.Error(),
		})
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.CreateClientResponse{
		ClientID:     client.ID,
		ClientSecret: secret,
	})
}

// HandleList handles GET /v1/clients
//
//	@Summary		List OAuth2 Clients
//	@Description	Returns all registered OAuth2 clients, newest first.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.ListClientsResponse	"List of clients"
//	@Failure		401	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		403	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clients, err := h.ClientService.ListClients(ctx)
	if err != nil {
		log.Error("failed to list clients", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list clients",
		})
		return
	}

	out := authsdk.ListClientsResponse{
		Clients: make([]authsdk.ClientSummary, 0, len(clients)),
	}
	for _, c := range clients {
		out.Clients = append(out.Clients, authsdk.ClientSummary{
			ClientID:     c.ID,
			Name:         c.Name,
			Confidential: c.Confidential,
			Active:       c.Active,
			Grants:       c.Grants,
			Scopes:       c.Scopes,
			Frontend:     string(c.Frontend),
		})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /v1/clients/{id}
//
//	@Summary		Delete OAuth2 Client
//	@Description	Removes a client registration. Issued tokens cascade away with it.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Client identifier"
//	@Success		204	"Client deleted"
//	@Failure		401	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")
	if id == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.ClientService.DeleteClient(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, authsdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "No such client",
			})
			return
		}
		log.Error("failed to delete client", "error", err, "client_id", id)
		httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to delete client",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
