package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// CreateClient registers a new OAuth2 client. Requires a bearer token with
// the clients:write scope.
func (c *SDKClient) CreateClient(
	ctx context.Context,
	accessToken string,
	req CreateClientRequest,
) (*CreateClientResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/clients",
		bytes.NewReader(body),
		map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + accessToken,
		},
	)
	if err != nil {
		return nil, err
	}

	var out CreateClientResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}

// ListClients returns all registered clients. Requires a bearer token with
// the clients:read scope.
func (c *SDKClient) ListClients(ctx context.Context, accessToken string) (*ListClientsResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/clients", nil,
		map[string]string{"Authorization": "Bearer " + accessToken},
	)
	if err != nil {
		return nil, err
	}

	var out ListClientsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return &out, nil
}

// DeleteClient removes a client registration. Requires a bearer token with
// the clients:write scope.
func (c *SDKClient) DeleteClient(ctx context.Context, accessToken, clientID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/v1/clients/"+clientID, nil,
		map[string]string{"Authorization": "Bearer " + accessToken},
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, bodyBytes)
	}

	return nil
}
