package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Bootstrap seeds the service with its initial client and user. The
// bootstrapToken must match the server's configured token, and the call
// fails once any client already exists.
func (c *SDKClient) Bootstrap(
	ctx context.Context,
	bootstrapToken string,
	req BootstrapRequest,
) (*BootstrapResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/bootstrap",
		bytes.NewReader(body),
		map[string]string{
			"Content-Type":      "application/json",
			"X-Bootstrap-Token": bootstrapToken,
		},
	)
	if err != nil {
		return nil, err
	}

	var out BootstrapResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}

	return &out, nil
}
