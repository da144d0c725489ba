// Package status talks to the remote status API: the user-initiated
// status submissions and the silent background location pings.
package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"haul-tracker/internal/models"
)

// SessionSource yields the persisted auth session. Satisfied by
// tripstore.Store.
type SessionSource interface {
	LoadSession() (models.Session, bool)
}

// SubmitOptions controls one submission's location policy.
type SubmitOptions struct {
	// RequireLocation aborts the submission before any network I/O when
	// Coords is nil. This is a precondition failure, not a network
	// failure: the state machine retries acquisition, not the request.
	RequireLocation bool

	// Coords, when present, is attached to the payload regardless of
	// RequireLocation.
	Coords *models.Coordinates
}

// Client composes and POSTs status-update payloads.
type Client struct {
	http     *http.Client
	baseURL  string
	sessions SessionSource
	validate *validator.Validate
}

// NewClient builds a submission client. httpClient may be nil, in which
// case http.DefaultClient is used.
func NewClient(httpClient *http.Client, baseURL string, sessions SessionSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:     httpClient,
		baseURL:  baseURL,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Submit sends one status update. Success is an HTTP 2xx; every other
// outcome — transport error, non-2xx — is a uniform ErrRequestFailed.
// The client never retries; retry is the driver pressing the button
// again.
func (c *Client) Submit(ctx context.Context, req models.StatusUpdateRequest, opts SubmitOptions) error {
	session, ok := c.sessions.LoadSession()
	if !ok {
		return models.ErrNotLoggedIn
	}

	if opts.RequireLocation && opts.Coords == nil {
		return models.ErrLocationUnavailable
	}
	if opts.Coords != nil {
		req.AttachCoordinates(*opts.Coords)
	}

	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("status.Submit: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("status.Submit: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/status/update", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("status.Submit: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", models.ErrRequestFailed, resp.StatusCode)
	}
	return nil
}
