// Package auth is the client side of the driver login/registration flow.
// A successful login persists the session through the trip store; every
// authenticated module reads it from there.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"haul-tracker/internal/models"
	"haul-tracker/internal/modules/tripstore"
)

// Client talks to /api/auth/*.
type Client struct {
	http     *http.Client
	baseURL  string
	store    tripstore.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewClient builds an auth client. httpClient and logger may be nil.
func NewClient(httpClient *http.Client, baseURL string, store tripstore.Store, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:     httpClient,
		baseURL:  baseURL,
		store:    store,
		validate: validator.New(),
		logger:   logger,
	}
}

// Login authenticates the driver and persists the resulting session.
func (c *Client) Login(ctx context.Context, name, password string) (models.Session, error) {
	req := models.LoginRequest{Name: strings.TrimSpace(name), Password: password}
	if err := c.validate.Struct(req); err != nil {
		return models.Session{}, models.ErrInvalidCredentials
	}

	var resp models.LoginResponse
	if err := c.post(ctx, "/api/auth/login", req, &resp); err != nil {
		return models.Session{}, fmt.Errorf("auth.Login: %w", err)
	}
	if !resp.Success || resp.Token == "" {
		c.logger.Info("login rejected", "name", req.Name, "message", resp.Message)
		return models.Session{}, models.ErrInvalidCredentials
	}

	session := models.Session{Token: resp.Token}
	if resp.Driver != nil {
		session.Driver = *resp.Driver
	}
	if out := c.store.SaveSession(session); !out.Applied() {
		// The session still works for this run; it just won't survive a
		// restart.
		c.logger.Warn("session persistence ignored")
	}
	return session, nil
}

// Register creates a new driver account. It does not log the driver in.
func (c *Client) Register(ctx context.Context, name, phone, password string) error {
	req := models.RegisterRequest{Name: strings.TrimSpace(name), Phone: strings.TrimSpace(phone), Password: password}
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("auth.Register: %w", err)
	}

	var resp models.RegisterResponse
	if err := c.post(ctx, "/api/auth/register", req, &resp); err != nil {
		return fmt.Errorf("auth.Register: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", models.ErrRequestFailed, resp.Message)
	}
	return nil
}

// Session returns the persisted session, if any. The app uses this as
// its auto-login check on startup.
func (c *Client) Session() (models.Session, bool) {
	return c.store.LoadSession()
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	// Auth endpoints put the outcome in the body; decode even on non-2xx
	// so the server's message reaches the driver.
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("%w: status %d", models.ErrRequestFailed, resp.StatusCode)
		}
		return fmt.Errorf("%w: %v", models.ErrRequestFailed, err)
	}
	return nil
}
