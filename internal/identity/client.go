// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package identity is a client for a hosted identity provider (Firebase
Authentication, via the Identity Toolkit REST API).

It is deliberately separate from the first-party account and session
packages: it has its own account namespace, its own credential storage and
its own token format, and nothing here is ever reconciled with local
accounts. The operator CLI is its only caller.

# Lifecycle

Init configures a process-wide [Client] once and publishes [EventReady].
Get returns [ErrNotReady] until then. Teardown signs out and releases the
client so Init may run again.
*/
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// # Configuration

const (
	defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4096
)

// Config configures the provider endpoint and credentials.
type Config struct {
	// APIKey is the provider's public web API key.
	APIKey string
	// BaseURL defaults to the Identity Toolkit v1 endpoint.
	BaseURL string
	// InitialCustomToken, when set, is exchanged for a session during Init.
	InitialCustomToken string
	HTTPClient         *http.Client
	Logger             *slog.Logger
}

// # Entities

// Identity is a signed-in provider user. It is unrelated to local accounts.
type Identity struct {
	UID          string
	Email        string
	DisplayName  string
	IDToken      string `json:"-"`
	RefreshToken string `json:"-"`
	ExpiresAt    time.Time
}

// ProviderError is an error reported by the identity provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity: provider status %d: %s", e.Status, e.Message)
}

// Provider error messages worth matching on.
const (
	MessageEmailExists     = "EMAIL_EXISTS"
	MessageInvalidLogin    = "INVALID_LOGIN_CREDENTIALS"
	MessageEmailNotFound   = "EMAIL_NOT_FOUND"
	MessageInvalidPassword = "INVALID_PASSWORD"
)

// IsProviderMessage reports whether err is a [ProviderError] whose message starts with message.
func IsProviderMessage(err error, message string) bool {
	var providerErr *ProviderError
	return errors.As(err, &providerErr) && strings.HasPrefix(providerErr.Message, message)
}

// # Client

// Client wraps the provider's create, sign-in, sign-out and current-user operations.
//
// It is safe for concurrent use. Every change of the signed-in identity is
// published on the bus as [EventChanged].
type Client struct {
	cfg    Config
	bus    *Bus
	logger *slog.Logger

	mu      sync.RWMutex
	current *Identity
}

// NewClient builds a standalone client that publishes to bus.
func NewClient(cfg Config, bus *Bus) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("identity: api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = NewBus()
	}

	return &Client{cfg: cfg, bus: bus, logger: logger}, nil
}

type tokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

/*
SignUp creates a provider account and signs it in.

When displayName is not empty it is set on the new profile before the
identity is published.
*/
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	var created tokenResponse
	err := c.call(ctx, "accounts:signUp", map[string]any{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &created)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(displayName); name != "" {
		var updated tokenResponse
		err := c.call(ctx, "accounts:update", map[string]any{
			"idToken":           created.IDToken,
			"displayName":       name,
			"returnSecureToken": true,
		}, &updated)
		if err != nil {
			return nil, fmt.Errorf("identity: set display name: %w", err)
		}
		created.DisplayName = name
		if updated.IDToken != "" {
			created.IDToken = updated.IDToken
			created.RefreshToken = updated.RefreshToken
			created.ExpiresIn = updated.ExpiresIn
		}
	}

	return c.signedIn(created), nil
}

// SignIn signs in with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	var signed tokenResponse
	err := c.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &signed)
	if err != nil {
		return nil, err
	}
	return c.signedIn(signed), nil
}

// SignInWithCustomToken exchanges a server-minted custom token for a session.
func (c *Client) SignInWithCustomToken(ctx context.Context, token string) (*Identity, error) {
	var signed tokenResponse
	err := c.call(ctx, "accounts:signInWithCustomToken", map[string]any{
		"token":             token,
		"returnSecureToken": true,
	}, &signed)
	if err != nil {
		return nil, err
	}

	// The custom-token response carries no profile; look it up.
	var lookup struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"users"`
	}
	err = c.call(ctx, "accounts:lookup", map[string]any{"idToken": signed.IDToken}, &lookup)
	if err == nil && len(lookup.Users) == 0 {
		err = errors.New("identity: lookup returned no user")
	}
	if err != nil {
		c.logger.WarnContext(ctx, "identity_lookup_failed", slog.Any("error", err))
		return nil, err
	}

	signed.LocalID = lookup.Users[0].LocalID
	signed.Email = lookup.Users[0].Email
	signed.DisplayName = lookup.Users[0].DisplayName

	return c.signedIn(signed), nil
}

// SignOut forgets the current identity. The provider keeps no session to end.
func (c *Client) SignOut() {
	c.mu.Lock()
	wasSignedIn := c.current != nil
	c.current = nil
	c.mu.Unlock()

	if wasSignedIn {
		c.bus.Publish(EventChanged{Identity: nil})
	}
}

// CurrentUser returns a copy of the signed-in identity, or nil.
func (c *Client) CurrentUser() *Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return nil
	}
	identity := *c.current
	return &identity
}

func (c *Client) signedIn(response tokenResponse) *Identity {
	identity := &Identity{
		UID:          response.LocalID,
		Email:        response.Email,
		DisplayName:  response.DisplayName,
		IDToken:      response.IDToken,
		RefreshToken: response.RefreshToken,
	}
	if seconds, err := time.ParseDuration(response.ExpiresIn + "s"); err == nil {
		identity.ExpiresAt = time.Now().Add(seconds)
	}

	c.mu.Lock()
	c.current = identity
	c.mu.Unlock()

	snapshot := *identity
	c.bus.Publish(EventChanged{Identity: &snapshot})

	return identity
}

// call POSTs payload to {BaseURL}/{method} and decodes the JSON answer into target.
func (c *Client) call(ctx context.Context, method string, payload any, target any) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("identity: marshal %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/"+method, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("identity: build %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %s failed: %w", method, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		message := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
		c.logger.WarnContext(ctx, "identity_provider_rejected",
			slog.String("method", method),
			slog.Int("status", res.StatusCode),
			slog.String("message", message),
		)
		return &ProviderError{Status: res.StatusCode, Message: message}
	}

	if err := json.NewDecoder(res.Body).Decode(target); err != nil {
		return fmt.Errorf("identity: decode %s: %w", method, err)
	}
	return nil
}
