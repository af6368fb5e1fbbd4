// Package client is the Go consumer of the REST API: a typed store
// client plus the polling, auto-save, and local backup helpers a
// character-sheet frontend needs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/foxobr/ficha-rpg/internal/config"
	"github.com/foxobr/ficha-rpg/internal/game/character"
	"github.com/foxobr/ficha-rpg/internal/game/session"
)

// Store is the remote session/character surface the client consumes.
type Store interface {
	CreateSession(ctx context.Context, name string) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	JoinSession(ctx context.Context, id string) (*session.Session, error)
	SaveCharacter(ctx context.Context, sessionID string, c *character.Character) (*character.Character, error)
	GetCharacter(ctx context.Context, sessionID, userID string) (*character.Character, error)
	ApplyCondition(ctx context.Context, sessionID, targetUserID, condition, action string) (*character.Character, error)
	ListAdminSessions(ctx context.Context) ([]*session.Session, error)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Reason  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("api: %d %s (%s)", e.Status, e.Message, e.Reason)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to the REST API. The zero value is not usable; construct
// with New and authenticate with Login or SetToken.
type Client struct {
	base  string
	http  *http.Client
	token string
}

var _ Store = (*Client)(nil)

// New creates a Client for the API at baseURL.
//
// Precondition: baseURL must not end with a slash.
func New(baseURL string, cfg config.ClientConfig) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// SetToken installs a bearer token for subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Credentials is a signup or login response.
type Credentials struct {
	User  session.User `json:"user"`
	Token string       `json:"token"`
}

// Signup registers a new account and installs its token on the client.
func (c *Client) Signup(ctx context.Context, email, password, name, role string) (session.User, error) {
	var out Credentials
	err := c.do(ctx, http.MethodPost, "/auth/signup", map[string]string{
		"email": email, "password": password, "name": name, "role": role,
	}, &out)
	if err != nil {
		return session.User{}, err
	}
	c.token = out.Token
	return out.User, nil
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (session.User, error) {
	var out Credentials
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	if err != nil {
		return session.User{}, err
	}
	c.token = out.Token
	return out.User, nil
}

// CurrentUser returns the account the installed token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (session.User, error) {
	var out session.User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &out); err != nil {
		return session.User{}, err
	}
	return out, nil
}

// CreateSession creates a session owned by the caller.
func (c *Client) CreateSession(ctx context.Context, name string) (*session.Session, error) {
	out := new(session.Session)
	err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{"name": name}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetSession fetches one session.
func (c *Client) GetSession(ctx context.Context, id string) (*session.Session, error) {
	out := new(session.Session)
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+id, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// JoinSession adds the caller to the session.
func (c *Client) JoinSession(ctx context.Context, id string) (*session.Session, error) {
	out := new(session.Session)
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+id+"/join", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveCharacter stores the caller's sheet in the session.
func (c *Client) SaveCharacter(ctx context.Context, sessionID string, sheet *character.Character) (*character.Character, error) {
	out := new(character.Character)
	err := c.do(ctx, http.MethodPut, "/api/sessions/"+sessionID+"/character", sheet, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetCharacter fetches the sheet of the given player.
func (c *Client) GetCharacter(ctx context.Context, sessionID, userID string) (*character.Character, error) {
	out := new(character.Character)
	path := fmt.Sprintf("/api/sessions/%s/players/%s/character", sessionID, userID)
	if err := c.do(ctx, http.MethodGet, path, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyCondition adds or removes a condition on the target player's
// character. action is "add" or "remove".
func (c *Client) ApplyCondition(ctx context.Context, sessionID, targetUserID, condition, action string) (*character.Character, error) {
	out := new(character.Character)
	path := fmt.Sprintf("/api/sessions/%s/players/%s/conditions", sessionID, targetUserID)
	err := c.do(ctx, http.MethodPost, path, map[string]string{
		"condition": condition, "action": action,
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAdminSessions fetches the sessions owned by the caller.
func (c *Client) ListAdminSessions(ctx context.Context) ([]*session.Session, error) {
	var out []*session.Session
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health probes the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do executes one request, encoding body as JSON and decoding the
// response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error  string `json:"error"`
			Reason string `json:"reason"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Message = errBody.Error
			apiErr.Reason = errBody.Reason
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
