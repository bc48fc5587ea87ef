// Package cabinet is a minimal REST client for the cabinet
// management API that fronts the swap stations.
package cabinet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"swapstation-cloud/internal/observability/metrics"
)

// ErrUnauthorized indicates the cabinet API rejected the bearer token.
var ErrUnauthorized = errors.New("cabinet: unauthorized")

// Client talks to the cabinet management API. Authentication uses a
// bearer token obtained from configured credentials; an expired token
// is refreshed and the failed request replayed exactly once.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client

	mu       sync.Mutex
	token    string
	inflight *refreshCall
}

type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// NewClient constructs a cabinet client.
func NewClient(baseURL, username, password string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("cabinet: empty base url")
	}
	if username == "" || password == "" {
		return nil, errors.New("cabinet: missing credentials")
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// Battery describes a battery sitting in a cabinet slot.
type Battery struct {
	Slot      int    `json:"slot"`
	Serial    string `json:"serial"`
	ChargePct int    `json:"charge_pct"`
	Charging  bool   `json:"charging"`
}

// StationState is a cabinet status snapshot.
type StationState struct {
	CabinetID  string    `json:"cabinet_id"`
	Online     bool      `json:"online"`
	EmptySlots int       `json:"empty_slots"`
	Batteries  []Battery `json:"batteries"`
}

// PopResult reports the outcome of a slot relay call.
type PopResult struct {
	Status string `json:"status"`
}

// StationState fetches the status snapshot for a cabinet.
func (c *Client) StationState(ctx context.Context, cabinetID string) (StationState, error) {
	if cabinetID == "" {
		return StationState{}, errors.New("cabinet: empty cabinet id")
	}
	var state StationState
	err := c.call(ctx, "station_state", http.MethodGet, "/api/cabinet/"+cabinetID+"/state", nil, &state)
	return state, err
}

// ListBatteries fetches the batteries currently docked in a cabinet.
func (c *Client) ListBatteries(ctx context.Context, cabinetID string) ([]Battery, error) {
	if cabinetID == "" {
		return nil, errors.New("cabinet: empty cabinet id")
	}
	var batteries []Battery
	err := c.call(ctx, "list_batteries", http.MethodGet, "/api/cabinet/"+cabinetID+"/batteries", nil, &batteries)
	return batteries, err
}

// PopSlot triggers the relay that ejects a slot's battery.
func (c *Client) PopSlot(ctx context.Context, cabinetID string, slot int) (PopResult, error) {
	if cabinetID == "" {
		return PopResult{}, errors.New("cabinet: empty cabinet id")
	}
	if slot <= 0 {
		return PopResult{}, errors.New("cabinet: invalid slot")
	}
	var result PopResult
	path := fmt.Sprintf("/api/cabinet/%s/slots/%d/pop", cabinetID, slot)
	err := c.call(ctx, "pop_slot", http.MethodPost, path, map[string]any{}, &result)
	return result, err
}

func (c *Client) call(ctx context.Context, operation, method, path string, body, out any) error {
	start := time.Now()
	err := c.doAuthed(ctx, method, path, body, out)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveCabinetCall(operation, result, time.Since(start))
	return err
}

func (c *Client) doAuthed(ctx context.Context, method, path string, body, out any) error {
	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}
	err = c.doJSON(ctx, method, path, token, body, out)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}
	token, err = c.refreshToken(ctx, token)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, method, path, token, body, out)
}

func (c *Client) currentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()
	return c.refreshToken(ctx, "")
}

// refreshToken logs in again, sharing one in-flight login among
// concurrent callers. stale is the token the caller saw fail; when the
// cached token already differs another caller refreshed first.
func (c *Client) refreshToken(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.token != stale {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	if c.inflight != nil {
		call := c.inflight
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.token = ""
	c.mu.Unlock()

	token, err := c.login(ctx)

	c.mu.Lock()
	if err == nil {
		c.token = token
	}
	call.token, call.err = token, err
	c.inflight = nil
	c.mu.Unlock()
	close(call.done)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.IncTokenRefresh(result)
	return token, err
}

func (c *Client) login(ctx context.Context) (string, error) {
	body := map[string]string{"username": c.username, "password": c.password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("cabinet: login returned empty token")
	}
	return resp.Token, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cabinet: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
