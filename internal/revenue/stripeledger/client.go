// Package stripeledger fetches ledger entries from the payments
// provider's REST API, paginating until a window is exhausted.
package stripeledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"swapstation-cloud/internal/observability/metrics"
	revenue "swapstation-cloud/internal/revenue/domain"
)

const (
	defaultPageLimit = 100
	maxPages         = 200
)

// UpstreamError reports a failed upstream call. Status carries the
// upstream HTTP status when one was received, zero otherwise.
type UpstreamError struct {
	Status int
	Reason string
}

// Error implements error.
func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("stripeledger: upstream http %d", e.Status)
	}
	return "stripeledger: " + e.Reason
}

// UpstreamStatus returns the upstream HTTP status, zero when the call
// failed before a status was received.
func (e *UpstreamError) UpstreamStatus() int { return e.Status }

// Client is a minimal payments-provider REST client.
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	pageLimit int
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// WithRequestTimeout overrides the default per-request timeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithPageLimit overrides the page size used while paginating.
func WithPageLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 && limit <= defaultPageLimit {
			c.pageLimit = limit
		}
	}
}

// NewClient constructs a ledger client. An empty API key is allowed
// here; fetches report ErrConfigurationMissing so the condition maps to
// a 503 per request rather than failing startup.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("stripeledger: empty base url")
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		pageLimit: defaultPageLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type transactionPage struct {
	Data []struct {
		ID      string `json:"id"`
		Created int64  `json:"created"`
		Type    string `json:"type"`
		Net     int64  `json:"net"`
	} `json:"data"`
	HasMore bool `json:"has_more"`
}

type chargePage struct {
	Data []struct {
		ID             string `json:"id"`
		Created        int64  `json:"created"`
		AmountCaptured *int64 `json:"amount_captured"`
		Amount         int64  `json:"amount"`
		AmountRefunded int64  `json:"amount_refunded"`
		Customer       string `json:"customer"`
	} `json:"data"`
	HasMore bool `json:"has_more"`
}

// ListTransactions fetches every settlement-level entry created within
// the inclusive unix-second bounds. The result is a single complete
// snapshot; on any page failure the partial result is discarded.
func (c *Client) ListTransactions(ctx context.Context, createdGte, createdLte int64) ([]revenue.Transaction, error) {
	if c.apiKey == "" {
		return nil, revenue.ErrConfigurationMissing
	}
	var entries []revenue.Transaction
	cursor := ""
	for page := 0; page < maxPages; page++ {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(c.pageLimit))
		params.Set("created[gte]", strconv.FormatInt(createdGte, 10))
		params.Set("created[lte]", strconv.FormatInt(createdLte, 10))
		if cursor != "" {
			params.Set("starting_after", cursor)
		}
		var resp transactionPage
		if err := c.getJSON(ctx, "/v1/balance_transactions", params, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Data {
			entries = append(entries, revenue.Transaction{
				ID:       item.ID,
				Created:  item.Created,
				Type:     revenue.TransactionType(item.Type),
				NetCents: item.Net,
			})
		}
		if !resp.HasMore || len(resp.Data) == 0 {
			break
		}
		cursor = resp.Data[len(resp.Data)-1].ID
	}
	return entries, nil
}

// RecentTransactions fetches the newest entries bounded by count
// instead of a window.
func (c *Client) RecentTransactions(ctx context.Context, limit int) ([]revenue.Transaction, error) {
	if c.apiKey == "" {
		return nil, revenue.ErrConfigurationMissing
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > defaultPageLimit {
		limit = defaultPageLimit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	var resp transactionPage
	if err := c.getJSON(ctx, "/v1/balance_transactions", params, &resp); err != nil {
		return nil, err
	}
	entries := make([]revenue.Transaction, 0, len(resp.Data))
	for _, item := range resp.Data {
		entries = append(entries, revenue.Transaction{
			ID:       item.ID,
			Created:  item.Created,
			Type:     revenue.TransactionType(item.Type),
			NetCents: item.Net,
		})
	}
	return entries, nil
}

// ListCharges fetches every charge-level entry created within the
// inclusive unix-second bounds, optionally filtered by customer.
func (c *Client) ListCharges(ctx context.Context, createdGte, createdLte int64, customer string) ([]revenue.Charge, error) {
	if c.apiKey == "" {
		return nil, revenue.ErrConfigurationMissing
	}
	var entries []revenue.Charge
	cursor := ""
	for page := 0; page < maxPages; page++ {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(c.pageLimit))
		params.Set("created[gte]", strconv.FormatInt(createdGte, 10))
		params.Set("created[lte]", strconv.FormatInt(createdLte, 10))
		if customer != "" {
			params.Set("customer", customer)
		}
		if cursor != "" {
			params.Set("starting_after", cursor)
		}
		var resp chargePage
		if err := c.getJSON(ctx, "/v1/charges", params, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Data {
			captured := item.Amount // legacy shape without amount_captured
			if item.AmountCaptured != nil {
				captured = *item.AmountCaptured
			}
			entries = append(entries, revenue.Charge{
				ID:            item.ID,
				Created:       item.Created,
				CapturedCents: captured,
				RefundedCents: item.AmountRefunded,
				Customer:      item.Customer,
			})
		}
		if !resp.HasMore || len(resp.Data) == 0 {
			break
		}
		cursor = resp.Data[len(resp.Data)-1].ID
	}
	return entries, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	start := time.Now()
	err := c.doGetJSON(ctx, path, params, out)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveLedgerPage(path, result, time.Since(start))
	return err
}

func (c *Client) doGetJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return &UpstreamError{Reason: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return &UpstreamError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &UpstreamError{Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Reason: "decode: " + err.Error()}
	}
	return nil
}
