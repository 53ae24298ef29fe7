// Package catalog talks to the upstream ticketing marketplace. Entries are
// fetched fresh on every call and never cached.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tixbridge/internal/shared/apperr"
)

// Client issues catalog queries
type Client interface {
	Search(ctx context.Context, query Query) ([]Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
}

// Config is passed explicitly so the client never reads the environment
type Config struct {
	BaseURL       string
	ClientID      string
	ClientSecret  string
	ListTimeout   time.Duration
	LookupTimeout time.Duration
}

type httpClient struct {
	config Config
	client *http.Client
}

const maxBodyBytes = 4 << 20

// NewHTTPClient creates a catalog client. A nil http.Client uses a default one;
// per-call deadlines come from Config, not from the transport.
func NewHTTPClient(cfg Config, client *http.Client) Client {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.ListTimeout <= 0 {
		cfg.ListTimeout = 10 * time.Second
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 5 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &httpClient{config: cfg, client: client}
}

func (c *httpClient) Search(ctx context.Context, query Query) ([]Entry, error) {
	const op = "catalog.Search"

	values, err := c.credentials(op)
	if err != nil {
		return nil, err
	}
	for k, v := range query.Params() {
		values.Set(k, v)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.ListTimeout)
	defer cancel()

	body, status, err := c.do(ctx, op, "/events", values)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, upstreamStatusError(op, status, body)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Upstream(op, "failed to decode events response", err)
	}
	return resp.Events, nil
}

func (c *httpClient) Get(ctx context.Context, id string) (*Entry, error) {
	const op = "catalog.Get"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.InvalidRequest(op, "event id is required")
	}

	values, err := c.credentials(op)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.LookupTimeout)
	defer cancel()

	body, status, err := c.do(ctx, op, "/events/"+url.PathEscape(id), values)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, apperr.NotFound(op, "event %s not found", id)
	}
	if status != http.StatusOK {
		return nil, upstreamStatusError(op, status, body)
	}

	var entry Entry
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, apperr.Upstream(op, "failed to decode event response", err)
	}
	if entry.ID == "" {
		return nil, apperr.NotFound(op, "event %s not found", id)
	}
	return &entry, nil
}

func (c *httpClient) credentials(op string) (url.Values, error) {
	if c.config.ClientID == "" {
		return nil, apperr.Configuration(op, "catalog client id is not configured")
	}
	values := url.Values{}
	values.Set("client_id", c.config.ClientID)
	if c.config.ClientSecret != "" {
		values.Set("client_secret", c.config.ClientSecret)
	}
	return values, nil
}

func (c *httpClient) do(ctx context.Context, op, path string, values url.Values) ([]byte, int, error) {
	endpoint := c.config.BaseURL + path + "?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, apperr.Upstream(op, "failed to create request", redact(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, apperr.Upstream(op, "request failed", redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, apperr.Upstream(op, "failed to read response body", err)
	}
	return body, resp.StatusCode, nil
}

// redact drops the request URL (which carries client credentials) from
// transport errors and keeps only the cause.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

func upstreamStatusError(op string, status int, body []byte) error {
	msg := http.StatusText(status)
	var ue upstreamError
	if err := json.Unmarshal(body, &ue); err == nil && ue.Message != "" {
		msg = ue.Message
	}
	return apperr.Upstream(op, "catalog responded "+strconv.Itoa(status)+": "+msg, nil)
}
