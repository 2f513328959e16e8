// Package airtable fetches the semantic event catalog from the Airtable API
// and turns raw records into validated, collision-free domain events.
package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/contextsuite/catalogd/internal/model"
)

const (
	defaultBaseURL = "https://api.airtable.com/v0"
	pageSize       = 100

	defaultMaxRetries = 3
	defaultTimeout    = 30 * time.Second
	backoffBase       = time.Second
)

// Config holds the connection settings for one Airtable base.
type Config struct {
	APIKey         string
	BaseID         string
	EventsTableID  string
	AliasesTableID string

	RateLimitDelay time.Duration // pause after each successful call
	MaxRetries     int
	Timeout        time.Duration // per-request bound

	// BaseURL overrides the Airtable API root (used by tests).
	BaseURL string
}

// APIError represents a non-2xx response from Airtable.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable: HTTP %d: %s", e.StatusCode, e.Message)
}

// Client fetches and transforms catalog data. Requests carry a bounded
// timeout and transient failures are retried with exponential backoff;
// retries apply per page fetch, never to a whole multi-page operation.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	backoff    time.Duration // base retry delay, shortened in tests
}

// New creates a client for the configured base. If logger is nil the default
// logger is used.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		baseURL:    base + "/" + cfg.BaseID,
		httpClient: &http.Client{},
		logger:     logger,
		backoff:    backoffBase,
	}
}

// record is one row of an Airtable table.
type record[T any] struct {
	ID          string `json:"id"`
	Fields      T      `json:"fields"`
	CreatedTime string `json:"createdTime"`
}

// page is one paginated table response. Offset is an opaque continuation
// token; an empty offset means the last page.
type page[T any] struct {
	Records []record[T] `json:"records"`
	Offset  string      `json:"offset"`
}

// eventFields mirrors the human-edited events table. Every field may be
// absent or empty; validation downgrades gaps to warnings.
type eventFields struct {
	Name              string   `json:"Name"`
	Category          string   `json:"Category"`
	Domain            string   `json:"Domain"`
	Description       string   `json:"Description"`
	Topic             string   `json:"Topic"`
	Aliases           []string `json:"Aliases"`
	LastUpdated       string   `json:"Last Updated"`
	Deprecated        bool     `json:"Deprecated"`
	DeprecationReason string   `json:"Deprecation Reason"`
	DeprecationDate   string   `json:"Deprecation Date"`
	ReplacementEvent  string   `json:"Replacement Event"`
}

// aliasFields mirrors the aliases table.
type aliasFields struct {
	Alias       string `json:"Alias"`
	Vertical    string `json:"Vertical"`
	Topic       string `json:"Topic"`
	Description string `json:"Description"`
}

// FetchAll returns the full joined catalog: every event record, aliases
// resolved, slugs assigned.
func (c *Client) FetchAll(ctx context.Context) ([]model.Event, error) {
	events, err := fetchRecords[eventFields](ctx, c, c.cfg.EventsTableID, "")
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	aliases, err := fetchRecords[aliasFields](ctx, c, c.cfg.AliasesTableID, "")
	if err != nil {
		return nil, fmt.Errorf("fetch aliases: %w", err)
	}
	return c.transform(events, aliases), nil
}

// FetchEventByID returns a single event by its source record ID, or nil when
// the record does not exist.
func (c *Client) FetchEventByID(ctx context.Context, id string) (*model.Event, error) {
	rec, err := fetchRecord[eventFields](ctx, c, c.cfg.EventsTableID, id)
	if err != nil {
		return nil, fmt.Errorf("fetch event %s: %w", id, err)
	}
	if rec == nil {
		return nil, nil
	}
	aliases, err := fetchRecords[aliasFields](ctx, c, c.cfg.AliasesTableID, "")
	if err != nil {
		return nil, fmt.Errorf("fetch aliases: %w", err)
	}
	events := c.transform([]record[eventFields]{*rec}, aliases)
	return &events[0], nil
}

// FetchEventsByCategory returns the events matching one category, filtered
// server-side.
func (c *Client) FetchEventsByCategory(ctx context.Context, category string) ([]model.Event, error) {
	formula := fmt.Sprintf("{Category} = %q", category)
	events, err := fetchRecords[eventFields](ctx, c, c.cfg.EventsTableID, formula)
	if err != nil {
		return nil, fmt.Errorf("fetch events for category %s: %w", category, err)
	}
	aliases, err := fetchRecords[aliasFields](ctx, c, c.cfg.AliasesTableID, "")
	if err != nil {
		return nil, fmt.Errorf("fetch aliases: %w", err)
	}
	return c.transform(events, aliases), nil
}

// FilterOptions derives the deduplicated, sorted category/domain/vertical
// lists from the full catalog.
func (c *Client) FilterOptions(ctx context.Context) (model.FilterOptions, error) {
	events, err := c.FetchAll(ctx)
	if err != nil {
		return model.FilterOptions{}, err
	}
	return model.FilterOptionsFrom(events), nil
}

// fetchRecords pages through a table until no continuation token is returned.
func fetchRecords[T any](ctx context.Context, c *Client, tableID, filterFormula string) ([]record[T], error) {
	var all []record[T]
	offset := ""

	for {
		q := url.Values{}
		q.Set("pageSize", strconv.Itoa(pageSize))
		if offset != "" {
			q.Set("offset", offset)
		}
		if filterFormula != "" {
			q.Set("filterByFormula", filterFormula)
		}

		body, err := c.doGet(ctx, c.baseURL+"/"+tableID+"?"+q.Encode())
		if err != nil {
			return nil, err
		}

		var p page[T]
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		all = append(all, p.Records...)

		c.logger.Debug("fetched records", "table", tableID, "total", len(all), "more", p.Offset != "")
		if p.Offset == "" {
			return all, nil
		}
		offset = p.Offset
	}
}

// fetchRecord fetches a single row; a 404 maps to nil, not an error.
func fetchRecord[T any](ctx context.Context, c *Client, tableID, recordID string) (*record[T], error) {
	body, err := c.doGet(ctx, c.baseURL+"/"+tableID+"/"+url.PathEscape(recordID))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	var rec record[T]
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// doGet performs one GET with retry. Only transient conditions are retried:
// 429 and 5xx responses, timeouts, and network errors. The backoff doubles
// from one second per attempt.
func (c *Client) doGet(ctx context.Context, u string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		body, err := c.once(ctx, u)
		if err == nil {
			if c.cfg.RateLimitDelay > 0 {
				select {
				case <-time.After(c.cfg.RateLimitDelay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return body, nil
		}
		if attempt >= c.cfg.MaxRetries || !isRetryable(err) {
			return nil, err
		}

		delay := c.backoff << attempt
		c.logger.Warn("retrying airtable request", "attempt", attempt+1, "delay", delay, "err", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Client) once(ctx context.Context, u string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return body, nil
}

var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return retryableStatuses[apiErr.StatusCode]
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
