package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/contextsuite/catalogd/internal/catalog"
	"github.com/contextsuite/catalogd/internal/model"
	"github.com/contextsuite/catalogd/internal/snapshot"
)

// HTTPClient implements CatalogClient using the catalogd HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Catalog reads ---

func (c *HTTPClient) Events(ctx context.Context) ([]model.Event, error) {
	var resp struct {
		Events []model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *HTTPClient) EventByID(ctx context.Context, id string) (*model.Event, error) {
	var ev model.Event
	if err := c.doJSON(ctx, http.MethodGet, "/v1/events/"+url.PathEscape(id), nil, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *HTTPClient) EventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	var ev model.Event
	if err := c.doJSON(ctx, http.MethodGet, "/v1/events/slug/"+url.PathEscape(slug), nil, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *HTTPClient) EventsByCategory(ctx context.Context, category string) ([]model.Event, error) {
	var resp struct {
		Events []model.Event `json:"events"`
	}
	path := "/v1/events/category/" + url.PathEscape(category)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *HTTPClient) Filters(ctx context.Context) (model.FilterOptions, error) {
	var filters model.FilterOptions
	if err := c.doJSON(ctx, http.MethodGet, "/v1/filters", nil, &filters); err != nil {
		return model.FilterOptions{}, err
	}
	return filters, nil
}

// --- Sync administration ---

func (c *HTTPClient) Refresh(ctx context.Context, remote bool) (*model.SyncResult, error) {
	path := "/v1/sync/refresh"
	if remote {
		path += "?remote=true"
	}
	var result model.SyncResult
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Reload(ctx context.Context) (*model.SyncResult, error) {
	var result model.SyncResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sync/reload", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) LastSync(ctx context.Context) (*model.SyncResult, error) {
	var result model.SyncResult
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sync/last", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) CacheStatus(ctx context.Context) (*catalog.CacheStatus, error) {
	var status catalog.CacheStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/cache/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// --- Snapshot administration ---

func (c *HTTPClient) SnapshotInfo(ctx context.Context) (*snapshot.Info, error) {
	var info snapshot.Info
	if err := c.doJSON(ctx, http.MethodGet, "/v1/snapshot", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *HTTPClient) ClearSnapshot(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/snapshot", nil, nil)
}

func (c *HTTPClient) ListBackups(ctx context.Context) ([]snapshot.BackupInfo, error) {
	var resp struct {
		Backups []snapshot.BackupInfo `json:"backups"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/snapshot/backups", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Backups, nil
}

func (c *HTTPClient) RestoreBackup(ctx context.Context, filename string) (*model.SyncResult, error) {
	path := "/v1/snapshot/backups/" + url.PathEscape(filename) + "/restore"
	var result model.SyncResult
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
