// Package meili is a minimal Meilisearch client covering the index and
// document operations the sync engine needs.
package meili

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/aerocell/towersync/internal/resilience"
)

// Default base URL for a local Meilisearch instance.
const defaultBaseURL = "http://localhost:7700"

// ErrCodeIndexExists is Meilisearch's error code for a duplicate index create.
const ErrCodeIndexExists = "index_already_exists"

// Client defines the Meilisearch operations used by the sync engine.
type Client interface {
	Health(ctx context.Context) error
	EnsureIndex(ctx context.Context, uid, primaryKey string) error
	UpdateSettings(ctx context.Context, uid string, settings Settings) (*TaskInfo, error)
	AddDocuments(ctx context.Context, uid string, docs any) (*TaskInfo, error)
	DeleteDocuments(ctx context.Context, uid string, ids []string) (*TaskInfo, error)
}

// Settings is the subset of index settings the sync engine manages.
type Settings struct {
	SearchableAttributes []string `json:"searchableAttributes,omitempty"`
	FilterableAttributes []string `json:"filterableAttributes,omitempty"`
	SortableAttributes   []string `json:"sortableAttributes,omitempty"`
}

// TaskInfo is the async task receipt Meilisearch returns for write operations.
type TaskInfo struct {
	TaskUID    int64  `json:"taskUid"`
	IndexUID   string `json:"indexUid"`
	Status     string `json:"status"`
	Type       string `json:"type"`
	EnqueuedAt string `json:"enqueuedAt"`
}

// APIError is returned when Meilisearch responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("meili: HTTP %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a new Meilisearch client. An empty apiKey sends no
// Authorization header, matching an unsecured local instance.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(20), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", &resp); err != nil {
		return eris.Wrap(err, "meili: health check")
	}
	if resp.Status != "available" {
		return eris.Errorf("meili: unhealthy status %q", resp.Status)
	}
	return nil
}

// EnsureIndex creates the index if it does not exist. An existing index with
// the same uid is not an error.
func (c *httpClient) EnsureIndex(ctx context.Context, uid, primaryKey string) error {
	body := map[string]string{"uid": uid, "primaryKey": primaryKey}
	var resp TaskInfo
	err := c.send(ctx, http.MethodPost, "/indexes", body, &resp)
	if err != nil {
		var apiErr *APIError
		if eris.As(err, &apiErr) && apiErr.Code == ErrCodeIndexExists {
			return nil
		}
		return eris.Wrapf(err, "meili: create index %s", uid)
	}
	return nil
}

func (c *httpClient) UpdateSettings(ctx context.Context, uid string, settings Settings) (*TaskInfo, error) {
	var resp TaskInfo
	if err := c.send(ctx, http.MethodPatch, fmt.Sprintf("/indexes/%s/settings", uid), settings, &resp); err != nil {
		return nil, eris.Wrapf(err, "meili: update settings for %s", uid)
	}
	return &resp, nil
}

func (c *httpClient) AddDocuments(ctx context.Context, uid string, docs any) (*TaskInfo, error) {
	var resp TaskInfo
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/indexes/%s/documents", uid), docs, &resp); err != nil {
		return nil, eris.Wrapf(err, "meili: add documents to %s", uid)
	}
	return &resp, nil
}

func (c *httpClient) DeleteDocuments(ctx context.Context, uid string, ids []string) (*TaskInfo, error) {
	var resp TaskInfo
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/indexes/%s/documents/delete-batch", uid), ids, &resp); err != nil {
		return nil, eris.Wrapf(err, "meili: delete documents from %s", uid)
	}
	return &resp, nil
}

func (c *httpClient) send(ctx context.Context, method, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return eris.Wrap(err, "rate limit wait")
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		if apiErr.Message == "" {
			apiErr.Message = string(data)
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return eris.Wrap(err, "decode response")
		}
	}

	return nil
}
