package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the versioned origin of the Jules API.
	DefaultBaseURL = "https://jules.googleapis.com/v1alpha"

	apiKeyHeader = "X-Goog-Api-Key"

	defaultPageSize           = 20
	defaultActivitiesPageSize = 50
)

// Client talks to the Jules API. It owns the paged sources and sessions
// collections, the shared loading flag, and the single error slot; UI layers
// read snapshots through the accessor methods and never mutate them.
//
// List fetches swallow failures: they record a translated message in the
// error slot and return the previous (or empty) list. ApprovePlan and
// SendMessage additionally return their error so callers can abort chained
// follow-ups.
type Client struct {
	apiKey             string
	baseURL            string
	pageSize           int
	activitiesPageSize int
	httpc              *http.Client
	tr                 Translator
	logger             *Logger

	mu       sync.Mutex
	loading  bool
	lastErr  string
	sources  paged[Source]
	sessions paged[Session]
}

// paged is one cursor-continued collection. gen increments on every reset so
// an in-flight append that started before the reset is discarded when it
// lands, instead of being spliced onto replaced data.
type paged[T any] struct {
	items       []T
	nextToken   string
	hasMore     bool
	loadingMore bool
	gen         int
}

type Options struct {
	APIKey             string
	BaseURL            string
	PageSize           int
	ActivitiesPageSize int
	HTTPClient         *http.Client
	Translator         Translator
	Logger             *Logger
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	actPageSize := opts.ActivitiesPageSize
	if actPageSize <= 0 {
		actPageSize = defaultActivitiesPageSize
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	tr := opts.Translator
	if tr == nil {
		tr = NewTranslator(LangEnglish)
	}
	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(io.Discard)
	}
	return &Client{
		apiKey:             strings.TrimSpace(opts.APIKey),
		baseURL:            baseURL,
		pageSize:           pageSize,
		activitiesPageSize: actPageSize,
		httpc:              httpc,
		tr:                 tr,
		logger:             logger,
	}
}

// BaseURL returns the origin the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// HasKey reports whether a credential is configured.
func (c *Client) HasKey() bool { return c.apiKey != "" }

// do executes one authenticated request against the API. path is relative to
// the base URL. A non-2xx response becomes an *APIError carrying the server's
// envelope message; transport failures are returned unchanged and never
// retried.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	reqID := uuid.NewString()
	start := time.Now()
	c.logger.Info("api request", map[string]interface{}{
		"id":     reqID,
		"method": method,
		"path":   path,
	})

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Error("api transport failure", map[string]interface{}{
			"id":    reqID,
			"error": err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	c.logger.Info("api response", map[string]interface{}{
		"id":          reqID,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.apiError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) apiError(httpStatus int, raw []byte) *APIError {
	apiErr := &APIError{HTTPStatus: httpStatus}
	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("%s: %d", c.tr("apiError"), httpStatus)
	}
	return apiErr
}

// message picks the user-facing string for a failed operation: the configured
// key hint for a missing credential, the server's own message for API errors,
// and the operation's translated fallback for everything else (transport).
func (c *Client) message(err error, fallbackKey string) string {
	if errors.Is(err, ErrNoAPIKey) {
		return c.tr("apiKeyNotSet")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return c.tr(fallbackKey)
}

// IsLoading reports whether a non-silent operation is in flight.
func (c *Client) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the current user-facing error message, or "".
func (c *Client) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError resets the error slot. Loading flags and collections are
// untouched.
func (c *Client) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append([]T(nil), in...)
}

// fetchFirst loads the first page of a collection, replacing it wholesale.
// silent fetches skip the shared loading flag so background refreshes never
// flicker a loading UI. The reset bumps the collection generation up front,
// invalidating any append still in flight.
func fetchFirst[T any](
	ctx context.Context,
	c *Client,
	col *paged[T],
	page func(context.Context, string) ([]T, string, error),
	silent bool,
	fallbackKey string,
) []T {
	c.mu.Lock()
	col.gen++
	gen := col.gen
	if !silent {
		c.loading = true
	}
	c.lastErr = ""
	c.mu.Unlock()

	items, token, err := page(ctx, "")

	c.mu.Lock()
	defer c.mu.Unlock()
	if !silent {
		c.loading = false
	}
	if err != nil {
		c.lastErr = c.message(err, fallbackKey)
		return cloneSlice(col.items)
	}
	if col.gen != gen {
		// A newer reset started while this one was in flight; its result wins.
		return cloneSlice(col.items)
	}
	if items == nil {
		items = []T{}
	}
	col.items = items
	col.nextToken = token
	col.hasMore = token != ""
	return cloneSlice(col.items)
}

// fetchMore continues a collection from its held cursor, appending in server
// order with no de-duplication. It is a no-op returning the current items
// when there is no cursor, no more pages, or a continuation already in
// flight.
func fetchMore[T any](
	ctx context.Context,
	c *Client,
	col *paged[T],
	page func(context.Context, string) ([]T, string, error),
	fallbackKey string,
) []T {
	c.mu.Lock()
	if !col.hasMore || col.loadingMore || col.nextToken == "" {
		out := cloneSlice(col.items)
		c.mu.Unlock()
		return out
	}
	col.loadingMore = true
	token := col.nextToken
	gen := col.gen
	c.mu.Unlock()

	items, next, err := page(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	col.loadingMore = false
	if err != nil {
		c.lastErr = c.message(err, fallbackKey)
		return cloneSlice(col.items)
	}
	if col.gen != gen {
		// The collection was reset while this append was in flight; the page
		// belongs to discarded data.
		return cloneSlice(col.items)
	}
	col.items = append(col.items, items...)
	col.nextToken = next
	col.hasMore = next != ""
	return cloneSlice(col.items)
}
