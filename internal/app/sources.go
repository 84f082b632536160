package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func (c *Client) fetchSourcesPage(ctx context.Context, token string) ([]Source, string, error) {
	path := fmt.Sprintf("/sources?pageSize=%d", c.pageSize)
	if token != "" {
		path += "&pageToken=" + url.QueryEscape(token)
	}
	var resp listSourcesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.Sources, resp.NextPageToken, nil
}

// FetchSources loads the first page of sources, replacing the collection.
// Failures land in the error slot; the previous list is returned.
func (c *Client) FetchSources(ctx context.Context, silent bool) []Source {
	return fetchFirst(ctx, c, &c.sources, c.fetchSourcesPage, silent, "fetchSourcesFailed")
}

// FetchMoreSources appends the next page of sources. No-op when there is
// nothing more to load or a continuation is already in flight.
func (c *Client) FetchMoreSources(ctx context.Context) []Source {
	return fetchMore(ctx, c, &c.sources, c.fetchSourcesPage, "fetchSourcesFailed")
}

// Sources returns a snapshot of the loaded sources.
func (c *Client) Sources() []Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneSlice(c.sources.items)
}

func (c *Client) HasMoreSources() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sources.hasMore
}

func (c *Client) IsLoadingMoreSources() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sources.loadingMore
}
