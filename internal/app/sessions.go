package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func (c *Client) fetchSessionsPage(ctx context.Context, token string) ([]Session, string, error) {
	path := fmt.Sprintf("/sessions?pageSize=%d", c.pageSize)
	if token != "" {
		path += "&pageToken=" + url.QueryEscape(token)
	}
	var resp listSessionsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.Sessions, resp.NextPageToken, nil
}

// FetchSessions loads the first page of sessions, replacing the collection.
// Failures land in the error slot; the previous list is returned.
func (c *Client) FetchSessions(ctx context.Context, silent bool) []Session {
	return fetchFirst(ctx, c, &c.sessions, c.fetchSessionsPage, silent, "fetchSessionsFailed")
}

// FetchMoreSessions appends the next page of sessions. No-op when there is
// nothing more to load or a continuation is already in flight.
func (c *Client) FetchMoreSessions(ctx context.Context) []Session {
	return fetchMore(ctx, c, &c.sessions, c.fetchSessionsPage, "fetchSessionsFailed")
}

// Sessions returns a snapshot of the loaded sessions.
func (c *Client) Sessions() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneSlice(c.sessions.items)
}

func (c *Client) HasMoreSessions() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions.hasMore
}

func (c *Client) IsLoadingMoreSessions() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions.loadingMore
}
