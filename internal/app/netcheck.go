package app

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const onlineProbeTimeout = 100 * time.Millisecond

// Online probes the API origin with a short HEAD request. Any response at all
// counts as reachable; only a transport failure or timeout reports offline.
func Online(ctx context.Context, baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return false
	}
	origin := u.Scheme + "://" + u.Host

	ctx, cancel := context.WithTimeout(ctx, onlineProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, origin, nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
