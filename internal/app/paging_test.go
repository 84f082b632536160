package app

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func sourcesHandler(pages map[string]listSourcesResponse) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, ok := pages[r.URL.Query().Get("pageToken")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"bad token","status":"INVALID_ARGUMENT"}}`))
			return
		}
		json.NewEncoder(w).Encode(resp)
	})
}

func namedSources(names ...string) []Source {
	out := make([]Source, 0, len(names))
	for _, n := range names {
		out = append(out, Source{Name: "sources/github/" + n})
	}
	return out
}

func TestFetchSourcesReplacesCollection(t *testing.T) {
	c, _ := testClient(t, sourcesHandler(map[string]listSourcesResponse{
		"": {Sources: namedSources("a", "b"), NextPageToken: "t1"},
	}))

	got := c.FetchSources(context.Background(), false)
	if len(got) != 2 {
		t.Fatalf("got %d sources, want 2", len(got))
	}
	if !c.HasMoreSources() {
		t.Fatalf("HasMoreSources() = false with a next token")
	}
	if c.IsLoading() {
		t.Fatalf("loading flag still set after fetch")
	}
	if c.Err() != "" {
		t.Fatalf("error slot set: %q", c.Err())
	}
}

func TestFetchMoreSourcesAppendsInOrder(t *testing.T) {
	c, _ := testClient(t, sourcesHandler(map[string]listSourcesResponse{
		"":   {Sources: namedSources("a"), NextPageToken: "t1"},
		"t1": {Sources: namedSources("b", "c"), NextPageToken: ""},
	}))

	c.FetchSources(context.Background(), false)
	got := c.FetchMoreSources(context.Background())
	want := []string{"sources/github/a", "sources/github/b", "sources/github/c"}
	if len(got) != len(want) {
		t.Fatalf("got %d sources, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Name != w {
			t.Fatalf("item %d = %q, want %q", i, got[i].Name, w)
		}
	}
	if c.HasMoreSources() {
		t.Fatalf("HasMoreSources() = true after last page")
	}
}

func TestFetchMoreSourcesNoOpCases(t *testing.T) {
	c, _ := testClient(t, sourcesHandler(map[string]listSourcesResponse{
		"": {Sources: namedSources("a"), NextPageToken: ""},
	}))

	// No pages loaded yet: nothing to continue from.
	if got := c.FetchMoreSources(context.Background()); len(got) != 0 {
		t.Fatalf("continuation before first fetch returned %d items", len(got))
	}

	// Exhausted cursor.
	c.FetchSources(context.Background(), false)
	if got := c.FetchMoreSources(context.Background()); len(got) != 1 {
		t.Fatalf("exhausted continuation returned %d items, want 1", len(got))
	}

	// Continuation already in flight.
	c.mu.Lock()
	c.sources.hasMore = true
	c.sources.nextToken = "t1"
	c.sources.loadingMore = true
	c.mu.Unlock()
	if got := c.FetchMoreSources(context.Background()); len(got) != 1 {
		t.Fatalf("concurrent continuation returned %d items, want 1", len(got))
	}
}

func TestFetchSourcesFailureKeepsPreviousList(t *testing.T) {
	fail := false
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"code":500,"message":"backend exploded","status":"INTERNAL"}}`))
			return
		}
		json.NewEncoder(w).Encode(listSourcesResponse{Sources: namedSources("a", "b")})
	}))

	c.FetchSources(context.Background(), false)
	fail = true
	got := c.FetchSources(context.Background(), false)
	if len(got) != 2 {
		t.Fatalf("failed refresh replaced the list: %d items", len(got))
	}
	if c.Err() != "backend exploded" {
		t.Fatalf("error slot = %q, want server message", c.Err())
	}
	if c.IsLoading() {
		t.Fatalf("loading flag stuck after failure")
	}
}

func TestSilentFetchSkipsLoadingFlag(t *testing.T) {
	release := make(chan struct{})
	observed := make(chan bool, 1)
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(listSourcesResponse{Sources: namedSources("a")})
	}))

	done := make(chan struct{})
	go func() {
		c.FetchSources(context.Background(), true)
		close(done)
	}()
	go func() {
		observed <- c.IsLoading()
		close(release)
	}()
	<-done
	if <-observed {
		t.Fatalf("silent fetch raised the loading flag")
	}
}

func TestStaleAppendDroppedAfterReset(t *testing.T) {
	hold := make(chan struct{})
	var first = true
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")
		switch {
		case token == "" && first:
			first = false
			json.NewEncoder(w).Encode(listSourcesResponse{Sources: namedSources("a"), NextPageToken: "t1"})
		case token == "t1":
			<-hold // park the continuation until after the reset lands
			json.NewEncoder(w).Encode(listSourcesResponse{Sources: namedSources("stale")})
		default:
			json.NewEncoder(w).Encode(listSourcesResponse{Sources: namedSources("fresh")})
		}
	}))

	c.FetchSources(context.Background(), false)

	appended := make(chan []Source, 1)
	go func() {
		appended <- c.FetchMoreSources(context.Background())
	}()

	// Wait for the continuation to mark itself in flight, then reset.
	for !c.IsLoadingMoreSources() {
		time.Sleep(time.Millisecond)
	}
	c.FetchSources(context.Background(), false)
	close(hold)
	<-appended

	got := c.Sources()
	if len(got) != 1 || got[0].Name != "sources/github/fresh" {
		t.Fatalf("stale append survived the reset: %+v", got)
	}
}

func TestSessionsPagingMirrorsSources(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")
		if token == "" {
			json.NewEncoder(w).Encode(listSessionsResponse{
				Sessions:      []Session{{Name: "sessions/1"}},
				NextPageToken: "t1",
			})
			return
		}
		json.NewEncoder(w).Encode(listSessionsResponse{
			Sessions: []Session{{Name: "sessions/2"}},
		})
	}))

	if got := c.FetchSessions(context.Background(), false); len(got) != 1 {
		t.Fatalf("first page: %d sessions", len(got))
	}
	got := c.FetchMoreSessions(context.Background())
	if len(got) != 2 || got[1].Name != "sessions/2" {
		t.Fatalf("continuation: %+v", got)
	}
	if c.HasMoreSessions() || c.IsLoadingMoreSessions() {
		t.Fatalf("session cursor flags not cleared")
	}
}

func TestFetchSendsConfiguredPageSize(t *testing.T) {
	var gotSize string
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSize = r.URL.Query().Get("pageSize")
		json.NewEncoder(w).Encode(listSourcesResponse{})
	}))
	c.pageSize = 7

	c.FetchSources(context.Background(), false)
	if gotSize != "7" {
		t.Fatalf("pageSize = %q, want 7", gotSize)
	}
}
