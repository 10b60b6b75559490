package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"tributary/app/database"
)

// memStore keeps the whole refresh state in memory. RunInTx just invokes
// the callback; transactional behavior is the sqlite layer's concern.
type memStore struct {
	sources  []database.Source
	articles *memArticleStore
	tokens   map[int64]CacheTokens
}

func newMemStore(sources ...database.Source) *memStore {
	return &memStore{
		sources:  sources,
		articles: newMemArticleStore(),
		tokens:   make(map[int64]CacheTokens),
	}
}

func (s *memStore) ListActiveSources() ([]database.Source, error) {
	return s.sources, nil
}

func (s *memStore) RunInTx(fn func(SourceStore, ArticleStore) error) error {
	return fn(s, s.articles)
}

func (s *memStore) UpdateCacheTokens(id int64, etag, lastModified string) error {
	s.tokens[id] = CacheTokens{ETag: etag, LastModified: lastModified}
	return nil
}

func feedWithEntry(link string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <item>
      <title>Entry</title>
      <link>%s</link>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`, link)
}

func TestRefreshAllMixedResults(t *testing.T) {
	store := newMemStore(
		database.Source{ID: 1, Title: "Alpha", URL: "https://a.test/feed"},
		database.Source{ID: 2, Title: "Beta", URL: "https://b.test/feed"},
		database.Source{ID: 3, Title: "Gamma", URL: "https://c.test/feed"},
		database.Source{ID: 4, Title: "Broken", URL: "https://broken.test/feed"},
		database.Source{ID: 5, Title: "Gone", URL: "https://gone.test/feed"},
	)
	client := &fakeClient{responses: map[string]*FetchResult{
		"https://a.test/feed":      okResult(feedWithEntry("https://a.test/1"), "application/rss+xml"),
		"https://b.test/feed":      okResult(feedWithEntry("https://b.test/1"), "application/rss+xml"),
		"https://c.test/feed":      okResult(feedWithEntry("https://c.test/1"), "application/rss+xml"),
		"https://broken.test/feed": {StatusCode: http.StatusInternalServerError},
		// gone.test has no response entry, the fetch itself errors
	}}

	o := NewOrchestrator(store, client, NewParser(), 3)
	result, err := o.RefreshAll(context.Background(), false)
	if err != nil {
		t.Fatalf("Partial failure must not be an error: %v", err)
	}

	if result.Added != 3 {
		t.Errorf("Expected 3 added, got %d", result.Added)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	for _, msg := range result.Errors {
		if !strings.HasPrefix(msg, "Error fetching ") {
			t.Errorf("Unexpected error format: %s", msg)
		}
	}
	if !strings.Contains(strings.Join(result.Errors, "\n"), "Error fetching Broken: status 500") {
		t.Errorf("Expected status error for Broken, got %v", result.Errors)
	}
}

func TestRefreshAllAllFailed(t *testing.T) {
	store := newMemStore(
		database.Source{ID: 1, Title: "Down", URL: "https://down.test/feed"},
	)
	client := &fakeClient{responses: map[string]*FetchResult{}}

	o := NewOrchestrator(store, client, NewParser(), 2)
	result, err := o.RefreshAll(context.Background(), false)
	if err == nil {
		t.Fatal("Expected an error when every source failed")
	}
	if result == nil || len(result.Errors) != 1 {
		t.Fatalf("Expected the partial result alongside the error, got %+v", result)
	}
}

func TestRefreshAllNoSources(t *testing.T) {
	store := newMemStore()
	client := &fakeClient{responses: map[string]*FetchResult{}}

	o := NewOrchestrator(store, client, NewParser(), 2)
	result, err := o.RefreshAll(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Added != 0 || len(result.Errors) != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
}

func TestRefreshUpdatesTokens(t *testing.T) {
	store := newMemStore(
		database.Source{ID: 7, Title: "Alpha", URL: "https://a.test/feed"},
	)
	res := okResult(feedWithEntry("https://a.test/1"), "application/rss+xml")
	res.Tokens = CacheTokens{ETag: `"v2"`, LastModified: "Mon, 03 Jul 2023 10:00:00 GMT"}
	client := &fakeClient{responses: map[string]*FetchResult{"https://a.test/feed": res}}

	o := NewOrchestrator(store, client, NewParser(), 1)
	if _, err := o.RefreshAll(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	if got := store.tokens[7]; got.ETag != `"v2"` {
		t.Errorf("Expected tokens updated from the 200 response, got %+v", got)
	}
}

func TestRefreshNotModified(t *testing.T) {
	store := newMemStore(
		database.Source{ID: 3, Title: "Cached", URL: "https://cached.test/feed", ETag: `"v1"`},
	)
	client := &fakeClient{responses: map[string]*FetchResult{
		"https://cached.test/feed": {StatusCode: http.StatusNotModified, NotModified: true},
	}}

	o := NewOrchestrator(store, client, NewParser(), 1)
	result, err := o.RefreshAll(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}

	if result.Added != 0 || len(result.Errors) != 0 {
		t.Errorf("304 should add nothing and error nothing, got %+v", result)
	}
	if _, touched := store.tokens[3]; touched {
		t.Error("304 must leave stored tokens untouched")
	}
	if got := client.sentTokens["https://cached.test/feed"]; got.ETag != `"v1"` {
		t.Errorf("Stored tokens should be sent with the request, got %+v", got)
	}
}

func TestRefreshForceBypassesTokens(t *testing.T) {
	store := newMemStore(
		database.Source{ID: 3, Title: "Cached", URL: "https://cached.test/feed", ETag: `"v1"`},
	)
	client := &fakeClient{responses: map[string]*FetchResult{
		"https://cached.test/feed": okResult(feedWithEntry("https://cached.test/1"), "application/rss+xml"),
	}}

	o := NewOrchestrator(store, client, NewParser(), 1)
	if _, err := o.RefreshAll(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	if got := client.sentTokens["https://cached.test/feed"]; !got.Empty() {
		t.Errorf("force must not send conditional tokens, sent %+v", got)
	}
}

func TestRefreshSourceSingle(t *testing.T) {
	store := newMemStore()
	source := &database.Source{ID: 9, Title: "Solo", URL: "https://solo.test/feed", ETag: `"old"`}
	client := &fakeClient{responses: map[string]*FetchResult{
		"https://solo.test/feed": okResult(feedWithEntry("https://solo.test/1"), "application/rss+xml"),
	}}

	o := NewOrchestrator(store, client, NewParser(), 1)
	result, err := o.RefreshSource(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if result.Added != 1 {
		t.Errorf("Expected 1 added, got %d", result.Added)
	}
	// Single-source refresh always re-downloads.
	if got := client.sentTokens["https://solo.test/feed"]; !got.Empty() {
		t.Errorf("Expected no conditional tokens, sent %+v", got)
	}
}

func TestPollerDisabledInterval(t *testing.T) {
	store := newMemStore()
	client := &fakeClient{responses: map[string]*FetchResult{}}
	o := NewOrchestrator(store, client, NewParser(), 1)

	p := NewPoller(o, 0)
	p.Start()
	p.Stop()

	if len(client.calls) != 0 {
		t.Errorf("Disabled poller must not fetch, made %d calls", len(client.calls))
	}
}

func TestPollerRunsOnInterval(t *testing.T) {
	store := newMemStore(
		database.Source{ID: 1, Title: "Tick", URL: "https://tick.test/feed"},
	)
	client := &fakeClient{responses: map[string]*FetchResult{
		"https://tick.test/feed": okResult(feedWithEntry("https://tick.test/1"), "application/rss+xml"),
	}}
	o := NewOrchestrator(store, client, NewParser(), 1)

	p := NewPoller(o, 10*time.Millisecond)
	p.Start()
	time.Sleep(35 * time.Millisecond)
	p.Stop()

	if len(client.calls) == 0 {
		t.Error("Expected at least one scheduled refresh")
	}
}
