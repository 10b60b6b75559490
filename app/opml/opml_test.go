package opml

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseNestedOutlines(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Subscriptions</title></head>
  <body>
    <outline text="Tech">
      <outline text="Go Blog" type="rss" xmlUrl="https://go.dev/blog/feed.atom"/>
      <outline text="Deeper">
        <outline text="Nested Feed" type="rss" xmlUrl="https://nested.example/feed"/>
      </outline>
    </outline>
    <outline text="Rootless" type="rss" xmlUrl="https://root.example/feed"/>
  </body>
</opml>`

	subs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	if len(subs) != 3 {
		t.Fatalf("Expected 3 subscriptions, got %d", len(subs))
	}

	if subs[0].Category != "Tech" || subs[0].URL != "https://go.dev/blog/feed.atom" {
		t.Errorf("Unexpected first subscription: %+v", subs[0])
	}
	// Nesting collapses to the outermost folder.
	if subs[1].Category != "Tech" || subs[1].Title != "Nested Feed" {
		t.Errorf("Nested feed should inherit the outer folder: %+v", subs[1])
	}
	if subs[2].Category != "" {
		t.Errorf("Root-level feed should carry no category, got %q", subs[2].Category)
	}
}

func TestParseTitleFallsBackToText(t *testing.T) {
	doc := `<opml version="2.0"><body>
<outline text="Only Text" type="rss" xmlUrl="https://example.com/feed"/>
</body></opml>`

	subs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if subs[0].Title != "Only Text" {
		t.Errorf("Expected text attribute as title, got %q", subs[0].Title)
	}
}

func TestParseInvalidXML(t *testing.T) {
	if _, err := Parse(strings.NewReader("not xml at all")); err == nil {
		t.Error("Expected an error for invalid XML")
	}
}

func TestExportRoundTrip(t *testing.T) {
	folders := []Folder{
		{Name: "News", Feeds: []Subscription{
			{Title: "Example News", URL: "https://news.example/feed"},
			{Title: "Other News", URL: "https://other.example/rss"},
		}},
		{Name: "Video", Feeds: []Subscription{
			{Title: "Clips", URL: "https://clips.example/feed.xml"},
		}},
	}

	data, err := Export("Subscriptions", folders)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("<?xml")) {
		t.Error("Export should start with an XML header")
	}

	subs, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	if len(subs) != 3 {
		t.Fatalf("Expected 3 subscriptions after round trip, got %d", len(subs))
	}
	if subs[0].Category != "News" || subs[0].Title != "Example News" {
		t.Errorf("Category grouping lost: %+v", subs[0])
	}
	if subs[2].Category != "Video" || subs[2].URL != "https://clips.example/feed.xml" {
		t.Errorf("Category grouping lost: %+v", subs[2])
	}
}

func TestExportEmptyFolderKept(t *testing.T) {
	data, err := Export("Subscriptions", []Folder{{Name: "Empty"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `text="Empty"`) {
		t.Error("Empty folder outline should still be written")
	}
}
