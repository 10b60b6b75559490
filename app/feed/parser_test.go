package feed

import (
	"testing"
)

func TestParseRSS(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <description>First summary</description>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <dc:creator>Jane Writer</dc:creator>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
      <description>Second summary</description>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	parsed, err := parser.Parse([]byte(rssData))
	if err != nil {
		t.Fatal(err)
	}

	if parsed.Metadata.Title != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got '%s'", parsed.Metadata.Title)
	}
	if parsed.Metadata.Link != "https://example.com" {
		t.Errorf("Expected link 'https://example.com', got '%s'", parsed.Metadata.Link)
	}
	if !parsed.Viable() {
		t.Error("Parsed feed with entries should be viable")
	}

	if len(parsed.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(parsed.Entries))
	}

	first := parsed.Entries[0]
	if first.Title != "First Post" {
		t.Errorf("Expected title 'First Post', got '%s'", first.Title)
	}
	if first.Link != "https://example.com/first" {
		t.Errorf("Expected link 'https://example.com/first', got '%s'", first.Link)
	}
	if first.Summary != "First summary" {
		t.Errorf("Expected summary 'First summary', got '%s'", first.Summary)
	}
	if first.Published == nil {
		t.Error("Expected published date to be parsed")
	}
	if first.Creator != "Jane Writer" {
		t.Errorf("Expected creator 'Jane Writer', got '%s'", first.Creator)
	}
	if first.RawDate != "" {
		t.Errorf("RawDate should be empty when the date parsed, got '%s'", first.RawDate)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <link href="https://example.org/"/>
  <entry>
    <title>Atom Entry</title>
    <link href="https://example.org/entry1"/>
    <id>urn:uuid:1</id>
    <updated>2023-07-03T12:00:00Z</updated>
    <author><name>Atom Author</name></author>
    <content type="html">&lt;p&gt;Full content&lt;/p&gt;</content>
  </entry>
</feed>`

	parser := NewParser()
	parsed, err := parser.Parse([]byte(atomData))
	if err != nil {
		t.Fatal(err)
	}

	if len(parsed.Entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(parsed.Entries))
	}

	entry := parsed.Entries[0]
	if entry.Author != "Atom Author" {
		t.Errorf("Expected author 'Atom Author', got '%s'", entry.Author)
	}
	if entry.Content != "<p>Full content</p>" {
		t.Errorf("Expected HTML content, got '%s'", entry.Content)
	}
	if entry.Updated == nil {
		t.Error("Expected updated date to be parsed")
	}
}

func TestParseRawDateFallback(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Odd Dates</title>
    <item>
      <title>Entry</title>
      <link>https://example.com/entry</link>
      <pubDate>Jul 3</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	parsed, err := parser.Parse([]byte(rssData))
	if err != nil {
		t.Fatal(err)
	}

	entry := parsed.Entries[0]
	if entry.Published != nil {
		t.Error("Unparseable pubDate should leave Published nil")
	}
	if entry.RawDate != "Jul 3" {
		t.Errorf("Expected raw date 'Jul 3', got '%s'", entry.RawDate)
	}
}

func TestParseMediaThumbnails(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Media Feed</title>
    <item>
      <title>With media</title>
      <link>https://example.com/media</link>
      <media:thumbnail url="https://cdn.example.com/thumb.jpg" width="480"/>
      <media:content url="https://cdn.example.com/full.jpg" medium="image" width="1280"/>
      <media:content url="https://cdn.example.com/clip.mp4" medium="video"/>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	parsed, err := parser.Parse([]byte(rssData))
	if err != nil {
		t.Fatal(err)
	}

	images := parsed.Entries[0].Images
	if len(images) != 2 {
		t.Fatalf("Expected 2 image candidates (video excluded), got %d", len(images))
	}
	if images[0].URL != "https://cdn.example.com/thumb.jpg" || images[0].Width != 480 {
		t.Errorf("Unexpected first candidate: %+v", images[0])
	}
	if images[1].URL != "https://cdn.example.com/full.jpg" || images[1].Width != 1280 {
		t.Errorf("Unexpected second candidate: %+v", images[1])
	}
}

func TestParseInvalidData(t *testing.T) {
	parser := NewParser()

	if _, err := parser.Parse([]byte("this is not XML")); err == nil {
		t.Error("Expected an error for non-feed data")
	}
}

func TestViable(t *testing.T) {
	empty := &ParsedFeed{}
	if empty.Viable() {
		t.Error("Feed without entries or title should not be viable")
	}

	titled := &ParsedFeed{Metadata: Metadata{Title: "Quiet Feed"}}
	if !titled.Viable() {
		t.Error("Feed with a title should be viable even without entries")
	}
}
