package feed

import (
	"time"
)

// Metadata describes the feed itself, as opposed to its entries.
type Metadata struct {
	Title       string
	Link        string
	Description string
}

// ImageCandidate is one possible thumbnail mined from entry metadata.
// Width is 0 when the feed declared none.
type ImageCandidate struct {
	URL   string
	Width int
}

// Entry is a single parsed feed entry before ingestion.
type Entry struct {
	Title   string
	Link    string
	Summary string
	Content string
	Author  string
	Creator string // dc:creator fallback

	Published *time.Time
	Updated   *time.Time
	RawDate   string // unparsed date string, when the parsed fields are absent

	Images []ImageCandidate
}

// ParsedFeed is the output of Parser.Parse and the input of Ingestor.Ingest.
type ParsedFeed struct {
	Metadata Metadata
	Entries  []Entry
}

// Viable reports whether a parse produced something worth keeping: at least
// one entry, or a feed-level title.
func (p *ParsedFeed) Viable() bool {
	return p != nil && (len(p.Entries) > 0 || p.Metadata.Title != "")
}

// CacheTokens are the opaque conditional-fetch validators stored per source.
type CacheTokens struct {
	ETag         string
	LastModified string
}

func (t CacheTokens) Empty() bool {
	return t.ETag == "" && t.LastModified == ""
}

// FetchResult is the outcome of one HTTP fetch.
type FetchResult struct {
	StatusCode  int
	NotModified bool
	Body        []byte
	ContentType string
	FinalURL    string // post-redirect URL
	Tokens      CacheTokens
}
