package feed

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"tributary/app/database"
)

// UnknownAuthor is the sentinel stored when no author can be resolved.
const UnknownAuthor = "Unknown Author"

const summaryMaxLen = 300

// placeholderTitles are generic titles some platforms emit for every entry;
// they get replaced with the start of the entry body.
var placeholderTitles = map[string]bool{
	"video":            true,
	"untitled":         true,
	"tiktok":           true,
	"(untitled)":       true,
	"no title":         true,
	"untitled article": true,
}

// ArticleStore is the persistence surface the ingestion pipeline writes
// through. During a refresh it is transaction-scoped.
type ArticleStore interface {
	ArticleExists(link string) (bool, error)
	InsertArticle(a *database.Article) error
}

// Ingestor converts parsed feed documents into stored articles. It performs
// no network calls; fetching and parsing happen upstream.
type Ingestor struct {
	now func() time.Time
}

func NewIngestor() *Ingestor {
	return &Ingestor{now: time.Now}
}

// Ingest walks the entries in feed order and persists the new ones. Entries
// whose link already exists, in the store or earlier in the same batch, are
// skipped; the entry link is the dedup key. Returns the number of articles
// added.
func (i *Ingestor) Ingest(source *database.Source, parsed *ParsedFeed, store ArticleStore) (int, error) {
	kind := Kind(source.Kind)
	seen := make(map[string]bool, len(parsed.Entries))
	added := 0

	for idx := range parsed.Entries {
		entry := &parsed.Entries[idx]
		if entry.Link == "" || seen[entry.Link] {
			continue
		}
		seen[entry.Link] = true

		exists, err := store.ArticleExists(entry.Link)
		if err != nil {
			return added, fmt.Errorf("failed to check for duplicate: %w", err)
		}
		if exists {
			continue
		}

		article := i.buildArticle(source, entry, kind)
		if err := store.InsertArticle(article); err != nil {
			return added, fmt.Errorf("failed to insert article %s: %w", entry.Link, err)
		}
		added++
	}

	slog.Debug("Ingested feed", "source", source.Title, "entries", len(parsed.Entries), "added", added)

	return added, nil
}

func (i *Ingestor) buildArticle(source *database.Source, entry *Entry, kind Kind) *database.Article {
	content := entry.Content
	if content == "" {
		content = entry.Summary
	}

	summary := Normalize(entry.Summary, false)
	if summary == "" {
		summary = Normalize(content, false)
	}
	summary = TruncateAtWord(summary, summaryMaxLen, "...")

	plainBody := Normalize(content, false)

	return &database.Article{
		SourceID:    source.ID,
		Title:       i.resolveTitle(entry, plainBody),
		Link:        entry.Link,
		Summary:     summary,
		FullContent: Normalize(content, true),
		ImageURL:    ResolveImage(entry, kind),
		Author:      i.resolveAuthor(entry, source, kind),
		Published:   i.resolvePublished(entry),
	}
}

// resolvePublished prefers the entry's parsed date fields, then a raw date
// string against a couple of known formats, then the ingestion time.
func (i *Ingestor) resolvePublished(entry *Entry) time.Time {
	if entry.Published != nil {
		return *entry.Published
	}
	if entry.Updated != nil {
		return *entry.Updated
	}

	if raw := strings.TrimSpace(entry.RawDate); raw != "" {
		// Month-day shorthand like "Jan 2" must be tried before the generic
		// parser, which accepts it too but yields year zero.
		if t, err := time.Parse("Jan 2", raw); err == nil {
			now := i.now()
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t
		}
	}

	return i.now()
}

// resolveTitle cleans the entry title, swapping known generic placeholders
// ("Video", "Untitled", ...) for the start of the plain-text body.
func (i *Ingestor) resolveTitle(entry *Entry, plainBody string) string {
	title := Normalize(entry.Title, false)

	if placeholderTitles[strings.ToLower(title)] && plainBody != "" {
		return TruncateAtWord(plainBody, 100, "")
	}
	if title == "" {
		if plainBody != "" {
			return TruncateAtWord(plainBody, 100, "")
		}
		return "Untitled Article"
	}

	return title
}

// resolveAuthor prefers the entry author, then dc:creator; author-less
// platforms fall back to the source's own title, everything else to the
// sentinel.
func (i *Ingestor) resolveAuthor(entry *Entry, source *database.Source, kind Kind) string {
	if author := Normalize(entry.Author, false); author != "" {
		return author
	}
	if creator := Normalize(entry.Creator, false); creator != "" {
		return creator
	}
	if kind.IsAuthorless() && source.Title != "" {
		return source.Title
	}
	return UnknownAuthor
}
