package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/extensions"
)

// Parser wraps gofeed and flattens its model into the Entry shape the
// ingestion pipeline consumes.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Parse(data []byte) (*ParsedFeed, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	parsed := &ParsedFeed{
		Metadata: Metadata{
			Title:       feed.Title,
			Link:        feed.Link,
			Description: feed.Description,
		},
	}

	parsed.Entries = make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		parsed.Entries = append(parsed.Entries, p.normalizeItem(item))
	}

	return parsed, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		Title:   item.Title,
		Link:    item.Link,
		Summary: item.Description,
		Content: item.Content,
	}

	if item.Author != nil {
		entry.Author = item.Author.Name
	}
	if entry.Author == "" && len(item.Authors) > 0 && item.Authors[0] != nil {
		entry.Author = item.Authors[0].Name
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		entry.Creator = item.DublinCoreExt.Creator[0]
	}

	entry.Published = item.PublishedParsed
	entry.Updated = item.UpdatedParsed
	if entry.Published == nil && entry.Updated == nil {
		entry.RawDate = cmp.Or(item.Published, item.Updated)
	}

	entry.Images = p.collectImages(item)

	return entry
}

// collectImages gathers thumbnail candidates from media:thumbnail,
// media:content and image-typed enclosures, in that order. item.Image is
// appended last, and only when it is not already in the list: gofeed derives
// it from the media extensions, so it usually duplicates a candidate with a
// declared width.
func (p *Parser) collectImages(item *gofeed.Item) []ImageCandidate {
	var candidates []ImageCandidate

	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["thumbnail"] {
			candidates = appendMediaCandidate(candidates, ext, false)
		}
		for _, ext := range media["content"] {
			candidates = appendMediaCandidate(candidates, ext, true)
		}
	}

	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}
		if strings.Contains(enclosure.Type, "image") && enclosure.URL != "" {
			candidates = append(candidates, ImageCandidate{URL: enclosure.URL})
		}
	}

	if item.Image != nil && item.Image.URL != "" && !hasCandidateURL(candidates, item.Image.URL) {
		candidates = append(candidates, ImageCandidate{URL: item.Image.URL})
	}

	return candidates
}

func hasCandidateURL(candidates []ImageCandidate, url string) bool {
	for _, c := range candidates {
		if c.URL == url {
			return true
		}
	}
	return false
}

// appendMediaCandidate adds one media-RSS extension element. media:content
// declares a medium/type that must look like an image; media:thumbnail is an
// image by definition.
func appendMediaCandidate(candidates []ImageCandidate, ext ext.Extension, checkType bool) []ImageCandidate {
	url := ext.Attrs["url"]
	if url == "" {
		return candidates
	}

	if checkType {
		medium := ext.Attrs["medium"]
		mimeType := ext.Attrs["type"]
		if medium != "image" && !strings.Contains(mimeType, "image") {
			return candidates
		}
	}

	width := 0
	if w := ext.Attrs["width"]; w != "" {
		if parsed, err := strconv.Atoi(w); err == nil {
			width = parsed
		}
	}

	return append(candidates, ImageCandidate{URL: url, Width: width})
}
