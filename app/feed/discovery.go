package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoFeedFound is the terminal discovery error after every stage has been
// exhausted.
var ErrNoFeedFound = errors.New("no feed found")

// feedPathSuffixes are common feed locations tried against the base URL, in
// order, when a direct parse fails.
var feedPathSuffixes = []string{
	"/feed",
	"/rss",
	"/feed.xml",
	"/rss.xml",
	"/atom.xml",
	"/index.xml",
	"/.rss",
}

// Discoverer locates a working feed for an arbitrary URL. Stages run in
// order and any stage failure falls through to the next; only full
// exhaustion is an error.
type Discoverer struct {
	client    FetchClient
	parser    *Parser
	bridgeURL string
}

func NewDiscoverer(client FetchClient, parser *Parser, bridgeURL string) *Discoverer {
	return &Discoverer{
		client:    client,
		parser:    parser,
		bridgeURL: strings.TrimRight(bridgeURL, "/"),
	}
}

// Discover returns the first working parsed feed and its canonical URL.
func (d *Discoverer) Discover(ctx context.Context, rawURL string) (*ParsedFeed, string, error) {
	base := ensureScheme(strings.TrimSpace(rawURL))

	// Stage 1: the URL may already be a feed.
	if parsed, canonical := d.tryParse(ctx, base); parsed != nil {
		return parsed, canonical, nil
	}

	// Stage 2: common feed paths.
	trimmed := strings.TrimRight(base, "/")
	for _, suffix := range feedPathSuffixes {
		if parsed, canonical := d.tryParse(ctx, trimmed+suffix); parsed != nil {
			return parsed, canonical, nil
		}
	}

	// Stage 3: fetch as a page; either it is XML after all, or its HTML
	// advertises an alternate feed link.
	if parsed, canonical := d.tryHTML(ctx, base); parsed != nil {
		return parsed, canonical, nil
	}

	// Stage 4: last resort, ask the bridge service.
	if d.bridgeURL != "" {
		if parsed, canonical := d.tryBridge(ctx, base); parsed != nil {
			return parsed, canonical, nil
		}
	}

	return nil, "", fmt.Errorf("%w for %s", ErrNoFeedFound, rawURL)
}

// tryParse fetches candidate and attempts a feed parse. Any failure is a
// stage failure, reported as a nil result.
func (d *Discoverer) tryParse(ctx context.Context, candidate string) (*ParsedFeed, string) {
	res, err := d.client.Get(ctx, candidate)
	if err != nil || res.StatusCode != http.StatusOK {
		return nil, ""
	}

	parsed, err := d.parser.Parse(res.Body)
	if err != nil || !parsed.Viable() {
		return nil, ""
	}

	canonical := candidate
	if res.FinalURL != "" {
		canonical = res.FinalURL
	}
	return parsed, canonical
}

func (d *Discoverer) tryHTML(ctx context.Context, base string) (*ParsedFeed, string) {
	res, err := d.client.Get(ctx, base)
	if err != nil || res.StatusCode != http.StatusOK {
		return nil, ""
	}

	finalURL := base
	if res.FinalURL != "" {
		finalURL = res.FinalURL
	}

	// Some servers serve feeds without a feed-looking URL; trust the
	// declared content type.
	contentType := strings.ToLower(res.ContentType)
	if strings.Contains(contentType, "xml") || strings.Contains(contentType, "rss") {
		if parsed, err := d.parser.Parse(res.Body); err == nil && parsed.Viable() {
			return parsed, finalURL
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(res.Body)))
	if err != nil {
		return nil, ""
	}

	href := ""
	doc.Find(`link[rel="alternate"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		linkType, _ := s.Attr("type")
		if linkType != "application/rss+xml" && linkType != "application/atom+xml" {
			return true
		}
		if h, ok := s.Attr("href"); ok && h != "" {
			href = h
			return false
		}
		return true
	})
	if href == "" {
		return nil, ""
	}

	resolved := resolveHref(finalURL, href)
	if resolved == "" {
		return nil, ""
	}

	return d.tryParse(ctx, resolved)
}

// bridgeFeed is one entry of the bridge service's findfeed response.
type bridgeFeed struct {
	URL        string            `json:"url"`
	Bridge     string            `json:"bridge"`
	Parameters map[string]string `json:"parameters"`
}

func (d *Discoverer) tryBridge(ctx context.Context, base string) (*ParsedFeed, string) {
	lookup := fmt.Sprintf("%s/?action=findfeed&url=%s&format=Atom", d.bridgeURL, url.QueryEscape(base))

	res, err := d.client.Get(ctx, lookup)
	if err != nil || res.StatusCode != http.StatusOK {
		return nil, ""
	}

	var found []bridgeFeed
	if err := json.Unmarshal(res.Body, &found); err != nil || len(found) == 0 {
		slog.Debug("Bridge lookup returned no feeds", "url", base)
		return nil, ""
	}

	candidate := found[0].URL
	if candidate == "" {
		candidate = d.bridgeDisplayURL(found[0])
	}
	if candidate == "" {
		return nil, ""
	}

	return d.tryParse(ctx, candidate)
}

// bridgeDisplayURL constructs a display URL from a bridge identifier and its
// parameters.
func (d *Discoverer) bridgeDisplayURL(f bridgeFeed) string {
	if f.Bridge == "" {
		return ""
	}

	display := fmt.Sprintf("%s/?action=display&bridge=%s&format=Atom", d.bridgeURL, url.QueryEscape(f.Bridge))

	keys := make([]string, 0, len(f.Parameters))
	for k := range f.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		display += "&" + url.QueryEscape(k) + "=" + url.QueryEscape(f.Parameters[k])
	}

	return display
}

func ensureScheme(rawURL string) string {
	if strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "https://" + rawURL
}

func resolveHref(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}
