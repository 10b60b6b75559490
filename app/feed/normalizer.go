package feed

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Feed artifacts stripped from every text field. Publishers truncate
// summaries with a zoo of ellipsis renderings.
// Entities are decoded first, so &hellip; arrives here as a bare ellipsis.
var artifactStrings = []string{"[…]", "…", "&hellip;", "..."}

var tagPattern = regexp.MustCompile(`<[^<]+?>`)

// Normalize decodes HTML entities, strips common feed artifacts and trims
// whitespace. With keepTags false any <...> span is removed; this is a tag
// match, not an HTML parse. Empty input yields an empty string.
//
// Entities are decoded exactly once: double-encoded input (&amp;lt;) keeps
// one level of encoding, so a second pass over the same text can strip tags
// the first pass left as entities.
func Normalize(text string, keepTags bool) string {
	if text == "" {
		return ""
	}

	text = html.UnescapeString(text)
	text = norm.NFC.String(text)
	for _, artifact := range artifactStrings {
		text = strings.ReplaceAll(text, artifact, "")
	}
	if !keepTags {
		text = tagPattern.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}

// TruncateAtWord shortens text to at most maxLen characters plus the suffix,
// cutting at the last space before the limit. It never splits a word when a
// boundary exists; text without spaces is hard-cut at maxLen.
func TruncateAtWord(text string, maxLen int, suffix string) string {
	if len(text) <= maxLen {
		return text
	}

	lastSpace := strings.LastIndex(text[:maxLen], " ")
	if lastSpace == -1 {
		return text[:maxLen] + suffix
	}
	return text[:lastSpace] + suffix
}
