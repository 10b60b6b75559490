package feed

import (
	"regexp"
	"strings"
)

// Thumbnail URL patterns for video platforms. The video id is recovered from
// the entry link, not from media metadata, because both platforms publish
// predictable thumbnail URLs while their feeds often carry none.
var (
	youtubeIDPattern = regexp.MustCompile(`(?:v=|/shorts/|youtu\.be/|/videos/)([A-Za-z0-9_-]{11})`)
	vimeoIDPattern   = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)

	imgSrcPattern = regexp.MustCompile(`<img [^>]*src="([^"]+)"`)

	pinimgSizePattern  = regexp.MustCompile(`/(\d{3,4}x(?:\d{3,4})?|originals)/`)
	behanceSizePattern = regexp.MustCompile(`/projects/(\d{3,4})/`)
)

// pinimgUpgrades is the ordered list of path segments tried when upgrading a
// pin CDN thumbnail, best first.
var pinimgUpgrades = []string{"originals", "736x", "564x"}

// ResolveImage picks the best-effort image URL for an entry. It returns ""
// when nothing usable is found at any stage; it never errors.
func ResolveImage(entry *Entry, kind Kind) string {
	// Video platforms short-circuit: their links encode the video id.
	switch kind {
	case KindYouTube:
		if m := youtubeIDPattern.FindStringSubmatch(entry.Link); m != nil {
			return "https://i.ytimg.com/vi/" + m[1] + "/hqdefault.jpg"
		}
	case KindVimeo:
		if m := vimeoIDPattern.FindStringSubmatch(entry.Link); m != nil {
			return "https://vumbnail.com/" + m[1] + ".jpg"
		}
	}

	url := bestCandidate(entry.Images)

	if url == "" {
		url = scrapeImgTag(entry.Content)
	}
	if url == "" {
		url = scrapeImgTag(entry.Summary)
	}
	if url == "" {
		return ""
	}

	return rewriteCDN(url)
}

// bestCandidate keeps the widest declared candidate, or the first seen when
// no candidate declares a width.
func bestCandidate(candidates []ImageCandidate) string {
	best := ""
	bestWidth := -1
	for _, c := range candidates {
		if c.URL == "" {
			continue
		}
		if best == "" && bestWidth < 0 {
			best = c.URL
			bestWidth = c.Width
			continue
		}
		if c.Width > bestWidth {
			best = c.URL
			bestWidth = c.Width
		}
	}
	return best
}

func scrapeImgTag(html string) string {
	if html == "" {
		return ""
	}
	if m := imgSrcPattern.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

// rewriteCDN upgrades known thumbnail URLs to larger renditions.
func rewriteCDN(url string) string {
	if strings.Contains(url, "pinimg.com") {
		if strings.Contains(url, "/originals/") {
			return url
		}
		for _, size := range pinimgUpgrades {
			rewritten := pinimgSizePattern.ReplaceAllString(url, "/"+size+"/")
			if rewritten != url {
				return rewritten
			}
		}
		return url
	}

	if strings.Contains(url, "behance.net") {
		return behanceSizePattern.ReplaceAllString(url, "/projects/original/")
	}

	return url
}
