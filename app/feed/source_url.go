package feed

import (
	"fmt"
	"regexp"
	"strings"
)

// Platform URL rewrite patterns. Each matches (optional scheme)(optional
// www)host/path; non-matching input passes through unchanged to the next
// rule, so a failed match never blocks normalization.
var (
	redditPattern    = regexp.MustCompile(`^(?:https?://)?(?:www\.)?reddit\.com/(r/[^/\s]+)/?$`)
	pinterestPattern = regexp.MustCompile(`^(?:https?://)?(?:\w+\.)?pinterest\.\w+/([^/\s]+)/?$`)
	youtubePattern   = regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/channel/([^/\s?]+)/?`)
	youtubeHandle    = regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/@([^/\s?]+)/?`)
	tiktokPattern    = regexp.MustCompile(`^(?:https?://)?(?:www\.)?tiktok\.com/@([^/\s?]+)/?`)
	lemmyPattern     = regexp.MustCompile(`^(?:https?://)?([\w.-]+)/c/([\w.@-]+)/?$`)
	deviantPattern   = regexp.MustCompile(`^(?:https?://)?(?:www\.)?deviantart\.com/([^/\s]+)/?$`)
)

// NormalizeSourceURL rewrites URLs for known platforms into their
// syndication-feed equivalents. Rules apply independently; anything
// unrecognized is returned as given. bridgeURL enables the short-video
// rewrite and may be empty.
func NormalizeSourceURL(raw, bridgeURL string) string {
	url := strings.TrimSpace(raw)

	if m := redditPattern.FindStringSubmatch(url); m != nil {
		return "https://www.reddit.com/" + m[1] + "/.rss"
	}

	if m := pinterestPattern.FindStringSubmatch(url); m != nil && !strings.Contains(url, ".rss") {
		return "https://www.pinterest.com/" + m[1] + "/feed.rss"
	}

	if m := youtubePattern.FindStringSubmatch(url); m != nil && !strings.Contains(url, "feeds/") {
		return "https://www.youtube.com/feeds/videos.xml?channel_id=" + m[1]
	}

	// Handle URLs carry no channel id, so they go through the bridge.
	if m := youtubeHandle.FindStringSubmatch(url); m != nil && bridgeURL != "" && !strings.Contains(url, "feeds/") {
		return fmt.Sprintf("%s/?action=display&bridge=Youtube&custom=%s&format=Atom",
			strings.TrimRight(bridgeURL, "/"), m[1])
	}

	if m := tiktokPattern.FindStringSubmatch(url); m != nil && bridgeURL != "" {
		return fmt.Sprintf("%s/?action=display&bridge=TikTok&username=@%s&format=Atom",
			strings.TrimRight(bridgeURL, "/"), m[1])
	}

	if m := lemmyPattern.FindStringSubmatch(url); m != nil && isLemmyHost(m[1]) {
		return fmt.Sprintf("https://%s/feeds/c/%s.xml?sort=New", m[1], m[2])
	}

	if m := deviantPattern.FindStringSubmatch(url); m != nil {
		return "https://backend.deviantart.com/rss.xml?q=gallery:" + m[1]
	}

	return url
}

// isLemmyHost guards the /c/ community rewrite against matching arbitrary
// sites that happen to carry a /c/ path.
func isLemmyHost(host string) bool {
	return strings.HasPrefix(host, "lemmy.") || strings.Contains(host, ".lemmy.")
}
