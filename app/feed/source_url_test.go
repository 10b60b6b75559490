package feed

import (
	"testing"
)

func TestNormalizeSourceURLReddit(t *testing.T) {
	cases := []string{
		"https://www.reddit.com/r/golang",
		"https://reddit.com/r/golang/",
		"reddit.com/r/golang",
	}

	for _, input := range cases {
		got := NormalizeSourceURL(input, "")
		if got != "https://www.reddit.com/r/golang/.rss" {
			t.Errorf("NormalizeSourceURL(%q) = %q", input, got)
		}
	}
}

func TestNormalizeSourceURLPinterest(t *testing.T) {
	got := NormalizeSourceURL("https://www.pinterest.com/someuser", "")
	if got != "https://www.pinterest.com/someuser/feed.rss" {
		t.Errorf("Got %q", got)
	}

	// Already a feed URL
	already := "https://www.pinterest.com/someuser/feed.rss"
	if got := NormalizeSourceURL(already, ""); got != already {
		t.Errorf("Feed URL should pass through, got %q", got)
	}
}

func TestNormalizeSourceURLYouTubeChannel(t *testing.T) {
	got := NormalizeSourceURL("https://www.youtube.com/channel/UCabc123", "")
	if got != "https://www.youtube.com/feeds/videos.xml?channel_id=UCabc123" {
		t.Errorf("Got %q", got)
	}

	already := "https://www.youtube.com/feeds/videos.xml?channel_id=UCabc123"
	if got := NormalizeSourceURL(already, ""); got != already {
		t.Errorf("Feed URL should pass through, got %q", got)
	}
}

func TestNormalizeSourceURLYouTubeHandle(t *testing.T) {
	got := NormalizeSourceURL("https://www.youtube.com/@somecreator", "https://bridge.local")
	expected := "https://bridge.local/?action=display&bridge=Youtube&custom=somecreator&format=Atom"
	if got != expected {
		t.Errorf("Got %q, expected %q", got, expected)
	}
}

func TestNormalizeSourceURLYouTubeHandleWithoutBridge(t *testing.T) {
	input := "https://www.youtube.com/@somecreator"
	if got := NormalizeSourceURL(input, ""); got != input {
		t.Errorf("Without a bridge the URL should pass through, got %q", got)
	}
}

func TestNormalizeSourceURLTikTok(t *testing.T) {
	got := NormalizeSourceURL("https://www.tiktok.com/@someuser", "https://bridge.local")
	expected := "https://bridge.local/?action=display&bridge=TikTok&username=@someuser&format=Atom"
	if got != expected {
		t.Errorf("Got %q, expected %q", got, expected)
	}
}

func TestNormalizeSourceURLTikTokWithoutBridge(t *testing.T) {
	input := "https://www.tiktok.com/@someuser"
	if got := NormalizeSourceURL(input, ""); got != input {
		t.Errorf("Without a bridge the URL should pass through, got %q", got)
	}
}

func TestNormalizeSourceURLLemmy(t *testing.T) {
	got := NormalizeSourceURL("https://lemmy.world/c/technology", "")
	if got != "https://lemmy.world/feeds/c/technology.xml?sort=New" {
		t.Errorf("Got %q", got)
	}
}

func TestNormalizeSourceURLLemmyGuard(t *testing.T) {
	// A /c/ path on a non-lemmy host must not be rewritten.
	input := "https://example.com/c/whatever"
	if got := NormalizeSourceURL(input, ""); got != input {
		t.Errorf("Non-lemmy host should pass through, got %q", got)
	}
}

func TestNormalizeSourceURLDeviantArt(t *testing.T) {
	got := NormalizeSourceURL("https://www.deviantart.com/someartist", "")
	if got != "https://backend.deviantart.com/rss.xml?q=gallery:someartist" {
		t.Errorf("Got %q", got)
	}
}

func TestNormalizeSourceURLPassThrough(t *testing.T) {
	cases := []string{
		"https://example.com/blog",
		"https://example.com/feed.xml",
		"https://news.ycombinator.com/rss",
	}

	for _, input := range cases {
		if got := NormalizeSourceURL(input, "https://bridge.local"); got != input {
			t.Errorf("Expected %q unchanged, got %q", input, got)
		}
	}
}
