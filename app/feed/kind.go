package feed

import "strings"

// Kind is the closed classification of a source, computed once from its
// canonical URL and passed down instead of re-matching in every component.
type Kind string

const (
	KindGeneric     Kind = "generic"
	KindYouTube     Kind = "youtube"
	KindVimeo       Kind = "vimeo"
	KindDailymotion Kind = "dailymotion"
	KindTikTok      Kind = "tiktok"
	KindReddit      Kind = "reddit"
	KindPinterest   Kind = "pinterest"
	KindLemmy       Kind = "lemmy"
	KindPortfolio   Kind = "portfolio"
)

// ClassifyURL maps a source URL onto its Kind. Unrecognized hosts are
// KindGeneric.
func ClassifyURL(url string) Kind {
	u := strings.ToLower(url)

	switch {
	case strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be"):
		return KindYouTube
	case strings.Contains(u, "vimeo.com"):
		return KindVimeo
	case strings.Contains(u, "dailymotion.com"):
		return KindDailymotion
	case strings.Contains(u, "tiktok.com") || strings.Contains(u, "bridge=tiktok"):
		return KindTikTok
	case strings.Contains(u, "reddit.com"):
		return KindReddit
	case strings.Contains(u, "pinterest.com"):
		return KindPinterest
	case strings.Contains(u, "lemmy.") || strings.Contains(u, "/feeds/c/"):
		return KindLemmy
	case strings.Contains(u, "deviantart.com") || strings.Contains(u, "behance.net"):
		return KindPortfolio
	default:
		return KindGeneric
	}
}

// IsVideo reports whether articles from this kind belong in the videos view.
func (k Kind) IsVideo() bool {
	switch k {
	case KindYouTube, KindVimeo, KindDailymotion, KindTikTok:
		return true
	}
	return false
}

// IsForum reports whether this kind belongs in the threads/forums view.
func (k Kind) IsForum() bool {
	return k == KindReddit || k == KindLemmy
}

// IsAuthorless reports whether this platform's feeds omit per-entry authors,
// in which case ingestion falls back to the source title.
func (k Kind) IsAuthorless() bool {
	switch k {
	case KindVimeo, KindTikTok, KindDailymotion:
		return true
	}
	return false
}

// VideoKinds and ForumKinds are the kind lists backing the corresponding
// article views.
func VideoKinds() []string {
	return []string{string(KindYouTube), string(KindVimeo), string(KindDailymotion), string(KindTikTok)}
}

func ForumKinds() []string {
	return []string{string(KindReddit), string(KindLemmy)}
}

// SiteKinds covers everything that is neither video nor forum.
func SiteKinds() []string {
	return []string{string(KindGeneric), string(KindPinterest), string(KindPortfolio)}
}
