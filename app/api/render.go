package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"tributary/app/database"
)

// JSON shaping for the catalog payloads. Timestamps go out as RFC 3339.

func categoriesJSON(categories []database.Category) []gin.H {
	out := make([]gin.H, 0, len(categories))
	for _, c := range categories {
		out = append(out, gin.H{"id": c.ID, "name": c.Name})
	}
	return out
}

func sourceJSON(s *database.Source) gin.H {
	item := gin.H{
		"id":               s.ID,
		"title":            s.Title,
		"url":              s.URL,
		"kind":             s.Kind,
		"category_id":      s.CategoryID,
		"exclude_from_all": s.ExcludeFromAll,
		"layout":           s.Layout,
	}
	if s.DeletedAt != nil {
		item["deleted_at"] = s.DeletedAt.Format(time.RFC3339)
	}
	return item
}

func sourcesJSON(sources []database.Source) []gin.H {
	out := make([]gin.H, 0, len(sources))
	for i := range sources {
		out = append(out, sourceJSON(&sources[i]))
	}
	return out
}

func streamsJSON(streams []database.Stream) []gin.H {
	out := make([]gin.H, 0, len(streams))
	for _, s := range streams {
		item := gin.H{"id": s.ID, "name": s.Name}
		if s.DeletedAt != nil {
			item["deleted_at"] = s.DeletedAt.Format(time.RFC3339)
		}
		out = append(out, item)
	}
	return out
}

func linksJSON(links []database.StreamLink) []gin.H {
	out := make([]gin.H, 0, len(links))
	for _, l := range links {
		out = append(out, gin.H{"stream_id": l.StreamID, "source_id": l.SourceID})
	}
	return out
}

func articlesJSON(articles []database.Article) []gin.H {
	out := make([]gin.H, 0, len(articles))
	for i := range articles {
		a := &articles[i]
		out = append(out, gin.H{
			"id":            a.ID,
			"source_id":     a.SourceID,
			"source_title":  a.SourceTitle,
			"title":         a.Title,
			"link":          a.Link,
			"summary":       a.Summary,
			"image_url":     a.ImageURL,
			"author":        a.Author,
			"published":     a.Published.Format(time.RFC3339),
			"is_favorite":   a.IsFavorite,
			"is_read_later": a.IsReadLater,
			"is_read":       a.IsRead,
		})
	}
	return out
}
