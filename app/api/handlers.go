package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tributary/app/cfg"
	"tributary/app/database"
	"tributary/app/feed"
)

func NewHandler(db *database.DB, categories *database.CategoryRepository,
	sources *database.SourceRepository, articles *database.ArticleRepository,
	streams *database.StreamRepository, client feed.FetchClient,
	discoverer *feed.Discoverer, orchestrator *feed.Orchestrator,
	extractor ExtractorInterface) *Handler {
	return &Handler{
		db:           db,
		categories:   categories,
		sources:      sources,
		articles:     articles,
		streams:      streams,
		client:       client,
		discoverer:   discoverer,
		orchestrator: orchestrator,
		ingestor:     feed.NewIngestor(),
		extractor:    extractor,
	}
}

// renderError maps repository sentinels onto HTTP statuses. Everything else
// is a 500 with a generic body.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrImmutable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	if count, err := h.sources.GetSourceCount(); err == nil {
		health["sources"] = count
	}
	if count, err := h.articles.GetArticleCount(); err == nil {
		health["articles"] = count
	}

	c.JSON(http.StatusOK, health)
}

// GetData is the front-end bootstrap payload: the whole catalog minus the
// articles themselves.
func (h *Handler) GetData(c *gin.Context) {
	categories, err := h.categories.ListCategories()
	if err != nil {
		h.renderError(c, err)
		return
	}
	sources, err := h.sources.ListActiveSources()
	if err != nil {
		h.renderError(c, err)
		return
	}
	removedSources, err := h.sources.ListRemovedSources()
	if err != nil {
		h.renderError(c, err)
		return
	}
	streams, err := h.streams.ListActiveStreams()
	if err != nil {
		h.renderError(c, err)
		return
	}
	removedStreams, err := h.streams.ListRemovedStreams()
	if err != nil {
		h.renderError(c, err)
		return
	}
	links, err := h.streams.ListStreamLinks()
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories":      categoriesJSON(categories),
		"sources":         sourcesJSON(sources),
		"removed_sources": sourcesJSON(removedSources),
		"streams":         streamsJSON(streams),
		"removed_streams": streamsJSON(removedStreams),
		"stream_links":    linksJSON(links),
	})
}

func (h *Handler) ListArticles(c *gin.Context) {
	filter := database.ArticleFilter{
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 0),
		UnreadOnly: c.Query("unread") == "1",
	}

	view := c.DefaultQuery("view", "all")
	switch view {
	case "all", "favorites", "read-later":
		filter.View = view
	case "source", "category", "stream":
		id, err := strconv.ParseInt(c.Query("view_id"), 10, 64)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "view_id is required for view " + view})
			return
		}
		filter.View = view
		filter.ViewID = id
	case "author":
		author := c.Query("author")
		if author == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "author is required for view author"})
			return
		}
		filter.View = view
		filter.Author = author
	case "videos":
		filter.View = "kinds"
		filter.Kinds = feed.VideoKinds()
	case "forums":
		filter.View = "kinds"
		filter.Kinds = feed.ForumKinds()
	case "sites":
		filter.View = "kinds"
		filter.Kinds = feed.SiteKinds()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown view " + view})
		return
	}

	articles, total, err := h.articles.ListArticles(filter)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articlesJSON(articles),
		"total":    total,
		"page":     filter.Page,
	})
}

func (h *Handler) ToggleFavorite(c *gin.Context) {
	h.toggleArticleFlag(c, h.articles.ToggleFavorite, "is_favorite")
}

func (h *Handler) ToggleReadLater(c *gin.Context) {
	h.toggleArticleFlag(c, h.articles.ToggleReadLater, "is_read_later")
}

func (h *Handler) ToggleRead(c *gin.Context) {
	h.toggleArticleFlag(c, h.articles.ToggleRead, "is_read")
}

func (h *Handler) toggleArticleFlag(c *gin.Context, toggle func(int64) (bool, error), field string) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	value, err := toggle(id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, field: value})
}

// ExtractContent fetches the article page and fills in full_content via
// readability. Existing content is returned as-is.
func (h *Handler) ExtractContent(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	article, err := h.articles.GetArticle(id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}

	if article.FullContent != "" {
		c.JSON(http.StatusOK, gin.H{"id": id, "full_content": article.FullContent})
		return
	}

	result, err := h.client.Get(c.Request.Context(), article.Link)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch article page: " + err.Error()})
		return
	}
	if result.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "article page returned status " + strconv.Itoa(result.StatusCode)})
		return
	}

	content, err := h.extractor.Run(result.Body, article.Link)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.articles.SetFullContent(id, content); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "full_content": content})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
