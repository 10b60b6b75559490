package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"tributary/app/cfg"
	"tributary/app/database"
	"tributary/app/feed"
)

// CreateSource subscribes to a new feed: the URL is rewritten for known
// platforms, discovery locates the actual feed document, and the first batch
// of articles lands immediately.
func (h *Handler) CreateSource(c *gin.Context) {
	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	categoryID, err := h.resolveCategoryID(req.CategoryID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	normalized := feed.NormalizeSourceURL(req.URL, cfg.Get().BridgeURL)

	parsed, canonicalURL, err := h.discoverer.Discover(c.Request.Context(), normalized)
	if err != nil {
		if errors.Is(err, feed.ErrNoFeedFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("no feed found at %s", req.URL)})
			return
		}
		h.renderError(c, err)
		return
	}

	existing, err := h.sources.GetSourceByURL(canonicalURL)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "source already exists", "id": existing.ID})
		return
	}

	title := parsed.Metadata.Title
	if title == "" {
		title = hostOf(canonicalURL)
	}
	kind := string(feed.ClassifyURL(canonicalURL))

	source, err := h.sources.CreateSource(title, canonicalURL, kind, categoryID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	added, err := h.ingestor.Ingest(source, parsed, h.articles)
	if err != nil {
		slog.Error("Initial ingest failed", "source", source.Title, "error", err)
	}

	slog.Info("Source created", "title", source.Title, "url", canonicalURL, "kind", kind, "added", added)

	c.JSON(http.StatusCreated, gin.H{"source": sourceJSON(source), "new_articles": added})
}

func (h *Handler) UpdateSource(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	var req updateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	source, err := h.sources.GetSource(id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return
	}

	title := source.Title
	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		title = *req.Title
	}
	layout := source.Layout
	if req.Layout != nil {
		layout = *req.Layout
	}
	excludeFromAll := source.ExcludeFromAll
	if req.ExcludeFromAll != nil {
		excludeFromAll = *req.ExcludeFromAll
	}

	if err := h.sources.UpdateSource(id, title, layout, excludeFromAll); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) DeleteSource(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	if err := h.sources.SoftDeleteSource(id, time.Now()); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) PermanentDeleteSource(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	if err := h.sources.HardDeleteSource(id); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// RestoreSource clears the tombstone. A restored source always comes back
// under Uncategorized, whatever category it was in before deletion.
func (h *Handler) RestoreSource(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	uncategorized, err := h.categories.GetUncategorized()
	if err != nil {
		h.renderError(c, err)
		return
	}

	if err := h.sources.RestoreSource(id, uncategorized.ID); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "category_id": uncategorized.ID})
}

func (h *Handler) MoveSource(c *gin.Context) {
	var req moveSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_id and category_id are required"})
		return
	}

	if err := h.moveOne(req.SourceID, req.CategoryID); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": req.SourceID, "category_id": req.CategoryID})
}

// ReassignSources moves a batch of sources, continuing past individual
// failures.
func (h *Handler) ReassignSources(c *gin.Context) {
	var req reassignSourcesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_ids and category_id are required"})
		return
	}

	moved := 0
	var errs []string
	for _, sourceID := range req.SourceIDs {
		if err := h.moveOne(sourceID, req.CategoryID); err != nil {
			errs = append(errs, fmt.Sprintf("source %d: %s", sourceID, err))
			continue
		}
		moved++
	}

	c.JSON(http.StatusOK, gin.H{"moved": moved, "errors": errs})
}

func (h *Handler) moveOne(sourceID, categoryID int64) error {
	category, err := h.categories.GetCategory(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("category %d: %w", categoryID, database.ErrNotFound)
	}
	return h.sources.MoveSource(sourceID, categoryID)
}

// resolveCategoryID defaults a zero category to Uncategorized.
func (h *Handler) resolveCategoryID(categoryID int64) (int64, error) {
	if categoryID == 0 {
		uncategorized, err := h.categories.GetUncategorized()
		if err != nil {
			return 0, err
		}
		return uncategorized.ID, nil
	}

	category, err := h.categories.GetCategory(categoryID)
	if err != nil {
		return 0, err
	}
	if category == nil {
		return 0, fmt.Errorf("category %d: %w", categoryID, database.ErrNotFound)
	}
	return categoryID, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
