package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tributary/app/cfg"
	"tributary/app/database"
	"tributary/app/feed"
	"tributary/app/opml"
)

// Refresh runs a full refresh pass. force=1 bypasses conditional request
// tokens. Per-source failures come back in the payload; the status is only
// an error when every source failed.
func (h *Handler) Refresh(c *gin.Context) {
	force := c.Query("force") == "1"

	result, err := h.orchestrator.RefreshAll(c.Request.Context(), force)
	if err != nil {
		if result != nil {
			c.JSON(http.StatusBadGateway, result)
			return
		}
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) RefreshSource(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	source, err := h.sources.GetSource(id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if source == nil || source.DeletedAt != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return
	}

	result, err := h.orchestrator.RefreshSource(c.Request.Context(), source)
	if err != nil {
		if result != nil {
			c.JSON(http.StatusBadGateway, result)
			return
		}
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Cleanup deletes articles older than the retention window, keeping
// favorites and read-later entries, then compacts the database file.
func (h *Handler) Cleanup(c *gin.Context) {
	days := queryInt(c, "days", cfg.Get().RetentionDays)
	cutoff := time.Now().AddDate(0, 0, -days)

	deleted, err := h.articles.DeleteOlderThan(cutoff)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if _, err := h.db.Exec(`VACUUM`); err != nil {
		slog.Warn("Vacuum after cleanup failed", "error", err)
	}

	slog.Info("Cleanup finished", "days", days, "deleted", deleted)

	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "days": days})
}

func (h *Handler) ExportOPML(c *gin.Context) {
	categories, err := h.categories.ListCategories()
	if err != nil {
		h.renderError(c, err)
		return
	}

	var folders []opml.Folder
	for _, category := range categories {
		sources, err := h.sources.ListSourcesByCategory(category.ID)
		if err != nil {
			h.renderError(c, err)
			return
		}
		folder := opml.Folder{Name: category.Name}
		for _, source := range sources {
			folder.Feeds = append(folder.Feeds, opml.Subscription{
				Title: source.Title,
				URL:   source.URL,
			})
		}
		folders = append(folders, folder)
	}

	data, err := opml.Export("Tributary subscriptions", folders)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="subscriptions.opml"`)
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}

// ImportOPML adds the feeds from an uploaded OPML document. Discovery is
// skipped: the xmlUrl is trusted, only platform URL rewriting applies.
// Duplicates are skipped and counted.
func (h *Handler) ImportOPML(c *gin.Context) {
	subs, err := opml.Parse(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, skipped := 0, 0
	var errs []string

	for _, sub := range subs {
		categoryID, err := h.importCategory(sub.Category)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", sub.URL, err))
			continue
		}

		url := feed.NormalizeSourceURL(sub.URL, cfg.Get().BridgeURL)

		existing, err := h.sources.GetSourceByURL(url)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", sub.URL, err))
			continue
		}
		if existing != nil {
			skipped++
			continue
		}

		title := sub.Title
		if title == "" {
			title = hostOf(url)
		}

		if _, err := h.sources.CreateSource(title, url, string(feed.ClassifyURL(url)), categoryID); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", sub.URL, err))
			continue
		}
		added++
	}

	slog.Info("OPML import finished", "added", added, "skipped", skipped, "errors", len(errs))

	c.JSON(http.StatusOK, gin.H{"added": added, "skipped": skipped, "errors": errs})
}

func (h *Handler) importCategory(name string) (int64, error) {
	if name == "" {
		name = database.UncategorizedName
	}

	category, err := h.categories.GetCategoryByName(name)
	if err != nil {
		return 0, err
	}
	if category != nil {
		return category.ID, nil
	}

	category, err = h.categories.CreateCategory(name)
	if err != nil {
		return 0, err
	}
	return category.ID, nil
}
