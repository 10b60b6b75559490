package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateStream(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	stream, err := h.streams.CreateStream(req.Name)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": stream.ID, "name": stream.Name})
}

func (h *Handler) DeleteStream(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	if err := h.streams.SoftDeleteStream(id, time.Now()); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) PermanentDeleteStream(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	if err := h.streams.HardDeleteStream(id); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) RestoreStream(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	if err := h.streams.RestoreStream(id); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// AddStreamSource puts an active source into an active stream. Repeating
// the call is a no-op.
func (h *Handler) AddStreamSource(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	var req streamSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_id is required"})
		return
	}

	stream, err := h.streams.GetStream(id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if stream == nil || stream.DeletedAt != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stream not found"})
		return
	}

	source, err := h.sources.GetSource(req.SourceID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return
	}
	if source.DeletedAt != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot add a removed source to a stream"})
		return
	}

	if err := h.streams.AddSourceToStream(id, req.SourceID); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream_id": id, "source_id": req.SourceID})
}

func (h *Handler) RemoveStreamSource(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	sourceID, err := strconv.ParseInt(c.Param("source_id"), 10, 64)
	if err != nil || sourceID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source_id"})
		return
	}

	if err := h.streams.RemoveSourceFromStream(id, sourceID); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream_id": id, "source_id": sourceID})
}
