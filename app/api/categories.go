package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCategory(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	category, err := h.categories.CreateCategory(req.Name)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": category.ID, "name": category.Name})
}

func (h *Handler) RenameCategory(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.categories.RenameCategory(id, req.Name); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "name": req.Name})
}

// DeleteCategory removes the category and reparents its sources to
// Uncategorized in the same transaction.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	if err := h.categories.DeleteCategory(h.db, id); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}
