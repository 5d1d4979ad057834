package handlers

import (
	"net/http"
	"strconv"

	"chat-realtime-api/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultRandomSongs = 6
	maxRandomSongs     = 50
)

// GetAllSongs handles GET /api/songs
func (h *Handler) GetAllSongs(c *gin.Context) {
	songs, err := h.store.ListSongs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch songs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": songs, "count": len(songs)})
}

// GetRandomSongs handles GET /api/songs/random?count=<n>
func (h *Handler) GetRandomSongs(c *gin.Context) {
	n := defaultRandomSongs
	if raw := c.Query("count"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a positive integer"})
			return
		}
		n = min(v, maxRandomSongs)
	}

	songs, err := h.store.RandomSongs(c.Request.Context(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch songs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": songs, "count": len(songs)})
}

// GetSongsByCategory handles GET /api/songs/category/:category
func (h *Handler) GetSongsByCategory(c *gin.Context) {
	category := models.SongCategory(c.Param("category"))
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	songs, err := h.store.SongsByCategory(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch songs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": songs, "count": len(songs)})
}
