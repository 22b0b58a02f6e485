package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"melomap/internal/models"
)

// SongHandler handles catalog browsing and search.
type SongHandler struct {
	db *gorm.DB
}

func NewSongHandler(db *gorm.DB) *SongHandler {
	return &SongHandler{db: db}
}

// Search filters songs and users by a free-text query. An empty
// query returns the unfiltered listing, like the original search page.
func (h *SongHandler) Search(c *gin.Context) {
	search := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit > 100 {
		limit = 100
	}

	songQuery := h.db.Model(&models.Song{})
	userQuery := h.db.Model(&models.User{})

	if search != "" {
		term := "%" + search + "%"
		songQuery = songQuery.Where(
			"title ILIKE ? OR album ILIKE ? OR artists ILIKE ?", term, term, term)
		userQuery = userQuery.Where(
			"username ILIKE ? OR name ILIKE ?", term, term)
	}

	var songs []models.Song
	if err := songQuery.Limit(limit).Offset(offset).Find(&songs).Error; err != nil {
		slog.Error("song search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var users []models.User
	if err := userQuery.Limit(limit).Find(&users).Error; err != nil {
		slog.Error("user search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"songs": songs,
		"users": users,
		"meta":  gin.H{"limit": limit, "offset": offset},
	})
}

// GetSong returns one catalog row.
func (h *SongHandler) GetSong(c *gin.Context) {
	id := c.Param("id")

	var song models.Song
	if err := h.db.First(&song, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Song not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, song)
}
