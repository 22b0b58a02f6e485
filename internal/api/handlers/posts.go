package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"melomap/internal/api/middleware"
	"melomap/internal/models"
	"melomap/internal/pipeline"
	"melomap/internal/storage"
	"melomap/internal/utils"
)

// Assembler is the upload boundary: the sole entry point through
// which a photo becomes a post.
type Assembler interface {
	Assemble(ctx context.Context, image []byte, imageKey, description string, userID uint) (*models.Post, error)
}

// PostHandler handles the upload pipeline plus post browsing.
type PostHandler struct {
	db        *gorm.DB
	storage   *storage.Client
	assembler Assembler
}

func NewPostHandler(db *gorm.DB, st *storage.Client, asm Assembler) *PostHandler {
	return &PostHandler{db: db, storage: st, assembler: asm}
}

const maxImageBytes = 10 << 20 // form-level cap; format validation happens client-side

// CreatePost accepts a multipart photo upload, runs the resolution
// pipeline and returns the persisted post.
func (h *PostHandler) CreatePost(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
		return
	}
	if fileHeader.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
		return
	}
	description := c.PostForm("description")

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to open upload"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to read upload"})
		return
	}

	// Save the photo first so the post can reference its storage key.
	key := utils.UniqueImageKey(fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.storage.UploadPostImage(key, bytes.NewReader(image), contentType); err != nil {
		slog.Error("post image upload failed", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage upload failed"})
		return
	}

	post, err := h.assembler.Assemble(c.Request.Context(), image, key, description, middleware.UserID(c))
	switch {
	case errors.Is(err, pipeline.ErrExtraction):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not derive keywords from image"})
		return
	case errors.Is(err, pipeline.ErrCommit):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save post"})
		return
	case err != nil:
		slog.Error("pipeline failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPosts returns the recent-posts feed, newest first.
func (h *PostHandler) GetPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit > 50 {
		limit = 50 // Hard cap to protect the server
	}

	var posts []models.Post
	result := h.db.Preload("Songs").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts)
	if result.Error != nil {
		slog.Error("failed to fetch posts", "error", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": posts,
		"meta": gin.H{"limit": limit, "offset": offset},
	})
}

// GetPost returns one post with its resolved songs.
func (h *PostHandler) GetPost(c *gin.Context) {
	id := c.Param("id")

	var post models.Post
	if err := h.db.Preload("Songs").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, post)
}

// GetPostImage streams the post's photo from storage.
func (h *PostHandler) GetPostImage(c *gin.Context) {
	id := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	obj, err := h.storage.GetPostImage(post.Image)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image missing from storage"})
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.ContentLength, obj.ContentType, obj.Body, map[string]string{
		"Cache-Control": "public, max-age=31536000",
	})
}

// DeletePost removes a post owned by the caller. The catalog songs it
// references are never deleted.
func (h *PostHandler) DeletePost(c *gin.Context) {
	id := c.Param("id")

	var post models.Post
	if err := h.db.First(&post, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.UserID != middleware.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your post"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&post).Association("Songs").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		slog.Error("post delete failed", "post_id", post.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	if err := h.storage.DeletePostImage(post.Image); err != nil {
		slog.Warn("orphaned post image", "key", post.Image, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
