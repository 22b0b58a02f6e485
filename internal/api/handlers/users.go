package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"melomap/internal/api/middleware"
	"melomap/internal/models"
	"melomap/internal/storage"
	"melomap/internal/utils"
)

// UserHandler handles profiles, account management and bookmarks.
type UserHandler struct {
	db      *gorm.DB
	storage *storage.Client
}

func NewUserHandler(db *gorm.DB, st *storage.Client) *UserHandler {
	return &UserHandler{db: db, storage: st}
}

// GetProfile returns a user's public profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUserPosts lists a user's posts, newest first.
func (h *UserHandler) GetUserPosts(c *gin.Context) {
	id := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit > 50 {
		limit = 50
	}

	var posts []models.Post
	result := h.db.Preload("Songs").
		Where("user_id = ?", id).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": posts})
}

// UpdateProfile edits the caller's own profile. Sent as multipart so
// a new profile image can ride along; the current password is
// required to confirm the edit.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, middleware.UserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if !user.CheckPassword(c.PostForm("password")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	updates := map[string]any{}
	for form, column := range map[string]string{
		"email":    "email",
		"username": "username",
		"name":     "name",
		"location": "location",
		"bio":      "bio",
	} {
		if v, ok := c.GetPostForm(form); ok {
			updates[column] = v
		}
	}

	if fileHeader, err := c.FormFile("profile_image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to open upload"})
			return
		}
		defer file.Close()

		key := utils.UniqueImageKey(fileHeader.Filename)
		if err := h.storage.UploadProfileImage(key, file, fileHeader.Header.Get("Content-Type")); err != nil {
			slog.Error("profile image upload failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage upload failed"})
			return
		}
		updates["profile_image"] = key
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Username or email taken"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	c.JSON(http.StatusOK, user)
}

type changePasswordRequest struct {
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword rotates the caller's password after re-authenticating.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	var user models.User
	if err := h.db.First(&user, middleware.UserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		return
	}

	hash, err := models.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not process password"})
		return
	}

	if err := h.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Changed password"})
}

// DeleteAccount removes the caller's account.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	if err := h.db.Delete(&models.User{}, middleware.UserID(c)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// ToggleBookmark adds or removes a song from the caller's bookmarks.
func (h *UserHandler) ToggleBookmark(c *gin.Context) {
	songID := c.Param("song_id")

	var song models.Song
	if err := h.db.First(&song, songID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Song not found"})
		return
	}

	user := models.User{ID: middleware.UserID(c)}
	assoc := h.db.Model(&user).Association("BookmarkedSongs")

	var existing []models.Song
	if err := assoc.Find(&existing, "id = ?", song.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var message string
	var err error
	if len(existing) > 0 {
		err = assoc.Delete(&song)
		message = "removed"
	} else {
		err = assoc.Append(&song)
		message = "added"
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// GetBookmarks lists the caller's bookmarked songs.
func (h *UserHandler) GetBookmarks(c *gin.Context) {
	user := models.User{ID: middleware.UserID(c)}

	var songs []models.Song
	if err := h.db.Model(&user).Association("BookmarkedSongs").Find(&songs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": songs})
}
