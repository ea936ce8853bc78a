package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"trade-journal-go/internal/models"
)

var allowedAvatarExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

type updateAccountRequest struct {
	Email     string `json:"email" binding:"omitempty,email"`
	FirstName string `json:"firstName" binding:"max=100"`
	LastName  string `json:"lastName" binding:"max=100"`
	Phone     string `json:"phone" binding:"max=20"`
}

type updatePreferencesRequest struct {
	DailyTradeLimit int `json:"dailyTradeLimit" binding:"required,gte=1,lte=100"`
}

type toggle2FARequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// GetAccount returns the caller's profile.
func (h *Handler) GetAccount(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"data": gin.H{"user": currentUser(c)}})
}

// UpdateAccount changes profile fields. An email change must not collide
// with another account.
func (h *Handler) UpdateAccount(c *gin.Context) {
	user := currentUser(c)

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email != user.Email {
			var count int64
			err := h.db.Model(&models.User{}).
				Where("email = ? AND id <> ?", email, user.ID).
				Count(&count).Error
			if err != nil {
				h.logger.Error("Failed to check email uniqueness", zap.Error(err))
				fail(c, http.StatusInternalServerError, "Internal server error")
				return
			}
			if count > 0 {
				fail(c, http.StatusBadRequest, "Email already in use")
				return
			}
			user.Email = email
		}
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}

	if err := h.db.Save(user).Error; err != nil {
		h.logger.Error("Failed to update account", zap.Error(err), zap.Uint("user_id", user.ID))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Account updated successfully", "data": gin.H{"user": user}})
}

// UpdatePreferences changes journal settings such as the daily trade limit.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	user := currentUser(c)

	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user.DailyTradeLimit = req.DailyTradeLimit
	if err := h.db.Save(user).Error; err != nil {
		h.logger.Error("Failed to update preferences", zap.Error(err), zap.Uint("user_id", user.ID))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Preferences updated successfully", "data": gin.H{"user": user}})
}

// UploadAvatar stores a profile image under the upload directory and
// records its public path on the account.
func (h *Handler) UploadAvatar(c *gin.Context) {
	user := currentUser(c)

	file, err := c.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, "No avatar uploaded")
		return
	}
	if file.Size > h.maxUpload {
		fail(c, http.StatusBadRequest, "Avatar exceeds the maximum upload size")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAvatarExts[ext] {
		fail(c, http.StatusBadRequest, "Unsupported avatar format. Use PNG, JPEG or WebP")
		return
	}

	avatarDir := filepath.Join(h.uploadDir, "avatars")
	if err := os.MkdirAll(avatarDir, 0o755); err != nil {
		h.logger.Error("Failed to create avatar directory", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(avatarDir, name)); err != nil {
		h.logger.Error("Failed to save avatar", zap.Error(err), zap.Uint("user_id", user.ID))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	user.AvatarURL = "/uploads/avatars/" + name
	if err := h.db.Save(user).Error; err != nil {
		h.logger.Error("Failed to update avatar", zap.Error(err), zap.Uint("user_id", user.ID))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Avatar updated successfully", "data": gin.H{"user": user}})
}

// Toggle2FA flips the two-factor flag on the caller's account.
func (h *Handler) Toggle2FA(c *gin.Context) {
	user := currentUser(c)

	var req toggle2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user.TwoFactorEnabled = *req.Enabled
	if err := h.db.Save(user).Error; err != nil {
		h.logger.Error("Failed to toggle two-factor", zap.Error(err), zap.Uint("user_id", user.ID))
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	state := "disabled"
	if user.TwoFactorEnabled {
		state = "enabled"
	}
	ok(c, http.StatusOK, gin.H{"message": "Two-factor authentication " + state, "data": gin.H{"user": user}})
}
