package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/formworks/formworks/internal/access"
	"github.com/formworks/formworks/internal/models"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// sanitizeUser projects a user record for API responses, omitting the
// password hash and all token/OTP state.
func sanitizeUser(user *models.User) gin.H {
	return gin.H{
		"id":             user.ID,
		"email":          user.Email,
		"firstName":      user.FirstName,
		"lastName":       user.LastName,
		"phone":          user.Phone,
		"company":        user.Company,
		"photo":          user.Photo,
		"status":         user.Status,
		"isAdmin":        user.IsAdmin,
		"emailVerified":  user.EmailVerified,
		"totpEnabled":    user.TOTPSecret != "",
		"totalForms":     user.TotalForms,
		"totalResponses": user.TotalResponses,
		"formLimit":      user.FormLimit,
		"storageLimit":   user.StorageLimit,
		"createdAt":      user.CreatedAt,
		"updatedAt":      user.UpdatedAt,
	}
}

// replyAccessError maps access-policy errors to HTTP responses.
func replyAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, access.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, access.ErrSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": "account suspended"})
	case errors.Is(err, access.ErrFormLimit):
		c.JSON(http.StatusForbidden, gin.H{"error": "form limit reached"})
	default:
		log.WithError(err).Error("store operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// replyStoreError logs a store failure and returns a generic 500.
func replyStoreError(c *gin.Context, err error) {
	log.WithError(err).Error("store operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// validEmail applies a minimal shape check; full validation is left to the
// verification email round-trip.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}
