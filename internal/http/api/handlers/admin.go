package handlers

import (
	"net/http"
	"strings"

	"github.com/formworks/formworks/internal/models"
	"github.com/formworks/formworks/internal/store"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves account administration: listing users, setting per-user
// limits, and the suspension switch.
type AdminHandler struct {
	st store.Store
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(st store.Store) *AdminHandler {
	return &AdminHandler{st: st}
}

// ListUsers returns all accounts, optionally filtered by a search term over
// email and name.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, errFind := h.st.GetAllUsers(c.Request.Context(), strings.TrimSpace(c.Query("search")))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, sanitizeUser(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// updateLimitsRequest defines the request body for per-user limit changes.
type updateLimitsRequest struct {
	FormLimit    *int   `json:"formLimit"`
	StorageLimit *int64 `json:"storageLimit"`
}

// UpdateLimits sets a user's form-count and advisory storage limits.
func (h *AdminHandler) UpdateLimits(c *gin.Context) {
	var body updateLimitsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ctx := c.Request.Context()
	user, errFind := h.st.GetUser(ctx, c.Param("id"))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if body.FormLimit != nil {
		user.FormLimit = *body.FormLimit
	}
	if body.StorageLimit != nil {
		user.StorageLimit = *body.StorageLimit
	}
	if errSave := h.st.UpdateUser(ctx, user); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sanitizeUser(user)})
}

// Suspend blocks a user from form create/update operations.
func (h *AdminHandler) Suspend(c *gin.Context) {
	h.setStatus(c, models.UserStatusSuspended)
}

// Activate lifts a suspension.
func (h *AdminHandler) Activate(c *gin.Context) {
	h.setStatus(c, models.UserStatusActive)
}

func (h *AdminHandler) setStatus(c *gin.Context, status string) {
	ctx := c.Request.Context()
	user, errFind := h.st.GetUser(ctx, c.Param("id"))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	user.Status = status
	if errSave := h.st.UpdateUser(ctx, user); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
