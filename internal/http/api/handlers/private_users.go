package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/formworks/formworks/internal/access"
	"github.com/formworks/formworks/internal/models"
	"github.com/formworks/formworks/internal/security"
	"github.com/formworks/formworks/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrivateUserHandler manages the owner-scoped private respondent credentials
// that gate access to private forms.
type PrivateUserHandler struct {
	st store.Store
}

// NewPrivateUserHandler constructs a PrivateUserHandler.
func NewPrivateUserHandler(st store.Store) *PrivateUserHandler {
	return &PrivateUserHandler{st: st}
}

// sanitizePrivateUser projects a private user without the password hash.
func sanitizePrivateUser(privateUser *models.PrivateUser) gin.H {
	return gin.H{
		"id":              privateUser.ID,
		"ownerId":         privateUser.OwnerID,
		"name":            privateUser.Name,
		"email":           privateUser.Email,
		"accessibleForms": privateUser.AccessibleForms,
		"createdAt":       privateUser.CreatedAt,
		"updatedAt":       privateUser.UpdatedAt,
	}
}

// validateAccessibleForms checks that every referenced form exists and is
// owned by the requester.
func (h *PrivateUserHandler) validateAccessibleForms(ctx context.Context, formIDs []string, ownerID string) (string, error) {
	for _, formID := range formIDs {
		form, errFind := h.st.GetForm(ctx, formID)
		if errFind != nil {
			return "", errFind
		}
		if form == nil || form.UserID != ownerID {
			return "unknown form: " + formID, nil
		}
	}
	return "", nil
}

// createPrivateUserRequest defines the request body for private-user creation.
type createPrivateUserRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	AccessibleForms []string `json:"accessibleForms"`
}

// Create registers a private respondent for the authenticated owner.
func (h *PrivateUserHandler) Create(c *gin.Context) {
	var body createPrivateUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if !validEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	if errPassword := security.ValidatePassword(body.Password); errPassword != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	user := currentUser(c)
	ctx := c.Request.Context()
	if msg, errCheck := h.validateAccessibleForms(ctx, body.AccessibleForms, user.ID); errCheck != nil {
		replyStoreError(c, errCheck)
		return
	} else if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		replyStoreError(c, errHash)
		return
	}

	now := time.Now().UTC()
	privateUser := models.PrivateUser{
		ID:              uuid.NewString(),
		OwnerID:         user.ID,
		Name:            name,
		Email:           email,
		Password:        hash,
		AccessibleForms: body.AccessibleForms,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if errCreate := h.st.CreatePrivateUser(ctx, &privateUser); errCreate != nil {
		replyStoreError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"privateUser": sanitizePrivateUser(&privateUser)})
}

// List returns the authenticated owner's private respondents.
func (h *PrivateUserHandler) List(c *gin.Context) {
	user := currentUser(c)
	privateUsers, errFind := h.st.GetPrivateUsersByOwnerID(c.Request.Context(), user.ID)
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	out := make([]gin.H, 0, len(privateUsers))
	for i := range privateUsers {
		out = append(out, sanitizePrivateUser(&privateUsers[i]))
	}
	c.JSON(http.StatusOK, gin.H{"privateUsers": out})
}

// Get returns one owned private respondent.
func (h *PrivateUserHandler) Get(c *gin.Context) {
	user := currentUser(c)
	privateUser, errOwner := access.RequirePrivateUserOwner(c.Request.Context(), h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}
	c.JSON(http.StatusOK, gin.H{"privateUser": sanitizePrivateUser(privateUser)})
}

// updatePrivateUserRequest defines the request body for partial updates.
type updatePrivateUserRequest struct {
	Name            *string   `json:"name"`
	Email           *string   `json:"email"`
	Password        *string   `json:"password"`
	AccessibleForms *[]string `json:"accessibleForms"`
}

// Update applies a partial update to an owned private respondent.
func (h *PrivateUserHandler) Update(c *gin.Context) {
	var body updatePrivateUserRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	user := currentUser(c)
	ctx := c.Request.Context()
	privateUser, errOwner := access.RequirePrivateUserOwner(ctx, h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}

	if body.Name != nil {
		if name := strings.TrimSpace(*body.Name); name != "" {
			privateUser.Name = name
		}
	}
	if body.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*body.Email))
		if !validEmail(email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
			return
		}
		privateUser.Email = email
	}
	if body.Password != nil {
		if errPassword := security.ValidatePassword(*body.Password); errPassword != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
			return
		}
		hash, errHash := security.HashPassword(*body.Password)
		if errHash != nil {
			replyStoreError(c, errHash)
			return
		}
		privateUser.Password = hash
	}
	if body.AccessibleForms != nil {
		if msg, errCheck := h.validateAccessibleForms(ctx, *body.AccessibleForms, user.ID); errCheck != nil {
			replyStoreError(c, errCheck)
			return
		} else if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		privateUser.AccessibleForms = *body.AccessibleForms
	}

	if errSave := h.st.UpdatePrivateUser(ctx, privateUser); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"privateUser": sanitizePrivateUser(privateUser)})
}

// Delete removes an owned private respondent.
func (h *PrivateUserHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	privateUser, errOwner := access.RequirePrivateUserOwner(c.Request.Context(), h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}
	if errDelete := h.st.DeletePrivateUser(c.Request.Context(), privateUser.ID); errDelete != nil {
		replyStoreError(c, errDelete)
		return
	}
	c.Status(http.StatusNoContent)
}
