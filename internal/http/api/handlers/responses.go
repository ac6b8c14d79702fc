package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/formworks/formworks/internal/access"
	"github.com/formworks/formworks/internal/export"
	"github.com/formworks/formworks/internal/models"
	"github.com/formworks/formworks/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ResponseHandler manages public submission and owner-side response mutation.
type ResponseHandler struct {
	st store.Store
}

// NewResponseHandler constructs a ResponseHandler.
func NewResponseHandler(st store.Store) *ResponseHandler {
	return &ResponseHandler{st: st}
}

// submitRequest defines the request body for a public submission.
type submitRequest struct {
	FormID string         `json:"formId"`
	Data   map[string]any `json:"data"`
}

// Submit accepts a public submission for an existing form. The data map is
// stored as submitted; no schema validation is applied server-side.
func (h *ResponseHandler) Submit(c *gin.Context) {
	var body submitRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	formID := strings.TrimSpace(body.FormID)
	if formID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing formId"})
		return
	}

	ctx := c.Request.Context()
	form, errFind := h.st.GetForm(ctx, formID)
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if form == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
		return
	}

	data := body.Data
	if data == nil {
		data = map[string]any{}
	}
	now := time.Now().UTC()
	response := models.Response{
		ID:          uuid.NewString(),
		FormID:      form.ID,
		Data:        datatypes.JSONMap(data),
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if errCreate := h.st.CreateResponse(ctx, &response); errCreate != nil {
		replyStoreError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"response":     response,
		"confirmation": export.ConfirmationText(form, &response),
	})
}

// updateResponseRequest defines the request body for response edits.
type updateResponseRequest struct {
	Data map[string]any `json:"data"`
}

// Update replaces a response's data map. Owner-only.
func (h *ResponseHandler) Update(c *gin.Context) {
	var body updateResponseRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing data"})
		return
	}

	user := currentUser(c)
	ctx := c.Request.Context()
	response, _, errOwner := access.RequireResponseOwner(ctx, h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}

	response.Data = datatypes.JSONMap(body.Data)
	if errSave := h.st.UpdateResponse(ctx, response); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": response})
}

// Delete removes a response. Owner-only.
func (h *ResponseHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	response, _, errOwner := access.RequireResponseOwner(ctx, h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}
	if errDelete := h.st.DeleteResponse(ctx, response.ID); errDelete != nil {
		replyStoreError(c, errDelete)
		return
	}
	c.Status(http.StatusNoContent)
}
