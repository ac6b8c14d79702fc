package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/formworks/formworks/internal/access"
	"github.com/formworks/formworks/internal/config"
	"github.com/formworks/formworks/internal/export"
	"github.com/formworks/formworks/internal/models"
	"github.com/formworks/formworks/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FormHandler manages form lifecycle endpoints.
type FormHandler struct {
	st     store.Store
	jwtCfg config.JWTConfig
}

// NewFormHandler constructs a FormHandler.
func NewFormHandler(st store.Store, jwtCfg config.JWTConfig) *FormHandler {
	return &FormHandler{st: st, jwtCfg: jwtCfg}
}

// validateFields checks field schema shape: unique IDs and known types.
func validateFields(fields []models.FormField) string {
	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		if !models.ValidFieldType(field.Type) {
			return "unknown field type: " + field.Type
		}
		if field.ID == "" {
			return "missing field id"
		}
		if seen[field.ID] {
			return "duplicate field id: " + field.ID
		}
		seen[field.ID] = true
	}
	return ""
}

// createFormRequest defines the request body for form creation.
type createFormRequest struct {
	Title             string             `json:"title"`
	Status            string             `json:"status"`
	Visibility        string             `json:"visibility"`
	Fields            []models.FormField `json:"fields"`
	OutputFormats     []string           `json:"outputFormats"`
	ConfirmationStyle string             `json:"confirmationStyle"`
	ConfirmationText  string             `json:"confirmationText"`
	TableConfig       map[string]any     `json:"tableConfig"`
	GridConfig        map[string]any     `json:"gridConfig"`
	WhatsappFormat    string             `json:"whatsappFormat"`
	AllowEditing      *bool              `json:"allowEditing"`
}

// Create makes a new form for the authenticated owner.
func (h *FormHandler) Create(c *gin.Context) {
	var body createFormRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}
	if msg := validateFields(body.Fields); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	user := currentUser(c)
	ctx := c.Request.Context()
	if errPolicy := access.CanCreateForm(ctx, h.st, user); errPolicy != nil {
		replyAccessError(c, errPolicy)
		return
	}

	status := body.Status
	if status == "" {
		status = models.FormStatusActive
	}
	visibility := body.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	confirmationStyle := body.ConfirmationStyle
	if confirmationStyle == "" {
		confirmationStyle = models.ConfirmationTable
	}
	outputFormats := body.OutputFormats
	if len(outputFormats) == 0 {
		outputFormats = []string{models.OutputFormatThankYou}
	}
	allowEditing := true
	if body.AllowEditing != nil {
		allowEditing = *body.AllowEditing
	}

	now := time.Now().UTC()
	form := models.Form{
		ID:                uuid.NewString(),
		UserID:            user.ID,
		Title:             title,
		Status:            status,
		Visibility:        visibility,
		Fields:            body.Fields,
		OutputFormats:     outputFormats,
		ConfirmationStyle: confirmationStyle,
		ConfirmationText:  body.ConfirmationText,
		TableConfig:       datatypes.JSONMap(body.TableConfig),
		GridConfig:        datatypes.JSONMap(body.GridConfig),
		WhatsappFormat:    body.WhatsappFormat,
		AllowEditing:      allowEditing,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if errCreate := h.st.CreateForm(ctx, &form); errCreate != nil {
		replyStoreError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"form": form})
}

// List returns the authenticated owner's forms with response counts.
func (h *FormHandler) List(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	forms, errFind := h.st.GetFormsByUserID(ctx, user.ID)
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}

	out := make([]gin.H, 0, len(forms))
	for i := range forms {
		count, errCount := h.st.GetResponseCount(ctx, forms[i].ID)
		if errCount != nil {
			replyStoreError(c, errCount)
			return
		}
		out = append(out, gin.H{"form": forms[i], "responseCount": count})
	}
	c.JSON(http.StatusOK, gin.H{"forms": out})
}

// Get returns a form. Public forms need no identity; private forms require
// the owner or a private respondent whose access set contains the form.
func (h *FormHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	form, errFind := h.st.GetForm(ctx, c.Param("id"))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if form == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if form.Visibility == models.VisibilityPrivate {
		user, errUser := ResolveUser(c, h.st, h.jwtCfg)
		if errUser != nil {
			replyStoreError(c, errUser)
			return
		}
		if user == nil || user.ID != form.UserID {
			privateUser, errPrivate := ResolvePrivateUser(c, h.st, h.jwtCfg)
			if errPrivate != nil {
				replyStoreError(c, errPrivate)
				return
			}
			if !access.CanViewPrivateForm(privateUser, form) {
				c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

// updateFormRequest defines the request body for partial form updates. Fields
// omitted from the payload are left unchanged.
type updateFormRequest struct {
	Title             *string             `json:"title"`
	Status            *string             `json:"status"`
	Visibility        *string             `json:"visibility"`
	Fields            *[]models.FormField `json:"fields"`
	OutputFormats     *[]string           `json:"outputFormats"`
	ConfirmationStyle *string             `json:"confirmationStyle"`
	ConfirmationText  *string             `json:"confirmationText"`
	TableConfig       *map[string]any     `json:"tableConfig"`
	GridConfig        *map[string]any     `json:"gridConfig"`
	WhatsappFormat    *string             `json:"whatsappFormat"`
	AllowEditing      *bool               `json:"allowEditing"`
}

// Update applies a partial update to an owned form. When the field schema
// changes, existing responses are back-filled with defaults for new fields.
func (h *FormHandler) Update(c *gin.Context) {
	var body updateFormRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	user := currentUser(c)
	ctx := c.Request.Context()
	form, errOwner := access.RequireFormOwner(ctx, h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}
	if errPolicy := access.CanMutateForms(user); errPolicy != nil {
		replyAccessError(c, errPolicy)
		return
	}

	if body.Title != nil {
		if title := strings.TrimSpace(*body.Title); title != "" {
			form.Title = title
		}
	}
	if body.Status != nil {
		form.Status = *body.Status
	}
	if body.Visibility != nil {
		form.Visibility = *body.Visibility
	}
	fieldsChanged := false
	if body.Fields != nil {
		if msg := validateFields(*body.Fields); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		form.Fields = *body.Fields
		fieldsChanged = true
	}
	if body.OutputFormats != nil {
		form.OutputFormats = *body.OutputFormats
	}
	if body.ConfirmationStyle != nil {
		form.ConfirmationStyle = *body.ConfirmationStyle
	}
	if body.ConfirmationText != nil {
		form.ConfirmationText = *body.ConfirmationText
	}
	if body.TableConfig != nil {
		form.TableConfig = datatypes.JSONMap(*body.TableConfig)
	}
	if body.GridConfig != nil {
		form.GridConfig = datatypes.JSONMap(*body.GridConfig)
	}
	if body.WhatsappFormat != nil {
		form.WhatsappFormat = *body.WhatsappFormat
	}
	if body.AllowEditing != nil {
		form.AllowEditing = *body.AllowEditing
	}

	if errSave := h.st.UpdateForm(ctx, form, fieldsChanged); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"form": form})
}

// Delete removes an owned form and cascades to its responses.
func (h *FormHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	form, errOwner := access.RequireFormOwner(ctx, h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}
	if errDelete := h.st.DeleteForm(ctx, form.ID); errDelete != nil {
		replyStoreError(c, errDelete)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns submission statistics for an owned form.
func (h *FormHandler) Stats(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	form, errOwner := access.RequireFormOwner(ctx, h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}

	responses, errFind := h.st.GetResponsesByFormID(ctx, form.ID)
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}

	var lastSubmission *time.Time
	if len(responses) > 0 {
		lastSubmission = &responses[0].SubmittedAt
	}
	c.JSON(http.StatusOK, gin.H{
		"formId":         form.ID,
		"responseCount":  len(responses),
		"lastSubmission": lastSubmission,
	})
}

// ListResponses returns an owned form's responses newest-first.
func (h *FormHandler) ListResponses(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	form, errOwner := access.RequireFormOwner(ctx, h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}
	responses, errFind := h.st.GetResponsesByFormID(ctx, form.ID)
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": responses})
}

// ExportWhatsApp renders one of an owned form's responses as WhatsApp text.
func (h *FormHandler) ExportWhatsApp(c *gin.Context) {
	user := currentUser(c)
	ctx := c.Request.Context()
	form, errOwner := access.RequireFormOwner(ctx, h.st, c.Param("id"), user.ID)
	if errOwner != nil {
		replyAccessError(c, errOwner)
		return
	}

	response, errFind := h.st.GetResponse(ctx, c.Param("responseID"))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if response == nil || response.FormID != form.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": export.WhatsAppMessage(form, response)})
}
