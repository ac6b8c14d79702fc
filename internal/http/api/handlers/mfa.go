package handlers

import (
	"net/http"
	"strings"

	"github.com/formworks/formworks/internal/security"
	"github.com/formworks/formworks/internal/store"
	"github.com/gin-gonic/gin"
)

// MFAHandler manages optional TOTP enrolment for form-owner accounts.
type MFAHandler struct {
	st store.Store
}

// NewMFAHandler constructs an MFAHandler.
func NewMFAHandler(st store.Store) *MFAHandler {
	return &MFAHandler{st: st}
}

// PrepareTOTP generates a fresh enrolment key. The secret is not stored until
// the owner confirms it with a valid code.
func (h *MFAHandler) PrepareTOTP(c *gin.Context) {
	user := currentUser(c)
	key, errKey := security.NewTOTPKey(user.Email)
	if errKey != nil {
		replyStoreError(c, errKey)
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": key.Secret(), "url": key.URL()})
}

// confirmTOTPRequest defines the request body for TOTP confirmation.
type confirmTOTPRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// ConfirmTOTP verifies the first code against the pending secret and enables
// TOTP on the account.
func (h *MFAHandler) ConfirmTOTP(c *gin.Context) {
	var body confirmTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	secret := strings.TrimSpace(body.Secret)
	if secret == "" || !security.ValidateTOTP(secret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}

	user := currentUser(c)
	user.TOTPSecret = secret
	if errSave := h.st.UpdateUser(c.Request.Context(), user); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// disableTOTPRequest defines the request body for disabling TOTP.
type disableTOTPRequest struct {
	Code string `json:"code"`
}

// DisableTOTP turns TOTP off after verifying a current code.
func (h *MFAHandler) DisableTOTP(c *gin.Context) {
	var body disableTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	user := currentUser(c)
	if user.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp not enabled"})
		return
	}
	if !security.ValidateTOTP(user.TOTPSecret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}

	user.TOTPSecret = ""
	if errSave := h.st.UpdateUser(c.Request.Context(), user); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
