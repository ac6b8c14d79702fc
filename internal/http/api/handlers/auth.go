package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/formworks/formworks/internal/config"
	"github.com/formworks/formworks/internal/mail"
	"github.com/formworks/formworks/internal/models"
	"github.com/formworks/formworks/internal/security"
	"github.com/formworks/formworks/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Credential lifetimes for the verification and password-reset flows.
const (
	verificationTokenTTL = 24 * time.Hour
	resetOTPTTL          = 10 * time.Minute
	resetTokenTTL        = 30 * time.Minute
)

// AuthHandler serves signup, login, verification, and password-reset endpoints.
type AuthHandler struct {
	st     store.Store
	jwtCfg config.JWTConfig
	mailer mail.Mailer
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(st store.Store, jwtCfg config.JWTConfig, mailer mail.Mailer) *AuthHandler {
	return &AuthHandler{st: st, jwtCfg: jwtCfg, mailer: mailer}
}

// signupRequest defines the request body for account creation.
type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}

// Signup registers a new unverified account and emails a verification link.
func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
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
	firstName := strings.TrimSpace(body.FirstName)
	if firstName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing first name"})
		return
	}

	ctx := c.Request.Context()
	existing, errFind := h.st.GetUserByEmail(ctx, email)
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		replyStoreError(c, errHash)
		return
	}
	token, errToken := security.GenerateToken()
	if errToken != nil {
		replyStoreError(c, errToken)
		return
	}

	now := time.Now().UTC()
	tokenExpiry := now.Add(verificationTokenTTL)
	user := models.User{
		ID:                      uuid.NewString(),
		Email:                   email,
		FirstName:               firstName,
		LastName:                strings.TrimSpace(body.LastName),
		Phone:                   strings.TrimSpace(body.Phone),
		Company:                 strings.TrimSpace(body.Company),
		Password:                hash,
		Status:                  models.UserStatusActive,
		IsAdmin:                 config.AdminEmail() != "" && email == config.AdminEmail(),
		VerificationToken:       token,
		VerificationTokenExpiry: &tokenExpiry,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if errCreate := h.st.CreateUser(ctx, &user); errCreate != nil {
		// Concurrent signups can race past the pre-check; the unique index
		// catches the loser.
		if errors.Is(errCreate, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		replyStoreError(c, errCreate)
		return
	}

	// Delivery failure is logged, never fatal: signup still succeeds.
	if errMail := h.mailer.SendVerificationEmail(ctx, user.Email, user.FirstName, token); errMail != nil {
		log.WithError(errMail).WithField("email", user.Email).Warn("verification email delivery failed")
	}

	c.JSON(http.StatusCreated, gin.H{"user": sanitizeUser(&user)})
}

// verifyEmailRequest defines the request body for email verification.
type verifyEmailRequest struct {
	Token string `json:"token"`
}

// VerifyEmail confirms an account from its emailed verification token. The
// token is single-use: it is cleared on success, so a second call fails.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var body verifyEmailRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	token := strings.TrimSpace(body.Token)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
		return
	}

	ctx := c.Request.Context()
	user, errFind := h.st.GetUserByVerificationToken(ctx, token)
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if user == nil || user.VerificationToken != token {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
		return
	}
	if user.VerificationTokenExpiry == nil || time.Now().UTC().After(*user.VerificationTokenExpiry) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token expired"})
		return
	}

	user.EmailVerified = true
	user.VerificationToken = ""
	user.VerificationTokenExpiry = nil
	if errSave := h.st.UpdateUser(ctx, user); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

// loginRequest defines the request body for password login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a form owner. Checks run existence, then verification,
// then password; unknown email and wrong password share one message.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ctx := c.Request.Context()
	user, errFind := h.st.GetUserByEmail(ctx, strings.TrimSpace(body.Email))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !user.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "email not verified", "email": user.Email})
		return
	}
	if !security.CheckPassword(user.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if user.TOTPSecret != "" {
		c.JSON(http.StatusOK, gin.H{"totpRequired": true, "userId": user.ID})
		return
	}
	h.finishLogin(c, user.ID)
}

// loginTOTPRequest defines the request body for the TOTP login step.
type loginTOTPRequest struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// LoginTOTP completes login for accounts with TOTP enabled.
func (h *AuthHandler) LoginTOTP(c *gin.Context) {
	var body loginTOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	user, errFind := h.st.GetUser(c.Request.Context(), strings.TrimSpace(body.UserID))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if user == nil || user.TOTPSecret == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !security.ValidateTOTP(user.TOTPSecret, strings.TrimSpace(body.Code)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}
	h.finishLogin(c, user.ID)
}

// finishLogin refreshes derived metrics and issues the session token.
func (h *AuthHandler) finishLogin(c *gin.Context, userID string) {
	user, errMetrics := h.st.UpdateUserMetrics(c.Request.Context(), userID)
	if errMetrics != nil || user == nil {
		replyStoreError(c, errMetrics)
		return
	}
	token, errSign := security.SignUserToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, user.ID)
	if errSign != nil {
		replyStoreError(c, errSign)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sanitizeUser(user), "token": token})
}

// forgotPasswordRequest defines the request body for starting a reset.
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a 6-digit reset code and emails it to the account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var body forgotPasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ctx := c.Request.Context()
	user, errFind := h.st.GetUserByEmail(ctx, strings.TrimSpace(body.Email))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	otp, errOTP := security.GenerateOTP()
	if errOTP != nil {
		replyStoreError(c, errOTP)
		return
	}
	otpExpiry := time.Now().UTC().Add(resetOTPTTL)
	user.ResetOTP = otp
	user.ResetOTPExpiry = &otpExpiry
	if errSave := h.st.UpdateUser(ctx, user); errSave != nil {
		replyStoreError(c, errSave)
		return
	}

	if errMail := h.mailer.SendResetOTP(ctx, user.Email, user.FirstName, otp); errMail != nil {
		log.WithError(errMail).WithField("email", user.Email).Warn("reset OTP delivery failed")
	}

	c.JSON(http.StatusOK, gin.H{"userId": user.ID})
}

// verifyOTPRequest defines the request body for the OTP verification step.
type verifyOTPRequest struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
}

// VerifyOTP exchanges a valid reset code for a reset token.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var body verifyOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ctx := c.Request.Context()
	user, errFind := h.st.GetUser(ctx, strings.TrimSpace(body.UserID))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if user.ResetOTP == "" || user.ResetOTP != strings.TrimSpace(body.OTP) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid otp"})
		return
	}
	if user.ResetOTPExpiry == nil || time.Now().UTC().After(*user.ResetOTPExpiry) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "otp expired"})
		return
	}

	resetToken, errToken := security.GenerateToken()
	if errToken != nil {
		replyStoreError(c, errToken)
		return
	}
	tokenExpiry := time.Now().UTC().Add(resetTokenTTL)
	user.ResetOTP = ""
	user.ResetOTPExpiry = nil
	user.ResetToken = resetToken
	user.ResetTokenExpiry = &tokenExpiry
	if errSave := h.st.UpdateUser(ctx, user); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resetToken": resetToken})
}

// resetPasswordRequest defines the request body for the final reset step.
type resetPasswordRequest struct {
	UserID      string `json:"userId"`
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword sets a new password from a valid reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var body resetPasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if errPassword := security.ValidatePassword(body.NewPassword); errPassword != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 6 characters"})
		return
	}

	ctx := c.Request.Context()
	user, errFind := h.st.GetUser(ctx, strings.TrimSpace(body.UserID))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if user.ResetToken == "" || user.ResetToken != strings.TrimSpace(body.ResetToken) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token"})
		return
	}
	if user.ResetTokenExpiry == nil || time.Now().UTC().After(*user.ResetTokenExpiry) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token expired"})
		return
	}

	hash, errHash := security.HashPassword(body.NewPassword)
	if errHash != nil {
		replyStoreError(c, errHash)
		return
	}
	user.Password = hash
	user.ResetToken = ""
	user.ResetTokenExpiry = nil
	if errSave := h.st.UpdateUser(ctx, user); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// Me returns the authenticated user's sanitized record.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": sanitizeUser(currentUser(c))})
}

// updateProfileRequest defines the request body for profile updates.
type updateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Company   *string `json:"company"`
	Photo     *string `json:"photo"`
}

// UpdateProfile applies a partial update to the authenticated user's profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var body updateProfileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	user := currentUser(c)
	if body.FirstName != nil {
		if name := strings.TrimSpace(*body.FirstName); name != "" {
			user.FirstName = name
		}
	}
	if body.LastName != nil {
		user.LastName = strings.TrimSpace(*body.LastName)
	}
	if body.Phone != nil {
		user.Phone = strings.TrimSpace(*body.Phone)
	}
	if body.Company != nil {
		user.Company = strings.TrimSpace(*body.Company)
	}
	if body.Photo != nil {
		user.Photo = strings.TrimSpace(*body.Photo)
	}

	if errSave := h.st.UpdateUser(c.Request.Context(), user); errSave != nil {
		replyStoreError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sanitizeUser(user)})
}

// DeleteAccount removes the authenticated user, cascading to owned forms,
// their responses, and the user's private users.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user := currentUser(c)
	if errDelete := h.st.DeleteUser(c.Request.Context(), user.ID); errDelete != nil {
		replyStoreError(c, errDelete)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

// privateLoginRequest defines the request body for private-respondent login.
type privateLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PrivateLogin authenticates a private respondent and issues a private
// session token scoped to their accessible forms.
func (h *AuthHandler) PrivateLogin(c *gin.Context) {
	var body privateLoginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	privateUser, errFind := h.st.GetPrivateUserByEmail(c.Request.Context(), strings.TrimSpace(body.Email))
	if errFind != nil {
		replyStoreError(c, errFind)
		return
	}
	if privateUser == nil || !security.CheckPassword(privateUser.Password, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, errSign := security.SignPrivateToken(h.jwtCfg.Secret, h.jwtCfg.Expiry, privateUser.ID)
	if errSign != nil {
		replyStoreError(c, errSign)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":              privateUser.ID,
		"name":            privateUser.Name,
		"email":           privateUser.Email,
		"accessibleForms": privateUser.AccessibleForms,
		"token":           token,
	})
}
