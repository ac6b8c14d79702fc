package handlers

import (
	"net/http"
	"strings"

	"github.com/formworks/formworks/internal/config"
	"github.com/formworks/formworks/internal/models"
	"github.com/formworks/formworks/internal/security"
	"github.com/formworks/formworks/internal/store"
	"github.com/gin-gonic/gin"
)

// ctxUserKey is the gin context key holding the authenticated user.
const ctxUserKey = "currentUser"

// HeaderUserID is the legacy identity header accepted alongside Bearer tokens.
const HeaderUserID = "x-user-id"

// UserAuth resolves the requester's identity from a Bearer session token or
// the legacy x-user-id header and rejects unauthenticated requests.
func UserAuth(st store.Store, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := ResolveUser(c, st, jwtCfg)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "resolve identity failed"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(ctxUserKey, user)
	}
}

// AdminOnly requires the authenticated user to be an admin.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}
}

// ResolveUser returns the requester's account, or nil when no valid identity
// is presented. Store errors are returned; invalid credentials are not.
func ResolveUser(c *gin.Context, st store.Store, jwtCfg config.JWTConfig) (*models.User, error) {
	ctx := c.Request.Context()
	if token := bearerToken(c); token != "" {
		claims, errJWT := security.ParseUserToken(jwtCfg.Secret, token)
		if errJWT != nil {
			return nil, nil
		}
		return st.GetUser(ctx, claims.UserID)
	}
	if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
		return st.GetUser(ctx, id)
	}
	return nil, nil
}

// ResolvePrivateUser returns the private respondent presented by a Bearer
// private-session token, or nil.
func ResolvePrivateUser(c *gin.Context, st store.Store, jwtCfg config.JWTConfig) (*models.PrivateUser, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, nil
	}
	claims, errJWT := security.ParsePrivateToken(jwtCfg.Secret, token)
	if errJWT != nil {
		return nil, nil
	}
	return st.GetPrivateUser(c.Request.Context(), claims.PrivateUserID)
}

// bearerToken extracts the Bearer token from the Authorization header.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}

// currentUser returns the authenticated user set by UserAuth.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
