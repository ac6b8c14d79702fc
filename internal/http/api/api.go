package api

import (
	"time"

	"github.com/formworks/formworks/internal/config"
	"github.com/formworks/formworks/internal/http/api/handlers"
	"github.com/formworks/formworks/internal/mail"
	"github.com/formworks/formworks/internal/ratelimit"
	"github.com/formworks/formworks/internal/store"
	"github.com/gin-gonic/gin"
)

const (
	credentialAttemptLimit  = 10
	credentialAttemptWindow = time.Minute
)

// RegisterRoutes registers all API routes, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, st store.Store, jwtCfg config.JWTConfig, mailer mail.Mailer, limiter ratelimit.Limiter) {
	if r == nil || st == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(st)
	r.GET("/healthz", healthHandler.Healthz)

	apiGroup := r.Group("/api")

	authHandler := handlers.NewAuthHandler(st, jwtCfg, mailer)
	authGroup := apiGroup.Group("/auth")
	throttled := func(name string) gin.HandlerFunc {
		return handlers.Throttle(limiter, name, credentialAttemptLimit, credentialAttemptWindow)
	}
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/verify-email", authHandler.VerifyEmail)
	authGroup.POST("/login", throttled("login"), authHandler.Login)
	authGroup.POST("/login/totp", throttled("login-totp"), authHandler.LoginTOTP)
	authGroup.POST("/forgot-password", throttled("forgot"), authHandler.ForgotPassword)
	authGroup.POST("/verify-otp", throttled("verify-otp"), authHandler.VerifyOTP)
	authGroup.POST("/reset-password", throttled("reset"), authHandler.ResetPassword)
	authGroup.POST("/private-login", throttled("private-login"), authHandler.PrivateLogin)

	selfAuthed := authGroup.Group("")
	selfAuthed.Use(handlers.UserAuth(st, jwtCfg))
	selfAuthed.GET("/me", authHandler.Me)
	selfAuthed.PATCH("/profile", authHandler.UpdateProfile)
	selfAuthed.DELETE("/account", authHandler.DeleteAccount)

	mfaHandler := handlers.NewMFAHandler(st)
	selfAuthed.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	selfAuthed.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	selfAuthed.POST("/mfa/totp/disable", mfaHandler.DisableTOTP)

	formHandler := handlers.NewFormHandler(st, jwtCfg)
	// Single-form fetch is reachable without identity so respondents can load
	// public forms; private-form gating happens inside the handler.
	apiGroup.GET("/forms/:id", formHandler.Get)

	formsAuthed := apiGroup.Group("/forms")
	formsAuthed.Use(handlers.UserAuth(st, jwtCfg))
	formsAuthed.GET("", formHandler.List)
	formsAuthed.POST("", formHandler.Create)
	formsAuthed.PATCH("/:id", formHandler.Update)
	formsAuthed.DELETE("/:id", formHandler.Delete)
	formsAuthed.GET("/:id/stats", formHandler.Stats)
	formsAuthed.GET("/:id/responses", formHandler.ListResponses)
	formsAuthed.GET("/:id/responses/:responseID/whatsapp", formHandler.ExportWhatsApp)

	responseHandler := handlers.NewResponseHandler(st)
	apiGroup.POST("/responses", responseHandler.Submit)

	responsesAuthed := apiGroup.Group("/responses")
	responsesAuthed.Use(handlers.UserAuth(st, jwtCfg))
	responsesAuthed.PATCH("/:id", responseHandler.Update)
	responsesAuthed.DELETE("/:id", responseHandler.Delete)

	privateUserHandler := handlers.NewPrivateUserHandler(st)
	privateUsers := apiGroup.Group("/private-users")
	privateUsers.Use(handlers.UserAuth(st, jwtCfg))
	privateUsers.POST("", privateUserHandler.Create)
	privateUsers.GET("", privateUserHandler.List)
	privateUsers.GET("/:id", privateUserHandler.Get)
	privateUsers.PATCH("/:id", privateUserHandler.Update)
	privateUsers.DELETE("/:id", privateUserHandler.Delete)

	adminHandler := handlers.NewAdminHandler(st)
	adminGroup := apiGroup.Group("/admin")
	adminGroup.Use(handlers.UserAuth(st, jwtCfg))
	adminGroup.Use(handlers.AdminOnly())
	adminGroup.GET("/users", adminHandler.ListUsers)
	adminGroup.PATCH("/users/:id/limits", adminHandler.UpdateLimits)
	adminGroup.POST("/users/:id/suspend", adminHandler.Suspend)
	adminGroup.POST("/users/:id/activate", adminHandler.Activate)
}
