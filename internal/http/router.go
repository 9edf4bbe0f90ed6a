package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/hostelauth/internal/http/handlers"
	"github.com/you/hostelauth/internal/http/middleware"
)

// BuildRouter assembles the gin engine.
func BuildRouter(ah *handlers.AuthHandlers, sessionMW *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/register", ah.Register)
	auth.POST("/otp/verify", ah.VerifyOTP)
	auth.POST("/login", ah.Login)
	auth.GET("/logout", ah.Logout)
	auth.POST("/password/forgot", ah.ForgotPassword)
	auth.PUT("/password/reset/:token", ah.ResetPassword)

	protected := r.Group("/auth").Use(sessionMW.WithSession())
	protected.GET("/me", ah.Me)
	protected.PUT("/password/update", ah.UpdatePassword)

	return r
}
