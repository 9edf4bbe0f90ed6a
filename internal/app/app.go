package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/hostelauth/internal/config"
	httpx "github.com/you/hostelauth/internal/http"
	"github.com/you/hostelauth/internal/http/handlers"
	"github.com/you/hostelauth/internal/http/middleware"
)

// Run wires the container and serves HTTP until the listener fails.
func Run(cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)

	c, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	authH := handlers.NewAuthHandlers(c.AuthSvc, c.Logger)
	sessionMW := middleware.NewAuthMW(c.TokenSvc)

	r := httpx.BuildRouter(authH, sessionMW)

	addr := ":" + cfg.Port
	c.Logger.WithField("addr", addr).Info("listening")
	return http.ListenAndServe(addr, r)
}
