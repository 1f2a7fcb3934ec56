package app

import (
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/auth"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/config"
	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/handlers"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything Setup needs to register the API.
type Handlers struct {
	Tokens     auth.TokenValidator
	Auth       *handlers.AuthHandler
	NewJoiners *handlers.NewJoinerHandler
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, h Handlers) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))

	api := r.Group("/api")
	registerAuthRoutes(api, h)
	registerNewJoinerRoutes(api, h)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "DT-I Onboarding Portal API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"health":  "/health",
			"api":     "/api",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h Handlers) {
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/whoami", auth.RequireAuth(h.Tokens, nil), auth.RequireRoles(dom.RoleAdmin), h.Auth.WhoAmI)
}

func registerNewJoinerRoutes(api *gin.RouterGroup, h Handlers) {
	nj := api.Group("/new-joiners", auth.RequireAuth(h.Tokens, nil), auth.RequireRoles(dom.RoleAdmin, dom.RoleUser))
	nj.POST("", h.NewJoiners.Create)
	nj.GET("/:id", h.NewJoiners.GetByID)
}
