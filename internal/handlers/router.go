package handlers

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"catalog/internal/logging"
)

// RouterConfig holds what the router needs beyond the product handlers.
type RouterConfig struct {
	Handlers      *Config
	SessionSecret string
	// StorageRoot is served under /storage when set.
	StorageRoot string
	// Ping checks the record store for /health; nil means always healthy.
	Ping func(ctx context.Context) error
}

// NewRouter builds the gin engine with sessions, static storage and product routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(logging.Middleware(cfg.Handlers.Log), gin.Recovery())
	r.MaxMultipartMemory = cfg.Handlers.MaxUploadBytes + 1<<20

	if cfg.StorageRoot != "" {
		r.Static("/storage", cfg.StorageRoot)
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("catalog_session", store))

	r.GET("/health", func(c *gin.Context) {
		if cfg.Ping != nil {
			if err := cfg.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	Register(r, cfg.Handlers)
	return r
}
