package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterOptions configure the gin engine around the handlers.
type RouterOptions struct {
	AllowedOrigins []string
	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the engine with logging, recovery and CORS middleware.
func NewRouter(h *APIHandler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	RegisterRoutes(router, h, opts.Metrics)
	return router
}

// RegisterRoutes sets up the API endpoints.
func RegisterRoutes(router *gin.Engine, h *APIHandler, metrics http.Handler) {
	router.GET("/", h.Root)

	// --- Generation ---
	router.POST("/generate", h.GenerateSite)
	router.GET("/random", h.RandomSite)
	router.GET("/quota", h.Quota)

	// --- Operations ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
