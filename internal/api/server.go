package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Options configures the HTTP surface.
type Options struct {
	APIKey            string
	CORSOrigins       []string
	AllowedHosts      []string
	RateLimitRequests int
	RateWindow        time.Duration
}

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(requestID())
	r.Use(accessLog())
	r.Use(gin.Recovery())
	r.Use(securityHeaders())
	r.Use(trustedHosts(opts.AllowedHosts))
	r.Use(cors(opts.CORSOrigins))
	if opts.RateLimitRequests > 0 {
		r.Use(newRateLimiter(opts.RateLimitRequests, opts.RateWindow).middleware())
	}

	setupRoutes(r, handler, opts.APIKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiKey string) {
	r.GET("/health", handler.HealthCheck)
	r.GET("/stats", authMiddleware(apiKey), handler.GetStats)

	api := r.Group("/api")
	api.Use(authMiddleware(apiKey))
	{
		api.GET("/jogos", handler.ListEvents)
		api.GET("/jogos.ics", handler.GetFeed)
		api.GET("/proximo-jogo", handler.NextEvent)
		api.GET("/jogos/semana", handler.WeekEvents)
		api.GET("/jogos/semana/pendentes", handler.WeekPendingEvents)
		api.GET("/jogos/pendentes", handler.PendingEvents)
		api.GET("/jogos/calendario", handler.ListSynced)
		api.GET("/jogos/calendario/limpar", handler.ListSyncedPast)
		api.POST("/jogos/:id/marcar-calendario", handler.MarkSynced)
		api.DELETE("/jogos/:id/calendario", handler.UnmarkSynced)
		api.POST("/cache/limpar", handler.ClearCache)
		api.GET("/cache/status", handler.CacheStatus)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"nome":   "API Calendário SPFC",
			"versao": handler.version,
			"health": "/health",
			"endpoints": map[string]string{
				"jogos":        "/api/jogos",
				"feed":         "/api/jogos.ics",
				"proximo_jogo": "/api/proximo-jogo",
				"semana":       "/api/jogos/semana",
				"pendentes":    "/api/jogos/pendentes",
				"calendario":   "/api/jogos/calendario",
				"cache":        "/api/cache/status",
			},
			"auth": "Authorization: Bearer <API_KEY> or X-API-Key header",
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}
