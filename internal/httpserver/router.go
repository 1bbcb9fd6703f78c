package httpserver

import (
	"log"
	"net/http"

	"estatecrm/internal/localdb"
	customersvc "estatecrm/internal/service/customer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries the services the router needs.
type Deps struct {
	Customers *customersvc.Service
	// APIToken, when set, gates /api behind a bearer token supplied by
	// the external identity provider. Empty means open (local dev).
	APIToken string
	// Registry serves /metrics; nil disables the endpoint.
	Registry *prometheus.Registry
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, local *localdb.DB, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(local))
	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	if deps.APIToken != "" {
		api.Use(bearerAuth(deps.APIToken))
	}

	h := customerHandlers{svc: deps.Customers, logger: logger}
	api.GET("/customers", h.list)
	api.GET("/customers/active", h.active)
	api.GET("/customers/:id", h.get)
	api.POST("/customers", h.upsert)
	api.PUT("/customers/:id", h.update)
	api.DELETE("/customers/:id", h.remove)
	api.POST("/customers/:id/transition", h.transition)
	api.POST("/customers/:id/archive", h.archive)
	api.POST("/customers/:id/unarchive", h.unarchive)
	api.POST("/sync", h.reconcile)
	api.POST("/export", h.snapshot)

	return router
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(local *localdb.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if local == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "local store not configured"})
			return
		}
		if err := local.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "local store not reachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// bearerAuth accepts the opaque token handed out by the external
// identity provider. The core only cares that a user is signed in.
func bearerAuth(token string) gin.HandlerFunc {
	want := "Bearer " + token
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != want {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		c.Next()
	}
}
