package apigateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"caption-eval-compare/backend/internal/auth"
	"caption-eval-compare/backend/internal/resultapi"
)

// SetupRouter builds the HTTP API. Routes under /api require apiToken
// when it is set.
func SetupRouter(h *resultapi.Handler, apiToken string, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(auth.TokenMiddleware(apiToken))
	{
		api.POST("/ingest", h.IngestBodyHandler)
		api.POST("/ingest/:name", h.IngestNamedHandler)
		api.GET("/session", h.SessionHandler)
		api.GET("/results", h.ListResultsHandler)
		api.GET("/distributions/:category", h.DistributionHandler)

		compareRoutes := api.Group("/compare")
		{
			compareRoutes.POST("/differential", h.DifferentialHandler)
			compareRoutes.POST("/anova", h.AnovaHandler)
		}
	}

	return router
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}
