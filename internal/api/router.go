package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/handler"
	"go.uber.org/zap"

	"github.com/ryangomba/abunco/internal/api/graph"
	"github.com/ryangomba/abunco/internal/api/middleware"
	"github.com/ryangomba/abunco/internal/auth"
	"github.com/ryangomba/abunco/internal/config"
	"github.com/ryangomba/abunco/internal/service"
)

// NewRouter creates and configures the Gin router hosting the GraphQL API.
func NewRouter(cfg *config.Config, tenants *auth.Tenants, catalog *service.Catalog, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	schema, err := graph.NewSchema(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	router := gin.New()
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Abunco Inventory API",
			"endpoints": []string{
				"GET /health",
				"POST /graphql",
			},
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	graphqlHandler := handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   cfg.Environment != "production",
		GraphiQL: cfg.Environment != "production",
	})
	graphqlRoutes := router.Group("/graphql")
	graphqlRoutes.Use(middleware.StoreSlugMiddleware(tenants, logger))
	{
		serve := func(c *gin.Context) {
			graphqlHandler.ContextHandler(c.Request.Context(), c.Writer, c.Request)
		}
		graphqlRoutes.POST("", serve)
		graphqlRoutes.GET("", serve)
	}

	return router, nil
}

// customRecovery logs panics and turns them into 500s.
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"errors": []gin.H{{"message": "internal server error"}},
		})
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
