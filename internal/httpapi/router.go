package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	healthStatusOK        = "ok"
	healthStatusUnhealthy = "unhealthy"
)

type HealthChecker interface {
	Health() error
}

// RouteRegistrar is implemented by every domain handler.
type RouteRegistrar interface {
	Register(router gin.IRouter)
}

// NewRouter builds the engine with the shared middleware, the system routes
// and the routes of every domain.
func NewRouter(logger *slog.Logger, checker HealthChecker, domains ...RouteRegistrar) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AccessLog(logger), Recovery(logger))
	RegisterSystemRoutes(router, checker)
	for _, d := range domains {
		d.Register(router)
	}
	return router
}

func RegisterSystemRoutes(router gin.IRouter, checker HealthChecker) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := checker.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": healthStatusUnhealthy, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": healthStatusOK})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
