package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/orbs-network/twap-go/internal/handlers"
	"github.com/orbs-network/twap-go/internal/services"
)

// SetupRouter wires the read-only HTTP surface: health, metrics and the
// order API.
func SetupRouter(twap *services.TWAPService, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", handlers.HealthCheckHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	orderHandler := handlers.NewOrderHandler(twap, logger)
	api := r.Group("/api/v1")
	{
		api.GET("/orders", orderHandler.ListOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)
	}

	return r
}
