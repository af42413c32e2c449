package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskdeck/internal/config"
)

// NewRouter assembles the gin engine with the ambient middleware chain:
// panic recovery, request logging, metrics and rate limiting. Route
// registration is left to Handler.RegisterRoutes.
func NewRouter(logger *logrus.Logger, cfg config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(metricsMiddleware())
	router.Use(rateLimit(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst))
	return router
}
