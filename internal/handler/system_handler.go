package handler

import (
	"net/http"
	"time"

	"github.com/cmspages/internal/db"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// HealthCheck 提供给负载均衡与监控系统使用的健康检查端点，无需鉴权。
func (a *API) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC().Format(healthTimestampLayout)

	err := db.Ping(ctx, a.db)
	if err == nil {
		_, err = a.pages.Count(ctx)
	}
	if err != nil {
		a.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": now,
			"error":     "Database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": now,
		"service":   serviceName,
		"version":   serviceVersion,
	})
}
