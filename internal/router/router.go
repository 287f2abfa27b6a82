package router

import (
	"html/template"
	"net/http"
	"time"

	"github.com/cmspages/internal/config"
	"github.com/cmspages/internal/handler"
	"github.com/cmspages/internal/middleware"
	"github.com/cmspages/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg config.AppConfig, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger.Named("http")))
	r.Use(cors.New(corsConfig(cfg)))

	// 面板模板随二进制嵌入
	r.SetHTMLTemplate(template.Must(web.Templates()))

	r.GET("/", api.ShowDashboard)
	r.GET("/postman-collection.json", api.PostmanCollection)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", api.HealthCheck)

		pages := apiGroup.Group("/cms-pages")
		pages.Use(middleware.BearerAuth(cfg.BearerToken))
		{
			pages.GET("", api.GetPages)
			pages.GET("/stats", api.GetPageStats)
			pages.GET("/:id", api.GetPage)
			pages.POST("", api.CreatePage)
			pages.PUT("/:id", api.UpdatePage)
			pages.DELETE("/:id", api.DeletePage)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Route not found",
		})
	})

	return r
}

func corsConfig(cfg config.AppConfig) cors.Config {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if cfg.AllowsAnyOrigin() {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = cfg.AllowedOrigins
	}
	return conf
}
