package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itplace/locator-backend-go/internal/config"
	"github.com/itplace/locator-backend-go/internal/handler"
	"github.com/itplace/locator-backend-go/internal/middleware"
	"github.com/itplace/locator-backend-go/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, stores *service.StoreService, viewers *service.ViewerService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Storefront locator API is running",
			"stores":  stores.Catalog().Len(),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	storeHandler := handler.NewStoreHandler(stores)
	viewerHandler := handler.NewViewerHandler(viewers)
	admin := middleware.RequireAdmin(cfg.JWTSecret)
	createLimit := middleware.RateLimit(cfg.SessionCreateLimitPerMinute, time.Minute)
	positionLimit := middleware.RateLimitBySession(cfg.PositionRateLimitPerMinute, time.Minute)
	headingLimit := middleware.RateLimitBySession(cfg.HeadingRateLimitPerMinute, time.Minute)

	api := r.Group("/api/v1")
	{
		// 门店目录
		storeGroup := api.Group("/stores")
		{
			storeGroup.GET("", storeHandler.GetStores)
			storeGroup.GET("/nearby", storeHandler.GetNearby)
			storeGroup.GET("/catalog", storeHandler.GetCatalogInfo)
			storeGroup.GET("/export", admin, storeHandler.Export)
			storeGroup.POST("/import", admin, storeHandler.Import)
			storeGroup.GET("/:id", storeHandler.GetStoreByID)
		}

		// 观看会话 (位置/朝向)
		viewerGroup := api.Group("/viewers")
		{
			viewerGroup.POST("", createLimit, viewerHandler.CreateSession)
			viewerGroup.GET("/:id", viewerHandler.GetSession)
			viewerGroup.DELETE("/:id", viewerHandler.DeleteSession)
			viewerGroup.PUT("/:id/position", positionLimit, viewerHandler.UpdatePosition)
			viewerGroup.PUT("/:id/heading", headingLimit, viewerHandler.UpdateHeading)
			viewerGroup.GET("/:id/visible", viewerHandler.GetVisible)
		}

		api.GET("/visibility", viewerHandler.GetVisibleAt)
	}

	return r
}
