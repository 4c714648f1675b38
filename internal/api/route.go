package api

import (
	"Ripple/internal/api/middleware"
	"Ripple/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		postGroup := apiGroup.Group("/posts")
		{
			postGroup.GET("/detail/:post_id", group.QueryHandler.GetPost)
		}

		feedGroup := apiGroup.Group("/feed")
		{
			feedGroup.GET("/:user_id", group.QueryHandler.GetFeed)
		}

		cacheGroup := apiGroup.Group("/cache")
		{
			cacheGroup.GET("/stats", group.CacheAdminHandler.GetStats)
			cacheGroup.GET("/analysis/user/:user_id", group.CacheAdminHandler.AnalyzeUser)
			cacheGroup.GET("/metrics/post/:post_id", group.CacheAdminHandler.GetPostMetrics)
			cacheGroup.GET("/tiers", group.CacheAdminHandler.ListTiers)
			cacheGroup.GET("/insights", group.CacheAdminHandler.GetInsights)
			cacheGroup.POST("/warm", group.CacheAdminHandler.ForceWarm)
			cacheGroup.POST("/simulate", group.CacheAdminHandler.SimulateLoad)
			cacheGroup.DELETE("/tier/:tier", group.CacheAdminHandler.ClearTier)
		}
	}

	return r
}
