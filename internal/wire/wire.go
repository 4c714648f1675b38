package wire

import (
	"Ripple/internal/api"
	"Ripple/internal/api/config"
	"Ripple/internal/api/handler"
	"Ripple/internal/job"
	"Ripple/internal/pkg/cron"
	"Ripple/internal/pkg/kafka"
	"Ripple/internal/repository"
	"Ripple/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	postRepo := repository.NewPostProjectionRepository(db)
	feedRepo := repository.NewFeedRepository(db)
	userRepo := repository.NewUserProjectionRepository(db)

	popularitySvc := service.NewPopularityService()
	engagementSvc := service.NewEngagementService()
	monitorSvc := service.NewCacheHealthService(cfg.Monitor)

	tierStore := service.NewRedisTierStore()
	cacheSvc := service.NewCacheService(tierStore, popularitySvc, engagementSvc, monitorSvc, postRepo, cfg.Cache)
	querySvc := service.NewQueryService(cacheSvc, postRepo, feedRepo)
	adminSvc := service.NewCacheAdminService(cacheSvc, popularitySvc, engagementSvc, monitorSvc)

	projectionSvc := service.NewProjectionService(postRepo, feedRepo, userRepo, popularitySvc)

	handlers := &api.HandlersGroup{
		QueryHandler:      handler.NewQueryHandler(querySvc),
		CacheAdminHandler: handler.NewCacheAdminHandler(adminSvc),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, projectionSvc)
	if err != nil {
		return nil, err
	}

	cronMgr := cron.NewCronManager(
		cfg.Cache.JobIntervalMinutes,
		job.NewCacheWarmJob(cacheSvc),
		job.NewCacheCleanJob(popularitySvc, engagementSvc),
	)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
