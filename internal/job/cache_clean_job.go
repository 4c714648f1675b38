package job

import (
	"Ripple/internal/pkg/logger"
	"Ripple/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// CacheCleanJob 清理闲置帖子档案与可归档的用户画像
type CacheCleanJob struct {
	popularitySvc service.PopularityService
	engagementSvc service.EngagementService
}

func NewCacheCleanJob(popularitySvc service.PopularityService, engagementSvc service.EngagementService) *CacheCleanJob {
	return &CacheCleanJob{
		popularitySvc: popularitySvc,
		engagementSvc: engagementSvc,
	}
}

func (s *CacheCleanJob) Run() {
	traceID := "job-clean-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	purged := s.popularitySvc.PurgeIdle()
	archived := s.engagementSvc.ArchiveInactive()

	log.InfoContext(ctx, "cache cleanup pass done",
		"purged_posts", purged,
		"archived_profiles", archived,
		"tracked_posts", s.popularitySvc.TrackedCount(),
		"tracked_profiles", s.engagementSvc.TrackedCount())
}
