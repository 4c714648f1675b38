package job

import (
	"Ripple/internal/pkg/logger"
	"Ripple/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// CacheWarmJob 周期性把热点帖预载进 hot 层
type CacheWarmJob struct {
	cacheSvc service.CacheService
}

func NewCacheWarmJob(cacheSvc service.CacheService) *CacheWarmJob {
	return &CacheWarmJob{cacheSvc: cacheSvc}
}

func (s *CacheWarmJob) Run() {
	traceID := "job-warm-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	warmed, err := s.cacheSvc.WarmTrending(ctx)
	if err != nil {
		log.ErrorContext(ctx, "cache warming error", "err", err)
		return
	}

	log.InfoContext(ctx, "cache warming pass done", "warmed", warmed)
}
