package service

import (
	"Ripple/internal/model"
	"context"
	"math/rand"
	"sync/atomic"
	"time"
)

const (
	simulateMaxRequests = 10000
	simulateMaxUsers    = 1000
	simulateMaxPosts    = 1000
)

// SimulationResult 合成负载结果
type SimulationResult struct {
	Requests     int           `json:"requests"`
	LoaderCalls  int64         `json:"loaderCalls"`
	CacheHits    int64         `json:"cacheHits"`
	Elapsed      time.Duration `json:"elapsed"`
	OverallScore int           `json:"overallScore"`
}

// CacheAdminService 运维侧的缓存控制面
type CacheAdminService interface {
	Stats() *HealthReport
	AnalyzeUser(userID uint64) (*UserProfileSnapshot, error)
	PostMetrics(postID uint64) (*PostMetricsSnapshot, error)
	ForceWarm(ctx context.Context) (int, error)
	ClearTier(ctx context.Context, tier string) (int64, error)
	Tiers() []TierInfo
	Insights() []string
	SimulateLoad(ctx context.Context, requests, users, posts int) (*SimulationResult, error)
}

type cacheAdminServiceImpl struct {
	cache      CacheService
	popularity PopularityService
	engagement EngagementService
	monitor    CacheHealthService
}

func NewCacheAdminService(
	cache CacheService,
	popularity PopularityService,
	engagement EngagementService,
	monitor CacheHealthService,
) CacheAdminService {
	return &cacheAdminServiceImpl{
		cache:      cache,
		popularity: popularity,
		engagement: engagement,
		monitor:    monitor,
	}
}

func (s *cacheAdminServiceImpl) Stats() *HealthReport {
	return s.monitor.Report()
}

func (s *cacheAdminServiceImpl) AnalyzeUser(userID uint64) (*UserProfileSnapshot, error) {
	snap := s.engagement.Snapshot(userID)
	if snap == nil {
		return nil, ErrUserNotFound
	}
	return snap, nil
}

func (s *cacheAdminServiceImpl) PostMetrics(postID uint64) (*PostMetricsSnapshot, error) {
	snap := s.popularity.Snapshot(postID)
	if snap == nil {
		return nil, ErrPostNotFound
	}
	return snap, nil
}

func (s *cacheAdminServiceImpl) ForceWarm(ctx context.Context) (int, error) {
	return s.cache.WarmTrending(ctx)
}

func (s *cacheAdminServiceImpl) ClearTier(ctx context.Context, tier string) (int64, error) {
	return s.cache.ClearTier(ctx, tier)
}

func (s *cacheAdminServiceImpl) Tiers() []TierInfo {
	return s.cache.Tiers()
}

func (s *cacheAdminServiceImpl) Insights() []string {
	return s.monitor.Recommendations()
}

// SimulateLoad 打一轮合成读负载，观察命中率走势，不落投影存储
func (s *cacheAdminServiceImpl) SimulateLoad(ctx context.Context, requests, users, posts int) (*SimulationResult, error) {
	if requests < 1 || requests > simulateMaxRequests ||
		users < 1 || users > simulateMaxUsers ||
		posts < 1 || posts > simulateMaxPosts {
		return nil, ErrParamInvalid
	}

	var loaderCalls atomic.Int64
	start := time.Now()

	for i := 0; i < requests; i++ {
		postID := uint64(rand.Intn(posts) + 1)
		userID := uint64(rand.Intn(users) + 1)

		_, err := s.cache.GetPost(ctx, postID, userID, func(ctx context.Context) (*model.PostProjection, error) {
			loaderCalls.Add(1)
			now := time.Now()
			return &model.PostProjection{
				ID:         postID,
				AuthorID:   userID,
				AuthorName: "simulated",
				Content:    "synthetic load entry",
				CreatedAt:  now,
				UpdatedAt:  now,
			}, nil
		})
		if err != nil {
			return nil, err
		}
	}

	calls := loaderCalls.Load()
	return &SimulationResult{
		Requests:     requests,
		LoaderCalls:  calls,
		CacheHits:    int64(requests) - calls,
		Elapsed:      time.Since(start),
		OverallScore: s.monitor.OverallScore(),
	}, nil
}
