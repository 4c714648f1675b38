package service

import (
	"Ripple/internal/api/config"
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// PostLoader 缓存未命中时从投影存储取数
type PostLoader func(ctx context.Context) (*model.PostProjection, error)

// FeedLoader Feed 未命中时的取数回调
type FeedLoader func(ctx context.Context) ([]*model.FeedRow, error)

// TierInfo 层级及其 TTL
type TierInfo struct {
	Name string        `json:"name"`
	TTL  time.Duration `json:"ttl"`
}

type CacheService interface {
	GetPost(ctx context.Context, postID, userID uint64, loader PostLoader) (*model.PostProjection, error)
	GetUserFeed(ctx context.Context, userID uint64, feedType string, loader FeedLoader) ([]*model.FeedRow, error)
	WarmTrending(ctx context.Context) (int, error)
	ClearTier(ctx context.Context, tier string) (int64, error)
	Tiers() []TierInfo
}

type cacheServiceImpl struct {
	store      TierStore
	popularity PopularityService
	engagement EngagementService
	monitor    CacheHealthService
	postRepo   repository.PostProjectionRepo
	ttls       map[string]time.Duration
	warmBatch  int
}

func NewCacheService(
	store TierStore,
	popularity PopularityService,
	engagement EngagementService,
	monitor CacheHealthService,
	postRepo repository.PostProjectionRepo,
	cfg config.CacheConfig,
) CacheService {
	return &cacheServiceImpl{
		store:      store,
		popularity: popularity,
		engagement: engagement,
		monitor:    monitor,
		postRepo:   postRepo,
		ttls: map[string]time.Duration{
			consts.CacheTierHot:  time.Duration(cfg.HotTTLMinutes) * time.Minute,
			consts.CacheTierWarm: time.Duration(cfg.WarmTTLMinutes) * time.Minute,
			consts.CacheTierCold: time.Duration(cfg.ColdTTLMinutes) * time.Minute,
		},
		warmBatch: cfg.WarmBatchSize,
	}
}

// ClassifyTier 由指标快照确定层级，同一快照两次调用结果一致
// 无指标的帖子落到 cold
func ClassifyTier(snap *PostMetricsSnapshot) string {
	if snap == nil {
		return consts.CacheTierCold
	}

	if (snap.ViewsLastHour > 100 && snap.UniqueViewersLastHour > 50) ||
		(snap.EngagementRate > 0.1 && snap.Trending) {
		return consts.CacheTierHot
	}
	if snap.ViewsLastHour > 20 ||
		snap.UniqueViewersLastHour > 10 ||
		snap.EngagementRate > 0.05 {
		return consts.CacheTierWarm
	}
	return consts.CacheTierCold
}

func postCacheKey(postID, userID uint64) string {
	userTok := consts.AnonymousUserToken
	if userID != 0 {
		userTok = strconv.FormatUint(userID, 10)
	}
	return fmt.Sprintf("post:%d:user:%s", postID, userTok)
}

func feedCacheKey(userID uint64, feedType string) string {
	return fmt.Sprintf("feed:%d:%s", userID, feedType)
}

func (s *cacheServiceImpl) GetPost(ctx context.Context, postID, userID uint64, loader PostLoader) (*model.PostProjection, error) {
	start := time.Now()
	defer func() {
		s.monitor.RecordLatency("get_post", float64(time.Since(start).Microseconds())/1000)
	}()

	s.popularity.RecordView(postID, userID)
	if userID != 0 {
		s.engagement.RecordAccess(userID, postID)
	}

	tier := ClassifyTier(s.popularity.Snapshot(postID))
	key := postCacheKey(postID, userID)

	// 缓存不可用对调用方不可见，按未命中处理
	raw, found, err := s.store.Get(ctx, tier, key)
	if err != nil {
		log.WarnContext(ctx, "cache tier unavailable, fallback to loader", "tier", tier, "err", err)
		found = false
	}

	if found {
		var post model.PostProjection
		if uerr := json.Unmarshal([]byte(raw), &post); uerr == nil {
			s.monitor.RecordHit(tier)
			if userID != 0 {
				s.engagement.RecordCacheOutcome(userID, true)
			}
			return &post, nil
		}
		log.WarnContext(ctx, "corrupt cache entry dropped", "tier", tier, "key", key)
	}

	s.monitor.RecordMiss(tier)
	if userID != 0 {
		s.engagement.RecordCacheOutcome(userID, false)
	}

	post, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}

	s.writeBack(ctx, tier, key, post)
	return post, nil
}

// writeBack 回写选中层级，hot 额外级联到 warm，层级回落后仍可命中
func (s *cacheServiceImpl) writeBack(ctx context.Context, tier, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.ErrorContext(ctx, "marshal cache value error", "key", key, "err", err)
		return
	}

	if err = s.store.Set(ctx, tier, key, string(raw), s.ttls[tier]); err != nil {
		log.WarnContext(ctx, "cache write skipped", "tier", tier, "key", key, "err", err)
		return
	}
	if tier == consts.CacheTierHot {
		if err = s.store.Set(ctx, consts.CacheTierWarm, key, string(raw), s.ttls[consts.CacheTierWarm]); err != nil {
			log.WarnContext(ctx, "cascade write skipped", "key", key, "err", err)
		}
	}
}

func (s *cacheServiceImpl) GetUserFeed(ctx context.Context, userID uint64, feedType string, loader FeedLoader) ([]*model.FeedRow, error) {
	start := time.Now()
	defer func() {
		s.monitor.RecordLatency("get_user_feed", float64(time.Since(start).Microseconds())/1000)
	}()

	tier := consts.CacheTierWarm
	if s.engagement.EngagementTier(userID) == TierHigh {
		tier = consts.CacheTierHot
	}
	layer := tier + "_feed"
	key := feedCacheKey(userID, feedType)

	raw, found, err := s.store.Get(ctx, tier, key)
	if err != nil {
		log.WarnContext(ctx, "cache tier unavailable, fallback to loader", "tier", tier, "err", err)
		found = false
	}

	if found {
		rows := make([]*model.FeedRow, 0)
		if uerr := json.Unmarshal([]byte(raw), &rows); uerr == nil {
			s.monitor.RecordHit(layer)
			s.engagement.RecordCacheOutcome(userID, true)
			return rows, nil
		}
		log.WarnContext(ctx, "corrupt cache entry dropped", "tier", tier, "key", key)
	}

	s.monitor.RecordMiss(layer)
	s.engagement.RecordCacheOutcome(userID, false)

	rows, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		return nil, nil
	}

	s.writeBack(ctx, tier, key, rows)
	return rows, nil
}

// WarmTrending 选取人气分最高的热点帖，预载进 hot 层并置预热标记
func (s *cacheServiceImpl) WarmTrending(ctx context.Context) (int, error) {
	candidates := s.popularity.TrendingCandidates(s.warmBatch)
	if len(candidates) == 0 {
		return 0, nil
	}

	ids := make([]uint64, 0, len(candidates))
	scores := make(map[uint64]float64, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.PostID)
		scores[c.PostID] = c.Score
	}

	posts, err := s.postRepo.GetPostByIds(ctx, ids)
	if err != nil {
		return 0, err
	}

	warmed := 0
	for _, post := range posts {
		post.PopularityScore = scores[post.ID]
		s.writeBack(ctx, consts.CacheTierHot, postCacheKey(post.ID, 0), post)

		if err = s.postRepo.UpdatePopularityScore(ctx, post.ID, post.PopularityScore); err != nil {
			log.WarnContext(ctx, "persist popularity score error", "postID", post.ID, "err", err)
		}
		s.popularity.MarkWarmed(post.ID)
		warmed++
	}

	log.InfoContext(ctx, "cache warming finished", "candidates", len(candidates), "warmed", warmed)
	return warmed, nil
}

func (s *cacheServiceImpl) ClearTier(ctx context.Context, tier string) (int64, error) {
	if _, ok := s.ttls[tier]; !ok {
		return 0, ErrTierNotFound
	}
	return s.store.Clear(ctx, tier)
}

func (s *cacheServiceImpl) Tiers() []TierInfo {
	return []TierInfo{
		{Name: consts.CacheTierHot, TTL: s.ttls[consts.CacheTierHot]},
		{Name: consts.CacheTierWarm, TTL: s.ttls[consts.CacheTierWarm]},
		{Name: consts.CacheTierCold, TTL: s.ttls[consts.CacheTierCold]},
	}
}
