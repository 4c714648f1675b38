package service

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// EngagementKind 互动类型
type EngagementKind int

const (
	EngagementLike EngagementKind = iota + 1
	EngagementComment
)

const (
	trendingMinViews      = 10
	evictIdleWindow       = 2 * time.Hour
	metricsRetention      = 24 * time.Hour
	viewerRecentWindow    = time.Hour
	engagementRecentSpan  = 2 * time.Hour
	highEngagementRate    = 0.05
	evictMaxEngagement    = 0.01
	evictMaxViews         = 50
	trendingBonus         = 100.0
	recencyFloor          = 10.0
	recencyDecayPerHour   = 3.75
	engagementRateWeight  = 0.4
	viewVolumeWeight      = 0.3
	recencyWeight         = 0.2
)

// PostMetricsSnapshot 某一时刻的帖子运行时指标快照
type PostMetricsSnapshot struct {
	PostID                uint64    `json:"postId"`
	TotalViews            int64     `json:"totalViews"`
	Likes                 int64     `json:"likes"`
	Comments              int64     `json:"comments"`
	ViewsLastHour         int64     `json:"viewsLastHour"`
	UniqueViewersLastHour int64     `json:"uniqueViewersLastHour"`
	EngagementsLast2h     int64     `json:"engagementsLast2h"`
	EngagementRate        float64   `json:"engagementRate"`
	Trending              bool      `json:"trending"`
	PopularityScore       float64   `json:"popularityScore"`
	Warmed                bool      `json:"warmed"`
	CreatedAt             time.Time `json:"createdAt"`
	LastAccessed          time.Time `json:"lastAccessed"`
}

// TrendingPost 预热候选
type TrendingPost struct {
	PostID uint64  `json:"postId"`
	Score  float64 `json:"score"`
}

type PopularityService interface {
	SeedPost(postID uint64) float64
	RecordView(postID, viewerID uint64)
	RecordEngagement(postID uint64, kind EngagementKind)
	IsTrending(postID uint64) bool
	PopularityScore(postID uint64) float64
	ShouldEvict(postID uint64) bool
	Snapshot(postID uint64) *PostMetricsSnapshot
	TrendingCandidates(limit int) []*TrendingPost
	MarkWarmed(postID uint64) bool
	PurgeIdle() int
	TrackedCount() int
}

// postMetrics 每帖一份的进程内指标，全部走原子操作，不做跨实例共享
type postMetrics struct {
	createdAt    time.Time
	totalViews   atomic.Int64
	likes        atomic.Int64
	comments     atomic.Int64
	lastAccessed atomic.Int64 // unix nano
	warmed       atomic.Bool

	viewHours   sync.Map // hourKey(int64) -> *atomic.Int64
	engageHours sync.Map // hourKey(int64) -> *atomic.Int64
	viewers     sync.Map // viewerID(uint64) -> lastView unix nano (int64)

	lastPruneHour atomic.Int64
}

type popularityServiceImpl struct {
	metrics sync.Map // postID(uint64) -> *postMetrics
	now     func() time.Time
}

func NewPopularityService() PopularityService {
	return &popularityServiceImpl{now: time.Now}
}

func (s *popularityServiceImpl) get(postID uint64) (*postMetrics, bool) {
	v, ok := s.metrics.Load(postID)
	if !ok {
		return nil, false
	}
	return v.(*postMetrics), true
}

// getOrCreate 首次访问时惰性建档
func (s *popularityServiceImpl) getOrCreate(postID uint64) *postMetrics {
	if m, ok := s.get(postID); ok {
		return m
	}
	fresh := &postMetrics{createdAt: s.now()}
	fresh.lastAccessed.Store(s.now().UnixNano())
	actual, _ := s.metrics.LoadOrStore(postID, fresh)
	return actual.(*postMetrics)
}

// SeedPost 帖子创建时建档（0 观看），返回初始人气分
func (s *popularityServiceImpl) SeedPost(postID uint64) float64 {
	m := s.getOrCreate(postID)
	return s.popularityScore(m, s.now())
}

func hourKey(t time.Time) int64 {
	return t.Unix() / 3600
}

func bucketIncr(buckets *sync.Map, key int64) {
	v, ok := buckets.Load(key)
	if !ok {
		v, _ = buckets.LoadOrStore(key, new(atomic.Int64))
	}
	v.(*atomic.Int64).Add(1)
}

func bucketSum(buckets *sync.Map, minKey int64) int64 {
	var sum int64
	buckets.Range(func(k, v any) bool {
		if k.(int64) >= minKey {
			sum += v.(*atomic.Int64).Load()
		}
		return true
	})
	return sum
}

func (s *popularityServiceImpl) RecordView(postID, viewerID uint64) {
	m := s.getOrCreate(postID)
	now := s.now()

	m.totalViews.Add(1)
	m.lastAccessed.Store(now.UnixNano())
	bucketIncr(&m.viewHours, hourKey(now))
	m.viewers.Store(viewerID, now.UnixNano())

	s.pruneIfHourRolled(m, now)
}

func (s *popularityServiceImpl) RecordEngagement(postID uint64, kind EngagementKind) {
	m := s.getOrCreate(postID)
	now := s.now()

	switch kind {
	case EngagementLike:
		m.likes.Add(1)
	case EngagementComment:
		m.comments.Add(1)
	default:
		return
	}
	m.lastAccessed.Store(now.UnixNano())
	bucketIncr(&m.engageHours, hourKey(now))
}

// pruneIfHourRolled 跨过小时边界时清掉 24h 前的桶和过期的观看者记录
// 多个写入方同时跨界时 CAS 保证只清一次
func (s *popularityServiceImpl) pruneIfHourRolled(m *postMetrics, now time.Time) {
	hk := hourKey(now)
	prev := m.lastPruneHour.Load()
	if prev == hk || !m.lastPruneHour.CompareAndSwap(prev, hk) {
		return
	}

	minHour := hourKey(now.Add(-metricsRetention))
	m.viewHours.Range(func(k, _ any) bool {
		if k.(int64) < minHour {
			m.viewHours.Delete(k)
		}
		return true
	})
	m.engageHours.Range(func(k, _ any) bool {
		if k.(int64) < minHour {
			m.engageHours.Delete(k)
		}
		return true
	})

	minViewer := now.Add(-metricsRetention).UnixNano()
	m.viewers.Range(func(k, v any) bool {
		if v.(int64) < minViewer {
			m.viewers.Delete(k)
		}
		return true
	})
}

func engagementRate(views, likes, comments int64) float64 {
	if views == 0 {
		return 0
	}
	return float64(likes+comments) / float64(views)
}

func (m *postMetrics) viewsLastHour(now time.Time) int64 {
	return bucketSum(&m.viewHours, hourKey(now.Add(-viewerRecentWindow))+1)
}

func (m *postMetrics) engagementsLast2h(now time.Time) int64 {
	return bucketSum(&m.engageHours, hourKey(now.Add(-engagementRecentSpan))+1)
}

func (m *postMetrics) uniqueViewersLastHour(now time.Time) int64 {
	min := now.Add(-viewerRecentWindow).UnixNano()
	var count int64
	m.viewers.Range(func(_, v any) bool {
		if v.(int64) >= min {
			count++
		}
		return true
	})
	return count
}

func (s *popularityServiceImpl) isTrending(m *postMetrics, now time.Time) bool {
	views := m.totalViews.Load()
	if views < trendingMinViews {
		return false
	}

	lastHour := m.viewsLastHour(now)
	rate := engagementRate(views, m.likes.Load(), m.comments.Load())

	return lastHour > 20 ||
		(rate > highEngagementRate && lastHour > 5) ||
		m.engagementsLast2h(now) > 10
}

func (s *popularityServiceImpl) IsTrending(postID uint64) bool {
	m, ok := s.get(postID)
	if !ok {
		return false
	}
	return s.isTrending(m, s.now())
}

// popularityScore 对数观看量 + 互动率 + 新鲜度，热点帖叠加固定加成
func (s *popularityServiceImpl) popularityScore(m *postMetrics, now time.Time) float64 {
	views := m.totalViews.Load()
	rate := engagementRate(views, m.likes.Load(), m.comments.Load())

	hoursOld := now.Sub(m.createdAt).Hours()
	recency := recencyFloor
	if hoursOld < 24 {
		recency = math.Max(recencyFloor, 100-recencyDecayPerHour*hoursOld)
	}

	score := viewVolumeWeight*math.Log(float64(views)+1) +
		engagementRateWeight*(rate*1000) +
		recencyWeight*recency
	if s.isTrending(m, now) {
		score += trendingBonus
	}
	return score
}

func (s *popularityServiceImpl) PopularityScore(postID uint64) float64 {
	m, ok := s.get(postID)
	if !ok {
		return 0
	}
	return s.popularityScore(m, s.now())
}

func (s *popularityServiceImpl) ShouldEvict(postID uint64) bool {
	m, ok := s.get(postID)
	if !ok {
		return false
	}
	now := s.now()

	// 热点或高互动帖无论冷了多久都不逐出
	if s.isTrending(m, now) {
		return false
	}
	views := m.totalViews.Load()
	rate := engagementRate(views, m.likes.Load(), m.comments.Load())
	if rate > highEngagementRate {
		return false
	}

	idle := m.lastAccessed.Load() < now.Add(-evictIdleWindow).UnixNano()
	return idle && rate < evictMaxEngagement && views < evictMaxViews
}

func (s *popularityServiceImpl) Snapshot(postID uint64) *PostMetricsSnapshot {
	m, ok := s.get(postID)
	if !ok {
		return nil
	}
	now := s.now()
	views := m.totalViews.Load()
	likes := m.likes.Load()
	comments := m.comments.Load()

	return &PostMetricsSnapshot{
		PostID:                postID,
		TotalViews:            views,
		Likes:                 likes,
		Comments:              comments,
		ViewsLastHour:         m.viewsLastHour(now),
		UniqueViewersLastHour: m.uniqueViewersLastHour(now),
		EngagementsLast2h:     m.engagementsLast2h(now),
		EngagementRate:        engagementRate(views, likes, comments),
		Trending:              s.isTrending(m, now),
		PopularityScore:       s.popularityScore(m, now),
		Warmed:                m.warmed.Load(),
		CreatedAt:             m.createdAt,
		LastAccessed:          time.Unix(0, m.lastAccessed.Load()),
	}
}

// TrendingCandidates 返回至多 limit 个热点帖，按人气分降序
func (s *popularityServiceImpl) TrendingCandidates(limit int) []*TrendingPost {
	now := s.now()
	candidates := make([]*TrendingPost, 0, limit)

	s.metrics.Range(func(k, v any) bool {
		m := v.(*postMetrics)
		if !s.isTrending(m, now) {
			return true
		}
		candidates = append(candidates, &TrendingPost{
			PostID: k.(uint64),
			Score:  s.popularityScore(m, now),
		})
		return true
	})

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// MarkWarmed 置预热标记，返回本次是否发生翻转
func (s *popularityServiceImpl) MarkWarmed(postID uint64) bool {
	m := s.getOrCreate(postID)
	return m.warmed.CompareAndSwap(false, true)
}

// PurgeIdle 清掉 24h 未被访问的帖子档案，返回清理数量
func (s *popularityServiceImpl) PurgeIdle() int {
	cutoff := s.now().Add(-metricsRetention).UnixNano()
	purged := 0
	s.metrics.Range(func(k, v any) bool {
		if v.(*postMetrics).lastAccessed.Load() < cutoff {
			s.metrics.Delete(k)
			purged++
		}
		return true
	})
	return purged
}

func (s *popularityServiceImpl) TrackedCount() int {
	count := 0
	s.metrics.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
