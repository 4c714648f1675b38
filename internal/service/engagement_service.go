package service

import (
	"sync"
	"sync/atomic"
	"time"
)

// EngagementTier 用户活跃层级，驱动个性化 TTL
type EngagementTier string

const (
	TierHigh   EngagementTier = "HIGH"
	TierMedium EngagementTier = "MEDIUM"
	TierLow    EngagementTier = "LOW"
)

const (
	recentPostCap     = 100
	recentSessionCap  = 50
	sessionGap        = 30 * time.Minute
	archiveAfter      = 7 * 24 * time.Hour
	highAccessPerDay  = 50
	lowAccessPerDay   = 5
	highSessionPerDay = 10
	highHitRate       = 0.7
	lowHitRate        = 0.3
)

// UserProfileSnapshot 用户缓存画像快照
type UserProfileSnapshot struct {
	UserID          uint64         `json:"userId"`
	Hits            int64          `json:"hits"`
	Misses          int64          `json:"misses"`
	HitRate         float64        `json:"hitRate"`
	AccessesLast24h int64          `json:"accessesLast24h"`
	SessionsPerDay  int64          `json:"sessionsPerDay"`
	Tier            EngagementTier `json:"tier"`
	RecommendedTTL  time.Duration  `json:"recommendedTtl"`
	LastActivity    time.Time      `json:"lastActivity"`
}

type EngagementService interface {
	RecordAccess(userID, postID uint64)
	RecordCacheOutcome(userID uint64, hit bool)
	EngagementTier(userID uint64) EngagementTier
	RecommendedTTL(userID uint64) time.Duration
	ShouldArchive(userID uint64) bool
	Snapshot(userID uint64) *UserProfileSnapshot
	ArchiveInactive() int
	TrackedCount() int
}

type accessRecord struct {
	postID uint64
	at     int64 // unix nano
}

// userCacheProfile 进程内用户画像，访问历史用序号环裁剪，保持无锁
type userCacheProfile struct {
	hits         atomic.Int64
	misses       atomic.Int64
	lastActivity atomic.Int64 // unix nano

	accessSeq atomic.Int64
	accessLog sync.Map // seq(int64) -> accessRecord

	sessionSeq atomic.Int64
	sessionLog sync.Map // seq(int64) -> unix nano (int64)
}

type engagementServiceImpl struct {
	profiles sync.Map // userID(uint64) -> *userCacheProfile
	now      func() time.Time
}

func NewEngagementService() EngagementService {
	return &engagementServiceImpl{now: time.Now}
}

func (s *engagementServiceImpl) get(userID uint64) (*userCacheProfile, bool) {
	v, ok := s.profiles.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(*userCacheProfile), true
}

func (s *engagementServiceImpl) getOrCreate(userID uint64) *userCacheProfile {
	if p, ok := s.get(userID); ok {
		return p
	}
	actual, _ := s.profiles.LoadOrStore(userID, &userCacheProfile{})
	return actual.(*userCacheProfile)
}

func (s *engagementServiceImpl) RecordAccess(userID, postID uint64) {
	p := s.getOrCreate(userID)
	now := s.now().UnixNano()

	// 距上次活动超过会话间隔即记一次新会话
	last := p.lastActivity.Swap(now)
	if last == 0 || now-last > int64(sessionGap) {
		seq := p.sessionSeq.Add(1)
		p.sessionLog.Store(seq, now)
		p.sessionLog.Delete(seq - recentSessionCap)
	}

	seq := p.accessSeq.Add(1)
	p.accessLog.Store(seq, accessRecord{postID: postID, at: now})
	p.accessLog.Delete(seq - recentPostCap)
}

func (s *engagementServiceImpl) RecordCacheOutcome(userID uint64, hit bool) {
	p := s.getOrCreate(userID)
	if hit {
		p.hits.Add(1)
	} else {
		p.misses.Add(1)
	}
}

func (p *userCacheProfile) hitRate() float64 {
	hits := p.hits.Load()
	total := hits + p.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func (p *userCacheProfile) accessesLast24h(now time.Time) int64 {
	min := now.Add(-24 * time.Hour).UnixNano()
	var count int64
	p.accessLog.Range(func(_, v any) bool {
		if v.(accessRecord).at >= min {
			count++
		}
		return true
	})
	return count
}

func (p *userCacheProfile) sessionsPerDay(now time.Time) int64 {
	min := now.Add(-24 * time.Hour).UnixNano()
	var count int64
	p.sessionLog.Range(func(_, v any) bool {
		if v.(int64) >= min {
			count++
		}
		return true
	})
	return count
}

func (s *engagementServiceImpl) tier(p *userCacheProfile, now time.Time) EngagementTier {
	accesses := p.accessesLast24h(now)
	rate := p.hitRate()

	if accesses > highAccessPerDay ||
		(p.sessionsPerDay(now) > highSessionPerDay && rate > highHitRate) {
		return TierHigh
	}
	if accesses < lowAccessPerDay || rate < lowHitRate {
		return TierLow
	}
	return TierMedium
}

func (s *engagementServiceImpl) EngagementTier(userID uint64) EngagementTier {
	p, ok := s.get(userID)
	if !ok {
		return TierLow
	}
	return s.tier(p, s.now())
}

func tierTTL(tier EngagementTier) time.Duration {
	switch tier {
	case TierHigh:
		return 30 * time.Minute
	case TierMedium:
		return 15 * time.Minute
	default:
		return 5 * time.Minute
	}
}

func (s *engagementServiceImpl) RecommendedTTL(userID uint64) time.Duration {
	return tierTTL(s.EngagementTier(userID))
}

func (s *engagementServiceImpl) ShouldArchive(userID uint64) bool {
	p, ok := s.get(userID)
	if !ok {
		return false
	}
	now := s.now()
	inactive := p.lastActivity.Load() < now.Add(-archiveAfter).UnixNano()
	return inactive && s.tier(p, now) == TierLow
}

func (s *engagementServiceImpl) Snapshot(userID uint64) *UserProfileSnapshot {
	p, ok := s.get(userID)
	if !ok {
		return nil
	}
	now := s.now()
	tier := s.tier(p, now)

	return &UserProfileSnapshot{
		UserID:          userID,
		Hits:            p.hits.Load(),
		Misses:          p.misses.Load(),
		HitRate:         p.hitRate(),
		AccessesLast24h: p.accessesLast24h(now),
		SessionsPerDay:  p.sessionsPerDay(now),
		Tier:            tier,
		RecommendedTTL:  tierTTL(tier),
		LastActivity:    time.Unix(0, p.lastActivity.Load()),
	}
}

// ArchiveInactive 归档 7 天不活跃且低层级的画像，返回归档数量
func (s *engagementServiceImpl) ArchiveInactive() int {
	archived := 0
	s.profiles.Range(func(k, _ any) bool {
		if s.ShouldArchive(k.(uint64)) {
			s.profiles.Delete(k)
			archived++
		}
		return true
	})
	return archived
}

func (s *engagementServiceImpl) TrackedCount() int {
	count := 0
	s.profiles.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
