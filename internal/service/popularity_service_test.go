package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPopularity(clock *time.Time) *popularityServiceImpl {
	return &popularityServiceImpl{now: func() time.Time { return *clock }}
}

func TestIsTrendingRequiresMinViews(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	// 9 次观看 + 大量互动也不构成热点
	for i := 0; i < 9; i++ {
		svc.RecordView(1, uint64(i+1))
	}
	for i := 0; i < 12; i++ {
		svc.RecordEngagement(1, EngagementLike)
	}
	assert.False(t, svc.IsTrending(1))

	svc.RecordView(1, 10)
	assert.True(t, svc.IsTrending(1))
}

func TestIsTrendingByRecentViews(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	for i := 0; i < 25; i++ {
		svc.RecordView(2, uint64(i+1))
	}
	assert.True(t, svc.IsTrending(2))

	// 未知帖子永远不是热点
	assert.False(t, svc.IsTrending(999))
}

func TestPopularityScoreFormula(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	for i := 0; i < 100; i++ {
		svc.RecordView(3, uint64(i+1))
	}
	for i := 0; i < 10; i++ {
		svc.RecordEngagement(3, EngagementLike)
	}

	// 0.3*ln(101) + 0.4*(0.1*1000) + 0.2*100 + 100(热点加成)
	assert.InDelta(t, 161.38, svc.PopularityScore(3), 0.1)
	assert.Equal(t, float64(0), svc.PopularityScore(999))
}

func TestShouldEvictColdPost(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	// 5 次观看，3 小时无人访问
	for i := 0; i < 5; i++ {
		svc.RecordView(4, uint64(i+1))
	}
	assert.False(t, svc.ShouldEvict(4))

	clock = clock.Add(3 * time.Hour)
	assert.True(t, svc.ShouldEvict(4))
}

func TestShouldEvictNeverWhenTrending(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	for i := 0; i < 25; i++ {
		svc.RecordView(5, uint64(i+1))
	}
	require.True(t, svc.IsTrending(5))
	assert.False(t, svc.ShouldEvict(5))
}

func TestShouldEvictNeverWhenHighEngagement(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	// 高互动率的帖子即使闲置也不逐出
	for i := 0; i < 30; i++ {
		svc.RecordView(6, uint64(i+1))
	}
	for i := 0; i < 3; i++ {
		svc.RecordEngagement(6, EngagementComment)
	}

	clock = clock.Add(3 * time.Hour)
	assert.False(t, svc.ShouldEvict(6))
}

func TestTrendingCandidatesOrderAndLimit(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	// 60 个热点帖 + 1 个冷帖
	for p := uint64(1); p <= 60; p++ {
		for i := 0; i < 25+int(p); i++ {
			svc.RecordView(p, uint64(i+1))
		}
	}
	svc.RecordView(100, 1)

	candidates := svc.TrendingCandidates(50)
	require.Len(t, candidates, 50)
	for i, c := range candidates {
		assert.True(t, svc.IsTrending(c.PostID))
		if i > 0 {
			assert.GreaterOrEqual(t, candidates[i-1].Score, c.Score)
		}
	}
}

func TestMarkWarmedIdempotent(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	assert.True(t, svc.MarkWarmed(7))
	assert.False(t, svc.MarkWarmed(7))
	assert.True(t, svc.Snapshot(7).Warmed)
}

func TestPurgeIdleMetrics(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	svc.RecordView(8, 1)
	svc.RecordView(9, 1)
	require.Equal(t, 2, svc.TrackedCount())

	clock = clock.Add(25 * time.Hour)
	svc.RecordView(9, 2)

	assert.Equal(t, 1, svc.PurgeIdle())
	assert.Equal(t, 1, svc.TrackedCount())
	assert.Nil(t, svc.Snapshot(8))
}

func TestSeedPostInitialScore(t *testing.T) {
	clock := time.Now()
	svc := newTestPopularity(&clock)

	// 0 观看：0.3*ln(1) + 0 + 0.2*100
	assert.InDelta(t, 20.0, svc.SeedPost(10), 0.01)
	require.NotNil(t, svc.Snapshot(10))
	assert.Equal(t, int64(0), svc.Snapshot(10).TotalViews)
}
