package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngagement(clock *time.Time) *engagementServiceImpl {
	return &engagementServiceImpl{now: func() time.Time { return *clock }}
}

func TestEngagementTierHighByAccessVolume(t *testing.T) {
	clock := time.Now()
	svc := newTestEngagement(&clock)

	// 24h 内 60 次访问 + 0.8 历史命中率
	for i := 0; i < 60; i++ {
		svc.RecordAccess(1, uint64(i+1))
	}
	for i := 0; i < 80; i++ {
		svc.RecordCacheOutcome(1, true)
	}
	for i := 0; i < 20; i++ {
		svc.RecordCacheOutcome(1, false)
	}

	assert.Equal(t, TierHigh, svc.EngagementTier(1))
	assert.Equal(t, 30*time.Minute, svc.RecommendedTTL(1))
}

func TestEngagementTierHighBySessionCadence(t *testing.T) {
	clock := time.Now()
	svc := newTestEngagement(&clock)

	// 11 个会话（间隔超过 30 分钟），每会话 1 次访问，命中率 0.75
	for i := 0; i < 11; i++ {
		svc.RecordAccess(2, uint64(i+1))
		clock = clock.Add(40 * time.Minute)
	}
	for i := 0; i < 3; i++ {
		svc.RecordCacheOutcome(2, true)
	}
	svc.RecordCacheOutcome(2, false)

	assert.Equal(t, TierHigh, svc.EngagementTier(2))
}

func TestEngagementTierLowAndMedium(t *testing.T) {
	clock := time.Now()
	svc := newTestEngagement(&clock)

	// 访问稀少 → LOW
	svc.RecordAccess(3, 1)
	assert.Equal(t, TierLow, svc.EngagementTier(3))
	assert.Equal(t, 5*time.Minute, svc.RecommendedTTL(3))

	// 访问量中等、命中率尚可 → MEDIUM
	for i := 0; i < 20; i++ {
		svc.RecordAccess(4, uint64(i+1))
	}
	for i := 0; i < 6; i++ {
		svc.RecordCacheOutcome(4, true)
	}
	for i := 0; i < 4; i++ {
		svc.RecordCacheOutcome(4, false)
	}
	assert.Equal(t, TierMedium, svc.EngagementTier(4))
	assert.Equal(t, 15*time.Minute, svc.RecommendedTTL(4))

	// 未知用户按 LOW 处理
	assert.Equal(t, TierLow, svc.EngagementTier(999))
}

func TestAccessHistoryIsCapped(t *testing.T) {
	clock := time.Now()
	svc := newTestEngagement(&clock)

	for i := 0; i < 300; i++ {
		svc.RecordAccess(5, uint64(i+1))
	}

	snap := svc.Snapshot(5)
	require.NotNil(t, snap)
	assert.LessOrEqual(t, snap.AccessesLast24h, int64(recentPostCap))
}

func TestShouldArchiveInactiveLowUser(t *testing.T) {
	clock := time.Now()
	svc := newTestEngagement(&clock)

	svc.RecordAccess(6, 1)
	assert.False(t, svc.ShouldArchive(6))

	clock = clock.Add(8 * 24 * time.Hour)
	assert.True(t, svc.ShouldArchive(6))

	assert.Equal(t, 1, svc.ArchiveInactive())
	assert.Equal(t, 0, svc.TrackedCount())
	assert.Nil(t, svc.Snapshot(6))
}

func TestActiveHighUserNotArchived(t *testing.T) {
	clock := time.Now()
	svc := newTestEngagement(&clock)

	for i := 0; i < 60; i++ {
		svc.RecordAccess(7, uint64(i+1))
	}

	assert.Equal(t, TierHigh, svc.EngagementTier(7))
	assert.False(t, svc.ShouldArchive(7))
	assert.Equal(t, 0, svc.ArchiveInactive())
}
