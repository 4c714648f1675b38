package service

import (
	"Ripple/internal/api/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor() CacheHealthService {
	return NewCacheHealthService(config.MonitorConfig{})
}

func TestHitRatePerLayer(t *testing.T) {
	m := newTestMonitor()

	for i := 0; i < 7; i++ {
		m.RecordHit("hot")
	}
	for i := 0; i < 3; i++ {
		m.RecordMiss("hot")
	}

	assert.InDelta(t, 0.7, m.HitRate("hot"), 0.001)
	assert.Equal(t, float64(0), m.HitRate("unknown"))
}

func TestLowHitRateAlertNeedsMinSample(t *testing.T) {
	m := newTestMonitor()

	// 99 个样本、命中率 0 也不告警
	for i := 0; i < 99; i++ {
		m.RecordMiss("warm")
	}
	assert.Empty(t, m.Report().Alerts)

	m.RecordMiss("warm")
	alerts := m.Report().Alerts
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertLowHitRate, alerts[0].Type)
	assert.Equal(t, "warm", alerts[0].Component)
}

func TestAlertDeduplicatedPerComponent(t *testing.T) {
	m := newTestMonitor()

	for i := 0; i < 200; i++ {
		m.RecordMiss("cold")
	}
	assert.Len(t, m.Report().Alerts, 1)

	// 另一组件的同类告警单独计
	for i := 0; i < 100; i++ {
		m.RecordMiss("hot")
	}
	assert.Len(t, m.Report().Alerts, 2)
}

func TestSlowResponseAlert(t *testing.T) {
	m := newTestMonitor()

	m.RecordLatency("get_post", 99)
	assert.Empty(t, m.Report().Alerts)

	m.RecordLatency("get_post", 150)
	alerts := m.Report().Alerts
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertSlowResponse, alerts[0].Type)
	assert.Equal(t, "get_post", alerts[0].Component)
}

func TestOverallScore(t *testing.T) {
	m := newTestMonitor()

	// 命中率 0.7、无延迟样本：0.7*0.7*100 + 30 = 79
	for i := 0; i < 70; i++ {
		m.RecordHit("hot")
	}
	for i := 0; i < 30; i++ {
		m.RecordMiss("hot")
	}
	assert.Equal(t, 79, m.OverallScore())
}

func TestOverallScoreCappedAt100(t *testing.T) {
	m := newTestMonitor()

	for i := 0; i < 100; i++ {
		m.RecordHit("hot")
	}
	assert.Equal(t, 100, m.OverallScore())

	// 高延迟拉低响应分
	for i := 0; i < 10; i++ {
		m.RecordLatency("get_post", 400)
	}
	assert.Equal(t, 70, m.OverallScore())
}

func TestRecommendations(t *testing.T) {
	m := newTestMonitor()

	recs := m.Recommendations()
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "healthy")

	for i := 0; i < 100; i++ {
		m.RecordMiss("warm_feed")
	}
	recs = m.Recommendations()
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "warm_feed")
}

func TestReportLayersSorted(t *testing.T) {
	m := newTestMonitor()

	m.RecordHit("warm")
	m.RecordHit("cold")
	m.RecordHit("hot")

	report := m.Report()
	require.Len(t, report.Layers, 3)
	assert.Equal(t, "cold", report.Layers[0].Layer)
	assert.Equal(t, "hot", report.Layers[1].Layer)
	assert.Equal(t, "warm", report.Layers[2].Layer)
}
