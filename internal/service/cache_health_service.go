package service

import (
	"Ripple/internal/api/config"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	AlertLowHitRate   = "LOW_HIT_RATE"
	AlertSlowResponse = "SLOW_RESPONSE"
)

// CacheAlert 告警在进程生命周期内不自动清除，按 (类型, 组件) 去重
type CacheAlert struct {
	Type      string    `json:"type"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// LayerStats 单层命中统计
type LayerStats struct {
	Layer   string  `json:"layer"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

// HealthReport 聚合健康报告
type HealthReport struct {
	Layers       []LayerStats  `json:"layers"`
	OverallScore int           `json:"overallScore"`
	AvgLatencyMs float64       `json:"avgLatencyMs"`
	Alerts       []*CacheAlert `json:"alerts"`
}

type CacheHealthService interface {
	RecordHit(layer string)
	RecordMiss(layer string)
	RecordLatency(op string, ms float64)
	HitRate(layer string) float64
	OverallScore() int
	Recommendations() []string
	Report() *HealthReport
}

type layerCounter struct {
	hits   atomic.Int64
	misses atomic.Int64
}

type latencyCounter struct {
	count     atomic.Int64
	sumMicros atomic.Int64
}

type cacheHealthServiceImpl struct {
	layers    sync.Map // layer(string) -> *layerCounter
	latencies sync.Map // op(string) -> *latencyCounter
	alerts    sync.Map // type:component(string) -> *CacheAlert
	cfg       config.MonitorConfig
	now       func() time.Time
}

func NewCacheHealthService(cfg config.MonitorConfig) CacheHealthService {
	cfg.ApplyDefaults()
	return &cacheHealthServiceImpl{cfg: cfg, now: time.Now}
}

func (s *cacheHealthServiceImpl) layer(name string) *layerCounter {
	v, ok := s.layers.Load(name)
	if !ok {
		v, _ = s.layers.LoadOrStore(name, &layerCounter{})
	}
	return v.(*layerCounter)
}

func (s *cacheHealthServiceImpl) RecordHit(layer string) {
	s.layer(layer).hits.Add(1)
	s.checkHitRate(layer)
}

func (s *cacheHealthServiceImpl) RecordMiss(layer string) {
	s.layer(layer).misses.Add(1)
	s.checkHitRate(layer)
}

func (s *cacheHealthServiceImpl) RecordLatency(op string, ms float64) {
	v, ok := s.latencies.Load(op)
	if !ok {
		v, _ = s.latencies.LoadOrStore(op, &latencyCounter{})
	}
	lc := v.(*latencyCounter)
	lc.count.Add(1)
	lc.sumMicros.Add(int64(ms * 1000))

	if ms > s.cfg.SlowResponseMillis {
		s.raise(AlertSlowResponse, op,
			fmt.Sprintf("operation %s took %.1fms (threshold %.0fms)", op, ms, s.cfg.SlowResponseMillis))
	}
}

func (s *cacheHealthServiceImpl) checkHitRate(layer string) {
	c := s.layer(layer)
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total < int64(s.cfg.MinSampleSize) {
		return
	}
	rate := float64(hits) / float64(total)
	if rate < s.cfg.HitRateThreshold {
		s.raise(AlertLowHitRate, layer,
			fmt.Sprintf("layer %s hit rate %.2f below threshold %.2f", layer, rate, s.cfg.HitRateThreshold))
	}
}

// raise 同一 (类型, 组件) 只保留首条，避免刷屏
func (s *cacheHealthServiceImpl) raise(alertType, component, message string) {
	key := alertType + ":" + component
	s.alerts.LoadOrStore(key, &CacheAlert{
		Type:      alertType,
		Component: component,
		Message:   message,
		CreatedAt: s.now(),
	})
}

func (s *cacheHealthServiceImpl) HitRate(layer string) float64 {
	v, ok := s.layers.Load(layer)
	if !ok {
		return 0
	}
	c := v.(*layerCounter)
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func (s *cacheHealthServiceImpl) totals() (hits, total int64) {
	s.layers.Range(func(_, v any) bool {
		c := v.(*layerCounter)
		h := c.hits.Load()
		hits += h
		total += h + c.misses.Load()
		return true
	})
	return hits, total
}

func (s *cacheHealthServiceImpl) avgLatencyMs() float64 {
	var count, sumMicros int64
	s.latencies.Range(func(_, v any) bool {
		lc := v.(*latencyCounter)
		count += lc.count.Load()
		sumMicros += lc.sumMicros.Load()
		return true
	})
	if count == 0 {
		return 0
	}
	return float64(sumMicros) / float64(count) / 1000
}

func (s *cacheHealthServiceImpl) OverallScore() int {
	hits, total := s.totals()
	var avgHitRate float64
	if total > 0 {
		avgHitRate = float64(hits) / float64(total)
	}

	responseTimeScore := 30 - s.avgLatencyMs()/10
	if responseTimeScore < 0 {
		responseTimeScore = 0
	}

	score := int(0.7*avgHitRate*100 + responseTimeScore)
	if score > 100 {
		score = 100
	}
	return score
}

func (s *cacheHealthServiceImpl) Recommendations() []string {
	recs := make([]string, 0)

	s.layers.Range(func(k, v any) bool {
		c := v.(*layerCounter)
		hits := c.hits.Load()
		total := hits + c.misses.Load()
		if total < int64(s.cfg.MinSampleSize) {
			return true
		}
		rate := float64(hits) / float64(total)
		if rate < s.cfg.HitRateThreshold {
			recs = append(recs, fmt.Sprintf(
				"layer %s hit rate is %.0f%%, consider longer TTL or broader warming", k.(string), rate*100))
		}
		return true
	})

	if avg := s.avgLatencyMs(); avg > s.cfg.SlowResponseMillis {
		recs = append(recs, fmt.Sprintf(
			"average cache latency %.1fms exceeds %.0fms, check store connectivity", avg, s.cfg.SlowResponseMillis))
	}
	if len(recs) == 0 {
		recs = append(recs, "cache is healthy, no action required")
	}
	sort.Strings(recs)
	return recs
}

func (s *cacheHealthServiceImpl) Report() *HealthReport {
	layers := make([]LayerStats, 0)
	s.layers.Range(func(k, v any) bool {
		c := v.(*layerCounter)
		hits := c.hits.Load()
		total := hits + c.misses.Load()
		stat := LayerStats{Layer: k.(string), Hits: hits, Misses: total - hits}
		if total > 0 {
			stat.HitRate = float64(hits) / float64(total)
		}
		layers = append(layers, stat)
		return true
	})
	sort.Slice(layers, func(i, j int) bool { return layers[i].Layer < layers[j].Layer })

	alerts := make([]*CacheAlert, 0)
	s.alerts.Range(func(_, v any) bool {
		alerts = append(alerts, v.(*CacheAlert))
		return true
	})
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].CreatedAt.Before(alerts[j].CreatedAt) })

	return &HealthReport{
		Layers:       layers,
		OverallScore: s.OverallScore(),
		AvgLatencyMs: s.avgLatencyMs(),
		Alerts:       alerts,
	}
}
