package cron

import (
	"Ripple/internal/job"
	"fmt"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine        *cron.Cron
	interval      int
	cacheWarmJob  *job.CacheWarmJob
	cacheCleanJob *job.CacheCleanJob
}

func NewCronManager(intervalMinutes int, cacheWarmJob *job.CacheWarmJob, cacheCleanJob *job.CacheCleanJob) *Manager {
	return &Manager{
		// 预热/清理与请求线程共享无锁结构，任务自身不可重入
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		interval:      intervalMinutes,
		cacheWarmJob:  cacheWarmJob,
		cacheCleanJob: cacheCleanJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	spec := fmt.Sprintf("@every %dm", s.interval)
	if _, err := s.engine.AddJob(spec, s.cacheWarmJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(spec, s.cacheCleanJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 停止调度，正在执行的一轮任务允许跑完
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	ctx := s.engine.Stop()
	<-ctx.Done()
}
