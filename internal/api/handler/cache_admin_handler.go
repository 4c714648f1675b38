package handler

import (
	"Ripple/internal/api/dto"
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CacheAdminHandler struct {
	adminSvc service.CacheAdminService
}

func NewCacheAdminHandler(adminSvc service.CacheAdminService) *CacheAdminHandler {
	return &CacheAdminHandler{
		adminSvc: adminSvc,
	}
}

// GetStats 聚合缓存统计与告警
func (h *CacheAdminHandler) GetStats(c *gin.Context) {
	response.Success(c, h.adminSvc.Stats())
}

// AnalyzeUser 单用户缓存画像
func (h *CacheAdminHandler) AnalyzeUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	snap, err := h.adminSvc.AnalyzeUser(userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snap)
}

// GetPostMetrics 单帖运行时指标
func (h *CacheAdminHandler) GetPostMetrics(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	snap, err := h.adminSvc.PostMetrics(postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snap)
}

// ForceWarm 手动触发一轮预热
func (h *CacheAdminHandler) ForceWarm(c *gin.Context) {
	warmed, err := h.adminSvc.ForceWarm(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"warmed": warmed})
}

// ClearTier 清空指定层级
func (h *CacheAdminHandler) ClearTier(c *gin.Context) {
	cleared, err := h.adminSvc.ClearTier(c.Request.Context(), c.Param("tier"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": cleared})
}

// ListTiers 层级与 TTL 列表
func (h *CacheAdminHandler) ListTiers(c *gin.Context) {
	tiers := h.adminSvc.Tiers()
	out := make([]*dto.TierDTO, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, &dto.TierDTO{
			Name:       t.Name,
			TTLSeconds: int64(t.TTL.Seconds()),
		})
	}
	response.Success(c, out)
}

// GetInsights 优化建议
func (h *CacheAdminHandler) GetInsights(c *gin.Context) {
	response.Success(c, h.adminSvc.Insights())
}

// SimulateLoad 合成读负载
func (h *CacheAdminHandler) SimulateLoad(c *gin.Context) {
	var req dto.SimulateLoadDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.adminSvc.SimulateLoad(c.Request.Context(), req.Requests, req.Users, req.Posts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
