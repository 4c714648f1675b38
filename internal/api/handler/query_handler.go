package handler

import (
	"Ripple/internal/pkg/response"
	"Ripple/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QueryHandler struct {
	querySvc service.QueryService
}

func NewQueryHandler(querySvc service.QueryService) *QueryHandler {
	return &QueryHandler{
		querySvc: querySvc,
	}
}

// GetPost 读单帖，viewer_id 可选（匿名访问走 anonymous 缓存键）
func (h *QueryHandler) GetPost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var viewerID uint64
	if raw := c.Query("viewer_id"); raw != "" {
		viewerID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
	}

	post, err := h.querySvc.GetPost(c.Request.Context(), postID, viewerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

// GetFeed 读用户 Feed
func (h *QueryHandler) GetFeed(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	rows, err := h.querySvc.GetUserFeed(c.Request.Context(), userID, c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rows)
}
