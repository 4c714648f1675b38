package api

import "Ripple/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	QueryHandler      *handler.QueryHandler
	CacheAdminHandler *handler.CacheAdminHandler
}
