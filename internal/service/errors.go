package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrPostNotFound     = errors.New("帖子不存在")
	ErrUserNotFound     = errors.New("用户不存在")
	ErrTierNotFound     = errors.New("缓存层级不存在")
	ErrCacheUnavailable = errors.New("缓存服务不可用")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:     BadRequest,
	ErrPostNotFound:     NotFound,
	ErrUserNotFound:     NotFound,
	ErrTierNotFound:     BadRequest,
	ErrCacheUnavailable: InternalServerError,
	UnExpectedError:     InternalServerError,
}
