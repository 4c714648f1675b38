package service

import (
	"Ripple/internal/model"
	"Ripple/internal/pkg/consts"
	"Ripple/internal/repository"
	"context"
)

const feedPageSize = 50

// QueryService 查询侧读路径，一律经分层缓存走
type QueryService interface {
	GetPost(ctx context.Context, postID, userID uint64) (*model.PostProjection, error)
	GetUserFeed(ctx context.Context, userID uint64, feedType string) ([]*model.FeedRow, error)
}

type queryServiceImpl struct {
	cacheSvc CacheService
	postRepo repository.PostProjectionRepo
	feedRepo repository.FeedRepo
}

func NewQueryService(cacheSvc CacheService, postRepo repository.PostProjectionRepo, feedRepo repository.FeedRepo) QueryService {
	return &queryServiceImpl{
		cacheSvc: cacheSvc,
		postRepo: postRepo,
		feedRepo: feedRepo,
	}
}

func (s *queryServiceImpl) GetPost(ctx context.Context, postID, userID uint64) (*model.PostProjection, error) {
	post, err := s.cacheSvc.GetPost(ctx, postID, userID, func(ctx context.Context) (*model.PostProjection, error) {
		return s.postRepo.GetPostById(ctx, postID)
	})
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *queryServiceImpl) GetUserFeed(ctx context.Context, userID uint64, feedType string) ([]*model.FeedRow, error) {
	if feedType == "" {
		feedType = consts.FeedTypeTimeline
	}
	return s.cacheSvc.GetUserFeed(ctx, userID, feedType, func(ctx context.Context) ([]*model.FeedRow, error) {
		return s.feedRepo.GetUserFeed(ctx, userID, feedPageSize)
	})
}
