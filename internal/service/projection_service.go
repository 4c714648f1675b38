package service

import (
	"Ripple/internal/model"
	"Ripple/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// ProjectionService 将领域事件投影为读模型
// 存储层错误一律向上抛，由消息中间件的重投递/死信机制兜底，这里不做本地重试
type ProjectionService interface {
	ProjectPostCreated(ctx context.Context, postID, authorID uint64, authorName, content, imageURL string, createdAt time.Time) error
	ProjectPostLiked(ctx context.Context, postID, userID uint64) error
	ProjectPostUnliked(ctx context.Context, postID, userID uint64) error
	ProjectUserCreated(ctx context.Context, userID uint64, name, email string, createdAt time.Time) error
}

type projectionServiceImpl struct {
	postRepo   repository.PostProjectionRepo
	feedRepo   repository.FeedRepo
	userRepo   repository.UserProjectionRepo
	popularity PopularityService
}

func NewProjectionService(
	postRepo repository.PostProjectionRepo,
	feedRepo repository.FeedRepo,
	userRepo repository.UserProjectionRepo,
	popularity PopularityService,
) ProjectionService {
	return &projectionServiceImpl{
		postRepo:   postRepo,
		feedRepo:   feedRepo,
		userRepo:   userRepo,
		popularity: popularity,
	}
}

func (s *projectionServiceImpl) ProjectPostCreated(ctx context.Context, postID, authorID uint64, authorName, content, imageURL string, createdAt time.Time) error {
	post := &model.PostProjection{
		ID:              postID,
		AuthorID:        authorID,
		AuthorName:      authorName,
		Content:         content,
		ImageURL:        imageURL,
		PopularityScore: s.popularity.SeedPost(postID),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	if err := s.postRepo.UpsertPost(ctx, post); err != nil {
		return err
	}

	if err := s.incrAuthorPosts(ctx, authorID, authorName, createdAt); err != nil {
		return err
	}

	return s.fanOut(ctx, post)
}

// incrAuthorPosts 作者行缺失时补建占位行并重试一次（自愈）
func (s *projectionServiceImpl) incrAuthorPosts(ctx context.Context, authorID uint64, authorName string, createdAt time.Time) error {
	err := s.userRepo.IncrPostsCount(ctx, authorID, 1)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	log.WarnContext(ctx, "author projection missing, creating placeholder", "authorID", authorID)
	placeholder := &model.UserProjection{
		ID:        authorID,
		Name:      authorName,
		CreatedAt: createdAt,
	}
	if err = s.userRepo.CreateUser(ctx, placeholder); err != nil {
		return err
	}
	return s.userRepo.IncrPostsCount(ctx, authorID, 1)
}

// fanOut 对创建时刻存在的全部用户各写一行，集合就此固定，新用户不回填
func (s *projectionServiceImpl) fanOut(ctx context.Context, post *model.PostProjection) error {
	userIDs, err := s.userRepo.GetAllUserIDs(ctx)
	if err != nil {
		return err
	}

	rows := make([]*model.FeedRow, 0, len(userIDs))
	for _, uid := range userIDs {
		row := &model.FeedRow{}
		if err = copier.Copy(row, post); err != nil {
			return err
		}
		row.UserID = uid
		row.PostID = post.ID
		rows = append(rows, row)
	}
	return s.feedRepo.CreateFeedRows(ctx, rows)
}

// ProjectPostLiked 不预检帖子是否存在，行缺失时由存储层报错并向上传播
func (s *projectionServiceImpl) ProjectPostLiked(ctx context.Context, postID, userID uint64) error {
	if err := s.postRepo.IncrLikeCount(ctx, postID, 1); err != nil {
		return err
	}
	s.popularity.RecordEngagement(postID, EngagementLike)

	post, err := s.postRepo.GetPostById(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return gorm.ErrRecordNotFound
	}
	return s.userRepo.IncrLikeTotals(ctx, userID, post.AuthorID, 1)
}

func (s *projectionServiceImpl) ProjectPostUnliked(ctx context.Context, postID, userID uint64) error {
	if err := s.postRepo.IncrLikeCount(ctx, postID, -1); err != nil {
		return err
	}

	post, err := s.postRepo.GetPostById(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return gorm.ErrRecordNotFound
	}
	return s.userRepo.IncrLikeTotals(ctx, userID, post.AuthorID, -1)
}

func (s *projectionServiceImpl) ProjectUserCreated(ctx context.Context, userID uint64, name, email string, createdAt time.Time) error {
	return s.userRepo.CreateUser(ctx, &model.UserProjection{
		ID:        userID,
		Name:      name,
		Email:     email,
		CreatedAt: createdAt,
	})
}
