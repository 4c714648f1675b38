package repository

import (
	"Ripple/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostProjectionRepo interface {
	UpsertPost(ctx context.Context, post *model.PostProjection) error
	GetPostById(ctx context.Context, id uint64) (*model.PostProjection, error)
	GetPostByIds(ctx context.Context, ids []uint64) ([]*model.PostProjection, error)
	IncrLikeCount(ctx context.Context, postID uint64, delta int64) error
	UpdatePopularityScore(ctx context.Context, postID uint64, score float64) error
}

type postProjectionRepoImpl struct {
	db *gorm.DB
}

func NewPostProjectionRepository(db *gorm.DB) PostProjectionRepo {
	return &postProjectionRepoImpl{db: db}
}

// UpsertPost 采用 Upsert 逻辑。事件可能重投递，id 已存在时覆写去范式化字段
func (r *postProjectionRepoImpl) UpsertPost(ctx context.Context, post *model.PostProjection) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"author_name",
			"content",
			"image_url",
			"popularity_score",
			"updated_at",
		}),
	}).Create(post).Error
}

func (r *postProjectionRepoImpl) GetPostById(ctx context.Context, id uint64) (*model.PostProjection, error) {
	var post model.PostProjection
	err := r.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (r *postProjectionRepoImpl) GetPostByIds(ctx context.Context, ids []uint64) ([]*model.PostProjection, error) {
	posts := make([]*model.PostProjection, 0, len(ids))
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// IncrLikeCount 点赞计数增减，行不存在时返回 gorm.ErrRecordNotFound 交由上游处理
func (r *postProjectionRepoImpl) IncrLikeCount(ctx context.Context, postID uint64, delta int64) error {
	result := r.db.WithContext(ctx).Model(&model.PostProjection{}).
		Where("id = ?", postID).
		UpdateColumn("like_count", gorm.Expr("GREATEST(like_count + ?, 0)", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postProjectionRepoImpl) UpdatePopularityScore(ctx context.Context, postID uint64, score float64) error {
	return r.db.WithContext(ctx).Model(&model.PostProjection{}).
		Where("id = ?", postID).
		UpdateColumn("popularity_score", score).Error
}
