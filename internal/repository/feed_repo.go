package repository

import (
	"Ripple/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedRepo interface {
	CreateFeedRows(ctx context.Context, rows []*model.FeedRow) error
	GetUserFeed(ctx context.Context, userID uint64, limit int) ([]*model.FeedRow, error)
	CountFeedRowsByPost(ctx context.Context, postID uint64) (int64, error)
}

type feedRepoImpl struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepo {
	return &feedRepoImpl{db: db}
}

// CreateFeedRows 批量写入扇出行，重投递时已存在的 (user_id, post_id) 直接跳过
func (r *feedRepoImpl) CreateFeedRows(ctx context.Context, rows []*model.FeedRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
		DoNothing: true,
	}).CreateInBatches(rows, 200).Error
}

func (r *feedRepoImpl) GetUserFeed(ctx context.Context, userID uint64, limit int) ([]*model.FeedRow, error) {
	rows := make([]*model.FeedRow, 0, limit)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *feedRepoImpl) CountFeedRowsByPost(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FeedRow{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
