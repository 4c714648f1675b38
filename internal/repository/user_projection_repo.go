package repository

import (
	"Ripple/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserProjectionRepo interface {
	CreateUser(ctx context.Context, user *model.UserProjection) error
	GetUserById(ctx context.Context, id uint64) (*model.UserProjection, error)
	GetAllUserIDs(ctx context.Context) ([]uint64, error)
	IncrPostsCount(ctx context.Context, userID uint64, delta int64) error
	IncrLikeTotals(ctx context.Context, likerID, authorID uint64, delta int64) error
}

type userProjectionRepoImpl struct {
	db *gorm.DB
}

func NewUserProjectionRepository(db *gorm.DB) UserProjectionRepo {
	return &userProjectionRepoImpl{db: db}
}

// CreateUser 事件重投递时忽略已存在的行
func (r *userProjectionRepoImpl) CreateUser(ctx context.Context, user *model.UserProjection) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(user).Error
}

func (r *userProjectionRepoImpl) GetUserById(ctx context.Context, id uint64) (*model.UserProjection, error) {
	var user model.UserProjection
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetAllUserIDs 扇出用快照，返回当前全部用户 id
func (r *userProjectionRepoImpl) GetAllUserIDs(ctx context.Context) ([]uint64, error) {
	ids := make([]uint64, 0)
	err := r.db.WithContext(ctx).Model(&model.UserProjection{}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// IncrPostsCount 行不存在时返回 gorm.ErrRecordNotFound，由投影层补建占位行后重试
func (r *userProjectionRepoImpl) IncrPostsCount(ctx context.Context, userID uint64, delta int64) error {
	result := r.db.WithContext(ctx).Model(&model.UserProjection{}).
		Where("id = ?", userID).
		UpdateColumn("posts_count", gorm.Expr("GREATEST(posts_count + ?, 0)", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrLikeTotals 点赞双方的累计值在一个事务内更新
func (r *userProjectionRepoImpl) IncrLikeTotals(ctx context.Context, likerID, authorID uint64, delta int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.UserProjection{}).
			Where("id = ?", likerID).
			UpdateColumn("total_likes_given", gorm.Expr("GREATEST(total_likes_given + ?, 0)", delta)).Error; err != nil {
			return err
		}
		return tx.Model(&model.UserProjection{}).
			Where("id = ?", authorID).
			UpdateColumn("total_likes_received", gorm.Expr("GREATEST(total_likes_received + ?, 0)", delta)).Error
	})
}
