package model

import (
	"time"
)

// PostProjection 帖子读模型，一条事件驱动维护的去范式化行
type PostProjection struct {
	ID              uint64    `gorm:"primaryKey"`
	AuthorID        uint64    `gorm:"not null;index"`
	AuthorName      string    `gorm:"size:64;not null"`
	Content         string    `gorm:"type:text"`
	ImageURL        string    `gorm:"size:512"`
	LikeCount       int64     `gorm:"not null;default:0"`
	CommentCount    int64     `gorm:"not null;default:0"`
	ViewCount       int64     `gorm:"not null;default:0"`
	PopularityScore float64   `gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (PostProjection) TableName() string {
	return "post_projections"
}
