package model

import (
	"time"
)

// FeedRow 每用户一行的 Feed 扇出记录
// 扇出集合在帖子创建时固定，后续新用户不回填
type FeedRow struct {
	UserID          uint64    `gorm:"primaryKey;autoIncrement:false"`
	PostID          uint64    `gorm:"primaryKey;autoIncrement:false"`
	AuthorID        uint64    `gorm:"not null"`
	AuthorName      string    `gorm:"size:64;not null"`
	Content         string    `gorm:"type:text"`
	ImageURL        string    `gorm:"size:512"`
	LikeCount       int64     `gorm:"not null;default:0"`
	IsLikedByUser   bool      `gorm:"not null;default:false"`
	PopularityScore float64   `gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (FeedRow) TableName() string {
	return "feed_rows"
}
