package model

import (
	"time"
)

// UserProjection 用户读模型
type UserProjection struct {
	ID                 uint64    `gorm:"primaryKey"`
	Name               string    `gorm:"size:64;not null"`
	Email              string    `gorm:"size:128"`
	PostsCount         int64     `gorm:"not null;default:0"`
	FollowersCount     int64     `gorm:"not null;default:0"`
	FollowingCount     int64     `gorm:"not null;default:0"`
	TotalLikesGiven    int64     `gorm:"not null;default:0"`
	TotalLikesReceived int64     `gorm:"not null;default:0"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (UserProjection) TableName() string {
	return "user_projections"
}
