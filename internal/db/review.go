package db

import "gorm.io/gorm"

// 评论审核状态常量
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Review 定义了用户评论模型，提交后默认处于 pending 状态
type Review struct {
	gorm.Model
	Name   string `gorm:"size:255;not null"`
	Review string `gorm:"size:1000;not null"`
	Rating int    `gorm:"not null"`
	Status string `gorm:"size:16;not null;default:pending"`
}

// TableName 指定自定义表名，避免自动复数化导致的歧义。
func (Review) TableName() string {
	return "user_reviews"
}
