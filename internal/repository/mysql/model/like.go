package model

import (
	"time"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

// PostLike rows are unique per (post_id, user_id); the ledger relies on that index.
type PostLike struct {
	PostID    string    `gorm:"column:post_id;type:char(36);primaryKey"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);primaryKey;index"`
	CreatedAt time.Time `gorm:"precision:6;autoCreateTime:false"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (PostLike) TableName() string {
	return "post_likes"
}

func NewPostLikeFromDomain(l domain.Like) PostLike {
	return PostLike{
		PostID:    l.PostID,
		UserID:    l.UserID,
		CreatedAt: l.CreatedAt,
	}
}
