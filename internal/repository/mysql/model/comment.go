package model

import (
	"time"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

type Comment struct {
	ID        string    `gorm:"primaryKey;type:char(36)"`
	PostID    string    `gorm:"column:post_id;type:char(36);not null;index:idx_comment_post,priority:1"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"precision:6;index:idx_comment_post,priority:2,sort:desc;autoCreateTime:false"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (Comment) TableName() string {
	return "post_comments"
}

func NewCommentFromDomain(c *domain.Comment) *Comment {
	return &Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func (m *Comment) ToDomain() domain.Comment {
	return domain.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
