package model

import (
	"time"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
)

type Post struct {
	ID          string    `gorm:"primaryKey;type:char(36)"`
	UserID      string    `gorm:"column:user_id;type:varchar(64);not null;index"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text;not null"`
	Category    string    `gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `gorm:"precision:6;index:idx_post_feed,priority:1,sort:desc;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"precision:6;autoUpdateTime:false"`
}

func (Post) TableName() string {
	return "posts"
}

func (m *Post) ToDomain() domain.Post {
	return domain.Post{
		ID:          m.ID,
		OwnerID:     m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Category:    domain.Category(m.Category),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func NewPostFromDomain(p *domain.Post) *Post {
	return &Post{
		ID:          p.ID,
		UserID:      p.OwnerID,
		Title:       p.Title,
		Description: p.Description,
		Category:    string(p.Category),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
