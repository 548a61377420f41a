package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository/mysql/model"
	"github.com/sirupsen/logrus"
)

type postRepository struct {
	DB *gorm.DB
}

// mysql层只负责数据库操作
var _ domain.PostDBRepository = (*postRepository)(nil)

// NewPostDBRepository 创建数据库操作层
func NewPostDBRepository(db *gorm.DB) *postRepository {
	return &postRepository{db}
}

func (m *postRepository) FetchPage(ctx context.Context, offset, limit int) (res []domain.Post, err error) {
	var posts []model.Post
	err = m.DB.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).
		Error
	if err != nil {
		return nil, err
	}

	res = make([]domain.Post, 0, len(posts))
	for i := range posts {
		res = append(res, posts[i].ToDomain())
	}
	return res, nil
}

func (m *postRepository) GetByID(ctx context.Context, id string) (res domain.Post, err error) {
	var post model.Post
	err = m.DB.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return res, domain.ErrNotFound
	}
	if err != nil {
		return res, err
	}
	return post.ToDomain(), nil
}

func (m *postRepository) Store(ctx context.Context, p *domain.Post) error {
	postModel := model.NewPostFromDomain(p)
	return m.DB.WithContext(ctx).Create(postModel).Error
}

func (m *postRepository) Update(ctx context.Context, p *domain.Post) error {
	result := m.DB.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"title":       p.Title,
			"description": p.Description,
			"category":    string(p.Category),
			"updated_at":  p.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCascade removes likes, comments and the post as one unit.
// The foreign keys cascade as well, the explicit deletes keep stores without them consistent.
func (m *postRepository) DeleteCascade(ctx context.Context, id string) error {
	return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likes := tx.Where("post_id = ?", id).Delete(&model.PostLike{})
		if likes.Error != nil {
			return likes.Error
		}

		comments := tx.Where("post_id = ?", id).Delete(&model.Comment{})
		if comments.Error != nil {
			return comments.Error
		}

		post := tx.Where("id = ?", id).Delete(&model.Post{})
		if post.Error != nil {
			return post.Error
		}
		if post.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		logrus.Debugf("deleted post %s with %d likes and %d comments", id, likes.RowsAffected, comments.RowsAffected)
		return nil
	})
}

func (m *postRepository) FetchIDs(ctx context.Context, cursor string, limit int) (ids []string, err error) {
	err = m.DB.WithContext(ctx).
		Model(&model.Post{}).
		Select("id").
		Where("id > ?", cursor).
		Order("id").
		Limit(limit).
		Find(&ids).Error
	return
}
