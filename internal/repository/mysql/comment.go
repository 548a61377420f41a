package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository/mysql/model"
)

type commentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{
		DB: db,
	}
}

func (c *commentRepository) DeleteByAuthor(ctx context.Context, id, authorID string) (bool, error) {
	result := c.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, authorID).
		Delete(&model.Comment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (c *commentRepository) FetchByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	var comments []model.Comment
	err := c.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	res := make([]domain.Comment, 0, len(comments))
	for i := range comments {
		res = append(res, comments[i].ToDomain())
	}
	return res, nil
}

func (c *commentRepository) GetByID(ctx context.Context, id string) (domain.Comment, error) {
	var comment model.Comment
	err := c.DB.WithContext(ctx).First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Comment{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Comment{}, err
	}
	return comment.ToDomain(), nil
}

func (c *commentRepository) Store(ctx context.Context, comment *domain.Comment) error {
	err := c.DB.WithContext(ctx).Omit(clause.Associations).Create(model.NewCommentFromDomain(comment)).Error
	if isMissingParent(err) {
		return domain.ErrNotFound
	}
	return err
}

var _ domain.CommentRepository = (*commentRepository)(nil)
