package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"
	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository/mysql/model"
)

type likeRepository struct {
	DB *gorm.DB
}

var _ domain.LikeRepository = (*likeRepository)(nil)

func NewLikeRepository(db *gorm.DB) *likeRepository {
	return &likeRepository{db}
}

// Insert relies on the (post_id, user_id) primary key: a racing insert for the
// same pair fails with a duplicate key, which is reported as inserted=false.
func (m *likeRepository) Insert(ctx context.Context, l domain.Like) (bool, error) {
	row := model.NewPostLikeFromDomain(l)
	err := m.DB.WithContext(ctx).Omit(clause.Associations).Create(&row).Error
	switch {
	case err == nil:
		return true, nil
	case isDuplicateKey(err):
		return false, nil
	case isMissingParent(err):
		return false, domain.ErrNotFound
	default:
		return false, err
	}
}

func (m *likeRepository) Delete(ctx context.Context, l domain.Like) (bool, error) {
	result := m.DB.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", l.PostID, l.UserID).
		Delete(&model.PostLike{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (m *likeRepository) Exists(ctx context.Context, l domain.Like) (bool, error) {
	var n int64
	err := m.DB.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("post_id = ? AND user_id = ?", l.PostID, l.UserID).
		Count(&n).Error
	return n > 0, err
}

func (m *likeRepository) Count(ctx context.Context, postID string) (int64, error) {
	var n int64
	err := m.DB.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("post_id = ?", postID).
		Count(&n).Error
	return n, err
}

type postLikeCount struct {
	PostID string
	Likes  int64
}

func (m *likeRepository) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	res := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return res, nil
	}

	var rows []postLikeCount
	err := m.DB.WithContext(ctx).
		Model(&model.PostLike{}).
		Select("post_id, COUNT(*) AS likes").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range postIDs {
		res[id] = 0
	}
	for _, row := range rows {
		res[row.PostID] = row.Likes
	}
	return res, nil
}

func (m *likeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) ([]string, error) {
	var res []string
	if len(postIDs) == 0 {
		return res, nil
	}

	err := m.DB.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &res).Error
	return res, err
}
