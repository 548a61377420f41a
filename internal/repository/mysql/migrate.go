package mysql

import (
	"gorm.io/gorm"

	"github.com/Guyuepp/Go-Clean-Architecture-Feed/internal/repository/mysql/model"
)

// AutoMigrate creates the posts, post_likes and post_comments tables with their
// unique and cascading constraints.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Post{}, &model.PostLike{}, &model.Comment{})
}
