package request

import "github.com/Guyuepp/Go-Clean-Architecture-Feed/domain"

type Post struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
}

// ToDomain: Request -> Domain
func (r *Post) ToDomain() domain.PostInput {
	return domain.PostInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.Category(r.Category),
	}
}

type PostPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

func (r *PostPatch) ToDomain() domain.PostPatch {
	patch := domain.PostPatch{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Category != nil {
		c := domain.Category(*r.Category)
		patch.Category = &c
	}
	return patch
}

type Comment struct {
	Content string `json:"content" binding:"required,notblank"`
}
