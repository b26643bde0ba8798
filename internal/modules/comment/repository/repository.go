package repository

import (
	"context"

	"anoa.com/yamdb/internal/entity"
	commonDto "anoa.com/yamdb/pkg/dto"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	Update(ctx context.Context, comment *entity.Comment, columns map[string]any) error
	Delete(ctx context.Context, comment *entity.Comment) error
	FindByReview(ctx context.Context, reviewID uint, page commonDto.PageQuery) ([]*entity.Comment, int64, error)
	FindByIDAndReview(ctx context.Context, id, reviewID uint) (*entity.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Omit("Review", "Author").Create(comment).Error
}

func (r *commentRepository) Update(ctx context.Context, comment *entity.Comment, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(comment).Omit("Review", "Author").Updates(columns).Error
}

func (r *commentRepository) Delete(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Delete(comment).Error
}

func (r *commentRepository) FindByReview(ctx context.Context, reviewID uint, page commonDto.PageQuery) ([]*entity.Comment, int64, error) {
	var comments []*entity.Comment
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Comment{}).Where("review_id = ?", reviewID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Author").
		Order("id ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) FindByIDAndReview(ctx context.Context, id, reviewID uint) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND review_id = ?", id, reviewID).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}
