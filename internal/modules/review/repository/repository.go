package repository

import (
	"context"

	"anoa.com/yamdb/internal/entity"
	commonDto "anoa.com/yamdb/pkg/dto"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	Update(ctx context.Context, review *entity.Review, columns map[string]any) error
	Delete(ctx context.Context, review *entity.Review) error
	FindByTitle(ctx context.Context, titleID uint, page commonDto.PageQuery) ([]*entity.Review, int64, error)
	// FindByIDAndTitle only matches a review that belongs to titleID.
	FindByIDAndTitle(ctx context.Context, id, titleID uint) (*entity.Review, error)
	ExistsByTitleAndAuthor(ctx context.Context, titleID, authorID uint) (bool, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Omit("Title", "Author").Create(review).Error
}

func (r *reviewRepository) Update(ctx context.Context, review *entity.Review, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(review).Omit("Title", "Author").Updates(columns).Error
}

// Delete removes the review; its comments cascade in the database.
func (r *reviewRepository) Delete(ctx context.Context, review *entity.Review) error {
	return r.db.WithContext(ctx).Delete(review).Error
}

func (r *reviewRepository) FindByTitle(ctx context.Context, titleID uint, page commonDto.PageQuery) ([]*entity.Review, int64, error) {
	var reviews []*entity.Review
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Review{}).Where("title_id = ?", titleID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Author").
		Order("pub_date DESC").
		Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) FindByIDAndTitle(ctx context.Context, id, titleID uint) (*entity.Review, error) {
	var review entity.Review
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND title_id = ?", id, titleID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ExistsByTitleAndAuthor(ctx context.Context, titleID, authorID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&count).Error
	return count > 0, err
}
