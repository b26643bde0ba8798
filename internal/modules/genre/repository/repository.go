package repository

import (
	"context"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/database"
	commonDto "anoa.com/yamdb/pkg/dto"
	"gorm.io/gorm"
)

type GenreRepository interface {
	Create(ctx context.Context, genre *entity.Genre) error
	FindBySlug(ctx context.Context, slug string) (*entity.Genre, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]entity.Genre, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context, search string, page commonDto.PageQuery) ([]*entity.Genre, int64, error)
	Delete(ctx context.Context, genre *entity.Genre) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *entity.Genre) error {
	return r.db.WithContext(ctx).Create(genre).Error
}

func (r *genreRepository) FindBySlug(ctx context.Context, slug string) (*entity.Genre, error) {
	var genre entity.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]entity.Genre, error) {
	var genres []entity.Genre
	if len(slugs) == 0 {
		return genres, nil
	}
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("name ASC").Find(&genres).Error
	return genres, err
}

func (r *genreRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Genre{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *genreRepository) FindAll(ctx context.Context, search string, page commonDto.PageQuery) ([]*entity.Genre, int64, error) {
	var genres []*entity.Genre
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Genre{})
	if search != "" {
		query = query.Where(`name ILIKE ? ESCAPE '\'`, database.ContainsPattern(search))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("name ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&genres).Error; err != nil {
		return nil, 0, err
	}
	return genres, total, nil
}

// Delete drops the genre; title_genres rows go with it through the join
// table's cascade.
func (r *genreRepository) Delete(ctx context.Context, genre *entity.Genre) error {
	return r.db.WithContext(ctx).Delete(genre).Error
}
