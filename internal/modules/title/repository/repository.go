package repository

import (
	"context"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/database"
	commonDto "anoa.com/yamdb/pkg/dto"
	"gorm.io/gorm"
)

// ratingSelect computes the mean score at query time. AVG over no rows is
// NULL, which leaves Rating nil.
const ratingSelect = "titles.*, (SELECT AVG(reviews.score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

type Filter struct {
	GenreSlug    string
	CategorySlug string
	Name         string
	Year         *int
}

// Changes lists the columns an update touches. Genres nil means keep.
type Changes struct {
	Columns map[string]any
	Genres  []entity.Genre
}

type TitleRepository interface {
	Create(ctx context.Context, title *entity.Title) error
	Update(ctx context.Context, title *entity.Title, changes Changes) error
	Delete(ctx context.Context, title *entity.Title) error
	FindByID(ctx context.Context, id uint) (*entity.Title, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*entity.Title, error)
	FindAll(ctx context.Context, filter Filter, page commonDto.PageQuery) ([]*entity.Title, int64, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

// Create inserts the title and its genre links. Genre rows themselves are
// never upserted.
func (r *titleRepository) Create(ctx context.Context, title *entity.Title) error {
	return r.db.WithContext(ctx).Omit("Category", "Genres.*").Create(title).Error
}

func (r *titleRepository) Update(ctx context.Context, title *entity.Title, changes Changes) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(changes.Columns) > 0 {
			if err := tx.Model(title).Omit("Category", "Genres").Updates(changes.Columns).Error; err != nil {
				return err
			}
		}
		if changes.Genres != nil {
			if err := tx.Model(title).Omit("Genres.*").Association("Genres").Replace(changes.Genres); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the title; reviews and comments cascade in the database.
func (r *titleRepository) Delete(ctx context.Context, title *entity.Title) error {
	return r.db.WithContext(ctx).Select("Genres").Delete(title).Error
}

func (r *titleRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&entity.Title{}).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.name ASC")
		})
}

func (r *titleRepository) FindByID(ctx context.Context, id uint) (*entity.Title, error) {
	var title entity.Title
	if err := r.withRelations(ctx).Where("titles.id = ?", id).First(&title).Error; err != nil {
		return nil, err
	}
	return &title, nil
}

// FindByIDs keeps the order of ids and skips ids that no longer exist.
func (r *titleRepository) FindByIDs(ctx context.Context, ids []uint) ([]*entity.Title, error) {
	if len(ids) == 0 {
		return []*entity.Title{}, nil
	}

	var titles []*entity.Title
	if err := r.withRelations(ctx).Where("titles.id IN ?", ids).Find(&titles).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*entity.Title, len(titles))
	for _, t := range titles {
		byID[t.ID] = t
	}

	ordered := make([]*entity.Title, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

func applyFilter(query *gorm.DB, f Filter) *gorm.DB {
	if f.GenreSlug != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM title_genres
			JOIN genres ON genres.id = title_genres.genre_id
			WHERE title_genres.title_id = titles.id AND genres.slug = ?)`, f.GenreSlug)
	}
	if f.CategorySlug != "" {
		query = query.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.CategorySlug)
	}
	if f.Name != "" {
		query = query.Where(`titles.name ILIKE ? ESCAPE '\'`, database.ContainsPattern(f.Name))
	}
	if f.Year != nil {
		query = query.Where("titles.year = ?", *f.Year)
	}
	return query
}

func (r *titleRepository) FindAll(ctx context.Context, filter Filter, page commonDto.PageQuery) ([]*entity.Title, int64, error) {
	var total int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&entity.Title{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var titles []*entity.Title
	if err := applyFilter(r.withRelations(ctx), filter).
		Order("titles.name ASC").
		Order("titles.id ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&titles).Error; err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (r *titleRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Title{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
