package category

import (
	"context"
	"errors"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/category/dto"
	"anoa.com/yamdb/internal/modules/category/repository"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"gorm.io/gorm"
)

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	GetAllCategories(ctx context.Context, filter dto.CategoryFilter) (*commonDto.Paginated[dto.CategoryResponse], error)
	DeleteCategory(ctx context.Context, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	conflicts := &apperror.ValidationError{Kind: apperror.ErrConflict}

	if existing, err := s.repo.FindBySlug(ctx, req.Slug); err == nil && existing != nil {
		conflicts.Add("slug", "category with this slug already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	taken, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		conflicts.Add("name", "category with this name already exists")
	}
	if conflicts.HasErrors() {
		return nil, conflicts
	}

	category := &entity.Category{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("slug", "category with this slug or name already exists")
		}
		return nil, err
	}

	res := ToResponse(category)
	return &res, nil
}

func (s *categoryService) GetAllCategories(ctx context.Context, filter dto.CategoryFilter) (*commonDto.Paginated[dto.CategoryResponse], error) {
	page := filter.PageQuery.Normalize()

	categories, total, err := s.repo.FindAll(ctx, filter.Search, page)
	if err != nil {
		return nil, err
	}

	data := make([]dto.CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		data = append(data, ToResponse(cat))
	}

	res := commonDto.NewPaginated(data, page, total)
	return &res, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, slug string) error {
	category, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("category not found")
		}
		return err
	}

	return s.repo.Delete(ctx, category)
}

// ToResponse maps a category to its wire shape. Titles reuse it for the
// nested category object.
func ToResponse(c *entity.Category) dto.CategoryResponse {
	return dto.CategoryResponse{Name: c.Name, Slug: c.Slug}
}
