package genre

import (
	"context"
	"errors"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/genre/dto"
	"anoa.com/yamdb/internal/modules/genre/repository"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"gorm.io/gorm"
)

type GenreService interface {
	CreateGenre(ctx context.Context, req dto.CreateGenreRequest) (*dto.GenreResponse, error)
	GetAllGenres(ctx context.Context, filter dto.GenreFilter) (*commonDto.Paginated[dto.GenreResponse], error)
	DeleteGenre(ctx context.Context, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(repo repository.GenreRepository) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) CreateGenre(ctx context.Context, req dto.CreateGenreRequest) (*dto.GenreResponse, error) {
	conflicts := &apperror.ValidationError{Kind: apperror.ErrConflict}

	if _, err := s.repo.FindBySlug(ctx, req.Slug); err == nil {
		conflicts.Add("slug", "genre with this slug already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	taken, err := s.repo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		conflicts.Add("name", "genre with this name already exists")
	}
	if conflicts.HasErrors() {
		return nil, conflicts
	}

	genre := &entity.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, genre); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("slug", "genre with this slug or name already exists")
		}
		return nil, err
	}

	res := ToResponse(genre)
	return &res, nil
}

func (s *genreService) GetAllGenres(ctx context.Context, filter dto.GenreFilter) (*commonDto.Paginated[dto.GenreResponse], error) {
	page := filter.PageQuery.Normalize()

	genres, total, err := s.repo.FindAll(ctx, filter.Search, page)
	if err != nil {
		return nil, err
	}

	data := make([]dto.GenreResponse, 0, len(genres))
	for _, g := range genres {
		data = append(data, ToResponse(g))
	}

	res := commonDto.NewPaginated(data, page, total)
	return &res, nil
}

func (s *genreService) DeleteGenre(ctx context.Context, slug string) error {
	genre, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("genre not found")
		}
		return err
	}

	return s.repo.Delete(ctx, genre)
}

func ToResponse(g *entity.Genre) dto.GenreResponse {
	return dto.GenreResponse{Name: g.Name, Slug: g.Slug}
}
