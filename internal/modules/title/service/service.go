package title

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"

	"anoa.com/yamdb/internal/entity"
	categoryRepo "anoa.com/yamdb/internal/modules/category/repository"
	categoryService "anoa.com/yamdb/internal/modules/category/service"
	genreDto "anoa.com/yamdb/internal/modules/genre/dto"
	genreRepo "anoa.com/yamdb/internal/modules/genre/repository"
	genreService "anoa.com/yamdb/internal/modules/genre/service"
	search "anoa.com/yamdb/internal/modules/search/service"
	"anoa.com/yamdb/internal/modules/title/dto"
	"anoa.com/yamdb/internal/modules/title/repository"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/sanitizer"
	"anoa.com/yamdb/pkg/storage"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultSearchLimit = 20

type Service interface {
	GetAllTitles(ctx context.Context, filter dto.TitleFilter) (*commonDto.Paginated[dto.TitleResponse], error)
	GetTitle(ctx context.Context, id uint) (*dto.TitleResponse, error)
	CreateTitle(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error)
	UpdateTitle(ctx context.Context, id uint, req dto.UpdateTitleRequest) (*dto.TitleResponse, error)
	DeleteTitle(ctx context.Context, id uint) error
	SearchTitles(ctx context.Context, query dto.SearchQuery) ([]dto.TitleResponse, error)
	UploadPoster(ctx context.Context, id uint, file io.Reader, fileName string) (*dto.TitleResponse, error)
}

type service struct {
	repo         repository.TitleRepository
	categoryRepo categoryRepo.CategoryRepository
	genreRepo    genreRepo.GenreRepository
	index        search.TitleIndex
	imageStorage storage.ImageStorage
	posterFolder string
}

// NewService wires the title service. index and imageStorage may be nil when
// the corresponding backend is not configured.
func NewService(
	repo repository.TitleRepository,
	categoryRepo categoryRepo.CategoryRepository,
	genreRepo genreRepo.GenreRepository,
	index search.TitleIndex,
	imageStorage storage.ImageStorage,
	uploadFolder string,
) Service {
	return &service{
		repo:         repo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		index:        index,
		imageStorage: imageStorage,
		posterFolder: path.Join(uploadFolder, "posters"),
	}
}

func (s *service) GetAllTitles(ctx context.Context, filter dto.TitleFilter) (*commonDto.Paginated[dto.TitleResponse], error) {
	page := filter.PageQuery.Normalize()

	titles, total, err := s.repo.FindAll(ctx, repository.Filter{
		GenreSlug:    filter.Genre,
		CategorySlug: filter.Category,
		Name:         filter.Name,
		Year:         filter.Year,
	}, page)
	if err != nil {
		return nil, err
	}

	res := commonDto.NewPaginated(ToResponses(titles), page, total)
	return &res, nil
}

func (s *service) GetTitle(ctx context.Context, id uint) (*dto.TitleResponse, error) {
	title, err := s.findTitle(ctx, id)
	if err != nil {
		return nil, err
	}
	res := ToResponse(title)
	return &res, nil
}

func (s *service) CreateTitle(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	errs := &apperror.ValidationError{Kind: apperror.ErrInvalidInput}

	genres, err := s.resolveGenres(ctx, req.Genre, errs)
	if err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, req.Category, errs)
	if err != nil {
		return nil, err
	}
	if errs.HasErrors() {
		return nil, errs
	}

	title := &entity.Title{
		Name:        req.Name,
		Year:        *req.Year,
		Description: sanitizer.Optional(req.Description),
		CategoryID:  &category.ID,
		Genres:      genres,
	}
	if err := s.repo.Create(ctx, title); err != nil {
		return nil, err
	}

	return s.reloadAndIndex(ctx, title.ID)
}

func (s *service) UpdateTitle(ctx context.Context, id uint, req dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	title, err := s.findTitle(ctx, id)
	if err != nil {
		return nil, err
	}

	errs := &apperror.ValidationError{Kind: apperror.ErrInvalidInput}
	changes := repository.Changes{Columns: map[string]any{}}

	if req.Name != nil {
		changes.Columns["name"] = *req.Name
	}
	if req.Year != nil {
		changes.Columns["year"] = *req.Year
	}
	if req.Description != nil {
		changes.Columns["description"] = sanitizer.Text(*req.Description)
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category, errs)
		if err != nil {
			return nil, err
		}
		if category != nil {
			changes.Columns["category_id"] = category.ID
		}
	}
	if req.Genre != nil {
		genres, err := s.resolveGenres(ctx, req.Genre, errs)
		if err != nil {
			return nil, err
		}
		changes.Genres = genres
	}
	if errs.HasErrors() {
		return nil, errs
	}

	if err := s.repo.Update(ctx, title, changes); err != nil {
		return nil, err
	}

	return s.reloadAndIndex(ctx, title.ID)
}

func (s *service) DeleteTitle(ctx context.Context, id uint) error {
	title, err := s.findTitle(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, title); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.DeleteTitle(ctx, id); err != nil {
			logrus.WithError(err).WithField("title_id", id).Warn("failed to remove title from search index")
		}
	}
	if title.PosterURL != nil && s.imageStorage != nil {
		if err := s.imageStorage.DeleteImage(ctx, *title.PosterURL); err != nil {
			logrus.WithError(err).WithField("title_id", id).Warn("failed to delete poster")
		}
	}
	return nil
}

// SearchTitles ranks through the search index when one is configured and
// falls back to a name match otherwise.
func (s *service) SearchTitles(ctx context.Context, query dto.SearchQuery) ([]dto.TitleResponse, error) {
	limit := query.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}

	if s.index != nil {
		ids, err := s.index.SearchTitles(ctx, query.Q, limit)
		if err == nil {
			titles, err := s.repo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return ToResponses(titles), nil
		}
		logrus.WithError(err).Warn("search index unavailable, falling back to database")
	}

	titles, _, err := s.repo.FindAll(ctx, repository.Filter{Name: query.Q}, commonDto.PageQuery{Page: 1, Limit: limit})
	if err != nil {
		return nil, err
	}
	return ToResponses(titles), nil
}

func (s *service) UploadPoster(ctx context.Context, id uint, file io.Reader, fileName string) (*dto.TitleResponse, error) {
	if s.imageStorage == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "poster storage is not configured", apperror.ErrUnavailable)
	}

	title, err := s.findTitle(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, file, s.posterFolder, fileName)
	if err != nil {
		return nil, fmt.Errorf("upload poster: %w", err)
	}

	if err := s.repo.Update(ctx, title, repository.Changes{Columns: map[string]any{"poster_url": url}}); err != nil {
		if delErr := s.imageStorage.DeleteImage(ctx, url); delErr != nil {
			logrus.WithError(delErr).Warn("failed to clean up uploaded poster")
		}
		return nil, err
	}

	if title.PosterURL != nil {
		if err := s.imageStorage.DeleteImage(ctx, *title.PosterURL); err != nil {
			logrus.WithError(err).WithField("title_id", id).Warn("failed to delete previous poster")
		}
	}

	return s.reloadAndIndex(ctx, id)
}

func (s *service) findTitle(ctx context.Context, id uint) (*entity.Title, error) {
	title, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("title not found")
		}
		return nil, err
	}
	return title, nil
}

// reloadAndIndex re-reads the title so the response carries nested objects
// and the current rating, then pushes it to the search index.
func (s *service) reloadAndIndex(ctx context.Context, id uint) (*dto.TitleResponse, error) {
	title, err := s.findTitle(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.index != nil {
		if err := s.index.IndexTitle(ctx, title); err != nil {
			logrus.WithError(err).WithField("title_id", id).Warn("failed to index title")
		}
	}

	res := ToResponse(title)
	return &res, nil
}

func (s *service) resolveGenres(ctx context.Context, slugs []string, errs *apperror.ValidationError) ([]entity.Genre, error) {
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		if _, ok := seen[slug]; !ok {
			seen[slug] = struct{}{}
			unique = append(unique, slug)
		}
	}

	genres, err := s.genreRepo.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		found[g.Slug] = struct{}{}
	}
	for _, slug := range unique {
		if _, ok := found[slug]; !ok {
			errs.Add("genre", fmt.Sprintf("genre with slug %q does not exist", slug))
		}
	}
	return genres, nil
}

func (s *service) resolveCategory(ctx context.Context, slug string, errs *apperror.ValidationError) (*entity.Category, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errs.Add("category", fmt.Sprintf("category with slug %q does not exist", slug))
			return nil, nil
		}
		return nil, err
	}
	return category, nil
}

// ToResponse maps a persisted title into the read shape.
func ToResponse(t *entity.Title) dto.TitleResponse {
	res := dto.TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       make([]genreDto.GenreResponse, 0, len(t.Genres)),
		Rating:      t.Rating,
		PosterURL:   t.PosterURL,
	}

	genres := append([]entity.Genre(nil), t.Genres...)
	sort.Slice(genres, func(i, j int) bool { return genres[i].Name < genres[j].Name })
	for i := range genres {
		res.Genre = append(res.Genre, genreService.ToResponse(&genres[i]))
	}

	if t.Category != nil {
		category := categoryService.ToResponse(t.Category)
		res.Category = &category
	}
	return res
}

func ToResponses(titles []*entity.Title) []dto.TitleResponse {
	out := make([]dto.TitleResponse, 0, len(titles))
	for _, t := range titles {
		out = append(out, ToResponse(t))
	}
	return out
}
