package review

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/review/dto"
	"anoa.com/yamdb/internal/modules/review/repository"
	"anoa.com/yamdb/internal/permission"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/metrics"
	"anoa.com/yamdb/pkg/ratelimiter"
	"anoa.com/yamdb/pkg/sanitizer"
	"gorm.io/gorm"
)

const duplicateReviewMessage = "you have already reviewed this title"

// TitleChecker reports whether a title exists.
type TitleChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

type Service interface {
	GetReviews(ctx context.Context, titleID uint, page commonDto.PageQuery) (*commonDto.Paginated[dto.ReviewResponse], error)
	GetReview(ctx context.Context, titleID, reviewID uint) (*dto.ReviewResponse, error)
	CreateReview(ctx context.Context, titleID uint, actor *entity.User, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	UpdateReview(ctx context.Context, titleID, reviewID uint, actor *entity.User, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	DeleteReview(ctx context.Context, titleID, reviewID uint, actor *entity.User) error
}

type service struct {
	repo    repository.ReviewRepository
	titles  TitleChecker
	limiter *ratelimiter.Limiter
}

// NewService builds the review service. limiter may be nil.
func NewService(repo repository.ReviewRepository, titles TitleChecker, limiter *ratelimiter.Limiter) Service {
	return &service{repo: repo, titles: titles, limiter: limiter}
}

func (s *service) GetReviews(ctx context.Context, titleID uint, page commonDto.PageQuery) (*commonDto.Paginated[dto.ReviewResponse], error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	page = page.Normalize()
	reviews, total, err := s.repo.FindByTitle(ctx, titleID, page)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		data = append(data, ToResponse(r))
	}

	res := commonDto.NewPaginated(data, page, total)
	return &res, nil
}

func (s *service) GetReview(ctx context.Context, titleID, reviewID uint) (*dto.ReviewResponse, error) {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	res := ToResponse(review)
	return &res, nil
}

func (s *service) CreateReview(ctx context.Context, titleID uint, actor *entity.User, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByTitleAndAuthor(ctx, titleID, actor.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("title", duplicateReviewMessage)
	}

	subject := strconv.FormatUint(uint64(actor.ID), 10)
	if err := s.limiter.Check(ctx, subject, "you are posting reviews too quickly"); err != nil {
		return nil, err
	}

	review := &entity.Review{
		Text:     sanitizer.Text(req.Text),
		Score:    *req.Score,
		TitleID:  titleID,
		AuthorID: actor.ID,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		_ = s.limiter.Clear(ctx, subject)
		// The unique index catches a concurrent duplicate the check missed.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("title", duplicateReviewMessage)
		}
		return nil, err
	}
	review.Author = *actor
	metrics.ReviewsCreated.Inc()

	res := ToResponse(review)
	return &res, nil
}

func (s *service) UpdateReview(ctx context.Context, titleID, reviewID uint, actor *entity.User, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !permission.IsAuthorOrAdminOrModerator(http.MethodPatch, actor, review.AuthorID) {
		return nil, apperror.ErrForbidden
	}

	columns := map[string]any{}
	if req.Text != nil {
		review.Text = sanitizer.Text(*req.Text)
		columns["text"] = review.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
		columns["score"] = review.Score
	}

	if err := s.repo.Update(ctx, review, columns); err != nil {
		return nil, err
	}

	res := ToResponse(review)
	return &res, nil
}

func (s *service) DeleteReview(ctx context.Context, titleID, reviewID uint, actor *entity.User) error {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !permission.IsAuthorOrAdminOrModerator(http.MethodDelete, actor, review.AuthorID) {
		return apperror.ErrForbidden
	}

	return s.repo.Delete(ctx, review)
}

func (s *service) requireTitle(ctx context.Context, titleID uint) error {
	ok, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.NotFound("title not found")
	}
	return nil
}

// findReview resolves a review under its title; a review of another title is
// reported as not found.
func (s *service) findReview(ctx context.Context, titleID, reviewID uint) (*entity.Review, error) {
	review, err := s.repo.FindByIDAndTitle(ctx, reviewID, titleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("review not found")
		}
		return nil, err
	}
	return review, nil
}

func ToResponse(r *entity.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Score:   r.Score,
		Author:  r.Author.Username,
		PubDate: r.PubDate,
	}
}
