package comment

import (
	"context"
	"errors"
	"net/http"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/comment/dto"
	"anoa.com/yamdb/internal/modules/comment/repository"
	"anoa.com/yamdb/internal/permission"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/sanitizer"
	"gorm.io/gorm"
)

// ReviewFinder resolves a review under its title.
type ReviewFinder interface {
	FindByIDAndTitle(ctx context.Context, id, titleID uint) (*entity.Review, error)
}

type Service interface {
	GetComments(ctx context.Context, titleID, reviewID uint, page commonDto.PageQuery) (*commonDto.Paginated[dto.CommentResponse], error)
	GetComment(ctx context.Context, titleID, reviewID, commentID uint) (*dto.CommentResponse, error)
	CreateComment(ctx context.Context, titleID, reviewID uint, actor *entity.User, req dto.CommentRequest) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, titleID, reviewID, commentID uint, actor *entity.User, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, titleID, reviewID, commentID uint, actor *entity.User) error
}

type service struct {
	repo    repository.CommentRepository
	reviews ReviewFinder
}

func NewService(repo repository.CommentRepository, reviews ReviewFinder) Service {
	return &service{repo: repo, reviews: reviews}
}

func (s *service) GetComments(ctx context.Context, titleID, reviewID uint, page commonDto.PageQuery) (*commonDto.Paginated[dto.CommentResponse], error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	page = page.Normalize()
	comments, total, err := s.repo.FindByReview(ctx, reviewID, page)
	if err != nil {
		return nil, err
	}

	data := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		data = append(data, ToResponse(c))
	}

	res := commonDto.NewPaginated(data, page, total)
	return &res, nil
}

func (s *service) GetComment(ctx context.Context, titleID, reviewID, commentID uint) (*dto.CommentResponse, error) {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	res := ToResponse(comment)
	return &res, nil
}

func (s *service) CreateComment(ctx context.Context, titleID, reviewID uint, actor *entity.User, req dto.CommentRequest) (*dto.CommentResponse, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		Text:     sanitizer.Text(req.Text),
		ReviewID: reviewID,
		AuthorID: actor.ID,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = *actor

	res := ToResponse(comment)
	return &res, nil
}

func (s *service) UpdateComment(ctx context.Context, titleID, reviewID, commentID uint, actor *entity.User, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !permission.IsAuthorOrAdminOrModerator(http.MethodPatch, actor, comment.AuthorID) {
		return nil, apperror.ErrForbidden
	}

	columns := map[string]any{}
	if req.Text != nil {
		comment.Text = sanitizer.Text(*req.Text)
		columns["text"] = comment.Text
	}
	if err := s.repo.Update(ctx, comment, columns); err != nil {
		return nil, err
	}

	res := ToResponse(comment)
	return &res, nil
}

func (s *service) DeleteComment(ctx context.Context, titleID, reviewID, commentID uint, actor *entity.User) error {
	comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !permission.IsAuthorOrAdminOrModerator(http.MethodDelete, actor, comment.AuthorID) {
		return apperror.ErrForbidden
	}

	return s.repo.Delete(ctx, comment)
}

func (s *service) requireReview(ctx context.Context, titleID, reviewID uint) error {
	if _, err := s.reviews.FindByIDAndTitle(ctx, reviewID, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("review not found")
		}
		return err
	}
	return nil
}

func (s *service) findComment(ctx context.Context, titleID, reviewID, commentID uint) (*entity.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.repo.FindByIDAndReview(ctx, commentID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("comment not found")
		}
		return nil, err
	}
	return comment, nil
}

func ToResponse(c *entity.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}
