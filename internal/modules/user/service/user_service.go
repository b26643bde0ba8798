package service

import (
	"context"
	"errors"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/user/dto"
	"anoa.com/yamdb/internal/modules/user/repository"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/sanitizer"
	"gorm.io/gorm"
)

const (
	usernameTakenMessage = "username already taken"
	emailInUseMessage    = "email already in use"
)

type UserService interface {
	GetAllUsers(ctx context.Context, filter dto.UserFilter) (*commonDto.Paginated[dto.UserResponse], error)
	GetUser(ctx context.Context, username string) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, username string) error
	GetMe(ctx context.Context, actor *entity.User) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, actor *entity.User, req dto.UpdateUserRequest) (*dto.UserResponse, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetAllUsers(ctx context.Context, filter dto.UserFilter) (*commonDto.Paginated[dto.UserResponse], error) {
	page := filter.PageQuery.Normalize()

	users, total, err := s.repo.FindAll(ctx, filter.Search, page)
	if err != nil {
		return nil, err
	}

	data := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, ToResponse(u))
	}

	res := commonDto.NewPaginated(data, page, total)
	return &res, nil
}

func (s *userService) GetUser(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	res := ToResponse(user)
	return &res, nil
}

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := s.checkUnique(ctx, 0, &req.Username, &req.Email); err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: sanitizer.Text(req.FirstName),
		LastName:  sanitizer.Text(req.LastName),
		Bio:       sanitizer.Text(req.Bio),
		Role:      entity.RoleUser,
		IsActive:  true,
	}
	if req.Role != nil {
		user.Role = entity.Role(*req.Role)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("username", "user with this username or email already exists")
		}
		return nil, err
	}

	res := ToResponse(user)
	return &res, nil
}

func (s *userService) UpdateUser(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, req)
}

func (s *userService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, user)
}

func (s *userService) GetMe(ctx context.Context, actor *entity.User) (*dto.UserResponse, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	res := ToResponse(actor)
	return &res, nil
}

// UpdateMe applies a self update. The role always stays the actor's current
// role, whatever the request carries.
func (s *userService) UpdateMe(ctx context.Context, actor *entity.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if actor == nil {
		return nil, apperror.ErrUnauthorized
	}
	req.Role = nil

	user := *actor
	return s.apply(ctx, &user, req)
}

func (s *userService) apply(ctx context.Context, user *entity.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := s.checkUnique(ctx, user.ID, req.Username, req.Email); err != nil {
		return nil, err
	}

	columns := map[string]any{}
	if req.Username != nil && *req.Username != user.Username {
		user.Username = *req.Username
		columns["username"] = user.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		user.Email = *req.Email
		columns["email"] = user.Email
	}
	if req.FirstName != nil {
		user.FirstName = sanitizer.Text(*req.FirstName)
		columns["first_name"] = user.FirstName
	}
	if req.LastName != nil {
		user.LastName = sanitizer.Text(*req.LastName)
		columns["last_name"] = user.LastName
	}
	if req.Bio != nil {
		user.Bio = sanitizer.Text(*req.Bio)
		columns["bio"] = user.Bio
	}
	if req.Role != nil {
		user.Role = entity.Role(*req.Role)
		columns["role"] = user.Role
	}

	if err := s.repo.Update(ctx, user, columns); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("username", "user with this username or email already exists")
		}
		return nil, err
	}

	res := ToResponse(user)
	return &res, nil
}

// checkUnique reports username and email collisions with users other than
// selfID. Nil values are skipped.
func (s *userService) checkUnique(ctx context.Context, selfID uint, username, email *string) error {
	conflicts := &apperror.ValidationError{Kind: apperror.ErrConflict}

	if username != nil {
		other, err := s.repo.FindByUsername(ctx, *username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if other != nil && other.ID != selfID {
			conflicts.Add("username", usernameTakenMessage)
		}
	}

	if email != nil {
		other, err := s.repo.FindByEmail(ctx, *email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if other != nil && other.ID != selfID {
			conflicts.Add("email", emailInUseMessage)
		}
	}

	if conflicts.HasErrors() {
		return conflicts
	}
	return nil
}

func (s *userService) findByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

func ToResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      string(u.Role),
	}
}
