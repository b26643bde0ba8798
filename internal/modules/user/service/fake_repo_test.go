package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"anoa.com/yamdb/internal/entity"
	commonDto "anoa.com/yamdb/pkg/dto"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users  map[uint]*entity.User
	nextID uint
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uint]*entity.User{}}
	for _, u := range users {
		r.nextID++
		u.ID = r.nextID
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, other := range r.users {
		if other.Username == u.Username || other.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User, columns map[string]any) error {
	stored, ok := r.users[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range columns {
		switch k {
		case "username":
			stored.Username = v.(string)
		case "email":
			stored.Email = v.(string)
		case "first_name":
			stored.FirstName = v.(string)
		case "last_name":
			stored.LastName = v.(string)
		case "bio":
			stored.Bio = v.(string)
		case "role":
			stored.Role = v.(entity.Role)
		case "confirmation_code":
			stored.ConfirmationCode = v.(string)
		case "confirmation_sent_at":
			if t, ok := v.(time.Time); ok {
				stored.ConfirmationSentAt = &t
			} else {
				stored.ConfirmationSentAt = nil
			}
		}
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, u *entity.User) error {
	delete(r.users, u.ID)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll(_ context.Context, search string, _ commonDto.PageQuery) ([]*entity.User, int64, error) {
	var out []*entity.User
	for _, u := range r.users {
		if search == "" || strings.Contains(u.Username, search) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) byUsername(username string) *entity.User {
	for _, u := range r.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}
