package title

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/modules/title/dto"
	"anoa.com/yamdb/internal/modules/title/repository"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCategories struct{ items []*entity.Category }

func (f *fakeCategories) Create(context.Context, *entity.Category) error { return nil }
func (f *fakeCategories) ExistsByName(context.Context, string) (bool, error) {
	return false, nil
}
func (f *fakeCategories) FindAll(context.Context, string, commonDto.PageQuery) ([]*entity.Category, int64, error) {
	return f.items, int64(len(f.items)), nil
}
func (f *fakeCategories) Delete(context.Context, *entity.Category) error { return nil }
func (f *fakeCategories) FindBySlug(_ context.Context, slug string) (*entity.Category, error) {
	for _, c := range f.items {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategories) byID(id uint) *entity.Category {
	for _, c := range f.items {
		if c.ID == id {
			return c
		}
	}
	return nil
}

type fakeGenres struct{ items []entity.Genre }

func (f *fakeGenres) Create(context.Context, *entity.Genre) error { return nil }
func (f *fakeGenres) ExistsByName(context.Context, string) (bool, error) {
	return false, nil
}
func (f *fakeGenres) FindAll(context.Context, string, commonDto.PageQuery) ([]*entity.Genre, int64, error) {
	return nil, 0, nil
}
func (f *fakeGenres) Delete(context.Context, *entity.Genre) error { return nil }
func (f *fakeGenres) FindBySlug(_ context.Context, slug string) (*entity.Genre, error) {
	for i := range f.items {
		if f.items[i].Slug == slug {
			return &f.items[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeGenres) FindBySlugs(_ context.Context, slugs []string) ([]entity.Genre, error) {
	var out []entity.Genre
	for _, g := range f.items {
		for _, s := range slugs {
			if g.Slug == s {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

type fakeTitles struct {
	categories *fakeCategories
	items      map[uint]*entity.Title
	ratings    map[uint]float64
	nextID     uint
}

func newFakeTitles(categories *fakeCategories) *fakeTitles {
	return &fakeTitles{categories: categories, items: map[uint]*entity.Title{}, ratings: map[uint]float64{}}
}

func (f *fakeTitles) Create(_ context.Context, t *entity.Title) error {
	f.nextID++
	t.ID = f.nextID
	stored := *t
	f.items[t.ID] = &stored
	return nil
}

func (f *fakeTitles) Update(_ context.Context, t *entity.Title, changes repository.Changes) error {
	stored := f.items[t.ID]
	for col, v := range changes.Columns {
		switch col {
		case "name":
			stored.Name = v.(string)
		case "year":
			stored.Year = v.(int)
		case "description":
			d := v.(string)
			stored.Description = &d
		case "category_id":
			id := v.(uint)
			stored.CategoryID = &id
		case "poster_url":
			u := v.(string)
			stored.PosterURL = &u
		}
	}
	if changes.Genres != nil {
		stored.Genres = changes.Genres
	}
	return nil
}

func (f *fakeTitles) Delete(_ context.Context, t *entity.Title) error {
	delete(f.items, t.ID)
	return nil
}

func (f *fakeTitles) FindByID(_ context.Context, id uint) (*entity.Title, error) {
	stored, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *stored
	if out.CategoryID != nil {
		out.Category = f.categories.byID(*out.CategoryID)
	}
	if r, ok := f.ratings[id]; ok {
		out.Rating = &r
	}
	return &out, nil
}

func (f *fakeTitles) FindByIDs(ctx context.Context, ids []uint) ([]*entity.Title, error) {
	var out []*entity.Title
	for _, id := range ids {
		if t, err := f.FindByID(ctx, id); err == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTitles) FindAll(ctx context.Context, filter repository.Filter, _ commonDto.PageQuery) ([]*entity.Title, int64, error) {
	var out []*entity.Title
	for id := range f.items {
		t, _ := f.FindByID(ctx, id)
		if filter.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter.Name)) {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (f *fakeTitles) Exists(_ context.Context, id uint) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

type fakeIndex struct {
	indexed map[uint]string
	deleted []uint
	hits    []uint
	err     error
}

func (f *fakeIndex) IndexTitle(_ context.Context, t *entity.Title) error {
	if f.indexed == nil {
		f.indexed = map[uint]string{}
	}
	f.indexed[t.ID] = t.Name
	return nil
}

func (f *fakeIndex) DeleteTitle(_ context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchTitles(context.Context, string, int) ([]uint, error) {
	return f.hits, f.err
}

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, fileName string) (string, error) {
	_, _ = io.ReadAll(r)
	url := "https://res.cloudinary.com/demo/image/upload/" + folder + "/" + fileName
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type fixture struct {
	svc     Service
	titles  *fakeTitles
	index   *fakeIndex
	storage *fakeStorage
}

func newFixture(withStorage bool) *fixture {
	categories := &fakeCategories{items: []*entity.Category{
		{ID: 1, Name: "Films", Slug: "films"},
		{ID: 2, Name: "Books", Slug: "books"},
	}}
	genres := &fakeGenres{items: []entity.Genre{
		{ID: 1, Name: "Drama", Slug: "drama"},
		{ID: 2, Name: "Comedy", Slug: "comedy"},
	}}
	f := &fixture{titles: newFakeTitles(categories), index: &fakeIndex{}}

	if withStorage {
		f.storage = &fakeStorage{}
		f.svc = NewService(f.titles, categories, genres, f.index, f.storage, "yamdb")
	} else {
		f.svc = NewService(f.titles, categories, genres, f.index, nil, "yamdb")
	}
	return f
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func createReq() dto.CreateTitleRequest {
	return dto.CreateTitleRequest{
		Name:        "Solaris",
		Year:        intPtr(1972),
		Description: strPtr("<i>Classic</i>"),
		Genre:       []string{"drama", "comedy", "drama"},
		Category:    "films",
	}
}

func TestCreateTitle_ReturnsReadShape(t *testing.T) {
	f := newFixture(false)

	res, err := f.svc.CreateTitle(context.Background(), createReq())
	require.NoError(t, err)

	assert.Equal(t, "Solaris", res.Name)
	assert.Equal(t, "Classic", *res.Description)
	require.NotNil(t, res.Category)
	assert.Equal(t, "films", res.Category.Slug)
	require.Len(t, res.Genre, 2)
	assert.Equal(t, "Comedy", res.Genre[0].Name, "genres are ordered by name")
	assert.Nil(t, res.Rating, "no reviews means no rating")
	assert.Equal(t, "Solaris", f.index.indexed[res.ID])
}

func TestCreateTitle_UnknownSlugs(t *testing.T) {
	f := newFixture(false)
	req := createReq()
	req.Genre = []string{"drama", "horror"}
	req.Category = "games"

	_, err := f.svc.CreateTitle(context.Background(), req)
	require.ErrorIs(t, err, apperror.ErrInvalidInput)

	var vErr *apperror.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, []string{`genre with slug "horror" does not exist`}, vErr.Fields["genre"])
	assert.Equal(t, []string{`category with slug "games" does not exist`}, vErr.Fields["category"])
	assert.Empty(t, f.titles.items)
}

func TestGetTitle_Rating(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	created, err := f.svc.CreateTitle(ctx, createReq())
	require.NoError(t, err)
	f.titles.ratings[created.ID] = 7.0

	res, err := f.svc.GetTitle(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Rating)
	assert.InDelta(t, 7.0, *res.Rating, 1e-9)

	_, err = f.svc.GetTitle(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateTitle_Partial(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	created, err := f.svc.CreateTitle(ctx, createReq())
	require.NoError(t, err)

	res, err := f.svc.UpdateTitle(ctx, created.ID, dto.UpdateTitleRequest{
		Category: strPtr("books"),
		Genre:    []string{"drama"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Solaris", res.Name, "untouched")
	assert.Equal(t, 1972, res.Year)
	assert.Equal(t, "books", res.Category.Slug)
	require.Len(t, res.Genre, 1)
	assert.Equal(t, "drama", res.Genre[0].Slug)

	_, err = f.svc.UpdateTitle(ctx, created.ID, dto.UpdateTitleRequest{Category: strPtr("nope")})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.UpdateTitle(ctx, 404, dto.UpdateTitleRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteTitle(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	created, err := f.svc.CreateTitle(ctx, createReq())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTitle(ctx, created.ID))
	assert.Equal(t, []uint{created.ID}, f.index.deleted)
	assert.ErrorIs(t, f.svc.DeleteTitle(ctx, created.ID), apperror.ErrNotFound)
}

func TestSearchTitles(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	a, err := f.svc.CreateTitle(ctx, createReq())
	require.NoError(t, err)
	req := createReq()
	req.Name = "Stalker"
	b, err := f.svc.CreateTitle(ctx, req)
	require.NoError(t, err)

	f.index.hits = []uint{b.ID, a.ID, 999}
	res, err := f.svc.SearchTitles(ctx, dto.SearchQuery{Q: "tarkovsky"})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Stalker", res[0].Name, "index rank order is kept")

	f.index.err = errors.New("meili down")
	res, err = f.svc.SearchTitles(ctx, dto.SearchQuery{Q: "sola"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Solaris", res[0].Name)
}

func TestUploadPoster(t *testing.T) {
	f := newFixture(true)
	ctx := context.Background()

	created, err := f.svc.CreateTitle(ctx, createReq())
	require.NoError(t, err)

	first, err := f.svc.UploadPoster(ctx, created.ID, strings.NewReader("img"), "a.png")
	require.NoError(t, err)
	require.NotNil(t, first.PosterURL)
	assert.Contains(t, *first.PosterURL, "yamdb/posters/a.png")

	second, err := f.svc.UploadPoster(ctx, created.ID, strings.NewReader("img"), "b.png")
	require.NoError(t, err)
	assert.Contains(t, *second.PosterURL, "b.png")
	assert.Equal(t, []string{*first.PosterURL}, f.storage.deleted, "previous poster removed")
}

func TestUploadPoster_Unconfigured(t *testing.T) {
	f := newFixture(false)

	_, err := f.svc.UploadPoster(context.Background(), 1, strings.NewReader("img"), "a.png")
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}
