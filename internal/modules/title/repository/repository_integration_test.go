//go:build integration

package repository

import (
	"context"
	"testing"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/internal/testutil"
	commonDto "anoa.com/yamdb/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	repo     TitleRepository
	category entity.Category
	drama    entity.Genre
	comedy   entity.Genre
	alice    entity.User
	bob      entity.User
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewPostgres(t)
	f := &fixture{
		db:       db,
		repo:     NewTitleRepository(db),
		category: entity.Category{Name: "Movies", Slug: "movies"},
		drama:    entity.Genre{Name: "Drama", Slug: "drama"},
		comedy:   entity.Genre{Name: "Comedy", Slug: "comedy"},
		alice:    entity.User{Username: "alice", Email: "alice@example.com", Role: entity.RoleUser, IsActive: true},
		bob:      entity.User{Username: "bob", Email: "bob@example.com", Role: entity.RoleUser, IsActive: true},
	}
	require.NoError(t, db.Create(&f.category).Error)
	require.NoError(t, db.Create(&f.drama).Error)
	require.NoError(t, db.Create(&f.comedy).Error)
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)
	return f
}

func (f *fixture) title(t *testing.T, name string, year int, genres ...entity.Genre) *entity.Title {
	t.Helper()
	title := &entity.Title{Name: name, Year: year, CategoryID: &f.category.ID, Genres: genres}
	require.NoError(t, f.repo.Create(context.Background(), title))
	return title
}

func TestRating_IsMeanOfScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := f.title(t, "Solaris", 1972, f.drama)

	got, err := f.repo.FindByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating)

	require.NoError(t, f.db.Create(&entity.Review{Text: "a", Score: 6, TitleID: title.ID, AuthorID: f.alice.ID}).Error)
	require.NoError(t, f.db.Create(&entity.Review{Text: "b", Score: 8, TitleID: title.ID, AuthorID: f.bob.ID}).Error)

	got, err = f.repo.FindByID(ctx, title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 7.0, *got.Rating, 0.0001)
	require.NotNil(t, got.Category)
	assert.Equal(t, "movies", got.Category.Slug)
	require.Len(t, got.Genres, 1)
}

func TestDeleteCategory_SetsNull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := f.title(t, "Solaris", 1972, f.drama)

	require.NoError(t, f.db.Delete(&f.category).Error)

	got, err := f.repo.FindByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)
}

func TestDeleteTitle_CascadesReviewsAndComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := f.title(t, "Solaris", 1972, f.drama, f.comedy)

	review := entity.Review{Text: "a", Score: 6, TitleID: title.ID, AuthorID: f.alice.ID}
	require.NoError(t, f.db.Create(&review).Error)
	require.NoError(t, f.db.Create(&entity.Comment{Text: "c", ReviewID: review.ID, AuthorID: f.bob.ID}).Error)

	require.NoError(t, f.repo.Delete(ctx, title))

	var reviews, comments, links int64
	require.NoError(t, f.db.Model(&entity.Review{}).Count(&reviews).Error)
	require.NoError(t, f.db.Model(&entity.Comment{}).Count(&comments).Error)
	require.NoError(t, f.db.Table("title_genres").Count(&links).Error)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)
	assert.Zero(t, links)

	// Genres survive.
	var genres int64
	require.NoError(t, f.db.Model(&entity.Genre{}).Count(&genres).Error)
	assert.Equal(t, int64(2), genres)
}

func TestDeleteUser_CascadesOwnContent(t *testing.T) {
	f := newFixture(t)
	title := f.title(t, "Solaris", 1972, f.drama)

	review := entity.Review{Text: "a", Score: 6, TitleID: title.ID, AuthorID: f.alice.ID}
	require.NoError(t, f.db.Create(&review).Error)
	require.NoError(t, f.db.Create(&entity.Comment{Text: "c", ReviewID: review.ID, AuthorID: f.bob.ID}).Error)

	require.NoError(t, f.db.Delete(&f.alice).Error)

	var reviews, comments int64
	require.NoError(t, f.db.Model(&entity.Review{}).Count(&reviews).Error)
	require.NoError(t, f.db.Model(&entity.Comment{}).Count(&comments).Error)
	assert.Zero(t, reviews)
	assert.Zero(t, comments)
}

func TestFindAll_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.title(t, "Solaris", 1972, f.drama)
	f.title(t, "Stalker", 1979, f.drama, f.comedy)
	f.title(t, "Airplane!", 1980, f.comedy)

	page := commonDto.PageQuery{}.Normalize()

	items, total, err := f.repo.FindAll(ctx, Filter{GenreSlug: "comedy"}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "Airplane!", items[0].Name)

	items, _, err = f.repo.FindAll(ctx, Filter{Name: "sta"}, page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Stalker", items[0].Name)

	year := 1972
	items, _, err = f.repo.FindAll(ctx, Filter{Year: &year, CategorySlug: "movies"}, page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Solaris", items[0].Name)

	items, total, err = f.repo.FindAll(ctx, Filter{CategorySlug: "books"}, page)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestFindAll_NameMatchesWildcardsLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.title(t, "Solaris", 1972, f.drama)
	f.title(t, "100% Wolf", 2020, f.comedy)
	f.title(t, "snake_case", 2021, f.comedy)

	page := commonDto.PageQuery{}.Normalize()

	items, total, err := f.repo.FindAll(ctx, Filter{Name: "_"}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "snake_case", items[0].Name)

	items, _, err = f.repo.FindAll(ctx, Filter{Name: "%"}, page)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "100% Wolf", items[0].Name)
}

func TestUniqueReviewPerAuthor(t *testing.T) {
	f := newFixture(t)
	title := f.title(t, "Solaris", 1972, f.drama)

	require.NoError(t, f.db.Create(&entity.Review{Text: "a", Score: 6, TitleID: title.ID, AuthorID: f.alice.ID}).Error)
	err := f.db.Create(&entity.Review{Text: "b", Score: 9, TitleID: title.ID, AuthorID: f.alice.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
