package search

import (
	"context"
	"encoding/json"
	"strconv"

	"anoa.com/yamdb/internal/entity"
	"anoa.com/yamdb/pkg/sanitizer"
	"github.com/meilisearch/meilisearch-go"
	"github.com/sirupsen/logrus"
)

const titlesIndex = "titles"

// TitleIndex keeps the full text index of titles in step with the database.
type TitleIndex interface {
	IndexTitle(ctx context.Context, title *entity.Title) error
	DeleteTitle(ctx context.Context, id uint) error
	// SearchTitles returns matching title ids, best match first.
	SearchTitles(ctx context.Context, query string, limit int) ([]uint, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

// NewMeiliSearchService returns nil when host is empty; callers fall back to
// database search.
func NewMeiliSearchService(host, apiKey string) TitleIndex {
	if host == "" {
		logrus.Warn("MEILISEARCH_HOST is not set, title search uses the database")
		return nil
	}

	s := &meiliSearchService{
		client: meilisearch.New(host, meilisearch.WithAPIKey(apiKey)),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	index := s.client.Index(titlesIndex)

	searchable := []string{"name", "description", "genres", "category"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		logrus.WithError(err).Warn("failed to update titles searchable attributes")
	}

	filterableAttrs := []string{"year", "category_slug", "genre_slugs"}
	filterable := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterable[i] = v
	}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		logrus.WithError(err).Warn("failed to update titles filterable attributes")
	}

	sortable := []string{"name", "year"}
	if _, err := index.UpdateSortableAttributes(&sortable); err != nil {
		logrus.WithError(err).Warn("failed to update titles sortable attributes")
	}

	logrus.Info("meilisearch indexes initialized")
}

type titleDoc struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Year         int      `json:"year"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	CategorySlug string   `json:"category_slug"`
	Genres       []string `json:"genres"`
	GenreSlugs   []string `json:"genre_slugs"`
}

func toDoc(t *entity.Title) titleDoc {
	doc := titleDoc{
		ID:         t.ID,
		Name:       t.Name,
		Year:       t.Year,
		Genres:     []string{},
		GenreSlugs: []string{},
	}
	if t.Description != nil {
		doc.Description = sanitizer.Text(*t.Description)
	}
	if t.Category != nil {
		doc.Category = t.Category.Name
		doc.CategorySlug = t.Category.Slug
	}
	for _, g := range t.Genres {
		doc.Genres = append(doc.Genres, g.Name)
		doc.GenreSlugs = append(doc.GenreSlugs, g.Slug)
	}
	return doc
}

func (s *meiliSearchService) IndexTitle(_ context.Context, title *entity.Title) error {
	task, err := s.client.Index(titlesIndex).AddDocuments([]titleDoc{toDoc(title)}, strPtr("id"))
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"title_id": title.ID, "task_uid": task.TaskUID}).Debug("indexed title")
	return nil
}

func (s *meiliSearchService) DeleteTitle(_ context.Context, id uint) error {
	_, err := s.client.Index(titlesIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliSearchService) SearchTitles(_ context.Context, query string, limit int) ([]uint, error) {
	resp, err := s.client.Index(titlesIndex).Search(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}
	return decodeHitIDs(resp.Hits)
}

// decodeHitIDs goes through JSON so it does not depend on the client's hit
// representation.
func decodeHitIDs(hits any) ([]uint, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, err
	}

	var docs []struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
