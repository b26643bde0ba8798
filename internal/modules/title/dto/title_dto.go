package dto

import (
	categoryDto "anoa.com/yamdb/internal/modules/category/dto"
	genreDto "anoa.com/yamdb/internal/modules/genre/dto"
	commonDto "anoa.com/yamdb/pkg/dto"
)

// CreateTitleRequest is the write shape: genres and category by slug.
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        *int     `json:"year" binding:"required,min=-32768,notfuture"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" binding:"required,min=1,dive,required"`
	Category    string   `json:"category" binding:"required"`
}

// UpdateTitleRequest is a partial write; absent fields are left untouched.
type UpdateTitleRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=256"`
	Year        *int     `json:"year" binding:"omitempty,min=-32768,notfuture"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre" binding:"omitempty,min=1,dive,required"`
	Category    *string  `json:"category" binding:"omitempty,min=1"`
}

type TitleFilter struct {
	commonDto.PageQuery
	Genre    string `form:"genre"`
	Category string `form:"category"`
	Name     string `form:"name"`
	Year     *int   `form:"year" binding:"omitempty,min=-32768,max=32767"`
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type TitleURI struct {
	TitleID uint `uri:"title_id" binding:"required,min=1"`
}

// TitleResponse is the read shape returned by every title endpoint.
type TitleResponse struct {
	ID          uint                          `json:"id"`
	Name        string                        `json:"name"`
	Year        int                           `json:"year"`
	Description *string                       `json:"description"`
	Genre       []genreDto.GenreResponse      `json:"genre"`
	Category    *categoryDto.CategoryResponse `json:"category"`
	Rating      *float64                      `json:"rating"`
	PosterURL   *string                       `json:"poster_url"`
}
