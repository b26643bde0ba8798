package dto

import commonDto "anoa.com/yamdb/pkg/dto"

type CreateGenreRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type GenreFilter struct {
	commonDto.PageQuery
	Search string `form:"search"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type SlugURI struct {
	Slug string `uri:"slug" binding:"required"`
}
