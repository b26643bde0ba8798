package dto

import commonDto "anoa.com/yamdb/pkg/dto"

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

type CategoryFilter struct {
	commonDto.PageQuery
	Search string `form:"search"`
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type SlugURI struct {
	Slug string `uri:"slug" binding:"required"`
}
