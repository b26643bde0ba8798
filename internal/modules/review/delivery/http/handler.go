package handler

import (
	"net/http"

	"anoa.com/yamdb/internal/modules/review/dto"
	review "anoa.com/yamdb/internal/modules/review/service"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/response"
	"anoa.com/yamdb/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service review.Service
}

func NewReviewHandler(service review.Service) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) GetReviews(c *gin.Context) {
	var uri dto.TitleURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("title not found"))
		return
	}

	var page commonDto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.GetReviews(c.Request.Context(), uri.TitleID, page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	var uri dto.ReviewURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("review not found"))
		return
	}

	res, err := h.service.GetReview(c.Request.Context(), uri.TitleID, uri.ReviewID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReviewHandler) CreateReview(c *gin.Context) {
	actor, err := response.RequireActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri dto.TitleURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("title not found"))
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.CreateReview(c.Request.Context(), uri.TitleID, actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	actor, err := response.RequireActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri dto.ReviewURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("review not found"))
		return
	}

	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.UpdateReview(c.Request.Context(), uri.TitleID, uri.ReviewID, actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	actor, err := response.RequireActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri dto.ReviewURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("review not found"))
		return
	}

	if err := h.service.DeleteReview(c.Request.Context(), uri.TitleID, uri.ReviewID, actor); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
