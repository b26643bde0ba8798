package handler

import (
	"net/http"

	"anoa.com/yamdb/internal/modules/comment/dto"
	comment "anoa.com/yamdb/internal/modules/comment/service"
	"anoa.com/yamdb/pkg/apperror"
	commonDto "anoa.com/yamdb/pkg/dto"
	"anoa.com/yamdb/pkg/response"
	"anoa.com/yamdb/pkg/validator"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service comment.Service
}

func NewCommentHandler(service comment.Service) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	var uri dto.ReviewURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("review not found"))
		return
	}

	var page commonDto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.GetComments(c.Request.Context(), uri.TitleID, uri.ReviewID, page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	var uri dto.CommentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("comment not found"))
		return
	}

	res, err := h.service.GetComment(c.Request.Context(), uri.TitleID, uri.ReviewID, uri.CommentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
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

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.CreateComment(c.Request.Context(), uri.TitleID, uri.ReviewID, actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	actor, err := response.RequireActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri dto.CommentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("comment not found"))
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.UpdateComment(c.Request.Context(), uri.TitleID, uri.ReviewID, uri.CommentID, actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, err := response.RequireActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var uri dto.CommentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("comment not found"))
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), uri.TitleID, uri.ReviewID, uri.CommentID, actor); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
