package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"anoa.com/yamdb/internal/modules/title/dto"
	title "anoa.com/yamdb/internal/modules/title/service"
	"anoa.com/yamdb/pkg/apperror"
	"anoa.com/yamdb/pkg/response"
	"anoa.com/yamdb/pkg/validator"
	"github.com/gin-gonic/gin"
)

const maxPosterSize = 5 << 20

var posterExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

type TitleHandler struct {
	service title.Service
}

func NewTitleHandler(service title.Service) *TitleHandler {
	return &TitleHandler{service: service}
}

func (h *TitleHandler) GetAllTitles(c *gin.Context) {
	var filter dto.TitleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	titles, err := h.service.GetAllTitles(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, titles)
}

func (h *TitleHandler) GetTitle(c *gin.Context) {
	var uri dto.TitleURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("title not found"))
		return
	}

	res, err := h.service.GetTitle(c.Request.Context(), uri.TitleID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *TitleHandler) CreateTitle(c *gin.Context) {
	var req dto.CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.CreateTitle(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *TitleHandler) UpdateTitle(c *gin.Context) {
	var uri dto.TitleURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("title not found"))
		return
	}

	var req dto.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.UpdateTitle(c.Request.Context(), uri.TitleID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *TitleHandler) DeleteTitle(c *gin.Context) {
	var uri dto.TitleURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("title not found"))
		return
	}

	if err := h.service.DeleteTitle(c.Request.Context(), uri.TitleID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TitleHandler) SearchTitles(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.SearchTitles(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *TitleHandler) UploadPoster(c *gin.Context) {
	var uri dto.TitleURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ResponseError(c, apperror.NotFound("title not found"))
		return
	}

	fileHeader, err := c.FormFile("poster")
	if err != nil {
		response.ResponseError(c, apperror.Invalid("poster", "file is required"))
		return
	}
	if fileHeader.Size > maxPosterSize {
		response.ResponseError(c, apperror.Invalid("poster", "file must be 5MB or smaller"))
		return
	}
	if !posterExtensions[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		response.ResponseError(c, apperror.Invalid("poster", "unsupported image type"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer file.Close()

	res, err := h.service.UploadPoster(c.Request.Context(), uri.TitleID, file, filepath.Base(fileHeader.Filename))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
