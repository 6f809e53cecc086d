package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ivankudrin/messenger/internal/service"
	"github.com/ivankudrin/messenger/internal/storage"
	"github.com/ivankudrin/messenger/pkg/logger"
	"go.uber.org/zap"
)

const pageSize = 10

var errInvalidPage = errors.New("invalid page")

type listResponse struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

func idParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func pageParams(c *gin.Context) (limit, offset int, err error) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errInvalidPage
		}
	}

	return pageSize, (page - 1) * pageSize, nil
}

func newListResponse(c *gin.Context, count int64, offset int, results any) listResponse {
	page := offset/pageSize + 1

	resp := listResponse{
		Count:   count,
		Results: results,
	}
	if int64(offset+pageSize) < count {
		resp.Next = pageURL(c, page+1)
	}
	if page > 1 {
		resp.Previous = pageURL(c, page-1)
	}

	return resp
}

func pageURL(c *gin.Context, page int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	url := scheme + "://" + c.Request.Host + c.Request.URL.Path
	if page > 1 {
		url += "?page=" + strconv.Itoa(page)
	}

	return &url
}

func respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, storage.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, storage.ErrReferenceNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "referenced record does not exist"})
	case errors.Is(err, service.ErrTitleTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is too long"})
	case errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message status"})
	default:
		logger.GetFromCtx(ctx).Error(ctx, "request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
