package handler

import (
	"errors"
	"net/http"

	"github.com/cmspages/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetPages 分页获取页面列表，支持 storeId 与 isActive 过滤。
func (a *API) GetPages(c *gin.Context) {
	query, verr := parsePageQuery(c)
	if verr != nil {
		respondValidationError(c, verr)
		return
	}

	result, err := a.pages.List(c.Request.Context(), query)
	if err != nil {
		if a.handleServiceError(c, err) {
			return
		}
		a.logger.Error("failed to fetch cms pages", zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "Failed to fetch CMS pages")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPage 获取单个页面。
func (a *API) GetPage(c *gin.Context) {
	id, ok := parsePageID(c)
	if !ok {
		return
	}

	page, err := a.pages.Get(c.Request.Context(), id)
	if err != nil {
		a.logger.Error("failed to fetch cms page", zap.Uint64("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "Failed to fetch CMS page")
		return
	}
	if page == nil {
		respondError(c, http.StatusNotFound, errNotFound, msgPageNotFound)
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreatePage 创建页面，同一店铺下 urlKey 重复时返回 409。
func (a *API) CreatePage(c *gin.Context) {
	var input service.CreatePageInput
	if !bindJSON(c, &input) {
		return
	}

	page, err := a.pages.Create(c.Request.Context(), input)
	if err != nil {
		if a.handleServiceError(c, err) {
			return
		}
		a.logger.Error("failed to create cms page", zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "Failed to create CMS page")
		return
	}

	c.JSON(http.StatusCreated, page)
}

// UpdatePage 部分更新页面。
func (a *API) UpdatePage(c *gin.Context) {
	id, ok := parsePageID(c)
	if !ok {
		return
	}

	var input service.UpdatePageInput
	if !bindJSON(c, &input) {
		return
	}

	page, err := a.pages.Update(c.Request.Context(), id, input)
	if err != nil {
		if a.handleServiceError(c, err) {
			return
		}
		a.logger.Error("failed to update cms page", zap.Uint64("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "Failed to update CMS page")
		return
	}

	c.JSON(http.StatusOK, page)
}

// DeletePage 删除页面，成功时返回 204。
func (a *API) DeletePage(c *gin.Context) {
	id, ok := parsePageID(c)
	if !ok {
		return
	}

	existed, err := a.pages.Delete(c.Request.Context(), id)
	if err != nil {
		a.logger.Error("failed to delete cms page", zap.Uint64("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "Failed to delete CMS page")
		return
	}
	if !existed {
		respondError(c, http.StatusNotFound, errNotFound, msgPageNotFound)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPageStats 返回页面总数以及启用/停用数量。
func (a *API) GetPageStats(c *gin.Context) {
	stats, err := a.pages.Stats(c.Request.Context())
	if err != nil {
		a.logger.Error("failed to fetch cms page stats", zap.Error(err))
		respondError(c, http.StatusInternalServerError, errInternal, "Failed to fetch statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleServiceError maps domain errors to responses. It reports false for
// errors the caller should treat as internal.
func (a *API) handleServiceError(c *gin.Context, err error) bool {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidationError(c, verr)
	case errors.Is(err, service.ErrPageNotFound):
		respondError(c, http.StatusNotFound, errNotFound, msgPageNotFound)
	case errors.Is(err, service.ErrPageConflict):
		respondError(c, http.StatusConflict, errConflict, msgPageConflict)
	default:
		return false
	}
	return true
}
