package sticker

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stickerboard/internal/pkg/response"
)

// Handler exposes the sticker service over HTTP. It only translates
// between the wire format and the service; all rules live in Service.
type Handler struct {
	service *Service
	baseURL string
}

func NewHandler(service *Service, baseURL string) *Handler {
	return &Handler{service: service, baseURL: baseURL}
}

// GetCategories godoc
// @Summary List the caller's sticker categories
// @Tags Stickers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /sticker/categories [get]
func (h *Handler) GetCategories(c *gin.Context) {
	callerID := mustCallerID(c)
	if callerID == "" {
		return
	}

	categories, err := h.service.GetCategories(c.Request.Context(), callerID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list categories")
		return
	}

	response.Success(c, http.StatusOK, categories)
}

// CreateCategory godoc
// @Summary Create a sticker category
// @Tags Stickers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,409 {object} map[string]interface{}
// @Router /sticker/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	callerID := mustCallerID(c)
	if callerID == "" {
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid category payload")
		return
	}

	category, err := h.service.CreateCategory(c.Request.Context(), callerID, req.Name, req.Order)
	if err != nil {
		if errors.Is(err, ErrCategoryExists) {
			response.Error(c, http.StatusConflict, "CONFLICT", "Category already exists")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to create category")
		return
	}

	response.Success(c, http.StatusCreated, category)
}

// DeleteCategory godoc
// @Summary Delete an empty sticker category
// @Tags Stickers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401,404,409 {object} map[string]interface{}
// @Router /sticker/categories/{categoryId} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	callerID := mustCallerID(c)
	if callerID == "" {
		return
	}

	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	err := h.service.DeleteCategory(c.Request.Context(), callerID, categoryID)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, nil)
	case errors.Is(err, ErrCategoryNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
	case errors.Is(err, ErrCategoryNotEmpty):
		response.Error(c, http.StatusConflict, "CONFLICT", "Category still contains stickers")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to delete category")
	}
}

// GetStickers godoc
// @Summary List stickers in one of the caller's categories
// @Tags Stickers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401,404 {object} map[string]interface{}
// @Router /sticker/categories/{categoryId}/stickers [get]
func (h *Handler) GetStickers(c *gin.Context) {
	callerID := mustCallerID(c)
	if callerID == "" {
		return
	}

	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	stickers, err := h.service.GetStickers(c.Request.Context(), callerID, categoryID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to list stickers")
		return
	}

	items := make([]*StickerResponse, 0, len(stickers))
	for _, s := range stickers {
		items = append(items, h.decorate(s))
	}
	response.Success(c, http.StatusOK, items)
}

// Upload godoc
// @Summary Upload a sticker image into a category
// @Tags Stickers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param categoryId query int true "Category ID"
// @Param file formData file true "Sticker image (max 1MB)"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,404,500 {object} map[string]interface{}
// @Router /sticker [post]
func (h *Handler) Upload(c *gin.Context) {
	callerID := mustCallerID(c)
	if callerID == "" {
		return
	}

	categoryID, err := strconv.ParseInt(c.Query("categoryId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		fileHeader = nil
	}

	sticker, err := h.service.Upload(c.Request.Context(), callerID, categoryID, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Category not found")
		case errors.Is(err, ErrNoFile):
			response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "No file provided")
		case errors.Is(err, ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "File too large. Max 1MB.")
		case errors.Is(err, ErrInvalidFileType):
			response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid file type. Allowed types: PNG, JPEG, GIF, WEBP, SVG")
		case errors.Is(err, ErrStorageFailed):
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Could not save file")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Upload failed")
		}
		return
	}

	response.Success(c, http.StatusCreated, h.decorate(sticker))
}

// Delete godoc
// @Summary Delete a sticker (uploader only)
// @Tags Stickers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403,404 {object} map[string]interface{}
// @Router /sticker/{stickerId} [delete]
func (h *Handler) Delete(c *gin.Context) {
	stickerID, ok := pathID(c, "stickerId")
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Sticker not found")
		return
	}

	// Anonymous callers fall through to the service with an empty id:
	// a missing sticker still answers 404, an existing one 403.
	callerID := c.GetString("user_id")

	err := h.service.Delete(c.Request.Context(), callerID, stickerID)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, nil)
	case errors.Is(err, ErrStickerNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Sticker not found")
	case errors.Is(err, ErrNotUploader):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Forbidden")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to delete sticker")
	}
}

// Download godoc
// @Summary Serve a sticker's image bytes
// @Tags Stickers
// @Produce octet-stream
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 401,404 {object} map[string]interface{}
// @Router /sticker/{stickerId}/image [get]
func (h *Handler) Download(c *gin.Context) {
	if mustCallerID(c) == "" {
		return
	}

	stickerID, ok := pathID(c, "stickerId")
	if !ok {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Sticker not found")
		return
	}

	dl, err := h.service.GetDownload(c.Request.Context(), stickerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrStickerNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Sticker not found")
		case errors.Is(err, ErrFileNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "File not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL", "Failed to load sticker")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Name))
	c.Data(http.StatusOK, dl.MimeType, dl.Data)
}

func (h *Handler) decorate(s *Sticker) *StickerResponse {
	return &StickerResponse{
		Sticker: s,
		URL:     fmt.Sprintf("%s/api/v1/sticker/%d/image", h.baseURL, s.ID),
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func mustCallerID(c *gin.Context) string {
	callerID := c.GetString("user_id")
	if callerID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return callerID
}
