package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rockman-logistics/staffdesk/internal/application/service"
	"github.com/rockman-logistics/staffdesk/internal/presentation/http/dto/response"
)

// CategoryHandler serves the goods category catalog
type CategoryHandler struct {
	catalog *service.CatalogService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(catalog *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

// ListCategories returns the active goods categories
// @Summary List Categories
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.List(c.Request.Context(), GetSession(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Categories retrieved successfully", categories)
}
