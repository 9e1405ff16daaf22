package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reno-market/internal/models"
	"reno-market/internal/services"
)

// CatalogHandler handles category, skill and city endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ListCategories returns active categories with their skills
// GET /api/catalog/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	categories, err := h.catalogService.ListCategories(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory returns one category, by id or slug
// GET /api/catalog/categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	param := c.Param("id")

	if id, err := strconv.ParseUint(param, 10, 32); err == nil {
		category, err := h.catalogService.GetCategory(c.Request.Context(), uint(id))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
		return
	}

	category, err := h.catalogService.GetCategoryBySlug(c.Request.Context(), param)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// CreateCategory adds a category, admin only
// POST /api/catalog/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory edits a category, admin only
// PUT /api/admin/catalog/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), uint(categoryID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// AddSkill adds a skill under a category, admin only
// POST /api/catalog/categories/:id/skills
func (h *CatalogHandler) AddSkill(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req models.CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skill, err := h.catalogService.AddSkill(c.Request.Context(), uint(categoryID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, skill)
}

// ListCities returns the supported cities
// GET /api/catalog/cities
func (h *CatalogHandler) ListCities(c *gin.Context) {
	cities, err := h.catalogService.ListCities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cities": cities})
}
