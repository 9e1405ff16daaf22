package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reno-market/internal/auth"
	"reno-market/internal/models"
	"reno-market/internal/services"
)

// ProHandler handles professional profile endpoints
type ProHandler struct {
	proService *services.ProService
}

// NewProHandler creates a new ProHandler
func NewProHandler(proService *services.ProService) *ProHandler {
	return &ProHandler{
		proService: proService,
	}
}

// GetMyProfile returns the caller's pro profile
// GET /api/pros/me
func (h *ProHandler) GetMyProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pro, err := h.proService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pro)
}

// GetPro returns a pro's public profile
// GET /api/pros/:id
func (h *ProHandler) GetPro(c *gin.Context) {
	proID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pro id"})
		return
	}

	pro, err := h.proService.GetByID(c.Request.Context(), uint(proID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pro)
}

// UpdateProfile edits the caller's pro profile
// PUT /api/pros/me
func (h *ProHandler) UpdateProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.UpdateProProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pro, err := h.proService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pro)
}

// ToggleAvailability flips the caller's availability flag
// POST /api/pros/me/availability
func (h *ProHandler) ToggleAvailability(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pro, err := h.proService.ToggleAvailability(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pro)
}

// AddSkill attaches a catalog skill to the caller's profile
// POST /api/pros/me/skills
func (h *ProHandler) AddSkill(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		SkillID uint `json:"skill_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.proService.AddSkill(c.Request.Context(), userID, req.SkillID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "skill added"})
}

// RemoveSkill detaches a skill from the caller's profile
// DELETE /api/pros/me/skills/:skillId
func (h *ProHandler) RemoveSkill(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	skillID, err := strconv.ParseUint(c.Param("skillId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid skill id"})
		return
	}

	if err := h.proService.RemoveSkill(c.Request.Context(), userID, uint(skillID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "skill removed"})
}

// AddServiceArea attaches a served city to the caller's profile
// POST /api/pros/me/service-areas
func (h *ProHandler) AddServiceArea(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		CityID uint `json:"city_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.proService.AddServiceArea(c.Request.Context(), userID, req.CityID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "service area added"})
}

// RemoveServiceArea detaches a served city
// DELETE /api/pros/me/service-areas/:cityId
func (h *ProHandler) RemoveServiceArea(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	cityID, err := strconv.ParseUint(c.Param("cityId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid city id"})
		return
	}

	if err := h.proService.RemoveServiceArea(c.Request.Context(), userID, uint(cityID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "service area removed"})
}

// CreatePortfolioItem adds a portfolio entry
// POST /api/pros/me/portfolio
func (h *ProHandler) CreatePortfolioItem(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreatePortfolioItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.proService.CreatePortfolioItem(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdatePortfolioItem edits a portfolio entry
// PUT /api/pros/me/portfolio/:id
func (h *ProHandler) UpdatePortfolioItem(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio item id"})
		return
	}

	var req models.UpdatePortfolioItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.proService.UpdatePortfolioItem(c.Request.Context(), userID, uint(itemID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeletePortfolioItem removes a portfolio entry
// DELETE /api/pros/me/portfolio/:id
func (h *ProHandler) DeletePortfolioItem(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio item id"})
		return
	}

	if err := h.proService.DeletePortfolioItem(c.Request.Context(), userID, uint(itemID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "portfolio item deleted"})
}

// GetStatistics aggregates the caller's marketplace activity
// GET /api/pros/me/stats
func (h *ProHandler) GetStatistics(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.proService.GetStatistics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
