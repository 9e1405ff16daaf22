package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"reno-market/internal/apperr"
	"reno-market/internal/models"
)

// CatalogService serves the category/skill/city catalog. Read-mostly;
// mutations are admin-only and go through the handlers' role guard.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListCategories returns active categories with their skills, in display order
func (s *CatalogService) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	var categories []models.Category
	q := s.db.WithContext(ctx).Preload("Skills").Order("sort_order ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns one category with its skills
func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Preload("Skills").First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

// GetCategoryBySlug returns one category by its slug
func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Preload("Skills").Where("slug = ?", slug).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

// CreateCategory creates a catalog category
func (s *CatalogService) CreateCategory(ctx context.Context, req *models.CreateCategoryRequest) (*models.Category, error) {
	category := models.Category{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
		PriceUnit:   req.PriceUnit,
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("category slug already exists")
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// UpdateCategory applies the non-nil fields of the request
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req *models.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if req.PriceMin != nil {
		updates["price_min"] = *req.PriceMin
	}
	if req.PriceMax != nil {
		updates["price_max"] = *req.PriceMax
	}
	if req.PriceUnit != nil {
		updates["price_unit"] = *req.PriceUnit
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}

	return category, nil
}

// AddSkill adds a skill to a category
func (s *CatalogService) AddSkill(ctx context.Context, categoryID uint, req *models.CreateSkillRequest) (*models.Skill, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	skill := models.Skill{
		CategoryID: categoryID,
		Name:       req.Name,
	}
	if err := s.db.WithContext(ctx).Create(&skill).Error; err != nil {
		return nil, fmt.Errorf("failed to create skill: %w", err)
	}
	return &skill, nil
}

// ListCities returns active cities alphabetically
func (s *CatalogService) ListCities(ctx context.Context) ([]models.City, error) {
	var cities []models.City
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}
