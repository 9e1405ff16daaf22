package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"reno-market/internal/apperr"
	"reno-market/internal/models"
)

// ProService handles professional profiles, skills, service areas and portfolios
type ProService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewProService creates a new ProService
func NewProService(db *gorm.DB, audit *AuditService) *ProService {
	return &ProService{db: db, audit: audit}
}

// GetByUserID resolves the pro profile owned by a user account
func (s *ProService) GetByUserID(ctx context.Context, userID uint) (*models.Pro, error) {
	var pro models.Pro
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&pro).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.PermissionDenied("user has no professional profile")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &pro, nil
}

// GetByID returns a pro's public profile with owner info
func (s *ProService) GetByID(ctx context.Context, proID uint) (*models.Pro, error) {
	var pro models.Pro
	if err := s.db.WithContext(ctx).Preload("User").First(&pro, proID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("pro not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &pro, nil
}

// UpdateProfile applies the non-nil fields of the request
func (s *ProService) UpdateProfile(ctx context.Context, userID uint, req *models.UpdateProProfileRequest) (*models.Pro, error) {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.YearsExperience != nil {
		updates["years_experience"] = *req.YearsExperience
	}
	if req.HourlyRate != nil {
		rate, err := decimal.NewFromString(*req.HourlyRate)
		if err != nil || rate.IsNegative() {
			return nil, apperr.Invalid("hourly_rate must be a non-negative decimal")
		}
		updates["hourly_rate"] = rate
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(pro).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update pro profile: %w", err)
		}
	}

	s.audit.Record(ctx, userID, "UPDATE_PRO_PROFILE", "Pro", fmt.Sprint(pro.ID), map[string]interface{}{"fields": len(updates)})

	return pro, nil
}

// ToggleAvailability flips whether the pro appears available for new work
func (s *ProService) ToggleAvailability(ctx context.Context, userID uint) (*models.Pro, error) {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pro.IsAvailable = !pro.IsAvailable
	if err := s.db.WithContext(ctx).Model(pro).Update("is_available", pro.IsAvailable).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle availability: %w", err)
	}
	return pro, nil
}

// AddSkill attaches a catalog skill to the pro
func (s *ProService) AddSkill(ctx context.Context, userID uint, skillID uint) error {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	var skill models.Skill
	if err := s.db.WithContext(ctx).First(&skill, skillID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.NotFound("skill not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	var existing int64
	s.db.WithContext(ctx).Model(&models.ProSkill{}).
		Where("pro_id = ? AND skill_id = ?", pro.ID, skillID).
		Count(&existing)
	if existing > 0 {
		return apperr.Conflict("skill already added")
	}

	link := models.ProSkill{ProID: pro.ID, SkillID: skillID}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("skill already added")
		}
		return fmt.Errorf("failed to add skill: %w", err)
	}
	return nil
}

// RemoveSkill detaches a catalog skill from the pro
func (s *ProService) RemoveSkill(ctx context.Context, userID uint, skillID uint) error {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("pro_id = ? AND skill_id = ?", pro.ID, skillID).
		Delete(&models.ProSkill{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove skill: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("skill not attached to profile")
	}
	return nil
}

// AddServiceArea attaches a city the pro serves
func (s *ProService) AddServiceArea(ctx context.Context, userID uint, cityID uint) error {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	var city models.City
	if err := s.db.WithContext(ctx).First(&city, cityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.NotFound("city not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	var existing int64
	s.db.WithContext(ctx).Model(&models.ProServiceArea{}).
		Where("pro_id = ? AND city_id = ?", pro.ID, cityID).
		Count(&existing)
	if existing > 0 {
		return apperr.Conflict("service area already added")
	}

	link := models.ProServiceArea{ProID: pro.ID, CityID: cityID}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("service area already added")
		}
		return fmt.Errorf("failed to add service area: %w", err)
	}
	return nil
}

// RemoveServiceArea detaches a served city
func (s *ProService) RemoveServiceArea(ctx context.Context, userID uint, cityID uint) error {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("pro_id = ? AND city_id = ?", pro.ID, cityID).
		Delete(&models.ProServiceArea{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove service area: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("city not in service areas")
	}
	return nil
}

// CreatePortfolioItem adds a work sample to the pro's portfolio
func (s *ProService) CreatePortfolioItem(ctx context.Context, userID uint, req *models.CreatePortfolioItemRequest) (*models.PortfolioItem, error) {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := models.PortfolioItem{
		ProID:       pro.ID,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsPublished: true,
	}
	if req.IsPublished != nil {
		item.IsPublished = *req.IsPublished
	}

	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create portfolio item: %w", err)
	}
	return &item, nil
}

// UpdatePortfolioItem edits an own portfolio entry
func (s *ProService) UpdatePortfolioItem(ctx context.Context, userID uint, itemID uint, req *models.UpdatePortfolioItemRequest) (*models.PortfolioItem, error) {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var item models.PortfolioItem
	if err := s.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("portfolio item not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if item.ProID != pro.ID {
		return nil, apperr.PermissionDenied("you can only edit your own portfolio")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update portfolio item: %w", err)
		}
	}
	return &item, nil
}

// DeletePortfolioItem removes an own portfolio entry
func (s *ProService) DeletePortfolioItem(ctx context.Context, userID uint, itemID uint) error {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND pro_id = ?", itemID, pro.ID).
		Delete(&models.PortfolioItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete portfolio item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("portfolio item not found")
	}
	return nil
}

// GetStatistics aggregates the pro's proposal and contract activity
func (s *ProService) GetStatistics(ctx context.Context, userID uint) (*models.ProStatistics, error) {
	pro, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &models.ProStatistics{TotalEarned: decimal.Zero}

	if err := s.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("pro_id = ?", pro.ID).
		Count(&stats.TotalProposals).Error; err != nil {
		return nil, fmt.Errorf("failed to count proposals: %w", err)
	}

	s.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("pro_id = ? AND status = ?", pro.ID, models.ProposalStatusPending).
		Count(&stats.PendingProposals)

	s.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("pro_id = ? AND status = ?", pro.ID, models.ProposalStatusAccepted).
		Count(&stats.AcceptedProposals)

	s.db.WithContext(ctx).Model(&models.Contract{}).
		Where("pro_id = ?", pro.ID).
		Count(&stats.TotalContracts)

	s.db.WithContext(ctx).Model(&models.Contract{}).
		Where("pro_id = ? AND status = ?", pro.ID, models.ContractStatusActive).
		Count(&stats.ActiveContracts)

	var contracts []models.Contract
	if err := s.db.WithContext(ctx).
		Where("pro_id = ? AND status = ?", pro.ID, models.ContractStatusCompleted).
		Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}
	for _, c := range contracts {
		stats.TotalEarned = stats.TotalEarned.Add(c.TotalAmount)
	}

	return stats, nil
}
