package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pro is a professional profile, distinct from the underlying user account.
// Proposals are always submitted by a Pro, never by a bare user.
type Pro struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UserID          uint             `gorm:"uniqueIndex;not null" json:"user_id"`
	User            *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Bio             string           `gorm:"size:2000" json:"bio"`
	HourlyRate      *decimal.Decimal `gorm:"type:decimal(12,2)" json:"hourly_rate,omitempty"`
	YearsExperience int              `gorm:"default:0" json:"years_experience"`
	IsAvailable     bool             `gorm:"default:true" json:"is_available"`
	IsVerified      bool             `gorm:"default:false" json:"is_verified"`
	RatingAvg       float64          `gorm:"type:decimal(3,2);default:0" json:"rating_avg"`
	RatingCount     int              `gorm:"default:0" json:"rating_count"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (Pro) TableName() string {
	return "pros"
}

// ProSkill links a pro to a skill from the catalog
type ProSkill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProID     uint      `gorm:"not null;index:idx_pro_skill,unique" json:"pro_id"`
	SkillID   uint      `gorm:"not null;index:idx_pro_skill,unique" json:"skill_id"`
	Skill     *Skill    `gorm:"foreignKey:SkillID" json:"skill,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProSkill) TableName() string {
	return "pro_skills"
}

// ProServiceArea links a pro to a city they serve
type ProServiceArea struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProID     uint      `gorm:"not null;index:idx_pro_city,unique" json:"pro_id"`
	CityID    uint      `gorm:"not null;index:idx_pro_city,unique" json:"city_id"`
	City      *City     `gorm:"foreignKey:CityID" json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProServiceArea) TableName() string {
	return "pro_service_areas"
}

// PortfolioItem is a published sample of a pro's past work
type PortfolioItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProID       uint      `gorm:"not null;index" json:"pro_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"size:2000" json:"description"`
	ImageURL    *string   `gorm:"size:500" json:"image_url,omitempty"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (PortfolioItem) TableName() string {
	return "portfolio_items"
}

// UpdateProProfileRequest updates the pro profile fields
type UpdateProProfileRequest struct {
	Bio             *string  `json:"bio"`
	HourlyRate      *string  `json:"hourly_rate"`
	YearsExperience *int     `json:"years_experience"`
}

// CreatePortfolioItemRequest adds a portfolio entry
type CreatePortfolioItemRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	ImageURL    *string `json:"image_url"`
	IsPublished *bool   `json:"is_published"`
}

// UpdatePortfolioItemRequest edits an existing portfolio entry
type UpdatePortfolioItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsPublished *bool   `json:"is_published"`
}

// ProStatistics aggregates a pro's marketplace activity
type ProStatistics struct {
	TotalProposals    int64           `json:"total_proposals"`
	PendingProposals  int64           `json:"pending_proposals"`
	AcceptedProposals int64           `json:"accepted_proposals"`
	ActiveContracts   int64           `json:"active_contracts"`
	TotalContracts    int64           `json:"total_contracts"`
	TotalEarned       decimal.Decimal `json:"total_earned"`
}
