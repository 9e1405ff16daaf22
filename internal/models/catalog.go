package models

import (
	"time"
)

// Category is a renovation trade (painting, drywall, flooring, ...)
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Icon        string    `gorm:"size:20" json:"icon"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	PriceMin    int64     `gorm:"default:0" json:"price_min"`
	PriceMax    int64     `gorm:"default:0" json:"price_max"`
	PriceUnit   string    `gorm:"size:50" json:"price_unit"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	Skills      []Skill   `gorm:"foreignKey:CategoryID" json:"skills,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// Skill is a specific capability within a category
type Skill struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Name       string    `gorm:"size:200;not null" json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Skill) TableName() string {
	return "skills"
}

// City is a serviceable location
type City struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:200;not null" json:"name"`
	Region    string    `gorm:"size:200" json:"region"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (City) TableName() string {
	return "cities"
}

// CreateCategoryRequest creates a catalog category (admin only)
type CreateCategoryRequest struct {
	Slug        string `json:"slug" binding:"required,max=100"`
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=500"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"sort_order"`
	PriceMin    int64  `json:"price_min"`
	PriceMax    int64  `json:"price_max"`
	PriceUnit   string `json:"price_unit"`
}

// UpdateCategoryRequest edits a catalog category (admin only)
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	SortOrder   *int    `json:"sort_order"`
	PriceMin    *int64  `json:"price_min"`
	PriceMax    *int64  `json:"price_max"`
	PriceUnit   *string `json:"price_unit"`
	IsActive    *bool   `json:"is_active"`
}

// CreateSkillRequest adds a skill to a category (admin only)
type CreateSkillRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}
