package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusDraft      JobStatus = "DRAFT"
	JobStatusPublished  JobStatus = "PUBLISHED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

type JobUrgency string

const (
	UrgencyLow    JobUrgency = "LOW"
	UrgencyMedium JobUrgency = "MEDIUM"
	UrgencyHigh   JobUrgency = "HIGH"
	UrgencyUrgent JobUrgency = "URGENT"
)

// Job is a client's posted work request. It moves to IN_PROGRESS only through
// proposal acceptance; once IN_PROGRESS or COMPLETED it is immutable.
type Job struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID    uint            `gorm:"not null;index" json:"client_id"`
	Client      *User           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CityID      uint            `gorm:"not null;index" json:"city_id"`
	City        *City           `gorm:"foreignKey:CityID" json:"city,omitempty"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Description string          `gorm:"size:2000;not null" json:"description"`
	Budget      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"budget"`
	Urgency     JobUrgency      `gorm:"size:20;not null;default:MEDIUM" json:"urgency"`
	Address     string          `gorm:"size:500" json:"address"`
	Status      JobStatus       `gorm:"size:20;not null;default:DRAFT;index" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Job) TableName() string {
	return "jobs"
}

// CreateJobRequest posts a new job
type CreateJobRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=2000"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	CityID      uint   `json:"city_id" binding:"required"`
	Budget      string `json:"budget" binding:"required"`
	Urgency     string `json:"urgency" binding:"required,oneof=LOW MEDIUM HIGH URGENT"`
	Address     string `json:"address" binding:"max=500"`
	Draft       bool   `json:"draft"`
}

// UpdateJobRequest edits a job that is not yet in progress
type UpdateJobRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Budget      *string `json:"budget"`
	Urgency     *string `json:"urgency" binding:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Address     *string `json:"address"`
}

// SearchJobsQuery filters the public job listing
type SearchJobsQuery struct {
	CategoryID uint   `form:"category_id"`
	CityID     uint   `form:"city_id"`
	Urgency    string `form:"urgency"`
	MinBudget  string `form:"min_budget"`
	MaxBudget  string `form:"max_budget"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// JobWithProposalCount decorates a job with the number of live proposals
type JobWithProposalCount struct {
	Job
	ProposalCount int64 `json:"proposal_count"`
}

// JobListResponse is a paginated job listing
type JobListResponse struct {
	Data  []JobWithProposalCount `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
