package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalStatusPending   ProposalStatus = "PENDING"
	ProposalStatusAccepted  ProposalStatus = "ACCEPTED"
	ProposalStatusRejected  ProposalStatus = "REJECTED"
	ProposalStatusWithdrawn ProposalStatus = "WITHDRAWN"
	ProposalStatusExpired   ProposalStatus = "EXPIRED"
)

// Proposal is a pro's bid against a job. A pro holds at most one live
// proposal per job (checked over non-deleted rows at submission, so the
// (job_id, pro_id) index is not unique), and a job holds at most one
// ACCEPTED proposal at any time. The (job_id, status) index keeps the
// sibling-rejection step on acceptance a single indexed UPDATE.
type Proposal struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	JobID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_proposal_job_status;index:idx_proposal_job_pro" json:"job_id"`
	Job           *Job            `gorm:"foreignKey:JobID" json:"job,omitempty"`
	ProID         uint            `gorm:"not null;index;index:idx_proposal_job_pro" json:"pro_id"`
	Pro           *Pro            `gorm:"foreignKey:ProID" json:"pro,omitempty"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	EstimatedDays int             `gorm:"not null" json:"estimated_days"`
	Description   string          `gorm:"size:2000;not null" json:"description"`
	Scope         string          `gorm:"size:1000" json:"scope"`
	Status        ProposalStatus  `gorm:"size:20;not null;default:PENDING;index:idx_proposal_job_status" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	RespondedAt   *time.Time      `json:"responded_at,omitempty"`
	ExpiresAt     time.Time       `gorm:"not null" json:"expires_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// CreateProposalRequest submits a bid against a published job
type CreateProposalRequest struct {
	JobID         string `json:"job_id" binding:"required,uuid"`
	TotalPrice    string `json:"total_price" binding:"required"`
	EstimatedDays int    `json:"estimated_days" binding:"required,min=1"`
	Description   string `json:"description" binding:"required,max=2000"`
	Scope         string `json:"scope" binding:"max=1000"`
}

// UpdateProposalRequest edits an own PENDING proposal
type UpdateProposalRequest struct {
	TotalPrice    *string `json:"total_price"`
	EstimatedDays *int    `json:"estimated_days" binding:"omitempty,min=1"`
	Description   *string `json:"description"`
	Scope         *string `json:"scope"`
}

// AcceptProposalRequest carries optional client notes for the audit trail
type AcceptProposalRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

// AcceptProposalResult is returned by the acceptance transaction
type AcceptProposalResult struct {
	Proposal *Proposal `json:"proposal"`
	Contract *Contract `json:"contract"`
}
