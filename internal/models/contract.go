package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusCompleted ContractStatus = "COMPLETED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// Contract is created exactly once, when a proposal is accepted. TotalAmount
// is a snapshot of the proposal price at acceptance time, not a live reference.
type Contract struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"proposal_id"`
	Proposal    *Proposal       `gorm:"foreignKey:ProposalID" json:"proposal,omitempty"`
	ClientID    uint            `gorm:"not null;index" json:"client_id"`
	Client      *User           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ProID       uint            `gorm:"not null;index" json:"pro_id"`
	Pro         *Pro            `gorm:"foreignKey:ProID" json:"pro,omitempty"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status      ContractStatus  `gorm:"size:20;not null;default:ACTIVE;index" json:"status"`
	StartDate   time.Time       `gorm:"not null" json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}
