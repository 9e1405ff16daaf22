package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"reno-market/internal/apperr"
	"reno-market/internal/models"
)

// ContractService serves contracts read-only. Rows are created solely by
// ProposalService.Accept and closed by JobService.Complete; milestone and
// payment handling is out of scope.
type ContractService struct {
	db *gorm.DB
}

// NewContractService creates a new ContractService
func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{db: db}
}

// GetByID returns one contract to either of its parties
func (s *ContractService) GetByID(ctx context.Context, contractID uuid.UUID, callerID uint) (*models.Contract, error) {
	var contract models.Contract
	if err := s.db.WithContext(ctx).
		Preload("Proposal").
		Preload("Proposal.Job").
		Preload("Pro").
		Preload("Pro.User").
		First(&contract, "id = ?", contractID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("contract not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	isClient := contract.ClientID == callerID
	isPro := contract.Pro != nil && contract.Pro.UserID == callerID
	if !isClient && !isPro {
		return nil, apperr.PermissionDenied("access denied")
	}

	return &contract, nil
}

// ListMine returns contracts where the caller is the client or the pro
func (s *ContractService) ListMine(ctx context.Context, callerID uint) ([]models.Contract, error) {
	var proIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.Pro{}).
		Where("user_id = ?", callerID).
		Pluck("id", &proIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve pro profile: %w", err)
	}

	query := s.db.WithContext(ctx).
		Preload("Proposal").
		Preload("Proposal.Job").
		Order("created_at DESC")
	if len(proIDs) > 0 {
		query = query.Where("client_id = ? OR pro_id IN ?", callerID, proIDs)
	} else {
		query = query.Where("client_id = ?", callerID)
	}

	var contracts []models.Contract
	if err := query.Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}
