package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"reno-market/internal/apperr"
	"reno-market/internal/models"
)

const proposalValidity = 7 * 24 * time.Hour

// ProposalService handles bids and the acceptance transition. Accept is the
// only writer of Contract rows and the only path that moves a job to
// IN_PROGRESS.
type ProposalService struct {
	db       *gorm.DB
	pros     *ProService
	audit    *AuditService
	notifier *NotificationService
}

// NewProposalService creates a new ProposalService
func NewProposalService(db *gorm.DB, pros *ProService, audit *AuditService, notifier *NotificationService) *ProposalService {
	return &ProposalService{db: db, pros: pros, audit: audit, notifier: notifier}
}

// Submit creates a PENDING proposal against a published job
func (s *ProposalService) Submit(ctx context.Context, userID uint, req *models.CreateProposalRequest) (*models.Proposal, error) {
	pro, err := s.pros.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return nil, apperr.Invalid("invalid job id")
	}

	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("job not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if job.Status != models.JobStatusPublished {
		return nil, apperr.Conflict("job is not open for proposals")
	}

	if job.ClientID == userID {
		return nil, apperr.PermissionDenied("you cannot bid on your own job")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("job_id = ? AND pro_id = ?", jobID, pro.ID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing proposals: %w", err)
	}
	if existing > 0 {
		return nil, apperr.Conflict("you already submitted a proposal for this job")
	}

	price, err := decimal.NewFromString(req.TotalPrice)
	if err != nil || !price.IsPositive() {
		return nil, apperr.Invalid("total_price must be a positive decimal")
	}

	now := time.Now()
	proposal := models.Proposal{
		ID:            uuid.New(),
		JobID:         jobID,
		ProID:         pro.ID,
		TotalPrice:    price,
		EstimatedDays: req.EstimatedDays,
		Description:   req.Description,
		Scope:         req.Scope,
		Status:        models.ProposalStatusPending,
		ExpiresAt:     now.Add(proposalValidity),
	}

	if err := s.db.WithContext(ctx).Create(&proposal).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("you already submitted a proposal for this job")
		}
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	s.audit.Record(ctx, userID, "CREATE_PROPOSAL", "Proposal", proposal.ID.String(), map[string]interface{}{
		"job_id":      jobID.String(),
		"total_price": price.String(),
	})
	s.notifier.Notify(ctx, job.ClientID, "NEW_PROPOSAL", "New proposal received",
		fmt.Sprintf("A professional submitted a proposal for %q", job.Title))

	return &proposal, nil
}

// Accept runs the acceptance transition: the job moves to IN_PROGRESS, the
// target proposal becomes ACCEPTED, its PENDING siblings become REJECTED and
// exactly one contract is created, all in one database transaction. Both the
// job and the proposal transition through update-where-status-equals, so of
// two concurrent acceptances on the same job exactly one commits and the
// other surfaces Conflict. A serialization failure or deadlock abort is
// retried once before the loser sees the Conflict.
func (s *ProposalService) Accept(ctx context.Context, proposalID uuid.UUID, callerID uint, notes string) (*models.AcceptProposalResult, error) {
	proposal, err := s.getWithJob(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if proposal.Job.ClientID != callerID {
		return nil, apperr.PermissionDenied("only the job owner can accept proposals")
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, apperr.Conflict("proposal is not pending")
	}
	if proposal.Job.Status != models.JobStatusPublished {
		return nil, apperr.Conflict("job is no longer open")
	}

	var contract models.Contract

	for attempt := 0; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			now := time.Now()

			// Step 1: PUBLISHED -> IN_PROGRESS. This is the race guard, and
			// it runs first so every acceptance locks the job row before any
			// proposal row: concurrent acceptances on the same job serialize
			// here, and the loser exits without touching siblings.
			res := tx.Model(&models.Job{}).
				Where("id = ? AND status = ?", proposal.JobID, models.JobStatusPublished).
				Update("status", models.JobStatusInProgress)
			if res.Error != nil {
				return fmt.Errorf("failed to transition job: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperr.Conflict("job is no longer open")
			}

			// Step 2: PENDING -> ACCEPTED, guarded so a proposal that lost a
			// race since the precondition check cannot be accepted twice.
			res = tx.Model(&models.Proposal{}).
				Where("id = ? AND status = ?", proposalID, models.ProposalStatusPending).
				Updates(map[string]interface{}{
					"status":       models.ProposalStatusAccepted,
					"responded_at": now,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to accept proposal: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperr.Conflict("proposal is not pending")
			}

			// Step 3: reject PENDING siblings only. WITHDRAWN and EXPIRED
			// proposals keep their status.
			if err := tx.Model(&models.Proposal{}).
				Where("job_id = ? AND id <> ? AND status = ?", proposal.JobID, proposalID, models.ProposalStatusPending).
				Updates(map[string]interface{}{
					"status":       models.ProposalStatusRejected,
					"responded_at": now,
				}).Error; err != nil {
				return fmt.Errorf("failed to reject sibling proposals: %w", err)
			}

			// Step 4: create the contract. TotalAmount is copied, not
			// referenced; later proposal edits can never change it.
			contract = models.Contract{
				ID:          uuid.New(),
				ProposalID:  proposalID,
				ClientID:    proposal.Job.ClientID,
				ProID:       proposal.ProID,
				TotalAmount: proposal.TotalPrice,
				Status:      models.ContractStatusActive,
				StartDate:   now,
			}
			if err := tx.Create(&contract).Error; err != nil {
				if isUniqueViolation(err) {
					return apperr.Conflict("proposal already has a contract")
				}
				return fmt.Errorf("failed to create contract: %w", err)
			}

			return nil
		})

		if err == nil {
			break
		}
		if isSerializationFailure(err) && attempt == 0 {
			log.Printf("Transient transaction conflict accepting proposal %s, retrying once", proposalID)
			continue
		}
		return nil, err
	}

	// Step 5: audit after commit. Best-effort; an audit failure is logged,
	// never rolled into the transaction above.
	s.audit.Record(ctx, callerID, "ACCEPT_PROPOSAL", "Proposal", proposalID.String(), map[string]interface{}{
		"contract_id": contract.ID.String(),
		"notes":       notes,
	})

	accepted, err := s.getWithJob(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if accepted.Pro != nil {
		s.notifier.Notify(ctx, accepted.Pro.UserID, "PROPOSAL_ACCEPTED", "Proposal accepted",
			fmt.Sprintf("Your proposal for %q was accepted", accepted.Job.Title))
	}

	return &models.AcceptProposalResult{Proposal: accepted, Contract: &contract}, nil
}

// Withdraw lets the owning pro retract a PENDING proposal
func (s *ProposalService) Withdraw(ctx context.Context, proposalID uuid.UUID, userID uint) error {
	proposal, err := s.getWithJob(ctx, proposalID)
	if err != nil {
		return err
	}

	if proposal.Pro == nil || proposal.Pro.UserID != userID {
		return apperr.PermissionDenied("you can only withdraw your own proposals")
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("id = ? AND status = ?", proposalID, models.ProposalStatusPending).
		Updates(map[string]interface{}{
			"status":       models.ProposalStatusWithdrawn,
			"responded_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to withdraw proposal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("proposal is not pending")
	}

	s.audit.Record(ctx, userID, "WITHDRAW_PROPOSAL", "Proposal", proposalID.String(), nil)

	return nil
}

// Update edits the pro's own PENDING proposal
func (s *ProposalService) Update(ctx context.Context, proposalID uuid.UUID, userID uint, req *models.UpdateProposalRequest) (*models.Proposal, error) {
	proposal, err := s.getWithJob(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	if proposal.Pro == nil || proposal.Pro.UserID != userID {
		return nil, apperr.PermissionDenied("you can only update your own proposals")
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, apperr.Conflict("proposal is not pending")
	}

	updates := map[string]interface{}{}
	if req.TotalPrice != nil {
		price, err := decimal.NewFromString(*req.TotalPrice)
		if err != nil || !price.IsPositive() {
			return nil, apperr.Invalid("total_price must be a positive decimal")
		}
		updates["total_price"] = price
	}
	if req.EstimatedDays != nil {
		updates["estimated_days"] = *req.EstimatedDays
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Scope != nil {
		updates["scope"] = *req.Scope
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(proposal).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update proposal: %w", err)
		}
	}

	s.audit.Record(ctx, userID, "UPDATE_PROPOSAL", "Proposal", proposalID.String(), map[string]interface{}{"fields": len(updates)})

	return proposal, nil
}

// Remove soft-deletes the pro's own non-accepted proposal
func (s *ProposalService) Remove(ctx context.Context, proposalID uuid.UUID, userID uint) error {
	proposal, err := s.getWithJob(ctx, proposalID)
	if err != nil {
		return err
	}

	if proposal.Pro == nil || proposal.Pro.UserID != userID {
		return apperr.PermissionDenied("you can only delete your own proposals")
	}
	if proposal.Status == models.ProposalStatusAccepted {
		return apperr.Conflict("accepted proposals cannot be deleted")
	}

	if err := s.db.WithContext(ctx).Delete(proposal).Error; err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}
	return nil
}

// ListByJob returns all live proposals on a job for its owner
func (s *ProposalService) ListByJob(ctx context.Context, jobID uuid.UUID, callerID uint) ([]models.Proposal, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("job not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if job.ClientID != callerID {
		return nil, apperr.PermissionDenied("only the job owner can list its proposals")
	}

	var proposals []models.Proposal
	if err := s.db.WithContext(ctx).
		Preload("Pro").
		Preload("Pro.User").
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	return proposals, nil
}

// ListMine returns the calling pro's proposals, newest first
func (s *ProposalService) ListMine(ctx context.Context, userID uint) ([]models.Proposal, error) {
	pro, err := s.pros.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var proposals []models.Proposal
	if err := s.db.WithContext(ctx).
		Preload("Job").
		Preload("Job.Category").
		Preload("Job.City").
		Where("pro_id = ?", pro.ID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	return proposals, nil
}

// GetByID returns one proposal for the job owner or the proposal's pro
func (s *ProposalService) GetByID(ctx context.Context, proposalID uuid.UUID, callerID uint) (*models.Proposal, error) {
	proposal, err := s.getWithJob(ctx, proposalID)
	if err != nil {
		return nil, err
	}

	isOwner := proposal.Job != nil && proposal.Job.ClientID == callerID
	isAuthor := proposal.Pro != nil && proposal.Pro.UserID == callerID
	if !isOwner && !isAuthor {
		return nil, apperr.PermissionDenied("access denied")
	}

	return proposal, nil
}

// ExpireOverdue marks PENDING proposals past their expiry as EXPIRED and
// returns how many rows changed. Callers run it on a timer.
func (s *ProposalService) ExpireOverdue(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Proposal{}).
		Where("status = ? AND expires_at < ?", models.ProposalStatusPending, time.Now()).
		Update("status", models.ProposalStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire proposals: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *ProposalService) getWithJob(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.db.WithContext(ctx).
		Preload("Job").
		Preload("Pro").
		First(&proposal, "id = ?", proposalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("proposal not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if proposal.Job == nil {
		return nil, apperr.NotFound("job not found")
	}
	return &proposal, nil
}
