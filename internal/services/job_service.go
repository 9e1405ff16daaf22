package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"reno-market/internal/apperr"
	"reno-market/internal/models"
)

// JobService handles job posting, search and lifecycle. A job reaches
// IN_PROGRESS only through ProposalService.Accept; this service refuses to
// edit or delete a job once it carries a contract.
type JobService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewJobService creates a new JobService
func NewJobService(db *gorm.DB, audit *AuditService) *JobService {
	return &JobService{db: db, audit: audit}
}

// Create posts a new job owned by the calling client
func (s *JobService) Create(ctx context.Context, clientID uint, req *models.CreateJobRequest) (*models.Job, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, clientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.Role != models.RoleClient && user.Role != models.RoleAdmin {
		return nil, apperr.PermissionDenied("only clients can create jobs")
	}

	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, req.CategoryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var city models.City
	if err := s.db.WithContext(ctx).First(&city, req.CityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("city not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	budget, err := decimal.NewFromString(req.Budget)
	if err != nil || !budget.IsPositive() {
		return nil, apperr.Invalid("budget must be a positive decimal")
	}

	status := models.JobStatusPublished
	if req.Draft {
		status = models.JobStatusDraft
	}

	job := models.Job{
		ID:          uuid.New(),
		ClientID:    clientID,
		CategoryID:  req.CategoryID,
		CityID:      req.CityID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      budget,
		Urgency:     models.JobUrgency(req.Urgency),
		Address:     req.Address,
		Status:      status,
	}

	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.audit.Record(ctx, clientID, "CREATE_JOB", "Job", job.ID.String(), map[string]interface{}{"title": job.Title})

	return &job, nil
}

// Publish moves a DRAFT job to PUBLISHED
func (s *JobService) Publish(ctx context.Context, clientID uint, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.getOwned(ctx, clientID, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != models.JobStatusDraft {
		return nil, apperr.Conflict("only draft jobs can be published")
	}

	if err := s.db.WithContext(ctx).Model(job).Update("status", models.JobStatusPublished).Error; err != nil {
		return nil, fmt.Errorf("failed to publish job: %w", err)
	}
	job.Status = models.JobStatusPublished

	s.audit.Record(ctx, clientID, "PUBLISH_JOB", "Job", job.ID.String(), nil)

	return job, nil
}

// Search lists jobs with filters and pagination, most urgent and newest first
func (s *JobService) Search(ctx context.Context, q *models.SearchJobsQuery) (*models.JobListResponse, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	status := models.JobStatusPublished
	if q.Status != "" {
		status = models.JobStatus(q.Status)
	}

	query := s.db.WithContext(ctx).Model(&models.Job{}).Where("status = ?", status)

	if q.CategoryID != 0 {
		query = query.Where("category_id = ?", q.CategoryID)
	}
	if q.CityID != 0 {
		query = query.Where("city_id = ?", q.CityID)
	}
	if q.Urgency != "" {
		query = query.Where("urgency = ?", q.Urgency)
	}
	if q.MinBudget != "" {
		min, err := decimal.NewFromString(q.MinBudget)
		if err != nil {
			return nil, apperr.Invalid("min_budget must be a decimal")
		}
		query = query.Where("budget >= ?", min)
	}
	if q.MaxBudget != "" {
		max, err := decimal.NewFromString(q.MaxBudget)
		if err != nil {
			return nil, apperr.Invalid("max_budget must be a decimal")
		}
		query = query.Where("budget <= ?", max)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	var jobs []models.Job
	if err := query.
		Preload("Category").
		Preload("City").
		Order("CASE urgency WHEN 'URGENT' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}

	data := make([]models.JobWithProposalCount, 0, len(jobs))
	for _, job := range jobs {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Proposal{}).
			Where("job_id = ?", job.ID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count proposals: %w", err)
		}
		data = append(data, models.JobWithProposalCount{Job: job, ProposalCount: count})
	}

	return &models.JobListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// GetByID returns one live job with its relations
func (s *JobService) GetByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Category").
		Preload("City").
		First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("job not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &job, nil
}

// ListMine returns the client's own jobs, optionally filtered by status
func (s *JobService) ListMine(ctx context.Context, clientID uint, status string) ([]models.Job, error) {
	query := s.db.WithContext(ctx).
		Preload("Category").
		Preload("City").
		Where("client_id = ?", clientID).
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var jobs []models.Job
	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// Update edits a job that has not yet started. Once IN_PROGRESS or COMPLETED
// the job backs a contract and is immutable.
func (s *JobService) Update(ctx context.Context, clientID uint, jobID uuid.UUID, req *models.UpdateJobRequest) (*models.Job, error) {
	job, err := s.getOwned(ctx, clientID, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status == models.JobStatusInProgress || job.Status == models.JobStatusCompleted {
		return nil, apperr.Conflict("job cannot be edited once in progress or completed")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Budget != nil {
		budget, err := decimal.NewFromString(*req.Budget)
		if err != nil || !budget.IsPositive() {
			return nil, apperr.Invalid("budget must be a positive decimal")
		}
		updates["budget"] = budget
	}
	if req.Urgency != nil {
		updates["urgency"] = *req.Urgency
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update job: %w", err)
		}
	}

	s.audit.Record(ctx, clientID, "UPDATE_JOB", "Job", job.ID.String(), map[string]interface{}{"fields": len(updates)})

	return job, nil
}

// Complete marks an IN_PROGRESS job COMPLETED and closes its contract
func (s *JobService) Complete(ctx context.Context, clientID uint, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.getOwned(ctx, clientID, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != models.JobStatusInProgress {
		return nil, apperr.Conflict("only jobs in progress can be completed")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(job).Update("status", models.JobStatusCompleted).Error; err != nil {
			return fmt.Errorf("failed to complete job: %w", err)
		}

		// Close the contract via its accepted proposal.
		var proposal models.Proposal
		if err := tx.Where("job_id = ? AND status = ?", job.ID, models.ProposalStatusAccepted).
			First(&proposal).Error; err != nil {
			return fmt.Errorf("failed to find accepted proposal: %w", err)
		}

		now := tx.NowFunc()
		if err := tx.Model(&models.Contract{}).
			Where("proposal_id = ?", proposal.ID).
			Updates(map[string]interface{}{
				"status":   models.ContractStatusCompleted,
				"end_date": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to close contract: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	job.Status = models.JobStatusCompleted

	s.audit.Record(ctx, clientID, "COMPLETE_JOB", "Job", job.ID.String(), nil)

	return job, nil
}

// Delete soft-deletes a job that is not in progress and cancels it
func (s *JobService) Delete(ctx context.Context, clientID uint, jobID uuid.UUID) error {
	job, err := s.getOwned(ctx, clientID, jobID)
	if err != nil {
		return err
	}

	if job.Status == models.JobStatusInProgress || job.Status == models.JobStatusCompleted {
		return apperr.Conflict("job cannot be deleted once in progress or completed")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(job).Update("status", models.JobStatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel job: %w", err)
		}
		if err := tx.Delete(job).Error; err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, clientID, "DELETE_JOB", "Job", job.ID.String(), map[string]interface{}{"title": job.Title})

	return nil
}

func (s *JobService) getOwned(ctx context.Context, clientID uint, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("job not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if job.ClientID != clientID {
		return nil, apperr.PermissionDenied("you can only manage your own jobs")
	}
	return &job, nil
}
