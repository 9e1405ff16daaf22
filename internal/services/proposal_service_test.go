package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reno-market/internal/apperr"
	"reno-market/internal/database"
	"reno-market/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Each test gets its own named in-memory database. cache=shared keeps
	// the schema visible across pooled connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// SQLite allows a single writer; one connection keeps concurrent
	// transactions from tripping over SQLITE_BUSY instead of exercising
	// the status guards.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

// fixture wires the marketplace services over one test database and seeds
// a client, a pro, a catalog entry and a published job.
type fixture struct {
	db        *gorm.DB
	proposals *ProposalService
	jobs      *JobService
	client    models.User
	proUser   models.User
	pro       models.Pro
	job       models.Job
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)

	audit := NewAuditService(db)
	notifier := NewNotificationService(db)
	pros := NewProService(db, audit)
	jobs := NewJobService(db, audit)
	proposals := NewProposalService(db, pros, audit, notifier)

	f := &fixture{db: db, proposals: proposals, jobs: jobs}

	f.client = models.User{Email: "client@example.com", PasswordHash: "x", FirstName: "Carla", LastName: "Cliente", Role: models.RoleClient, IsActive: true}
	if err := db.Create(&f.client).Error; err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	f.proUser = models.User{Email: "pro@example.com", PasswordHash: "x", FirstName: "Pedro", LastName: "Profesional", Role: models.RolePro, IsActive: true}
	if err := db.Create(&f.proUser).Error; err != nil {
		t.Fatalf("failed to create pro user: %v", err)
	}
	f.pro = models.Pro{UserID: f.proUser.ID, IsAvailable: true}
	if err := db.Create(&f.pro).Error; err != nil {
		t.Fatalf("failed to create pro: %v", err)
	}

	category := models.Category{Slug: "plumbing", Name: "Plumbing", IsActive: true}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	city := models.City{Name: "Bogota", IsActive: true}
	if err := db.Create(&city).Error; err != nil {
		t.Fatalf("failed to create city: %v", err)
	}

	job, err := jobs.Create(context.Background(), f.client.ID, &models.CreateJobRequest{
		Title:       "Fix bathroom leak",
		Description: "Leak under the sink, tiles need replacing",
		CategoryID:  category.ID,
		CityID:      city.ID,
		Budget:      "500.00",
		Urgency:     "HIGH",
	})
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	f.job = *job

	return f
}

// newPro registers an extra pro user with a profile.
func (f *fixture) newPro(t *testing.T, email string) (models.User, models.Pro) {
	user := models.User{Email: email, PasswordHash: "x", Role: models.RolePro, IsActive: true}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	pro := models.Pro{UserID: user.ID, IsAvailable: true}
	if err := f.db.Create(&pro).Error; err != nil {
		t.Fatalf("failed to create pro profile for %s: %v", email, err)
	}
	return user, pro
}

func (f *fixture) submit(t *testing.T, userID uint, price string) *models.Proposal {
	proposal, err := f.proposals.Submit(context.Background(), userID, &models.CreateProposalRequest{
		JobID:         f.job.ID.String(),
		TotalPrice:    price,
		EstimatedDays: 5,
		Description:   "I can do this next week",
	})
	if err != nil {
		t.Fatalf("failed to submit proposal: %v", err)
	}
	return proposal
}

func TestSubmitProposal(t *testing.T) {
	f := newFixture(t)

	proposal := f.submit(t, f.proUser.ID, "450.00")

	if proposal.Status != models.ProposalStatusPending {
		t.Errorf("expected status PENDING, got %s", proposal.Status)
	}
	if !proposal.TotalPrice.Equal(decimal.RequireFromString("450.00")) {
		t.Errorf("expected total price 450.00, got %s", proposal.TotalPrice)
	}
	if !proposal.ExpiresAt.After(time.Now().Add(6 * 24 * time.Hour)) {
		t.Errorf("expected expiry about a week out, got %s", proposal.ExpiresAt)
	}
}

func TestSubmitProposalDuplicate(t *testing.T) {
	f := newFixture(t)

	f.submit(t, f.proUser.ID, "450.00")

	_, err := f.proposals.Submit(context.Background(), f.proUser.ID, &models.CreateProposalRequest{
		JobID:         f.job.ID.String(),
		TotalPrice:    "400.00",
		EstimatedDays: 3,
		Description:   "second attempt",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict for duplicate proposal, got %v", err)
	}

	var count int64
	f.db.Model(&models.Proposal{}).Where("job_id = ?", f.job.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 proposal, got %d", count)
	}
}

func TestSubmitProposalOnOwnJob(t *testing.T) {
	f := newFixture(t)

	// The client also holds a pro profile, then bids on their own job.
	ownPro := models.Pro{UserID: f.client.ID, IsAvailable: true}
	if err := f.db.Create(&ownPro).Error; err != nil {
		t.Fatalf("failed to create pro profile: %v", err)
	}

	_, err := f.proposals.Submit(context.Background(), f.client.ID, &models.CreateProposalRequest{
		JobID:         f.job.ID.String(),
		TotalPrice:    "100.00",
		EstimatedDays: 1,
		Description:   "bidding on myself",
	})
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
}

func TestSubmitProposalJobNotOpen(t *testing.T) {
	f := newFixture(t)

	if err := f.db.Model(&models.Job{}).Where("id = ?", f.job.ID).
		Update("status", models.JobStatusDraft).Error; err != nil {
		t.Fatalf("failed to demote job: %v", err)
	}

	_, err := f.proposals.Submit(context.Background(), f.proUser.ID, &models.CreateProposalRequest{
		JobID:         f.job.ID.String(),
		TotalPrice:    "450.00",
		EstimatedDays: 5,
		Description:   "too early",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict for non-published job, got %v", err)
	}
}

func TestAcceptProposal(t *testing.T) {
	f := newFixture(t)

	userB, _ := f.newPro(t, "pro2@example.com")
	userC, _ := f.newPro(t, "pro3@example.com")

	target := f.submit(t, f.proUser.ID, "450.00")
	sibling := f.submit(t, userB.ID, "480.00")
	withdrawn := f.submit(t, userC.ID, "520.00")
	if err := f.proposals.Withdraw(context.Background(), withdrawn.ID, userC.ID); err != nil {
		t.Fatalf("failed to withdraw: %v", err)
	}

	result, err := f.proposals.Accept(context.Background(), target.ID, f.client.ID, "start monday")
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if result.Proposal.Status != models.ProposalStatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", result.Proposal.Status)
	}
	if result.Proposal.RespondedAt == nil {
		t.Error("expected responded_at to be set")
	}

	// The contract snapshots the price at acceptance time.
	if result.Contract == nil {
		t.Fatal("expected a contract")
	}
	if !result.Contract.TotalAmount.Equal(decimal.RequireFromString("450.00")) {
		t.Errorf("expected contract amount 450.00, got %s", result.Contract.TotalAmount)
	}
	if result.Contract.ClientID != f.client.ID {
		t.Errorf("expected contract client %d, got %d", f.client.ID, result.Contract.ClientID)
	}

	// The job moved to IN_PROGRESS.
	var job models.Job
	if err := f.db.First(&job, "id = ?", f.job.ID).Error; err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}
	if job.Status != models.JobStatusInProgress {
		t.Errorf("expected job IN_PROGRESS, got %s", job.Status)
	}

	// The PENDING sibling was rejected, the withdrawn one untouched.
	var rejectedSibling models.Proposal
	if err := f.db.First(&rejectedSibling, "id = ?", sibling.ID).Error; err != nil {
		t.Fatalf("failed to reload sibling: %v", err)
	}
	if rejectedSibling.Status != models.ProposalStatusRejected {
		t.Errorf("expected sibling REJECTED, got %s", rejectedSibling.Status)
	}
	var untouched models.Proposal
	if err := f.db.First(&untouched, "id = ?", withdrawn.ID).Error; err != nil {
		t.Fatalf("failed to reload withdrawn proposal: %v", err)
	}
	if untouched.Status != models.ProposalStatusWithdrawn {
		t.Errorf("expected WITHDRAWN to stay, got %s", untouched.Status)
	}
}

func TestAcceptProposalTwice(t *testing.T) {
	f := newFixture(t)

	target := f.submit(t, f.proUser.ID, "450.00")

	if _, err := f.proposals.Accept(context.Background(), target.ID, f.client.ID, ""); err != nil {
		t.Fatalf("first Accept failed: %v", err)
	}

	_, err := f.proposals.Accept(context.Background(), target.ID, f.client.ID, "")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict on second accept, got %v", err)
	}

	var contracts int64
	f.db.Model(&models.Contract{}).Count(&contracts)
	if contracts != 1 {
		t.Errorf("expected exactly 1 contract, got %d", contracts)
	}
}

func TestAcceptProposalConcurrent(t *testing.T) {
	f := newFixture(t)

	userB, _ := f.newPro(t, "pro2@example.com")
	a := f.submit(t, f.proUser.ID, "450.00")
	b := f.submit(t, userB.ID, "480.00")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.proposals.Accept(context.Background(), id, f.client.ID, "")
		}(i, id)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("loser should see Conflict, got %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one acceptance to win, got %d", winners)
	}

	var contracts int64
	f.db.Model(&models.Contract{}).Count(&contracts)
	if contracts != 1 {
		t.Errorf("expected exactly 1 contract, got %d", contracts)
	}

	var accepted int64
	f.db.Model(&models.Proposal{}).
		Where("job_id = ? AND status = ?", f.job.ID, models.ProposalStatusAccepted).
		Count(&accepted)
	if accepted != 1 {
		t.Errorf("expected exactly 1 accepted proposal, got %d", accepted)
	}
}

func TestAcceptProposalNotOwner(t *testing.T) {
	f := newFixture(t)

	target := f.submit(t, f.proUser.ID, "450.00")

	_, err := f.proposals.Accept(context.Background(), target.ID, f.proUser.ID, "")
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}

	// Nothing moved.
	var reloaded models.Proposal
	if err := f.db.First(&reloaded, "id = ?", target.ID).Error; err != nil {
		t.Fatalf("failed to reload proposal: %v", err)
	}
	if reloaded.Status != models.ProposalStatusPending {
		t.Errorf("expected proposal still PENDING, got %s", reloaded.Status)
	}
	var job models.Job
	if err := f.db.First(&job, "id = ?", f.job.ID).Error; err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}
	if job.Status != models.JobStatusPublished {
		t.Errorf("expected job still PUBLISHED, got %s", job.Status)
	}
	var contracts int64
	f.db.Model(&models.Contract{}).Count(&contracts)
	if contracts != 0 {
		t.Errorf("expected no contracts, got %d", contracts)
	}
}

func TestContractAmountSurvivesProposalEdit(t *testing.T) {
	f := newFixture(t)

	target := f.submit(t, f.proUser.ID, "450.00")
	result, err := f.proposals.Accept(context.Background(), target.ID, f.client.ID, "")
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	// Edits after acceptance are refused, and the snapshot stays put even
	// if the row changes underneath.
	newPrice := "999.00"
	_, err = f.proposals.Update(context.Background(), target.ID, f.proUser.ID, &models.UpdateProposalRequest{TotalPrice: &newPrice})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict editing accepted proposal, got %v", err)
	}

	if err := f.db.Model(&models.Proposal{}).Where("id = ?", target.ID).
		Update("total_price", decimal.RequireFromString(newPrice)).Error; err != nil {
		t.Fatalf("failed to force price change: %v", err)
	}

	var contract models.Contract
	if err := f.db.First(&contract, "id = ?", result.Contract.ID).Error; err != nil {
		t.Fatalf("failed to reload contract: %v", err)
	}
	if !contract.TotalAmount.Equal(decimal.RequireFromString("450.00")) {
		t.Errorf("contract amount changed with the proposal, got %s", contract.TotalAmount)
	}
}

func TestWithdrawProposal(t *testing.T) {
	f := newFixture(t)

	target := f.submit(t, f.proUser.ID, "450.00")

	if err := f.proposals.Withdraw(context.Background(), target.ID, f.proUser.ID); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	var reloaded models.Proposal
	if err := f.db.First(&reloaded, "id = ?", target.ID).Error; err != nil {
		t.Fatalf("failed to reload proposal: %v", err)
	}
	if reloaded.Status != models.ProposalStatusWithdrawn {
		t.Errorf("expected WITHDRAWN, got %s", reloaded.Status)
	}

	// Withdrawn proposals cannot be accepted.
	_, err := f.proposals.Accept(context.Background(), target.ID, f.client.ID, "")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict accepting withdrawn proposal, got %v", err)
	}
}

func TestWithdrawProposalNotAuthor(t *testing.T) {
	f := newFixture(t)

	userB, _ := f.newPro(t, "pro2@example.com")
	target := f.submit(t, f.proUser.ID, "450.00")

	err := f.proposals.Withdraw(context.Background(), target.ID, userB.ID)
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
}

func TestExpireOverdue(t *testing.T) {
	f := newFixture(t)

	userB, _ := f.newPro(t, "pro2@example.com")
	stale := f.submit(t, f.proUser.ID, "450.00")
	fresh := f.submit(t, userB.ID, "480.00")

	if err := f.db.Model(&models.Proposal{}).Where("id = ?", stale.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("failed to backdate proposal: %v", err)
	}

	n, err := f.proposals.ExpireOverdue(context.Background())
	if err != nil {
		t.Fatalf("ExpireOverdue failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired proposal, got %d", n)
	}

	var swept models.Proposal
	if err := f.db.First(&swept, "id = ?", stale.ID).Error; err != nil {
		t.Fatalf("failed to reload stale proposal: %v", err)
	}
	if swept.Status != models.ProposalStatusExpired {
		t.Errorf("expected EXPIRED, got %s", swept.Status)
	}
	var untouched models.Proposal
	if err := f.db.First(&untouched, "id = ?", fresh.ID).Error; err != nil {
		t.Fatalf("failed to reload fresh proposal: %v", err)
	}
	if untouched.Status != models.ProposalStatusPending {
		t.Errorf("expected fresh proposal PENDING, got %s", untouched.Status)
	}

	// Expired proposals cannot be accepted.
	_, err = f.proposals.Accept(context.Background(), stale.ID, f.client.ID, "")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict accepting expired proposal, got %v", err)
	}
}

func TestListByJobOwnerOnly(t *testing.T) {
	f := newFixture(t)

	f.submit(t, f.proUser.ID, "450.00")

	proposals, err := f.proposals.ListByJob(context.Background(), f.job.ID, f.client.ID)
	if err != nil {
		t.Fatalf("ListByJob failed: %v", err)
	}
	if len(proposals) != 1 {
		t.Errorf("expected 1 proposal, got %d", len(proposals))
	}

	_, err = f.proposals.ListByJob(context.Background(), f.job.ID, f.proUser.ID)
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied for non-owner, got %v", err)
	}
}

func TestResubmitAfterDelete(t *testing.T) {
	f := newFixture(t)

	first := f.submit(t, f.proUser.ID, "450.00")
	if err := f.proposals.Remove(context.Background(), first.ID, f.proUser.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// The soft-deleted row must not block a fresh bid.
	second := f.submit(t, f.proUser.ID, "430.00")
	if second.ID == first.ID {
		t.Error("expected a new proposal row")
	}
}
