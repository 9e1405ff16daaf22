package services

import (
	"context"
	"testing"

	"reno-market/internal/apperr"
	"reno-market/internal/models"
)

func TestCreateJobRequiresClientRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.jobs.Create(context.Background(), f.proUser.ID, &models.CreateJobRequest{
		Title:       "Paint the hallway",
		Description: "Two coats, white",
		CategoryID:  f.job.CategoryID,
		CityID:      f.job.CityID,
		Budget:      "200.00",
		Urgency:     "LOW",
	})
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied for pro creating a job, got %v", err)
	}
}

func TestCreateJobRejectsBadBudget(t *testing.T) {
	f := newFixture(t)

	for _, budget := range []string{"-5.00", "0", "abc"} {
		_, err := f.jobs.Create(context.Background(), f.client.ID, &models.CreateJobRequest{
			Title:       "Paint the hallway",
			Description: "Two coats, white",
			CategoryID:  f.job.CategoryID,
			CityID:      f.job.CityID,
			Budget:      budget,
			Urgency:     "LOW",
		})
		if apperr.KindOf(err) != apperr.KindInvalid {
			t.Errorf("budget %q: expected Invalid, got %v", budget, err)
		}
	}
}

func TestPublishDraftJob(t *testing.T) {
	f := newFixture(t)

	draft, err := f.jobs.Create(context.Background(), f.client.ID, &models.CreateJobRequest{
		Title:       "Kitchen remodel",
		Description: "Counters and backsplash",
		CategoryID:  f.job.CategoryID,
		CityID:      f.job.CityID,
		Budget:      "3000.00",
		Urgency:     "MEDIUM",
		Draft:       true,
	})
	if err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}
	if draft.Status != models.JobStatusDraft {
		t.Fatalf("expected DRAFT, got %s", draft.Status)
	}

	published, err := f.jobs.Publish(context.Background(), f.client.ID, draft.ID)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if published.Status != models.JobStatusPublished {
		t.Errorf("expected PUBLISHED, got %s", published.Status)
	}

	// Publishing twice is refused.
	_, err = f.jobs.Publish(context.Background(), f.client.ID, draft.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict republishing, got %v", err)
	}
}

func TestUpdateJobRefusedOnceInProgress(t *testing.T) {
	f := newFixture(t)

	proposal := f.submit(t, f.proUser.ID, "450.00")
	if _, err := f.proposals.Accept(context.Background(), proposal.ID, f.client.ID, ""); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	title := "New title"
	_, err := f.jobs.Update(context.Background(), f.client.ID, f.job.ID, &models.UpdateJobRequest{Title: &title})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict editing in-progress job, got %v", err)
	}
}

func TestCompleteJobClosesContract(t *testing.T) {
	f := newFixture(t)

	proposal := f.submit(t, f.proUser.ID, "450.00")
	result, err := f.proposals.Accept(context.Background(), proposal.ID, f.client.ID, "")
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	job, err := f.jobs.Complete(context.Background(), f.client.ID, f.job.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if job.Status != models.JobStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", job.Status)
	}

	var contract models.Contract
	if err := f.db.First(&contract, "id = ?", result.Contract.ID).Error; err != nil {
		t.Fatalf("failed to reload contract: %v", err)
	}
	if contract.Status != models.ContractStatusCompleted {
		t.Errorf("expected contract COMPLETED, got %s", contract.Status)
	}
	if contract.EndDate == nil {
		t.Error("expected contract end_date to be set")
	}
}

func TestCompleteJobNotInProgress(t *testing.T) {
	f := newFixture(t)

	_, err := f.jobs.Complete(context.Background(), f.client.ID, f.job.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict completing a published job, got %v", err)
	}
}

func TestDeleteJobGuards(t *testing.T) {
	f := newFixture(t)

	proposal := f.submit(t, f.proUser.ID, "450.00")
	if _, err := f.proposals.Accept(context.Background(), proposal.ID, f.client.ID, ""); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	err := f.jobs.Delete(context.Background(), f.client.ID, f.job.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected Conflict deleting in-progress job, got %v", err)
	}
}

func TestDeleteJobHidesFromSearch(t *testing.T) {
	f := newFixture(t)

	if err := f.jobs.Delete(context.Background(), f.client.ID, f.job.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	result, err := f.jobs.Search(context.Background(), &models.SearchJobsQuery{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("expected no jobs in search, got %d", result.Total)
	}

	_, err = f.jobs.GetByID(context.Background(), f.job.ID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound for deleted job, got %v", err)
	}
}

func TestSearchFilters(t *testing.T) {
	f := newFixture(t)

	other, err := f.jobs.Create(context.Background(), f.client.ID, &models.CreateJobRequest{
		Title:       "Rewire the garage",
		Description: "Replace the panel",
		CategoryID:  f.job.CategoryID,
		CityID:      f.job.CityID,
		Budget:      "1500.00",
		Urgency:     "URGENT",
	})
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}

	result, err := f.jobs.Search(context.Background(), &models.SearchJobsQuery{MinBudget: "1000"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 job over 1000, got %d", result.Total)
	}
	if result.Data[0].ID != other.ID {
		t.Errorf("expected the expensive job, got %s", result.Data[0].ID)
	}

	// Urgent jobs sort first.
	result, err = f.jobs.Search(context.Background(), &models.SearchJobsQuery{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Data) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(result.Data))
	}
	if result.Data[0].Urgency != models.UrgencyUrgent {
		t.Errorf("expected URGENT first, got %s", result.Data[0].Urgency)
	}
}

func TestJobOwnershipGuard(t *testing.T) {
	f := newFixture(t)

	title := "hijacked"
	_, err := f.jobs.Update(context.Background(), f.proUser.ID, f.job.ID, &models.UpdateJobRequest{Title: &title})
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied for non-owner update, got %v", err)
	}

	err = f.jobs.Delete(context.Background(), f.proUser.ID, f.job.ID)
	if apperr.KindOf(err) != apperr.KindPermissionDenied {
		t.Fatalf("expected PermissionDenied for non-owner delete, got %v", err)
	}
}
