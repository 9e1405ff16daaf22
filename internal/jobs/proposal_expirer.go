package jobs

import (
	"context"
	"log"
	"time"

	"reno-market/internal/services"
)

// ProposalExpirer periodically marks overdue PENDING proposals EXPIRED.
// Expiry is otherwise passive: nothing blocks acceptance of a proposal whose
// expires_at has elapsed until the sweep has run.
type ProposalExpirer struct {
	service *services.ProposalService
}

func NewProposalExpirer(service *services.ProposalService) *ProposalExpirer {
	return &ProposalExpirer{service: service}
}

// Start begins the periodic expiry sweep
func (j *ProposalExpirer) Start(interval time.Duration) {
	go func() {
		// Run immediately on start
		ctx := context.Background()
		j.sweep(ctx)

		// Then run periodically
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			j.sweep(ctx)
		}
	}()
}

func (j *ProposalExpirer) sweep(ctx context.Context) {
	expired, err := j.service.ExpireOverdue(ctx)
	if err != nil {
		log.Printf("Proposal expiry sweep error: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Expired %d overdue proposals", expired)
	}
}
