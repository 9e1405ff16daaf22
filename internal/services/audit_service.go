package services

import (
	"context"
	"encoding/json"
	"log"

	"reno-market/internal/models"

	"gorm.io/gorm"
)

// AuditService appends entries to the audit trail. Writes are best-effort:
// callers record transitions after their own transaction commits, and a
// failed insert must never undo the transition it describes.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditService
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends one audit entry. Failures are logged and swallowed.
func (s *AuditService) Record(ctx context.Context, userID uint, action, entity, entityID string, metadata map[string]interface{}) {
	blob := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			blob = string(b)
		} else {
			log.Printf("Warning: failed to encode audit metadata for %s %s: %v", entity, entityID, err)
		}
	}

	entry := models.AuditLog{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Metadata: blob,
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("Warning: failed to write audit entry %s for %s %s: %v", action, entity, entityID, err)
	}
}
