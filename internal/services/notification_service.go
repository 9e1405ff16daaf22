package services

import (
	"context"
	"log"

	"reno-market/internal/models"

	"gorm.io/gorm"
)

// NotificationService inserts in-app notification rows. Dispatch is
// fire-and-forget; a failure must not fail the operation that triggered it.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify inserts a notification for a user, logging failures.
func (s *NotificationService) Notify(ctx context.Context, userID uint, notifType, title, body string) {
	n := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}

	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		log.Printf("Warning: failed to create %s notification for user %d: %v", notifType, userID, err)
	}
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marks a notification as read for its owner.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, notificationID uint) error {
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
