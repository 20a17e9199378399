package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/models"
)

// NotificationService reads and marks the in-app notifications the
// dispatcher writes.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the user's notifications newest first, capped at limit.
func (s *NotificationService) List(userID uint, limit int) ([]models.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var notifications []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// UnreadCount counts the user's unread notifications.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one of the user's notifications as read. Idempotent.
func (s *NotificationService) MarkRead(userID, notificationID uint) (*models.Notification, error) {
	var notification models.Notification
	err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: notification %d", ErrNotFound, notificationID)
		}
		return nil, err
	}
	if notification.IsRead {
		return &notification, nil
	}
	now := time.Now()
	err = s.db.Model(&notification).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": &now,
	}).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	now := time.Now()
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	return result.RowsAffected, result.Error
}
