package models

import "time"

type NotificationType string

const (
	NotificationTypeMessage        NotificationType = "message"
	NotificationTypeProposal       NotificationType = "proposal"
	NotificationTypeRequest        NotificationType = "request"
	NotificationTypeRecommendation NotificationType = "recommendation"
	NotificationTypeSystem         NotificationType = "system"
)

// Notification is an in-app notification created only by system-side
// effects of state transitions, never directly by users.
type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"not null;index:idx_notif_user_read"`
	User      User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Type      NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	Title     string           `json:"title" gorm:"size:200;not null"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	Link      string           `json:"link" gorm:"size:500"`
	IsRead    bool             `json:"is_read" gorm:"default:false;index:idx_notif_user_read"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}

func (Notification) TableName() string {
	return "notifications"
}
