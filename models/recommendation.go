package models

import "time"

type RecommendationStatus string

const (
	RecommendationStatusPending   RecommendationStatus = "pending"
	RecommendationStatusSent      RecommendationStatus = "sent"
	RecommendationStatusViewed    RecommendationStatus = "viewed"
	RecommendationStatusContacted RecommendationStatus = "contacted"
	RecommendationStatusAccepted  RecommendationStatus = "accepted"
	RecommendationStatusDeclined  RecommendationStatus = "declined"
)

// AdminRecommendation is an admin-curated vendor suggestion for a
// project. Status progresses pending → sent → viewed → contacted →
// (accepted|declined), each transition stamping its timestamp.
type AdminRecommendation struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	ProjectID       uint          `json:"project_id" gorm:"not null;uniqueIndex:idx_reco_project_vendor"`
	Project         Project       `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	VendorID        uint          `json:"vendor_id" gorm:"not null;uniqueIndex:idx_reco_project_vendor"`
	Vendor          VendorProfile `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	RecommendedByID uint          `json:"recommended_by_id" gorm:"not null"`
	RecommendedBy   User          `json:"recommended_by,omitempty" gorm:"foreignKey:RecommendedByID"`
	Note            string        `json:"note" gorm:"type:text"`

	Status      RecommendationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	SentAt      *time.Time           `json:"sent_at"`
	ViewedAt    *time.Time           `json:"viewed_at"`
	ContactedAt *time.Time           `json:"contacted_at"`
	RespondedAt *time.Time           `json:"responded_at"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AdminRecommendation) TableName() string {
	return "admin_recommendations"
}
