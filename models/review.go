package models

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Review is a client's rating of a vendor, optionally tied to a
// completed project. At most one review per (vendor, project) pair.
type Review struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	VendorID  uint          `json:"vendor_id" gorm:"not null;uniqueIndex:idx_review_vendor_project"`
	Vendor    VendorProfile `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	ClientID  uint          `json:"client_id" gorm:"not null;index"`
	Client    User          `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	ProjectID *uint         `json:"project_id" gorm:"uniqueIndex:idx_review_vendor_project"`
	Project   *Project      `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Rating    int           `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string        `json:"comment" gorm:"type:text;not null"`

	// Moderation
	Status         ReviewStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ModeratedByID  *uint        `json:"moderated_by_id"`
	ModeratedBy    *User        `json:"moderated_by,omitempty" gorm:"foreignKey:ModeratedByID"`
	ModeratedAt    *time.Time   `json:"moderated_at"`
	ModerationNote string       `json:"moderation_note" gorm:"type:text"`

	// Vendor response
	VendorResponse   string     `json:"vendor_response" gorm:"type:text"`
	VendorResponseAt *time.Time `json:"vendor_response_at"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// IsApproved reports whether the review counts toward vendor aggregates.
func (r *Review) IsApproved() bool {
	return r.Status == ReviewStatusApproved
}

// ReviewPayload is the payload for creating a review
type ReviewPayload struct {
	VendorID  uint   `json:"vendor_id" binding:"required"`
	ProjectID *uint  `json:"project_id"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"required"`
}
