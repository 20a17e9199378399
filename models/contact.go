package models

import "time"

type ContactSubject string

const (
	ContactSubjectGeneral     ContactSubject = "general"
	ContactSubjectVendor      ContactSubject = "vendor"
	ContactSubjectTechnical   ContactSubject = "technical"
	ContactSubjectPartnership ContactSubject = "partnership"
	ContactSubjectOther       ContactSubject = "other"
)

type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusArchived ContactStatus = "archived"
)

// ContactMessage is a message received through the public contact form.
type ContactMessage struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Name       string         `json:"name" gorm:"size:100;not null"`
	Email      string         `json:"email" gorm:"size:255;not null"`
	Phone      string         `json:"phone" gorm:"size:20"`
	Subject    ContactSubject `json:"subject" gorm:"type:varchar(20);not null;default:'general'"`
	Message    string         `json:"message" gorm:"type:text;not null"`
	Status     ContactStatus  `json:"status" gorm:"type:varchar(20);not null;default:'new';index"`
	AdminNotes string         `json:"admin_notes" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}

// ContactPayload is the payload for the public contact form
type ContactPayload struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" binding:"omitempty,oneof=general vendor technical partnership other"`
	Message string `json:"message" binding:"required"`
}
