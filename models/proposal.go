package models

import "time"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusViewed    RequestStatus = "viewed"
	RequestStatusResponded RequestStatus = "responded"
	RequestStatusDeclined  RequestStatus = "declined"
)

// ProposalRequest is a quote request a client sends to a vendor for a
// project. At most one request exists per (project, vendor) pair.
type ProposalRequest struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	ProjectID uint          `json:"project_id" gorm:"not null;uniqueIndex:idx_request_project_vendor"`
	Project   Project       `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	VendorID  uint          `json:"vendor_id" gorm:"not null;uniqueIndex:idx_request_project_vendor"`
	Vendor    VendorProfile `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Message   string        `json:"message" gorm:"type:text;not null"`
	Status    RequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt time.Time     `json:"created_at" gorm:"index"`
	ViewedAt  *time.Time    `json:"viewed_at"`

	Proposal *Proposal `json:"proposal,omitempty" gorm:"foreignKey:RequestID"`
}

func (ProposalRequest) TableName() string {
	return "proposal_requests"
}

type ProposalStatus string

const (
	ProposalStatusSent     ProposalStatus = "sent"
	ProposalStatusViewed   ProposalStatus = "viewed"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// IsTerminal reports whether the status permits no further transition.
func (s ProposalStatus) IsTerminal() bool {
	return s == ProposalStatusAccepted || s == ProposalStatusRejected
}

// Proposal is the vendor's quote in response to exactly one ProposalRequest.
type Proposal struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	RequestID uint            `json:"request_id" gorm:"not null;uniqueIndex"`
	Request   ProposalRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	VendorID  uint            `json:"vendor_id" gorm:"not null;index"`
	Vendor    VendorProfile   `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	ProjectID uint            `json:"project_id" gorm:"not null;index"`
	Project   Project         `json:"project,omitempty" gorm:"foreignKey:ProjectID"`

	Title       string `json:"title" gorm:"size:200;not null"`
	Message     string `json:"message" gorm:"type:text;not null"`
	Description string `json:"description" gorm:"type:text"`

	Price           float64  `json:"price" gorm:"type:decimal(10,2);not null"`
	DepositRequired *float64 `json:"deposit_required" gorm:"type:decimal(10,2)"`

	TermsAndConditions string `json:"terms_and_conditions" gorm:"type:text"`
	ValidityDays       int    `json:"validity_days" gorm:"default:30"`

	AttachmentURL  *string `json:"attachment_url" gorm:"size:500"`
	AttachmentSize int64   `json:"attachment_size" gorm:"default:0"` // bytes

	Status      ProposalStatus `json:"status" gorm:"type:varchar(20);not null;default:'sent';index"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
	ViewedAt    *time.Time     `json:"viewed_at"`
	RespondedAt *time.Time     `json:"responded_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// SendRequestPayload is the payload for sending a quote request
type SendRequestPayload struct {
	ProjectID uint   `json:"project_id" binding:"required"`
	Message   string `json:"message" binding:"required,min=10"`
}

// ProposalPayload is the payload for creating a proposal
type ProposalPayload struct {
	Title              string   `json:"title" binding:"required,max=200"`
	Message            string   `json:"message" binding:"required"`
	Description        string   `json:"description"`
	Price              float64  `json:"price" binding:"required,gt=0"`
	DepositRequired    *float64 `json:"deposit_required"`
	TermsAndConditions string   `json:"terms_and_conditions"`
	ValidityDays       int      `json:"validity_days"`
}
