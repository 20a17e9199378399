package models

import "time"

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusPublished  ProjectStatus = "published"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// Project is an event project created by a client.
type Project struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	ClientID    uint       `json:"client_id" gorm:"not null;index"`
	Client      User       `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	EventTypeID *uint      `json:"event_type_id"`
	EventType   *EventType `json:"event_type,omitempty" gorm:"foreignKey:EventTypeID"`
	Description string     `json:"description" gorm:"type:text;not null"`

	EventDate  time.Time `json:"event_date" gorm:"not null"`
	EventTime  *string   `json:"event_time" gorm:"size:5"` // HH:MM, optional
	City       string    `json:"city" gorm:"size:100;not null"`
	Location   string    `json:"location" gorm:"size:300"`
	GuestCount *int      `json:"guest_count"`

	BudgetMin float64  `json:"budget_min" gorm:"type:decimal(10,2);not null"`
	BudgetMax *float64 `json:"budget_max" gorm:"type:decimal(10,2)"`

	ServicesNeeded []ServiceType `json:"services_needed,omitempty" gorm:"many2many:project_service_types"`

	Status    ProjectStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	CreatedAt time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// IsActive reports whether the project accepts vendor activity.
func (p *Project) IsActive() bool {
	return p.Status == ProjectStatusPublished || p.Status == ProjectStatusInProgress
}

// ProjectRequest is the payload for creating/updating a project
type ProjectRequest struct {
	Title          string   `json:"title" binding:"required,max=200"`
	EventTypeID    *uint    `json:"event_type_id"`
	Description    string   `json:"description" binding:"required"`
	EventDate      string   `json:"event_date" binding:"required"` // YYYY-MM-DD
	EventTime      *string  `json:"event_time"`
	City           string   `json:"city" binding:"required,max=100"`
	Location       string   `json:"location"`
	GuestCount     *int     `json:"guest_count"`
	BudgetMin      float64  `json:"budget_min" binding:"required,gt=0"`
	BudgetMax      *float64 `json:"budget_max"`
	ServiceTypeIDs []uint   `json:"service_type_ids" binding:"required,min=1"`
}
