package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/models"
)

// ProjectService owns the client's event projects and their status
// lifecycle: draft, published, in_progress, completed, cancelled.
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

var projectTransitions = map[models.ProjectStatus][]models.ProjectStatus{
	models.ProjectStatusDraft:      {models.ProjectStatusPublished, models.ProjectStatusCancelled},
	models.ProjectStatusPublished:  {models.ProjectStatusInProgress, models.ProjectStatusCancelled},
	models.ProjectStatusInProgress: {models.ProjectStatusCompleted, models.ProjectStatusCancelled},
}

// Create records a new project in draft.
func (s *ProjectService) Create(client *models.User, payload *models.ProjectRequest) (*models.Project, error) {
	if !client.IsClient() {
		return nil, fmt.Errorf("%w: only clients can create projects", ErrForbidden)
	}
	project, err := s.buildProject(client, payload)
	if err != nil {
		return nil, err
	}

	serviceTypes, err := s.resolveServiceTypes(payload.ServiceTypeIDs)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		return tx.Model(project).Association("ServicesNeeded").Replace(serviceTypes)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(client, project.ID)
}

// Update edits a project the client owns. Completed and cancelled
// projects are frozen.
func (s *ProjectService) Update(client *models.User, projectID uint, payload *models.ProjectRequest) (*models.Project, error) {
	existing, err := s.ownedProject(client, projectID)
	if err != nil {
		return nil, err
	}
	if existing.Status == models.ProjectStatusCompleted || existing.Status == models.ProjectStatusCancelled {
		return nil, fmt.Errorf("%w: project is %s and can no longer change", ErrConflict, existing.Status)
	}

	project, err := s.buildProject(client, payload)
	if err != nil {
		return nil, err
	}
	serviceTypes, err := s.resolveServiceTypes(payload.ServiceTypeIDs)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(existing).Updates(map[string]interface{}{
			"title":         project.Title,
			"event_type_id": project.EventTypeID,
			"description":   project.Description,
			"event_date":    project.EventDate,
			"event_time":    project.EventTime,
			"city":          project.City,
			"location":      project.Location,
			"guest_count":   project.GuestCount,
			"budget_min":    project.BudgetMin,
			"budget_max":    project.BudgetMax,
		}).Error
		if err != nil {
			return err
		}
		return tx.Model(existing).Association("ServicesNeeded").Replace(serviceTypes)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(client, projectID)
}

// Publish makes a draft visible to vendors.
func (s *ProjectService) Publish(client *models.User, projectID uint) (*models.Project, error) {
	return s.changeStatus(client, projectID, models.ProjectStatusPublished)
}

// Start marks a published project as underway.
func (s *ProjectService) Start(client *models.User, projectID uint) (*models.Project, error) {
	return s.changeStatus(client, projectID, models.ProjectStatusInProgress)
}

// Complete closes an in-progress project.
func (s *ProjectService) Complete(client *models.User, projectID uint) (*models.Project, error) {
	return s.changeStatus(client, projectID, models.ProjectStatusCompleted)
}

// Cancel terminates a project from any non-final status.
func (s *ProjectService) Cancel(client *models.User, projectID uint) (*models.Project, error) {
	return s.changeStatus(client, projectID, models.ProjectStatusCancelled)
}

func (s *ProjectService) changeStatus(client *models.User, projectID uint, target models.ProjectStatus) (*models.Project, error) {
	project, err := s.ownedProject(client, projectID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range projectTransitions[project.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot move project from %s to %s", ErrConflict, project.Status, target)
	}

	if err := s.db.Model(project).Update("status", target).Error; err != nil {
		return nil, err
	}
	return s.Get(client, projectID)
}

// Get returns a project with relations. Drafts are only visible to
// their owner and admins.
func (s *ProjectService) Get(viewer *models.User, projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.Preload("Client").Preload("EventType").Preload("ServicesNeeded").
		First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
		return nil, err
	}
	if project.Status == models.ProjectStatusDraft {
		isOwner := viewer != nil && viewer.ID == project.ClientID
		isAdmin := viewer != nil && viewer.IsAdmin()
		if !isOwner && !isAdmin {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
	}
	return &project, nil
}

// ListMine returns the client's own projects, newest first.
func (s *ProjectService) ListMine(client *models.User) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.Preload("EventType").Preload("ServicesNeeded").
		Where("client_id = ?", client.ID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (s *ProjectService) ownedProject(client *models.User, projectID uint) (*models.Project, error) {
	var project models.Project
	err := s.db.First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
		return nil, err
	}
	if project.ClientID != client.ID {
		return nil, fmt.Errorf("%w: project belongs to another client", ErrForbidden)
	}
	return &project, nil
}

// buildProject validates the payload and assembles the model. The event
// date must parse as YYYY-MM-DD and must not be in the past.
func (s *ProjectService) buildProject(client *models.User, payload *models.ProjectRequest) (*models.Project, error) {
	eventDate, err := time.Parse("2006-01-02", payload.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%w: event_date must be YYYY-MM-DD", ErrValidation)
	}
	// The date parses as midnight UTC while the client's day may start
	// many hours earlier or later. A day of slack keeps "today" valid
	// in every timezone.
	earliest := time.Now().UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)
	if eventDate.Before(earliest) {
		return nil, fmt.Errorf("%w: event date cannot be in the past", ErrValidation)
	}
	if payload.EventTime != nil {
		if _, err := time.Parse("15:04", *payload.EventTime); err != nil {
			return nil, fmt.Errorf("%w: event_time must be HH:MM", ErrValidation)
		}
	}
	if payload.BudgetMax != nil && payload.BudgetMin > *payload.BudgetMax {
		return nil, fmt.Errorf("%w: min budget cannot exceed max budget", ErrValidation)
	}
	if payload.GuestCount != nil && *payload.GuestCount < 1 {
		return nil, fmt.Errorf("%w: guest count must be positive", ErrValidation)
	}
	if payload.EventTypeID != nil {
		var eventType models.EventType
		if err := s.db.First(&eventType, *payload.EventTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: unknown event type", ErrValidation)
			}
			return nil, err
		}
	}

	return &models.Project{
		ClientID:    client.ID,
		Title:       payload.Title,
		EventTypeID: payload.EventTypeID,
		Description: payload.Description,
		EventDate:   eventDate,
		EventTime:   payload.EventTime,
		City:        payload.City,
		Location:    payload.Location,
		GuestCount:  payload.GuestCount,
		BudgetMin:   payload.BudgetMin,
		BudgetMax:   payload.BudgetMax,
		Status:      models.ProjectStatusDraft,
	}, nil
}

func (s *ProjectService) resolveServiceTypes(ids []uint) ([]models.ServiceType, error) {
	var serviceTypes []models.ServiceType
	if err := s.db.Find(&serviceTypes, ids).Error; err != nil {
		return nil, err
	}
	if len(serviceTypes) != len(ids) {
		return nil, fmt.Errorf("%w: unknown service type", ErrValidation)
	}
	return serviceTypes, nil
}
