package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"event-marketplace-server/models"
)

// ContactService stores public contact-form submissions and the admin
// workflow around them.
type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

var contactStatuses = map[models.ContactStatus]bool{
	models.ContactStatusNew:      true,
	models.ContactStatusRead:     true,
	models.ContactStatusReplied:  true,
	models.ContactStatusArchived: true,
}

// Submit records a contact message from the public form.
func (s *ContactService) Submit(payload *models.ContactPayload) (*models.ContactMessage, error) {
	subject := models.ContactSubject(payload.Subject)
	if subject == "" {
		subject = models.ContactSubjectGeneral
	}
	message := models.ContactMessage{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Subject: subject,
		Message: payload.Message,
		Status:  models.ContactStatusNew,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// List returns contact messages for the admin inbox, optionally
// filtered by status, newest first.
func (s *ContactService) List(status string) ([]models.ContactMessage, error) {
	query := s.db.Order("created_at DESC")
	if status != "" {
		if !contactStatuses[models.ContactStatus(status)] {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		query = query.Where("status = ?", status)
	}
	var messages []models.ContactMessage
	err := query.Find(&messages).Error
	return messages, err
}

// UpdateStatus moves a contact message through the admin workflow and
// optionally records notes.
func (s *ContactService) UpdateStatus(messageID uint, status string, adminNotes *string) (*models.ContactMessage, error) {
	if !contactStatuses[models.ContactStatus(status)] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	var message models.ContactMessage
	if err := s.db.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contact message %d", ErrNotFound, messageID)
		}
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if adminNotes != nil {
		updates["admin_notes"] = *adminNotes
	}
	if err := s.db.Model(&message).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &message, nil
}
