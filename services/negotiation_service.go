package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/models"
	"event-marketplace-server/storage"
	"event-marketplace-server/utils"
)

// NegotiationService owns the quote request and proposal lifecycle:
// client sends a request, the vendor answers with exactly one proposal,
// the client accepts or rejects it.
type NegotiationService struct {
	db    *gorm.DB
	quota *QuotaService
	store storage.Storage
}

func NewNegotiationService(db *gorm.DB, quota *QuotaService, store storage.Storage) *NegotiationService {
	return &NegotiationService{db: db, quota: quota, store: store}
}

// SendRequest creates a quote request from a client to a vendor plus the
// conversation seeded with the request message, all in one transaction.
// At most one request per (project, vendor) pair exists.
func (s *NegotiationService) SendRequest(client *models.User, vendorID uint, payload *models.SendRequestPayload) (*models.ProposalRequest, []Event, error) {
	if !client.IsClient() {
		return nil, nil, fmt.Errorf("%w: only clients can send quote requests", ErrForbidden)
	}

	var project models.Project
	if err := s.db.First(&project, payload.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: project %d", ErrNotFound, payload.ProjectID)
		}
		return nil, nil, err
	}
	if project.ClientID != client.ID {
		return nil, nil, fmt.Errorf("%w: project belongs to another client", ErrForbidden)
	}
	if !project.IsActive() {
		return nil, nil, fmt.Errorf("%w: project is not published", ErrValidation)
	}

	var vendor models.VendorProfile
	if err := s.db.First(&vendor, vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: vendor %d", ErrNotFound, vendorID)
		}
		return nil, nil, err
	}
	if !vendor.IsActive {
		return nil, nil, fmt.Errorf("%w: vendor is not active", ErrValidation)
	}

	var existing int64
	s.db.Model(&models.ProposalRequest{}).
		Where("project_id = ? AND vendor_id = ?", project.ID, vendor.ID).
		Count(&existing)
	if existing > 0 {
		return nil, nil, fmt.Errorf("%w: a request for this vendor already exists", ErrConflict)
	}

	request := models.ProposalRequest{
		ProjectID: project.ID,
		VendorID:  vendor.ID,
		Message:   payload.Message,
		Status:    models.RequestStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		conversation := models.Conversation{RequestID: request.ID}
		if err := tx.Create(&conversation).Error; err != nil {
			return err
		}
		seed := models.Message{
			ConversationID: conversation.ID,
			SenderID:       client.ID,
			Content:        payload.Message,
		}
		return tx.Create(&seed).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, nil, fmt.Errorf("%w: a request for this vendor already exists", ErrConflict)
		}
		return nil, nil, err
	}

	if err := s.db.Preload("Project.Client").Preload("Vendor.User").First(&request, request.ID).Error; err != nil {
		return nil, nil, err
	}
	return &request, []Event{RequestSent{Request: request}}, nil
}

// DeclineRequest lets the vendor decline a pending or viewed request.
func (s *NegotiationService) DeclineRequest(vendorUser *models.User, requestID uint) (*models.ProposalRequest, error) {
	request, err := s.requestForVendor(vendorUser, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status == models.RequestStatusResponded || request.Status == models.RequestStatusDeclined {
		return nil, fmt.Errorf("%w: request was already %s", ErrConflict, request.Status)
	}
	if err := s.db.Model(request).Update("status", models.RequestStatusDeclined).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// ProposalAttachment is an optional file attached to a proposal.
type ProposalAttachment struct {
	Filename string
	Size     int64
	Head     []byte
	Content  io.Reader
}

// CreateProposal records the vendor's quote for a request. Exactly one
// proposal per request; the request moves to responded in the same
// transaction. The attachment is validated and quota-checked before any
// byte is stored.
func (s *NegotiationService) CreateProposal(ctx context.Context, vendorUser *models.User, requestID uint, payload *models.ProposalPayload, att *ProposalAttachment) (*models.Proposal, []Event, error) {
	request, err := s.requestForVendor(vendorUser, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request.Status == models.RequestStatusDeclined {
		return nil, nil, fmt.Errorf("%w: request was declined", ErrConflict)
	}

	var existing int64
	s.db.Model(&models.Proposal{}).Where("request_id = ?", request.ID).Count(&existing)
	if existing > 0 {
		return nil, nil, fmt.Errorf("%w: a proposal for this request already exists", ErrConflict)
	}

	if payload.DepositRequired != nil && *payload.DepositRequired > payload.Price {
		return nil, nil, fmt.Errorf("%w: deposit cannot exceed the price", ErrValidation)
	}
	validityDays := payload.ValidityDays
	if validityDays <= 0 {
		validityDays = 30
	}

	proposal := models.Proposal{
		RequestID:          request.ID,
		VendorID:           request.VendorID,
		ProjectID:          request.ProjectID,
		Title:              payload.Title,
		Message:            payload.Message,
		Description:        payload.Description,
		Price:              payload.Price,
		DepositRequired:    payload.DepositRequired,
		TermsAndConditions: payload.TermsAndConditions,
		ValidityDays:       validityDays,
		Status:             models.ProposalStatusSent,
	}

	var stored *storage.Handle
	if att != nil {
		if err := utils.ValidateAttachmentFile(att.Filename, att.Size, att.Head); err != nil {
			return nil, nil, err
		}
		if err := s.quota.CheckQuota(vendorUser.ID, att.Size); err != nil {
			return nil, nil, err
		}
		handle, err := s.store.Store(ctx, att.Content, "proposals", att.Filename, att.Size)
		if err != nil {
			return nil, nil, fmt.Errorf("storing proposal attachment: %w", err)
		}
		stored = &handle
		proposal.AttachmentURL = &handle.URL
		proposal.AttachmentSize = handle.Size
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&proposal).Error; err != nil {
			return err
		}
		return tx.Model(&models.ProposalRequest{}).
			Where("id = ?", request.ID).
			Update("status", models.RequestStatusResponded).Error
	})
	if err != nil {
		if stored != nil {
			// Do not leave the attachment orphaned in object storage.
			if derr := s.store.Delete(ctx, stored.PublicID); derr != nil {
				log.Printf("⚠️ Could not remove orphaned proposal attachment %s: %v", stored.PublicID, derr)
			}
		}
		if isDuplicateKey(err) {
			return nil, nil, fmt.Errorf("%w: a proposal for this request already exists", ErrConflict)
		}
		return nil, nil, err
	}

	if err := s.db.Preload("Project.Client").Preload("Vendor").First(&proposal, proposal.ID).Error; err != nil {
		return nil, nil, err
	}
	return &proposal, []Event{ProposalCreated{Proposal: proposal}}, nil
}

// AcceptProposal is the client's positive decision. Terminal statuses
// never change again.
func (s *NegotiationService) AcceptProposal(client *models.User, proposalID uint) (*models.Proposal, []Event, error) {
	return s.decide(client, proposalID, models.ProposalStatusAccepted)
}

// RejectProposal is the client's negative decision.
func (s *NegotiationService) RejectProposal(client *models.User, proposalID uint) (*models.Proposal, []Event, error) {
	return s.decide(client, proposalID, models.ProposalStatusRejected)
}

func (s *NegotiationService) decide(client *models.User, proposalID uint, decision models.ProposalStatus) (*models.Proposal, []Event, error) {
	var proposal models.Proposal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Project").First(&proposal, proposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: proposal %d", ErrNotFound, proposalID)
			}
			return err
		}
		if proposal.Project.ClientID != client.ID {
			return fmt.Errorf("%w: proposal %d", ErrNotFound, proposalID)
		}
		if proposal.Status.IsTerminal() {
			return fmt.Errorf("%w: proposal was already %s", ErrConflict, proposal.Status)
		}
		now := time.Now()
		return tx.Model(&proposal).Updates(map[string]interface{}{
			"status":       decision,
			"responded_at": &now,
		}).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.db.Preload("Project.Client").Preload("Vendor.User").First(&proposal, proposal.ID).Error; err != nil {
		return nil, nil, err
	}
	return &proposal, []Event{ProposalDecided{Proposal: proposal}}, nil
}

// GetRequestForUser returns a request to one of its parties. A pending
// request viewed by the vendor moves to viewed once. Non-parties get
// ErrNotFound, not ErrForbidden.
func (s *NegotiationService) GetRequestForUser(user *models.User, requestID uint) (*models.ProposalRequest, error) {
	var request models.ProposalRequest
	err := s.db.Preload("Project.Client").Preload("Vendor.User").Preload("Proposal").
		First(&request, requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request %d", ErrNotFound, requestID)
		}
		return nil, err
	}

	isClient := request.Project.ClientID == user.ID
	isVendor := request.Vendor.UserID == user.ID
	if !isClient && !isVendor && !user.IsAdmin() {
		return nil, fmt.Errorf("%w: request %d", ErrNotFound, requestID)
	}

	if isVendor && request.Status == models.RequestStatusPending {
		now := time.Now()
		err := s.db.Model(&request).Updates(map[string]interface{}{
			"status":    models.RequestStatusViewed,
			"viewed_at": &now,
		}).Error
		if err != nil {
			return nil, err
		}
	}
	return &request, nil
}

// GetProposalForUser returns a proposal to one of its parties. A sent
// proposal viewed by the client moves to viewed once.
func (s *NegotiationService) GetProposalForUser(user *models.User, proposalID uint) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.db.Preload("Project.Client").Preload("Vendor.User").Preload("Request").
		First(&proposal, proposalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: proposal %d", ErrNotFound, proposalID)
		}
		return nil, err
	}

	isClient := proposal.Project.ClientID == user.ID
	isVendor := proposal.Vendor.UserID == user.ID
	if !isClient && !isVendor && !user.IsAdmin() {
		return nil, fmt.Errorf("%w: proposal %d", ErrNotFound, proposalID)
	}

	if isClient && proposal.Status == models.ProposalStatusSent {
		now := time.Now()
		err := s.db.Model(&proposal).Updates(map[string]interface{}{
			"status":    models.ProposalStatusViewed,
			"viewed_at": &now,
		}).Error
		if err != nil {
			return nil, err
		}
	}
	return &proposal, nil
}

// ListRequestsForClient returns the client's requests across all projects.
func (s *NegotiationService) ListRequestsForClient(clientID uint) ([]models.ProposalRequest, error) {
	var requests []models.ProposalRequest
	err := s.db.Preload("Vendor").Preload("Project").Preload("Proposal").
		Joins("JOIN projects ON projects.id = proposal_requests.project_id").
		Where("projects.client_id = ?", clientID).
		Order("proposal_requests.created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListRequestsForVendor returns the requests addressed to the vendor
// owned by the given user.
func (s *NegotiationService) ListRequestsForVendor(vendorUserID uint) ([]models.ProposalRequest, error) {
	var requests []models.ProposalRequest
	err := s.db.Preload("Project.Client").Preload("Proposal").
		Joins("JOIN vendor_profiles ON vendor_profiles.id = proposal_requests.vendor_id").
		Where("vendor_profiles.user_id = ?", vendorUserID).
		Order("proposal_requests.created_at DESC").
		Find(&requests).Error
	return requests, err
}

// requestForVendor loads a request and verifies the user owns the
// addressed vendor profile.
func (s *NegotiationService) requestForVendor(vendorUser *models.User, requestID uint) (*models.ProposalRequest, error) {
	var request models.ProposalRequest
	err := s.db.Preload("Vendor").Preload("Project").First(&request, requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request %d", ErrNotFound, requestID)
		}
		return nil, err
	}
	if request.Vendor.UserID != vendorUser.ID {
		return nil, fmt.Errorf("%w: request %d", ErrNotFound, requestID)
	}
	return &request, nil
}
