package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/models"
)

// ReviewService owns review creation, moderation and the vendor rating
// aggregates derived from approved reviews.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// Create records a client's review as pending moderation. A client
// cannot review their own vendor profile, and a project-bound review
// must reference the client's own project.
func (s *ReviewService) Create(client *models.User, payload *models.ReviewPayload) (*models.Review, error) {
	if !client.IsClient() {
		return nil, fmt.Errorf("%w: only clients can write reviews", ErrForbidden)
	}

	var vendor models.VendorProfile
	if err := s.db.First(&vendor, payload.VendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, payload.VendorID)
		}
		return nil, err
	}
	if vendor.UserID == client.ID {
		return nil, fmt.Errorf("%w: you cannot review your own business", ErrValidation)
	}

	if payload.ProjectID != nil {
		var project models.Project
		if err := s.db.First(&project, *payload.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: project %d", ErrNotFound, *payload.ProjectID)
			}
			return nil, err
		}
		if project.ClientID != client.ID {
			return nil, fmt.Errorf("%w: project belongs to another client", ErrForbidden)
		}

		var existing int64
		s.db.Model(&models.Review{}).
			Where("vendor_id = ? AND project_id = ?", payload.VendorID, *payload.ProjectID).
			Count(&existing)
		if existing > 0 {
			return nil, fmt.Errorf("%w: this project already has a review for this vendor", ErrConflict)
		}
	}

	review := models.Review{
		VendorID:  payload.VendorID,
		ClientID:  client.ID,
		ProjectID: payload.ProjectID,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
		Status:    models.ReviewStatusPending,
	}
	if err := s.db.Create(&review).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: this project already has a review for this vendor", ErrConflict)
		}
		return nil, err
	}
	return &review, nil
}

// ListForVendor returns a vendor's approved reviews, newest first.
func (s *ReviewService) ListForVendor(vendorID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Client").
		Where("vendor_id = ? AND status = ?", vendorID, models.ReviewStatusApproved).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// ListPending returns reviews awaiting moderation, oldest first.
func (s *ReviewService) ListPending() ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Client").Preload("Vendor").
		Where("status = ?", models.ReviewStatusPending).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}

// Approve publishes a review and recomputes the vendor's aggregates.
func (s *ReviewService) Approve(admin *models.User, reviewID uint, note string) (*models.Review, error) {
	return s.moderate(admin, reviewID, models.ReviewStatusApproved, note)
}

// Reject hides a review. Aggregates are recomputed in case an approved
// review is being re-moderated.
func (s *ReviewService) Reject(admin *models.User, reviewID uint, note string) (*models.Review, error) {
	return s.moderate(admin, reviewID, models.ReviewStatusRejected, note)
}

func (s *ReviewService) moderate(admin *models.User, reviewID uint, status models.ReviewStatus, note string) (*models.Review, error) {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		return nil, err
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&review).Updates(map[string]interface{}{
			"status":          status,
			"moderated_by_id": admin.ID,
			"moderated_at":    &now,
			"moderation_note": note,
		}).Error
		if err != nil {
			return err
		}
		return s.recomputeAggregates(tx, review.VendorID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes a review entirely and recomputes the aggregates.
func (s *ReviewService) Delete(reviewID uint) error {
	var review models.Review
	if err := s.db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return s.recomputeAggregates(tx, review.VendorID)
	})
}

// VendorRespond records the vendor's single public response to a review.
func (s *ReviewService) VendorRespond(vendorUser *models.User, reviewID uint, response string) (*models.Review, error) {
	var review models.Review
	err := s.db.Preload("Vendor").First(&review, reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		return nil, err
	}
	if review.Vendor.UserID != vendorUser.ID {
		return nil, fmt.Errorf("%w: review belongs to another vendor", ErrForbidden)
	}
	if !review.IsApproved() {
		return nil, fmt.Errorf("%w: only approved reviews can be responded to", ErrValidation)
	}
	if review.VendorResponse != "" {
		return nil, fmt.Errorf("%w: review already has a response", ErrConflict)
	}

	now := time.Now()
	err = s.db.Model(&review).Updates(map[string]interface{}{
		"vendor_response":    response,
		"vendor_response_at": &now,
	}).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// recomputeAggregates rebuilds Rating and ReviewCount from approved
// reviews. Rating is rounded to two decimals.
func (s *ReviewService) recomputeAggregates(tx *gorm.DB, vendorID uint) error {
	var stats struct {
		Count int64
		Avg   float64
	}
	err := tx.Model(&models.Review{}).
		Where("vendor_id = ? AND status = ?", vendorID, models.ReviewStatusApproved).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Scan(&stats).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.VendorProfile{}).
		Where("id = ?", vendorID).
		Updates(map[string]interface{}{
			"rating":       math.Round(stats.Avg*100) / 100,
			"review_count": stats.Count,
		}).Error
}
