package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/models"
)

// RecommendationService owns admin-curated vendor recommendations and
// their forward-only status progression.
type RecommendationService struct {
	db *gorm.DB
}

func NewRecommendationService(db *gorm.DB) *RecommendationService {
	return &RecommendationService{db: db}
}

// recommendationTransitions maps each status to the statuses reachable
// from it. The progression never moves backwards.
var recommendationTransitions = map[models.RecommendationStatus][]models.RecommendationStatus{
	models.RecommendationStatusPending:   {models.RecommendationStatusSent},
	models.RecommendationStatusSent:      {models.RecommendationStatusViewed, models.RecommendationStatusContacted, models.RecommendationStatusAccepted, models.RecommendationStatusDeclined},
	models.RecommendationStatusViewed:    {models.RecommendationStatusContacted, models.RecommendationStatusAccepted, models.RecommendationStatusDeclined},
	models.RecommendationStatusContacted: {models.RecommendationStatusAccepted, models.RecommendationStatusDeclined},
}

func canTransition(from, to models.RecommendationStatus) bool {
	for _, allowed := range recommendationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Create records a pending recommendation of a vendor for a project.
// One recommendation per (project, vendor) pair.
func (s *RecommendationService) Create(admin *models.User, projectID, vendorID uint, note string) (*models.AdminRecommendation, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
		return nil, err
	}
	var vendor models.VendorProfile
	if err := s.db.First(&vendor, vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, vendorID)
		}
		return nil, err
	}
	if !vendor.IsActive {
		return nil, fmt.Errorf("%w: vendor is not active", ErrValidation)
	}

	recommendation := models.AdminRecommendation{
		ProjectID:       projectID,
		VendorID:        vendorID,
		RecommendedByID: admin.ID,
		Note:            note,
		Status:          models.RecommendationStatusPending,
	}
	if err := s.db.Create(&recommendation).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: this vendor is already recommended for the project", ErrConflict)
		}
		return nil, err
	}
	return &recommendation, nil
}

// MarkSent moves a pending recommendation to sent and emits the event
// that notifies the project's client.
func (s *RecommendationService) MarkSent(recommendationID uint) (*models.AdminRecommendation, []Event, error) {
	recommendation, err := s.get(recommendationID)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	if err := s.transition(recommendation, models.RecommendationStatusSent, map[string]interface{}{"sent_at": &now}); err != nil {
		return nil, nil, err
	}

	if err := s.db.Preload("Project.Client").Preload("Vendor").First(recommendation, recommendation.ID).Error; err != nil {
		return nil, nil, err
	}
	return recommendation, []Event{RecommendationSent{Recommendation: *recommendation}}, nil
}

// MarkViewed is recorded when the project's client opens the recommendation.
func (s *RecommendationService) MarkViewed(client *models.User, recommendationID uint) (*models.AdminRecommendation, error) {
	recommendation, err := s.getForClient(client, recommendationID)
	if err != nil {
		return nil, err
	}
	// Viewing an already-progressed recommendation is a no-op, not an error.
	if !canTransition(recommendation.Status, models.RecommendationStatusViewed) {
		return recommendation, nil
	}
	now := time.Now()
	if err := s.transition(recommendation, models.RecommendationStatusViewed, map[string]interface{}{"viewed_at": &now}); err != nil {
		return nil, err
	}
	return recommendation, nil
}

// MarkContacted is recorded when the client reaches out to the vendor.
func (s *RecommendationService) MarkContacted(client *models.User, recommendationID uint) (*models.AdminRecommendation, error) {
	recommendation, err := s.getForClient(client, recommendationID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.transition(recommendation, models.RecommendationStatusContacted, map[string]interface{}{"contacted_at": &now}); err != nil {
		return nil, err
	}
	return recommendation, nil
}

// Decide closes the recommendation as accepted or declined.
func (s *RecommendationService) Decide(client *models.User, recommendationID uint, accepted bool) (*models.AdminRecommendation, error) {
	recommendation, err := s.getForClient(client, recommendationID)
	if err != nil {
		return nil, err
	}
	target := models.RecommendationStatusDeclined
	if accepted {
		target = models.RecommendationStatusAccepted
	}
	now := time.Now()
	if err := s.transition(recommendation, target, map[string]interface{}{"responded_at": &now}); err != nil {
		return nil, err
	}
	return recommendation, nil
}

// ListForProject returns the recommendations for a project the client owns.
func (s *RecommendationService) ListForProject(client *models.User, projectID uint) ([]models.AdminRecommendation, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project %d", ErrNotFound, projectID)
		}
		return nil, err
	}
	if project.ClientID != client.ID && !client.IsAdmin() {
		return nil, fmt.Errorf("%w: project belongs to another client", ErrForbidden)
	}

	var recommendations []models.AdminRecommendation
	query := s.db.Preload("Vendor.ServiceTypes").Preload("Vendor.SubscriptionTier").
		Where("project_id = ?", projectID)
	if !client.IsAdmin() {
		// Clients only see recommendations that were actually sent to them.
		query = query.Where("status <> ?", models.RecommendationStatusPending)
	}
	err := query.Order("created_at DESC").Find(&recommendations).Error
	return recommendations, err
}

// ListAll returns every recommendation for the admin overview.
func (s *RecommendationService) ListAll() ([]models.AdminRecommendation, error) {
	var recommendations []models.AdminRecommendation
	err := s.db.Preload("Project.Client").Preload("Vendor").Preload("RecommendedBy").
		Order("created_at DESC").
		Find(&recommendations).Error
	return recommendations, err
}

func (s *RecommendationService) get(recommendationID uint) (*models.AdminRecommendation, error) {
	var recommendation models.AdminRecommendation
	err := s.db.Preload("Project").First(&recommendation, recommendationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recommendation %d", ErrNotFound, recommendationID)
		}
		return nil, err
	}
	return &recommendation, nil
}

// getForClient loads a recommendation visible to the project's client.
// Pending recommendations have not been sent yet, so clients cannot see
// them.
func (s *RecommendationService) getForClient(client *models.User, recommendationID uint) (*models.AdminRecommendation, error) {
	recommendation, err := s.get(recommendationID)
	if err != nil {
		return nil, err
	}
	if recommendation.Project.ClientID != client.ID {
		return nil, fmt.Errorf("%w: recommendation %d", ErrNotFound, recommendationID)
	}
	if recommendation.Status == models.RecommendationStatusPending {
		return nil, fmt.Errorf("%w: recommendation %d", ErrNotFound, recommendationID)
	}
	return recommendation, nil
}

func (s *RecommendationService) transition(recommendation *models.AdminRecommendation, to models.RecommendationStatus, stamps map[string]interface{}) error {
	if !canTransition(recommendation.Status, to) {
		return fmt.Errorf("%w: cannot move recommendation from %s to %s", ErrConflict, recommendation.Status, to)
	}
	updates := map[string]interface{}{"status": to}
	for column, value := range stamps {
		updates[column] = value
	}
	return s.db.Model(recommendation).Updates(updates).Error
}
