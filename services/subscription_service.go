package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/models"
)

// expiryWarningWindow is how far ahead the sweep warns vendors about an
// upcoming subscription expiry.
const expiryWarningWindow = 7 * 24 * time.Hour

// SubscriptionService runs the periodic subscription maintenance.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Sweep un-features vendors whose subscription has lapsed and collects
// warning events for featured vendors expiring within the warning
// window. Idempotent: a second run over the same state changes nothing,
// and each vendor is warned once per expiry. Assigning a new tier or
// expiry re-arms the warning.
func (s *SubscriptionService) Sweep(now time.Time) ([]Event, error) {
	result := s.db.Model(&models.VendorProfile{}).
		Where("is_featured = ? AND subscription_expires_at IS NOT NULL AND subscription_expires_at <= ?", true, now).
		Update("is_featured", false)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("⏰ Un-featured %d vendor(s) with expired subscriptions", result.RowsAffected)
	}

	var expiring []models.VendorProfile
	err := s.db.Preload("User").
		Where("is_featured = ? AND subscription_expires_at > ? AND subscription_expires_at <= ? AND expiry_warned_at IS NULL",
			true, now, now.Add(expiryWarningWindow)).
		Find(&expiring).Error
	if err != nil {
		return nil, err
	}
	if len(expiring) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(expiring))
	events := make([]Event, 0, len(expiring))
	for _, vendor := range expiring {
		daysLeft := int(vendor.SubscriptionExpiresAt.Sub(now).Hours() / 24)
		if daysLeft < 1 {
			daysLeft = 1
		}
		ids = append(ids, vendor.ID)
		events = append(events, SubscriptionExpiring{Vendor: vendor, DaysLeft: daysLeft})
	}

	err = s.db.Model(&models.VendorProfile{}).
		Where("id IN ?", ids).
		Update("expiry_warned_at", now).Error
	if err != nil {
		return nil, err
	}
	log.Printf("⏰ Warned %d vendor(s) about an upcoming subscription expiry", len(ids))
	return events, nil
}

// ListTiers returns all subscription tiers ordered by display priority.
func (s *SubscriptionService) ListTiers() ([]models.SubscriptionTier, error) {
	var tiers []models.SubscriptionTier
	err := s.db.Order("display_priority ASC").Find(&tiers).Error
	return tiers, err
}
