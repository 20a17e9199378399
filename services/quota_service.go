package services

import (
	"math"

	"gorm.io/gorm"

	"event-marketplace-server/models"
	"event-marketplace-server/utils"
)

// QuotaService accounts the aggregate upload usage per user: vendor
// logo, portfolio images, message attachments and proposal attachments.
type QuotaService struct {
	db *gorm.DB
}

func NewQuotaService(db *gorm.DB) *QuotaService {
	return &QuotaService{db: db}
}

// Usage returns the user's current storage usage in bytes. It is
// recomputed from the database on every call: usage changes with every
// upload and delete, so a cached figure would drift.
func (s *QuotaService) Usage(userID uint) (int64, error) {
	var logo int64
	err := s.db.Model(&models.VendorProfile{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(logo_size), 0)").
		Scan(&logo).Error
	if err != nil {
		return 0, err
	}

	var images int64
	err = s.db.Model(&models.VendorImage{}).
		Joins("JOIN vendor_profiles ON vendor_profiles.id = vendor_images.vendor_id").
		Where("vendor_profiles.user_id = ?", userID).
		Select("COALESCE(SUM(vendor_images.size), 0)").
		Scan(&images).Error
	if err != nil {
		return 0, err
	}

	var attachments int64
	err = s.db.Model(&models.Message{}).
		Where("sender_id = ?", userID).
		Select("COALESCE(SUM(attachment_size), 0)").
		Scan(&attachments).Error
	if err != nil {
		return 0, err
	}

	var proposals int64
	err = s.db.Model(&models.Proposal{}).
		Joins("JOIN vendor_profiles ON vendor_profiles.id = proposals.vendor_id").
		Where("vendor_profiles.user_id = ?", userID).
		Select("COALESCE(SUM(proposals.attachment_size), 0)").
		Scan(&proposals).Error
	if err != nil {
		return 0, err
	}

	return logo + images + attachments + proposals, nil
}

// CheckQuota rejects an incoming upload when usage + incoming would
// exceed the per-user cap. Exactly hitting the cap is allowed.
func (s *QuotaService) CheckQuota(userID uint, incomingSize int64) error {
	usage, err := s.Usage(userID)
	if err != nil {
		return err
	}
	if usage+incomingSize > utils.MaxStoragePerUser {
		return utils.NewValidationError("quota",
			"storage quota exceeded: using %.1fMB of %dMB, delete files before adding new ones",
			float64(usage)/(1024*1024), utils.MaxStoragePerUser/(1024*1024))
	}
	return nil
}

// StorageInfo is the usage summary shown on dashboards.
type StorageInfo struct {
	UsedBytes    int64   `json:"used_bytes"`
	UsedMB       float64 `json:"used_mb"`
	QuotaBytes   int64   `json:"quota_bytes"`
	QuotaMB      float64 `json:"quota_mb"`
	UsagePercent float64 `json:"usage_percent"`
	RemainingMB  float64 `json:"remaining_mb"`
}

func (s *QuotaService) StorageInfo(userID uint) (*StorageInfo, error) {
	usage, err := s.Usage(userID)
	if err != nil {
		return nil, err
	}
	const mb = 1024 * 1024
	return &StorageInfo{
		UsedBytes:    usage,
		UsedMB:       math.Round(float64(usage)/mb*100) / 100,
		QuotaBytes:   utils.MaxStoragePerUser,
		QuotaMB:      utils.MaxStoragePerUser / mb,
		UsagePercent: math.Round(float64(usage)/float64(utils.MaxStoragePerUser)*1000) / 10,
		RemainingMB:  math.Round(float64(utils.MaxStoragePerUser-usage)/mb*100) / 100,
	}, nil
}
