package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/models"
	"event-marketplace-server/storage"
	"event-marketplace-server/utils"
)

// defaultMaxImages caps portfolio size for vendors without a tier.
const defaultMaxImages = 10

// VendorService owns vendor profiles, their portfolio and the public
// vendor listing.
type VendorService struct {
	db    *gorm.DB
	quota *QuotaService
	store storage.Storage
}

func NewVendorService(db *gorm.DB, quota *QuotaService, store storage.Storage) *VendorService {
	return &VendorService{db: db, quota: quota, store: store}
}

// ImageUpload is a file submitted for a logo or portfolio image.
type ImageUpload struct {
	Filename string
	Size     int64
	Head     []byte
	Content  io.Reader
	Caption  string
	IsCover  bool
}

// VendorFilter narrows the public vendor listing.
type VendorFilter struct {
	ServiceTypeID *uint
	CityID        *uint
	DistrictID    *uint
	MinBudget     *float64
	MaxBudget     *float64
	Search        string
	FeaturedOnly  bool
	Page          int
	PageSize      int
}

// SaveProfile creates or updates the provider's vendor profile. A new
// profile starts inactive until an admin activates it.
func (s *VendorService) SaveProfile(user *models.User, payload *models.VendorProfileRequest) (*models.VendorProfile, error) {
	if !user.IsProvider() {
		return nil, fmt.Errorf("%w: only providers can have a vendor profile", ErrForbidden)
	}

	var serviceTypes []models.ServiceType
	if err := s.db.Find(&serviceTypes, payload.ServiceTypeIDs).Error; err != nil {
		return nil, err
	}
	if len(serviceTypes) != len(payload.ServiceTypeIDs) {
		return nil, fmt.Errorf("%w: unknown service type", ErrValidation)
	}
	if payload.MinBudget != nil && payload.MaxBudget != nil && *payload.MinBudget > *payload.MaxBudget {
		return nil, fmt.Errorf("%w: min budget cannot exceed max budget", ErrValidation)
	}

	var profile models.VendorProfile
	err := s.db.Where("user_id = ?", user.ID).First(&profile).Error
	isNew := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !isNew {
		return nil, err
	}

	profile.UserID = user.ID
	profile.BusinessName = payload.BusinessName
	profile.Description = payload.Description
	profile.CityID = payload.CityID
	profile.DistrictID = payload.DistrictID
	profile.Address = payload.Address
	profile.Website = payload.Website
	profile.WhatsApp = payload.WhatsApp
	profile.Facebook = payload.Facebook
	profile.Instagram = payload.Instagram
	profile.MinBudget = payload.MinBudget
	profile.MaxBudget = payload.MaxBudget

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		return tx.Model(&profile).Association("ServiceTypes").Replace(serviceTypes)
	})
	if err != nil {
		return nil, err
	}

	if isNew {
		log.Printf("🏪 New vendor profile created: %s (user=%d)", profile.BusinessName, user.ID)
	}
	return s.GetProfileByUser(user.ID)
}

// GetProfileByUser loads a vendor profile with its relations.
func (s *VendorService) GetProfileByUser(userID uint) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	err := s.db.Preload("User").Preload("ServiceTypes").Preload("SubscriptionTier").
		Preload("City").Preload("District").Preload("Images").
		Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vendor profile", ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

// GetVendor returns a vendor by id for the public detail view. Inactive
// vendors are only visible to their owner and admins.
func (s *VendorService) GetVendor(vendorID uint, viewer *models.User) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	err := s.db.Preload("User").Preload("ServiceTypes").Preload("SubscriptionTier").
		Preload("City").Preload("District").Preload("Images").
		First(&profile, vendorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, vendorID)
		}
		return nil, err
	}
	if !profile.IsActive {
		isOwner := viewer != nil && viewer.ID == profile.UserID
		isAdmin := viewer != nil && viewer.IsAdmin()
		if !isOwner && !isAdmin {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, vendorID)
		}
	}
	return &profile, nil
}

// ListVendors returns active vendors ordered by subscription priority
// (tierless vendors sort last) and recency. Vendors on a hidden tier are
// excluded unless the caller searches by name.
func (s *VendorService) ListVendors(filter VendorFilter) ([]models.VendorProfile, int64, error) {
	query := s.db.Model(&models.VendorProfile{}).
		Preload("ServiceTypes").Preload("SubscriptionTier").Preload("City").Preload("District").
		Joins("LEFT JOIN subscription_tiers ON subscription_tiers.id = vendor_profiles.subscription_tier_id").
		Where("vendor_profiles.is_active = ?", true)

	search := strings.TrimSpace(filter.Search)
	if search != "" {
		query = query.Where("vendor_profiles.business_name LIKE ?", "%"+search+"%")
	} else {
		query = query.Where("subscription_tiers.id IS NULL OR subscription_tiers.is_visible_in_list = ?", true)
	}

	if filter.ServiceTypeID != nil {
		query = query.
			Joins("JOIN vendor_service_types ON vendor_service_types.vendor_profile_id = vendor_profiles.id").
			Where("vendor_service_types.service_type_id = ?", *filter.ServiceTypeID)
	}
	if filter.CityID != nil {
		query = query.Where("vendor_profiles.city_id = ?", *filter.CityID)
	}
	if filter.DistrictID != nil {
		query = query.Where("vendor_profiles.district_id = ?", *filter.DistrictID)
	}
	if filter.MinBudget != nil {
		query = query.Where("vendor_profiles.max_budget IS NULL OR vendor_profiles.max_budget >= ?", *filter.MinBudget)
	}
	if filter.MaxBudget != nil {
		query = query.Where("vendor_profiles.min_budget IS NULL OR vendor_profiles.min_budget <= ?", *filter.MaxBudget)
	}
	if filter.FeaturedOnly {
		query = query.Where("vendor_profiles.is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var vendors []models.VendorProfile
	err := query.
		Order("CASE WHEN vendor_profiles.subscription_tier_id IS NULL THEN 999 ELSE subscription_tiers.display_priority END ASC").
		Order("vendor_profiles.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&vendors).Error
	return vendors, total, err
}

// UploadLogo replaces the vendor's logo. Validation and the quota check
// run before storage; the old logo's size is freed in the quota math by
// overwriting logo_size.
func (s *VendorService) UploadLogo(ctx context.Context, user *models.User, upload *ImageUpload) (*models.VendorProfile, error) {
	profile, err := s.GetProfileByUser(user.ID)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateImageFile(upload.Filename, upload.Size, upload.Head); err != nil {
		return nil, err
	}
	// The replaced logo no longer counts, so the increment is the delta.
	if err := s.quota.CheckQuota(user.ID, upload.Size-profile.LogoSize); err != nil {
		return nil, err
	}

	handle, err := s.store.Store(ctx, upload.Content, "logos", upload.Filename, upload.Size)
	if err != nil {
		return nil, fmt.Errorf("storing logo: %w", err)
	}

	err = s.db.Model(profile).Updates(map[string]interface{}{
		"logo_url":  handle.URL,
		"logo_size": handle.Size,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.GetProfileByUser(user.ID)
}

// AddPortfolioImage appends a portfolio image. The tier image cap and
// the storage quota are both checked inside a transaction holding the
// profile row, before the file is stored.
func (s *VendorService) AddPortfolioImage(ctx context.Context, user *models.User, upload *ImageUpload) (*models.VendorImage, error) {
	if err := utils.ValidateImageFile(upload.Filename, upload.Size, upload.Head); err != nil {
		return nil, err
	}

	var image models.VendorImage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var profile models.VendorProfile
		err := lockForUpdate(tx).Preload("SubscriptionTier").
			Where("user_id = ?", user.ID).First(&profile).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: vendor profile", ErrNotFound)
			}
			return err
		}

		maxImages := defaultMaxImages
		if profile.SubscriptionTier != nil {
			maxImages = profile.SubscriptionTier.MaxImages
		}
		var count int64
		if err := tx.Model(&models.VendorImage{}).Where("vendor_id = ?", profile.ID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(maxImages) {
			return utils.NewValidationError("image_limit",
				"portfolio is full: your plan allows %d images", maxImages)
		}
		if err := s.quota.CheckQuota(user.ID, upload.Size); err != nil {
			return err
		}

		handle, err := s.store.Store(ctx, upload.Content, "portfolio", upload.Filename, upload.Size)
		if err != nil {
			return fmt.Errorf("storing portfolio image: %w", err)
		}

		image = models.VendorImage{
			VendorID: profile.ID,
			URL:      handle.URL,
			PublicID: handle.PublicID,
			Size:     handle.Size,
			Caption:  upload.Caption,
			IsCover:  upload.IsCover,
		}
		if upload.IsCover {
			if err := tx.Model(&models.VendorImage{}).Where("vendor_id = ?", profile.ID).
				Update("is_cover", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&image).Error
	})
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// DeletePortfolioImage removes an image the user's vendor owns, from
// the database first and then from the object store (best effort).
func (s *VendorService) DeletePortfolioImage(ctx context.Context, user *models.User, imageID uint) error {
	var image models.VendorImage
	err := s.db.Preload("Vendor").First(&image, imageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: image %d", ErrNotFound, imageID)
		}
		return err
	}
	if image.Vendor.UserID != user.ID {
		return fmt.Errorf("%w: image belongs to another vendor", ErrForbidden)
	}

	if err := s.db.Delete(&image).Error; err != nil {
		return err
	}
	if image.PublicID != "" {
		if err := s.store.Delete(ctx, image.PublicID); err != nil {
			log.Printf("⚠️ Error deleting stored image %s: %v", image.PublicID, err)
		}
	}
	return nil
}

// SetActive flips a vendor's activation, admin only.
func (s *VendorService) SetActive(vendorID uint, active bool) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	if err := s.db.First(&profile, vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, vendorID)
		}
		return nil, err
	}
	if err := s.db.Model(&profile).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetFeatured flips the featured flag, admin only. Featuring requires
// an active subscription; the expiry sweep clears the flag afterwards.
func (s *VendorService) SetFeatured(vendorID uint, featured bool) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	if err := s.db.First(&profile, vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, vendorID)
		}
		return nil, err
	}
	if featured && !profile.IsSubscriptionActive(time.Now()) {
		return nil, fmt.Errorf("%w: vendor has no active subscription", ErrValidation)
	}
	if err := s.db.Model(&profile).Update("is_featured", featured).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// AssignTier sets or clears a vendor's subscription tier and expiry,
// admin only. A nil expiry means the subscription does not lapse.
func (s *VendorService) AssignTier(vendorID uint, tierID *uint, expiresAt *time.Time) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	if err := s.db.First(&profile, vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, vendorID)
		}
		return nil, err
	}
	if tierID != nil {
		var tier models.SubscriptionTier
		if err := s.db.First(&tier, *tierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: subscription tier %d", ErrNotFound, *tierID)
			}
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"subscription_tier_id":    tierID,
		"subscription_expires_at": expiresAt,
		// A renewal re-arms the expiry warning.
		"expiry_warned_at": nil,
	}
	if tierID == nil {
		// No tier, no featuring.
		updates["is_featured"] = false
	}
	if err := s.db.Model(&profile).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetProfileByUser(profile.UserID)
}
