package models

import (
	"time"
)

// SubscriptionTier controls a vendor's list visibility, portfolio
// image cap and priority ordering.
type SubscriptionTier struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"size:50;uniqueIndex;not null"`
	Slug            string    `json:"slug" gorm:"size:50;uniqueIndex;not null"`
	PriceMonthly    float64   `json:"price_monthly" gorm:"type:decimal(10,2);default:0"`
	DisplayPriority int       `json:"display_priority" gorm:"default:0"` // 0 = highest (Premium)
	IsVisibleInList bool      `json:"is_visible_in_list" gorm:"default:true"`
	Description     string    `json:"description" gorm:"type:text"`
	MaxImages       int       `json:"max_images" gorm:"default:10"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (SubscriptionTier) TableName() string {
	return "subscription_tiers"
}

// VendorProfile is the business profile of a provider user.
type VendorProfile struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	UserID       uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	User         User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	BusinessName string `json:"business_name" gorm:"size:200;not null"`
	Description  string `json:"description" gorm:"type:text;not null"`

	LogoURL  *string `json:"logo_url" gorm:"size:500"`
	LogoSize int64   `json:"logo_size" gorm:"default:0"` // bytes, counted against the owner's storage quota

	// Subscription
	SubscriptionTierID    *uint             `json:"subscription_tier_id"`
	SubscriptionTier      *SubscriptionTier `json:"subscription_tier,omitempty" gorm:"foreignKey:SubscriptionTierID"`
	SubscriptionExpiresAt *time.Time        `json:"subscription_expires_at"`
	// Set once the expiry warning went out; cleared on renewal.
	ExpiryWarnedAt *time.Time `json:"-"`

	ServiceTypes []ServiceType `json:"service_types,omitempty" gorm:"many2many:vendor_service_types"`

	// Location
	CityID     *uint     `json:"city_id"`
	City       *City     `json:"city,omitempty" gorm:"foreignKey:CityID"`
	DistrictID *uint     `json:"district_id"`
	District   *District `json:"district,omitempty" gorm:"foreignKey:DistrictID"`
	Address    string    `json:"address" gorm:"size:300"`

	// Contact
	Website   string `json:"website" gorm:"size:200"`
	WhatsApp  string `json:"whatsapp" gorm:"size:20"`
	Facebook  string `json:"facebook" gorm:"size:200"`
	Instagram string `json:"instagram" gorm:"size:100"`

	// Commercial information
	MinBudget *float64 `json:"min_budget" gorm:"type:decimal(10,2)"`
	MaxBudget *float64 `json:"max_budget" gorm:"type:decimal(10,2)"`

	// Aggregates maintained by review moderation
	Rating      float64 `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount int     `json:"review_count" gorm:"default:0"`

	IsActive   bool      `json:"is_active" gorm:"default:false;index"`
	IsFeatured bool      `json:"is_featured" gorm:"default:false;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`

	Images []VendorImage `json:"images,omitempty" gorm:"foreignKey:VendorID"`
}

func (VendorProfile) TableName() string {
	return "vendor_profiles"
}

// IsSubscriptionActive reports whether the vendor's subscription is active.
// A tier with no expiry date is treated as perpetually active.
func (v *VendorProfile) IsSubscriptionActive(now time.Time) bool {
	if v.SubscriptionTierID == nil {
		return false
	}
	if v.SubscriptionExpiresAt == nil {
		return true
	}
	return now.Before(*v.SubscriptionExpiresAt)
}

// VendorImage is a portfolio image. The count per vendor is capped by
// the subscription tier's MaxImages.
type VendorImage struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	VendorID  uint          `json:"vendor_id" gorm:"not null;index"`
	Vendor    VendorProfile `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	URL       string        `json:"url" gorm:"size:500;not null"`
	PublicID  string        `json:"public_id" gorm:"size:255"`
	Size      int64         `json:"size" gorm:"not null"` // bytes
	Caption   string        `json:"caption" gorm:"size:200"`
	IsCover   bool          `json:"is_cover" gorm:"default:false"`
	CreatedAt time.Time     `json:"created_at"`
}

func (VendorImage) TableName() string {
	return "vendor_images"
}

// VendorProfileRequest is the payload for creating/updating a vendor profile
type VendorProfileRequest struct {
	BusinessName   string   `json:"business_name" binding:"required,max=200"`
	Description    string   `json:"description" binding:"required"`
	ServiceTypeIDs []uint   `json:"service_type_ids" binding:"required,min=1"`
	CityID         *uint    `json:"city_id"`
	DistrictID     *uint    `json:"district_id"`
	Address        string   `json:"address"`
	Website        string   `json:"website"`
	WhatsApp       string   `json:"whatsapp"`
	Facebook       string   `json:"facebook"`
	Instagram      string   `json:"instagram"`
	MinBudget      *float64 `json:"min_budget"`
	MaxBudget      *float64 `json:"max_budget"`
}
