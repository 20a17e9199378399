package database

import (
	"log"

	"gorm.io/gorm"

	"event-marketplace-server/models"
)

// SeedReferenceData inserts the default subscription tiers, service
// types and event types when the tables are empty. Safe to call on
// every startup.
func SeedReferenceData(db *gorm.DB) error {
	if err := seedSubscriptionTiers(db); err != nil {
		return err
	}
	if err := seedServiceTypes(db); err != nil {
		return err
	}
	return seedEventTypes(db)
}

func seedSubscriptionTiers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.SubscriptionTier{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tiers := []models.SubscriptionTier{
		{Name: "Premium", Slug: "premium", PriceMonthly: 25000, DisplayPriority: 0, IsVisibleInList: true, MaxImages: 30},
		{Name: "Standard", Slug: "standard", PriceMonthly: 10000, DisplayPriority: 1, IsVisibleInList: true, MaxImages: 15},
		{Name: "Free", Slug: "free", PriceMonthly: 0, DisplayPriority: 2, IsVisibleInList: false, MaxImages: 5},
	}
	if err := db.Create(&tiers).Error; err != nil {
		return err
	}
	log.Printf("✅ Seeded %d subscription tiers", len(tiers))
	return nil
}

func seedServiceTypes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.ServiceType{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	names := []struct{ name, icon string }{
		{"Catering", "cake"},
		{"Photography", "camera"},
		{"Videography", "video"},
		{"Music & DJ", "music"},
		{"Decoration", "sparkles"},
		{"Venue rental", "building"},
		{"Event planning", "calendar"},
		{"Makeup & Beauty", "brush"},
		{"Transport", "car"},
		{"Security", "shield"},
	}
	types := make([]models.ServiceType, 0, len(names))
	for _, n := range names {
		types = append(types, models.ServiceType{Name: n.name, Icon: n.icon})
	}
	if err := db.Create(&types).Error; err != nil {
		return err
	}
	log.Printf("✅ Seeded %d service types", len(types))
	return nil
}

func seedEventTypes(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.EventType{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	names := []struct{ name, icon string }{
		{"Wedding", "rings"},
		{"Birthday", "gift"},
		{"Baptism", "droplet"},
		{"Corporate event", "briefcase"},
		{"Funeral", "flower"},
		{"Concert", "mic"},
		{"Conference", "presentation"},
		{"Other", "star"},
	}
	types := make([]models.EventType, 0, len(names))
	for _, n := range names {
		types = append(types, models.EventType{Name: n.name, Icon: n.icon})
	}
	if err := db.Create(&types).Error; err != nil {
		return err
	}
	log.Printf("✅ Seeded %d event types", len(types))
	return nil
}
