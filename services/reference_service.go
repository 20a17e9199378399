package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/cache"
	"event-marketplace-server/models"
)

// referenceTTL bounds staleness when an invalidation is missed (for
// example a write from a second instance).
const referenceTTL = time.Hour

const (
	cacheKeyServiceTypes = "reference:service_types"
	cacheKeyEventTypes   = "reference:event_types"
	cacheKeyCountries    = "reference:countries"
)

// ReferenceService reads the reference tables (service types, event
// types, locations) through a cache and owns the admin CRUD that
// invalidates it.
type ReferenceService struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewReferenceService(db *gorm.DB, c cache.Cache) *ReferenceService {
	return &ReferenceService{db: db, cache: c}
}

// ServiceTypes returns all service types, cached.
func (s *ReferenceService) ServiceTypes(ctx context.Context) ([]models.ServiceType, error) {
	var types []models.ServiceType
	err := s.cached(ctx, cacheKeyServiceTypes, &types, func() (interface{}, error) {
		var fresh []models.ServiceType
		err := s.db.Order("name ASC").Find(&fresh).Error
		return fresh, err
	})
	return types, err
}

// EventTypes returns all event types, cached.
func (s *ReferenceService) EventTypes(ctx context.Context) ([]models.EventType, error) {
	var types []models.EventType
	err := s.cached(ctx, cacheKeyEventTypes, &types, func() (interface{}, error) {
		var fresh []models.EventType
		err := s.db.Order("name ASC").Find(&fresh).Error
		return fresh, err
	})
	return types, err
}

// Countries returns active countries in display order, cached.
func (s *ReferenceService) Countries(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	err := s.cached(ctx, cacheKeyCountries, &countries, func() (interface{}, error) {
		var fresh []models.Country
		err := s.db.Where("is_active = ?", true).
			Order("display_order ASC, name ASC").Find(&fresh).Error
		return fresh, err
	})
	return countries, err
}

// Cities returns active cities, optionally scoped to a country. Not
// cached: the country filter fans the key space out for little gain.
func (s *ReferenceService) Cities(countryID *uint) ([]models.City, error) {
	query := s.db.Where("is_active = ?", true)
	if countryID != nil {
		query = query.Where("country_id = ?", *countryID)
	}
	var cities []models.City
	err := query.Order("name ASC").Find(&cities).Error
	return cities, err
}

// DistrictsByCity returns a city's active districts.
func (s *ReferenceService) DistrictsByCity(cityID uint) ([]models.District, error) {
	var districts []models.District
	err := s.db.Where("city_id = ? AND is_active = ?", cityID, true).
		Order("name ASC").Find(&districts).Error
	return districts, err
}

// Invalidate drops all cached reference data. Called after every admin
// write.
func (s *ReferenceService) Invalidate(ctx context.Context) {
	s.cache.Delete(ctx, cacheKeyServiceTypes, cacheKeyEventTypes, cacheKeyCountries)
}

// CreateServiceType adds a service type, admin only.
func (s *ReferenceService) CreateServiceType(ctx context.Context, name, description, icon string) (*models.ServiceType, error) {
	serviceType := models.ServiceType{Name: name, Description: description, Icon: icon}
	if err := s.db.Create(&serviceType).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: service type %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	s.Invalidate(ctx)
	return &serviceType, nil
}

// UpdateServiceType renames or re-describes a service type.
func (s *ReferenceService) UpdateServiceType(ctx context.Context, id uint, name, description, icon string) (*models.ServiceType, error) {
	var serviceType models.ServiceType
	if err := s.db.First(&serviceType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: service type %d", ErrNotFound, id)
		}
		return nil, err
	}
	err := s.db.Model(&serviceType).Updates(map[string]interface{}{
		"name": name, "description": description, "icon": icon,
	}).Error
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: service type %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	s.Invalidate(ctx)
	return &serviceType, nil
}

// DeleteServiceType removes a service type unless it is still in use.
func (s *ReferenceService) DeleteServiceType(ctx context.Context, id uint) error {
	var inUse int64
	if err := s.db.Table("vendor_service_types").Where("service_type_id = ?", id).Count(&inUse).Error; err != nil {
		return err
	}
	if inUse > 0 {
		return fmt.Errorf("%w: service type is used by %d vendor(s)", ErrConflict, inUse)
	}
	result := s.db.Delete(&models.ServiceType{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: service type %d", ErrNotFound, id)
	}
	s.Invalidate(ctx)
	return nil
}

// CreateEventType adds an event type, admin only.
func (s *ReferenceService) CreateEventType(ctx context.Context, name, description, icon string) (*models.EventType, error) {
	eventType := models.EventType{Name: name, Description: description, Icon: icon}
	if err := s.db.Create(&eventType).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: event type %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	s.Invalidate(ctx)
	return &eventType, nil
}

// CreateCountry adds a country, admin only.
func (s *ReferenceService) CreateCountry(ctx context.Context, name, code, flagEmoji string, displayOrder int) (*models.Country, error) {
	country := models.Country{Name: name, Code: code, FlagEmoji: flagEmoji, DisplayOrder: displayOrder, IsActive: true}
	if err := s.db.Create(&country).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: country %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	s.Invalidate(ctx)
	return &country, nil
}

// CreateCity adds a city, admin only.
func (s *ReferenceService) CreateCity(ctx context.Context, countryID *uint, name string) (*models.City, error) {
	city := models.City{CountryID: countryID, Name: name, IsActive: true}
	if err := s.db.Create(&city).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: city %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	return &city, nil
}

// CreateDistrict adds a district to a city, admin only.
func (s *ReferenceService) CreateDistrict(ctx context.Context, cityID uint, name string) (*models.District, error) {
	var city models.City
	if err := s.db.First(&city, cityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: city %d", ErrNotFound, cityID)
		}
		return nil, err
	}
	district := models.District{CityID: cityID, Name: name, IsActive: true}
	if err := s.db.Create(&district).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: district %q already exists", ErrConflict, name)
		}
		return nil, err
	}
	return &district, nil
}

// cached reads a key through the cache, falling back to load and
// populating on miss. Cache failures degrade to direct reads.
func (s *ReferenceService) cached(ctx context.Context, key string, dest interface{}, load func() (interface{}, error)) error {
	if data, ok := s.cache.Get(ctx, key); ok {
		if err := json.Unmarshal(data, dest); err == nil {
			return nil
		}
		log.Printf("⚠️ Corrupt cache entry %s, reloading", key)
	}

	fresh, err := load()
	if err != nil {
		return err
	}
	data, err := json.Marshal(fresh)
	if err != nil {
		return err
	}
	s.cache.Set(ctx, key, data, referenceTTL)
	return json.Unmarshal(data, dest)
}
