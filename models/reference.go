package models

import "time"

// Country is a reference table of countries the platform operates in.
type Country struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Code         string    `json:"code" gorm:"size:2;uniqueIndex;not null"` // ISO 3166-1 alpha-2
	FlagEmoji    string    `json:"flag_emoji" gorm:"size:10"`
	IsActive     bool      `json:"is_active" gorm:"default:true;index"`
	DisplayOrder int       `json:"display_order" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Cities []City `json:"cities,omitempty" gorm:"foreignKey:CountryID"`
}

func (Country) TableName() string {
	return "countries"
}

type City struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CountryID *uint     `json:"country_id" gorm:"uniqueIndex:idx_city_country_name"`
	Country   *Country  `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_city_country_name"`
	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Districts []District `json:"districts,omitempty" gorm:"foreignKey:CityID"`
}

func (City) TableName() string {
	return "cities"
}

type District struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CityID    uint      `json:"city_id" gorm:"not null;uniqueIndex:idx_district_city_name"`
	City      City      `json:"city,omitempty" gorm:"foreignKey:CityID"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex:idx_district_city_name"`
	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (District) TableName() string {
	return "districts"
}

// ServiceType is a category of service vendors offer (catering, music, decor...).
type ServiceType struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Icon        string    `json:"icon" gorm:"size:50"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ServiceType) TableName() string {
	return "service_types"
}

// EventType is a category of event a project can be about (wedding, birthday...).
type EventType struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Icon        string    `json:"icon" gorm:"size:50"`
	CreatedAt   time.Time `json:"created_at"`
}

func (EventType) TableName() string {
	return "event_types"
}
