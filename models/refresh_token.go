package models

import "time"

// RefreshToken is a long-lived opaque token exchanged for new access
// tokens. Revocation is a flag, not a delete, so audits keep the trail.
type RefreshToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"size:64;uniqueIndex;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	IsRevoked bool      `json:"is_revoked" gorm:"default:false;index"`
	UserAgent string    `json:"user_agent" gorm:"size:500"`
	IPAddress string    `json:"ip_address" gorm:"size:45"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsValid reports whether the token can still mint access tokens.
func (t *RefreshToken) IsValid() bool {
	return !t.IsRevoked && time.Now().Before(t.ExpiresAt)
}
