package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"event-marketplace-server/models"
	"event-marketplace-server/utils"
)

// refreshTokenLifetime is how long a refresh token stays exchangeable.
const refreshTokenLifetime = 30 * 24 * time.Hour

// JWTService issues access/refresh token pairs and rotates access
// tokens off stored refresh tokens.
type JWTService struct {
	db          *gorm.DB
	expiryHours int
}

func NewJWTService(db *gorm.DB, expiryHours int) *JWTService {
	return &JWTService{db: db, expiryHours: expiryHours}
}

// TokenPair is the login/refresh response body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// GenerateTokenPair mints an access token plus a stored refresh token.
func (js *JWTService) GenerateTokenPair(user *models.User, userAgent, ipAddress string) (*TokenPair, error) {
	accessToken, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, err
	}
	tokenString := hex.EncodeToString(tokenBytes)

	refreshToken := models.RefreshToken{
		Token:     tokenString,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(refreshTokenLifetime),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
	if err := js.db.Create(&refreshToken).Error; err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: tokenString,
		ExpiresIn:    int64(js.expiryHours) * 3600,
		TokenType:    "Bearer",
	}, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access
// token. The refresh token itself is kept.
func (js *JWTService) RefreshAccessToken(refreshTokenString string) (*TokenPair, error) {
	var refreshToken models.RefreshToken
	err := js.db.Preload("User").Where("token = ?", refreshTokenString).First(&refreshToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: refresh token", ErrNotFound)
		}
		return nil, err
	}
	if !refreshToken.IsValid() {
		return nil, fmt.Errorf("%w: refresh token is revoked or expired", ErrForbidden)
	}
	if !refreshToken.User.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", ErrForbidden)
	}

	accessToken, err := utils.GenerateToken(refreshToken.UserID, string(refreshToken.User.Role))
	if err != nil {
		return nil, err
	}

	js.db.Model(&refreshToken).Update("updated_at", time.Now())

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(js.expiryHours) * 3600,
		TokenType:    "Bearer",
	}, nil
}

// RevokeRefreshToken invalidates one refresh token (logout).
func (js *JWTService) RevokeRefreshToken(refreshTokenString string) error {
	result := js.db.Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", refreshTokenString, false).
		Update("is_revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: refresh token", ErrNotFound)
	}
	return nil
}

// RevokeAllUserTokens invalidates every refresh token a user holds
// (logout everywhere, account deactivation).
func (js *JWTService) RevokeAllUserTokens(userID uint) error {
	result := js.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("🔒 Revoked %d refresh token(s) for user %d", result.RowsAffected, userID)
	}
	return nil
}

// CleanupExpiredTokens deletes tokens past their expiry. Run by the
// maintenance job.
func (js *JWTService) CleanupExpiredTokens() (int64, error) {
	result := js.db.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
