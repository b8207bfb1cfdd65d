package models

import (
	"time"
)

// RefreshToken is an issued staff refresh token, kept so it can be revoked.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"user_id"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	IsRevoked bool      `gorm:"not null" json:"is_revoked"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
