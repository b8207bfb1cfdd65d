package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a staff account allowed to sign in to the administrative API.
type User struct {
	BaseModel
	Username    string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string `gorm:"size:255" json:"email"`
	Password    string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	IsSuperuser bool   `gorm:"not null" json:"is_superuser"`
	IsStaff     bool   `gorm:"not null" json:"is_staff"`
	IsActive    bool   `gorm:"not null" json:"is_active"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsSuperuser bool      `json:"is_superuser"`
	IsStaff     bool      `json:"is_staff"`
	CreatedAt   time.Time `json:"created_at"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		IsStaff:     u.IsStaff,
		CreatedAt:   u.CreatedAt,
	}
}
