package repository

import (
	"context"
	"time"

	"dental-clinic-server/internal/models"
)

// UserRepository stores staff accounts and their refresh tokens.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, id, hashedPassword string) error

	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// FindActiveRefreshToken returns a token that is neither revoked nor expired at now.
	FindActiveRefreshToken(ctx context.Context, userID, token string, now time.Time) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	// DeleteStaleRefreshTokens removes revoked tokens and tokens expired
	// before now, returning how many rows were deleted.
	DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error, "user")
}

func (s *GormStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (s *GormStore) UpdateUserPassword(ctx context.Context, id, hashedPassword string) error {
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"password": hashedPassword, "is_active": true}).Error
	return translate(err, "user")
}

func (s *GormStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return translate(s.db.WithContext(ctx).Omit("User").Create(token).Error, "refresh token")
}

func (s *GormStore) FindActiveRefreshToken(ctx context.Context, userID, token string, now time.Time) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND token = ? AND is_revoked = ? AND expires_at > ?", userID, token, false, now).
		First(&rt).Error
	if err != nil {
		return nil, translate(err, "refresh token")
	}
	return &rt, nil
}

func (s *GormStore) RevokeRefreshToken(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Update("is_revoked", true).Error
	return translate(err, "refresh token")
}

func (s *GormStore) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error
	return translate(err, "refresh token")
}

func (s *GormStore) DeleteStaleRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("is_revoked = ? OR expires_at < ?", true, now).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, translate(res.Error, "refresh token")
	}
	return res.RowsAffected, nil
}
