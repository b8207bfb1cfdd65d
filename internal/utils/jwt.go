package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/models"
)

// Claims represents the JWT claims.
type Claims struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}

// GenerateTokens generates both access and refresh tokens for a user.
// The refresh token's expiry is returned so it can be stored.
func GenerateTokens(user *models.User, cfg *config.Config) (accessToken string, refreshToken string, refreshExpiresAt time.Time, err error) {
	now := time.Now()

	accessToken, err = signToken(user, now.Add(time.Duration(cfg.JWTExpirationMinutes)*time.Minute), cfg.JWTSecret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshExpiresAt = now.Add(time.Duration(cfg.JWTRefreshExpirationHours) * time.Hour)
	refreshToken, err = signToken(user, refreshExpiresAt, cfg.JWTRefreshSecret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return accessToken, refreshToken, refreshExpiresAt, nil
}

func signToken(user *models.User, expiresAt time.Time, secret string) (string, error) {
	claims := &Claims{
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(), // two logins in the same second must not share a token
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken validates a JWT token.
func ValidateToken(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
