package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"dental-clinic-server/internal/apperrors"
	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/middleware"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/repository"
	"dental-clinic-server/internal/utils"
)

const refreshCookieName = "refresh_token"

// AuthHandler handles staff authentication requests.
type AuthHandler struct {
	Users repository.UserRepository
	Cfg   *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users repository.UserRepository, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Users: users, Cfg: cfg}
}

// LoginRequest represents the request body for staff login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	User         models.UserSanitized `json:"user"`
}

// Login handles staff login. Only active superusers may sign in.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, err := h.Users.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
			utils.Unauthorized(c, "Invalid username or password")
			return
		}
		utils.RespondError(c, err)
		return
	}

	if !user.IsActive || !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid username or password")
		return
	}
	if !user.IsSuperuser {
		utils.Forbidden(c, "Access denied. Admin privileges required.")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(c, user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	log.Info().Str("user", user.Username).Msg("staff login")
	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitize(),
	})
}

// Verify returns the authenticated staff user.
func (h *AuthHandler) Verify(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.Users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !user.IsActive || !user.IsSuperuser {
		utils.Forbidden(c, "Access denied. Admin privileges required.")
		return
	}

	utils.Success(c, "Token is valid", user.Sanitize())
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken exchanges a refresh token for a new token pair. The used
// refresh token is revoked.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()

	// First try to get the refresh token from HTTP-only cookie
	tokenString, err := c.Cookie(refreshCookieName)
	if err != nil || tokenString == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		tokenString = req.RefreshToken
	}

	claims, err := utils.ValidateToken(tokenString, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token structure or signature: "+err.Error())
		return
	}

	stored, err := h.Users.FindActiveRefreshToken(ctx, claims.UserID, tokenString, time.Now().UTC())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
			return
		}
		utils.RespondError(c, err)
		return
	}

	user, err := h.Users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !user.IsActive || !user.IsSuperuser {
		utils.Forbidden(c, "Access denied. Admin privileges required.")
		return
	}

	if err := h.Users.RevokeRefreshToken(ctx, stored.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	accessToken, refreshToken, err := h.issueTokens(c, user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Logout revokes every refresh token of the authenticated user.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Users.RevokeUserRefreshTokens(c.Request.Context(), userID); err != nil {
		utils.RespondError(c, err)
		return
	}

	// Clear the refresh token cookie
	c.SetCookie(refreshCookieName, "", -1, "/", "", h.Cfg.Environment != "development", true)

	utils.Success(c, "Logout successful", nil)
}

// issueTokens signs a token pair, stores the refresh token and sets it as
// an HTTP-only cookie.
func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) (string, string, error) {
	accessToken, refreshToken, expiresAt, err := utils.GenerateTokens(user, h.Cfg)
	if err != nil {
		return "", "", apperrors.NewInternalError("failed to generate tokens", err)
	}

	stored := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: expiresAt.UTC(),
	}
	if err := h.Users.CreateRefreshToken(c.Request.Context(), stored); err != nil {
		return "", "", err
	}

	c.SetCookie(
		refreshCookieName,
		refreshToken,
		h.Cfg.JWTRefreshExpirationHours*60*60,
		"/",
		"",
		h.Cfg.Environment != "development", // Secure (true in prod, false in dev)
		true,
	)
	return accessToken, refreshToken, nil
}
