package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"dental-clinic-server/internal/cache"
	"dental-clinic-server/internal/services"
	"dental-clinic-server/internal/utils"
)

const (
	FeedbackRateLimit   = 5
	FeedbackRateWindow  = time.Hour
	feedbackDedupWindow = 24 * time.Hour
)

// FeedbackHandler handles patient feedback.
type FeedbackHandler struct {
	Feedback *services.FeedbackService
	Cache    cache.Provider
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedback *services.FeedbackService, provider cache.Provider) *FeedbackHandler {
	return &FeedbackHandler{Feedback: feedback, Cache: provider}
}

// FeedbackRequest represents the request body for leaving feedback.
type FeedbackRequest struct {
	Name    string `json:"name" binding:"max=255"`
	Phone   string `json:"phone" binding:"max=50"`
	Message string `json:"message" binding:"required,max=2000"`
}

// SubmitFeedback stores feedback. The same message from the same client
// within a day is acknowledged but not stored again.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	dupKey := "feedback:dup:" + feedbackFingerprint(req, c.ClientIP())
	if h.isDuplicate(ctx, dupKey) {
		utils.Accepted(c, "Duplicate feedback ignored", gin.H{"status": "duplicate_ignored"})
		return
	}

	feedback, err := h.Feedback.Create(ctx, services.FeedbackInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		_ = h.Cache.Delete(ctx, dupKey)
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Feedback received", feedback)
}

func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	items, err := h.Feedback.List(c.Request.Context(), c.Query("phone"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Feedback fetched successfully", items)
}

func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	item, err := h.Feedback.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Feedback fetched successfully", item)
}

// isDuplicate claims key for the dedupe window. Only the first of several
// identical submissions gets the claim.
func (h *FeedbackHandler) isDuplicate(ctx context.Context, key string) bool {
	stored, err := h.Cache.SetNX(ctx, key, []byte("1"), feedbackDedupWindow)
	if err != nil {
		log.Warn().Err(err).Msg("feedback dedupe unavailable")
		return false
	}
	return !stored
}

func feedbackFingerprint(req FeedbackRequest, ip string) string {
	normalized := []string{
		normalizeFeedback(req.Name),
		services.NormalizePhone(req.Phone),
		normalizeFeedback(req.Message),
		ip,
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

func normalizeFeedback(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}
