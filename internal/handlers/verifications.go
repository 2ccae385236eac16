package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/splitpot/backend/internal/middleware"
	"github.com/splitpot/backend/internal/models"
	"github.com/splitpot/backend/internal/services"
	"github.com/splitpot/backend/pkg/logger"
	"github.com/splitpot/backend/pkg/utils"
)

type VerificationHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewVerificationHandler(db *gorm.DB, audit *services.AuditService) *VerificationHandler {
	return &VerificationHandler{DB: db, Audit: audit}
}

// Approve is called by an existing group member who was shown the
// 3-digit code by the person trying to join. The first approval wins;
// a concurrent second approval sees a conflict.
func (h *VerificationHandler) Approve(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return utils.Error(c, fiber.StatusBadRequest, "code is required")
	}

	var pending models.PendingVerification
	err := h.DB.First(&pending,
		"group_id = ? AND code = ? AND status = ?",
		member.GroupID, code, models.VerificationPending).Error
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, "no pending verification found for this code")
	}

	if time.Now().After(pending.ExpiresAt) {
		h.DB.Model(&pending).Update("status", models.VerificationExpired)
		return utils.Error(c, fiber.StatusGone, "this verification has expired")
	}

	result := h.DB.Model(&models.PendingVerification{}).
		Where("id = ? AND status = ?", pending.ID, models.VerificationPending).
		Updates(map[string]interface{}{
			"status":         models.VerificationApproved,
			"approved_by_id": member.ID,
		})
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to approve verification")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusConflict, "verification already handled")
	}

	logger.InfoWithMember(member.ID.String(), "verification_approved", map[string]interface{}{
		"pending_id": pending.ID.String(),
		"member_id":  pending.MemberID.String(),
	})

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &member.GroupID,
		MemberID:     &member.ID,
		Action:       "verification.approve",
		ResourceType: "verification",
		ResourceID:   &pending.ID,
		Details: map[string]interface{}{
			"approved_member_id": pending.MemberID.String(),
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "verification approved"})
}

// Poll is called by the joining client. An approved row hands out the
// session exactly once and is consumed; later polls see a 404 and the
// client falls back to joining again.
func (h *VerificationHandler) Poll(c *fiber.Ctx) error {
	pendingID, err := parseUUID(c.Query("pendingId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "pendingId query parameter is required")
	}
	memberID, err := parseUUID(c.Query("memberId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "memberId query parameter is required")
	}

	var pending models.PendingVerification
	if err := h.DB.First(&pending, "id = ?", pendingID).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "verification not found")
	}
	if pending.MemberID != memberID {
		return utils.Error(c, fiber.StatusNotFound, "verification not found")
	}

	switch pending.Status {
	case models.VerificationPending:
		if time.Now().After(pending.ExpiresAt) {
			h.DB.Model(&pending).Update("status", models.VerificationExpired)
			return utils.Error(c, fiber.StatusGone, "this verification has expired")
		}
		return utils.Success(c, fiber.StatusOK, fiber.Map{"approved": false})

	case models.VerificationExpired:
		return utils.Error(c, fiber.StatusGone, "this verification has expired")

	case models.VerificationApproved:
		var member models.Member
		if err := h.DB.First(&member, "id = ?", pending.MemberID).Error; err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "member not found")
		}
		var group models.Group
		if err := h.DB.First(&group, "id = ?", pending.GroupID).Error; err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "group not found")
		}

		token, err := utils.GenerateToken(&member)
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed to generate token")
		}

		h.DB.Unscoped().Delete(&pending)

		logger.InfoWithMember(member.ID.String(), "verification_session_issued", map[string]interface{}{
			"group_id": group.ID.String(),
		})

		payload := sessionResponse(&member, &group, token)
		payload["approved"] = true
		return utils.Success(c, fiber.StatusOK, payload)

	default:
		return utils.Error(c, fiber.StatusNotFound, "verification not found")
	}
}

// Pending reports whether the caller's group has any live verification.
func (h *VerificationHandler) Pending(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var count int64
	err := h.DB.Model(&models.PendingVerification{}).
		Where("group_id = ? AND status = ? AND expires_at > ?",
			member.GroupID, models.VerificationPending, time.Now()).
		Count(&count).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to check pending verifications")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"hasPending": count > 0})
}

// Clear removes every verification row for the caller's group.
func (h *VerificationHandler) Clear(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	result := h.DB.Unscoped().
		Where("group_id = ?", member.GroupID).
		Delete(&models.PendingVerification{})
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to clear verifications")
	}

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &member.GroupID,
		MemberID:     &member.ID,
		Action:       "verification.clear",
		ResourceType: "verification",
		Details: map[string]interface{}{
			"cleared": result.RowsAffected,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"cleared": result.RowsAffected})
}

// CleanupExpiredVerifications removes rows that have been expired for
// over an hour and flags pending rows past their TTL.
func CleanupExpiredVerifications(db *gorm.DB) {
	now := time.Now()
	db.Model(&models.PendingVerification{}).
		Where("status = ? AND expires_at < ?", models.VerificationPending, now).
		Update("status", models.VerificationExpired)
	db.Unscoped().
		Where("status = ? AND expires_at < ?", models.VerificationExpired, now.Add(-1*time.Hour)).
		Delete(&models.PendingVerification{})
}
