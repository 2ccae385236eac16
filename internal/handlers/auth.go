package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/splitpot/backend/internal/config"
	"github.com/splitpot/backend/internal/middleware"
	"github.com/splitpot/backend/internal/models"
	"github.com/splitpot/backend/internal/services"
	"github.com/splitpot/backend/pkg/logger"
	"github.com/splitpot/backend/pkg/utils"
)

const groupCodeRetries = 10

type AuthHandler struct {
	DB           *gorm.DB
	Audit        *services.AuditService
	Verification config.VerificationConfig
}

func NewAuthHandler(db *gorm.DB, audit *services.AuditService, vcfg config.VerificationConfig) *AuthHandler {
	return &AuthHandler{DB: db, Audit: audit, Verification: vcfg}
}

// CreateGroup creates a group with a fresh join code and its first
// member, who becomes the admin.
func (h *AuthHandler) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		GroupName  string `json:"groupName"`
		MemberName string `json:"memberName"`
		Currency   string `json:"currency"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	groupName := strings.TrimSpace(req.GroupName)
	memberName := strings.TrimSpace(req.MemberName)
	if groupName == "" {
		return utils.Error(c, fiber.StatusBadRequest, "groupName is required")
	}
	if memberName == "" {
		return utils.Error(c, fiber.StatusBadRequest, "memberName is required")
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = "€"
	}

	var group models.Group
	var member models.Member

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		code, err := h.uniqueGroupCode(tx)
		if err != nil {
			return err
		}

		group = models.Group{
			Name:     groupName,
			Code:     code,
			Currency: currency,
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		member = models.Member{
			GroupID: group.ID,
			Name:    memberName,
			IsAdmin: true,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		return tx.Model(&group).Update("created_by_id", member.ID).Error
	})
	if err != nil {
		logger.Error("group_create_failed", err, map[string]interface{}{
			"group_name": groupName,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create group")
	}
	group.CreatedByID = &member.ID

	token, err := utils.GenerateToken(&member)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to generate token")
	}

	logger.InfoWithMember(member.ID.String(), "group_created", map[string]interface{}{
		"group_id": group.ID.String(),
		"code":     group.Code,
	})

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &group.ID,
		MemberID:     &member.ID,
		Action:       "group.create",
		ResourceType: "group",
		ResourceID:   &group.ID,
		Details: map[string]interface{}{
			"group_name": group.Name,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, sessionResponse(&member, &group, token))
}

func (h *AuthHandler) uniqueGroupCode(tx *gorm.DB) (string, error) {
	for i := 0; i < groupCodeRetries; i++ {
		code, err := utils.GenerateGroupCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&models.Group{}).Where("LOWER(code) = LOWER(?)", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", gorm.ErrDuplicatedKey
}

// JoinGroup resolves a join code and either admits the caller directly
// (new name) or starts a verification handshake (name already taken).
func (h *AuthHandler) JoinGroup(c *fiber.Ctx) error {
	var req struct {
		Code       string `json:"code"`
		MemberName string `json:"memberName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	code := strings.TrimSpace(req.Code)
	memberName := strings.TrimSpace(req.MemberName)
	if code == "" {
		return utils.Error(c, fiber.StatusBadRequest, "code is required")
	}
	if memberName == "" {
		return utils.Error(c, fiber.StatusBadRequest, "memberName is required")
	}

	var group models.Group
	if err := h.DB.First(&group, "LOWER(code) = LOWER(?)", code).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	}

	var existing models.Member
	err := h.DB.First(&existing, "group_id = ? AND LOWER(name) = LOWER(?)", group.ID, memberName).Error
	if err == nil {
		return h.startVerification(c, &group, &existing)
	}
	if err != gorm.ErrRecordNotFound {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to look up member")
	}

	member := models.Member{
		GroupID: group.ID,
		Name:    memberName,
	}
	if err := h.DB.Create(&member).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create member")
	}

	token, err := utils.GenerateToken(&member)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to generate token")
	}

	logger.InfoWithMember(member.ID.String(), "member_joined", map[string]interface{}{
		"group_id": group.ID.String(),
	})

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &group.ID,
		MemberID:     &member.ID,
		Action:       "member.join",
		ResourceType: "member",
		ResourceID:   &member.ID,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, sessionResponse(&member, &group, token))
}

// startVerification replaces any stale pending rows for the member with
// a fresh 3-digit code and tells the caller to poll.
func (h *AuthHandler) startVerification(c *fiber.Ctx, group *models.Group, member *models.Member) error {
	verifyCode, err := utils.GenerateVerificationCode()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to generate verification code")
	}

	pending := models.PendingVerification{
		GroupID:   group.ID,
		MemberID:  member.ID,
		Code:      verifyCode,
		Status:    models.VerificationPending,
		ExpiresAt: time.Now().Add(h.Verification.TTL),
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("member_id = ?", member.ID).
			Delete(&models.PendingVerification{}).Error; err != nil {
			return err
		}
		return tx.Create(&pending).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to start verification")
	}

	logger.Info("verification_started", map[string]interface{}{
		"group_id":  group.ID.String(),
		"member_id": member.ID.String(),
	})

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &group.ID,
		MemberID:     &member.ID,
		Action:       "verification.start",
		ResourceType: "verification",
		ResourceID:   &pending.ID,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusAccepted, fiber.Map{
		"needsVerification": true,
		"pendingId":         pending.ID,
		"memberId":          member.ID,
		"code":              verifyCode,
		"interval":          h.Verification.PollInterval,
		"expiresAt":         pending.ExpiresAt,
		"group":             groupResponse(group),
	})
}

// Me returns the session data for the authenticated member.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var group models.Group
	if err := h.DB.First(&group, "id = ?", member.GroupID).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"member": memberResponse(member),
		"group":  groupResponse(&group),
	})
}
