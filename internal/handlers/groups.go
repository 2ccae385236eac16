package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/splitpot/backend/internal/middleware"
	"github.com/splitpot/backend/internal/models"
	"github.com/splitpot/backend/internal/services"
	"github.com/splitpot/backend/pkg/logger"
	"github.com/splitpot/backend/pkg/utils"
)

type GroupHandler struct {
	DB     *gorm.DB
	Audit  *services.AuditService
	Ledger *services.LedgerService
}

func NewGroupHandler(db *gorm.DB, audit *services.AuditService, ledger *services.LedgerService) *GroupHandler {
	return &GroupHandler{DB: db, Audit: audit, Ledger: ledger}
}

func (h *GroupHandler) Get(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var group models.Group
	if err := h.DB.First(&group, "id = ?", member.GroupID).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "group not found")
	}

	return utils.Success(c, fiber.StatusOK, groupResponse(&group))
}

// Update changes the group name and/or currency. A currency change is
// refused while anyone still owes money, since stored amounts are not
// converted.
func (h *GroupHandler) Update(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Name     *string `json:"name"`
		Currency *string `json:"currency"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.Error(c, fiber.StatusBadRequest, "name must not be empty")
		}
		updates["name"] = name
	}

	if req.Currency != nil {
		currency := strings.TrimSpace(*req.Currency)
		if currency == "" {
			return utils.Error(c, fiber.StatusBadRequest, "currency must not be empty")
		}

		balances, err := h.Ledger.ComputeBalances(member.GroupID)
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed to compute balances")
		}
		if !services.AllSettled(balances) {
			return utils.Error(c, fiber.StatusConflict, "settle all balances before changing the currency")
		}
		updates["currency"] = currency
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "nothing to update")
	}

	if err := h.DB.Model(&models.Group{}).Where("id = ?", member.GroupID).Updates(updates).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to update group")
	}

	var group models.Group
	if err := h.DB.First(&group, "id = ?", member.GroupID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to load group")
	}

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &member.GroupID,
		MemberID:     &member.ID,
		Action:       "group.update",
		ResourceType: "group",
		ResourceID:   &group.ID,
		Details: map[string]interface{}{
			"fields": updateKeys(updates),
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, groupResponse(&group))
}

// ListMembers returns the group roster alphabetically.
func (h *GroupHandler) ListMembers(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var members []models.Member
	err := h.DB.Where("group_id = ?", member.GroupID).
		Order("LOWER(name) ASC").
		Find(&members).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to load members")
	}

	roster := make([]fiber.Map, len(members))
	for i := range members {
		roster[i] = memberResponse(&members[i])
	}
	return utils.Success(c, fiber.StatusOK, roster)
}

// RemoveMember deletes a member along with their splits, the expenses
// they paid (and those expenses' splits) and any pending verifications.
func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	targetID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid member id")
	}
	if targetID == member.ID {
		return utils.Error(c, fiber.StatusBadRequest, "you cannot remove yourself")
	}

	var target models.Member
	if err := h.DB.First(&target, "id = ? AND group_id = ?", targetID, member.GroupID).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "member not found")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		paidExpenses := tx.Model(&models.Expense{}).Select("id").Where("paid_by_id = ?", target.ID)
		if err := tx.Unscoped().Where("expense_id IN (?)", paidExpenses).Delete(&models.ExpenseSplit{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("paid_by_id = ?", target.ID).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("member_id = ?", target.ID).Delete(&models.ExpenseSplit{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("member_id = ?", target.ID).Delete(&models.PendingVerification{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&target).Error
	})
	if err != nil {
		logger.ErrorWithMember(member.ID.String(), "member_remove_failed", err, map[string]interface{}{
			"target_id": target.ID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed to remove member")
	}

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &member.GroupID,
		MemberID:     &member.ID,
		Action:       "member.remove",
		ResourceType: "member",
		ResourceID:   &target.ID,
		Details: map[string]interface{}{
			"member_name": target.Name,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "member removed"})
}

func updateKeys(updates map[string]interface{}) []string {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	return keys
}
