package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/splitpot/backend/internal/middleware"
	"github.com/splitpot/backend/internal/models"
	"github.com/splitpot/backend/internal/services"
	"github.com/splitpot/backend/pkg/logger"
	"github.com/splitpot/backend/pkg/utils"
)

type ExpenseHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewExpenseHandler(db *gorm.DB, audit *services.AuditService) *ExpenseHandler {
	return &ExpenseHandler{DB: db, Audit: audit}
}

// List returns the group's expenses newest first, splits included.
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var expenses []models.Expense
	err := h.DB.Preload("Splits").
		Where("group_id = ?", member.GroupID).
		Order("created_at DESC").
		Find(&expenses).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to load expenses")
	}

	return utils.Success(c, fiber.StatusOK, expenses)
}

// Create records an expense and its equal splits in one transaction.
// Recording on behalf of another payer needs admin rights, with one
// exception: a settlement expense where the recorder is the creditor.
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Amount      float64  `json:"amount"`
		Description string   `json:"description"`
		PaidBy      string   `json:"paidBy"`
		SplitAmong  []string `json:"splitAmong"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	description := strings.TrimSpace(req.Description)
	if req.Amount <= 0 {
		return utils.Error(c, fiber.StatusBadRequest, "amount must be positive")
	}
	if description == "" {
		return utils.Error(c, fiber.StatusBadRequest, "description is required")
	}
	if len(req.SplitAmong) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "splitAmong must not be empty")
	}

	paidByID, err := parseUUID(req.PaidBy)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "paidBy must be a valid member id")
	}

	participantIDs := make([]uuid.UUID, 0, len(req.SplitAmong))
	seen := make(map[uuid.UUID]bool, len(req.SplitAmong))
	for _, raw := range req.SplitAmong {
		id, err := parseUUID(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "splitAmong contains an invalid member id")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		participantIDs = append(participantIDs, id)
	}

	var groupMembers []models.Member
	if err := h.DB.Where("group_id = ?", member.GroupID).Find(&groupMembers).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to load members")
	}
	inGroup := make(map[uuid.UUID]bool, len(groupMembers))
	for _, m := range groupMembers {
		inGroup[m.ID] = true
	}

	if !inGroup[paidByID] {
		return utils.Error(c, fiber.StatusBadRequest, "paidBy is not a member of this group")
	}
	for _, id := range participantIDs {
		if !inGroup[id] {
			return utils.Error(c, fiber.StatusBadRequest, "splitAmong contains a member outside this group")
		}
	}

	if paidByID != member.ID && !member.IsAdmin {
		settlementByCreditor := models.IsSettlementDescription(description) && seen[member.ID]
		if !settlementByCreditor {
			return utils.Error(c, fiber.StatusForbidden, "only admins can record expenses for other members")
		}
	}

	amount := services.Round2(req.Amount)
	share := -services.Round2(amount / float64(len(participantIDs)))

	expense := models.Expense{
		GroupID:     member.GroupID,
		PaidByID:    paidByID,
		Amount:      amount,
		Description: description,
		EnteredByID: member.ID,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		splits := make([]models.ExpenseSplit, len(participantIDs))
		for i, id := range participantIDs {
			splits[i] = models.ExpenseSplit{
				ExpenseID: expense.ID,
				MemberID:  id,
				Amount:    share,
			}
		}
		return tx.Create(&splits).Error
	})
	if err != nil {
		logger.ErrorWithMember(member.ID.String(), "expense_create_failed", err, map[string]interface{}{
			"group_id": member.GroupID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed to record expense")
	}

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &member.GroupID,
		MemberID:     &member.ID,
		Action:       "expense.create",
		ResourceType: "expense",
		ResourceID:   &expense.ID,
		Details: map[string]interface{}{
			"amount":       amount,
			"paid_by":      paidByID.String(),
			"participants": len(participantIDs),
			"settlement":   expense.IsSettlement(),
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	if err := h.DB.Preload("Splits").First(&expense, "id = ?", expense.ID).Error; err == nil {
		return utils.Success(c, fiber.StatusCreated, expense)
	}
	return utils.Success(c, fiber.StatusCreated, expense)
}

// Delete removes a single expense and its splits.
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	expenseID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid expense id")
	}

	var expense models.Expense
	if err := h.DB.First(&expense, "id = ? AND group_id = ?", expenseID, member.GroupID).Error; err != nil {
		return utils.Error(c, fiber.StatusNotFound, "expense not found")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("expense_id = ?", expense.ID).Delete(&models.ExpenseSplit{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&expense).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to delete expense")
	}

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &member.GroupID,
		MemberID:     &member.ID,
		Action:       "expense.delete",
		ResourceType: "expense",
		ResourceID:   &expense.ID,
		Details: map[string]interface{}{
			"amount":      expense.Amount,
			"description": expense.Description,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "expense deleted"})
}

// Reset removes every expense and split in the group.
func (h *ExpenseHandler) Reset(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var removed int64
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		subQuery := tx.Model(&models.Expense{}).Select("id").Where("group_id = ?", member.GroupID)
		if err := tx.Unscoped().Where("expense_id IN (?)", subQuery).Delete(&models.ExpenseSplit{}).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Where("group_id = ?", member.GroupID).Delete(&models.Expense{})
		removed = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to reset expenses")
	}

	logger.WarnWithMember(member.ID.String(), "expenses_reset", map[string]interface{}{
		"group_id": member.GroupID.String(),
		"removed":  removed,
	})

	h.Audit.LogAsync(services.AuditEntry{
		GroupID:      &member.GroupID,
		MemberID:     &member.ID,
		Action:       "expense.reset",
		ResourceType: "expense",
		Details: map[string]interface{}{
			"removed": removed,
		},
		IPAddress: c.IP(),
		RequestID: getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"removed": removed})
}
