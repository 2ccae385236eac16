package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/splitpot/backend/internal/middleware"
	"github.com/splitpot/backend/internal/services"
	"github.com/splitpot/backend/pkg/utils"
)

type BalanceHandler struct {
	DB     *gorm.DB
	Ledger *services.LedgerService
}

func NewBalanceHandler(db *gorm.DB, ledger *services.LedgerService) *BalanceHandler {
	return &BalanceHandler{DB: db, Ledger: ledger}
}

func (h *BalanceHandler) List(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	balances, err := h.Ledger.ComputeBalances(member.GroupID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to compute balances")
	}

	return utils.Success(c, fiber.StatusOK, balances)
}

func (h *BalanceHandler) Settlements(c *fiber.Ctx) error {
	member := middleware.GetCurrentMember(c)
	if member == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	balances, err := h.Ledger.ComputeBalances(member.GroupID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed to compute balances")
	}

	return utils.Success(c, fiber.StatusOK, services.CalculateSettlements(balances))
}
