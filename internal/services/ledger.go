package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/splitpot/backend/internal/models"
)

// Epsilon is the threshold below which a balance counts as settled.
// Amounts are stored with two decimal places, so anything under a
// cent is rounding noise.
const Epsilon = 0.01

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// ComputeBalances derives the per-member position for a group from its
// expenses and splits. A member's balance is what they paid plus what
// they owe (splits are stored negative), so positive means the group
// owes them and negative means they owe the group. The sum over all
// members is always zero up to rounding.
func (s *LedgerService) ComputeBalances(groupID uuid.UUID) ([]models.MemberBalance, error) {
	var members []models.Member
	if err := s.DB.Where("group_id = ?", groupID).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	var expenses []models.Expense
	if err := s.DB.Where("group_id = ?", groupID).Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	paid := make(map[uuid.UUID]float64, len(members))
	owed := make(map[uuid.UUID]float64, len(members))

	expenseIDs := make([]uuid.UUID, 0, len(expenses))
	for _, e := range expenses {
		paid[e.PaidByID] += e.Amount
		expenseIDs = append(expenseIDs, e.ID)
	}

	if len(expenseIDs) > 0 {
		var splits []models.ExpenseSplit
		if err := s.DB.Where("expense_id IN ?", expenseIDs).Find(&splits).Error; err != nil {
			return nil, fmt.Errorf("failed to load splits: %w", err)
		}
		for _, split := range splits {
			owed[split.MemberID] += split.Amount
		}
	}

	balances := make([]models.MemberBalance, 0, len(members))
	for _, m := range members {
		totalPaid := Round2(paid[m.ID])
		totalOwed := Round2(owed[m.ID])
		balances = append(balances, models.MemberBalance{
			MemberID:  m.ID,
			Name:      m.Name,
			IsAdmin:   m.IsAdmin,
			TotalPaid: totalPaid,
			TotalOwed: totalOwed,
			Balance:   Round2(totalPaid + totalOwed),
		})
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Balance != balances[j].Balance {
			return balances[i].Balance < balances[j].Balance
		}
		return balances[i].Name < balances[j].Name
	})

	return balances, nil
}

// AllSettled reports whether every member's balance is within Epsilon
// of zero.
func AllSettled(balances []models.MemberBalance) bool {
	for _, b := range balances {
		if math.Abs(b.Balance) > Epsilon {
			return false
		}
	}
	return true
}
