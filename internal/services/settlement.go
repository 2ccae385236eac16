package services

import (
	"math"
	"sort"

	"github.com/splitpot/backend/internal/models"
)

// CalculateSettlements produces a minimal-ish transfer plan that zeroes
// out the given balances. Debtors and creditors are each matched
// largest first, so the plan never has more transfers than
// debtors + creditors - 1. Balances within Epsilon of zero are left
// alone.
func CalculateSettlements(balances []models.MemberBalance) []models.Transfer {
	var debtors, creditors []models.MemberBalance
	for _, b := range balances {
		switch {
		case b.Balance < -Epsilon:
			debtors = append(debtors, b)
		case b.Balance > Epsilon:
			creditors = append(creditors, b)
		}
	}

	sort.Slice(debtors, func(i, j int) bool {
		return debtors[i].Balance < debtors[j].Balance
	})
	sort.Slice(creditors, func(i, j int) bool {
		return creditors[i].Balance > creditors[j].Balance
	})

	transfers := []models.Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debt := -debtors[i].Balance
		credit := creditors[j].Balance

		amount := Round2(math.Min(debt, credit))
		if amount > 0 {
			transfers = append(transfers, models.Transfer{
				FromID:   debtors[i].MemberID,
				FromName: debtors[i].Name,
				ToID:     creditors[j].MemberID,
				ToName:   creditors[j].Name,
				Amount:   amount,
			})
		}

		debtors[i].Balance = Round2(debtors[i].Balance + amount)
		creditors[j].Balance = Round2(creditors[j].Balance - amount)

		if debtors[i].Balance >= -Epsilon {
			i++
		}
		if creditors[j].Balance <= Epsilon {
			j++
		}
	}

	return transfers
}
