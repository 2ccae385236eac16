package models

import (
	"strings"

	"github.com/google/uuid"
)

// SettlementPrefix marks an expense that records a settlement payment rather
// than a real purchase. A settlement is paid by the debtor and split 100%
// onto the creditor, which cancels that slice of debt in the ledger.
const SettlementPrefix = "⚡ Settlement:"

type Expense struct {
	BaseModel
	GroupID     uuid.UUID      `json:"groupID" gorm:"type:uuid;not null;index"`
	PaidByID    uuid.UUID      `json:"paidByID" gorm:"type:uuid;not null;index"`
	Amount      float64        `json:"amount" gorm:"not null"`
	Description string         `json:"description" gorm:"type:varchar(255);not null"`
	EnteredByID uuid.UUID      `json:"enteredByID" gorm:"type:uuid;not null"`
	Splits      []ExpenseSplit `json:"splits,omitempty" gorm:"foreignKey:ExpenseID"`
}

// IsSettlement reports whether the expense records a settlement payment.
func (e *Expense) IsSettlement() bool {
	return IsSettlementDescription(e.Description)
}

func IsSettlementDescription(description string) bool {
	return strings.HasPrefix(description, SettlementPrefix)
}

// ExpenseSplit is one participant's share of an expense. Amounts are stored
// negative: summing a member's splits yields everything they owe.
type ExpenseSplit struct {
	BaseModel
	ExpenseID uuid.UUID `json:"expenseID" gorm:"type:uuid;not null;index"`
	MemberID  uuid.UUID `json:"memberID" gorm:"type:uuid;not null;index"`
	Amount    float64   `json:"amount" gorm:"not null"`
}
