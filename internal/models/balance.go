package models

import "github.com/google/uuid"

// MemberBalance is a member's derived net position. It is always recomputed
// from the raw expense and split rows, never stored.
type MemberBalance struct {
	MemberID  uuid.UUID `json:"memberID"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	TotalPaid float64   `json:"totalPaid"`
	TotalOwed float64   `json:"totalOwed"`
	Balance   float64   `json:"balance"`
}

// Transfer is one suggested settlement payment. Transfers are ephemeral
// output of the settlement planner; executing one is done by recording a
// settlement-tagged expense, not by persisting the transfer itself.
type Transfer struct {
	FromID   uuid.UUID `json:"fromID"`
	FromName string    `json:"fromName"`
	ToID     uuid.UUID `json:"toID"`
	ToName   string    `json:"toName"`
	Amount   float64   `json:"amount"`
}
