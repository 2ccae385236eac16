package models

import "github.com/google/uuid"

// Group is a shared ledger. Members join it with the human-shareable Code;
// the code is unique and compared case-insensitively.
type Group struct {
	BaseModel
	Name        string     `json:"name" gorm:"type:varchar(150);not null"`
	Code        string     `json:"code" gorm:"type:varchar(40);not null;uniqueIndex"`
	Currency    string     `json:"currency" gorm:"type:varchar(8);not null;default:'€'"`
	CreatedByID *uuid.UUID `json:"createdByID,omitempty" gorm:"type:uuid"`
	Members     []Member   `json:"members,omitempty" gorm:"foreignKey:GroupID"`
	Expenses    []Expense  `json:"-" gorm:"foreignKey:GroupID"`
}
