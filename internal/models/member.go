package models

import "github.com/google/uuid"

// Member is a person inside one group. Names are unique per group,
// compared case-insensitively; the first member of a group is its admin.
type Member struct {
	BaseModel
	GroupID uuid.UUID `json:"groupID" gorm:"type:uuid;not null;index"`
	Name    string    `json:"name" gorm:"type:varchar(100);not null;index"`
	IsAdmin bool      `json:"isAdmin" gorm:"not null;default:false"`
	Group   Group     `json:"-" gorm:"foreignKey:GroupID"`
}
