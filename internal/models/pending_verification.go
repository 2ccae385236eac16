package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationExpired  VerificationStatus = "expired"
)

// PendingVerification is an unconfirmed claim on an existing member identity.
// It is created when a join attempt collides with an existing display name:
// the joiner receives a 3-digit code, an established member of the group
// submits the same code to approve, and the joiner's poll then picks up the
// session and consumes the row. At most one live row exists per member.
type PendingVerification struct {
	BaseModel
	GroupID      uuid.UUID          `json:"groupID" gorm:"type:uuid;not null;index"`
	MemberID     uuid.UUID          `json:"memberID" gorm:"type:uuid;not null;index"`
	Code         string             `json:"-" gorm:"type:varchar(3);not null;index"`
	Status       VerificationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ApprovedByID *uuid.UUID         `json:"approvedByID,omitempty" gorm:"type:uuid"`
	ExpiresAt    time.Time          `json:"expiresAt" gorm:"not null;index"`
}

func (PendingVerification) TableName() string {
	return "pending_verifications"
}
