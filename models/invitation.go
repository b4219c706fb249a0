package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation is a one-time token sent by email that lets an invited user set a
// password and activate their account with the role chosen by the inviter.
type Invitation struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Email      string     `gorm:"not null;index" json:"email"`
	Role       string     `gorm:"not null;default:viewer" json:"role"`
	Token      string     `gorm:"uniqueIndex;not null" json:"-"` // Don't expose token in JSON
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`

	InvitedByID string `gorm:"type:uuid;not null" json:"invited_by_id"`

	// Relationships
	InvitedBy *User `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// IsExpired checks if the invitation has expired
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsAccepted checks if the invitation was already used
func (i *Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

// TableName specifies the table name for Invitation model
func (Invitation) TableName() string {
	return "invitations"
}
