package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MemberRoleChairperson = "chairperson"
	MemberRoleTreasurer   = "treasurer"
	MemberRoleSecretary   = "secretary"
	MemberRoleMember      = "member"
)

const (
	MemberStatusActive    = "active"
	MemberStatusInactive  = "inactive"
	MemberStatusSuspended = "suspended"
)

// Member represents a chama member (the users table)
type Member struct {
	ID           uuid.UUID `json:"id" db:"id"`
	MemberNumber string    `json:"member_number" db:"member_number"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Role         string    `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"`
	JoinedAt     time.Time `json:"joined_at" db:"joined_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the member takes part in dividend allocation.
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

type RegisterMemberRequest struct {
	MemberNumber string `json:"member_number" validate:"required,max=32"`
	Name         string `json:"name" validate:"required,max=128"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	Role         string `json:"role" validate:"omitempty,oneof=chairperson treasurer secretary member"`
	JoinedAt     string `json:"joined_at" validate:"omitempty,datetime=2006-01-02"`
}

type ChangeRoleRequest struct {
	Role  string `json:"role" validate:"required,oneof=chairperson treasurer secretary member"`
	Actor string `json:"actor" validate:"omitempty,max=128"`
}
