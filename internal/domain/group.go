package domain

import (
	"time"

	"github.com/google/uuid"
)

// Group is a shared photo space. Membership, quotas and invitations
// are managed elsewhere; the clustering core only needs the group id
// and admin verification.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupRole is the role of a user inside a group
type GroupRole string

const (
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)
