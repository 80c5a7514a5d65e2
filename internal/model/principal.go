package model

import "github.com/google/uuid"

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleAnalyst UserRole = "ANALYST"
	RoleViewer  UserRole = "VIEWER"
)

type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// SessionKey identifies the conversation a principal's queries belong to.
func (p Principal) SessionKey() string {
	return p.UserID.String()
}
