package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a signed-in principal. The role is assigned once at signup and is
// not self-service-changeable afterwards; authorization decisions always go
// through the resolved role, never a default.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Organization string // Company or facility name; optional for consumers.
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
