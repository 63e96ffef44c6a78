package models

import (
	"time"

	"github.com/dmitrijs2005/docshare/internal/common"
)

// Role is the account kind. Operations users upload documents; clients
// list and download them.
type Role string

const (
	RoleOperations Role = common.RoleOperations
	RoleClient     Role = common.RoleClient
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOperations || r == RoleClient
}

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	IsVerified   bool
	CreatedAt    time.Time
}
