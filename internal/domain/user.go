package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of authorization roles carried by credentials.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleCustomer Role = "customer"
)

// ParseRole validates a raw role string against the closed enum.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleOperator, RoleCustomer:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// Authorize reports whether the actual role is in the required set. An empty
// required set allows any role.
func Authorize(required []Role, actual Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, role := range required {
		if role == actual {
			return true
		}
	}
	return false
}

// User is the account model for people who book tickets. Tickets reference
// users by id only.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
