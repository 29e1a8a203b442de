package directory

import "time"

// Role is the access tier assigned to an identity.
type Role string

const (
	// RoleNone is the tier of a freshly registered identity.
	RoleNone Role = ""
	// RoleAdmin grants access to directory listings and privileged mutations.
	RoleAdmin Role = "admin"
	// RoleConsumer marks identities that own an SMS credit account.
	RoleConsumer Role = "consumer"
)

// Valid reports whether the role is one of the assignable tiers.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleConsumer
}

// Identity represents a registered user in the directory.
type Identity struct {
	ID           string
	Email        string
	Role         Role
	PasswordHash []byte
	CreatedAt    time.Time
}
