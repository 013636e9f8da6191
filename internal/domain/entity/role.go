// Package entity contains the core business objects of the project.
package entity

import "slices"

// Role represents the supply-chain role a signed-in principal acts as.
type Role string

const (
	// RoleManufacturer registers drugs and issues QR codes.
	RoleManufacturer Role = "manufacturer"
	// RoleDistributor takes custody of drugs in transit.
	RoleDistributor Role = "distributor"
	// RolePharmacy receives, sells and may flag drugs.
	RolePharmacy Role = "pharmacy"
	// RoleConsumer verifies drugs through the public lookup path.
	RoleConsumer Role = "consumer"
	// RoleAdmin has global visibility and may flag or delete drugs.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleManufacturer, RoleDistributor, RolePharmacy, RoleConsumer, RoleAdmin:
		return true
	default:
		return false
	}
}

// DashboardPath returns the client route this role lands on after sign-in.
// Consumers have no dashboard and go straight to the public verify page.
func (r Role) DashboardPath() string {
	switch r {
	case RoleManufacturer:
		return "/manufacturer"
	case RoleDistributor:
		return "/distributor"
	case RolePharmacy:
		return "/pharmacy"
	case RoleAdmin:
		return "/admin"
	case RoleConsumer:
		return "/verify"
	default:
		return "/"
	}
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}
