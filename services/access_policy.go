package services

import "crime_records_go/models"

// Capabilities describes what a role may do. Visibility and mutation rights
// are role-scoped, not ownership-scoped: every role reads everything, editors
// and admins write everything, and only admins may hard-delete or manage users.
type Capabilities struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
	Admin bool `json:"admin"`
}

// RoleCapabilities maps a role to its capability set
func RoleCapabilities(role string) Capabilities {
	switch role {
	case models.RoleAdmin:
		return Capabilities{Read: true, Write: true, Admin: true}
	case models.RoleEditor:
		return Capabilities{Read: true, Write: true}
	case models.RoleViewer:
		return Capabilities{Read: true}
	default:
		return Capabilities{}
	}
}

// roleRank orders the known roles: viewer < editor < admin
func roleRank(role string) int {
	switch role {
	case models.RoleAdmin:
		return 3
	case models.RoleEditor:
		return 2
	case models.RoleViewer:
		return 1
	default:
		return 0
	}
}

// RoleAtLeast checks if role grants at least the capabilities of min
func RoleAtLeast(role, min string) bool {
	return roleRank(role) >= roleRank(min) && roleRank(role) > 0
}

// CanModify checks whether the acting user may modify a record created by
// ownerID. Editors and admins modify any record regardless of ownership;
// viewers modify nothing. Ownership is recorded for audit only.
func CanModify(role, ownerID, actorID string) bool {
	_ = ownerID // global write policy: ownership does not narrow write rights
	_ = actorID
	return RoleCapabilities(role).Write
}

// CanHardDelete checks whether the role may permanently delete, which cascades.
// This is the single role check that stays admin-only regardless of ownership.
func CanHardDelete(role string) bool {
	return RoleCapabilities(role).Admin
}
