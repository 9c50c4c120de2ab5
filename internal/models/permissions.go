package models

// Permission constants
const (
	// Fee engine permissions
	PermissionFeesRead = "fees:read"

	// Wizard draft permissions
	PermissionDraftsRead  = "drafts:read"
	PermissionDraftsWrite = "drafts:write"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
)

// GetDefaultPermissions returns default permissions based on role
func GetDefaultPermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionFeesRead,
			PermissionDraftsRead,
			PermissionDraftsWrite,
		}
	case RoleAnalyst:
		return []string{
			PermissionFeesRead,
			PermissionDraftsRead,
		}
	default:
		return []string{}
	}
}
