package services

import (
	"strings"
	"time"

	"case-management-api/models"

	"gorm.io/gorm"
)

// PermissionAll is the wildcard action that grants every action on a resource.
const PermissionAll = "all"

// legacyAuthorizedRoles is the bootstrap allow-list. Holders of these role
// names pass every permission check regardless of the permissions table.
var legacyAuthorizedRoles = map[string]bool{
	"admin":       true,
	"super_admin": true,
	"dcm":         true,
}

// IsLegacyAuthorizedRole reports whether a role name is on the bootstrap
// allow-list.
func IsLegacyAuthorizedRole(roleName string) bool {
	return legacyAuthorizedRoles[strings.ToLower(strings.TrimSpace(roleName))]
}

func activeAssignments(db *gorm.DB, userID int) ([]models.UserRole, error) {
	var assignments []models.UserRole
	err := db.Preload("Role").Preload("Role.Permissions").
		Where("user_id = ? AND is_active = ? AND (expires_at IS NULL OR expires_at > ?)", userID, true, time.Now()).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// HasPermission answers whether any of the user's active, unexpired role
// assignments grants (resource, action). Roles are checked independently and
// OR-ed; legacy allow-list roles short-circuit to true.
func HasPermission(db *gorm.DB, userID int, resource, action string) (bool, error) {
	assignments, err := activeAssignments(db, userID)
	if err != nil {
		return false, err
	}

	for _, assignment := range assignments {
		if IsLegacyAuthorizedRole(assignment.Role.RoleName) {
			return true, nil
		}
		for _, grant := range assignment.Role.Permissions {
			if grant.Resource != resource {
				continue
			}
			if grant.Action == action || grant.Action == PermissionAll {
				return true, nil
			}
		}
	}
	return false, nil
}

// HasAnyRole reports whether the user holds at least one of the named roles
// through an active, unexpired assignment.
func HasAnyRole(db *gorm.DB, userID int, roleNames ...string) (bool, error) {
	assignments, err := activeAssignments(db, userID)
	if err != nil {
		return false, err
	}
	for _, assignment := range assignments {
		for _, name := range roleNames {
			if strings.EqualFold(assignment.Role.RoleName, name) {
				return true, nil
			}
		}
	}
	return false, nil
}
