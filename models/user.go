package models

import (
	"time"
)

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FullName  string     `gorm:"column:full_name" json:"full_name"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	Phone     *string    `gorm:"column:phone" json:"phone,omitempty"`
	ITSNumber *string    `gorm:"column:its_number" json:"its_number,omitempty"`
	IsActive  bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Roles []UserRole `gorm:"foreignKey:UserID" json:"roles,omitempty"`
}

type Role struct {
	RoleID      int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	RoleName    string     `gorm:"column:role_name;unique" json:"role_name"`
	Description *string    `gorm:"column:description" json:"description,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Permissions []Permission `gorm:"foreignKey:RoleID" json:"permissions,omitempty"`
}

// Permission grants one (resource, action) pair to a role. Action "all"
// grants every action on the resource.
type Permission struct {
	PermissionID int    `gorm:"primaryKey;column:permission_id" json:"permission_id"`
	RoleID       int    `gorm:"column:role_id" json:"role_id"`
	Resource     string `gorm:"column:resource" json:"resource"`
	Action       string `gorm:"column:action" json:"action"`
}

// UserRole assigns a role to a user, optionally time-bounded and scoped to a
// jamiat. A user may hold several assignments at once.
type UserRole struct {
	UserRoleID int        `gorm:"primaryKey;column:user_role_id" json:"user_role_id"`
	UserID     int        `gorm:"column:user_id" json:"user_id"`
	RoleID     int        `gorm:"column:role_id" json:"role_id"`
	JamiatID   *int       `gorm:"column:jamiat_id" json:"jamiat_id,omitempty"`
	IsActive   bool       `gorm:"column:is_active;default:true" json:"is_active"`
	ExpiresAt  *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`

	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (Permission) TableName() string {
	return "permissions"
}

func (UserRole) TableName() string {
	return "user_roles"
}
