package controllers

import (
	"net/http"
	"time"

	"case-management-api/config"
	"case-management-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetUsers(c *gin.Context) {
	page, limit := parsePage(c)

	query := config.DB.Model(&models.User{}).Where("delete_at IS NULL")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}

	var users []models.User
	if err := query.Preload("Roles.Role").
		Order("user_id ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "total": total, "page": page, "limit": limit})
}

type CreateUserBody struct {
	FullName  string  `json:"full_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Phone     *string `json:"phone"`
	ITSNumber *string `json:"its_number"`
	RoleID    *int    `json:"role_id"`
}

func CreateUser(c *gin.Context) {
	var body CreateUserBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ? AND delete_at IS NULL", body.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
		return
	}

	hashed, err := HashPassword(body.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	user := models.User{
		FullName:  body.FullName,
		Email:     body.Email,
		Password:  hashed,
		Phone:     body.Phone,
		ITSNumber: body.ITSNumber,
		IsActive:  true,
		CreateAt:  &now,
		UpdateAt:  &now,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if body.RoleID != nil {
			assignment := models.UserRole{
				UserID:   user.UserID,
				RoleID:   *body.RoleID,
				IsActive: true,
				CreateAt: &now,
			}
			return tx.Create(&assignment).Error
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": user})
}

type AssignRoleBody struct {
	RoleID    int        `json:"role_id" binding:"required"`
	JamiatID  *int       `json:"jamiat_id"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// AssignRole adds a role assignment; users may hold several at once.
func AssignRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body AssignRoleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var role models.Role
	if err := config.DB.Where("role_id = ? AND delete_at IS NULL", body.RoleID).First(&role).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role not found"})
		return
	}

	now := time.Now()
	assignment := models.UserRole{
		UserID:    userID,
		RoleID:    body.RoleID,
		JamiatID:  body.JamiatID,
		IsActive:  true,
		ExpiresAt: body.ExpiresAt,
		CreateAt:  &now,
	}
	if err := config.DB.Create(&assignment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign role"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Role assigned successfully", "assignment": assignment})
}

// RevokeRole deactivates a role assignment.
func RevokeRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "assignment_id")
	if !ok {
		return
	}

	result := config.DB.Model(&models.UserRole{}).
		Where("user_role_id = ? AND user_id = ?", assignmentID, userID).
		Update("is_active", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke role"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role assignment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role revoked successfully"})
}

func GetRoles(c *gin.Context) {
	var roles []models.Role
	if err := config.DB.Preload("Permissions").
		Where("delete_at IS NULL").
		Order("role_id ASC").
		Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load roles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

type PermissionGrant struct {
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type CreateRoleBody struct {
	RoleName    string            `json:"role_name" binding:"required"`
	Description *string           `json:"description"`
	Permissions []PermissionGrant `json:"permissions"`
}

func CreateRole(c *gin.Context) {
	var body CreateRoleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Role
	if err := config.DB.Where("role_name = ? AND delete_at IS NULL", body.RoleName).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A role with this name already exists"})
		return
	}

	now := time.Now()
	role := models.Role{
		RoleName:    body.RoleName,
		Description: body.Description,
		CreateAt:    &now,
		UpdateAt:    &now,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		for _, grant := range body.Permissions {
			permission := models.Permission{
				RoleID:   role.RoleID,
				Resource: grant.Resource,
				Action:   grant.Action,
			}
			if err := tx.Create(&permission).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Role created successfully", "role": role})
}
