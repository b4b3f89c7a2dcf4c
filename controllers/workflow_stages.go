package controllers

import (
	"net/http"
	"time"

	"case-management-api/config"
	"case-management-api/models"

	"github.com/gin-gonic/gin"
)

func GetWorkflowStages(c *gin.Context) {
	query := config.DB.Where("delete_at IS NULL")
	if caseType := c.Query("case_type_id"); caseType != "" {
		query = query.Where("case_type_id = ? OR case_type_id IS NULL", caseType)
	}

	var stages []models.WorkflowStage
	if err := query.Order("sort_order ASC").Find(&stages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workflow stages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stages": stages})
}

type WorkflowStageBody struct {
	StageKey           string   `json:"stage_key" binding:"required"`
	StageName          string   `json:"stage_name" binding:"required"`
	SortOrder          int      `json:"sort_order" binding:"required"`
	CaseTypeID         *int     `json:"case_type_id"`
	NextStageID        *int     `json:"next_stage_id"`
	AssociatedStatuses []string `json:"associated_statuses"`
	IsActive           *bool    `json:"is_active"`
}

func CreateWorkflowStage(c *gin.Context) {
	var body WorkflowStageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	stage := models.WorkflowStage{
		StageKey:           body.StageKey,
		StageName:          body.StageName,
		SortOrder:          body.SortOrder,
		CaseTypeID:         body.CaseTypeID,
		NextStageID:        body.NextStageID,
		AssociatedStatuses: body.AssociatedStatuses,
		IsActive:           true,
		CreateAt:           &now,
		UpdateAt:           &now,
	}
	if body.IsActive != nil {
		stage.IsActive = *body.IsActive
	}

	if err := config.DB.Create(&stage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create workflow stage"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Workflow stage created", "stage": stage})
}

func UpdateWorkflowStage(c *gin.Context) {
	stageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body WorkflowStageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var stage models.WorkflowStage
	if err := config.DB.Where("stage_id = ? AND delete_at IS NULL", stageID).First(&stage).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow stage not found"})
		return
	}

	updates := map[string]interface{}{
		"stage_key":           body.StageKey,
		"stage_name":          body.StageName,
		"sort_order":          body.SortOrder,
		"case_type_id":        body.CaseTypeID,
		"next_stage_id":       body.NextStageID,
		"associated_statuses": models.StringList(body.AssociatedStatuses),
		"update_at":           time.Now(),
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}

	if err := config.DB.Model(&stage).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update workflow stage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workflow stage updated"})
}

func DeleteWorkflowStage(c *gin.Context) {
	stageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var inUse int64
	if err := config.DB.Model(&models.Case{}).
		Where("current_workflow_stage_id = ? AND delete_at IS NULL", stageID).
		Count(&inUse).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check stage usage"})
		return
	}
	if inUse > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Stage is in use by open cases"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&models.WorkflowStage{}).
		Where("stage_id = ?", stageID).
		Updates(map[string]interface{}{"delete_at": now, "is_active": false}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete workflow stage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Workflow stage deleted"})
}

type StageGrantBody struct {
	UserID     *int `json:"user_id"`
	RoleID     *int `json:"role_id"`
	CanView    bool `json:"can_view"`
	CanApprove bool `json:"can_approve"`
}

// SetStageGrant attaches a per-user or per-role grant to a stage. Exactly one
// of user_id and role_id is required.
func SetStageGrant(c *gin.Context) {
	stageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body StageGrantBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (body.UserID == nil) == (body.RoleID == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of user_id or role_id is required"})
		return
	}

	var stage models.WorkflowStage
	if err := config.DB.Where("stage_id = ? AND delete_at IS NULL", stageID).First(&stage).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Workflow stage not found"})
		return
	}

	if body.UserID != nil {
		grant := models.StageUserPermission{
			StageID:    stageID,
			UserID:     *body.UserID,
			CanView:    body.CanView,
			CanApprove: body.CanApprove,
		}
		var existing models.StageUserPermission
		err := config.DB.Where("stage_id = ? AND user_id = ?", stageID, *body.UserID).First(&existing).Error
		if err == nil {
			config.DB.Model(&existing).Updates(map[string]interface{}{
				"can_view":    body.CanView,
				"can_approve": body.CanApprove,
			})
		} else if err := config.DB.Create(&grant).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save stage grant"})
			return
		}
	} else {
		grant := models.StageRolePermission{
			StageID:    stageID,
			RoleID:     *body.RoleID,
			CanView:    body.CanView,
			CanApprove: body.CanApprove,
		}
		var existing models.StageRolePermission
		err := config.DB.Where("stage_id = ? AND role_id = ?", stageID, *body.RoleID).First(&existing).Error
		if err == nil {
			config.DB.Model(&existing).Updates(map[string]interface{}{
				"can_view":    body.CanView,
				"can_approve": body.CanApprove,
			})
		} else if err := config.DB.Create(&grant).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save stage grant"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stage grant saved"})
}

// GetStageGrants lists both grant kinds for a stage.
func GetStageGrants(c *gin.Context) {
	stageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var userGrants []models.StageUserPermission
	if err := config.DB.Where("stage_id = ?", stageID).Find(&userGrants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stage grants"})
		return
	}

	var roleGrants []models.StageRolePermission
	if err := config.DB.Where("stage_id = ?", stageID).Find(&roleGrants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stage grants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_grants": userGrants, "role_grants": roleGrants})
}
