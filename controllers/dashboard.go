package controllers

import (
	"net/http"

	"case-management-api/config"
	"case-management-api/models"

	"github.com/gin-gonic/gin"
)

type statusCount struct {
	Status string `gorm:"column:status" json:"status"`
	Count  int64  `gorm:"column:count" json:"count"`
}

type stageCount struct {
	StageID   *int   `gorm:"column:current_workflow_stage_id" json:"stage_id"`
	StageName string `gorm:"column:stage_name" json:"stage_name"`
	Count     int64  `gorm:"column:count" json:"count"`
}

// GetDashboardStats reports case volumes by status and by stage.
func GetDashboardStats(c *gin.Context) {
	var totalCases int64
	if err := config.DB.Model(&models.Case{}).Where("delete_at IS NULL").Count(&totalCases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	var byStatus []statusCount
	if err := config.DB.Model(&models.Case{}).
		Select("status, COUNT(*) AS count").
		Where("delete_at IS NULL").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	var byStage []stageCount
	if err := config.DB.Table("cases").
		Select("cases.current_workflow_stage_id, COALESCE(workflow_stages.stage_name, '') AS stage_name, COUNT(*) AS count").
		Joins("LEFT JOIN workflow_stages ON workflow_stages.stage_id = cases.current_workflow_stage_id").
		Where("cases.delete_at IS NULL").
		Group("cases.current_workflow_stage_id, workflow_stages.stage_name").
		Scan(&byStage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	var openNotifications int64
	if err := config.DB.Model(&models.Notification{}).
		Where("is_read = ?", false).
		Count(&openNotifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_cases":          totalCases,
		"cases_by_status":      byStatus,
		"cases_by_stage":       byStage,
		"unread_notifications": openNotifications,
	})
}
