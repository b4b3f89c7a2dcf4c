package controllers

import (
	"errors"
	"net/http"
	"time"

	"case-management-api/config"
	"case-management-api/models"
	"case-management-api/services"

	"github.com/gin-gonic/gin"
)

type CreateCaseBody struct {
	ApplicantID   *int   `json:"applicant_id"`
	ITSNumber     string `json:"its_number"`
	ApplicantName string `json:"applicant_name"`
	CaseTypeID    int    `json:"case_type_id" binding:"required"`
	JamiatID      *int   `json:"jamiat_id"`
	JamaatID      *int   `json:"jamaat_id"`
	CounselorID   *int   `json:"assigned_counselor_id"`
}

// CreateCase opens a draft case, auto-creating the applicant from the ITS
// number when no applicant id is given.
func CreateCase(c *gin.Context) {
	userID, userName, ok := requireUser(c)
	if !ok {
		return
	}

	var body CreateCaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.ApplicantID == nil && body.ITSNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "applicant_id or its_number is required"})
		return
	}

	kase, err := services.CreateCase(config.DB, services.CreateCaseRequest{
		ApplicantID:         body.ApplicantID,
		ITSNumber:           body.ITSNumber,
		ApplicantName:       body.ApplicantName,
		CaseTypeID:          body.CaseTypeID,
		JamiatID:            body.JamiatID,
		JamaatID:            body.JamaatID,
		AssignedCounselorID: body.CounselorID,
		CreatedBy:           userID,
		CreatorName:         userName,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicantNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create case"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Case created successfully",
		"case":        kase,
		"case_number": kase.CaseNumber,
	})
}

// GetCases lists cases with optional status/type/stage filters.
func GetCases(c *gin.Context) {
	page, limit := parsePage(c)

	query := config.DB.Model(&models.Case{}).Where("delete_at IS NULL")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if caseType := c.Query("case_type_id"); caseType != "" {
		query = query.Where("case_type_id = ?", caseType)
	}
	if stage := c.Query("stage_id"); stage != "" {
		query = query.Where("current_workflow_stage_id = ?", stage)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count cases"})
		return
	}

	var cases []models.Case
	if err := query.Preload("Applicant").Preload("CaseType").Preload("CurrentStage").
		Order("case_id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&cases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cases": cases,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetCase returns one case with its workflow history and status history.
func GetCase(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var kase models.Case
	if err := config.DB.Preload("Applicant").Preload("CaseType").Preload("CurrentStage").
		Where("case_id = ? AND delete_at IS NULL", caseID).
		First(&kase).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	history, err := services.CaseWorkflowHistory(config.DB, caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load workflow history"})
		return
	}

	var statusHistory []models.StatusHistory
	if err := config.DB.Where("case_id = ?", caseID).
		Order("created_at ASC, history_id ASC").
		Find(&statusHistory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load status history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"case":             kase,
		"workflow_history": history,
		"status_history":   statusHistory,
	})
}

type UpdateCaseBody struct {
	JamiatID    *int `json:"jamiat_id"`
	JamaatID    *int `json:"jamaat_id"`
	CounselorID *int `json:"assigned_counselor_id"`
}

func UpdateCase(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body UpdateCaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var kase models.Case
	if err := config.DB.Where("case_id = ? AND delete_at IS NULL", caseID).First(&kase).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	updates := map[string]interface{}{"update_at": time.Now()}
	if body.JamiatID != nil {
		updates["jamiat_id"] = *body.JamiatID
	}
	if body.JamaatID != nil {
		updates["jamaat_id"] = *body.JamaatID
	}
	if body.CounselorID != nil {
		updates["assigned_counselor_id"] = *body.CounselorID
	}

	if err := config.DB.Model(&kase).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update case"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Case updated successfully"})
}

// DeleteCase soft-deletes a case. Cases with attachments are never deleted.
func DeleteCase(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var kase models.Case
	if err := config.DB.Where("case_id = ? AND delete_at IS NULL", caseID).First(&kase).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	var attachmentCount int64
	if err := config.DB.Model(&models.CaseAttachment{}).
		Where("case_id = ? AND delete_at IS NULL", caseID).
		Count(&attachmentCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check attachments"})
		return
	}
	if attachmentCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Case has attachments and cannot be deleted"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&kase).Update("delete_at", now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete case"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Case deleted successfully"})
}

type WorkflowActionBody struct {
	Action      string `json:"action" binding:"required"` // approve|reject
	Comments    string `json:"comments"`
	NextStageID *int   `json:"next_stage_id"`
}

// WorkflowAction is the generic permission-gated approve/reject entry point
// used when no stage-specific business rule applies.
func WorkflowAction(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, userName, ok := requireUser(c)
	if !ok {
		return
	}

	var body WorkflowActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Action != "approve" && body.Action != "reject" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be approve or reject"})
		return
	}

	result, err := services.AdvanceCase(config.DB, services.AdvanceRequest{
		CaseID:              caseID,
		Action:              "workflow_" + body.Action,
		ActorID:             userID,
		ActorName:           userName,
		Comments:            body.Comments,
		ExplicitNextStageID: body.NextStageID,
		AllowRegression:     body.Action == "reject",
	})
	respondAdvance(c, result, err)
}

// respondAdvance maps an engine result onto the HTTP taxonomy. The no-next-
// stage and no-current-stage outcomes are deliberately visible as conflicts
// rather than silent successes.
func respondAdvance(c *gin.Context, result *services.AdvanceResult, err error) {
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		case errors.Is(err, services.ErrStageNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Target workflow stage not found"})
		case errors.Is(err, services.ErrStageRegression):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Workflow transition failed"})
		}
		return
	}

	switch result.Outcome {
	case services.OutcomeAdvanced:
		c.JSON(http.StatusOK, gin.H{
			"message":   "Case advanced successfully",
			"caseId":    result.CaseID,
			"newStatus": result.NewStatus,
			"nextStage": result.NextStage,
		})
	case services.OutcomeAlreadyAtTarget:
		c.JSON(http.StatusOK, gin.H{
			"message":   "Case is already at the target stage",
			"caseId":    result.CaseID,
			"newStatus": result.NewStatus,
			"nextStage": result.NextStage,
		})
	case services.OutcomeNoNextStage:
		c.JSON(http.StatusConflict, gin.H{
			"error":  "No further workflow stage is configured for this case",
			"caseId": result.CaseID,
			"status": result.NewStatus,
		})
	case services.OutcomeNoCurrentStage:
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Case has no resolvable workflow stage",
			"caseId": result.CaseID,
			"status": result.NewStatus,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unknown workflow outcome"})
	}
}
