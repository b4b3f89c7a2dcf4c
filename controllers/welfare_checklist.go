package controllers

import (
	"fmt"
	"net/http"
	"time"

	"case-management-api/config"
	"case-management-api/models"
	"case-management-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetCaseChecklist returns the active checklist items alongside the case's
// responses so far.
func GetCaseChecklist(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var items []models.WelfareChecklistItem
	if err := config.DB.Where("is_active = ? AND delete_at IS NULL", true).
		Order("sort_order ASC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load checklist items"})
		return
	}

	var responses []models.WelfareChecklistResponse
	if err := config.DB.Where("case_id = ?", caseID).Find(&responses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load responses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "responses": responses})
}

type ChecklistAnswer struct {
	ItemID  int     `json:"item_id" binding:"required"`
	Answer  string  `json:"answer" binding:"required"`
	Comment *string `json:"comment"`
}

type AnswerChecklistBody struct {
	Answers []ChecklistAnswer `json:"answers" binding:"required,min=1"`
}

// AnswerChecklist upserts checklist answers for a case. Answers are Y or N;
// items flagged requires_comment reject an empty comment.
func AnswerChecklist(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _, ok := requireUser(c)
	if !ok {
		return
	}

	var body AnswerChecklistBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var kase models.Case
	if err := config.DB.Where("case_id = ? AND delete_at IS NULL", caseID).First(&kase).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	for _, answer := range body.Answers {
		if answer.Answer != "Y" && answer.Answer != "N" {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("item %d: answer must be Y or N", answer.ItemID)})
			return
		}
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		for _, answer := range body.Answers {
			var item models.WelfareChecklistItem
			if err := tx.Where("item_id = ? AND is_active = ? AND delete_at IS NULL", answer.ItemID, true).First(&item).Error; err != nil {
				return fmt.Errorf("item %d not found", answer.ItemID)
			}
			if item.RequiresComment && (answer.Comment == nil || *answer.Comment == "") {
				return fmt.Errorf("item %d requires a comment", answer.ItemID)
			}

			var existing models.WelfareChecklistResponse
			err := tx.Where("case_id = ? AND item_id = ?", caseID, answer.ItemID).First(&existing).Error
			if err == nil {
				if err := tx.Model(&existing).Updates(map[string]interface{}{
					"answer":      answer.Answer,
					"comment":     answer.Comment,
					"answered_by": userID,
					"update_at":   now,
				}).Error; err != nil {
					return err
				}
				continue
			}

			response := models.WelfareChecklistResponse{
				CaseID:     caseID,
				ItemID:     answer.ItemID,
				Answer:     answer.Answer,
				Comment:    answer.Comment,
				AnsweredBy: userID,
				CreateAt:   &now,
				UpdateAt:   &now,
			}
			if err := tx.Create(&response).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Checklist answers saved"})
}

// checklistComplete verifies every active item has a Y/N answer with the
// required comments. Returns the ids of incomplete items.
func checklistComplete(caseID int) (bool, []int, error) {
	var items []models.WelfareChecklistItem
	if err := config.DB.Where("is_active = ? AND delete_at IS NULL", true).Find(&items).Error; err != nil {
		return false, nil, err
	}

	var responses []models.WelfareChecklistResponse
	if err := config.DB.Where("case_id = ?", caseID).Find(&responses).Error; err != nil {
		return false, nil, err
	}
	byItem := make(map[int]models.WelfareChecklistResponse, len(responses))
	for _, response := range responses {
		byItem[response.ItemID] = response
	}

	var incomplete []int
	for _, item := range items {
		response, answered := byItem[item.ItemID]
		if !answered || (response.Answer != "Y" && response.Answer != "N") {
			incomplete = append(incomplete, item.ItemID)
			continue
		}
		if item.RequiresComment && (response.Comment == nil || *response.Comment == "") {
			incomplete = append(incomplete, item.ItemID)
		}
	}
	return len(incomplete) == 0, incomplete, nil
}

type StageActionBody struct {
	Comments    string `json:"comments"`
	NextStageID *int   `json:"next_stage_id"`
}

// ApproveWelfare advances a welfare-review case once its checklist is fully
// answered. A partial checklist is rejected without touching case state.
func ApproveWelfare(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, userName, ok := requireUser(c)
	if !ok {
		return
	}

	var body StageActionBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complete, incomplete, err := checklistComplete(caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify checklist"})
		return
	}
	if !complete {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "Welfare checklist is incomplete",
			"incomplete_items": incomplete,
		})
		return
	}

	result, err := services.AdvanceCase(config.DB, services.AdvanceRequest{
		CaseID:              caseID,
		Action:              "welfare_approved",
		ActorID:             userID,
		ActorName:           userName,
		Comments:            body.Comments,
		ExplicitNextStageID: body.NextStageID,
	})
	respondAdvance(c, result, err)
}

// ReworkWelfare sends the case back to an earlier stage for correction. This
// is the one sanctioned regression path.
func ReworkWelfare(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, userName, ok := requireUser(c)
	if !ok {
		return
	}

	var body StageActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.NextStageID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "next_stage_id is required for rework"})
		return
	}

	result, err := services.AdvanceCase(config.DB, services.AdvanceRequest{
		CaseID:              caseID,
		Action:              "welfare_rework",
		ActorID:             userID,
		ActorName:           userName,
		Comments:            body.Comments,
		ExplicitNextStageID: body.NextStageID,
		AllowRegression:     true,
	})
	respondAdvance(c, result, err)
}

// RejectWelfare records a welfare rejection.
func RejectWelfare(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, userName, ok := requireUser(c)
	if !ok {
		return
	}

	var body StageActionBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := services.AdvanceCase(config.DB, services.AdvanceRequest{
		CaseID:              caseID,
		Action:              "welfare_rejected",
		ActorID:             userID,
		ActorName:           userName,
		Comments:            body.Comments,
		ExplicitNextStageID: body.NextStageID,
		AllowRegression:     true,
	})
	respondAdvance(c, result, err)
}

// ForwardToDCM routes the case to the district case manager's stage.
func ForwardToDCM(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, userName, ok := requireUser(c)
	if !ok {
		return
	}

	var body StageActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.NextStageID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "next_stage_id is required"})
		return
	}

	result, err := services.AdvanceCase(config.DB, services.AdvanceRequest{
		CaseID:              caseID,
		Action:              "welfare_forward_to_dcm",
		ActorID:             userID,
		ActorName:           userName,
		Comments:            body.Comments,
		ExplicitNextStageID: body.NextStageID,
	})
	respondAdvance(c, result, err)
}

// ResubmitToWelfare returns a reworked case to the welfare review stage.
func ResubmitToWelfare(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, userName, ok := requireUser(c)
	if !ok {
		return
	}

	var body StageActionBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := services.AdvanceCase(config.DB, services.AdvanceRequest{
		CaseID:              caseID,
		Action:              "resubmit_to_welfare",
		ActorID:             userID,
		ActorName:           userName,
		Comments:            body.Comments,
		ExplicitNextStageID: body.NextStageID,
		AllowRegression:     true,
	})
	respondAdvance(c, result, err)
}
