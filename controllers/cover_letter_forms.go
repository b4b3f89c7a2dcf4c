package controllers

import (
	"net/http"
	"time"

	"case-management-api/config"
	"case-management-api/models"
	"case-management-api/services"

	"github.com/gin-gonic/gin"
)

type CoverLetterBody struct {
	Subject       string  `json:"subject" binding:"required"`
	Body          string  `json:"body" binding:"required"`
	RequestedHelp *string `json:"requested_help"`
}

func GetCoverLetterForm(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var form models.CoverLetterForm
	if err := config.DB.Where("case_id = ?", caseID).First(&form).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cover letter form not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"form": form})
}

// SaveCoverLetterForm creates or updates the case's draft form. A submitted
// form is frozen.
func SaveCoverLetterForm(c *gin.Context) {
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var body CoverLetterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var kase models.Case
	if err := config.DB.Where("case_id = ? AND delete_at IS NULL", caseID).First(&kase).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		return
	}

	now := time.Now()
	var form models.CoverLetterForm
	err := config.DB.Where("case_id = ?", caseID).First(&form).Error
	if err == nil {
		if form.Status == models.CoverLetterSubmitted {
			c.JSON(http.StatusConflict, gin.H{"error": "Cover letter form has already been submitted"})
			return
		}
		if err := config.DB.Model(&form).Updates(map[string]interface{}{
			"subject":        body.Subject,
			"body":           body.Body,
			"requested_help": body.RequestedHelp,
			"update_at":      now,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save form"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cover letter form saved", "form": form})
		return
	}

	form = models.CoverLetterForm{
		CaseID:        caseID,
		Subject:       body.Subject,
		Body:          body.Body,
		RequestedHelp: body.RequestedHelp,
		Status:        models.CoverLetterDraft,
		CreateAt:      &now,
		UpdateAt:      &now,
	}
	if err := config.DB.Create(&form).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save form"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Cover letter form saved", "form": form})
}

// SubmitCoverLetterForm freezes the form and advances the case workflow.
func SubmitCoverLetterForm(c *gin.Context) {
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

	var form models.CoverLetterForm
	if err := config.DB.Where("case_id = ?", caseID).First(&form).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cover letter form not found"})
		return
	}
	if form.Status == models.CoverLetterSubmitted {
		c.JSON(http.StatusConflict, gin.H{"error": "Cover letter form has already been submitted"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&form).Updates(map[string]interface{}{
		"status":       models.CoverLetterSubmitted,
		"submitted_by": userID,
		"submitted_at": now,
		"update_at":    now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit form"})
		return
	}

	result, err := services.AdvanceCase(config.DB, services.AdvanceRequest{
		CaseID:              caseID,
		Action:              "cover_letter_submitted",
		ActorID:             userID,
		ActorName:           userName,
		Comments:            body.Comments,
		ExplicitNextStageID: body.NextStageID,
	})
	respondAdvance(c, result, err)
}
