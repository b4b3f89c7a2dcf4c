package controllers

import (
	"net/http"

	"case-management-api/config"
	"case-management-api/services"

	"github.com/gin-gonic/gin"
)

// ApproveExecutive records an executive-tier approval and advances the case.
func ApproveExecutive(c *gin.Context) {
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
		Action:              "executive_approved",
		ActorID:             userID,
		ActorName:           userName,
		Comments:            body.Comments,
		ExplicitNextStageID: body.NextStageID,
	})
	respondAdvance(c, result, err)
}

// ReworkExecutive sends a case back from executive review for correction.
func ReworkExecutive(c *gin.Context) {
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
		Action:              "executive_rework",
		ActorID:             userID,
		ActorName:           userName,
		Comments:            body.Comments,
		ExplicitNextStageID: body.NextStageID,
		AllowRegression:     true,
	})
	respondAdvance(c, result, err)
}
