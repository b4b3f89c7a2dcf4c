package services

import (
	"testing"

	"case-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCaseAssignsNumberAndFirstEvent(t *testing.T) {
	db := setupTestDB(t)
	caseType := seedCaseType(t, db, "Welfare")
	intake := seedStage(t, db, "intake", 1, nil)
	seedStage(t, db, "welfare_review", 2, nil, models.CaseStatusSubmittedToWelfare)

	created, err := CreateCase(db, CreateCaseRequest{
		ITSNumber:     "30335640",
		ApplicantName: "New Applicant",
		CaseTypeID:    caseType.CaseTypeID,
		CreatedBy:     5,
		CreatorName:   "Intake Clerk",
	})
	require.NoError(t, err)
	assert.Equal(t, "BS-0001", created.CaseNumber)
	assert.Equal(t, models.CaseStatusDraft, created.Status)
	require.NotNil(t, created.CurrentWorkflowStageID)
	assert.Equal(t, intake.StageID, *created.CurrentWorkflowStageID)

	var applicant models.Applicant
	require.NoError(t, db.Where("its_number = ?", "30335640").First(&applicant).Error)
	assert.Equal(t, "New Applicant", applicant.FullName)
	assert.Equal(t, models.ApplicantFetchPending, applicant.APIFetchStatus)

	history, err := CaseWorkflowHistory(db, created.CaseID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "case_created", history[0].Action)
	assert.Equal(t, 5, history[0].EnteredBy)
	assert.Equal(t, "Intake Clerk", history[0].EnteredByName)
}

func TestCreateCaseReusesExistingApplicant(t *testing.T) {
	db := setupTestDB(t)
	caseType := seedCaseType(t, db, "Welfare")
	seedStage(t, db, "intake", 1, nil)
	jamiatID, jamaatID := 11, 22
	existing := seedApplicant(t, db, "30335641", "Existing Applicant")
	require.NoError(t, db.Model(&existing).Updates(map[string]interface{}{
		"jamiat_id": jamiatID,
		"jamaat_id": jamaatID,
	}).Error)

	created, err := CreateCase(db, CreateCaseRequest{
		ITSNumber:   "30335641",
		CaseTypeID:  caseType.CaseTypeID,
		CreatedBy:   5,
		CreatorName: "Intake Clerk",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ApplicantID, created.ApplicantID)

	// Jamiat/jamaat are denormalized from the applicant when not supplied.
	require.NotNil(t, created.JamiatID)
	assert.Equal(t, jamiatID, *created.JamiatID)
	require.NotNil(t, created.JamaatID)
	assert.Equal(t, jamaatID, *created.JamaatID)

	var applicantCount int64
	require.NoError(t, db.Model(&models.Applicant{}).Count(&applicantCount).Error)
	assert.Equal(t, int64(1), applicantCount)
}

func TestCreateCaseNumbersAreSequential(t *testing.T) {
	db := setupTestDB(t)
	caseType := seedCaseType(t, db, "Welfare")
	seedStage(t, db, "intake", 1, nil)

	first, err := CreateCase(db, CreateCaseRequest{ITSNumber: "30335642", CaseTypeID: caseType.CaseTypeID, CreatedBy: 1})
	require.NoError(t, err)
	second, err := CreateCase(db, CreateCaseRequest{ITSNumber: "30335643", CaseTypeID: caseType.CaseTypeID, CreatedBy: 1})
	require.NoError(t, err)

	assert.Equal(t, "BS-0001", first.CaseNumber)
	assert.Equal(t, "BS-0002", second.CaseNumber)
}

func TestCreateCaseRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	caseType := seedCaseType(t, db, "Welfare")
	seedStage(t, db, "intake", 1, nil)

	_, err := CreateCase(db, CreateCaseRequest{ITSNumber: "123", CaseTypeID: caseType.CaseTypeID, CreatedBy: 1})
	assert.Error(t, err)

	missing := 9999
	_, err = CreateCase(db, CreateCaseRequest{ApplicantID: &missing, CaseTypeID: caseType.CaseTypeID, CreatedBy: 1})
	assert.ErrorIs(t, err, ErrApplicantNotFound)
}

func TestCreateCaseWithEmptyStageCatalog(t *testing.T) {
	db := setupTestDB(t)
	caseType := seedCaseType(t, db, "Welfare")

	created, err := CreateCase(db, CreateCaseRequest{ITSNumber: "30335644", CaseTypeID: caseType.CaseTypeID, CreatedBy: 1})
	require.NoError(t, err)
	assert.Nil(t, created.CurrentWorkflowStageID)
	assert.Equal(t, models.CaseStatusDraft, created.Status)
}

func TestInitialStagePrefersTypeScopedTier(t *testing.T) {
	db := setupTestDB(t)
	caseType := seedCaseType(t, db, "Welfare")
	seedStage(t, db, "global_intake", 1, nil)
	scoped := seedStage(t, db, "welfare_intake", 1, &caseType.CaseTypeID)

	created, err := CreateCase(db, CreateCaseRequest{ITSNumber: "30335645", CaseTypeID: caseType.CaseTypeID, CreatedBy: 1})
	require.NoError(t, err)
	require.NotNil(t, created.CurrentWorkflowStageID)
	assert.Equal(t, scoped.StageID, *created.CurrentWorkflowStageID)
}
