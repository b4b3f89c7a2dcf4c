package services

import (
	"testing"

	"case-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceCaseAppendsSingleEventAndHistory(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335640", "Test Applicant")
	caseType := seedCaseType(t, db, "Welfare")
	intake := seedStage(t, db, "intake", 1, nil)
	welfare := seedStage(t, db, "welfare_review", 2, nil, models.CaseStatusSubmittedToWelfare)
	kase := seedCase(t, db, applicant.ApplicantID, caseType.CaseTypeID, models.CaseStatusDraft, &intake.StageID)

	result, err := AdvanceCase(db, AdvanceRequest{
		CaseID:    kase.CaseID,
		Action:    "welfare_submit",
		ActorID:   7,
		ActorName: "Counselor",
		Comments:  "ready for review",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdvanced, result.Outcome)
	assert.Equal(t, models.CaseStatusDraft, result.FromStatus)
	assert.Equal(t, models.CaseStatusSubmittedToWelfare, result.NewStatus)
	require.NotNil(t, result.NextStage)
	assert.Equal(t, welfare.StageID, result.NextStage.StageID)

	var reloaded models.Case
	require.NoError(t, db.First(&reloaded, "case_id = ?", kase.CaseID).Error)
	assert.Equal(t, models.CaseStatusSubmittedToWelfare, reloaded.Status)
	require.NotNil(t, reloaded.CurrentWorkflowStageID)
	assert.Equal(t, welfare.StageID, *reloaded.CurrentWorkflowStageID)

	var events []models.CaseWorkflowEvent
	require.NoError(t, db.Where("case_id = ?", kase.CaseID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "welfare_submit", events[0].Action)
	assert.Equal(t, 7, events[0].EnteredBy)
	assert.Equal(t, "Counselor", events[0].EnteredByName)
	require.NotNil(t, events[0].StageID)
	assert.Equal(t, welfare.StageID, *events[0].StageID)

	var history []models.StatusHistory
	require.NoError(t, db.Where("case_id = ?", kase.CaseID).Find(&history).Error)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].FromStatus)
	assert.Equal(t, models.CaseStatusDraft, *history[0].FromStatus)
	assert.Equal(t, models.CaseStatusSubmittedToWelfare, history[0].ToStatus)
	require.NotNil(t, history[0].Comments)
	assert.Equal(t, "ready for review", *history[0].Comments)
}

func TestAdvanceCaseDuplicateSubmissionIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335641", "Test Applicant")
	caseType := seedCaseType(t, db, "Welfare")
	intake := seedStage(t, db, "intake", 1, nil)
	welfare := seedStage(t, db, "welfare_review", 2, nil, models.CaseStatusSubmittedToWelfare)
	kase := seedCase(t, db, applicant.ApplicantID, caseType.CaseTypeID, models.CaseStatusDraft, &intake.StageID)

	req := AdvanceRequest{
		CaseID:              kase.CaseID,
		Action:              "welfare_submit",
		ActorID:             7,
		ActorName:           "Counselor",
		ExplicitNextStageID: &welfare.StageID,
	}

	first, err := AdvanceCase(db, req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdvanced, first.Outcome)

	second, err := AdvanceCase(db, req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyAtTarget, second.Outcome)
	assert.Equal(t, models.CaseStatusSubmittedToWelfare, second.NewStatus)

	var eventCount, historyCount int64
	require.NoError(t, db.Model(&models.CaseWorkflowEvent{}).Where("case_id = ?", kase.CaseID).Count(&eventCount).Error)
	require.NoError(t, db.Model(&models.StatusHistory{}).Where("case_id = ?", kase.CaseID).Count(&historyCount).Error)
	assert.Equal(t, int64(1), eventCount)
	assert.Equal(t, int64(1), historyCount)
}

func TestAdvanceCaseTypeScopedStageBeatsGlobalAtSameTier(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335642", "Test Applicant")
	caseType := seedCaseType(t, db, "Welfare")
	intake := seedStage(t, db, "intake", 1, nil)
	seedStage(t, db, "global_review", 2, nil)
	scoped := seedStage(t, db, "welfare_scoped_review", 2, &caseType.CaseTypeID)
	kase := seedCase(t, db, applicant.ApplicantID, caseType.CaseTypeID, models.CaseStatusDraft, &intake.StageID)

	result, err := AdvanceCase(db, AdvanceRequest{CaseID: kase.CaseID, Action: "submit", ActorID: 1, ActorName: "x"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdvanced, result.Outcome)
	require.NotNil(t, result.NextStage)
	assert.Equal(t, scoped.StageID, result.NextStage.StageID)
	assert.Equal(t, "submitted_to_welfare_scoped_review", result.NewStatus)
}

func TestAdvanceCaseOtherTypeStageIsIgnored(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335643", "Test Applicant")
	welfareType := seedCaseType(t, db, "Welfare")
	educationType := seedCaseType(t, db, "Education")
	intake := seedStage(t, db, "intake", 1, nil)
	seedStage(t, db, "education_review", 2, &educationType.CaseTypeID)
	global := seedStage(t, db, "global_review", 3, nil)
	kase := seedCase(t, db, applicant.ApplicantID, welfareType.CaseTypeID, models.CaseStatusDraft, &intake.StageID)

	result, err := AdvanceCase(db, AdvanceRequest{CaseID: kase.CaseID, Action: "submit", ActorID: 1, ActorName: "x"})
	require.NoError(t, err)
	require.NotNil(t, result.NextStage)
	assert.Equal(t, global.StageID, result.NextStage.StageID)
}

func TestAdvanceCaseFollowsNextStageLinkOverSortOrder(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335644", "Test Applicant")
	caseType := seedCaseType(t, db, "Welfare")
	skipped := seedStage(t, db, "skipped", 2, nil)
	target := seedStage(t, db, "linked_target", 3, nil)
	intake := seedStage(t, db, "intake", 1, nil)
	require.NoError(t, db.Model(&intake).Update("next_stage_id", target.StageID).Error)
	kase := seedCase(t, db, applicant.ApplicantID, caseType.CaseTypeID, models.CaseStatusDraft, &intake.StageID)

	result, err := AdvanceCase(db, AdvanceRequest{CaseID: kase.CaseID, Action: "submit", ActorID: 1, ActorName: "x"})
	require.NoError(t, err)
	require.NotNil(t, result.NextStage)
	assert.Equal(t, target.StageID, result.NextStage.StageID)
	assert.NotEqual(t, skipped.StageID, result.NextStage.StageID)
}

func TestAdvanceCaseNoNextStage(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335645", "Test Applicant")
	caseType := seedCaseType(t, db, "Welfare")
	last := seedStage(t, db, "closure", 9, nil, models.CaseStatusClosed)
	kase := seedCase(t, db, applicant.ApplicantID, caseType.CaseTypeID, models.CaseStatusClosed, &last.StageID)

	result, err := AdvanceCase(db, AdvanceRequest{CaseID: kase.CaseID, Action: "submit", ActorID: 1, ActorName: "x"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoNextStage, result.Outcome)
	assert.Equal(t, models.CaseStatusClosed, result.NewStatus)

	var eventCount int64
	require.NoError(t, db.Model(&models.CaseWorkflowEvent{}).Where("case_id = ?", kase.CaseID).Count(&eventCount).Error)
	assert.Equal(t, int64(0), eventCount)
}

func TestAdvanceCaseNoCurrentStage(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335646", "Test Applicant")
	caseType := seedCaseType(t, db, "Welfare")
	kase := seedCase(t, db, applicant.ApplicantID, caseType.CaseTypeID, models.CaseStatusDraft, nil)

	result, err := AdvanceCase(db, AdvanceRequest{CaseID: kase.CaseID, Action: "submit", ActorID: 1, ActorName: "x"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoCurrentStage, result.Outcome)
	assert.Equal(t, models.CaseStatusDraft, result.NewStatus)

	var reloaded models.Case
	require.NoError(t, db.First(&reloaded, "case_id = ?", kase.CaseID).Error)
	assert.Equal(t, models.CaseStatusDraft, reloaded.Status)
}

func TestAdvanceCaseRegressionRequiresAllowFlag(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335647", "Test Applicant")
	caseType := seedCaseType(t, db, "Welfare")
	intake := seedStage(t, db, "intake", 1, nil)
	review := seedStage(t, db, "review", 2, nil)
	kase := seedCase(t, db, applicant.ApplicantID, caseType.CaseTypeID, "submitted_to_review", &review.StageID)

	_, err := AdvanceCase(db, AdvanceRequest{
		CaseID:              kase.CaseID,
		Action:              "move_back",
		ActorID:             1,
		ActorName:           "x",
		ExplicitNextStageID: &intake.StageID,
	})
	assert.ErrorIs(t, err, ErrStageRegression)

	result, err := AdvanceCase(db, AdvanceRequest{
		CaseID:              kase.CaseID,
		Action:              "welfare_rework",
		ActorID:             1,
		ActorName:           "x",
		ExplicitNextStageID: &intake.StageID,
		AllowRegression:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdvanced, result.Outcome)
	assert.Equal(t, "submitted_to_intake", result.NewStatus)
}

func TestAdvanceCaseUnknownCaseAndStage(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335648", "Test Applicant")
	caseType := seedCaseType(t, db, "Welfare")
	intake := seedStage(t, db, "intake", 1, nil)
	kase := seedCase(t, db, applicant.ApplicantID, caseType.CaseTypeID, models.CaseStatusDraft, &intake.StageID)

	_, err := AdvanceCase(db, AdvanceRequest{CaseID: 9999, Action: "submit", ActorID: 1, ActorName: "x"})
	assert.ErrorIs(t, err, ErrCaseNotFound)

	missing := 9999
	_, err = AdvanceCase(db, AdvanceRequest{
		CaseID:              kase.CaseID,
		Action:              "submit",
		ActorID:             1,
		ActorName:           "x",
		ExplicitNextStageID: &missing,
	})
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestDeriveStatusFallsBackToStageKey(t *testing.T) {
	withStatuses := &models.WorkflowStage{StageKey: "welfare_review", AssociatedStatuses: models.StringList{models.CaseStatusSubmittedToWelfare, "other"}}
	assert.Equal(t, models.CaseStatusSubmittedToWelfare, deriveStatus(withStatuses))

	bare := &models.WorkflowStage{StageKey: "finance"}
	assert.Equal(t, "submitted_to_finance", deriveStatus(bare))
}
