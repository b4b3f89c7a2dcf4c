package services

import (
	"testing"
	"time"

	"case-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageRecipientsDeduplicatesAcrossGrantPaths(t *testing.T) {
	db := setupTestDB(t)
	stage := seedStage(t, db, "welfare_review", 2, nil)
	role := seedRole(t, db, "welfare_officer")

	// Granted both directly and through the role: must appear once.
	both := seedUser(t, db, "Both Paths", "both@example.org")
	assignRole(t, db, both.UserID, role.RoleID, true, nil)
	require.NoError(t, db.Create(&models.StageUserPermission{StageID: stage.StageID, UserID: both.UserID, CanApprove: true}).Error)

	roleOnly := seedUser(t, db, "Role Only", "role@example.org")
	assignRole(t, db, roleOnly.UserID, role.RoleID, true, nil)

	directOnly := seedUser(t, db, "Direct Only", "direct@example.org")
	require.NoError(t, db.Create(&models.StageUserPermission{StageID: stage.StageID, UserID: directOnly.UserID, CanView: true}).Error)

	require.NoError(t, db.Create(&models.StageRolePermission{StageID: stage.StageID, RoleID: role.RoleID, CanApprove: true}).Error)

	recipients, err := StageRecipients(db, stage.StageID)
	require.NoError(t, err)
	assert.Equal(t, []int{both.UserID, roleOnly.UserID, directOnly.UserID}, recipients)
}

func TestStageRecipientsSkipsInactiveAndExpired(t *testing.T) {
	db := setupTestDB(t)
	stage := seedStage(t, db, "welfare_review", 2, nil)
	role := seedRole(t, db, "welfare_officer")
	require.NoError(t, db.Create(&models.StageRolePermission{StageID: stage.StageID, RoleID: role.RoleID, CanApprove: true}).Error)

	inactiveUser := seedUser(t, db, "Inactive", "inactive@example.org")
	require.NoError(t, db.Model(&inactiveUser).Update("is_active", false).Error)
	assignRole(t, db, inactiveUser.UserID, role.RoleID, true, nil)

	expired := seedUser(t, db, "Expired Assignment", "expired@example.org")
	past := time.Now().Add(-time.Hour)
	assignRole(t, db, expired.UserID, role.RoleID, true, &past)

	revoked := seedUser(t, db, "Revoked Assignment", "revoked@example.org")
	assignRole(t, db, revoked.UserID, role.RoleID, false, nil)

	active := seedUser(t, db, "Active", "active@example.org")
	future := time.Now().Add(24 * time.Hour)
	assignRole(t, db, active.UserID, role.RoleID, true, &future)

	recipients, err := StageRecipients(db, stage.StageID)
	require.NoError(t, err)
	assert.Equal(t, []int{active.UserID}, recipients)
}

func TestAdvanceCaseWritesNotificationRowsForRecipients(t *testing.T) {
	db := setupTestDB(t)
	applicant := seedApplicant(t, db, "30335650", "Test Applicant")
	caseType := seedCaseType(t, db, "Welfare")
	intake := seedStage(t, db, "intake", 1, nil)
	welfare := seedStage(t, db, "welfare_review", 2, nil, models.CaseStatusSubmittedToWelfare)
	kase := seedCase(t, db, applicant.ApplicantID, caseType.CaseTypeID, models.CaseStatusDraft, &intake.StageID)

	officer := seedUser(t, db, "Officer", "officer@example.org")
	require.NoError(t, db.Create(&models.StageUserPermission{StageID: welfare.StageID, UserID: officer.UserID, CanApprove: true}).Error)

	result, err := AdvanceCase(db, AdvanceRequest{CaseID: kase.CaseID, Action: "welfare_submit", ActorID: 1, ActorName: "x"})
	require.NoError(t, err)
	assert.Equal(t, []int{officer.UserID}, result.NotifiedUsers)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", officer.UserID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].IsRead)
	assert.Contains(t, notifications[0].Message, welfare.StageName)
	require.NotNil(t, notifications[0].RelatedCaseID)
	assert.Equal(t, uint(kase.CaseID), *notifications[0].RelatedCaseID)
}
