package services

import (
	"fmt"
	"testing"
	"time"

	"case-management-api/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.UserRole{},
		&models.Applicant{},
		&models.Jamiat{},
		&models.Jamaat{},
		&models.CaseType{},
		&models.Case{},
		&models.CaseWorkflowEvent{},
		&models.StatusHistory{},
		&models.WorkflowStage{},
		&models.StageUserPermission{},
		&models.StageRolePermission{},
		&models.WelfareChecklistItem{},
		&models.WelfareChecklistResponse{},
		&models.CoverLetterForm{},
		&models.CaseAttachment{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	now := time.Now()
	user := models.User{
		FullName: name,
		Email:    email,
		Password: "x",
		IsActive: true,
		CreateAt: &now,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedRole(t *testing.T, db *gorm.DB, name string, grants ...models.Permission) models.Role {
	t.Helper()
	role := models.Role{RoleName: name}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("failed to seed role: %v", err)
	}
	for _, grant := range grants {
		grant.RoleID = role.RoleID
		if err := db.Create(&grant).Error; err != nil {
			t.Fatalf("failed to seed permission: %v", err)
		}
	}
	return role
}

func assignRole(t *testing.T, db *gorm.DB, userID, roleID int, active bool, expiresAt *time.Time) models.UserRole {
	t.Helper()
	assignment := models.UserRole{
		UserID:    userID,
		RoleID:    roleID,
		IsActive:  active,
		ExpiresAt: expiresAt,
	}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("failed to seed role assignment: %v", err)
	}
	return assignment
}

func seedCaseType(t *testing.T, db *gorm.DB, name string) models.CaseType {
	t.Helper()
	caseType := models.CaseType{TypeName: name, IsActive: true}
	if err := db.Create(&caseType).Error; err != nil {
		t.Fatalf("failed to seed case type: %v", err)
	}
	return caseType
}

func seedStage(t *testing.T, db *gorm.DB, key string, sortOrder int, caseTypeID *int, statuses ...string) models.WorkflowStage {
	t.Helper()
	stage := models.WorkflowStage{
		StageKey:           key,
		StageName:          key,
		SortOrder:          sortOrder,
		CaseTypeID:         caseTypeID,
		AssociatedStatuses: statuses,
		IsActive:           true,
	}
	if err := db.Create(&stage).Error; err != nil {
		t.Fatalf("failed to seed stage: %v", err)
	}
	return stage
}

func seedApplicant(t *testing.T, db *gorm.DB, its, name string) models.Applicant {
	t.Helper()
	applicant := models.Applicant{
		ITSNumber:      its,
		FullName:       name,
		APIFetchStatus: models.ApplicantFetchPending,
	}
	if err := db.Create(&applicant).Error; err != nil {
		t.Fatalf("failed to seed applicant: %v", err)
	}
	return applicant
}

func seedCase(t *testing.T, db *gorm.DB, applicantID, caseTypeID int, status string, stageID *int) models.Case {
	t.Helper()
	kase := models.Case{
		ApplicantID:            applicantID,
		CaseTypeID:             caseTypeID,
		Status:                 status,
		CurrentWorkflowStageID: stageID,
		CreatedBy:              1,
	}
	if err := db.Create(&kase).Error; err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}
	if err := db.Model(&kase).Update("case_number", fmt.Sprintf("BS-%04d", kase.CaseID)).Error; err != nil {
		t.Fatalf("failed to set case number: %v", err)
	}
	return kase
}
