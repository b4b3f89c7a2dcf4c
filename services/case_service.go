package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"case-management-api/models"

	"gorm.io/gorm"
)

var (
	ErrApplicantNotFound = errors.New("applicant not found")
	ErrDuplicateITS      = errors.New("an applicant with this ITS number already exists")
)

type CreateCaseRequest struct {
	// Either an existing applicant id or an ITS number to find-or-create by.
	ApplicantID   *int
	ITSNumber     string
	ApplicantName string

	CaseTypeID          int
	JamiatID            *int
	JamaatID            *int
	AssignedCounselorID *int
	CreatedBy           int
	CreatorName         string
}

// CreateCase opens a case in draft status. The case number embeds the row id
// and is assigned inside the same transaction, after the insert. The first
// workflow event (action case_created) is appended so history starts at
// length one.
func CreateCase(db *gorm.DB, req CreateCaseRequest) (*models.Case, error) {
	var created models.Case

	err := db.Transaction(func(tx *gorm.DB) error {
		applicant, err := resolveApplicant(tx, req)
		if err != nil {
			return err
		}

		now := time.Now()
		kase := models.Case{
			ApplicantID: applicant.ApplicantID,
			CaseTypeID:  req.CaseTypeID,
			Status:      models.CaseStatusDraft,
			JamiatID:    req.JamiatID,
			JamaatID:    req.JamaatID,
			CreatedBy:   req.CreatedBy,
			CreateAt:    &now,
			UpdateAt:    &now,
		}
		if kase.JamiatID == nil {
			kase.JamiatID = applicant.JamiatID
		}
		if kase.JamaatID == nil {
			kase.JamaatID = applicant.JamaatID
		}
		kase.AssignedCounselorID = req.AssignedCounselorID

		first, err := initialStage(tx, req.CaseTypeID)
		if err != nil {
			return err
		}
		if first != nil {
			stageID := first.StageID
			kase.CurrentWorkflowStageID = &stageID
		}

		if err := tx.Create(&kase).Error; err != nil {
			return err
		}

		// The number embeds the id, so it can only be set once the row exists.
		caseNumber := fmt.Sprintf("BS-%04d", kase.CaseID)
		if err := tx.Model(&models.Case{}).
			Where("case_id = ?", kase.CaseID).
			Update("case_number", caseNumber).Error; err != nil {
			return err
		}
		kase.CaseNumber = caseNumber

		event := models.CaseWorkflowEvent{
			CaseID:        kase.CaseID,
			StageID:       kase.CurrentWorkflowStageID,
			Action:        "case_created",
			EnteredBy:     req.CreatedBy,
			EnteredByName: req.CreatorName,
			EnteredAt:     now,
		}
		if first != nil {
			event.StageName = first.StageName
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		created = kase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func resolveApplicant(tx *gorm.DB, req CreateCaseRequest) (*models.Applicant, error) {
	if req.ApplicantID != nil {
		var applicant models.Applicant
		err := tx.Where("applicant_id = ? AND delete_at IS NULL", *req.ApplicantID).First(&applicant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrApplicantNotFound
			}
			return nil, err
		}
		return &applicant, nil
	}

	its := strings.TrimSpace(req.ITSNumber)
	if !ValidateITSNumber(its) {
		return nil, fmt.Errorf("invalid ITS number %q: must be 8 digits", its)
	}

	var applicant models.Applicant
	err := tx.Where("its_number = ? AND delete_at IS NULL", its).First(&applicant).Error
	if err == nil {
		return &applicant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	applicant = models.Applicant{
		ITSNumber:      its,
		FullName:       req.ApplicantName,
		APIFetchStatus: models.ApplicantFetchPending,
		CreateAt:       &now,
		UpdateAt:       &now,
	}
	if err := tx.Create(&applicant).Error; err != nil {
		return nil, err
	}
	return &applicant, nil
}

// initialStage picks the first stage for a case type: the smallest
// sort_order among active stages, with a type-scoped stage beating a global
// one at the same tier. A nil stage means the catalog is empty for the type.
func initialStage(tx *gorm.DB, caseTypeID int) (*models.WorkflowStage, error) {
	var candidates []models.WorkflowStage
	err := tx.Where("is_active = ? AND delete_at IS NULL", true).
		Where("case_type_id = ? OR case_type_id IS NULL", caseTypeID).
		Order("sort_order ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	tier := candidates[0].SortOrder
	var global *models.WorkflowStage
	for i := range candidates {
		if candidates[i].SortOrder != tier {
			break
		}
		if candidates[i].CaseTypeID != nil {
			return &candidates[i], nil
		}
		if global == nil {
			global = &candidates[i]
		}
	}
	return global, nil
}

// CaseWorkflowHistory returns a case's audit trail, oldest first.
func CaseWorkflowHistory(db *gorm.DB, caseID int) ([]models.CaseWorkflowEvent, error) {
	var events []models.CaseWorkflowEvent
	err := db.Where("case_id = ?", caseID).
		Order("entered_at ASC, event_id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
