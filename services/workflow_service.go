package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"case-management-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors mapped to HTTP statuses by the controllers.
var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrStageNotFound   = errors.New("workflow stage not found")
	ErrStageRegression = errors.New("cannot move case to an earlier stage without a rework action")
)

// AdvanceOutcome distinguishes the possible results of a transition attempt.
// The engine never mutates anything unless the outcome is OutcomeAdvanced.
type AdvanceOutcome string

const (
	OutcomeAdvanced        AdvanceOutcome = "advanced"
	OutcomeAlreadyAtTarget AdvanceOutcome = "already_at_target"
	OutcomeNoNextStage     AdvanceOutcome = "no_next_stage"
	OutcomeNoCurrentStage  AdvanceOutcome = "no_current_stage"
)

type AdvanceRequest struct {
	CaseID              int
	Action              string
	ActorID             int
	ActorName           string
	Comments            string
	ExplicitNextStageID *int
	// AllowRegression permits moving to an earlier sort_order. Only the
	// rework/resubmit endpoints set it.
	AllowRegression bool
}

type AdvanceResult struct {
	Outcome       AdvanceOutcome        `json:"outcome"`
	CaseID        int                   `json:"case_id"`
	FromStatus    string                `json:"from_status"`
	NewStatus     string                `json:"new_status"`
	NextStage     *models.WorkflowStage `json:"next_stage,omitempty"`
	NotifiedUsers []int                 `json:"notified_users,omitempty"`
}

// AdvanceCase is the single workflow transition implementation. Every
// stage-advancing endpoint goes through it with its own action label.
//
// Next-stage resolution order: the caller's explicit stage id, then the
// current stage's next_stage_id link, then the smallest sort_order strictly
// above the current stage's, preferring a stage scoped to the case's type
// over a global stage at the same tier.
//
// The case update, the workflow event, the status_history row and the
// notification rows are written in one transaction; any failure rolls back
// the whole transition.
func AdvanceCase(db *gorm.DB, req AdvanceRequest) (*AdvanceResult, error) {
	result := &AdvanceResult{CaseID: req.CaseID}

	err := db.Transaction(func(tx *gorm.DB) error {
		caseQuery := tx.Where("case_id = ? AND delete_at IS NULL", req.CaseID)
		if tx.Dialector.Name() == "mysql" {
			// Serialize concurrent transitions on the same case.
			caseQuery = caseQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var kase models.Case
		if err := caseQuery.First(&kase).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCaseNotFound
			}
			return err
		}
		result.FromStatus = kase.Status

		var currentStage *models.WorkflowStage
		if kase.CurrentWorkflowStageID != nil {
			var stage models.WorkflowStage
			err := tx.Where("stage_id = ? AND delete_at IS NULL", *kase.CurrentWorkflowStageID).First(&stage).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil {
				currentStage = &stage
			}
		}

		if currentStage == nil && req.ExplicitNextStageID == nil {
			log.Printf("Warning: case %d has no resolvable workflow stage, skipping %q", kase.CaseID, req.Action)
			result.Outcome = OutcomeNoCurrentStage
			result.NewStatus = kase.Status
			return nil
		}

		nextStage, err := resolveNextStage(tx, &kase, currentStage, req.ExplicitNextStageID)
		if err != nil {
			return err
		}
		if nextStage == nil {
			log.Printf("No next workflow stage for case %d after stage %v (action %q)", kase.CaseID, kase.CurrentWorkflowStageID, req.Action)
			result.Outcome = OutcomeNoNextStage
			result.NewStatus = kase.Status
			return nil
		}

		if currentStage != nil && nextStage.SortOrder < currentStage.SortOrder && !req.AllowRegression {
			return ErrStageRegression
		}

		newStatus := deriveStatus(nextStage)
		result.NewStatus = newStatus
		result.NextStage = nextStage

		// Idempotence guard: duplicate client submissions must not produce a
		// second history entry.
		if kase.CurrentWorkflowStageID != nil && *kase.CurrentWorkflowStageID == nextStage.StageID && kase.Status == newStatus {
			result.Outcome = OutcomeAlreadyAtTarget
			return nil
		}

		now := time.Now()
		if err := tx.Model(&models.Case{}).
			Where("case_id = ?", kase.CaseID).
			Updates(map[string]interface{}{
				"status":                    newStatus,
				"current_workflow_stage_id": nextStage.StageID,
				"update_at":                 now,
			}).Error; err != nil {
			return err
		}

		stageID := nextStage.StageID
		event := models.CaseWorkflowEvent{
			CaseID:        kase.CaseID,
			StageID:       &stageID,
			StageName:     nextStage.StageName,
			Action:        req.Action,
			EnteredBy:     req.ActorID,
			EnteredByName: req.ActorName,
			EnteredAt:     now,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		fromStatus := kase.Status
		history := models.StatusHistory{
			CaseID:     kase.CaseID,
			FromStatus: &fromStatus,
			ToStatus:   newStatus,
			ChangedBy:  req.ActorID,
			CreatedAt:  now,
		}
		if req.Comments != "" {
			comments := req.Comments
			history.Comments = &comments
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		recipients, err := StageRecipients(tx, nextStage.StageID)
		if err != nil {
			return err
		}
		for _, userID := range recipients {
			notification := models.Notification{
				UserID:        uint(userID),
				Title:         fmt.Sprintf("Case %s requires your attention", kase.CaseNumber),
				Message:       fmt.Sprintf("Case %s entered stage %q (%s).", kase.CaseNumber, nextStage.StageName, newStatus),
				Type:          "info",
				RelatedCaseID: uintPtr(uint(kase.CaseID)),
				CreateAt:      now,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}
		result.NotifiedUsers = recipients
		result.Outcome = OutcomeAdvanced
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome == OutcomeAdvanced && len(result.NotifiedUsers) > 0 {
		notifyByEmail(db, result)
	}

	return result, nil
}

// resolveNextStage applies the three-step resolution order. A nil stage with
// a nil error means no eligible successor exists.
func resolveNextStage(tx *gorm.DB, kase *models.Case, currentStage *models.WorkflowStage, explicitID *int) (*models.WorkflowStage, error) {
	if explicitID != nil {
		return loadStage(tx, *explicitID)
	}

	if currentStage == nil {
		return nil, nil
	}

	if currentStage.NextStageID != nil {
		return loadStage(tx, *currentStage.NextStageID)
	}

	var candidates []models.WorkflowStage
	err := tx.Where("sort_order > ? AND is_active = ? AND delete_at IS NULL", currentStage.SortOrder, true).
		Where("case_type_id = ? OR case_type_id IS NULL", kase.CaseTypeID).
		Order("sort_order ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Within the lowest sort_order tier, a stage scoped to the case's type
	// beats a global one.
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

func loadStage(tx *gorm.DB, stageID int) (*models.WorkflowStage, error) {
	var stage models.WorkflowStage
	if err := tx.Where("stage_id = ? AND is_active = ? AND delete_at IS NULL", stageID, true).First(&stage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	return &stage, nil
}

// deriveStatus picks the stage's first associated status, falling back to the
// synthesized submitted_to_<stage_key> form.
func deriveStatus(stage *models.WorkflowStage) string {
	for _, status := range stage.AssociatedStatuses {
		if status != "" {
			return status
		}
	}
	return "submitted_to_" + stage.StageKey
}

func uintPtr(v uint) *uint { return &v }
