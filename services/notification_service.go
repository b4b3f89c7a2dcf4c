package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"case-management-api/config"
	"case-management-api/models"

	"gorm.io/gorm"
)

// StageRecipients returns the de-duplicated, sorted set of active user ids
// entitled to act on a stage: explicit per-stage user grants unioned with
// role grants joined through active, unexpired role assignments.
func StageRecipients(db *gorm.DB, stageID int) ([]int, error) {
	seen := make(map[int]struct{})

	var direct []int
	err := db.Table("stage_user_permissions AS sup").
		Select("sup.user_id").
		Joins("JOIN users u ON u.user_id = sup.user_id AND u.is_active = ? AND u.delete_at IS NULL", true).
		Where("sup.stage_id = ? AND (sup.can_view = ? OR sup.can_approve = ?)", stageID, true, true).
		Pluck("sup.user_id", &direct).Error
	if err != nil {
		return nil, err
	}
	for _, id := range direct {
		seen[id] = struct{}{}
	}

	var viaRole []int
	err = db.Table("stage_role_permissions AS srp").
		Select("ur.user_id").
		Joins("JOIN user_roles ur ON ur.role_id = srp.role_id AND ur.is_active = ? AND (ur.expires_at IS NULL OR ur.expires_at > ?)", true, time.Now()).
		Joins("JOIN users u ON u.user_id = ur.user_id AND u.is_active = ? AND u.delete_at IS NULL", true).
		Where("srp.stage_id = ? AND (srp.can_view = ? OR srp.can_approve = ?)", stageID, true, true).
		Pluck("ur.user_id", &viaRole).Error
	if err != nil {
		return nil, err
	}
	for _, id := range viaRole {
		seen[id] = struct{}{}
	}

	recipients := make([]int, 0, len(seen))
	for id := range seen {
		recipients = append(recipients, id)
	}
	sort.Ints(recipients)
	return recipients, nil
}

// notifyByEmail mirrors the in-app notifications over SMTP after the
// transition has committed. Failures are logged and swallowed.
func notifyByEmail(db *gorm.DB, result *AdvanceResult) {
	var emails []string
	err := db.Model(&models.User{}).
		Where("user_id IN ? AND email <> ''", result.NotifiedUsers).
		Pluck("email", &emails).Error
	if err != nil {
		log.Printf("Warning: failed to load notification emails for case %d: %v", result.CaseID, err)
		return
	}

	subject := fmt.Sprintf("Case update: %s", result.NewStatus)
	body := fmt.Sprintf("<p>A case you follow moved to status <b>%s</b>.</p>", result.NewStatus)
	if result.NextStage != nil {
		body = fmt.Sprintf("<p>A case you follow entered stage <b>%s</b> (status <b>%s</b>).</p>",
			result.NextStage.StageName, result.NewStatus)
	}

	if err := config.SendMail(emails, subject, body); err != nil {
		log.Printf("Warning: notification email for case %d not sent: %v", result.CaseID, err)
	}
}
