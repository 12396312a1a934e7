package services

import (
	"fmt"
	"log"
	"research-incentive-api/config"
	"research-incentive-api/models"
	"time"
)

// NotifyUser writes an in-app notification and sends a best-effort email.
// Fire-and-forget: failures are logged and never surface to the business
// transaction that triggered them.
func NotifyUser(userID int, notifType, title, message, referenceType string, referenceID int) {
	if userID <= 0 {
		return
	}

	refType := referenceType
	refID := uint(referenceID)
	notification := models.Notification{
		UserID:   uint(userID),
		Title:    title,
		Message:  message,
		Type:     notifType,
		IsRead:   false,
		CreateAt: time.Now(),
	}
	if referenceType != "" {
		notification.ReferenceType = &refType
	}
	if referenceID > 0 {
		notification.ReferenceID = &refID
	}

	if err := config.DB.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to store notification for user %d: %v", userID, err)
	}

	var user models.User
	if err := config.DB.Select("email", "user_fname", "user_lname").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error; err != nil {
		return
	}
	if user.Email == "" {
		return
	}

	html := fmt.Sprintf("<p>Dear %s,</p><p>%s</p>", user.FullName(), message)
	if err := config.SendMail([]string{user.Email}, title, html); err != nil {
		log.Printf("Warning: failed to email notification to user %d: %v", userID, err)
	}
}

// NotifyContributors fans one message out to every linked contributor on a
// contribution plus the applicant, deduplicated.
func NotifyContributors(contribution *models.Contribution, notifType, title, message string) {
	seen := map[int]bool{}

	NotifyUser(contribution.ApplicantID, notifType, title, message, "contribution", contribution.ContributionID)
	seen[contribution.ApplicantID] = true

	var authors []models.ContributionAuthor
	if err := config.DB.Where("contribution_id = ? AND delete_at IS NULL AND user_id IS NOT NULL", contribution.ContributionID).
		Find(&authors).Error; err != nil {
		log.Printf("Warning: failed to load authors for notification fan-out: %v", err)
		return
	}
	for _, author := range authors {
		if author.UserID == nil || seen[*author.UserID] {
			continue
		}
		seen[*author.UserID] = true
		NotifyUser(*author.UserID, notifType, title, message, "contribution", contribution.ContributionID)
	}
}
