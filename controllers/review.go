package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"research-incentive-api/config"
	"research-incentive-api/middleware"
	"research-incentive-api/models"
	"research-incentive-api/services"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReviewRequest struct {
	Decision string  `json:"decision" binding:"required"`
	Comments *string `json:"comments"`
}

// loadContributionForReview fetches the row inside the transaction or writes
// the error response and returns nil.
func loadContributionForReview(c *gin.Context, tx *gorm.DB) *models.Contribution {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution ID"})
		return nil
	}

	var contribution models.Contribution
	if err := tx.Preload("Applicant").
		Where("contribution_id = ? AND delete_at IS NULL", id).
		First(&contribution).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Contribution not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load contribution"})
		return nil
	}
	return &contribution
}

// nextReviewRound numbers decision records per contribution, starting at 1.
func nextReviewRound(tx *gorm.DB, contributionID int) (int, error) {
	var count int64
	if err := tx.Model(&models.ContributionReview{}).
		Where("contribution_id = ?", contributionID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count review rounds: %w", err)
	}
	return int(count) + 1, nil
}

func appendReview(tx *gorm.DB, contributionID, reviewerID int, reviewerRole, decision string, comments *string) error {
	round, err := nextReviewRound(tx, contributionID)
	if err != nil {
		return err
	}
	review := models.ContributionReview{
		ContributionID: contributionID,
		ReviewerID:     reviewerID,
		ReviewerRole:   reviewerRole,
		ReviewRound:    round,
		Decision:       decision,
		Comments:       comments,
		ReviewedAt:     time.Now(),
	}
	return tx.Create(&review).Error
}

// GetReviewQueue lists contributions awaiting the reviewer's attention.
func GetReviewQueue(c *gin.Context) {
	var contributions []models.Contribution
	query := config.DB.Preload("Applicant").Preload("Authors", "delete_at IS NULL").
		Where("delete_at IS NULL AND status IN ?", []string{
			models.StatusSubmitted,
			models.StatusResubmitted,
			models.StatusUnderReview,
		})
	if pubType := c.Query("publication_type"); pubType != "" {
		query = query.Where("publication_type = ?", pubType)
	}

	if err := query.Order("submitted_at ASC").Find(&contributions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch review queue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": contributions, "total": len(contributions)})
}

// MentorDecision handles the mentor gate for student submissions. Approval
// forwards the record into the review pipeline; the mentor must be the
// applicant's assigned mentor.
func MentorDecision(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "User context missing"})
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "decision is required"})
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	contribution := loadContributionForReview(c, tx)
	if contribution == nil {
		return
	}

	if contribution.Applicant == nil || contribution.Applicant.MentorID == nil || *contribution.Applicant.MentorID != user.UserID {
		tx.Rollback()
		handleServiceError(c, &services.PermissionError{Message: "only the applicant's assigned mentor may decide"})
		return
	}
	if contribution.Status != models.StatusPendingMentorApproval {
		tx.Rollback()
		handleServiceError(c, &services.StateError{From: contribution.Status, Action: "mentor decision"})
		return
	}

	var target string
	switch req.Decision {
	case models.DecisionApproved:
		target = models.StatusSubmitted
	case models.DecisionRejected:
		target = models.StatusRejected
	case models.DecisionChangesRequired:
		target = models.StatusChangesRequired
	default:
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Decision must be approved, rejected or changes_required"})
		return
	}

	if err := appendReview(tx, contribution.ContributionID, user.UserID, "mentor", req.Decision, req.Comments); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record decision"})
		return
	}
	if err := services.ApplyTransition(tx, contribution, target, user.UserID, req.Comments, nil); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record decision"})
		return
	}

	go services.NotifyUser(contribution.ApplicantID, "info", "Mentor decision recorded",
		fmt.Sprintf("Your mentor marked %s as %s", contribution.ApplicationNumber, req.Decision),
		"contribution", contribution.ContributionID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Decision recorded",
		"data":    gin.H{"status": contribution.Status},
	})
}

// ReviewContribution records a DRD member's recommendation on a submitted
// record. Recommending keeps or moves the record under review; the terminal
// decisions are reserved for the approval endpoints.
func ReviewContribution(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "User context missing"})
		return
	}
	roleName, _ := c.Get("roleName")

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "decision is required"})
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	contribution := loadContributionForReview(c, tx)
	if contribution == nil {
		return
	}

	var target string
	switch req.Decision {
	case models.DecisionRecommended:
		target = models.StatusUnderReview
	case models.DecisionChangesRequired:
		target = models.StatusChangesRequired
	case models.DecisionRejected:
		target = models.StatusRejected
	default:
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Decision must be recommended, changes_required or rejected"})
		return
	}

	if err := appendReview(tx, contribution.ContributionID, user.UserID, roleName.(string), req.Decision, req.Comments); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record review"})
		return
	}
	if err := services.ApplyTransition(tx, contribution, target, user.UserID, req.Comments, nil); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record review"})
		return
	}

	go services.NotifyUser(contribution.ApplicantID, "info", "Review recorded",
		fmt.Sprintf("%s received a reviewer decision: %s", contribution.ApplicationNumber, req.Decision),
		"contribution", contribution.ContributionID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Review recorded",
		"data":    gin.H{"status": contribution.Status},
	})
}

// ApproveContribution is the payout boundary: the status change, the final
// share calculation and the pool totals land in one transaction or not at all.
func ApproveContribution(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "User context missing"})
		return
	}
	roleName, _ := c.Get("roleName")

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = ReviewRequest{Decision: models.DecisionApproved}
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	contribution := loadContributionForReview(c, tx)
	if contribution == nil {
		return
	}

	if err := appendReview(tx, contribution.ContributionID, user.UserID, roleName.(string), models.DecisionApproved, req.Comments); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record approval"})
		return
	}
	if err := services.ApplyTransition(tx, contribution, models.StatusApproved, user.UserID, req.Comments, nil); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	// Shares are credited at approval; a broken policy aborts the approval
	// rather than approving with stale numbers.
	if err := services.CreditApprovedShares(tx, contribution); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record approval"})
		return
	}

	go services.NotifyContributors(contribution, "success", "Contribution approved",
		fmt.Sprintf("%s has been approved for incentive payout", contribution.ApplicationNumber))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Contribution approved",
		"data": gin.H{
			"status":                      contribution.Status,
			"calculated_incentive_amount": contribution.CalculatedIncentiveAmount,
			"calculated_points":           contribution.CalculatedPoints,
		},
	})
}

// RejectContribution records a terminal rejection with mandatory comments.
func RejectContribution(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "User context missing"})
		return
	}
	roleName, _ := c.Get("roleName")

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Comments == nil || *req.Comments == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Rejection requires comments"})
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	contribution := loadContributionForReview(c, tx)
	if contribution == nil {
		return
	}

	if err := appendReview(tx, contribution.ContributionID, user.UserID, roleName.(string), models.DecisionRejected, req.Comments); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record rejection"})
		return
	}
	if err := services.ApplyTransition(tx, contribution, models.StatusRejected, user.UserID, req.Comments, nil); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record rejection"})
		return
	}

	go services.NotifyContributors(contribution, "warning", "Contribution rejected",
		fmt.Sprintf("%s was rejected: %s", contribution.ApplicationNumber, *req.Comments))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contribution rejected"})
}

// CompleteContribution is the finance sign-off after disbursement.
func CompleteContribution(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	contribution := loadContributionForReview(c, tx)
	if contribution == nil {
		return
	}

	if err := services.ApplyTransition(tx, contribution, models.StatusCompleted, userID, nil, ptr("incentive disbursed")); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to complete contribution"})
		return
	}

	go services.NotifyContributors(contribution, "success", "Incentive disbursed",
		fmt.Sprintf("The incentive for %s has been disbursed", contribution.ApplicationNumber))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contribution completed"})
}

// GetContributionReviews lists the decision trail for one contribution.
func GetContributionReviews(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution ID"})
		return
	}

	var reviews []models.ContributionReview
	if err := config.DB.Preload("Reviewer").
		Where("contribution_id = ?", id).
		Order("review_round ASC").
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": reviews, "total": len(reviews)})
}
