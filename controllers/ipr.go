package controllers

import (
	"fmt"
	"net/http"
	"research-incentive-api/config"
	"research-incentive-api/middleware"
	"research-incentive-api/models"
	"research-incentive-api/services"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetDRDQueue lists IPR filings awaiting DRD review, scoped to the member's
// assigned schools. Heads and admins see every school.
func GetDRDQueue(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "User context missing"})
		return
	}
	roleName, _ := c.Get("roleName")

	schoolIDs, err := services.VisibleSchoolIDs(user, roleName.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to resolve school scope"})
		return
	}

	query := config.DB.Preload("Applicant").Preload("Authors", "delete_at IS NULL").
		Where("delete_at IS NULL AND publication_type = ?", models.PubTypeIPR)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status IN ?", []string{
			models.StatusSubmitted,
			models.StatusResubmitted,
			models.StatusUnderDRDReview,
			models.StatusRecommendedToHead,
			models.StatusDRDHeadApproved,
			models.StatusSubmittedToGovt,
			models.StatusGovtApplicationFiled,
		})
	}
	if schoolIDs != nil {
		query = query.Where("school_id IN ?", schoolIDs)
	}

	var filings []models.Contribution
	if err := query.Order("submitted_at ASC").Find(&filings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch DRD queue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": filings, "total": len(filings)})
}

// DRDMemberDecision moves a filing from DRD review either up to the head or
// out of the pipeline. Members only act within their school scope.
func DRDMemberDecision(c *gin.Context) {
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

	schoolIDs, err := services.VisibleSchoolIDs(user, roleName.(string))
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to resolve school scope"})
		return
	}
	if schoolIDs != nil && !containsSchool(schoolIDs, contribution.SchoolID) {
		tx.Rollback()
		handleServiceError(c, &services.PermissionError{Message: "filing is outside your assigned schools"})
		return
	}

	var target string
	switch req.Decision {
	case models.DecisionRecommended:
		target = models.StatusRecommendedToHead
	case models.DecisionChangesRequired:
		target = models.StatusChangesRequired
	case models.DecisionRejected:
		target = models.StatusDRDRejected
	default:
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Decision must be recommended, changes_required or rejected"})
		return
	}

	// A member's first action on a fresh filing takes it up for review before
	// the verdict lands; the decision edges all start at under_drd_review.
	if services.NeedsDRDPickup(contribution.Status) {
		if err := services.ApplyTransition(tx, contribution, models.StatusUnderDRDReview, user.UserID, nil, ptr("taken up for DRD review")); err != nil {
			tx.Rollback()
			handleServiceError(c, err)
			return
		}
	}

	if err := appendReview(tx, contribution.ContributionID, user.UserID, roleName.(string), req.Decision, req.Comments); err != nil {
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

	go services.NotifyUser(contribution.ApplicantID, "info", "DRD review recorded",
		fmt.Sprintf("Your filing %s was marked %s", contribution.ApplicationNumber, req.Decision),
		"contribution", contribution.ContributionID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Decision recorded",
		"data":    gin.H{"status": contribution.Status},
	})
}

// DRDHeadDecision is the head's verdict on a recommended filing.
func DRDHeadDecision(c *gin.Context) {
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
	case models.DecisionApproved:
		target = models.StatusDRDHeadApproved
	case models.DecisionRejected:
		target = models.StatusDRDRejected
	default:
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Decision must be approved or rejected"})
		return
	}

	if err := appendReview(tx, contribution.ContributionID, user.UserID, roleName.(string), req.Decision, req.Comments); err != nil {
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

	go services.NotifyUser(contribution.ApplicantID, "info", "DRD head decision",
		fmt.Sprintf("Your filing %s was %s by the DRD head", contribution.ApplicationNumber, req.Decision),
		"contribution", contribution.ContributionID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Decision recorded",
		"data":    gin.H{"status": contribution.Status},
	})
}

type GovtFilingRequest struct {
	GovtApplicationID string `json:"govt_application_id"`
}

// MarkSubmittedToGovt records that the office forwarded the filing to the
// government portal.
func MarkSubmittedToGovt(c *gin.Context) {
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

	if err := services.ApplyTransition(tx, contribution, models.StatusSubmittedToGovt, userID, nil, ptr("forwarded to government portal")); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update filing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Filing forwarded to government", "data": gin.H{"status": contribution.Status}})
}

// RecordGovtFiling stores the government application number once the portal
// acknowledges the filing.
func RecordGovtFiling(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)

	var req GovtFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.GovtApplicationID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "govt_application_id is required"})
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

	if err := services.ApplyTransition(tx, contribution, models.StatusGovtApplicationFiled, userID, nil, ptr("government application filed")); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	appID := strings.TrimSpace(req.GovtApplicationID)
	if err := tx.Model(&models.Contribution{}).
		Where("contribution_id = ?", contribution.ContributionID).
		Update("govt_application_id", appID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store application ID"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update filing"})
		return
	}

	go services.NotifyContributors(contribution, "info", "Government application filed",
		fmt.Sprintf("Filing %s is registered with the government as %s", contribution.ApplicationNumber, appID))

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Government filing recorded", "data": gin.H{"status": contribution.Status}})
}

type IPRPublicationRequest struct {
	IPRPublicationID string `json:"ipr_publication_id"`
}

// RecordIPRPublication is the IPR payout boundary: storing the publication ID,
// the status change and the equal-split crediting succeed or fail together.
func RecordIPRPublication(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)

	var req IPRPublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.IPRPublicationID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ipr_publication_id is required"})
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

	if err := services.ApplyTransition(tx, contribution, models.StatusPublished, userID, nil, ptr("IPR granted and published")); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	pubID := strings.TrimSpace(req.IPRPublicationID)
	if err := tx.Model(&models.Contribution{}).
		Where("contribution_id = ?", contribution.ContributionID).
		Update("ipr_publication_id", pubID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store publication ID"})
		return
	}
	if err := services.CreditIPRIncentives(tx, contribution); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to record publication"})
		return
	}

	go services.NotifyContributors(contribution, "success", "IPR published",
		fmt.Sprintf("Filing %s has been granted and incentives credited", contribution.ApplicationNumber))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "IPR publication recorded",
		"data": gin.H{
			"status":                      contribution.Status,
			"calculated_incentive_amount": contribution.CalculatedIncentiveAmount,
			"calculated_points":           contribution.CalculatedPoints,
		},
	})
}

// MarkGovtRejected records a government-side rejection.
func MarkGovtRejected(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)

	var req ReviewRequest
	_ = c.ShouldBindJSON(&req)

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

	if err := services.ApplyTransition(tx, contribution, models.StatusGovtRejected, userID, req.Comments, nil); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update filing"})
		return
	}

	go services.NotifyUser(contribution.ApplicantID, "warning", "Government filing rejected",
		fmt.Sprintf("Filing %s was rejected by the government office", contribution.ApplicationNumber),
		"contribution", contribution.ContributionID)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Filing marked as rejected"})
}

func containsSchool(ids []int, schoolID *int) bool {
	if schoolID == nil {
		return false
	}
	for _, id := range ids {
		if id == *schoolID {
			return true
		}
	}
	return false
}
