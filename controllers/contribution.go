package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"research-incentive-api/config"
	"research-incentive-api/middleware"
	"research-incentive-api/models"
	"research-incentive-api/services"
	"research-incentive-api/utils"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ContributionRequest is the create/update payload. Pointer fields distinguish
// "absent" from "set to zero" on update.
type ContributionRequest struct {
	PublicationType     string                 `json:"publication_type"`
	Title               string                 `json:"title"`
	ApplicantAuthorType string                 `json:"applicant_author_type"`
	ApplicantPosition   *int                   `json:"applicant_position"`
	JournalName         *string                `json:"journal_name"`
	Quartile            *string                `json:"quartile"`
	SJR                 *float64               `json:"sjr"`
	NaasRating          *float64               `json:"naas_rating"`
	ImpactFactor        *float64               `json:"impact_factor"`
	SubsidiaryImpact    *float64               `json:"subsidiary_impact_factor"`
	IndexingCategories  []string               `json:"indexing_categories"`
	PublicationDate     *string                `json:"publication_date"` // 2006-01-02
	BookType            *string                `json:"book_type"`
	BookIndexing        *string                `json:"book_indexing"`
	ConferenceSubType   *string                `json:"conference_subtype"`
	ProceedingsQuartile *string                `json:"proceedings_quartile"`
	IsInternational     *bool                  `json:"is_international_event"`
	BestPaperAward      *string                `json:"best_paper_award"`
	IPRType             *string                `json:"ipr_type"`
	FilingType          *string                `json:"filing_type"`
	ProjectType         *string                `json:"project_type"`
	Authors             []services.AuthorInput `json:"authors"`
}

func (r *ContributionRequest) validateEnums() error {
	checks := map[string]*string{
		"quartile":             r.Quartile,
		"book_type":            r.BookType,
		"book_indexing":        r.BookIndexing,
		"conference_subtype":   r.ConferenceSubType,
		"proceedings_quartile": r.ProceedingsQuartile,
		"ipr_type":             r.IPRType,
		"filing_type":          r.FilingType,
		"project_type":         r.ProjectType,
	}
	for field, value := range checks {
		if value != nil && !models.IsAllowedValue(field, *value) {
			return &services.ValidationError{Field: field, Message: *value, Allowed: models.AllowedValues[field]}
		}
	}
	for _, cat := range r.IndexingCategories {
		if !models.IsAllowedValue("indexing_category", cat) {
			return &services.ValidationError{Field: "indexing_category", Message: cat, Allowed: models.AllowedValues["indexing_category"]}
		}
	}
	if r.NaasRating != nil && (*r.NaasRating < 6 || *r.NaasRating > 10) {
		return &services.ValidationError{Field: "naas_rating", Message: "must be a rating between 6 and 10"}
	}
	if r.SubsidiaryImpact != nil && *r.SubsidiaryImpact <= 20 {
		return &services.ValidationError{Field: "subsidiary_impact_factor", Message: "must be an impact factor above 20"}
	}
	return services.ValidateAuthorInput(r.Authors)
}

// CreateContribution creates a draft and its author rows, running the
// incentive engine once so pool totals are populated from the start.
func CreateContribution(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "User context missing"})
		return
	}

	var req ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if req.PublicationType == "" || req.Title == "" || req.ApplicantAuthorType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "publication_type, title and applicant_author_type are required"})
		return
	}
	if !models.IsAllowedValue("publication_type", req.PublicationType) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid publication_type"})
		return
	}
	if !models.IsAllowedValue("author_type", req.ApplicantAuthorType) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid applicant_author_type"})
		return
	}
	if err := req.validateEnums(); err != nil {
		handleServiceError(c, err)
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	number, err := services.NextApplicationNumber(tx, req.PublicationType)
	if err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}

	now := time.Now()
	contribution := models.Contribution{
		ApplicationNumber:   number,
		PublicationType:     req.PublicationType,
		Status:              models.StatusDraft,
		Title:               utils.SanitizeInput(req.Title),
		ApplicantID:         user.UserID,
		ApplicantAuthorType: req.ApplicantAuthorType,
		ApplicantPosition:   req.ApplicantPosition,
		SchoolID:            user.SchoolID,
		CreateAt:            now,
		UpdateAt:            now,
	}
	applyRequestFields(&contribution, &req)

	if err := tx.Create(&contribution).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create contribution"})
		return
	}

	if err := services.ReplaceAuthors(tx, &contribution, user, req.Authors); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}

	history := models.StatusHistory{
		ContributionID: contribution.ContributionID,
		ToStatus:       models.StatusDraft,
		ChangedBy:      user.UserID,
		CreatedAt:      now,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to log status history"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create contribution"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Contribution created successfully",
		"data":    contribution,
	})
}

// applyRequestFields copies the optional metadata fields onto the model.
func applyRequestFields(contribution *models.Contribution, req *ContributionRequest) {
	if req.JournalName != nil {
		contribution.JournalName = *req.JournalName
	}
	contribution.Quartile = coalesce(req.Quartile, contribution.Quartile)
	contribution.SJR = coalesceFloat(req.SJR, contribution.SJR)
	contribution.NaasRating = coalesceFloat(req.NaasRating, contribution.NaasRating)
	contribution.ImpactFactor = coalesceFloat(req.ImpactFactor, contribution.ImpactFactor)
	contribution.SubsidiaryImpactFactor = coalesceFloat(req.SubsidiaryImpact, contribution.SubsidiaryImpactFactor)
	if req.IndexingCategories != nil {
		contribution.IndexingCategories = strings.Join(req.IndexingCategories, ",")
	}
	if req.PublicationDate != nil {
		if t, err := time.Parse("2006-01-02", *req.PublicationDate); err == nil {
			contribution.PublicationDate = &t
		}
	}
	contribution.BookType = coalesce(req.BookType, contribution.BookType)
	contribution.BookIndexing = coalesce(req.BookIndexing, contribution.BookIndexing)
	contribution.ConferenceSubType = coalesce(req.ConferenceSubType, contribution.ConferenceSubType)
	contribution.ProceedingsQuartile = coalesce(req.ProceedingsQuartile, contribution.ProceedingsQuartile)
	if req.IsInternational != nil {
		contribution.IsInternationalEvent = *req.IsInternational
	}
	contribution.BestPaperAward = coalesce(req.BestPaperAward, contribution.BestPaperAward)
	contribution.IPRType = coalesce(req.IPRType, contribution.IPRType)
	contribution.FilingType = coalesce(req.FilingType, contribution.FilingType)
	contribution.ProjectType = coalesce(req.ProjectType, contribution.ProjectType)
}

func coalesce(req *string, current *string) *string {
	if req != nil {
		return req
	}
	return current
}

func coalesceFloat(req *float64, current *float64) *float64 {
	if req != nil {
		return req
	}
	return current
}

// GetContributions lists the caller's own contributions; reviewers may pass
// ?all=true to list every submission they are allowed to see.
func GetContributions(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)
	roleName, _ := c.Get("roleName")

	query := config.DB.Preload("Authors", "delete_at IS NULL").
		Preload("Applicant").
		Where("delete_at IS NULL")

	if c.Query("all") == "true" && middleware.HasPermission(roleName.(string), middleware.CapReview) {
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
	} else {
		query = query.Where("applicant_id = ?", userID)
	}
	if pubType := c.Query("publication_type"); pubType != "" {
		query = query.Where("publication_type = ?", pubType)
	}
	if number := c.Query("application_number"); number != "" {
		if !utils.ValidateApplicationNumber(number) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid application number format"})
			return
		}
		query = query.Where("application_number = ?", number)
	}

	var contributions []models.Contribution
	if err := query.Order("create_at DESC").Find(&contributions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch contributions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    contributions,
		"total":   len(contributions),
	})
}

// GetContribution returns one contribution with authors and review trail.
func GetContribution(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution ID"})
		return
	}

	var contribution models.Contribution
	if err := config.DB.Preload("Authors", "delete_at IS NULL").
		Preload("Applicant").
		Where("contribution_id = ? AND delete_at IS NULL", id).
		First(&contribution).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Contribution not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load contribution"})
		return
	}

	userID, _ := getUserIDFromContext(c)
	roleName, _ := c.Get("roleName")
	if contribution.ApplicantID != userID && !middleware.HasPermission(roleName.(string), middleware.CapReview) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not allowed to view this contribution"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": contribution})
}

// UpdateContribution mutates an editable-status contribution owned by the
// caller, re-running share calculation when a pool-affecting field changed.
func UpdateContribution(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "User context missing"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution ID"})
		return
	}

	var req ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if err := req.validateEnums(); err != nil {
		handleServiceError(c, err)
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var contribution models.Contribution
	if err := tx.Where("contribution_id = ? AND delete_at IS NULL", id).First(&contribution).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Contribution not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load contribution"})
		return
	}

	if contribution.ApplicantID != user.UserID {
		tx.Rollback()
		handleServiceError(c, &services.PermissionError{Message: "only the applicant may edit the contribution"})
		return
	}
	if !services.IsEditableStatus(contribution.Status) {
		tx.Rollback()
		handleServiceError(c, &services.StateError{From: contribution.Status, Action: "edit contribution"})
		return
	}

	if req.Title != "" {
		contribution.Title = utils.SanitizeInput(req.Title)
	}
	if req.ApplicantAuthorType != "" {
		if !models.IsAllowedValue("author_type", req.ApplicantAuthorType) {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid applicant_author_type"})
			return
		}
		contribution.ApplicantAuthorType = req.ApplicantAuthorType
	}
	if req.ApplicantPosition != nil {
		contribution.ApplicantPosition = req.ApplicantPosition
	}
	applyRequestFields(&contribution, &req)
	contribution.UpdateAt = time.Now()

	if err := tx.Save(&contribution).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update contribution"})
		return
	}

	// Author rows are replaced wholesale when provided; either way the
	// recalculation keeps pool totals and shares consistent.
	if req.Authors != nil {
		if err := services.ReplaceAuthors(tx, &contribution, user, req.Authors); err != nil {
			tx.Rollback()
			handleServiceError(c, err)
			return
		}
	} else {
		if err := services.RecalculateShares(tx, &contribution); err != nil {
			tx.Rollback()
			handleServiceError(c, err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update contribution"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Contribution updated successfully",
		"data":    contribution,
	})
}

// SubmitContribution moves a draft into the review pipeline. Student
// applicants with a mentor route through mentor approval first.
func SubmitContribution(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "User context missing"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution ID"})
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var contribution models.Contribution
	if err := tx.Where("contribution_id = ? AND delete_at IS NULL", id).First(&contribution).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Contribution not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load contribution"})
		return
	}

	if contribution.ApplicantID != user.UserID {
		tx.Rollback()
		handleServiceError(c, &services.PermissionError{Message: "only the applicant may submit the contribution"})
		return
	}
	if contribution.Status != models.StatusDraft {
		tx.Rollback()
		handleServiceError(c, &services.StateError{From: contribution.Status, Action: "submit"})
		return
	}

	// Submission is a calculation boundary: shares are refreshed before the
	// record leaves the applicant's hands.
	if err := services.RecalculateShares(tx, &contribution); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}

	target := services.SubmitTargetStatus(user)
	if err := services.ApplyTransition(tx, &contribution, target, user.UserID, nil, ptr("submitted by applicant")); err != nil {
		tx.Rollback()
		handleServiceError(c, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to submit contribution"})
		return
	}

	if target == models.StatusPendingMentorApproval && user.MentorID != nil {
		go services.NotifyUser(*user.MentorID, "info", "Mentor approval requested",
			fmt.Sprintf("%s submitted %s for your approval", user.FullName(), contribution.ApplicationNumber),
			"contribution", contribution.ContributionID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Contribution submitted successfully",
		"data":    gin.H{"status": contribution.Status},
	})
}

// DeleteContribution soft-deletes a draft owned by the caller.
func DeleteContribution(c *gin.Context) {
	userID, _ := getUserIDFromContext(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution ID"})
		return
	}

	var contribution models.Contribution
	if err := config.DB.Where("contribution_id = ? AND delete_at IS NULL", id).First(&contribution).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Contribution not found"})
		return
	}

	if contribution.ApplicantID != userID {
		handleServiceError(c, &services.PermissionError{Message: "only the applicant may delete the contribution"})
		return
	}
	if contribution.Status != models.StatusDraft {
		handleServiceError(c, &services.StateError{From: contribution.Status, Action: "delete"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&contribution).Update("delete_at", &now).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete contribution"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contribution deleted successfully"})
}

// GetContributionHistory lists the append-only status trail.
func GetContributionHistory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid contribution ID"})
		return
	}

	var history []models.StatusHistory
	if err := config.DB.Where("contribution_id = ?", id).
		Order("created_at ASC").
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch status history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    history,
		"total":   len(history),
	})
}
