package services

import (
	"errors"
	"fmt"
	"research-incentive-api/config"
	"research-incentive-api/models"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// suggestionOpenStatuses are the contribution statuses in which reviewers and
// mentors may raise suggestions.
var suggestionOpenStatuses = map[string]bool{
	models.StatusSubmitted:             true,
	models.StatusUnderReview:           true,
	models.StatusUnderDRDReview:        true,
	models.StatusResubmitted:           true,
	models.StatusPendingMentorApproval: true,
}

// CreateSuggestion records a proposed field change and, when the contribution
// is not already awaiting changes, moves it to changes_required. One atomic
// unit: suggestion row, optional transition, history row.
func CreateSuggestion(proposerID int, origin string, contributionID int, fieldName, suggestedValue string, note *string) (*models.EditSuggestion, error) {
	fieldName = strings.TrimSpace(fieldName)
	if fieldName == "" || strings.TrimSpace(suggestedValue) == "" {
		return nil, &ValidationError{Field: "field_name", Message: "field_name and suggested_value are required"}
	}
	if origin != models.SuggestionOriginReviewer && origin != models.SuggestionOriginMentor {
		return nil, &ValidationError{Field: "origin", Message: origin, Allowed: []string{models.SuggestionOriginReviewer, models.SuggestionOriginMentor}}
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var contribution models.Contribution
	if err := tx.Where("contribution_id = ? AND delete_at IS NULL", contributionID).
		First(&contribution).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "contribution"}
		}
		return nil, fmt.Errorf("failed to load contribution: %w", err)
	}

	if !suggestionOpenStatuses[contribution.Status] {
		tx.Rollback()
		return nil, &StateError{From: contribution.Status, Action: "create suggestion"}
	}

	original := currentFieldValue(&contribution, fieldName)
	suggestion := models.EditSuggestion{
		ContributionID: contribution.ContributionID,
		ProposerID:     proposerID,
		Origin:         origin,
		FieldName:      fieldName,
		OriginalValue:  original,
		SuggestedValue: strings.TrimSpace(suggestedValue),
		Note:           note,
		Status:         models.SuggestionPending,
		CreateAt:       time.Now(),
	}
	if err := tx.Create(&suggestion).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create suggestion: %w", err)
	}

	if contribution.Status != models.StatusChangesRequired {
		reason := fmt.Sprintf("suggestion raised on field %s", fieldName)
		if err := ApplyTransition(tx, &contribution, models.StatusChangesRequired, proposerID, &reason, nil); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit suggestion: %w", err)
	}

	go NotifyUser(contribution.ApplicantID, "warning", "Changes requested",
		fmt.Sprintf("A change to '%s' was suggested on %s", fieldName, contribution.ApplicationNumber),
		"suggestion", suggestion.SuggestionID)

	return &suggestion, nil
}

// RespondToSuggestion resolves one suggestion. Only the applicant may respond,
// each suggestion resolves exactly once, and acceptance validates + applies
// the field change and re-runs share calculation in the same transaction.
// When the last pending suggestion resolves, the contribution auto-transitions
// to its re-entry status.
func RespondToSuggestion(applicantID, suggestionID int, accept bool, response *string) (*models.EditSuggestion, error) {
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var suggestion models.EditSuggestion
	if err := tx.Where("suggestion_id = ?", suggestionID).First(&suggestion).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "suggestion"}
		}
		return nil, fmt.Errorf("failed to load suggestion: %w", err)
	}

	if suggestion.IsResolved() {
		tx.Rollback()
		return nil, &StateError{From: suggestion.Status, Action: "respond to suggestion"}
	}

	var contribution models.Contribution
	if err := tx.Where("contribution_id = ? AND delete_at IS NULL", suggestion.ContributionID).
		First(&contribution).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to load contribution: %w", err)
	}

	if contribution.ApplicantID != applicantID {
		tx.Rollback()
		return nil, &PermissionError{Message: "only the applicant may resolve suggestions"}
	}

	now := time.Now()
	newStatus := models.SuggestionRejected
	if accept {
		if err := applySuggestedField(tx, &contribution, suggestion.FieldName, suggestion.SuggestedValue); err != nil {
			tx.Rollback()
			return nil, err
		}
		if IsPoolAffectingField(suggestion.FieldName) {
			if err := RecalculateShares(tx, &contribution); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
		newStatus = models.SuggestionAccepted
	}

	if err := tx.Model(&models.EditSuggestion{}).
		Where("suggestion_id = ?", suggestion.SuggestionID).
		Updates(map[string]interface{}{
			"status":             newStatus,
			"applicant_response": response,
			"resolved_at":        now,
		}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update suggestion: %w", err)
	}
	suggestion.Status = newStatus
	suggestion.ApplicantResponse = response
	suggestion.ResolvedAt = &now

	// Once the pending count hits zero the contribution re-enters review.
	var pending int64
	if err := tx.Model(&models.EditSuggestion{}).
		Where("contribution_id = ? AND status = ?", contribution.ContributionID, models.SuggestionPending).
		Count(&pending).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to count pending suggestions: %w", err)
	}

	if pending == 0 && contribution.Status == models.StatusChangesRequired {
		var mentorCount int64
		if err := tx.Model(&models.EditSuggestion{}).
			Where("contribution_id = ? AND origin = ?", contribution.ContributionID, models.SuggestionOriginMentor).
			Count(&mentorCount).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to inspect suggestion origins: %w", err)
		}

		target := ReentryStatusAfterSuggestions(mentorCount > 0)
		reason := "all suggestions resolved"
		if err := ApplyTransition(tx, &contribution, target, applicantID, &reason, nil); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit suggestion response: %w", err)
	}

	go NotifyUser(suggestion.ProposerID, "info", "Suggestion resolved",
		fmt.Sprintf("Your suggestion on '%s' for %s was %s", suggestion.FieldName, contribution.ApplicationNumber, newStatus),
		"suggestion", suggestion.SuggestionID)

	return &suggestion, nil
}

// applySuggestedField validates and writes one field change. Enum fields are
// checked against the registry; numeric fields are parsed and range-checked.
// Any failure aborts the caller's transaction, so a bad value never partially
// applies.
func applySuggestedField(tx *gorm.DB, contribution *models.Contribution, field, value string) error {
	if models.IsEnumField(field) && !models.IsAllowedValue(field, value) {
		return &ValidationError{Field: field, Message: value, Allowed: models.AllowedValues[field]}
	}

	var column string
	var parsed interface{} = value

	switch field {
	case "title", "journal_name", "indexing_categories", "quartile", "proceedings_quartile",
		"conference_subtype", "book_type", "book_indexing", "ipr_type", "filing_type",
		"project_type", "best_paper_award":
		column = field
	case "sjr", "impact_factor":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return &ValidationError{Field: field, Message: "must be a non-negative number"}
		}
		column, parsed = field, f
	case "naas_rating":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 6 || f > 10 {
			return &ValidationError{Field: field, Message: "must be a rating between 6 and 10"}
		}
		column, parsed = field, f
	case "subsidiary_impact_factor":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 20 {
			return &ValidationError{Field: field, Message: "must be an impact factor above 20"}
		}
		column, parsed = field, f
	default:
		return &ValidationError{Field: field, Message: "field is not open to suggestions"}
	}

	if err := tx.Model(&models.Contribution{}).
		Where("contribution_id = ?", contribution.ContributionID).
		Updates(map[string]interface{}{column: parsed, "update_at": time.Now()}).Error; err != nil {
		return fmt.Errorf("failed to apply suggested change: %w", err)
	}

	applyFieldLocally(contribution, field, value)
	return nil
}

// applyFieldLocally mirrors the column write onto the in-memory struct so the
// recalculation that follows sees the new value.
func applyFieldLocally(c *models.Contribution, field, value string) {
	switch field {
	case "title":
		c.Title = value
	case "journal_name":
		c.JournalName = value
	case "indexing_categories":
		c.IndexingCategories = value
	case "quartile":
		c.Quartile = &value
	case "proceedings_quartile":
		c.ProceedingsQuartile = &value
	case "conference_subtype":
		c.ConferenceSubType = &value
	case "book_type":
		c.BookType = &value
	case "book_indexing":
		c.BookIndexing = &value
	case "ipr_type":
		c.IPRType = &value
	case "filing_type":
		c.FilingType = &value
	case "project_type":
		c.ProjectType = &value
	case "best_paper_award":
		c.BestPaperAward = &value
	case "sjr":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			c.SJR = &f
		}
	case "impact_factor":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			c.ImpactFactor = &f
		}
	case "naas_rating":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			c.NaasRating = &f
		}
	case "subsidiary_impact_factor":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			c.SubsidiaryImpactFactor = &f
		}
	}
}

// currentFieldValue snapshots the field's stored value for the audit trail.
func currentFieldValue(c *models.Contribution, field string) *string {
	str := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	fl := func(f *float64) *string {
		if f == nil {
			return nil
		}
		s := strconv.FormatFloat(*f, 'f', -1, 64)
		return &s
	}
	switch field {
	case "title":
		return str(c.Title)
	case "journal_name":
		return str(c.JournalName)
	case "indexing_categories":
		return str(c.IndexingCategories)
	case "quartile":
		return c.Quartile
	case "proceedings_quartile":
		return c.ProceedingsQuartile
	case "conference_subtype":
		return c.ConferenceSubType
	case "book_type":
		return c.BookType
	case "book_indexing":
		return c.BookIndexing
	case "ipr_type":
		return c.IPRType
	case "filing_type":
		return c.FilingType
	case "project_type":
		return c.ProjectType
	case "best_paper_award":
		return c.BestPaperAward
	case "sjr":
		return fl(c.SJR)
	case "impact_factor":
		return fl(c.ImpactFactor)
	case "naas_rating":
		return fl(c.NaasRating)
	case "subsidiary_impact_factor":
		return fl(c.SubsidiaryImpactFactor)
	}
	return nil
}
