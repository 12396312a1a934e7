package services

import (
	"fmt"
	"research-incentive-api/models"
	"strings"
	"time"

	"gorm.io/gorm"
)

// applicationNumberPrefixes maps publication types to the human-readable
// sequence prefix, e.g. RP-2026-0007.
var applicationNumberPrefixes = map[string]string{
	models.PubTypeResearchPaper:   "RP",
	models.PubTypeBook:            "BK",
	models.PubTypeBookChapter:     "BC",
	models.PubTypeConferencePaper: "CP",
	models.PubTypeGrantProposal:   "GP",
	models.PubTypeIPR:             "IPR",
}

// NextApplicationNumber allocates the next sequence number for the type and
// year inside the caller's transaction, so concurrent creates cannot collide
// within the store's isolation level.
func NextApplicationNumber(tx *gorm.DB, publicationType string) (string, error) {
	prefix, ok := applicationNumberPrefixes[publicationType]
	if !ok {
		return "", &ValidationError{Field: "publication_type", Message: publicationType, Allowed: models.AllowedValues["publication_type"]}
	}

	year := time.Now().Year()
	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)

	var count int64
	if err := tx.Model(&models.Contribution{}).
		Where("application_number LIKE ?", pattern).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to allocate application number: %w", err)
	}

	return fmt.Sprintf("%s-%d-%04d", prefix, year, count+1), nil
}

// AuthorInput is one contributor descriptor from a create/update request.
type AuthorInput struct {
	AuthorName     string `json:"author_name" binding:"required"`
	UserID         *int   `json:"user_id"`
	AuthorType     string `json:"author_type" binding:"required"`
	AuthorPosition *int   `json:"author_position"`
	AuthorCategory string `json:"author_category" binding:"required"`
}

// ValidateAuthorInput checks role and category against the enum registry.
func ValidateAuthorInput(authors []AuthorInput) error {
	for _, a := range authors {
		if !models.IsAllowedValue("author_type", a.AuthorType) {
			return &ValidationError{Field: "author_type", Message: a.AuthorType, Allowed: models.AllowedValues["author_type"]}
		}
		if !models.IsAllowedValue("author_category", a.AuthorCategory) {
			return &ValidationError{Field: "author_category", Message: a.AuthorCategory, Allowed: models.AllowedValues["author_category"]}
		}
	}
	return nil
}

// ReplaceAuthors swaps the contribution's author rows wholesale: the given
// co-contributors plus the applicant folded in as a regular author row. The
// caller owns the transaction; shares are recalculated before it commits so
// pool totals and author rows can never diverge.
func ReplaceAuthors(tx *gorm.DB, contribution *models.Contribution, applicant *models.User, authors []AuthorInput) error {
	if err := tx.Where("contribution_id = ?", contribution.ContributionID).
		Delete(&models.ContributionAuthor{}).Error; err != nil {
		return fmt.Errorf("failed to clear author rows: %w", err)
	}

	now := time.Now()
	applicantID := applicant.UserID
	rows := []models.ContributionAuthor{{
		ContributionID: contribution.ContributionID,
		AuthorName:     applicant.FullName(),
		UserID:         &applicantID,
		AuthorType:     contribution.ApplicantAuthorType,
		AuthorPosition: contribution.ApplicantPosition,
		IsInternal:     models.IsInternalCategory(applicant.Category),
		AuthorCategory: applicant.Category,
		CreateAt:       now,
		UpdateAt:       now,
	}}

	for _, a := range authors {
		rows = append(rows, models.ContributionAuthor{
			ContributionID: contribution.ContributionID,
			AuthorName:     strings.TrimSpace(a.AuthorName),
			UserID:         a.UserID,
			AuthorType:     a.AuthorType,
			AuthorPosition: a.AuthorPosition,
			IsInternal:     models.IsInternalCategory(a.AuthorCategory),
			AuthorCategory: a.AuthorCategory,
			CreateAt:       now,
			UpdateAt:       now,
		})
	}

	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create author rows: %w", err)
	}

	return RecalculateShares(tx, contribution)
}

// CreditApprovedShares runs the engine for every author at approval time and
// persists shares plus pool totals atomically. External authors keep zero
// shares; student authors keep zero points. A configuration error aborts the
// whole approval.
func CreditApprovedShares(tx *gorm.DB, contribution *models.Contribution) error {
	return RecalculateShares(tx, contribution)
}
