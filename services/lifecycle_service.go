package services

import (
	"fmt"
	"log"
	"research-incentive-api/models"
	"time"

	"gorm.io/gorm"
)

// contributionTransitions is the status machine for contributions, covering
// both the standard review chain and the extended DRD/government chain used
// by IPR filings. Any edge not listed here is illegal.
var contributionTransitions = map[string][]string{
	models.StatusDraft: {
		models.StatusSubmitted,
		models.StatusPendingMentorApproval,
	},
	models.StatusPendingMentorApproval: {
		models.StatusSubmitted,
		models.StatusChangesRequired,
		models.StatusRejected,
	},
	models.StatusSubmitted: {
		models.StatusUnderReview,
		models.StatusUnderDRDReview,
		models.StatusChangesRequired,
		models.StatusApproved,
		models.StatusRejected,
	},
	models.StatusUnderReview: {
		models.StatusUnderReview, // repeated recommendations keep the status
		models.StatusChangesRequired,
		models.StatusApproved,
		models.StatusRejected,
	},
	models.StatusChangesRequired: {
		models.StatusResubmitted,
		models.StatusPendingMentorApproval,
		models.StatusRejected,
	},
	models.StatusResubmitted: {
		models.StatusUnderReview,
		models.StatusUnderDRDReview,
		models.StatusChangesRequired,
		models.StatusApproved,
		models.StatusRejected,
	},
	models.StatusApproved: {
		models.StatusCompleted,
	},

	// IPR chain
	models.StatusUnderDRDReview: {
		models.StatusChangesRequired,
		models.StatusRecommendedToHead,
		models.StatusDRDRejected,
	},
	models.StatusRecommendedToHead: {
		models.StatusDRDHeadApproved,
		models.StatusDRDRejected,
	},
	models.StatusDRDHeadApproved: {
		models.StatusSubmittedToGovt,
	},
	models.StatusSubmittedToGovt: {
		models.StatusGovtApplicationFiled,
		models.StatusGovtRejected,
	},
	models.StatusGovtApplicationFiled: {
		models.StatusPublished,
		models.StatusGovtRejected,
	},
	models.StatusPublished: {
		models.StatusCompleted,
	},
}

// editableStatuses are the only statuses in which the applicant may mutate
// the contribution.
var editableStatuses = map[string]bool{
	models.StatusDraft:           true,
	models.StatusChangesRequired: true,
	models.StatusResubmitted:     true,
}

// poolAffectingFields are the contribution fields whose change forces a full
// recalculation of pool totals and every author share.
var poolAffectingFields = map[string]bool{
	"sjr":                      true,
	"quartile":                 true,
	"indexing_categories":      true,
	"impact_factor":            true,
	"naas_rating":              true,
	"subsidiary_impact_factor": true,
	"book_type":                true,
	"book_indexing":            true,
	"conference_subtype":       true,
	"proceedings_quartile":     true,
	"is_international_event":   true,
	"best_paper_award":         true,
}

// CanTransition reports whether from→to is a legal contribution edge.
func CanTransition(from, to string) bool {
	for _, next := range contributionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsEditableStatus reports whether the applicant may mutate the record.
func IsEditableStatus(status string) bool {
	return editableStatuses[status]
}

// IsPoolAffectingField reports whether changing the field requires a
// recalculation pass.
func IsPoolAffectingField(field string) bool {
	return poolAffectingFields[field]
}

// SubmitTargetStatus decides where a draft goes on submit: student applicants
// with an assigned mentor route through mentor approval first.
func SubmitTargetStatus(applicant *models.User) string {
	if applicant.IsStudent() && applicant.MentorID != nil {
		return models.StatusPendingMentorApproval
	}
	return models.StatusSubmitted
}

// ReentryStatusAfterSuggestions decides where a contribution goes once its
// last pending suggestion resolves. Mentor-originated suggestions route the
// record back through mentor approval.
func ReentryStatusAfterSuggestions(hadMentorSuggestion bool) string {
	if hadMentorSuggestion {
		return models.StatusPendingMentorApproval
	}
	return models.StatusResubmitted
}

// ApplyTransition moves a contribution to a new status inside the given
// transaction and appends the history row. Illegal edges fail with StateError
// before any write.
func ApplyTransition(tx *gorm.DB, contribution *models.Contribution, toStatus string, changedBy int, comments, notes *string) error {
	if !CanTransition(contribution.Status, toStatus) {
		return &StateError{From: contribution.Status, Action: "transition to " + toStatus}
	}

	now := time.Now()
	from := contribution.Status
	updates := map[string]interface{}{
		"status":    toStatus,
		"update_at": now,
	}
	if toStatus == models.StatusSubmitted || toStatus == models.StatusPendingMentorApproval {
		if contribution.SubmittedAt == nil {
			updates["submitted_at"] = now
		}
	}

	if err := tx.Model(&models.Contribution{}).
		Where("contribution_id = ?", contribution.ContributionID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update contribution status: %w", err)
	}

	history := models.StatusHistory{
		ContributionID: contribution.ContributionID,
		FromStatus:     &from,
		ToStatus:       toStatus,
		ChangedBy:      changedBy,
		Comments:       comments,
		Notes:          notes,
		CreatedAt:      now,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to log status history: %w", err)
	}

	contribution.Status = toStatus
	return nil
}

// BuildCalculationInput assembles the engine input for one author row of a
// contribution, with the policy already resolved.
func BuildCalculationInput(c *models.Contribution, author *models.ContributionAuthor, policy *PolicyView, comp AuthorComposition) CalculationInput {
	in := CalculationInput{
		PublicationType:        c.PublicationType,
		IndexingCategories:     c.IndexingCategoryList(),
		SJR:                    c.SJR,
		NaasRating:             c.NaasRating,
		SubsidiaryImpactFactor: c.SubsidiaryImpactFactor,
		IsInternationalEvent:   c.IsInternationalEvent,
		Policy:                 policy,
		AuthorRole:             author.AuthorType,
		AuthorPosition:         author.AuthorPosition,
		IsInternal:             models.IsInternalCategory(author.AuthorCategory),
		IsStudent:              models.IsStudentCategory(author.AuthorCategory),
		Composition:            comp,
	}
	if c.Quartile != nil {
		in.Quartile = *c.Quartile
	}
	if c.BookType != nil {
		in.BookType = *c.BookType
	}
	if c.BookIndexing != nil {
		in.BookIndexing = *c.BookIndexing
	}
	if c.ConferenceSubType != nil {
		in.SubType = *c.ConferenceSubType
	}
	if c.ProceedingsQuartile != nil {
		in.ProceedingsQuartile = *c.ProceedingsQuartile
	}
	if c.BestPaperAward != nil {
		in.BestPaperAward = *c.BestPaperAward
	}
	return in
}

// CalculateOrZero invokes the engine, absorbing anything except configuration
// errors. A configuration error blocks the flow; any other failure (including
// a panic inside the engine) degrades to an all-zero result so one malformed
// category cannot block an approval pipeline. The degradation is loud in logs.
func CalculateOrZero(in CalculationInput) (result CalculationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			fault := &CalculationFault{Cause: fmt.Errorf("panic: %v", r)}
			log.Printf("ERROR: incentive engine fault for %s: %v", in.PublicationType, fault)
			result = CalculationResult{}
			err = nil
		}
	}()

	result, calcErr := CalculateIncentive(in)
	if calcErr != nil {
		if IsConfiguration(calcErr) {
			return CalculationResult{}, calcErr
		}
		log.Printf("ERROR: incentive calculation degraded to zero for %s: %v", in.PublicationType, calcErr)
		return CalculationResult{}, nil
	}
	return result, nil
}

// RecalculateShares recomputes the contribution's pool totals and every
// author's personal share inside the given transaction. The caller owns
// commit/rollback so that pool and shares can never diverge.
func RecalculateShares(tx *gorm.DB, contribution *models.Contribution) error {
	var authors []models.ContributionAuthor
	if err := tx.Where("contribution_id = ? AND delete_at IS NULL", contribution.ContributionID).
		Order("author_position ASC").
		Find(&authors).Error; err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}

	asOf := time.Now()
	if contribution.PublicationDate != nil {
		asOf = *contribution.PublicationDate
	}
	subType := ""
	if contribution.ConferenceSubType != nil {
		subType = *contribution.ConferenceSubType
	}
	policy, err := FindActivePolicy(contribution.PublicationType, subType, asOf)
	if err != nil {
		return err
	}

	var firstPct, correspondingPct float64
	if policy != nil {
		if policy.FirstAuthorPct != nil {
			firstPct = *policy.FirstAuthorPct
		}
		if policy.CorrespondingAuthorPct != nil {
			correspondingPct = *policy.CorrespondingAuthorPct
		}
	}

	facts := make([]AuthorFacts, 0, len(authors))
	for _, a := range authors {
		facts = append(facts, AuthorFacts{AuthorType: a.AuthorType, Category: a.AuthorCategory})
	}
	comp := AnalyzeAuthors(facts, firstPct, correspondingPct)

	now := time.Now()
	var poolAmount, poolPoints int64
	for i := range authors {
		author := &authors[i]
		in := BuildCalculationInput(contribution, author, policy, comp)
		result, err := CalculateOrZero(in)
		if err != nil {
			return err
		}
		if result.TotalPoolAmount > poolAmount {
			poolAmount = result.TotalPoolAmount
			poolPoints = result.TotalPoolPoints
		}

		if err := tx.Model(&models.ContributionAuthor{}).
			Where("author_id = ?", author.AuthorID).
			Updates(map[string]interface{}{
				"incentive_share": result.IncentiveAmount,
				"points_share":    result.Points,
				"update_at":       now,
			}).Error; err != nil {
			return fmt.Errorf("failed to persist author share: %w", err)
		}
	}

	if err := tx.Model(&models.Contribution{}).
		Where("contribution_id = ?", contribution.ContributionID).
		Updates(map[string]interface{}{
			"calculated_incentive_amount": poolAmount,
			"calculated_points":           poolPoints,
			"update_at":                   now,
		}).Error; err != nil {
		return fmt.Errorf("failed to persist pool totals: %w", err)
	}

	contribution.CalculatedIncentiveAmount = poolAmount
	contribution.CalculatedPoints = poolPoints
	return nil
}
