package services

import (
	"fmt"
	"research-incentive-api/config"
	"research-incentive-api/models"
	"time"

	"gorm.io/gorm"
)

// VisibleSchoolIDs resolves the school scope for a DRD member's review queue.
// DRD heads are unscoped and see every school (nil return, no filter).
func VisibleSchoolIDs(user *models.User, roleName string) ([]int, error) {
	if roleName == "drd_head" || roleName == "admin" {
		return nil, nil
	}

	var assignments []models.DRDSchoolAssignment
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", user.UserID).
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to load school assignments: %w", err)
	}

	ids := make([]int, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.SchoolID)
	}
	return ids, nil
}

// NeedsDRDPickup reports whether a filing is still waiting for a DRD member
// to take it up. The member's first decision routes it through
// under_drd_review implicitly; every decision edge starts there.
func NeedsDRDPickup(status string) bool {
	return status == models.StatusSubmitted || status == models.StatusResubmitted
}

// EqualSplitShare computes the per-inventor slice of a flat IPR amount:
// amount divided by inventor count, floor-rounded. IPR inventorship carries
// no role weighting, unlike the percentage engine for papers.
func EqualSplitShare(amount int64, inventorCount int) int64 {
	if inventorCount < 1 || amount <= 0 {
		return 0
	}
	return amount / int64(inventorCount)
}

// CreditIPRIncentives splits the flat per-type policy amount equally across
// the filing's inventors inside the caller's transaction. External inventors
// are counted in the denominator but credited zero; students forfeit points
// only. Pool totals are stored on the contribution.
func CreditIPRIncentives(tx *gorm.DB, contribution *models.Contribution) error {
	asOf := time.Now()
	if contribution.PublicationDate != nil {
		asOf = *contribution.PublicationDate
	}

	subType := ""
	if contribution.IPRType != nil {
		subType = *contribution.IPRType
	}
	policy, err := FindActivePolicy(models.PubTypeIPR, subType, asOf)
	if err != nil {
		return err
	}
	if policy == nil {
		return &ConfigurationError{Message: "no IPR incentive policy configured for the filing date"}
	}

	var inventors []models.ContributionAuthor
	if err := tx.Where("contribution_id = ? AND delete_at IS NULL", contribution.ContributionID).
		Find(&inventors).Error; err != nil {
		return fmt.Errorf("failed to load inventors: %w", err)
	}
	if len(inventors) == 0 {
		return &ValidationError{Field: "authors", Message: "an IPR filing needs at least one inventor"}
	}

	amountShare := EqualSplitShare(policy.Flat.Amount, len(inventors))
	pointsShare := EqualSplitShare(policy.Flat.Points, len(inventors))

	now := time.Now()
	for _, inventor := range inventors {
		share := amountShare
		points := pointsShare
		if !inventor.IsInternal {
			share, points = 0, 0
		} else if inventor.IsStudent() {
			points = 0
		}

		if err := tx.Model(&models.ContributionAuthor{}).
			Where("author_id = ?", inventor.AuthorID).
			Updates(map[string]interface{}{
				"incentive_share": share,
				"points_share":    points,
				"update_at":       now,
			}).Error; err != nil {
			return fmt.Errorf("failed to credit inventor share: %w", err)
		}
	}

	if err := tx.Model(&models.Contribution{}).
		Where("contribution_id = ?", contribution.ContributionID).
		Updates(map[string]interface{}{
			"calculated_incentive_amount": policy.Flat.Amount,
			"calculated_points":           policy.Flat.Points,
			"update_at":                   now,
		}).Error; err != nil {
		return fmt.Errorf("failed to persist IPR pool totals: %w", err)
	}

	contribution.CalculatedIncentiveAmount = policy.Flat.Amount
	contribution.CalculatedPoints = policy.Flat.Points
	return nil
}
