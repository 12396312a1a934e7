package models

import "time"

// ContributionReview is an immutable decision record. Rows are only ever
// appended; corrections happen through new rows, not updates.
type ContributionReview struct {
	ReviewID       int       `gorm:"primaryKey;column:review_id" json:"review_id"`
	ContributionID int       `gorm:"column:contribution_id" json:"contribution_id"`
	ReviewerID     int       `gorm:"column:reviewer_id" json:"reviewer_id"`
	ReviewerRole   string    `gorm:"column:reviewer_role" json:"reviewer_role"`
	ReviewRound    int       `gorm:"column:review_round" json:"review_round"`
	Decision       string    `gorm:"column:decision" json:"decision"` // approved|rejected|changes_required|recommended
	Comments       *string   `gorm:"column:comments" json:"comments"`
	ReviewedAt     time.Time `gorm:"column:reviewed_at" json:"reviewed_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (ContributionReview) TableName() string {
	return "contribution_reviews"
}
