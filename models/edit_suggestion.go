package models

import "time"

// EditSuggestion is a field-level proposed change raised during review.
// Origin is a first-class discriminator (reviewer|mentor); the re-entry
// status after all suggestions resolve depends on it.
type EditSuggestion struct {
	SuggestionID   int     `gorm:"primaryKey;column:suggestion_id" json:"suggestion_id"`
	ContributionID int     `gorm:"column:contribution_id" json:"contribution_id"`
	ProposerID     int     `gorm:"column:proposer_id" json:"proposer_id"`
	Origin         string  `gorm:"column:origin" json:"origin"` // reviewer|mentor
	FieldName      string  `gorm:"column:field_name" json:"field_name"`
	OriginalValue  *string `gorm:"column:original_value" json:"original_value"`
	SuggestedValue string  `gorm:"column:suggested_value" json:"suggested_value"`
	Note           *string `gorm:"column:note" json:"note"`

	Status            string  `gorm:"column:status" json:"status"` // pending|accepted|rejected
	ApplicantResponse *string `gorm:"column:applicant_response" json:"applicant_response"`

	CreateAt   time.Time  `gorm:"column:create_at" json:"create_at"`
	ResolvedAt *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`

	Proposer *User `gorm:"foreignKey:ProposerID" json:"proposer,omitempty"`
}

func (EditSuggestion) TableName() string {
	return "edit_suggestions"
}

// IsResolved reports whether the applicant has already responded.
func (s *EditSuggestion) IsResolved() bool {
	return s.Status != SuggestionPending
}
