package models

import (
	"strings"
	"time"
)

// Contribution represents one research output travelling through review.
// CalculatedIncentiveAmount and CalculatedPoints always hold the total pool
// for the contribution, never an individual author's slice.
type Contribution struct {
	ContributionID    int    `gorm:"primaryKey;column:contribution_id" json:"contribution_id"`
	ApplicationNumber string `gorm:"column:application_number;unique" json:"application_number"`
	PublicationType   string `gorm:"column:publication_type" json:"publication_type"`
	Status            string `gorm:"column:status" json:"status"`
	Title             string `gorm:"column:title" json:"title"`

	ApplicantID         int    `gorm:"column:applicant_id" json:"applicant_id"`
	ApplicantAuthorType string `gorm:"column:applicant_author_type" json:"applicant_author_type"`
	ApplicantPosition   *int   `gorm:"column:applicant_position" json:"applicant_position,omitempty"`
	SchoolID            *int   `gorm:"column:school_id" json:"school_id,omitempty"`

	// Journal / research paper metadata
	JournalName             string   `gorm:"column:journal_name" json:"journal_name"`
	Quartile                *string  `gorm:"column:quartile" json:"quartile,omitempty"`
	SJR                     *float64 `gorm:"column:sjr" json:"sjr,omitempty"`
	NaasRating              *float64 `gorm:"column:naas_rating" json:"naas_rating,omitempty"`
	ImpactFactor            *float64 `gorm:"column:impact_factor" json:"impact_factor,omitempty"`
	SubsidiaryImpactFactor  *float64 `gorm:"column:subsidiary_impact_factor" json:"subsidiary_impact_factor,omitempty"`
	IndexingCategories      string   `gorm:"column:indexing_categories" json:"indexing_categories"` // comma separated
	PublicationDate         *time.Time `gorm:"column:publication_date" json:"publication_date,omitempty"`

	// Book / book chapter metadata
	BookType     *string `gorm:"column:book_type" json:"book_type,omitempty"`
	BookIndexing *string `gorm:"column:book_indexing" json:"book_indexing,omitempty"`

	// Conference metadata
	ConferenceSubType    *string `gorm:"column:conference_subtype" json:"conference_subtype,omitempty"`
	ProceedingsQuartile  *string `gorm:"column:proceedings_quartile" json:"proceedings_quartile,omitempty"`
	IsInternationalEvent bool    `gorm:"column:is_international_event" json:"is_international_event"`
	BestPaperAward       *string `gorm:"column:best_paper_award" json:"best_paper_award,omitempty"` // "yes"|"no"

	// IPR metadata
	IPRType             *string `gorm:"column:ipr_type" json:"ipr_type,omitempty"`
	FilingType          *string `gorm:"column:filing_type" json:"filing_type,omitempty"`
	ProjectType         *string `gorm:"column:project_type" json:"project_type,omitempty"`
	GovtApplicationID   *string `gorm:"column:govt_application_id" json:"govt_application_id,omitempty"`
	IPRPublicationID    *string `gorm:"column:ipr_publication_id" json:"ipr_publication_id,omitempty"`

	// Pool totals from the incentive engine
	CalculatedIncentiveAmount int64 `gorm:"column:calculated_incentive_amount" json:"calculated_incentive_amount"`
	CalculatedPoints          int64 `gorm:"column:calculated_points" json:"calculated_points"`

	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt    time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt    time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Applicant *User                `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	Authors   []ContributionAuthor `gorm:"foreignKey:ContributionID" json:"authors,omitempty"`
}

func (Contribution) TableName() string {
	return "contributions"
}

// IndexingCategoryList splits the stored CSV into trimmed category keys.
func (c *Contribution) IndexingCategoryList() []string {
	if strings.TrimSpace(c.IndexingCategories) == "" {
		return nil
	}
	parts := strings.Split(c.IndexingCategories, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// IsTerminal reports whether the contribution can no longer transition.
func (c *Contribution) IsTerminal() bool {
	switch c.Status {
	case StatusCompleted, StatusRejected, StatusDRDRejected, StatusGovtRejected, StatusDeanRejected:
		return true
	}
	return false
}
