package models

import "time"

// IncentivePolicy is a versioned rule set for one publication type (and
// sub-type for conference/book rows). Rows are append-only once referenced by
// a calculation; superseding means inserting a new row with a later
// effective_from, not editing in place.
type IncentivePolicy struct {
	PolicyID        int     `gorm:"primaryKey;column:policy_id" json:"policy_id"`
	PublicationType string  `gorm:"column:publication_type" json:"publication_type"`
	SubType         *string `gorm:"column:sub_type" json:"sub_type,omitempty"`

	DistributionMethod string `gorm:"column:distribution_method" json:"distribution_method"` // role_based|position_based

	// Role percentages. Mandatory for research-paper policies; the engine
	// fails with a configuration error rather than defaulting them.
	FirstAuthorPct         *float64 `gorm:"column:first_author_pct" json:"first_author_pct,omitempty"`
	CorrespondingAuthorPct *float64 `gorm:"column:corresponding_author_pct" json:"corresponding_author_pct,omitempty"`

	InternationalBonusAmount int64 `gorm:"column:international_bonus_amount" json:"international_bonus_amount"`
	InternationalBonusPoints int64 `gorm:"column:international_bonus_points" json:"international_bonus_points"`
	BestPaperBonusAmount     int64 `gorm:"column:best_paper_bonus_amount" json:"best_paper_bonus_amount"`
	BestPaperBonusPoints     int64 `gorm:"column:best_paper_bonus_points" json:"best_paper_bonus_points"`

	// Flat per-filing amount for the IPR equal-split crediting path.
	FlatAmount int64 `gorm:"column:flat_amount" json:"flat_amount"`
	FlatPoints int64 `gorm:"column:flat_points" json:"flat_points"`

	EffectiveFrom time.Time  `gorm:"column:effective_from" json:"effective_from"`
	EffectiveTo   *time.Time `gorm:"column:effective_to" json:"effective_to,omitempty"`
	IsActive      bool       `gorm:"column:is_active" json:"is_active"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Rates []PolicyRate `gorm:"foreignKey:PolicyID" json:"rates,omitempty"`
}

// Rate kinds for PolicyRate rows.
const (
	RateKindQuartile       = "quartile"        // match_key Q1..Q4
	RateKindSJRRange       = "sjr_range"       // min_value..max_value (nil max = open)
	RateKindNAASBand       = "naas_band"       // min_value..max_value rating band
	RateKindFlatCategory   = "flat_category"   // match_key = indexing category
	RateKindPosition       = "position"        // match_key = "1".."5", amount column holds percentage
	RateKindBookBase       = "book_base"       // match_key authored|edited
	RateKindBookIndexing   = "book_indexing"   // match_key scopus|non_indexed|in_house
	RateKindConferenceFlat = "conference_flat" // match_key "<subtype>:national"|"<subtype>:international"
)

// PolicyRate is one lookup row under a policy: a quartile amount, an SJR
// range, a rating band, a flat category bonus, a position percentage, or a
// book/conference base amount.
type PolicyRate struct {
	RateID   int      `gorm:"primaryKey;column:rate_id" json:"rate_id"`
	PolicyID int      `gorm:"column:policy_id" json:"policy_id"`
	RateKind string   `gorm:"column:rate_kind" json:"rate_kind"`
	MatchKey string   `gorm:"column:match_key" json:"match_key"`
	MinValue *float64 `gorm:"column:min_value" json:"min_value,omitempty"`
	MaxValue *float64 `gorm:"column:max_value" json:"max_value,omitempty"`
	Amount   int64    `gorm:"column:amount" json:"amount"`
	Points   int64    `gorm:"column:points" json:"points"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (IncentivePolicy) TableName() string {
	return "incentive_policies"
}

func (PolicyRate) TableName() string {
	return "policy_rates"
}
