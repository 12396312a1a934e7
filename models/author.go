package models

import "time"

// ContributionAuthor is one contributor row on a contribution. Rows are
// replaced wholesale on create/update and shares are recalculated whenever a
// pool-affecting field changes. External authors always carry zero shares;
// student authors carry zero points regardless of role.
type ContributionAuthor struct {
	AuthorID       int    `gorm:"primaryKey;column:author_id" json:"author_id"`
	ContributionID int    `gorm:"column:contribution_id" json:"contribution_id"`
	AuthorName     string `gorm:"column:author_name" json:"author_name"`
	UserID         *int   `gorm:"column:user_id" json:"user_id,omitempty"`
	AuthorType     string `gorm:"column:author_type" json:"author_type"`
	AuthorPosition *int   `gorm:"column:author_position" json:"author_position,omitempty"`
	IsInternal     bool   `gorm:"column:is_internal" json:"is_internal"`
	AuthorCategory string `gorm:"column:author_category" json:"author_category"`

	IncentiveShare int64 `gorm:"column:incentive_share" json:"incentive_share"`
	PointsShare    int64 `gorm:"column:points_share" json:"points_share"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Linked *User `gorm:"foreignKey:UserID" json:"linked_user,omitempty"`
}

func (ContributionAuthor) TableName() string {
	return "contribution_authors"
}

// IsStudent reports whether this author row is an internal student.
func (a *ContributionAuthor) IsStudent() bool {
	return IsStudentCategory(a.AuthorCategory)
}
