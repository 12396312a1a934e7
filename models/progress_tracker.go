package models

import "time"

// ProgressTracker follows a manuscript before it becomes a formal
// contribution. Optionally linked 1:1 to a completed contribution once
// published.
type ProgressTracker struct {
	TrackerID       int     `gorm:"primaryKey;column:tracker_id" json:"tracker_id"`
	OwnerID         int     `gorm:"column:owner_id" json:"owner_id"`
	Title           string  `gorm:"column:title" json:"title"`
	PublicationType string  `gorm:"column:publication_type" json:"publication_type"`
	Status          string  `gorm:"column:status" json:"status"`
	StatusData      string  `gorm:"column:status_data;type:json" json:"status_data"` // type-specific payload, shallow-merged per transition
	ContributionID  *int    `gorm:"column:contribution_id" json:"contribution_id,omitempty"`

	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

func (ProgressTracker) TableName() string {
	return "progress_trackers"
}

// TrackerStatusHistory mirrors StatusHistory for tracker transitions.
type TrackerStatusHistory struct {
	HistoryID  int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	TrackerID  int       `gorm:"column:tracker_id" json:"tracker_id"`
	FromStatus *string   `gorm:"column:from_status" json:"from_status"`
	ToStatus   string    `gorm:"column:to_status" json:"to_status"`
	ChangedBy  int       `gorm:"column:changed_by" json:"changed_by"`
	StatusData *string   `gorm:"column:status_data" json:"status_data"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (TrackerStatusHistory) TableName() string {
	return "tracker_status_history"
}
