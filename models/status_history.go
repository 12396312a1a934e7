package models

import "time"

// StatusHistory is the append-only audit trail of contribution transitions.
type StatusHistory struct {
	HistoryID      int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	ContributionID int       `gorm:"column:contribution_id" json:"contribution_id"`
	FromStatus     *string   `gorm:"column:from_status" json:"from_status"`
	ToStatus       string    `gorm:"column:to_status" json:"to_status"`
	ChangedBy      int       `gorm:"column:changed_by" json:"changed_by"`
	Comments       *string   `gorm:"column:comments" json:"comments"`
	Notes          *string   `gorm:"column:notes" json:"notes"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (StatusHistory) TableName() string {
	return "contribution_status_history"
}
