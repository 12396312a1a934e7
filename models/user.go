package models

import (
	"time"
)

type User struct {
	UserID     int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname  string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname  string     `gorm:"column:user_lname" json:"user_lname"`
	Email      string     `gorm:"column:email;unique" json:"email"`
	Password   string     `gorm:"column:password" json:"-"`
	RoleID     int        `gorm:"column:role_id" json:"role_id"`
	Category   string     `gorm:"column:category" json:"category"` // internal_faculty|internal_student|...
	SchoolID   *int       `gorm:"column:school_id" json:"school_id,omitempty"`
	MentorID   *int       `gorm:"column:mentor_id" json:"mentor_id,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role   Role    `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	School *School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	Mentor *User   `gorm:"foreignKey:MentorID" json:"mentor,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"` // applicant|mentor|drd_member|drd_head|admin|finance
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type School struct {
	SchoolID   int        `gorm:"primaryKey;column:school_id" json:"school_id"`
	SchoolName string     `gorm:"column:school_name" json:"school_name"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// DRDSchoolAssignment scopes a DRD member's review queue to specific schools.
// DRD heads are not assigned; they see everything.
type DRDSchoolAssignment struct {
	AssignmentID int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	UserID       int        `gorm:"column:user_id" json:"user_id"`
	SchoolID     int        `gorm:"column:school_id" json:"school_id"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (School) TableName() string {
	return "schools"
}

func (DRDSchoolAssignment) TableName() string {
	return "drd_school_assignments"
}

// FullName joins first and last name for notification messages.
func (u *User) FullName() string {
	return u.UserFname + " " + u.UserLname
}

// IsStudent reports whether the user is an internal student (mentor-gated flows).
func (u *User) IsStudent() bool {
	return IsStudentCategory(u.Category)
}
