package models

import "time"

// Teacher represents an examiner record. The ID is the institutional code
// assigned by the university and never changes after registration.
type Teacher struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Designation string    `db:"designation" json:"designation"`
	Department  string    `db:"department" json:"department"`
	MobileNo    *string   `db:"mobile_no" json:"mobile_no,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search     string
	Department string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
