package models

import "time"

// Course represents a taught course. The course code is the primary key.
type Course struct {
	CourseCode  string    `db:"course_code" json:"course_code"`
	CourseTitle string    `db:"course_title" json:"course_title"`
	Credits     float64   `db:"credits" json:"credits"`
	Department  string    `db:"department" json:"department"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	Search     string
	Department string
	Page       int
	PageSize   int
}
