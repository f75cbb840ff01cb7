package models

import "time"

// ExamSemester represents one examination period. The (year, semester_name)
// pair is unique.
type ExamSemester struct {
	ID                int64      `db:"id" json:"id"`
	Year              int        `db:"year" json:"year"`
	SemesterName      string     `db:"semester_name" json:"semester_name"`
	ExamStartDate     *time.Time `db:"exam_start_date" json:"exam_start_date,omitempty"`
	ExamEndDate       *time.Time `db:"exam_end_date" json:"exam_end_date,omitempty"`
	ResultPublishDate *time.Time `db:"result_publish_date" json:"result_publish_date,omitempty"`
	ChairmanID        *string    `db:"chairman_id" json:"chairman_id,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}
