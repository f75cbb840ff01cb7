package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
)

// SemesterRepository manages persistence for exam semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs a SemesterRepository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

const semesterColumns = "id, year, semester_name, exam_start_date, exam_end_date, result_publish_date, chairman_id, created_at, updated_at"

// List returns all exam semesters, most recent first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.ExamSemester, error) {
	query := fmt.Sprintf("SELECT %s FROM exam_semesters ORDER BY year DESC, semester_name ASC", semesterColumns)
	var semesters []models.ExamSemester
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// FindByID fetches an exam semester by ID.
func (r *SemesterRepository) FindByID(ctx context.Context, id int64) (*models.ExamSemester, error) {
	query := fmt.Sprintf("SELECT %s FROM exam_semesters WHERE id = $1", semesterColumns)
	var semester models.ExamSemester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindByYearAndName fetches the exam semester for a (year, name) pair.
func (r *SemesterRepository) FindByYearAndName(ctx context.Context, year int, name string) (*models.ExamSemester, error) {
	query := fmt.Sprintf("SELECT %s FROM exam_semesters WHERE year = $1 AND semester_name = $2", semesterColumns)
	var semester models.ExamSemester
	if err := r.db.GetContext(ctx, &semester, query, year, name); err != nil {
		return nil, err
	}
	return &semester, nil
}

// Create inserts an exam semester and fills in the generated ID.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.ExamSemester) error {
	const query = `INSERT INTO exam_semesters (year, semester_name, exam_start_date, exam_end_date, result_publish_date, chairman_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id`
	if err := r.db.GetContext(ctx, &semester.ID, query,
		semester.Year, semester.SemesterName,
		semester.ExamStartDate, semester.ExamEndDate, semester.ResultPublishDate,
		semester.ChairmanID,
	); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	return nil
}
