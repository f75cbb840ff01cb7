package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
)

// ClaimRepository persists the eight claim item kinds. All writes go through
// ReplaceForScope so a (teacher, semester) scope is always a complete set.
type ClaimRepository struct {
	db *sqlx.DB
}

// NewClaimRepository constructs a ClaimRepository.
func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// claimTables maps each claim kind to its table, in delete order.
var claimTables = map[models.ClaimKind]string{
	models.KindQuestionPreparation: "question_preparations",
	models.KindQuestionModeration:  "question_moderations",
	models.KindScriptEvaluation:    "script_evaluations",
	models.KindPracticalExam:       "practical_exams",
	models.KindVivaExam:            "viva_exams",
	models.KindTabulation:          "tabulations",
	models.KindAnswerSheetReview:   "answer_sheet_reviews",
	models.KindOtherRemuneration:   "other_remunerations",
}

// ReplaceForScope atomically replaces every claim item for the scope with the
// given set. All eight tables are cleared even when the incoming set has no
// items of that kind; on any failure the scope is left untouched.
func (r *ClaimRepository) ReplaceForScope(ctx context.Context, teacherID string, semesterID int64, set models.ClaimSet) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}

	for _, kind := range models.AllClaimKinds {
		query := fmt.Sprintf("DELETE FROM %s WHERE teacher_id = $1 AND exam_semester_id = $2", claimTables[kind])
		if _, err := tx.ExecContext(ctx, query, teacherID, semesterID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("clear %s: %w", claimTables[kind], err)
		}
	}

	if err := insertClaimSet(ctx, tx, teacherID, semesterID, set); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func insertClaimSet(ctx context.Context, tx *sqlx.Tx, teacherID string, semesterID int64, set models.ClaimSet) error {
	for i := range set.QuestionPreparations {
		item := set.QuestionPreparations[i]
		item.ID = uuid.NewString()
		item.TeacherID = teacherID
		item.SemesterID = semesterID
		const query = `INSERT INTO question_preparations (id, teacher_id, exam_semester_id, course_code, section_type)
            VALUES (:id, :teacher_id, :exam_semester_id, :course_code, :section_type)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert question preparation: %w", err)
		}
	}
	for i := range set.QuestionModerations {
		item := set.QuestionModerations[i]
		item.ID = uuid.NewString()
		item.TeacherID = teacherID
		item.SemesterID = semesterID
		const query = `INSERT INTO question_moderations (id, teacher_id, exam_semester_id, course_code, question_count, team_member_count)
            VALUES (:id, :teacher_id, :exam_semester_id, :course_code, :question_count, :team_member_count)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert question moderation: %w", err)
		}
	}
	for i := range set.ScriptEvaluations {
		item := set.ScriptEvaluations[i]
		item.ID = uuid.NewString()
		item.TeacherID = teacherID
		item.SemesterID = semesterID
		const query = `INSERT INTO script_evaluations (id, teacher_id, exam_semester_id, course_code, script_type, script_count)
            VALUES (:id, :teacher_id, :exam_semester_id, :course_code, :script_type, :script_count)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert script evaluation: %w", err)
		}
	}
	for i := range set.PracticalExams {
		item := set.PracticalExams[i]
		item.ID = uuid.NewString()
		item.TeacherID = teacherID
		item.SemesterID = semesterID
		const query = `INSERT INTO practical_exams (id, teacher_id, exam_semester_id, course_code, student_count, day_count)
            VALUES (:id, :teacher_id, :exam_semester_id, :course_code, :student_count, :day_count)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert practical exam: %w", err)
		}
	}
	for i := range set.VivaExams {
		item := set.VivaExams[i]
		item.ID = uuid.NewString()
		item.TeacherID = teacherID
		item.SemesterID = semesterID
		const query = `INSERT INTO viva_exams (id, teacher_id, exam_semester_id, course_code, student_count)
            VALUES (:id, :teacher_id, :exam_semester_id, :course_code, :student_count)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert viva exam: %w", err)
		}
	}
	for i := range set.Tabulations {
		item := set.Tabulations[i]
		item.ID = uuid.NewString()
		item.TeacherID = teacherID
		item.SemesterID = semesterID
		const query = `INSERT INTO tabulations (id, teacher_id, exam_semester_id, course_code, student_count)
            VALUES (:id, :teacher_id, :exam_semester_id, :course_code, :student_count)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert tabulation: %w", err)
		}
	}
	for i := range set.AnswerSheetReviews {
		item := set.AnswerSheetReviews[i]
		item.ID = uuid.NewString()
		item.TeacherID = teacherID
		item.SemesterID = semesterID
		const query = `INSERT INTO answer_sheet_reviews (id, teacher_id, exam_semester_id, course_code, answer_sheet_count)
            VALUES (:id, :teacher_id, :exam_semester_id, :course_code, :answer_sheet_count)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert answer sheet review: %w", err)
		}
	}
	for i := range set.OtherRemunerations {
		item := set.OtherRemunerations[i]
		item.ID = uuid.NewString()
		item.TeacherID = teacherID
		item.SemesterID = semesterID
		const query = `INSERT INTO other_remunerations (id, teacher_id, exam_semester_id, remuneration_type, details, page_count)
            VALUES (:id, :teacher_id, :exam_semester_id, :remuneration_type, :details, :page_count)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert other remuneration: %w", err)
		}
	}
	return nil
}

// FindByScope loads the full claim set for a (teacher, semester) scope.
func (r *ClaimRepository) FindByScope(ctx context.Context, teacherID string, semesterID int64) (models.ClaimSet, error) {
	var set models.ClaimSet
	queries := []struct {
		query string
		dest  interface{}
	}{
		{"SELECT id, teacher_id, exam_semester_id, course_code, section_type FROM question_preparations WHERE teacher_id = $1 AND exam_semester_id = $2 ORDER BY course_code", &set.QuestionPreparations},
		{"SELECT id, teacher_id, exam_semester_id, course_code, question_count, team_member_count FROM question_moderations WHERE teacher_id = $1 AND exam_semester_id = $2 ORDER BY course_code", &set.QuestionModerations},
		{"SELECT id, teacher_id, exam_semester_id, course_code, script_type, script_count FROM script_evaluations WHERE teacher_id = $1 AND exam_semester_id = $2 ORDER BY course_code", &set.ScriptEvaluations},
		{"SELECT id, teacher_id, exam_semester_id, course_code, student_count, day_count FROM practical_exams WHERE teacher_id = $1 AND exam_semester_id = $2 ORDER BY course_code", &set.PracticalExams},
		{"SELECT id, teacher_id, exam_semester_id, course_code, student_count FROM viva_exams WHERE teacher_id = $1 AND exam_semester_id = $2 ORDER BY course_code", &set.VivaExams},
		{"SELECT id, teacher_id, exam_semester_id, course_code, student_count FROM tabulations WHERE teacher_id = $1 AND exam_semester_id = $2 ORDER BY course_code", &set.Tabulations},
		{"SELECT id, teacher_id, exam_semester_id, course_code, answer_sheet_count FROM answer_sheet_reviews WHERE teacher_id = $1 AND exam_semester_id = $2 ORDER BY course_code", &set.AnswerSheetReviews},
		{"SELECT id, teacher_id, exam_semester_id, remuneration_type, details, page_count FROM other_remunerations WHERE teacher_id = $1 AND exam_semester_id = $2 ORDER BY remuneration_type", &set.OtherRemunerations},
	}
	for _, q := range queries {
		if err := r.db.SelectContext(ctx, q.dest, q.query, teacherID, semesterID); err != nil {
			return models.ClaimSet{}, fmt.Errorf("load claim set: %w", err)
		}
	}
	return set, nil
}

// TeachersWithActivity returns teachers holding at least one claim item in
// the semester, ordered by name.
func (r *ClaimRepository) TeachersWithActivity(ctx context.Context, semesterID int64) ([]models.Teacher, error) {
	const query = `SELECT id, name, designation, department, mobile_no, created_at, updated_at FROM teachers
        WHERE id IN (
            SELECT teacher_id FROM question_preparations WHERE exam_semester_id = $1
            UNION SELECT teacher_id FROM question_moderations WHERE exam_semester_id = $1
            UNION SELECT teacher_id FROM script_evaluations WHERE exam_semester_id = $1
            UNION SELECT teacher_id FROM practical_exams WHERE exam_semester_id = $1
            UNION SELECT teacher_id FROM viva_exams WHERE exam_semester_id = $1
            UNION SELECT teacher_id FROM tabulations WHERE exam_semester_id = $1
            UNION SELECT teacher_id FROM answer_sheet_reviews WHERE exam_semester_id = $1
            UNION SELECT teacher_id FROM other_remunerations WHERE exam_semester_id = $1
        )
        ORDER BY name`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, semesterID); err != nil {
		return nil, fmt.Errorf("teachers with activity: %w", err)
	}
	return teachers, nil
}

// SemestersWithActivity returns semesters where the teacher holds at least
// one claim item, most recent first.
func (r *ClaimRepository) SemestersWithActivity(ctx context.Context, teacherID string) ([]models.ExamSemester, error) {
	const query = `SELECT id, year, semester_name, exam_start_date, exam_end_date, result_publish_date, chairman_id, created_at, updated_at FROM exam_semesters
        WHERE id IN (
            SELECT exam_semester_id FROM question_preparations WHERE teacher_id = $1
            UNION SELECT exam_semester_id FROM question_moderations WHERE teacher_id = $1
            UNION SELECT exam_semester_id FROM script_evaluations WHERE teacher_id = $1
            UNION SELECT exam_semester_id FROM practical_exams WHERE teacher_id = $1
            UNION SELECT exam_semester_id FROM viva_exams WHERE teacher_id = $1
            UNION SELECT exam_semester_id FROM tabulations WHERE teacher_id = $1
            UNION SELECT exam_semester_id FROM answer_sheet_reviews WHERE teacher_id = $1
            UNION SELECT exam_semester_id FROM other_remunerations WHERE teacher_id = $1
        )
        ORDER BY year DESC, semester_name ASC`
	var semesters []models.ExamSemester
	if err := r.db.SelectContext(ctx, &semesters, query, teacherID); err != nil {
		return nil, fmt.Errorf("semesters with activity: %w", err)
	}
	return semesters, nil
}
