package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
)

func TestClaimRepositoryReplaceForScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	set := models.ClaimSet{
		QuestionPreparations: []models.QuestionPreparation{
			{CourseCode: "CSE-101", SectionType: models.SectionFull},
		},
		VivaExams: []models.VivaExam{
			{CourseCode: "CSE-100", StudentCount: 30},
		},
	}

	mock.ExpectBegin()
	for range models.AllClaimKinds {
		mock.ExpectExec("DELETE FROM").
			WithArgs("T-014", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("INSERT INTO question_preparations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO viva_exams").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceForScope(context.Background(), "T-014", 7, set)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRepositoryReplaceForScopeClearsWithEmptySet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	mock.ExpectBegin()
	for range models.AllClaimKinds {
		mock.ExpectExec("DELETE FROM").
			WithArgs("T-014", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 2))
	}
	mock.ExpectCommit()

	err := repo.ReplaceForScope(context.Background(), "T-014", 7, models.ClaimSet{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRepositoryReplaceForScopeRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	set := models.ClaimSet{
		Tabulations: []models.Tabulation{
			{CourseCode: "CSE-101", StudentCount: 30},
		},
	}

	mock.ExpectBegin()
	for range models.AllClaimKinds {
		mock.ExpectExec("DELETE FROM").
			WithArgs("T-014", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("INSERT INTO tabulations").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceForScope(context.Background(), "T-014", 7, set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert tabulation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRepositoryFindByScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM question_preparations").
		WithArgs("T-014", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "exam_semester_id", "course_code", "section_type"}).
			AddRow("qp-1", "T-014", int64(7), "CSE-101", "Full"))
	mock.ExpectQuery("SELECT (.+) FROM question_moderations").
		WithArgs("T-014", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "exam_semester_id", "course_code", "question_count", "team_member_count"}))
	mock.ExpectQuery("SELECT (.+) FROM script_evaluations").
		WithArgs("T-014", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "exam_semester_id", "course_code", "script_type", "script_count"}))
	mock.ExpectQuery("SELECT (.+) FROM practical_exams").
		WithArgs("T-014", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "exam_semester_id", "course_code", "student_count", "day_count"}))
	mock.ExpectQuery("SELECT (.+) FROM viva_exams").
		WithArgs("T-014", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "exam_semester_id", "course_code", "student_count"}))
	mock.ExpectQuery("SELECT (.+) FROM tabulations").
		WithArgs("T-014", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "exam_semester_id", "course_code", "student_count"}))
	mock.ExpectQuery("SELECT (.+) FROM answer_sheet_reviews").
		WithArgs("T-014", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "exam_semester_id", "course_code", "answer_sheet_count"}))
	mock.ExpectQuery("SELECT (.+) FROM other_remunerations").
		WithArgs("T-014", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "exam_semester_id", "remuneration_type", "details", "page_count"}))

	set, err := repo.FindByScope(context.Background(), "T-014", 7)
	require.NoError(t, err)
	require.Len(t, set.QuestionPreparations, 1)
	assert.Equal(t, "CSE-101", set.QuestionPreparations[0].CourseCode)
	assert.Empty(t, set.VivaExams)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRepositoryTeachersWithActivity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClaimRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM teachers").
		WithArgs(int64(7)).
		WillReturnRows(teacherRows())

	teachers, err := repo.TeachersWithActivity(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "T-014", teachers[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
