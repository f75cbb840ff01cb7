package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	"github.com/noah-isme/exam-remuneration-api/internal/rates"
	appErrors "github.com/noah-isme/exam-remuneration-api/pkg/errors"
)

func buildWorkbook(t *testing.T, examinerRows, labRows [][]interface{}) *bytes.Reader {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close() //nolint:errcheck

	require.NoError(t, book.SetSheetName("Sheet1", "Examiners"))
	_, err := book.NewSheet("LabCourses")
	require.NoError(t, err)

	examinerHeaders := []interface{}{
		"Course", "1st Examiner", "1st Examiner Count", "2nd Examiner", "2nd Examiner Count",
		"3rd Examiner", "3rd Examiner Count", "Question Typed By", "Pages in Question",
	}
	require.NoError(t, book.SetSheetRow("Examiners", "A1", &examinerHeaders))
	for i, row := range examinerRows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow("Examiners", cell, &row))
	}

	labHeaders := []interface{}{"Lab Name", "Total Students", "1st", "2nd", "3rd", "4th"}
	require.NoError(t, book.SetSheetRow("LabCourses", "A1", &labHeaders))
	for i, row := range labRows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow("LabCourses", cell, &row))
	}

	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func newImportFixture(t *testing.T) (*ImportService, *RemunerationService, *mockClaimRepo) {
	t.Helper()
	teachers := newMockTeacherRepo(
		models.Teacher{ID: "T-014", Name: "Dr. Rahim Uddin", Designation: "Professor", Department: "CSE"},
		models.Teacher{ID: "T-021", Name: "Dr. Salma Khatun", Designation: "Associate Professor", Department: "CSE"},
	)
	semesters := newMockSemesterRepo(models.ExamSemester{ID: 7, Year: 2025, SemesterName: "Spring"})
	courses := newMockCourseRepo("CSE-101", "CSE-102")
	claims := newMockClaimRepo(teachers, semesters)
	remunerations := NewRemunerationService(claims, teachers, semesters, courses, nil, rates.Default(), 0, nil, nil)
	importer := NewImportService(teachers, courses, semesters, remunerations, DefaultWorkbookLayout(), nil)
	return importer, remunerations, claims
}

func TestProcessWorkbookProducesDrafts(t *testing.T) {
	importer, _, _ := newImportFixture(t)

	workbook := buildWorkbook(t,
		[][]interface{}{
			{"CSE-101 Structured Programming", "Rahim Uddin", 40, "Salma Khatun", 40, "", "", "Rahim Uddin", 12},
		},
		[][]interface{}{
			{"CSE-102 Programming Lab", 35, "Salma Khatun", "", "", ""},
		},
	)

	result, err := importer.ProcessWorkbook(context.Background(), workbook, 7, false)
	require.NoError(t, err)
	assert.Equal(t, ImportStatusValidated, result.Status)
	require.Len(t, result.Drafts, 2)

	byID := map[string]models.TeacherClaimDraft{}
	for _, draft := range result.Drafts {
		byID[draft.TeacherID] = draft
	}

	rahim := byID["T-014"]
	require.Len(t, rahim.Items.QuestionPreparations, 1)
	assert.Equal(t, "CSE-101", rahim.Items.QuestionPreparations[0].CourseCode)
	assert.Equal(t, models.SectionFull, rahim.Items.QuestionPreparations[0].SectionType)
	require.Len(t, rahim.Items.ScriptEvaluations, 1)
	assert.Equal(t, 40, rahim.Items.ScriptEvaluations[0].ScriptCount)
	require.Len(t, rahim.Items.OtherRemunerations, 1)
	require.NotNil(t, rahim.Items.OtherRemunerations[0].PageCount)
	assert.Equal(t, 12, *rahim.Items.OtherRemunerations[0].PageCount)

	salma := byID["T-021"]
	require.Len(t, salma.Items.PracticalExams, 1)
	assert.Equal(t, 35, salma.Items.PracticalExams[0].StudentCount)
	assert.Equal(t, 1, salma.Items.PracticalExams[0].DayCount)
}

func TestProcessWorkbookRejectsUnknownNames(t *testing.T) {
	importer, _, claims := newImportFixture(t)

	workbook := buildWorkbook(t,
		[][]interface{}{
			{"CSE-999 Unknown Course", "Rahim Uddin", 40, "Prof. Nobody", 40, "", "", "", ""},
			{"CSE-101 Structured Programming", "Another Stranger", 10, "", "", "", "", "", ""},
		},
		nil,
	)

	result, err := importer.ProcessWorkbook(context.Background(), workbook, 7, true)
	require.NoError(t, err)
	assert.Equal(t, ImportStatusRejected, result.Status)
	assert.ElementsMatch(t, []string{"Prof. Nobody", "Another Stranger"}, result.MissingTeachers)
	assert.ElementsMatch(t, []string{"CSE-999"}, result.MissingCourses)
	assert.Empty(t, result.Drafts)
	assert.Empty(t, claims.scopes)
}

func TestProcessWorkbookApplyStoresSets(t *testing.T) {
	importer, _, claims := newImportFixture(t)

	workbook := buildWorkbook(t,
		[][]interface{}{
			{"CSE-101 Structured Programming", "Rahim Uddin", 40, "", "", "", "", "", ""},
		},
		nil,
	)

	result, err := importer.ProcessWorkbook(context.Background(), workbook, 7, true)
	require.NoError(t, err)
	assert.Equal(t, ImportStatusApplied, result.Status)

	stored := claims.scopes[scopeKey{"T-014", 7}]
	assert.Len(t, stored.QuestionPreparations, 1)
	assert.Len(t, stored.ScriptEvaluations, 1)
}

func TestProcessWorkbookZeroCountExaminerStillPreparesQuestions(t *testing.T) {
	importer, _, _ := newImportFixture(t)

	workbook := buildWorkbook(t,
		[][]interface{}{
			{"CSE-101 Structured Programming", "Rahim Uddin", 0, "", "", "Salma Khatun", 0, "Rahim Uddin", 0},
		},
		nil,
	)

	result, err := importer.ProcessWorkbook(context.Background(), workbook, 7, false)
	require.NoError(t, err)
	assert.Equal(t, ImportStatusValidated, result.Status)
	require.Len(t, result.Drafts, 1)

	draft := result.Drafts[0]
	assert.Equal(t, "T-014", draft.TeacherID)
	require.Len(t, draft.Items.QuestionPreparations, 1)
	assert.Equal(t, "CSE-101", draft.Items.QuestionPreparations[0].CourseCode)
	assert.Equal(t, models.SectionFull, draft.Items.QuestionPreparations[0].SectionType)
	assert.Empty(t, draft.Items.ScriptEvaluations)
	assert.Empty(t, draft.Items.AnswerSheetReviews)
	assert.Empty(t, draft.Items.OtherRemunerations)
}

func TestProcessWorkbookTreatsBadNumbersAsZero(t *testing.T) {
	importer, _, _ := newImportFixture(t)

	workbook := buildWorkbook(t,
		[][]interface{}{
			{"CSE-101 Structured Programming", "Rahim Uddin", "forty", "", "", "", "", "", ""},
		},
		nil,
	)

	result, err := importer.ProcessWorkbook(context.Background(), workbook, 7, false)
	require.NoError(t, err)
	require.Len(t, result.Drafts, 1)
	assert.Len(t, result.Drafts[0].Items.QuestionPreparations, 1)
	assert.Empty(t, result.Drafts[0].Items.ScriptEvaluations)
}

func TestProcessWorkbookMissingSheet(t *testing.T) {
	importer, _, _ := newImportFixture(t)

	book := excelize.NewFile()
	defer book.Close() //nolint:errcheck
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	_, err = importer.ProcessWorkbook(context.Background(), bytes.NewReader(buf.Bytes()), 7, false)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestProcessWorkbookUnknownSemester(t *testing.T) {
	importer, _, _ := newImportFixture(t)

	workbook := buildWorkbook(t, nil, nil)
	_, err := importer.ProcessWorkbook(context.Background(), workbook, 99, false)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
