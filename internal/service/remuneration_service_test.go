package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	"github.com/noah-isme/exam-remuneration-api/internal/rates"
	appErrors "github.com/noah-isme/exam-remuneration-api/pkg/errors"
)

func newRemunerationFixture(t *testing.T) (*RemunerationService, *mockClaimRepo, *mockReportCache) {
	t.Helper()
	teachers := newMockTeacherRepo(
		models.Teacher{ID: "T-014", Name: "Dr. Rahim Uddin", Designation: "Professor", Department: "CSE"},
		models.Teacher{ID: "T-021", Name: "Dr. Salma Khatun", Designation: "Associate Professor", Department: "CSE"},
	)
	semesters := newMockSemesterRepo(
		models.ExamSemester{ID: 7, Year: 2025, SemesterName: "Spring"},
	)
	courses := newMockCourseRepo("CSE-101", "CSE-102", "CSE-103")
	claims := newMockClaimRepo(teachers, semesters)
	cache := &mockReportCache{}
	svc := NewRemunerationService(claims, teachers, semesters, courses, cache, rates.Default(), 0, nil, nil)
	return svc, claims, cache
}

func sampleSet() models.ClaimSet {
	return models.ClaimSet{
		QuestionPreparations: []models.QuestionPreparation{
			{CourseCode: "CSE-101", SectionType: models.SectionFull},
		},
		ScriptEvaluations: []models.ScriptEvaluation{
			{CourseCode: "CSE-101", ScriptType: models.ScriptFinal, ScriptCount: 20},
		},
	}
}

func TestSubmitStoresSetAndComputesTotal(t *testing.T) {
	svc, claims, _ := newRemunerationFixture(t)

	scope, err := svc.Submit(context.Background(), "T-014", 7, sampleSet())
	require.NoError(t, err)
	assert.Equal(t, 800.0, scope.TotalAmount)
	assert.Len(t, claims.scopes[scopeKey{"T-014", 7}].QuestionPreparations, 1)
}

func TestSubmitReplacesPreviousSet(t *testing.T) {
	svc, claims, _ := newRemunerationFixture(t)

	_, err := svc.Submit(context.Background(), "T-014", 7, sampleSet())
	require.NoError(t, err)

	replacement := models.ClaimSet{
		VivaExams: []models.VivaExam{{CourseCode: "CSE-102", StudentCount: 30}},
	}
	scope, err := svc.Submit(context.Background(), "T-014", 7, replacement)
	require.NoError(t, err)

	stored := claims.scopes[scopeKey{"T-014", 7}]
	assert.Empty(t, stored.QuestionPreparations)
	assert.Len(t, stored.VivaExams, 1)
	assert.Equal(t, 300.0, scope.TotalAmount)
}

func TestSubmitEmptySetClearsScope(t *testing.T) {
	svc, claims, _ := newRemunerationFixture(t)

	_, err := svc.Submit(context.Background(), "T-014", 7, sampleSet())
	require.NoError(t, err)

	scope, err := svc.Submit(context.Background(), "T-014", 7, models.ClaimSet{})
	require.NoError(t, err)
	assert.True(t, claims.scopes[scopeKey{"T-014", 7}].Empty())
	assert.Equal(t, 0.0, scope.TotalAmount)
}

func TestSubmitUnknownTeacher(t *testing.T) {
	svc, _, _ := newRemunerationFixture(t)

	_, err := svc.Submit(context.Background(), "T-999", 7, sampleSet())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSubmitUnknownCourseReportsAllMissing(t *testing.T) {
	svc, claims, _ := newRemunerationFixture(t)

	set := models.ClaimSet{
		VivaExams: []models.VivaExam{
			{CourseCode: "CSE-999", StudentCount: 10},
			{CourseCode: "CSE-101", StudentCount: 10},
		},
		Tabulations: []models.Tabulation{
			{CourseCode: "CSE-888", StudentCount: 10},
		},
	}
	_, err := svc.Submit(context.Background(), "T-014", 7, set)
	require.Error(t, err)

	var unresolved *UnresolvedReferencesError
	require.True(t, errors.As(err, &unresolved))
	assert.ElementsMatch(t, []string{"CSE-999", "CSE-888"}, unresolved.MissingCourses)
	assert.True(t, claims.scopes[scopeKey{"T-014", 7}].Empty())
}

func TestSubmitStorageFailureMapsToTransactionError(t *testing.T) {
	svc, claims, _ := newRemunerationFixture(t)
	claims.replaceErr = errors.New("connection reset")

	_, err := svc.Submit(context.Background(), "T-014", 7, sampleSet())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrTransaction.Code, appErr.Code)
}

func TestSubmitInvalidSectionType(t *testing.T) {
	svc, _, _ := newRemunerationFixture(t)

	set := models.ClaimSet{
		QuestionPreparations: []models.QuestionPreparation{
			{CourseCode: "CSE-101", SectionType: "Quarter"},
		},
	}
	_, err := svc.Submit(context.Background(), "T-014", 7, set)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSubmitInvalidatesReportCache(t *testing.T) {
	svc, _, cache := newRemunerationFixture(t)

	_, err := svc.Submit(context.Background(), "T-014", 7, sampleSet())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.deletes)
}

func TestGetUnknownSemester(t *testing.T) {
	svc, _, _ := newRemunerationFixture(t)

	_, err := svc.Get(context.Background(), "T-014", 99)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCumulativeReportIncludesOnlyActiveTeachers(t *testing.T) {
	svc, _, cache := newRemunerationFixture(t)

	_, err := svc.Submit(context.Background(), "T-014", 7, sampleSet())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "T-021", 7, models.ClaimSet{
		Tabulations: []models.Tabulation{{CourseCode: "CSE-103", StudentCount: 40}},
	})
	require.NoError(t, err)

	entries, err := svc.CumulativeReport(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	totals := map[string]float64{}
	for _, entry := range entries {
		totals[entry.Teacher.ID] = entry.TotalAmount
	}
	assert.Equal(t, 800.0, totals["T-014"])
	assert.Equal(t, 200.0, totals["T-021"])
	assert.Contains(t, cache.entries, "report:cumulative:7")
}

func TestGetAllForTeacherReturnsHistory(t *testing.T) {
	svc, claims, _ := newRemunerationFixture(t)
	claims.semesters.semesters[8] = models.ExamSemester{ID: 8, Year: 2025, SemesterName: "Fall"}

	_, err := svc.Submit(context.Background(), "T-014", 7, sampleSet())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "T-014", 8, models.ClaimSet{
		VivaExams: []models.VivaExam{{CourseCode: "CSE-101", StudentCount: 5}},
	})
	require.NoError(t, err)

	history, err := svc.GetAllForTeacher(context.Background(), "T-014")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
