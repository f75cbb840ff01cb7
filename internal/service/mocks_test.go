package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	appErrors "github.com/noah-isme/exam-remuneration-api/pkg/errors"
)

type mockTeacherRepo struct {
	teachers map[string]models.Teacher
}

func newMockTeacherRepo(teachers ...models.Teacher) *mockTeacherRepo {
	repo := &mockTeacherRepo{teachers: make(map[string]models.Teacher)}
	for _, t := range teachers {
		repo.teachers[t.ID] = t
	}
	return repo
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	var result []models.Teacher
	for _, t := range m.teachers {
		result = append(result, t)
	}
	return result, len(result), nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindByName(ctx context.Context, name string) (*models.Teacher, error) {
	for _, t := range m.teachers {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(strings.TrimSpace(name))) {
			match := t
			return &match, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	if _, ok := m.teachers[teacher.ID]; !ok {
		return sql.ErrNoRows
	}
	m.teachers[teacher.ID] = *teacher
	return nil
}

type mockCourseRepo struct {
	courses map[string]models.Course
}

func newMockCourseRepo(codes ...string) *mockCourseRepo {
	repo := &mockCourseRepo{courses: make(map[string]models.Course)}
	for _, code := range codes {
		repo.courses[code] = models.Course{CourseCode: code, CourseTitle: code, Credits: 3, Department: "CSE"}
	}
	return repo
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var result []models.Course
	for _, c := range m.courses {
		result = append(result, c)
	}
	return result, len(result), nil
}

func (m *mockCourseRepo) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	if c, ok := m.courses[strings.TrimSpace(code)]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	m.courses[course.CourseCode] = *course
	return nil
}

type mockSemesterRepo struct {
	semesters map[int64]models.ExamSemester
}

func newMockSemesterRepo(semesters ...models.ExamSemester) *mockSemesterRepo {
	repo := &mockSemesterRepo{semesters: make(map[int64]models.ExamSemester)}
	for _, s := range semesters {
		repo.semesters[s.ID] = s
	}
	return repo
}

func (m *mockSemesterRepo) List(ctx context.Context) ([]models.ExamSemester, error) {
	var result []models.ExamSemester
	for _, s := range m.semesters {
		result = append(result, s)
	}
	return result, nil
}

func (m *mockSemesterRepo) FindByID(ctx context.Context, id int64) (*models.ExamSemester, error) {
	if s, ok := m.semesters[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSemesterRepo) FindByYearAndName(ctx context.Context, year int, name string) (*models.ExamSemester, error) {
	for _, s := range m.semesters {
		if s.Year == year && s.SemesterName == name {
			match := s
			return &match, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSemesterRepo) Create(ctx context.Context, semester *models.ExamSemester) error {
	semester.ID = int64(len(m.semesters) + 1)
	m.semesters[semester.ID] = *semester
	return nil
}

type scopeKey struct {
	teacherID  string
	semesterID int64
}

type mockClaimRepo struct {
	scopes     map[scopeKey]models.ClaimSet
	teachers   *mockTeacherRepo
	semesters  *mockSemesterRepo
	replaceErr error
}

func newMockClaimRepo(teachers *mockTeacherRepo, semesters *mockSemesterRepo) *mockClaimRepo {
	return &mockClaimRepo{
		scopes:    make(map[scopeKey]models.ClaimSet),
		teachers:  teachers,
		semesters: semesters,
	}
}

func (m *mockClaimRepo) ReplaceForScope(ctx context.Context, teacherID string, semesterID int64, set models.ClaimSet) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.scopes[scopeKey{teacherID, semesterID}] = set
	return nil
}

func (m *mockClaimRepo) FindByScope(ctx context.Context, teacherID string, semesterID int64) (models.ClaimSet, error) {
	return m.scopes[scopeKey{teacherID, semesterID}], nil
}

func (m *mockClaimRepo) TeachersWithActivity(ctx context.Context, semesterID int64) ([]models.Teacher, error) {
	var result []models.Teacher
	for key, set := range m.scopes {
		if key.semesterID != semesterID || set.Empty() {
			continue
		}
		if t, ok := m.teachers.teachers[key.teacherID]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockClaimRepo) SemestersWithActivity(ctx context.Context, teacherID string) ([]models.ExamSemester, error) {
	var result []models.ExamSemester
	for key, set := range m.scopes {
		if key.teacherID != teacherID || set.Empty() {
			continue
		}
		if s, ok := m.semesters.semesters[key.semesterID]; ok {
			result = append(result, s)
		}
	}
	return result, nil
}

type mockReportCache struct {
	entries map[string][]byte
	deletes int
}

func (m *mockReportCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *mockReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = []byte("set")
	return nil
}

func (m *mockReportCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deletes++
	return nil
}
