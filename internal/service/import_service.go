package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	appErrors "github.com/noah-isme/exam-remuneration-api/pkg/errors"
)

// WorkbookLayout names the sheets and column headers the reconciler reads.
// Header matching is case-insensitive and ignores surrounding whitespace.
type WorkbookLayout struct {
	ExaminerSheet string
	LabSheet      string

	CourseColumn        string
	FirstExaminer       string
	FirstExaminerCount  string
	SecondExaminer      string
	SecondExaminerCount string
	ThirdExaminer       string
	ThirdExaminerCount  string
	TypistColumn        string
	PagesColumn         string

	LabCourseColumn      string
	LabStudentsColumn    string
	LabInstructorColumns []string
}

// DefaultWorkbookLayout matches the workbook template the exam office
// circulates each semester.
func DefaultWorkbookLayout() WorkbookLayout {
	return WorkbookLayout{
		ExaminerSheet:        "Examiners",
		LabSheet:             "LabCourses",
		CourseColumn:         "Course",
		FirstExaminer:        "1st Examiner",
		FirstExaminerCount:   "1st Examiner Count",
		SecondExaminer:       "2nd Examiner",
		SecondExaminerCount:  "2nd Examiner Count",
		ThirdExaminer:        "3rd Examiner",
		ThirdExaminerCount:   "3rd Examiner Count",
		TypistColumn:         "Question Typed By",
		PagesColumn:          "Pages in Question",
		LabCourseColumn:      "Lab Name",
		LabStudentsColumn:    "Total Students",
		LabInstructorColumns: []string{"1st", "2nd", "3rd", "4th"},
	}
}

// Import result statuses.
const (
	ImportStatusValidated = "validated"
	ImportStatusApplied   = "applied"
	ImportStatusRejected  = "rejected"
)

// ImportResult reports the outcome of a workbook run. When rejected, the
// missing lists are complete; no draft is produced and nothing is stored.
type ImportResult struct {
	Status          string                     `json:"status"`
	MissingTeachers []string                   `json:"missing_teachers,omitempty"`
	MissingCourses  []string                   `json:"missing_courses,omitempty"`
	Drafts          []models.TeacherClaimDraft `json:"drafts,omitempty"`
}

type claimSubmitter interface {
	Submit(ctx context.Context, teacherID string, semesterID int64, set models.ClaimSet) (*ScopeRemuneration, error)
}

// ImportService reconciles semester workbooks against the registries and
// turns them into per-teacher claim sets.
type ImportService struct {
	teachers  teacherRepository
	courses   courseRepository
	semesters semesterRepository
	submitter claimSubmitter
	layout    WorkbookLayout
	logger    *zap.Logger
}

// NewImportService constructs the import service.
func NewImportService(teachers teacherRepository, courses courseRepository, semesters semesterRepository, submitter claimSubmitter, layout WorkbookLayout, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if layout.ExaminerSheet == "" {
		layout = DefaultWorkbookLayout()
	}
	return &ImportService{
		teachers:  teachers,
		courses:   courses,
		semesters: semesters,
		submitter: submitter,
		layout:    layout,
		logger:    logger,
	}
}

// ProcessWorkbook runs the full pipeline: load, validate, transform,
// aggregate. Validation is all-or-nothing; a single unknown teacher or
// course rejects the whole workbook with the complete missing lists. With
// apply set, each draft replaces the teacher's stored set for the semester.
func (s *ImportService) ProcessWorkbook(ctx context.Context, r io.Reader, semesterID int64, apply bool) (*ImportResult, error) {
	semester, err := s.semesters.FindByID(ctx, semesterID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable workbook")
	}
	defer book.Close() //nolint:errcheck

	examinerRows, err := s.sheetRows(book, s.layout.ExaminerSheet)
	if err != nil {
		return nil, err
	}
	labRows, err := s.sheetRows(book, s.layout.LabSheet)
	if err != nil {
		return nil, err
	}

	resolver := newNameResolver(s.teachers)

	missingTeachers, err := s.validateTeachers(ctx, resolver, examinerRows, labRows)
	if err != nil {
		return nil, err
	}
	missingCourses, err := s.validateCourses(ctx, examinerRows, labRows)
	if err != nil {
		return nil, err
	}
	if len(missingTeachers) > 0 || len(missingCourses) > 0 {
		return &ImportResult{
			Status:          ImportStatusRejected,
			MissingTeachers: missingTeachers,
			MissingCourses:  missingCourses,
		}, nil
	}

	drafts, err := s.transform(ctx, resolver, examinerRows, labRows, semester)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Status: ImportStatusValidated, Drafts: drafts}
	if !apply {
		return result, nil
	}

	for _, draft := range drafts {
		if _, err := s.submitter.Submit(ctx, draft.TeacherID, semesterID, draft.Items); err != nil {
			return nil, err
		}
	}
	result.Status = ImportStatusApplied
	s.logger.Info("applied workbook import",
		zap.Int64("semester_id", semesterID),
		zap.Int("teachers", len(drafts)))
	return result, nil
}

// sheetRow is one data row keyed by normalized header.
type sheetRow map[string]string

func (row sheetRow) value(column string) string {
	return strings.TrimSpace(row[normalizeHeader(column)])
}

// intValue parses the cell as an integer; anything unparseable counts as
// zero.
func (row sheetRow) intValue(column string) int {
	raw := row.value(column)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

// sheetRows reads a sheet into header-keyed rows. A missing sheet is fatal
// for the whole workbook.
func (s *ImportService) sheetRows(book *excelize.File, sheet string) ([]sheetRow, error) {
	index, err := book.GetSheetIndex(sheet)
	if err != nil || index < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("required sheet %q is missing", sheet))
	}
	raw, err := book.GetRows(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("failed to read sheet %q", sheet))
	}
	if len(raw) < 2 {
		return nil, nil
	}
	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = normalizeHeader(h)
	}
	rows := make([]sheetRow, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(sheetRow, len(headers))
		empty := true
		for i, header := range headers {
			if header == "" || i >= len(cells) {
				continue
			}
			row[header] = cells[i]
			if strings.TrimSpace(cells[i]) != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// courseCode extracts the code from a course cell: the first whitespace
// separated token.
func courseCode(cell string) string {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// nameResolver memoizes teacher lookups by spreadsheet name fragment.
type nameResolver struct {
	repo  teacherRepository
	found map[string]*models.Teacher
}

func newNameResolver(repo teacherRepository) *nameResolver {
	return &nameResolver{repo: repo, found: make(map[string]*models.Teacher)}
}

// resolve returns the registered teacher for a name fragment, nil when no
// registry entry contains it.
func (r *nameResolver) resolve(ctx context.Context, name string) (*models.Teacher, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if teacher, ok := r.found[name]; ok {
		return teacher, nil
	}
	teacher, err := r.repo.FindByName(ctx, name)
	if err != nil {
		if err == sql.ErrNoRows {
			r.found[name] = nil
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up teacher")
	}
	r.found[name] = teacher
	return teacher, nil
}

func (s *ImportService) teacherNameColumns() []string {
	return []string{s.layout.FirstExaminer, s.layout.SecondExaminer, s.layout.ThirdExaminer, s.layout.TypistColumn}
}

// validateTeachers resolves every name mentioned anywhere in the workbook
// and returns the sorted list of names with no registry match.
func (s *ImportService) validateTeachers(ctx context.Context, resolver *nameResolver, examinerRows, labRows []sheetRow) ([]string, error) {
	missing := make(map[string]struct{})
	check := func(name string) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil
		}
		teacher, err := resolver.resolve(ctx, name)
		if err != nil {
			return err
		}
		if teacher == nil {
			missing[name] = struct{}{}
		}
		return nil
	}

	for _, row := range examinerRows {
		for _, column := range s.teacherNameColumns() {
			if err := check(row.value(column)); err != nil {
				return nil, err
			}
		}
	}
	for _, row := range labRows {
		for _, column := range s.layout.LabInstructorColumns {
			if err := check(row.value(column)); err != nil {
				return nil, err
			}
		}
	}
	return sortedKeys(missing), nil
}

// validateCourses checks every course code in both sheets and returns the
// sorted list of unknown codes.
func (s *ImportService) validateCourses(ctx context.Context, examinerRows, labRows []sheetRow) ([]string, error) {
	missing := make(map[string]struct{})
	checked := make(map[string]bool)
	check := func(cell string) error {
		code := courseCode(cell)
		if code == "" {
			return nil
		}
		if known, ok := checked[code]; ok {
			if !known {
				missing[code] = struct{}{}
			}
			return nil
		}
		_, err := s.courses.FindByCode(ctx, code)
		if err != nil {
			if err == sql.ErrNoRows {
				checked[code] = false
				missing[code] = struct{}{}
				return nil
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up course")
		}
		checked[code] = true
		return nil
	}

	for _, row := range examinerRows {
		if err := check(row.value(s.layout.CourseColumn)); err != nil {
			return nil, err
		}
	}
	for _, row := range labRows {
		if err := check(row.value(s.layout.LabCourseColumn)); err != nil {
			return nil, err
		}
	}
	return sortedKeys(missing), nil
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// transform turns validated rows into per-teacher drafts. Every name has
// already resolved, so lookups here cannot miss.
func (s *ImportService) transform(ctx context.Context, resolver *nameResolver, examinerRows, labRows []sheetRow, semester *models.ExamSemester) ([]models.TeacherClaimDraft, error) {
	byTeacher := make(map[string]*models.TeacherClaimDraft)
	var order []string

	draftFor := func(teacher *models.Teacher) *models.TeacherClaimDraft {
		draft, ok := byTeacher[teacher.ID]
		if !ok {
			draft = &models.TeacherClaimDraft{
				TeacherID:    teacher.ID,
				TeacherName:  teacher.Name,
				SemesterName: semester.SemesterName,
				ExamYear:     semester.Year,
			}
			byTeacher[teacher.ID] = draft
			order = append(order, teacher.ID)
		}
		return draft
	}

	for _, row := range examinerRows {
		code := courseCode(row.value(s.layout.CourseColumn))
		if code == "" {
			continue
		}

		examiners := []struct {
			nameColumn  string
			countColumn string
		}{
			{s.layout.FirstExaminer, s.layout.FirstExaminerCount},
			{s.layout.SecondExaminer, s.layout.SecondExaminerCount},
		}
		for _, examiner := range examiners {
			teacher, err := resolver.resolve(ctx, row.value(examiner.nameColumn))
			if err != nil {
				return nil, err
			}
			if teacher == nil {
				continue
			}
			// An examiner prepares the question paper regardless of how
			// many scripts land on their desk.
			draft := draftFor(teacher)
			draft.Items.QuestionPreparations = append(draft.Items.QuestionPreparations, models.QuestionPreparation{
				CourseCode:  code,
				SectionType: models.SectionFull,
			})
			if count := row.intValue(examiner.countColumn); count > 0 {
				draft.Items.ScriptEvaluations = append(draft.Items.ScriptEvaluations, models.ScriptEvaluation{
					CourseCode:  code,
					ScriptType:  models.ScriptFinal,
					ScriptCount: count,
				})
			}
		}

		if teacher, err := resolver.resolve(ctx, row.value(s.layout.ThirdExaminer)); err != nil {
			return nil, err
		} else if teacher != nil {
			if count := row.intValue(s.layout.ThirdExaminerCount); count > 0 {
				draft := draftFor(teacher)
				draft.Items.AnswerSheetReviews = append(draft.Items.AnswerSheetReviews, models.AnswerSheetReview{
					CourseCode:       code,
					AnswerSheetCount: count,
				})
			}
		}

		if typist, err := resolver.resolve(ctx, row.value(s.layout.TypistColumn)); err != nil {
			return nil, err
		} else if typist != nil {
			if pages := row.intValue(s.layout.PagesColumn); pages > 0 {
				draft := draftFor(typist)
				pageCount := pages
				draft.Items.OtherRemunerations = append(draft.Items.OtherRemunerations, models.OtherRemuneration{
					RemunerationType: models.OtherQuestionPrinting,
					Details:          fmt.Sprintf("Question typing for %s", code),
					PageCount:        &pageCount,
				})
			}
		}
	}

	for _, row := range labRows {
		code := courseCode(row.value(s.layout.LabCourseColumn))
		if code == "" {
			continue
		}
		students := row.intValue(s.layout.LabStudentsColumn)
		for _, column := range s.layout.LabInstructorColumns {
			teacher, err := resolver.resolve(ctx, row.value(column))
			if err != nil {
				return nil, err
			}
			if teacher == nil {
				continue
			}
			draft := draftFor(teacher)
			draft.Items.PracticalExams = append(draft.Items.PracticalExams, models.PracticalExam{
				CourseCode:   code,
				StudentCount: students,
				DayCount:     1,
			})
		}
	}

	drafts := make([]models.TeacherClaimDraft, 0, len(order))
	for _, id := range order {
		drafts = append(drafts, *byTeacher[id])
	}
	return drafts, nil
}
