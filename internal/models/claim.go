package models

import "strings"

// ClaimKind identifies one of the eight claim item kinds.
type ClaimKind string

const (
	KindQuestionPreparation ClaimKind = "question_preparation"
	KindQuestionModeration  ClaimKind = "question_moderation"
	KindScriptEvaluation    ClaimKind = "script_evaluation"
	KindPracticalExam       ClaimKind = "practical_exam"
	KindVivaExam            ClaimKind = "viva_exam"
	KindTabulation          ClaimKind = "tabulation"
	KindAnswerSheetReview   ClaimKind = "answer_sheet_review"
	KindOtherRemuneration   ClaimKind = "other_remuneration"
)

// AllClaimKinds lists every claim kind in declaration order.
var AllClaimKinds = []ClaimKind{
	KindQuestionPreparation,
	KindQuestionModeration,
	KindScriptEvaluation,
	KindPracticalExam,
	KindVivaExam,
	KindTabulation,
	KindAnswerSheetReview,
	KindOtherRemuneration,
}

// Section types for question preparation.
const (
	SectionFull = "Full"
	SectionHalf = "Half"
)

// Script types for script evaluation.
const (
	ScriptFinal        = "Final"
	ScriptIncourse     = "Incourse"
	ScriptAssignment   = "Assignment"
	ScriptPresentation = "Presentation"
	ScriptPractical    = "Practical"
)

// Recognized values for OtherRemuneration.RemunerationType. The column stays
// free text; these are the values the office issues bills under.
const (
	OtherExamCommitteeHonorium = "Exam Committee Honorium"
	OtherStencil               = "Stencil"
	OtherQuestionSetter        = "Question Setter"
	OtherQuestionPrinting      = "Question Preparation and Printing"
)

// QuestionPreparation is a claim for setting a question paper.
type QuestionPreparation struct {
	ID          string `db:"id" json:"id,omitempty"`
	TeacherID   string `db:"teacher_id" json:"teacher_id,omitempty"`
	SemesterID  int64  `db:"exam_semester_id" json:"exam_semester_id,omitempty"`
	CourseCode  string `db:"course_code" json:"course_code" validate:"required"`
	SectionType string `db:"section_type" json:"section_type" validate:"required,oneof=Full Half"`
}

// QuestionModeration is a claim for moderating a question paper as part of a
// committee.
type QuestionModeration struct {
	ID              string `db:"id" json:"id,omitempty"`
	TeacherID       string `db:"teacher_id" json:"teacher_id,omitempty"`
	SemesterID      int64  `db:"exam_semester_id" json:"exam_semester_id,omitempty"`
	CourseCode      string `db:"course_code" json:"course_code" validate:"required"`
	QuestionCount   int    `db:"question_count" json:"question_count" validate:"min=0"`
	TeamMemberCount int    `db:"team_member_count" json:"team_member_count" validate:"min=0"`
}

// ScriptEvaluation is a claim for evaluating exam scripts.
type ScriptEvaluation struct {
	ID          string `db:"id" json:"id,omitempty"`
	TeacherID   string `db:"teacher_id" json:"teacher_id,omitempty"`
	SemesterID  int64  `db:"exam_semester_id" json:"exam_semester_id,omitempty"`
	CourseCode  string `db:"course_code" json:"course_code" validate:"required"`
	ScriptType  string `db:"script_type" json:"script_type" validate:"required"`
	ScriptCount int    `db:"script_count" json:"script_count" validate:"min=0"`
}

// PracticalExam is a claim for conducting a practical examination.
type PracticalExam struct {
	ID           string `db:"id" json:"id,omitempty"`
	TeacherID    string `db:"teacher_id" json:"teacher_id,omitempty"`
	SemesterID   int64  `db:"exam_semester_id" json:"exam_semester_id,omitempty"`
	CourseCode   string `db:"course_code" json:"course_code" validate:"required"`
	StudentCount int    `db:"student_count" json:"student_count" validate:"min=0"`
	DayCount     int    `db:"day_count" json:"day_count" validate:"min=0"`
}

// VivaExam is a claim for serving on a viva board.
type VivaExam struct {
	ID           string `db:"id" json:"id,omitempty"`
	TeacherID    string `db:"teacher_id" json:"teacher_id,omitempty"`
	SemesterID   int64  `db:"exam_semester_id" json:"exam_semester_id,omitempty"`
	CourseCode   string `db:"course_code" json:"course_code" validate:"required"`
	StudentCount int    `db:"student_count" json:"student_count" validate:"min=0"`
}

// Tabulation is a claim for tabulating results.
type Tabulation struct {
	ID           string `db:"id" json:"id,omitempty"`
	TeacherID    string `db:"teacher_id" json:"teacher_id,omitempty"`
	SemesterID   int64  `db:"exam_semester_id" json:"exam_semester_id,omitempty"`
	CourseCode   string `db:"course_code" json:"course_code" validate:"required"`
	StudentCount int    `db:"student_count" json:"student_count" validate:"min=0"`
}

// AnswerSheetReview is a claim for third-examiner answer sheet review.
type AnswerSheetReview struct {
	ID               string `db:"id" json:"id,omitempty"`
	TeacherID        string `db:"teacher_id" json:"teacher_id,omitempty"`
	SemesterID       int64  `db:"exam_semester_id" json:"exam_semester_id,omitempty"`
	CourseCode       string `db:"course_code" json:"course_code" validate:"required"`
	AnswerSheetCount int    `db:"answer_sheet_count" json:"answer_sheet_count" validate:"min=0"`
}

// OtherRemuneration is a miscellaneous claim. It deliberately carries no
// course reference; miscellaneous work is not course-scoped.
type OtherRemuneration struct {
	ID               string `db:"id" json:"id,omitempty"`
	TeacherID        string `db:"teacher_id" json:"teacher_id,omitempty"`
	SemesterID       int64  `db:"exam_semester_id" json:"exam_semester_id,omitempty"`
	RemunerationType string `db:"remuneration_type" json:"remuneration_type" validate:"required"`
	Details          string `db:"details" json:"details"`
	PageCount        *int   `db:"page_count" json:"page_count,omitempty"`
}

// ClaimSet groups every claim item for one (teacher, semester) scope. A
// submission always replaces the full set; kinds missing from the payload end
// up empty, not preserved.
type ClaimSet struct {
	QuestionPreparations []QuestionPreparation `json:"question_preparations"`
	QuestionModerations  []QuestionModeration  `json:"question_moderations"`
	ScriptEvaluations    []ScriptEvaluation    `json:"script_evaluations"`
	PracticalExams       []PracticalExam       `json:"practical_exams"`
	VivaExams            []VivaExam            `json:"viva_exams"`
	Tabulations          []Tabulation          `json:"tabulations"`
	AnswerSheetReviews   []AnswerSheetReview   `json:"answer_sheet_reviews"`
	OtherRemunerations   []OtherRemuneration   `json:"other_remunerations"`
}

// Empty reports whether the set carries no items of any kind.
func (s ClaimSet) Empty() bool {
	return len(s.QuestionPreparations) == 0 &&
		len(s.QuestionModerations) == 0 &&
		len(s.ScriptEvaluations) == 0 &&
		len(s.PracticalExams) == 0 &&
		len(s.VivaExams) == 0 &&
		len(s.Tabulations) == 0 &&
		len(s.AnswerSheetReviews) == 0 &&
		len(s.OtherRemunerations) == 0
}

// ItemCount returns the total number of items across all kinds.
func (s ClaimSet) ItemCount() int {
	return len(s.QuestionPreparations) +
		len(s.QuestionModerations) +
		len(s.ScriptEvaluations) +
		len(s.PracticalExams) +
		len(s.VivaExams) +
		len(s.Tabulations) +
		len(s.AnswerSheetReviews) +
		len(s.OtherRemunerations)
}

// CourseCodes returns the distinct course codes referenced by the
// course-scoped kinds. OtherRemuneration never contributes.
func (s ClaimSet) CourseCodes() []string {
	seen := make(map[string]struct{})
	var codes []string
	add := func(code string) {
		code = strings.TrimSpace(code)
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	for _, item := range s.QuestionPreparations {
		add(item.CourseCode)
	}
	for _, item := range s.QuestionModerations {
		add(item.CourseCode)
	}
	for _, item := range s.ScriptEvaluations {
		add(item.CourseCode)
	}
	for _, item := range s.PracticalExams {
		add(item.CourseCode)
	}
	for _, item := range s.VivaExams {
		add(item.CourseCode)
	}
	for _, item := range s.Tabulations {
		add(item.CourseCode)
	}
	for _, item := range s.AnswerSheetReviews {
		add(item.CourseCode)
	}
	return codes
}

// SemesterRemuneration pairs a semester with a teacher's claim set for it.
type SemesterRemuneration struct {
	Semester ExamSemester `json:"semester"`
	Items    ClaimSet     `json:"remunerations"`
}

// CumulativeReportEntry is one teacher's row of the cumulative semester
// report.
type CumulativeReportEntry struct {
	Teacher     Teacher  `json:"teacher"`
	Items       ClaimSet `json:"details"`
	TotalAmount float64  `json:"total_amount"`
}

// TeacherClaimDraft is the reconciler's output for one teacher: a resolved
// claim set tagged with the target semester, ready to be submitted.
type TeacherClaimDraft struct {
	TeacherID    string   `json:"teacher_id"`
	TeacherName  string   `json:"teacher_name"`
	SemesterName string   `json:"semester_name"`
	ExamYear     int      `json:"exam_year"`
	Items        ClaimSet `json:"items"`
}
