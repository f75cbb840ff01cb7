// Package rates holds the examination remuneration rate schedule and the
// arithmetic that turns a claim set into a payable amount.
package rates

import (
	"strings"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	"github.com/noah-isme/exam-remuneration-api/pkg/config"
)

// Schedule is the fixed rate table. Amounts are in the institution's
// currency unit; totals are plain sums with no rounding or proration.
type Schedule struct {
	QuestionPreparationFull float64
	QuestionPreparationHalf float64
	ModerationPerQuestion   float64
	ScriptFinal             float64
	ScriptIncourse          float64
	ScriptAssignment        float64
	ScriptPresentation      float64
	ScriptPractical         float64
	ScriptDefault           float64
	PracticalPerStudentDay  float64
	VivaPerStudent          float64
	TabulationPerStudent    float64
	AnswerSheetPerSheet     float64
	OtherPerPage            float64
	OtherFlat               float64
}

// Default returns the schedule currently issued by the exam office.
func Default() Schedule {
	return Schedule{
		QuestionPreparationFull: 500,
		QuestionPreparationHalf: 250,
		ModerationPerQuestion:   100,
		ScriptFinal:             15,
		ScriptIncourse:          5,
		ScriptAssignment:        5,
		ScriptPresentation:      10,
		ScriptPractical:         10,
		ScriptDefault:           10,
		PracticalPerStudentDay:  2,
		VivaPerStudent:          10,
		TabulationPerStudent:    5,
		AnswerSheetPerSheet:     20,
		OtherPerPage:            10,
		OtherFlat:               500,
	}
}

// FromConfig builds a schedule from the configured rate values.
func FromConfig(cfg config.RatesConfig) Schedule {
	return Schedule{
		QuestionPreparationFull: cfg.QuestionPreparationFull,
		QuestionPreparationHalf: cfg.QuestionPreparationHalf,
		ModerationPerQuestion:   cfg.ModerationPerQuestion,
		ScriptFinal:             cfg.ScriptFinal,
		ScriptIncourse:          cfg.ScriptIncourse,
		ScriptAssignment:        cfg.ScriptAssignment,
		ScriptPresentation:      cfg.ScriptPresentation,
		ScriptPractical:         cfg.ScriptPractical,
		ScriptDefault:           cfg.ScriptDefault,
		PracticalPerStudentDay:  cfg.PracticalPerStudentDay,
		VivaPerStudent:          cfg.VivaPerStudent,
		TabulationPerStudent:    cfg.TabulationPerStudent,
		AnswerSheetPerSheet:     cfg.AnswerSheetPerSheet,
		OtherPerPage:            cfg.OtherPerPage,
		OtherFlat:               cfg.OtherFlat,
	}
}

// QuestionPreparationAmount rates one question preparation item.
func (s Schedule) QuestionPreparationAmount(item models.QuestionPreparation) float64 {
	if strings.EqualFold(item.SectionType, models.SectionFull) {
		return s.QuestionPreparationFull
	}
	return s.QuestionPreparationHalf
}

// QuestionModerationAmount rates one moderation item. The honorarium is
// split across the committee; a committee of zero contributes nothing.
func (s Schedule) QuestionModerationAmount(item models.QuestionModeration) float64 {
	if item.TeamMemberCount <= 0 {
		return 0
	}
	return float64(item.QuestionCount) * s.ModerationPerQuestion / float64(item.TeamMemberCount)
}

// ScriptEvaluationAmount rates one script evaluation item. Unrecognized
// script types fall back to the default per-script rate.
func (s Schedule) ScriptEvaluationAmount(item models.ScriptEvaluation) float64 {
	var rate float64
	switch strings.ToLower(item.ScriptType) {
	case strings.ToLower(models.ScriptFinal):
		rate = s.ScriptFinal
	case strings.ToLower(models.ScriptIncourse):
		rate = s.ScriptIncourse
	case strings.ToLower(models.ScriptAssignment):
		rate = s.ScriptAssignment
	case strings.ToLower(models.ScriptPresentation):
		rate = s.ScriptPresentation
	case strings.ToLower(models.ScriptPractical):
		rate = s.ScriptPractical
	default:
		rate = s.ScriptDefault
	}
	return float64(item.ScriptCount) * rate
}

// PracticalExamAmount rates one practical exam item.
func (s Schedule) PracticalExamAmount(item models.PracticalExam) float64 {
	return float64(item.StudentCount) * float64(item.DayCount) * s.PracticalPerStudentDay
}

// VivaExamAmount rates one viva item.
func (s Schedule) VivaExamAmount(item models.VivaExam) float64 {
	return float64(item.StudentCount) * s.VivaPerStudent
}

// TabulationAmount rates one tabulation item.
func (s Schedule) TabulationAmount(item models.Tabulation) float64 {
	return float64(item.StudentCount) * s.TabulationPerStudent
}

// AnswerSheetReviewAmount rates one answer sheet review item.
func (s Schedule) AnswerSheetReviewAmount(item models.AnswerSheetReview) float64 {
	return float64(item.AnswerSheetCount) * s.AnswerSheetPerSheet
}

// OtherRemunerationAmount rates one miscellaneous item: per page when a
// positive page count is present, otherwise the flat amount.
func (s Schedule) OtherRemunerationAmount(item models.OtherRemuneration) float64 {
	if item.PageCount != nil && *item.PageCount > 0 {
		return float64(*item.PageCount) * s.OtherPerPage
	}
	return s.OtherFlat
}

// Total sums every item of every kind in the set.
func (s Schedule) Total(set models.ClaimSet) float64 {
	var total float64
	for _, item := range set.QuestionPreparations {
		total += s.QuestionPreparationAmount(item)
	}
	for _, item := range set.QuestionModerations {
		total += s.QuestionModerationAmount(item)
	}
	for _, item := range set.ScriptEvaluations {
		total += s.ScriptEvaluationAmount(item)
	}
	for _, item := range set.PracticalExams {
		total += s.PracticalExamAmount(item)
	}
	for _, item := range set.VivaExams {
		total += s.VivaExamAmount(item)
	}
	for _, item := range set.Tabulations {
		total += s.TabulationAmount(item)
	}
	for _, item := range set.AnswerSheetReviews {
		total += s.AnswerSheetReviewAmount(item)
	}
	for _, item := range set.OtherRemunerations {
		total += s.OtherRemunerationAmount(item)
	}
	return total
}
