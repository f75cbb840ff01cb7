package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	"github.com/noah-isme/exam-remuneration-api/internal/rates"
	"github.com/noah-isme/exam-remuneration-api/pkg/export"
)

type remunerationProvider interface {
	Get(ctx context.Context, teacherID string, semesterID int64) (*ScopeRemuneration, error)
	CumulativeReport(ctx context.Context, semesterID int64) ([]models.CumulativeReportEntry, error)
	Schedule() rates.Schedule
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderBill(bill export.Bill) ([]byte, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportService renders remuneration bills and cumulative reports into
// downloadable documents.
type ExportService struct {
	remunerations remunerationProvider
	pdf           pdfRenderer
	csv           csvRenderer
	logger        *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(remunerations remunerationProvider, pdf pdfRenderer, csv csvRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{remunerations: remunerations, pdf: pdf, csv: csv, logger: logger}
}

func money(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// TeacherBillPDF renders the official bill for one (teacher, semester)
// scope. The returned filename is safe for a Content-Disposition header.
func (s *ExportService) TeacherBillPDF(ctx context.Context, teacherID string, semesterID int64) ([]byte, string, error) {
	scope, err := s.remunerations.Get(ctx, teacherID, semesterID)
	if err != nil {
		return nil, "", err
	}

	schedule := s.remunerations.Schedule()
	bill := export.Bill{
		Title: fmt.Sprintf("Examination Remuneration Bill - %s %d", scope.Semester.SemesterName, scope.Semester.Year),
		HeaderLines: []string{
			fmt.Sprintf("Teacher: %s (%s)", scope.Teacher.Name, scope.Teacher.ID),
			fmt.Sprintf("Designation: %s, %s", scope.Teacher.Designation, scope.Teacher.Department),
		},
		Sections:   buildBillSections(scope.Items, schedule),
		TotalLabel: "Total Payable",
		TotalValue: money(scope.TotalAmount),
	}

	payload, err := s.pdf.RenderBill(bill)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("bill_%s_%d_%s.pdf", scope.Teacher.ID, scope.Semester.Year, scope.Semester.SemesterName)
	return payload, filename, nil
}

// CumulativeReportPDF renders the per-teacher totals for one semester.
func (s *ExportService) CumulativeReportPDF(ctx context.Context, semesterID int64) ([]byte, string, error) {
	data, err := s.cumulativeDataset(ctx, semesterID)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.pdf.Render(data, "Cumulative Remuneration Report")
	if err != nil {
		return nil, "", err
	}
	return payload, fmt.Sprintf("cumulative_report_%d.pdf", semesterID), nil
}

// CumulativeReportCSV renders the per-teacher totals as CSV.
func (s *ExportService) CumulativeReportCSV(ctx context.Context, semesterID int64) ([]byte, string, error) {
	data, err := s.cumulativeDataset(ctx, semesterID)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, "", err
	}
	return payload, fmt.Sprintf("cumulative_report_%d.csv", semesterID), nil
}

func (s *ExportService) cumulativeDataset(ctx context.Context, semesterID int64) (export.Dataset, error) {
	entries, err := s.remunerations.CumulativeReport(ctx, semesterID)
	if err != nil {
		return export.Dataset{}, err
	}
	data := export.Dataset{
		Headers: []string{"Teacher ID", "Name", "Designation", "Department", "Items", "Total Amount"},
	}
	for _, entry := range entries {
		data.Rows = append(data.Rows, map[string]string{
			"Teacher ID":   entry.Teacher.ID,
			"Name":         entry.Teacher.Name,
			"Designation":  entry.Teacher.Designation,
			"Department":   entry.Teacher.Department,
			"Items":        strconv.Itoa(entry.Items.ItemCount()),
			"Total Amount": money(entry.TotalAmount),
		})
	}
	return data, nil
}

// buildBillSections renders one table per claim kind with per-item amounts.
// Kinds with no items are left out entirely.
func buildBillSections(set models.ClaimSet, schedule rates.Schedule) []export.BillSection {
	var sections []export.BillSection

	if len(set.QuestionPreparations) > 0 {
		table := export.Dataset{Headers: []string{"Course", "Section", "Amount"}}
		for _, item := range set.QuestionPreparations {
			table.Rows = append(table.Rows, map[string]string{
				"Course":  item.CourseCode,
				"Section": item.SectionType,
				"Amount":  money(schedule.QuestionPreparationAmount(item)),
			})
		}
		sections = append(sections, export.BillSection{Title: "Question Preparation", Table: table})
	}

	if len(set.QuestionModerations) > 0 {
		table := export.Dataset{Headers: []string{"Course", "Questions", "Committee", "Amount"}}
		for _, item := range set.QuestionModerations {
			table.Rows = append(table.Rows, map[string]string{
				"Course":    item.CourseCode,
				"Questions": strconv.Itoa(item.QuestionCount),
				"Committee": strconv.Itoa(item.TeamMemberCount),
				"Amount":    money(schedule.QuestionModerationAmount(item)),
			})
		}
		sections = append(sections, export.BillSection{Title: "Question Moderation", Table: table})
	}

	if len(set.ScriptEvaluations) > 0 {
		table := export.Dataset{Headers: []string{"Course", "Type", "Scripts", "Amount"}}
		for _, item := range set.ScriptEvaluations {
			table.Rows = append(table.Rows, map[string]string{
				"Course":  item.CourseCode,
				"Type":    item.ScriptType,
				"Scripts": strconv.Itoa(item.ScriptCount),
				"Amount":  money(schedule.ScriptEvaluationAmount(item)),
			})
		}
		sections = append(sections, export.BillSection{Title: "Script Evaluation", Table: table})
	}

	if len(set.PracticalExams) > 0 {
		table := export.Dataset{Headers: []string{"Course", "Students", "Days", "Amount"}}
		for _, item := range set.PracticalExams {
			table.Rows = append(table.Rows, map[string]string{
				"Course":   item.CourseCode,
				"Students": strconv.Itoa(item.StudentCount),
				"Days":     strconv.Itoa(item.DayCount),
				"Amount":   money(schedule.PracticalExamAmount(item)),
			})
		}
		sections = append(sections, export.BillSection{Title: "Practical Examination", Table: table})
	}

	if len(set.VivaExams) > 0 {
		table := export.Dataset{Headers: []string{"Course", "Students", "Amount"}}
		for _, item := range set.VivaExams {
			table.Rows = append(table.Rows, map[string]string{
				"Course":   item.CourseCode,
				"Students": strconv.Itoa(item.StudentCount),
				"Amount":   money(schedule.VivaExamAmount(item)),
			})
		}
		sections = append(sections, export.BillSection{Title: "Viva Voce", Table: table})
	}

	if len(set.Tabulations) > 0 {
		table := export.Dataset{Headers: []string{"Course", "Students", "Amount"}}
		for _, item := range set.Tabulations {
			table.Rows = append(table.Rows, map[string]string{
				"Course":   item.CourseCode,
				"Students": strconv.Itoa(item.StudentCount),
				"Amount":   money(schedule.TabulationAmount(item)),
			})
		}
		sections = append(sections, export.BillSection{Title: "Tabulation", Table: table})
	}

	if len(set.AnswerSheetReviews) > 0 {
		table := export.Dataset{Headers: []string{"Course", "Sheets", "Amount"}}
		for _, item := range set.AnswerSheetReviews {
			table.Rows = append(table.Rows, map[string]string{
				"Course": item.CourseCode,
				"Sheets": strconv.Itoa(item.AnswerSheetCount),
				"Amount": money(schedule.AnswerSheetReviewAmount(item)),
			})
		}
		sections = append(sections, export.BillSection{Title: "Answer Sheet Review", Table: table})
	}

	if len(set.OtherRemunerations) > 0 {
		table := export.Dataset{Headers: []string{"Type", "Details", "Pages", "Amount"}}
		for _, item := range set.OtherRemunerations {
			pages := ""
			if item.PageCount != nil {
				pages = strconv.Itoa(*item.PageCount)
			}
			table.Rows = append(table.Rows, map[string]string{
				"Type":    item.RemunerationType,
				"Details": item.Details,
				"Pages":   pages,
				"Amount":  money(schedule.OtherRemunerationAmount(item)),
			})
		}
		sections = append(sections, export.BillSection{Title: "Other Remuneration", Table: table})
	}

	return sections
}
