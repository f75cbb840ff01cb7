package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-remuneration-api/pkg/export"
)

func newExportFixture(t *testing.T) (*ExportService, *RemunerationService) {
	t.Helper()
	remunerations, _, _ := newRemunerationFixture(t)
	exporter := NewExportService(remunerations, export.NewPDFExporter(), export.NewCSVExporter(), nil)
	return exporter, remunerations
}

func TestTeacherBillPDF(t *testing.T) {
	exporter, remunerations := newExportFixture(t)

	_, err := remunerations.Submit(context.Background(), "T-014", 7, sampleSet())
	require.NoError(t, err)

	payload, filename, err := exporter.TeacherBillPDF(context.Background(), "T-014", 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
	assert.Equal(t, "bill_T-014_2025_Spring.pdf", filename)
}

func TestTeacherBillPDFUnknownTeacher(t *testing.T) {
	exporter, _ := newExportFixture(t)

	_, _, err := exporter.TeacherBillPDF(context.Background(), "T-999", 7)
	require.Error(t, err)
}

func TestCumulativeReportCSV(t *testing.T) {
	exporter, remunerations := newExportFixture(t)

	_, err := remunerations.Submit(context.Background(), "T-014", 7, sampleSet())
	require.NoError(t, err)

	payload, filename, err := exporter.CumulativeReportCSV(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "cumulative_report_7.csv", filename)

	body := string(payload)
	assert.Contains(t, body, "Teacher ID,Name,Designation,Department,Items,Total Amount")
	assert.Contains(t, body, "T-014")
	assert.Contains(t, body, "800.00")
}

func TestCumulativeReportPDF(t *testing.T) {
	exporter, remunerations := newExportFixture(t)

	_, err := remunerations.Submit(context.Background(), "T-014", 7, sampleSet())
	require.NoError(t, err)

	payload, filename, err := exporter.CumulativeReportPDF(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
	assert.Equal(t, "cumulative_report_7.pdf", filename)
}
