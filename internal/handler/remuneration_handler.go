package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	"github.com/noah-isme/exam-remuneration-api/internal/service"
	appErrors "github.com/noah-isme/exam-remuneration-api/pkg/errors"
	"github.com/noah-isme/exam-remuneration-api/pkg/response"
)

// maxWorkbookSize caps uploaded workbook files at 10 MiB.
const maxWorkbookSize = 10 << 20

// RemunerationHandler exposes claim set, report, import and export
// endpoints.
type RemunerationHandler struct {
	remunerations *service.RemunerationService
	importer      *service.ImportService
	exporter      *service.ExportService
	metrics       *service.MetricsService
}

// NewRemunerationHandler constructs RemunerationHandler.
func NewRemunerationHandler(remunerations *service.RemunerationService, importer *service.ImportService, exporter *service.ExportService, metrics *service.MetricsService) *RemunerationHandler {
	return &RemunerationHandler{
		remunerations: remunerations,
		importer:      importer,
		exporter:      exporter,
		metrics:       metrics,
	}
}

// respondError maps unresolved reference failures to a payload carrying the
// complete missing lists; everything else goes through the shared envelope.
func respondError(c *gin.Context, err error) {
	var unresolved *service.UnresolvedReferencesError
	if errors.As(err, &unresolved) {
		c.JSON(http.StatusUnprocessableEntity, response.Envelope{
			Error: appErrors.FromError(err),
			Data:  unresolved,
		})
		return
	}
	response.Error(c, err)
}

// Submit godoc
// @Summary Replace the claim set for a teacher and semester
// @Description The submitted set fully replaces whatever was stored before.
// @Tags Remunerations
// @Accept json
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param semesterId path int true "Semester ID"
// @Param payload body models.ClaimSet true "Claim set"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /teachers/{teacherId}/semesters/{semesterId}/remunerations [put]
func (h *RemunerationHandler) Submit(c *gin.Context) {
	semesterID, ok := semesterIDParam(c)
	if !ok {
		return
	}

	var set models.ClaimSet
	if err := c.ShouldBindJSON(&set); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid claim set payload"))
		return
	}

	scope, err := h.remunerations.Submit(c.Request.Context(), c.Param("teacherId"), semesterID, set)
	if err != nil {
		h.metrics.RecordSubmission("failed")
		respondError(c, err)
		return
	}
	h.metrics.RecordSubmission("replaced")
	response.JSON(c, http.StatusOK, scope, nil)
}

// Get godoc
// @Summary Get the claim set and payable total for a teacher and semester
// @Tags Remunerations
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param semesterId path int true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{teacherId}/semesters/{semesterId}/remunerations [get]
func (h *RemunerationHandler) Get(c *gin.Context) {
	semesterID, ok := semesterIDParam(c)
	if !ok {
		return
	}
	scope, err := h.remunerations.Get(c.Request.Context(), c.Param("teacherId"), semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scope, nil)
}

// History godoc
// @Summary Get a teacher's claim sets across all semesters with activity
// @Tags Remunerations
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{teacherId}/remunerations [get]
func (h *RemunerationHandler) History(c *gin.Context) {
	history, err := h.remunerations.GetAllForTeacher(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// CumulativeReport godoc
// @Summary Get per-teacher totals for one semester
// @Tags Reports
// @Produce json
// @Param semesterId path int true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /semesters/{semesterId}/report [get]
func (h *RemunerationHandler) CumulativeReport(c *gin.Context) {
	semesterID, ok := semesterIDParam(c)
	if !ok {
		return
	}
	entries, err := h.remunerations.CumulativeReport(c.Request.Context(), semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// ImportWorkbook godoc
// @Summary Reconcile a semester workbook against the registries
// @Description Validation is all-or-nothing; any unknown teacher or course
// rejects the whole workbook with the complete missing lists.
// @Tags Imports
// @Accept mpfd
// @Produce json
// @Param semesterId path int true "Semester ID"
// @Param file formData file true "Workbook (.xlsx)"
// @Param apply query bool false "Apply the drafts after validation"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /semesters/{semesterId}/import [post]
func (h *RemunerationHandler) ImportWorkbook(c *gin.Context) {
	semesterID, ok := semesterIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "workbook file is required"))
		return
	}
	if fileHeader.Size > maxWorkbookSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "workbook exceeds maximum size"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open workbook"))
		return
	}
	defer file.Close() //nolint:errcheck

	apply, _ := strconv.ParseBool(c.DefaultQuery("apply", "false"))

	result, err := h.importer.ProcessWorkbook(c.Request.Context(), file, semesterID, apply)
	if err != nil {
		h.metrics.RecordImport("failed")
		respondError(c, err)
		return
	}
	h.metrics.RecordImport(result.Status)

	if result.Status == service.ImportStatusRejected {
		c.JSON(http.StatusUnprocessableEntity, response.Envelope{
			Error: appErrors.ErrUnresolvedReferences,
			Data:  result,
		})
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExportBill godoc
// @Summary Download the PDF bill for a teacher and semester
// @Tags Exports
// @Produce application/pdf
// @Param teacherId path string true "Teacher ID"
// @Param semesterId path int true "Semester ID"
// @Success 200 {file} binary
// @Router /teachers/{teacherId}/semesters/{semesterId}/bill [get]
func (h *RemunerationHandler) ExportBill(c *gin.Context) {
	semesterID, ok := semesterIDParam(c)
	if !ok {
		return
	}
	payload, filename, err := h.exporter.TeacherBillPDF(c.Request.Context(), c.Param("teacherId"), semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", payload)
}

// ExportCumulative godoc
// @Summary Download the cumulative semester report
// @Tags Exports
// @Produce application/pdf
// @Param semesterId path int true "Semester ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} binary
// @Router /semesters/{semesterId}/report/export [get]
func (h *RemunerationHandler) ExportCumulative(c *gin.Context) {
	semesterID, ok := semesterIDParam(c)
	if !ok {
		return
	}

	var (
		payload     []byte
		filename    string
		contentType string
		err         error
	)
	switch c.DefaultQuery("format", "pdf") {
	case "csv":
		payload, filename, err = h.exporter.CumulativeReportCSV(c.Request.Context(), semesterID)
		contentType = "text/csv"
	case "pdf":
		payload, filename, err = h.exporter.CumulativeReportPDF(c.Request.Context(), semesterID)
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, payload)
}
