package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-remuneration-api/internal/service"
	appErrors "github.com/noah-isme/exam-remuneration-api/pkg/errors"
	"github.com/noah-isme/exam-remuneration-api/pkg/response"
)

// SemesterHandler exposes exam semester endpoints.
type SemesterHandler struct {
	semesters *service.SemesterService
}

// NewSemesterHandler constructs SemesterHandler.
func NewSemesterHandler(semesters *service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesters: semesters}
}

func semesterIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("semesterId"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid semester id"))
		return 0, false
	}
	return id, true
}

// List godoc
// @Summary List exam semesters
// @Tags Semesters
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *SemesterHandler) List(c *gin.Context) {
	semesters, err := h.semesters.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semesters, nil)
}

// Get godoc
// @Summary Get exam semester detail
// @Tags Semesters
// @Produce json
// @Param semesterId path int true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /semesters/{semesterId} [get]
func (h *SemesterHandler) Get(c *gin.Context) {
	id, ok := semesterIDParam(c)
	if !ok {
		return
	}
	semester, err := h.semesters.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester, nil)
}

// Create godoc
// @Summary Open an exam semester
// @Tags Semesters
// @Accept json
// @Produce json
// @Param payload body service.CreateSemesterRequest true "Semester payload"
// @Success 201 {object} response.Envelope
// @Router /semesters [post]
func (h *SemesterHandler) Create(c *gin.Context) {
	var req service.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	semester, err := h.semesters.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, semester)
}
