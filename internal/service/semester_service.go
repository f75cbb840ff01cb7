package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	appErrors "github.com/noah-isme/exam-remuneration-api/pkg/errors"
)

type semesterRepository interface {
	List(ctx context.Context) ([]models.ExamSemester, error)
	FindByID(ctx context.Context, id int64) (*models.ExamSemester, error)
	FindByYearAndName(ctx context.Context, year int, name string) (*models.ExamSemester, error)
	Create(ctx context.Context, semester *models.ExamSemester) error
}

// CreateSemesterRequest holds payload for opening an exam semester.
type CreateSemesterRequest struct {
	Year              int        `json:"year" validate:"required,min=2000,max=2100"`
	SemesterName      string     `json:"semester_name" validate:"required"`
	ExamStartDate     *time.Time `json:"exam_start_date"`
	ExamEndDate       *time.Time `json:"exam_end_date"`
	ResultPublishDate *time.Time `json:"result_publish_date"`
	ChairmanID        *string    `json:"chairman_id"`
}

// SemesterService handles exam semester use-cases.
type SemesterService struct {
	repo      semesterRepository
	teachers  teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs the semester service.
func NewSemesterService(repo semesterRepository, teachers teacherRepository, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns all exam semesters.
func (s *SemesterService) List(ctx context.Context) ([]models.ExamSemester, error) {
	semesters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// Get returns one exam semester by ID.
func (s *SemesterService) Get(ctx context.Context, id int64) (*models.ExamSemester, error) {
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// Create opens a new exam semester. The (year, name) pair must be unique and
// the optional dates must be ordered start, end, publish.
func (s *SemesterService) Create(ctx context.Context, req CreateSemesterRequest) (*models.ExamSemester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	if req.ExamStartDate != nil && req.ExamEndDate != nil && req.ExamEndDate.Before(*req.ExamStartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "exam end date precedes start date")
	}
	if req.ExamEndDate != nil && req.ResultPublishDate != nil && req.ResultPublishDate.Before(*req.ExamEndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "result publish date precedes exam end date")
	}
	if req.ExamStartDate != nil && req.ResultPublishDate != nil && req.ResultPublishDate.Before(*req.ExamStartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "result publish date precedes exam start date")
	}

	if existing, err := s.repo.FindByYearAndName(ctx, req.Year, req.SemesterName); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "semester already exists for this year")
	} else if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester")
	}

	if req.ChairmanID != nil {
		if _, err := s.teachers.FindByID(ctx, *req.ChairmanID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "chairman is not a registered teacher")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check chairman")
		}
	}

	semester := &models.ExamSemester{
		Year:              req.Year,
		SemesterName:      req.SemesterName,
		ExamStartDate:     req.ExamStartDate,
		ExamEndDate:       req.ExamEndDate,
		ResultPublishDate: req.ResultPublishDate,
		ChairmanID:        req.ChairmanID,
	}
	if err := s.repo.Create(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}
	return semester, nil
}
