package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-remuneration-api/internal/models"
	"github.com/noah-isme/exam-remuneration-api/internal/rates"
	appErrors "github.com/noah-isme/exam-remuneration-api/pkg/errors"
)

type claimRepository interface {
	ReplaceForScope(ctx context.Context, teacherID string, semesterID int64, set models.ClaimSet) error
	FindByScope(ctx context.Context, teacherID string, semesterID int64) (models.ClaimSet, error)
	TeachersWithActivity(ctx context.Context, semesterID int64) ([]models.Teacher, error)
	SemestersWithActivity(ctx context.Context, teacherID string) ([]models.ExamSemester, error)
}

// ReportCache is the cache surface the cumulative report uses. A nil cache
// disables caching entirely.
type ReportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// UnresolvedReferencesError carries the complete lists of names that could
// not be matched against the registries. Both lists are always fully
// populated; nothing short-circuits on the first miss.
type UnresolvedReferencesError struct {
	MissingTeachers []string `json:"missing_teachers,omitempty"`
	MissingCourses  []string `json:"missing_courses,omitempty"`
}

// Error implements the error interface.
func (e *UnresolvedReferencesError) Error() string {
	return fmt.Sprintf("unresolved references: %d teachers, %d courses", len(e.MissingTeachers), len(e.MissingCourses))
}

// ScopeRemuneration is one (teacher, semester) claim set with its payable
// amount under the active rate schedule.
type ScopeRemuneration struct {
	Teacher     models.Teacher      `json:"teacher"`
	Semester    models.ExamSemester `json:"semester"`
	Items       models.ClaimSet     `json:"remunerations"`
	TotalAmount float64             `json:"total_amount"`
}

// RemunerationService owns claim set submission, retrieval and the
// cumulative semester report.
type RemunerationService struct {
	claims    claimRepository
	teachers  teacherRepository
	semesters semesterRepository
	courses   courseRepository
	cache     ReportCache
	schedule  rates.Schedule
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRemunerationService constructs the remuneration service. cache may be
// nil when report caching is disabled.
func NewRemunerationService(
	claims claimRepository,
	teachers teacherRepository,
	semesters semesterRepository,
	courses courseRepository,
	cache ReportCache,
	schedule rates.Schedule,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *RemunerationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &RemunerationService{
		claims:    claims,
		teachers:  teachers,
		semesters: semesters,
		courses:   courses,
		cache:     cache,
		schedule:  schedule,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
	}
}

func reportCacheKey(semesterID int64) string {
	return fmt.Sprintf("report:cumulative:%d", semesterID)
}

// Submit replaces the full claim set for a (teacher, semester) scope. The
// previous set is discarded entirely; submitting an empty set clears the
// scope. Any failure leaves the stored set unchanged.
func (s *RemunerationService) Submit(ctx context.Context, teacherID string, semesterID int64, set models.ClaimSet) (*ScopeRemuneration, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	semester, err := s.semesters.FindByID(ctx, semesterID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	if err := s.validateSet(set); err != nil {
		return nil, err
	}

	if missing, err := s.missingCourses(ctx, set.CourseCodes()); err != nil {
		return nil, err
	} else if len(missing) > 0 {
		unresolved := &UnresolvedReferencesError{MissingCourses: missing}
		return nil, appErrors.Wrap(unresolved, appErrors.ErrUnresolvedReferences.Code, appErrors.ErrUnresolvedReferences.Status, unresolved.Error())
	}

	if err := s.claims.ReplaceForScope(ctx, teacherID, semesterID, set); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTransaction.Code, appErrors.ErrTransaction.Status, "failed to replace claim set")
	}

	s.invalidateReport(ctx, semesterID)

	stored, err := s.claims.FindByScope(ctx, teacherID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload claim set")
	}
	return &ScopeRemuneration{
		Teacher:     *teacher,
		Semester:    *semester,
		Items:       stored,
		TotalAmount: s.schedule.Total(stored),
	}, nil
}

// Get returns the stored claim set and payable total for a scope.
func (s *RemunerationService) Get(ctx context.Context, teacherID string, semesterID int64) (*ScopeRemuneration, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	semester, err := s.semesters.FindByID(ctx, semesterID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	set, err := s.claims.FindByScope(ctx, teacherID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claim set")
	}
	return &ScopeRemuneration{
		Teacher:     *teacher,
		Semester:    *semester,
		Items:       set,
		TotalAmount: s.schedule.Total(set),
	}, nil
}

// GetAllForTeacher returns the teacher's claim history across every semester
// with activity, most recent semester first.
func (s *RemunerationService) GetAllForTeacher(ctx context.Context, teacherID string) ([]models.SemesterRemuneration, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	semesters, err := s.claims.SemestersWithActivity(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semesters")
	}
	history := make([]models.SemesterRemuneration, 0, len(semesters))
	for _, semester := range semesters {
		set, err := s.claims.FindByScope(ctx, teacherID, semester.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claim set")
		}
		history = append(history, models.SemesterRemuneration{Semester: semester, Items: set})
	}
	return history, nil
}

// CumulativeReport builds the per-teacher totals for one semester. Results
// are cached until the next submission touches the semester.
func (s *RemunerationService) CumulativeReport(ctx context.Context, semesterID int64) ([]models.CumulativeReportEntry, error) {
	if _, err := s.semesters.FindByID(ctx, semesterID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	key := reportCacheKey(semesterID)
	if s.cache != nil {
		var cached []models.CumulativeReportEntry
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	teachers, err := s.claims.TeachersWithActivity(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active teachers")
	}

	entries := make([]models.CumulativeReportEntry, 0, len(teachers))
	for _, teacher := range teachers {
		set, err := s.claims.FindByScope(ctx, teacher.ID, semesterID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claim set")
		}
		if set.Empty() {
			continue
		}
		entries = append(entries, models.CumulativeReportEntry{
			Teacher:     teacher,
			Items:       set,
			TotalAmount: s.schedule.Total(set),
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entries, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache cumulative report", zap.Int64("semester_id", semesterID), zap.Error(err))
		}
	}
	return entries, nil
}

// Schedule exposes the active rate schedule.
func (s *RemunerationService) Schedule() rates.Schedule {
	return s.schedule
}

func (s *RemunerationService) validateSet(set models.ClaimSet) error {
	validate := func(item interface{}) error {
		if err := s.validator.Struct(item); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid claim item")
		}
		return nil
	}
	for _, item := range set.QuestionPreparations {
		if err := validate(item); err != nil {
			return err
		}
	}
	for _, item := range set.QuestionModerations {
		if err := validate(item); err != nil {
			return err
		}
	}
	for _, item := range set.ScriptEvaluations {
		if err := validate(item); err != nil {
			return err
		}
	}
	for _, item := range set.PracticalExams {
		if err := validate(item); err != nil {
			return err
		}
	}
	for _, item := range set.VivaExams {
		if err := validate(item); err != nil {
			return err
		}
	}
	for _, item := range set.Tabulations {
		if err := validate(item); err != nil {
			return err
		}
	}
	for _, item := range set.AnswerSheetReviews {
		if err := validate(item); err != nil {
			return err
		}
	}
	for _, item := range set.OtherRemunerations {
		if err := validate(item); err != nil {
			return err
		}
	}
	return nil
}

// missingCourses checks every code against the registry and returns the full
// list of unknown ones.
func (s *RemunerationService) missingCourses(ctx context.Context, codes []string) ([]string, error) {
	var missing []string
	for _, code := range codes {
		if _, err := s.courses.FindByCode(ctx, strings.TrimSpace(code)); err != nil {
			if err == sql.ErrNoRows {
				missing = append(missing, code)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
		}
	}
	return missing, nil
}

func (s *RemunerationService) invalidateReport(ctx context.Context, semesterID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, reportCacheKey(semesterID)); err != nil {
		s.logger.Warn("failed to invalidate cumulative report cache", zap.Int64("semester_id", semesterID), zap.Error(err))
	}
}
