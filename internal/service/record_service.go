package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/query"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

const enrollmentDateLayout = "2006-01-02"

// listCachePattern matches every cached list query result.
const listCachePattern = "records:list:*"

// RecordRepository abstracts record persistence so the memory and postgres
// drivers are interchangeable. Update applies the patch atomically per record
// id; the merge must happen inside the store's own critical section.
type RecordRepository interface {
	List(ctx context.Context) ([]models.StudentRecord, error)
	FindByID(ctx context.Context, id string) (*models.StudentRecord, error)
	Create(ctx context.Context, record *models.StudentRecord) error
	Update(ctx context.Context, id string, patch models.RecordPatch) (*models.StudentRecord, error)
}

// CreateRecordRequest holds payload for creating student records.
type CreateRecordRequest struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Course         string   `json:"course" validate:"required"`
	EnrollmentDate string   `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
	Year           *int     `json:"year" validate:"omitempty,min=1,max=5"`
	GPA            *float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
	Grade          *string  `json:"grade"`
	Status         string   `json:"status" validate:"omitempty,oneof=active inactive"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
}

// UpdateRecordRequest holds a partial patch for an existing record. Absent
// fields leave the stored value untouched; the record id itself is immutable.
type UpdateRecordRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Course         *string  `json:"course" validate:"omitempty,min=1"`
	EnrollmentDate *string  `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
	Year           *int     `json:"year" validate:"omitempty,min=1,max=5"`
	GPA            *float64 `json:"gpa" validate:"omitempty,min=0,max=4"`
	Grade          *string  `json:"grade"`
	Status         *string  `json:"status" validate:"omitempty,oneof=active inactive"`
	Address        *string  `json:"address"`
	Phone          *string  `json:"phone"`
}

// RecordService handles student record use-cases.
type RecordService struct {
	repo      RecordRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecordService constructs the record service. Cache and metrics may be nil.
func NewRecordService(repo RecordRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RecordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// List executes the query pipeline over a fresh snapshot of the collection.
// Identical queries against an unchanged collection are served from cache;
// every mutation invalidates all cached pages.
func (s *RecordService) List(ctx context.Context, q models.RecordQuery) (*query.Result, *models.Pagination, error) {
	if err := query.Validate(q); err != nil {
		return nil, nil, err
	}

	key := listCacheKey(q)
	var cached query.Result
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, paginationFor(q, cached.Total), nil
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student records")
	}

	result, err := query.Execute(records, q)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.RecordListQuery()

	if err := s.cache.Set(ctx, key, result, 0); err != nil {
		s.logger.Warn("failed to cache list result", zap.Error(err))
	}

	return result, paginationFor(q, result.Total), nil
}

// Get returns a single student record.
func (s *RecordService) Get(ctx context.Context, id string) (*models.StudentRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
	}
	return record, nil
}

// Add registers a new student record. The store assigns id and timestamps.
func (s *RecordService) Add(ctx context.Context, req CreateRecordRequest) (*models.StudentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student record payload")
	}

	enrolled, err := parseEnrollmentDate(req.EnrollmentDate)
	if err != nil {
		return nil, err
	}

	status := models.RecordStatus(req.Status)
	if status == "" {
		status = models.RecordStatusActive
	}

	record := &models.StudentRecord{
		Name:           req.Name,
		Email:          req.Email,
		Course:         req.Course,
		EnrollmentDate: enrolled,
		Year:           req.Year,
		GPA:            req.GPA,
		Grade:          req.Grade,
		Status:         status,
		Address:        req.Address,
		Phone:          req.Phone,
		Avatar:         avatarURL(req.Name),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student record")
	}

	s.invalidateListCache(ctx)
	return record, nil
}

// Update applies a partial patch to an existing record. The merge happens
// inside the store as one atomic read-modify-write per record id, so two
// concurrent patches to different fields both stick. Fields absent from the
// patch are preserved and last_modified is re-stamped.
func (s *RecordService) Update(ctx context.Context, id string, req UpdateRecordRequest) (*models.StudentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student record patch")
	}

	patch := models.RecordPatch{
		Name:    req.Name,
		Email:   req.Email,
		Course:  req.Course,
		Year:    req.Year,
		GPA:     req.GPA,
		Grade:   req.Grade,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if req.EnrollmentDate != nil {
		enrolled, err := parseEnrollmentDate(*req.EnrollmentDate)
		if err != nil {
			return nil, err
		}
		patch.EnrollmentDate = &enrolled
	}
	if req.Status != nil {
		status := models.RecordStatus(*req.Status)
		patch.Status = &status
	}
	if req.Name != nil {
		avatar := avatarURL(*req.Name)
		patch.Avatar = &avatar
	}

	record, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student record")
	}

	s.invalidateListCache(ctx)
	return record, nil
}

func (s *RecordService) invalidateListCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, listCachePattern); err != nil {
		s.logger.Warn("failed to invalidate list cache", zap.Error(err))
	}
}

func paginationFor(q models.RecordQuery, total int) *models.Pagination {
	return &models.Pagination{Page: q.Page, PageSize: q.PageSize, TotalCount: total}
}

func listCacheKey(q models.RecordQuery) string {
	status := ""
	if q.Status != nil {
		status = string(*q.Status)
	}
	return fmt.Sprintf("records:list:%s|%s|%s|%s|%s|%d|%d",
		q.Course, q.Search, status, q.SortField, q.SortOrder, q.Page, q.PageSize)
}

func parseEnrollmentDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	enrolled, err := time.Parse(enrollmentDateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "enrollment_date must use YYYY-MM-DD")
	}
	return enrolled, nil
}

func avatarURL(name string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=3A6CFF&color=fff", url.QueryEscape(name))
}

// validationError converts validator failures into a field-level message
// naming the first offending field.
func validationError(err error, fallback string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		field := first.Field()
		if first.Tag() == "required" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is required", field))
		}
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is invalid", field))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
}
