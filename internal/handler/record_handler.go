package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/service"
	"github.com/noah-isme/student-records-api/internal/view"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/response"
)

// liveRefreshInterval is how often an open live stream re-derives its view
// from a fresh store snapshot.
const liveRefreshInterval = 5 * time.Second

// RecordHandler exposes student record endpoints.
type RecordHandler struct {
	records         *service.RecordService
	exports         *service.ExportService
	defaultPageSize int
	maxPageSize     int
	debounce        time.Duration
}

// NewRecordHandler constructs RecordHandler. Exports may be nil when the
// export feature is disabled. The debounce interval coalesces re-issued
// queries on live streams.
func NewRecordHandler(records *service.RecordService, exports *service.ExportService, defaultPageSize, maxPageSize int, debounce time.Duration) *RecordHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &RecordHandler{
		records:         records,
		exports:         exports,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		debounce:        debounce,
	}
}

// List godoc
// @Summary List student records
// @Tags Students
// @Produce json
// @Param course query string false "Filter by course, exact match; omit or pass All for every course"
// @Param search query string false "Substring search over name, email and course"
// @Param status query string false "Filter by status (active or inactive)"
// @Param sort query string false "Sort field: name, course, year or gpa"
// @Param order query string false "Sort order: asc or desc"
// @Param page query int false "Page, 1-indexed"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [get]
func (h *RecordHandler) List(c *gin.Context) {
	q := h.queryFromRequest(c)

	result, pagination, err := h.records.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, pagination)
}

// Get godoc
// @Summary Get student record detail
// @Tags Students
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *RecordHandler) Get(c *gin.Context) {
	record, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Create godoc
// @Summary Create student record
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateRecordRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students [post]
func (h *RecordHandler) Create(c *gin.Context) {
	var req service.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.records.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update student record
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.UpdateRecordRequest true "Partial record payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [put]
func (h *RecordHandler) Update(c *gin.Context) {
	var req service.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.records.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Export godoc
// @Summary Export the filtered roster
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "Export format: csv or pdf"
// @Param course query string false "Filter by course"
// @Param search query string false "Substring search"
// @Param status query string false "Filter by status"
// @Param sort query string false "Sort field"
// @Param order query string false "Sort order"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /students/export [get]
func (h *RecordHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}

	q := h.queryFromRequest(c)
	format := strings.ToLower(c.DefaultQuery("format", service.ExportFormatCSV))

	result, err := h.exports.Export(c.Request.Context(), q, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// Live godoc
// @Summary Stream the filtered roster as server-sent events
// @Tags Students
// @Produce text/event-stream
// @Param course query string false "Filter by course"
// @Param search query string false "Substring search"
// @Param status query string false "Filter by status"
// @Param sort query string false "Sort field"
// @Param order query string false "Sort order"
// @Param page query int false "Page, 1-indexed"
// @Param limit query int false "Page size"
// @Success 200 {string} string "event stream"
// @Router /students/live [get]
func (h *RecordHandler) Live(c *gin.Context) {
	q := h.queryFromRequest(c)

	session := view.NewSession(h.records, h.debounce, nil)
	defer session.Close()

	ctx := c.Request.Context()
	session.IssueDebounced(ctx, q)

	ticker := time.NewTicker(liveRefreshInterval)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			session.IssueDebounced(ctx, q)
		case u := <-session.Updates():
			if u.Err != nil {
				c.SSEvent("error", appErrors.FromError(u.Err))
				c.Writer.Flush()
				return
			}
			c.SSEvent("records", gin.H{
				"items":      u.Result.Items,
				"total":      u.Result.Total,
				"pagination": u.Pagination,
			})
			c.Writer.Flush()
		}
	}
}

func (h *RecordHandler) queryFromRequest(c *gin.Context) models.RecordQuery {
	q := models.RecordQuery{
		Course:    strings.TrimSpace(c.Query("course")),
		Search:    strings.TrimSpace(c.Query("search")),
		SortField: c.DefaultQuery("sort", models.SortFieldName),
		SortOrder: c.DefaultQuery("order", models.SortOrderAsc),
		Page:      1,
		PageSize:  h.defaultPageSize,
	}

	switch c.Query("status") {
	case string(models.RecordStatusActive):
		v := models.RecordStatusActive
		q.Status = &v
	case string(models.RecordStatusInactive):
		v := models.RecordStatusInactive
		q.Status = &v
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultPageSize))); err == nil {
		q.PageSize = size
	}

	// Out-of-range user input is clamped here; the engine treats a
	// non-positive page or page size as a caller bug, not bad input.
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = h.defaultPageSize
	}
	if q.PageSize > h.maxPageSize {
		q.PageSize = h.maxPageSize
	}

	return q
}
