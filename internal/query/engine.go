// Package query implements the pure list query pipeline for student records:
// filter by course and search text, count, stable sort, paginate. It operates
// on an already-fetched snapshot and never talks to storage.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

// Result is one page of a list query plus the pre-pagination total.
type Result struct {
	Items []models.StudentRecord `json:"items"`
	Total int                    `json:"total"`
}

// Validate rejects malformed query parameters before any data is touched.
// A malformed query is a programming error on the caller's side, so the
// engine never defaults silently.
func Validate(q models.RecordQuery) error {
	switch q.SortField {
	case models.SortFieldName, models.SortFieldCourse, models.SortFieldYear, models.SortFieldGPA:
	default:
		return appErrors.Clone(appErrors.ErrInvalidQuery, fmt.Sprintf("unknown sort field %q", q.SortField))
	}
	if q.SortOrder != models.SortOrderAsc && q.SortOrder != models.SortOrderDesc {
		return appErrors.Clone(appErrors.ErrInvalidQuery, fmt.Sprintf("unknown sort order %q", q.SortOrder))
	}
	if q.PageSize <= 0 {
		return appErrors.Clone(appErrors.ErrInvalidQuery, "page size must be positive")
	}
	if q.Page < 1 {
		return appErrors.Clone(appErrors.ErrInvalidQuery, "page is 1-indexed")
	}
	return nil
}

// Execute runs the query pipeline over the snapshot. Total counts every record
// surviving the filters regardless of pagination. Sorting is stable: records
// with equal keys keep their snapshot order in both directions. Out-of-range
// pages yield an empty page, not an error.
func Execute(records []models.StudentRecord, q models.RecordQuery) (*Result, error) {
	if err := Validate(q); err != nil {
		return nil, err
	}

	filtered := make([]models.StudentRecord, 0, len(records))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, rec := range records {
		if q.Course != "" && q.Course != models.CourseAll && rec.Course != q.Course {
			continue
		}
		if q.Status != nil && rec.Status != *q.Status {
			continue
		}
		if search != "" && !matchesSearch(rec, search) {
			continue
		}
		filtered = append(filtered, rec)
	}

	total := len(filtered)

	less := lessFunc(q.SortField)
	if q.SortOrder == models.SortOrderDesc {
		asc := less
		less = func(a, b models.StudentRecord) bool { return asc(b, a) }
	}
	sort.SliceStable(filtered, func(i, j int) bool { return less(filtered[i], filtered[j]) })

	start := (q.Page - 1) * q.PageSize
	if start >= total {
		return &Result{Items: []models.StudentRecord{}, Total: total}, nil
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}

	items := make([]models.StudentRecord, end-start)
	copy(items, filtered[start:end])
	return &Result{Items: items, Total: total}, nil
}

func matchesSearch(rec models.StudentRecord, search string) bool {
	return strings.Contains(strings.ToLower(rec.Name), search) ||
		strings.Contains(strings.ToLower(rec.Email), search) ||
		strings.Contains(strings.ToLower(rec.Course), search)
}

// lessFunc returns the ascending comparator for the sort field. Optional
// numeric fields order nil before any present value.
func lessFunc(field string) func(a, b models.StudentRecord) bool {
	switch field {
	case models.SortFieldCourse:
		return func(a, b models.StudentRecord) bool { return a.Course < b.Course }
	case models.SortFieldYear:
		return func(a, b models.StudentRecord) bool { return lessIntPtr(a.Year, b.Year) }
	case models.SortFieldGPA:
		return func(a, b models.StudentRecord) bool { return lessFloatPtr(a.GPA, b.GPA) }
	default:
		return func(a, b models.StudentRecord) bool { return a.Name < b.Name }
	}
}

func lessIntPtr(a, b *int) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return *a < *b
}

func lessFloatPtr(a, b *float64) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return *a < *b
}
