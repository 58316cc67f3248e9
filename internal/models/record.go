package models

import "time"

// RecordStatus enumerates the lifecycle states of a student record.
type RecordStatus string

const (
	RecordStatusActive   RecordStatus = "active"
	RecordStatusInactive RecordStatus = "inactive"
)

// CourseAll is the sentinel course filter meaning "no course filter".
const CourseAll = "All"

// Sort fields accepted by the list query engine.
const (
	SortFieldName   = "name"
	SortFieldCourse = "course"
	SortFieldYear   = "year"
	SortFieldGPA    = "gpa"
)

// Sort directions accepted by the list query engine.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// StudentRecord is the canonical student entity. Year, GPA and Grade are
// optional; absent values stay nil so partial updates can leave them alone.
type StudentRecord struct {
	ID             string       `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	Email          string       `db:"email" json:"email"`
	Course         string       `db:"course" json:"course"`
	EnrollmentDate time.Time    `db:"enrollment_date" json:"enrollment_date"`
	Year           *int         `db:"year" json:"year,omitempty"`
	GPA            *float64     `db:"gpa" json:"gpa,omitempty"`
	Grade          *string      `db:"grade" json:"grade,omitempty"`
	Status         RecordStatus `db:"status" json:"status"`
	Address        string       `db:"address" json:"address,omitempty"`
	Phone          string       `db:"phone" json:"phone,omitempty"`
	Avatar         string       `db:"avatar" json:"avatar,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	LastModified   time.Time    `db:"last_modified" json:"last_modified"`
}

// RecordPatch is a partial update applied atomically by the store. Nil fields
// leave the stored value untouched.
type RecordPatch struct {
	Name           *string
	Email          *string
	Course         *string
	EnrollmentDate *time.Time
	Year           *int
	GPA            *float64
	Grade          *string
	Status         *RecordStatus
	Address        *string
	Phone          *string
	Avatar         *string
}

// RecordQuery captures the filter/sort/page parameters of one list request.
type RecordQuery struct {
	Course    string
	Search    string
	Status    *RecordStatus
	SortField string
	SortOrder string
	Page      int
	PageSize  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
