package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/student-records-api/internal/models"
)

// MemoryRecordRepository is an in-process student record store. It backs tests
// and the memory store driver. All reads hand out deep copies so callers can
// never mutate the canonical collection in place.
type MemoryRecordRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.StudentRecord
	order []string
}

// NewMemoryRecordRepository constructs an empty in-memory store.
func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{byID: make(map[string]*models.StudentRecord)}
}

// List returns a snapshot of the collection in insertion order.
func (r *MemoryRecordRepository) List(ctx context.Context) ([]models.StudentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]models.StudentRecord, 0, len(r.order))
	for _, id := range r.order {
		records = append(records, *cloneRecord(r.byID[id]))
	}
	return records, nil
}

// FindByID fetches a record copy. Returns sql.ErrNoRows when absent, matching
// the durable implementation so services map errors uniformly.
func (r *MemoryRecordRepository) FindByID(ctx context.Context, id string) (*models.StudentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneRecord(record), nil
}

// Create appends a new record, assigning id and timestamps.
func (r *MemoryRecordRepository) Create(ctx context.Context, record *models.StudentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.LastModified = now

	r.byID[record.ID] = cloneRecord(record)
	r.order = append(r.order, record.ID)
	return nil
}

// Update merges the patch onto the stored record in a single critical section,
// so concurrent patches to different fields of the same record all stick.
// last_modified stays strictly increasing per record even on a coarse clock.
func (r *MemoryRecordRepository) Update(ctx context.Context, id string, patch models.RecordPatch) (*models.StudentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Email != nil {
		existing.Email = *patch.Email
	}
	if patch.Course != nil {
		existing.Course = *patch.Course
	}
	if patch.EnrollmentDate != nil {
		existing.EnrollmentDate = *patch.EnrollmentDate
	}
	if patch.Year != nil {
		year := *patch.Year
		existing.Year = &year
	}
	if patch.GPA != nil {
		gpa := *patch.GPA
		existing.GPA = &gpa
	}
	if patch.Grade != nil {
		grade := *patch.Grade
		existing.Grade = &grade
	}
	if patch.Status != nil {
		existing.Status = *patch.Status
	}
	if patch.Address != nil {
		existing.Address = *patch.Address
	}
	if patch.Phone != nil {
		existing.Phone = *patch.Phone
	}
	if patch.Avatar != nil {
		existing.Avatar = *patch.Avatar
	}

	ts := time.Now().UTC()
	if !ts.After(existing.LastModified) {
		ts = existing.LastModified.Add(time.Microsecond)
	}
	existing.LastModified = ts

	return cloneRecord(existing), nil
}

func cloneRecord(record *models.StudentRecord) *models.StudentRecord {
	clone := *record
	if record.Year != nil {
		year := *record.Year
		clone.Year = &year
	}
	if record.GPA != nil {
		gpa := *record.GPA
		clone.GPA = &gpa
	}
	if record.Grade != nil {
		grade := *record.Grade
		clone.Grade = &grade
	}
	return &clone
}
