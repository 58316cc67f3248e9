package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/student-records-api/internal/models"
)

// RecordRepository is the durable student record store backed by PostgreSQL.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs a RecordRepository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, name, email, course, enrollment_date, year, gpa, grade, status, address, phone, avatar, created_at, last_modified`

// List returns the full collection in insertion order. The returned slice is a
// snapshot; later mutations never alter it.
func (r *RecordRepository) List(ctx context.Context) ([]models.StudentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_records ORDER BY created_at ASC, id ASC`, recordColumns)
	var records []models.StudentRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// FindByID fetches a single record. Returns sql.ErrNoRows when absent.
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*models.StudentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_records WHERE id = $1 LIMIT 1`, recordColumns)
	var record models.StudentRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new record, assigning id and timestamps.
func (r *RecordRepository) Create(ctx context.Context, record *models.StudentRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.LastModified = now
	const query = `INSERT INTO student_records (id, name, email, course, enrollment_date, year, gpa, grade, status, address, phone, avatar, created_at, last_modified)
        VALUES (:id, :name, :email, :course, :enrollment_date, :year, :gpa, :grade, :status, :address, :phone, :avatar, :created_at, :last_modified)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// Update applies the patch as a single UPDATE statement. COALESCE keeps
// columns whose patch field is nil, so concurrent patches to different fields
// of the same record never overwrite each other. Returns sql.ErrNoRows when
// the id is absent.
func (r *RecordRepository) Update(ctx context.Context, id string, patch models.RecordPatch) (*models.StudentRecord, error) {
	query := fmt.Sprintf(`UPDATE student_records SET
        name = COALESCE($1, name),
        email = COALESCE($2, email),
        course = COALESCE($3, course),
        enrollment_date = COALESCE($4, enrollment_date),
        year = COALESCE($5, year),
        gpa = COALESCE($6, gpa),
        grade = COALESCE($7, grade),
        status = COALESCE($8, status),
        address = COALESCE($9, address),
        phone = COALESCE($10, phone),
        avatar = COALESCE($11, avatar),
        last_modified = $12
        WHERE id = $13
        RETURNING %s`, recordColumns)

	var record models.StudentRecord
	err := r.db.GetContext(ctx, &record, query,
		patch.Name, patch.Email, patch.Course, patch.EnrollmentDate,
		patch.Year, patch.GPA, patch.Grade, patch.Status,
		patch.Address, patch.Phone, patch.Avatar,
		time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
