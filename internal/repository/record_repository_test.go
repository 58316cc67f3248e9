package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-records-api/internal/models"
)

func newRecordMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func recordRows() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "course", "enrollment_date", "year", "gpa", "grade", "status", "address", "phone", "avatar", "created_at", "last_modified"}).
		AddRow("1", "Amy", "amy@example.com", "CS", now, 1, 3.5, "A", "active", "", "", "", now, now)
}

func TestRecordRepositoryList(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, course, enrollment_date, year, gpa, grade, status, address, phone, avatar, created_at, last_modified FROM student_records ORDER BY created_at ASC, id ASC")).
		WillReturnRows(recordRows())

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "Amy", records[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery("SELECT id, name, email, course, enrollment_date").
		WithArgs("1").
		WillReturnRows(recordRows())

	record, err := repo.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery("SELECT id, name, email, course, enrollment_date").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectExec("INSERT INTO student_records").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.StudentRecord{Name: "Amy", Email: "amy@example.com", Course: "CS", EnrollmentDate: time.Now(), Status: models.RecordStatusActive}
	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.LastModified.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	// COALESCE keeps unset columns, so the statement carries every patch field
	// plus the timestamp and the id predicate.
	mock.ExpectQuery("UPDATE student_records SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "1").
		WillReturnRows(recordRows())

	course := "Engineering"
	record, err := repo.Update(context.Background(), "1", models.RecordPatch{Course: &course})
	require.NoError(t, err)
	assert.Equal(t, "1", record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRecordMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery("UPDATE student_records SET").
		WillReturnError(sql.ErrNoRows)

	name := "Amy"
	_, err := repo.Update(context.Background(), "missing", models.RecordPatch{Name: &name})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
