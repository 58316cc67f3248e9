package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/repository"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
)

func newTestExportService(t *testing.T) *ExportService {
	t.Helper()
	repo := repository.NewMemoryRecordRepository()
	require.NoError(t, repository.SeedDemoRecords(context.Background(), repo))
	return NewExportService(repo, zap.NewNop())
}

func TestExportServiceCSV(t *testing.T) {
	svc := newTestExportService(t)

	q := defaultQuery()
	result, err := svc.Export(context.Background(), q, ExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, result.Filename, "students-")
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	// Header plus the full seeded roster, pagination ignored.
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[0], "Status")
}

func TestExportServiceCSVAppliesFilters(t *testing.T) {
	svc := newTestExportService(t)

	q := defaultQuery()
	q.Course = "Computer Science"
	q.PageSize = 1 // export must ignore pagination

	result, err := svc.Export(context.Background(), q, ExportFormatCSV)
	require.NoError(t, err)

	content := string(result.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, content, "John Doe")
	assert.Contains(t, content, "Sarah Wilson")
	assert.NotContains(t, content, "Jane Smith")
}

func TestExportServicePDF(t *testing.T) {
	svc := newTestExportService(t)

	result, err := svc.Export(context.Background(), defaultQuery(), ExportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	require.NotEmpty(t, result.Content)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := newTestExportService(t)

	_, err := svc.Export(context.Background(), defaultQuery(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceEmptyStore(t *testing.T) {
	svc := NewExportService(repository.NewMemoryRecordRepository(), zap.NewNop())

	result, err := svc.Export(context.Background(), defaultQuery(), ExportFormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	require.Len(t, lines, 1)
}
