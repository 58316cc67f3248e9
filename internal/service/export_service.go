package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/query"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type recordLister interface {
	List(ctx context.Context) ([]models.StudentRecord, error)
}

// ExportResult carries a rendered roster document.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the filtered and sorted roster into downloadable
// documents. Pagination is ignored: exports always cover the full filtered set.
type ExportService struct {
	repo   recordLister
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(repo recordLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Export runs the list query without pagination and renders the result.
func (s *ExportService) Export(ctx context.Context, q models.RecordQuery, format string) (*ExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student records")
	}

	q.Page = 1
	q.PageSize = len(records)
	if q.PageSize == 0 {
		q.PageSize = 1
	}

	result, err := query.Execute(records, q)
	if err != nil {
		return nil, err
	}

	dataset := rosterDataset(result.Items)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("students-%s.csv", stamp),
		}, nil
	default:
		content, err := s.pdf.Render(dataset, "Student Roster")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("students-%s.pdf", stamp),
		}, nil
	}
}

func rosterDataset(records []models.StudentRecord) export.Dataset {
	headers := []string{"Name", "Email", "Course", "Year", "GPA", "Grade", "Status", "Enrolled"}
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := map[string]string{
			"Name":     rec.Name,
			"Email":    rec.Email,
			"Course":   rec.Course,
			"Status":   string(rec.Status),
			"Enrolled": rec.EnrollmentDate.Format("2006-01-02"),
		}
		if rec.Year != nil {
			row["Year"] = strconv.Itoa(*rec.Year)
		}
		if rec.GPA != nil {
			row["GPA"] = strconv.FormatFloat(*rec.GPA, 'f', 2, 64)
		}
		if rec.Grade != nil {
			row["Grade"] = *rec.Grade
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
