package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/noah-isme/student-records-api/internal/models"
)

// SeedDemoRecords loads a small demo roster into the store. Used by the memory
// driver so a fresh instance has something to show.
func SeedDemoRecords(ctx context.Context, store *MemoryRecordRepository) error {
	type seed struct {
		name, email, course string
		year                int
		gpa                 float64
		grade               string
		enrolled            string
		address, phone      string
		status              models.RecordStatus
		avatarColor         string
	}

	seeds := []seed{
		{"John Doe", "john@example.com", "Computer Science", 3, 3.8, "A", "2021-09-01", "123 Main St, City", "555-0123", models.RecordStatusActive, "0D8ABC"},
		{"Jane Smith", "jane@example.com", "Engineering", 2, 3.9, "A", "2022-09-01", "456 Oak Ave, Town", "555-0124", models.RecordStatusActive, "2DD4BF"},
		{"Mike Johnson", "mike@example.com", "Business", 4, 3.7, "A-", "2020-09-01", "789 Pine Rd, Village", "555-0125", models.RecordStatusInactive, "3A6CFF"},
		{"Sarah Wilson", "sarah@example.com", "Computer Science", 1, 3.5, "B+", "2023-09-01", "321 Elm St, City", "555-0126", models.RecordStatusActive, "0D9488"},
		{"David Brown", "david@example.com", "Engineering", 3, 3.6, "B+", "2021-09-01", "654 Maple Dr, Town", "555-0127", models.RecordStatusActive, "1D42ED"},
	}

	for _, s := range seeds {
		enrolled, err := time.Parse("2006-01-02", s.enrolled)
		if err != nil {
			return fmt.Errorf("parse seed enrollment date: %w", err)
		}
		year := s.year
		gpa := s.gpa
		grade := s.grade
		record := &models.StudentRecord{
			Name:           s.name,
			Email:          s.email,
			Course:         s.course,
			EnrollmentDate: enrolled,
			Year:           &year,
			GPA:            &gpa,
			Grade:          &grade,
			Status:         s.status,
			Address:        s.address,
			Phone:          s.phone,
			Avatar:         fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=%s&color=fff", url.QueryEscape(s.name), s.avatarColor),
		}
		if err := store.Create(ctx, record); err != nil {
			return fmt.Errorf("seed record %s: %w", s.name, err)
		}
	}
	return nil
}
