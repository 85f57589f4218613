package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
)

var (
	// ErrDuplicateSession indicates the session was already recorded for the
	// enrollment. Sessions are attended once.
	ErrDuplicateSession = errors.New("attendance already recorded for session")
	// ErrInvalidAttendancePayload indicates the bulk import payload failed
	// schema validation.
	ErrInvalidAttendancePayload = errors.New("attendance import payload invalid")
)

// attendanceImportSchema validates bulk attendance payloads before any row is
// written.
const attendanceImportSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["sessions"],
	"properties": {
		"sessions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["session_date", "session_title", "status"],
				"properties": {
					"session_date": {"type": "string", "format": "date"},
					"session_title": {"type": "string", "minLength": 1, "maxLength": 255},
					"status": {"enum": ["present", "absent", "late", "excused"]}
				}
			}
		}
	}
}`

// GradebookService aggregates instructor-entered grades and attendance into
// the evidence the eligibility evaluator consumes.
type GradebookService interface {
	GradebookReader
	RecordGrade(ctx context.Context, enrollmentID uint, payload dto.GradeRecordRequest, gradedBy *uint) (dto.GradeResponse, error)
	RecordAttendance(ctx context.Context, enrollmentID uint, payload dto.AttendanceRecordRequest) (dto.AttendanceResponse, error)
	ImportAttendance(ctx context.Context, enrollmentID uint, payload map[string]interface{}) (dto.AttendanceImportResult, error)
}

type gradebookService struct {
	enrollments repository.EnrollmentRepository
	grades      repository.GradeRepository
	attendance  repository.AttendanceRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	importSpec  *jsonschema.Schema
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradebookService constructs a GradebookService instance.
func NewGradebookService(enrollments repository.EnrollmentRepository, grades repository.GradeRepository, attendance repository.AttendanceRepository, validate *validator.Validate, logger zerolog.Logger) GradebookService {
	spec := jsonschema.MustCompileString("attendance_import.json", attendanceImportSchema)

	return &gradebookService{
		enrollments: enrollments,
		grades:      grades,
		attendance:  attendance,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		importSpec:  spec,
		logger:      logger.With().Str("component", "gradebook_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradebookService) RecordGrade(ctx context.Context, enrollmentID uint, payload dto.GradeRecordRequest, gradedBy *uint) (dto.GradeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}

	if _, err := s.loadEnrollment(ctx, enrollmentID); err != nil {
		return dto.GradeResponse{}, err
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	gradedAt := s.now()

	if payload.ModuleID == nil {
		// Course-final grades overwrite: grading corrections are expected, so
		// this is an explicit update that re-stamps GradedAt.
		existing, err := s.grades.GetCourseFinal(ctx, enrollmentID)
		if err == nil {
			existing.Scale = payload.Scale
			existing.Feedback = feedback
			existing.GradedBy = gradedBy
			existing.GradedAt = gradedAt
			if err := s.grades.Update(ctx, &existing); err != nil {
				return dto.GradeResponse{}, err
			}
			s.logger.Info().Uint("enrollment_id", enrollmentID).Float64("scale", payload.Scale).Msg("final grade corrected")
			return dto.NewGradeResponse(existing), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, err
		}
	}

	grade := models.GradeRecord{
		EnrollmentID: enrollmentID,
		ModuleID:     payload.ModuleID,
		Scale:        payload.Scale,
		Feedback:     feedback,
		GradedBy:     gradedBy,
		GradedAt:     gradedAt,
	}
	if err := s.grades.Create(ctx, &grade); err != nil {
		return dto.GradeResponse{}, err
	}

	s.logger.Info().Uint("enrollment_id", enrollmentID).Float64("scale", payload.Scale).Msg("grade recorded")

	return dto.NewGradeResponse(grade), nil
}

func (s *gradebookService) RecordAttendance(ctx context.Context, enrollmentID uint, payload dto.AttendanceRecordRequest) (dto.AttendanceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceResponse{}, err
	}

	if _, err := s.loadEnrollment(ctx, enrollmentID); err != nil {
		return dto.AttendanceResponse{}, err
	}

	sessionDate := normalizeSessionDate(payload.SessionDate)
	title := strings.TrimSpace(payload.SessionTitle)

	exists, err := s.attendance.Exists(ctx, enrollmentID, sessionDate, title)
	if err != nil {
		return dto.AttendanceResponse{}, err
	}
	if exists {
		return dto.AttendanceResponse{}, ErrDuplicateSession
	}

	record := models.AttendanceRecord{
		EnrollmentID: enrollmentID,
		SessionDate:  sessionDate,
		SessionTitle: title,
		Status:       models.AttendanceStatus(payload.Status),
	}
	if err := s.attendance.Create(ctx, &record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.AttendanceResponse{}, ErrDuplicateSession
		}
		return dto.AttendanceResponse{}, err
	}

	return dto.NewAttendanceResponse(record), nil
}

func (s *gradebookService) ImportAttendance(ctx context.Context, enrollmentID uint, payload map[string]interface{}) (dto.AttendanceImportResult, error) {
	if _, err := s.loadEnrollment(ctx, enrollmentID); err != nil {
		return dto.AttendanceImportResult{}, err
	}

	if err := s.importSpec.Validate(payload); err != nil {
		s.logger.Warn().Err(err).Uint("enrollment_id", enrollmentID).Msg("attendance import rejected by schema")
		return dto.AttendanceImportResult{}, ErrInvalidAttendancePayload
	}

	sessions, _ := payload["sessions"].([]interface{})
	result := dto.AttendanceImportResult{Sessions: make([]string, 0, len(sessions))}
	records := make([]models.AttendanceRecord, 0, len(sessions))

	for _, raw := range sessions {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		dateString, _ := entry["session_date"].(string)
		title, _ := entry["session_title"].(string)
		status, _ := entry["status"].(string)

		sessionDate, err := time.Parse("2006-01-02", dateString)
		if err != nil {
			return dto.AttendanceImportResult{}, ErrInvalidAttendancePayload
		}
		title = strings.TrimSpace(title)

		exists, err := s.attendance.Exists(ctx, enrollmentID, sessionDate, title)
		if err != nil {
			return dto.AttendanceImportResult{}, err
		}
		if exists {
			result.Skipped++
			continue
		}

		records = append(records, models.AttendanceRecord{
			EnrollmentID: enrollmentID,
			SessionDate:  sessionDate,
			SessionTitle: title,
			Status:       models.AttendanceStatus(status),
		})
		result.Sessions = append(result.Sessions, title)
	}

	if err := s.attendance.CreateBatch(ctx, records); err != nil {
		return dto.AttendanceImportResult{}, err
	}
	result.Imported = len(records)

	s.logger.Info().Uint("enrollment_id", enrollmentID).Int("imported", result.Imported).Int("skipped", result.Skipped).Msg("attendance imported")

	return result, nil
}

func (s *gradebookService) GetAggregate(ctx context.Context, enrollmentID uint) (dto.GradebookAggregate, error) {
	if _, err := s.loadEnrollment(ctx, enrollmentID); err != nil {
		return dto.GradebookAggregate{}, err
	}

	aggregate := dto.GradebookAggregate{EnrollmentID: enrollmentID}

	// GetCourseFinal orders by GradedAt descending, which doubles as the
	// deterministic tie-break when more than one final record exists.
	finalGrade, err := s.grades.GetCourseFinal(ctx, enrollmentID)
	if err == nil {
		response := dto.NewGradeResponse(finalGrade)
		aggregate.FinalGrade = &response
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.GradebookAggregate{}, err
	}

	records, err := s.attendance.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return dto.GradebookAggregate{}, err
	}

	for _, record := range records {
		switch record.Status {
		case models.AttendanceStatusPresent:
			aggregate.PresentCount++
		case models.AttendanceStatusLate:
			aggregate.LateCount++
		case models.AttendanceStatusAbsent:
			aggregate.AbsentCount++
		case models.AttendanceStatusExcused:
			aggregate.ExcusedCount++
		}
	}
	aggregate.TotalSessions = len(records)
	if aggregate.TotalSessions > 0 {
		aggregate.AttendanceRate = float64(aggregate.PresentCount) / float64(aggregate.TotalSessions)
	}

	return aggregate, nil
}

func (s *gradebookService) loadEnrollment(ctx context.Context, enrollmentID uint) (models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Enrollment{}, ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

// normalizeSessionDate truncates to the calendar day so duplicate detection is
// insensitive to the time-of-day component of client payloads.
func normalizeSessionDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
