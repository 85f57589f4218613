package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
)

var (
	// ErrLearnerNotFound indicates the learner does not exist.
	ErrLearnerNotFound = errors.New("learner not found")
	// ErrAlreadyEnrolled indicates the learner already has an enrollment in the
	// course.
	ErrAlreadyEnrolled = errors.New("learner already enrolled in course")
)

// EnrollmentService manages enrollments and derives their status from the
// evidence other services record.
type EnrollmentService interface {
	Enroll(ctx context.Context, payload dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error)
	GetByID(ctx context.Context, id uint) (dto.EnrollmentResponse, error)
	ListByLearner(ctx context.Context, learnerID uint) ([]dto.EnrollmentResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.EnrollmentResponse, error)
	DeriveStatus(ctx context.Context, enrollment models.Enrollment) (string, error)
}

type enrollmentService struct {
	enrollments  repository.EnrollmentRepository
	learners     repository.LearnerRepository
	courses      repository.CourseRepository
	certificates repository.CertificateRepository
	progress     repository.ModuleProgressRepository
	grades       repository.GradeRepository
	attendance   repository.AttendanceRepository
	eligibility  EligibilityService
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	learners repository.LearnerRepository,
	courses repository.CourseRepository,
	certificates repository.CertificateRepository,
	progress repository.ModuleProgressRepository,
	grades repository.GradeRepository,
	attendance repository.AttendanceRepository,
	eligibility EligibilityService,
	validate *validator.Validate,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollments:  enrollments,
		learners:     learners,
		courses:      courses,
		certificates: certificates,
		progress:     progress,
		grades:       grades,
		attendance:   attendance,
		eligibility:  eligibility,
		validator:    validate,
		logger:       logger.With().Str("component", "enrollment_service").Logger(),
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, payload dto.EnrollmentCreateRequest) (dto.EnrollmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	if _, err := s.learners.GetByID(ctx, payload.LearnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrLearnerNotFound
		}
		return dto.EnrollmentResponse{}, err
	}
	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrCourseNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{
		LearnerID: payload.LearnerID,
		CourseID:  payload.CourseID,
	}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
		}
		return dto.EnrollmentResponse{}, err
	}

	// Re-read through baseQuery so the response carries learner and course.
	created, err := s.enrollments.GetByID(ctx, enrollment.ID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().
		Uint("enrollment_id", created.ID).
		Uint("learner_id", created.LearnerID).
		Uint("course_id", created.CourseID).
		Msg("learner enrolled")

	return dto.NewEnrollmentResponse(created, models.EnrollmentStatusNotStarted), nil
}

func (s *enrollmentService) GetByID(ctx context.Context, id uint) (dto.EnrollmentResponse, error) {
	enrollment, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrEnrollmentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	status, err := s.DeriveStatus(ctx, enrollment)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	return dto.NewEnrollmentResponse(enrollment, status), nil
}

func (s *enrollmentService) ListByLearner(ctx context.Context, learnerID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, enrollments)
}

func (s *enrollmentService) ListByCourse(ctx context.Context, courseID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, enrollments)
}

func (s *enrollmentService) toResponses(ctx context.Context, enrollments []models.Enrollment) ([]dto.EnrollmentResponse, error) {
	responses := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		status, err := s.DeriveStatus(ctx, enrollment)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewEnrollmentResponse(enrollment, status))
	}
	return responses, nil
}

// DeriveStatus computes the enrollment status from stored evidence. Status is
// never persisted; certified is checked first because it is terminal.
func (s *enrollmentService) DeriveStatus(ctx context.Context, enrollment models.Enrollment) (string, error) {
	if _, err := s.certificates.GetByEnrollment(ctx, enrollment.ID); err == nil {
		return models.EnrollmentStatusCertified, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	started, err := s.hasEvidence(ctx, enrollment.ID)
	if err != nil {
		return "", err
	}
	if !started {
		return models.EnrollmentStatusNotStarted, nil
	}

	result, err := s.eligibility.Evaluate(ctx, enrollment.ID)
	if err != nil {
		return "", err
	}
	if result.Eligible {
		return models.EnrollmentStatusEligible, nil
	}
	return models.EnrollmentStatusInProgress, nil
}

func (s *enrollmentService) hasEvidence(ctx context.Context, enrollmentID uint) (bool, error) {
	progress, err := s.progress.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return false, err
	}
	if len(progress) > 0 {
		return true, nil
	}

	grades, err := s.grades.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return false, err
	}
	if len(grades) > 0 {
		return true, nil
	}

	attendance, err := s.attendance.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return false, err
	}
	return len(attendance) > 0, nil
}
