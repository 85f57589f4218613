package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/observability"
	"github.com/credentia/credentia-api/internal/repository"
)

// ErrEnrollmentNotFound indicates an enrollment could not be found.
var ErrEnrollmentNotFound = errors.New("enrollment not found")

// ProgressReader exposes the derived progress snapshot of an enrollment.
type ProgressReader interface {
	GetProgress(ctx context.Context, enrollmentID uint) (dto.ProgressSnapshot, error)
}

// GradebookReader exposes the grade and attendance aggregate of an enrollment.
type GradebookReader interface {
	GetAggregate(ctx context.Context, enrollmentID uint) (dto.GradebookAggregate, error)
}

// EligibilityService decides whether an enrollment qualifies for a certificate.
// Evaluate is pure and safe to call arbitrarily often; its cost is bounded by
// one enrollment's records.
type EligibilityService interface {
	Evaluate(ctx context.Context, enrollmentID uint) (dto.EligibilityResult, error)
}

type eligibilityService struct {
	enrollments repository.EnrollmentRepository
	progress    ProgressReader
	gradebook   GradebookReader
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewEligibilityService constructs the evaluator.
func NewEligibilityService(enrollments repository.EnrollmentRepository, progress ProgressReader, gradebook GradebookReader, logger zerolog.Logger) EligibilityService {
	return &eligibilityService{
		enrollments: enrollments,
		progress:    progress,
		gradebook:   gradebook,
		logger:      logger.With().Str("component", "eligibility_service").Logger(),
		tracer:      otel.Tracer("github.com/credentia/credentia-api/internal/service/eligibility"),
	}
}

func (s *eligibilityService) Evaluate(ctx context.Context, enrollmentID uint) (dto.EligibilityResult, error) {
	ctx, span := s.tracer.Start(ctx, "eligibility.evaluate", trace.WithAttributes(
		attribute.Int64("eligibility.enrollment_id", int64(enrollmentID)),
	))
	defer span.End()

	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EligibilityResult{}, ErrEnrollmentNotFound
		}
		span.RecordError(err)
		return dto.EligibilityResult{}, err
	}

	result, err := s.evaluatePolicy(ctx, enrollment)
	if err != nil {
		span.RecordError(err)
		return dto.EligibilityResult{}, err
	}

	outcome := result.Reason
	if result.Eligible {
		outcome = "eligible"
	}
	span.SetAttributes(
		attribute.Bool("eligibility.eligible", result.Eligible),
		attribute.String("eligibility.outcome", outcome),
	)
	observability.EligibilityChecks().WithLabelValues(enrollment.Course.PolicyKind, outcome).Inc()

	return result, nil
}

// evaluatePolicy runs the ordered policy checks. The certificate-enabled gate
// short-circuits before any other evidence is consulted.
func (s *eligibilityService) evaluatePolicy(ctx context.Context, enrollment models.Enrollment) (dto.EligibilityResult, error) {
	course := enrollment.Course

	if !course.CertificateEnabled {
		return dto.NotEligible(dto.ReasonCertificatesDisabled, nil), nil
	}

	switch course.PolicyKind {
	case models.PolicyModulePercentage:
		snapshot, err := s.progress.GetProgress(ctx, enrollment.ID)
		if err != nil {
			return dto.EligibilityResult{}, err
		}
		if float64(snapshot.Percentage) >= course.PassThreshold {
			return dto.Eligible(), nil
		}
		return dto.NotEligible(dto.ReasonInsufficientProgress, map[string]interface{}{
			"percentage": snapshot.Percentage,
			"required":   course.PassThreshold,
		}), nil

	case models.PolicyGradeAttendance:
		aggregate, err := s.gradebook.GetAggregate(ctx, enrollment.ID)
		if err != nil {
			return dto.EligibilityResult{}, err
		}
		if aggregate.FinalGrade == nil {
			return dto.NotEligible(dto.ReasonNotGraded, nil), nil
		}
		if aggregate.FinalGrade.Scale < course.PassThreshold {
			return dto.NotEligible(dto.ReasonGradeBelowThreshold, map[string]interface{}{
				"scale":    aggregate.FinalGrade.Scale,
				"required": course.PassThreshold,
			}), nil
		}
		if course.MinAttendanceRate != nil && aggregate.AttendanceRate < *course.MinAttendanceRate {
			return dto.NotEligible(dto.ReasonInsufficientAttendance, map[string]interface{}{
				"rate":     aggregate.AttendanceRate,
				"required": *course.MinAttendanceRate,
			}), nil
		}
		return dto.Eligible(), nil

	default:
		s.logger.Error().Str("policy_kind", course.PolicyKind).Uint("course_id", course.ID).Msg("unknown completion policy kind")
		return dto.EligibilityResult{}, errors.New("unknown completion policy kind")
	}
}
