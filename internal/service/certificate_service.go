package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/observability"
	"github.com/credentia/credentia-api/internal/repository"
)

// ErrCertificateNotFound indicates no certificate matches the verification code.
var ErrCertificateNotFound = errors.New("certificate not found")

// NotEligibleError is returned when issuance is requested for an enrollment
// that does not satisfy its course's policy. It is an expected, frequent
// outcome, not an exceptional failure.
type NotEligibleError struct {
	Reason  string
	Details map[string]interface{}
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("enrollment not eligible for certificate: %s", e.Reason)
}

// CertificateEvents receives issuance announcements. Implementations must not
// block issuance on delivery failures.
type CertificateEvents interface {
	CertificateIssued(ctx context.Context, enrollment models.Enrollment, certificate dto.CertificateResponse)
}

// CertificateService mints and verifies immutable certificates. Issue is
// idempotent per (learner, course); Verify is public and read-only.
type CertificateService interface {
	Issue(ctx context.Context, enrollmentID uint) (dto.CertificateResponse, error)
	GetForEnrollment(ctx context.Context, enrollmentID uint) (dto.CertificateResponse, error)
	Verify(ctx context.Context, verificationCode string) (dto.CertificateResponse, error)
}

type certificateService struct {
	certificates repository.CertificateRepository
	enrollments  repository.EnrollmentRepository
	eligibility  EligibilityService
	progress     ProgressReader
	gradebook    GradebookReader
	events       CertificateEvents
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewCertificateService constructs the issuer.
func NewCertificateService(certificates repository.CertificateRepository, enrollments repository.EnrollmentRepository, eligibility EligibilityService, progress ProgressReader, gradebook GradebookReader, events CertificateEvents, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) CertificateService {
	return &certificateService{
		certificates: certificates,
		enrollments:  enrollments,
		eligibility:  eligibility,
		progress:     progress,
		gradebook:    gradebook,
		events:       events,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger.With().Str("component", "certificate_service").Logger(),
		tracer:       otel.Tracer("github.com/credentia/credentia-api/internal/service/certificate"),
		now:          time.Now,
	}
}

func (s *certificateService) Issue(ctx context.Context, enrollmentID uint) (dto.CertificateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.issue", trace.WithAttributes(
		attribute.Int64("certificate.enrollment_id", int64(enrollmentID)),
	))
	defer span.End()

	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "enrollment_not_found")
			return dto.CertificateResponse{}, ErrEnrollmentNotFound
		}
		span.RecordError(err)
		return dto.CertificateResponse{}, err
	}

	// Idempotent: an already-certified pair returns the existing record
	// unchanged, without re-evaluating anything.
	existing, err := s.certificates.GetByLearnerAndCourse(ctx, enrollment.LearnerID, enrollment.CourseID)
	if err == nil {
		span.SetAttributes(attribute.Bool("certificate.already_issued", true))
		return dto.NewCertificateResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.CertificateResponse{}, err
	}

	result, err := s.eligibility.Evaluate(ctx, enrollmentID)
	if err != nil {
		span.RecordError(err)
		return dto.CertificateResponse{}, err
	}
	if !result.Eligible {
		span.SetStatus(codes.Error, result.Reason)
		return dto.CertificateResponse{}, &NotEligibleError{Reason: result.Reason, Details: result.Details}
	}

	snapshot, err := s.buildSnapshot(ctx, enrollment)
	if err != nil {
		span.RecordError(err)
		return dto.CertificateResponse{}, err
	}
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		span.RecordError(err)
		return dto.CertificateResponse{}, err
	}

	issuedAt := s.now()
	certificate := models.Certificate{
		EnrollmentID:       enrollment.ID,
		LearnerID:          enrollment.LearnerID,
		CourseID:           enrollment.CourseID,
		CertificateNumber:  buildCertificateNumber(issuedAt),
		VerificationCode:   uuid.NewString(),
		QualifyingSnapshot: datatypes.JSON(snapshotJSON),
		IssuedAt:           issuedAt,
	}

	if err := s.certificates.Create(ctx, &certificate); err != nil {
		// A concurrent Issue for the same (learner, course) won the unique
		// index. Re-read and return the winning row instead of erroring.
		winner, readErr := s.certificates.GetByLearnerAndCourse(ctx, enrollment.LearnerID, enrollment.CourseID)
		if readErr == nil {
			span.SetAttributes(attribute.Bool("certificate.race_resolved", true))
			return dto.NewCertificateResponse(winner), nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "certificate_create_failed")
		return dto.CertificateResponse{}, err
	}

	observability.CertificatesIssued().WithLabelValues(enrollment.Course.PolicyKind).Inc()
	span.SetAttributes(attribute.String("certificate.number", certificate.CertificateNumber))

	s.logger.Info().
		Uint("enrollment_id", enrollment.ID).
		Uint("learner_id", enrollment.LearnerID).
		Uint("course_id", enrollment.CourseID).
		Str("certificate_number", certificate.CertificateNumber).
		Msg("certificate issued")

	response := dto.NewCertificateResponse(certificate)
	if s.events != nil {
		s.events.CertificateIssued(ctx, enrollment, response)
	}

	return response, nil
}

func (s *certificateService) GetForEnrollment(ctx context.Context, enrollmentID uint) (dto.CertificateResponse, error) {
	certificate, err := s.certificates.GetByEnrollment(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CertificateResponse{}, ErrCertificateNotFound
		}
		return dto.CertificateResponse{}, err
	}
	return dto.NewCertificateResponse(certificate), nil
}

func (s *certificateService) Verify(ctx context.Context, verificationCode string) (dto.CertificateResponse, error) {
	code := strings.TrimSpace(verificationCode)
	if code == "" {
		return dto.CertificateResponse{}, ErrCertificateNotFound
	}

	cacheKey := "certificate:verify:" + code

	// Certificates are immutable, so a cache hit can never be stale.
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.CertificateResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.CertificateVerifications().WithLabelValues("cache_hit").Inc()
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read verification cache")
		}
	}

	certificate, err := s.certificates.GetByVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.CertificateVerifications().WithLabelValues("not_found").Inc()
			return dto.CertificateResponse{}, ErrCertificateNotFound
		}
		return dto.CertificateResponse{}, err
	}

	response := dto.NewCertificateResponse(certificate)
	observability.CertificateVerifications().WithLabelValues("found").Inc()

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store verification cache")
			}
		}
	}

	return response, nil
}

// buildSnapshot freezes the qualifying evidence at issuance time. It is never
// recomputed afterwards; later grade corrections do not touch it.
func (s *certificateService) buildSnapshot(ctx context.Context, enrollment models.Enrollment) (models.CertificateSnapshot, error) {
	snapshot := models.CertificateSnapshot{
		PolicyKind:    enrollment.Course.PolicyKind,
		PassThreshold: enrollment.Course.PassThreshold,
	}

	switch enrollment.Course.PolicyKind {
	case models.PolicyModulePercentage:
		progress, err := s.progress.GetProgress(ctx, enrollment.ID)
		if err != nil {
			return models.CertificateSnapshot{}, err
		}
		percentage := progress.Percentage
		snapshot.Percentage = &percentage

	case models.PolicyGradeAttendance:
		aggregate, err := s.gradebook.GetAggregate(ctx, enrollment.ID)
		if err != nil {
			return models.CertificateSnapshot{}, err
		}
		if aggregate.FinalGrade != nil {
			scale := aggregate.FinalGrade.Scale
			snapshot.FinalGrade = &scale
		}
		rate := aggregate.AttendanceRate
		present := aggregate.PresentCount
		total := aggregate.TotalSessions
		snapshot.AttendanceRate = &rate
		snapshot.PresentCount = &present
		snapshot.TotalSessions = &total
	}

	return snapshot, nil
}

// buildCertificateNumber produces a human-presentable unique number such as
// CRD-2026-4F2A91C3.
func buildCertificateNumber(issuedAt time.Time) string {
	entropy := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("CRD-%d-%s", issuedAt.Year(), entropy)
}
