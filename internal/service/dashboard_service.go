package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
)

// DashboardService aggregates a learner's enrollments with progress, grades,
// eligibility and certificate state into one read-optimized view.
type DashboardService interface {
	GetDashboard(ctx context.Context, learnerID uint) (dto.LearnerDashboardResponse, error)
}

type dashboardService struct {
	learners     repository.LearnerRepository
	enrollments  repository.EnrollmentRepository
	certificates repository.CertificateRepository
	progress     ProgressReader
	gradebook    GradebookReader
	eligibility  EligibilityService
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(
	learners repository.LearnerRepository,
	enrollments repository.EnrollmentRepository,
	certificates repository.CertificateRepository,
	progress ProgressReader,
	gradebook GradebookReader,
	eligibility EligibilityService,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		learners:     learners,
		enrollments:  enrollments,
		certificates: certificates,
		progress:     progress,
		gradebook:    gradebook,
		eligibility:  eligibility,
		cache:        cache,
		cacheTTL:     ttl,
		logger:       logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, learnerID uint) (dto.LearnerDashboardResponse, error) {
	if _, err := s.learners.GetByID(ctx, learnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LearnerDashboardResponse{}, ErrLearnerNotFound
		}
		return dto.LearnerDashboardResponse{}, err
	}

	cacheKey := fmt.Sprintf("dashboard:learner:%d", learnerID)

	// Short TTL, not invalidation: dashboard staleness is bounded and harmless,
	// the eligibility evaluator itself is never read through this cache.
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.LearnerDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("learner_id", learnerID).Msg("dashboard cache hit")
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	enrollments, err := s.enrollments.ListByLearner(ctx, learnerID)
	if err != nil {
		return dto.LearnerDashboardResponse{}, err
	}

	response, err := s.buildResponse(ctx, learnerID, enrollments)
	if err != nil {
		return dto.LearnerDashboardResponse{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *dashboardService) buildResponse(ctx context.Context, learnerID uint, enrollments []models.Enrollment) (dto.LearnerDashboardResponse, error) {
	response := dto.LearnerDashboardResponse{
		LearnerID:   learnerID,
		Enrollments: make([]dto.EnrollmentOverview, 0, len(enrollments)),
	}
	response.Summary.TotalEnrollments = len(enrollments)

	for _, enrollment := range enrollments {
		overview := dto.EnrollmentOverview{
			EnrollmentID: enrollment.ID,
			CourseID:     enrollment.CourseID,
			CourseTitle:  enrollment.Course.Title,
		}

		progress, err := s.progress.GetProgress(ctx, enrollment.ID)
		if err != nil {
			return dto.LearnerDashboardResponse{}, err
		}
		overview.Progress = progress

		aggregate, err := s.gradebook.GetAggregate(ctx, enrollment.ID)
		if err != nil {
			return dto.LearnerDashboardResponse{}, err
		}
		overview.Gradebook = aggregate

		result, err := s.eligibility.Evaluate(ctx, enrollment.ID)
		if err != nil {
			return dto.LearnerDashboardResponse{}, err
		}
		overview.Eligibility = result

		certificate, err := s.certificates.GetByEnrollment(ctx, enrollment.ID)
		switch {
		case err == nil:
			certResponse := dto.NewCertificateResponse(certificate)
			overview.Certificate = &certResponse
			overview.Status = models.EnrollmentStatusCertified
		case errors.Is(err, gorm.ErrRecordNotFound):
			overview.Status = deriveOverviewStatus(progress, aggregate, result)
		default:
			return dto.LearnerDashboardResponse{}, err
		}

		switch overview.Status {
		case models.EnrollmentStatusNotStarted:
			response.Summary.NotStarted++
		case models.EnrollmentStatusInProgress:
			response.Summary.InProgress++
		case models.EnrollmentStatusEligible:
			response.Summary.Eligible++
		case models.EnrollmentStatusCertified:
			response.Summary.Certified++
		}

		response.Enrollments = append(response.Enrollments, overview)
	}

	return response, nil
}

// deriveOverviewStatus reuses evidence already fetched for the row instead of
// issuing the per-enrollment queries DeriveStatus would repeat.
func deriveOverviewStatus(progress dto.ProgressSnapshot, aggregate dto.GradebookAggregate, eligibility dto.EligibilityResult) string {
	if eligibility.Eligible {
		return models.EnrollmentStatusEligible
	}

	started := progress.CompletedRequired > 0 ||
		progress.OptionalCompleted > 0 ||
		aggregate.FinalGrade != nil ||
		aggregate.TotalSessions > 0
	if started {
		return models.EnrollmentStatusInProgress
	}
	return models.EnrollmentStatusNotStarted
}
