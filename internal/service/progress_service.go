package service

import (
	"context"
	"errors"
	"math"
	"time"

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

var (
	// ErrModuleNotFound indicates the module does not exist.
	ErrModuleNotFound = errors.New("module not found")
	// ErrModuleNotInCourse indicates the module belongs to a different course
	// than the enrollment's.
	ErrModuleNotInCourse = errors.New("module does not belong to the enrollment's course")
)

// EvaluationTrigger is invoked after a module completion so that eligibility
// can be re-evaluated asynchronously. Implementations must be non-blocking.
type EvaluationTrigger interface {
	EnrollmentProgressed(enrollment models.Enrollment)
}

// ProgressService tracks module completion per enrollment.
type ProgressService interface {
	ProgressReader
	MarkModuleComplete(ctx context.Context, enrollmentID, moduleID uint) (dto.ProgressSnapshot, error)
}

type progressService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	progress    repository.ModuleProgressRepository
	trigger     EvaluationTrigger
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewProgressService constructs a ProgressService instance. The evaluation
// trigger is optional and attached after wiring to avoid a construction cycle
// with the eligibility evaluator.
func NewProgressService(enrollments repository.EnrollmentRepository, courses repository.CourseRepository, progress repository.ModuleProgressRepository, logger zerolog.Logger) *ProgressTracker {
	return &ProgressTracker{
		progressService: progressService{
			enrollments: enrollments,
			courses:     courses,
			progress:    progress,
			logger:      logger.With().Str("component", "progress_service").Logger(),
			tracer:      otel.Tracer("github.com/credentia/credentia-api/internal/service/progress"),
			now:         time.Now,
		},
	}
}

// ProgressTracker is the concrete ProgressService with a settable trigger.
type ProgressTracker struct {
	progressService
}

// SetEvaluationTrigger attaches the asynchronous re-evaluation hook.
func (s *ProgressTracker) SetEvaluationTrigger(trigger EvaluationTrigger) {
	s.trigger = trigger
}

func (s *progressService) MarkModuleComplete(ctx context.Context, enrollmentID, moduleID uint) (dto.ProgressSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "progress.mark_complete", trace.WithAttributes(
		attribute.Int64("progress.enrollment_id", int64(enrollmentID)),
		attribute.Int64("progress.module_id", int64(moduleID)),
	))
	defer span.End()

	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressSnapshot{}, ErrEnrollmentNotFound
		}
		span.RecordError(err)
		return dto.ProgressSnapshot{}, err
	}

	module, err := s.courses.GetModule(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressSnapshot{}, ErrModuleNotFound
		}
		span.RecordError(err)
		return dto.ProgressSnapshot{}, err
	}

	if module.CourseID != enrollment.CourseID {
		return dto.ProgressSnapshot{}, ErrModuleNotInCourse
	}

	// Idempotent: an existing row means the module is already completed and
	// CompletedAt must not move.
	if _, err := s.progress.Get(ctx, enrollmentID, moduleID); err == nil {
		span.SetAttributes(attribute.Bool("progress.idempotent", true))
		return s.buildSnapshot(ctx, enrollment)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.ProgressSnapshot{}, err
	}

	row := models.ModuleProgress{
		EnrollmentID: enrollmentID,
		ModuleID:     moduleID,
		CompletedAt:  s.now(),
	}
	if err := s.progress.Create(ctx, &row); err != nil {
		// A concurrent completion of the same module won the unique index; the
		// outcome is the same completed state.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			span.RecordError(err)
			return dto.ProgressSnapshot{}, err
		}
	}

	observability.ProgressUpdates().WithLabelValues(enrollment.Course.PolicyKind).Inc()
	s.logger.Info().
		Uint("enrollment_id", enrollmentID).
		Uint("module_id", moduleID).
		Msg("module completed")

	snapshot, err := s.buildSnapshot(ctx, enrollment)
	if err != nil {
		return dto.ProgressSnapshot{}, err
	}

	// Fire-and-forget: the caller decides whether to check eligibility
	// synchronously; the trigger only feeds notifications.
	if s.trigger != nil {
		s.trigger.EnrollmentProgressed(enrollment)
	}

	return snapshot, nil
}

func (s *progressService) GetProgress(ctx context.Context, enrollmentID uint) (dto.ProgressSnapshot, error) {
	enrollment, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressSnapshot{}, ErrEnrollmentNotFound
		}
		return dto.ProgressSnapshot{}, err
	}

	return s.buildSnapshot(ctx, enrollment)
}

// buildSnapshot recomputes the percentage from current rows so the snapshot
// never drifts when modules are added to or removed from the course after
// enrollment.
func (s *progressService) buildSnapshot(ctx context.Context, enrollment models.Enrollment) (dto.ProgressSnapshot, error) {
	rows, err := s.progress.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return dto.ProgressSnapshot{}, err
	}

	completedAt := make(map[uint]time.Time, len(rows))
	var lastCompleted *time.Time
	for _, row := range rows {
		completedAt[row.ModuleID] = row.CompletedAt
		if lastCompleted == nil || row.CompletedAt.After(*lastCompleted) {
			at := row.CompletedAt
			lastCompleted = &at
		}
	}

	snapshot := dto.ProgressSnapshot{
		EnrollmentID:    enrollment.ID,
		LastCompletedAt: lastCompleted,
		Modules:         make([]dto.ModuleProgressItem, 0, len(enrollment.Course.Modules)),
	}

	for _, module := range enrollment.Course.Modules {
		item := dto.ModuleProgressItem{
			ModuleID:   module.ID,
			Title:      module.Title,
			Position:   module.Position,
			IsRequired: module.IsRequired,
		}
		if at, ok := completedAt[module.ID]; ok {
			completed := at
			item.CompletedAt = &completed
			if module.IsRequired {
				snapshot.CompletedRequired++
			} else {
				snapshot.OptionalCompleted++
			}
		}
		if module.IsRequired {
			snapshot.TotalRequired++
		}
		snapshot.Modules = append(snapshot.Modules, item)
	}

	if snapshot.TotalRequired > 0 {
		ratio := float64(snapshot.CompletedRequired) / float64(snapshot.TotalRequired)
		snapshot.Percentage = int(math.Round(ratio * 100))
	}

	return snapshot, nil
}
