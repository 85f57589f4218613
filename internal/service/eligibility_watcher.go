package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
)

const watcherEvaluateTimeout = 10 * time.Second

// EligibilityWatcher re-evaluates an enrollment after progress changes and
// notifies the learner on the transition into eligibility. It implements
// EvaluationTrigger and runs off the request path.
type EligibilityWatcher struct {
	eligibility  EligibilityService
	certificates repository.CertificateRepository
	notifier     NotificationService
	logger       zerolog.Logger
}

// NewEligibilityWatcher constructs the watcher.
func NewEligibilityWatcher(eligibility EligibilityService, certificates repository.CertificateRepository, notifier NotificationService, logger zerolog.Logger) *EligibilityWatcher {
	return &EligibilityWatcher{
		eligibility:  eligibility,
		certificates: certificates,
		notifier:     notifier,
		logger:       logger.With().Str("component", "eligibility_watcher").Logger(),
	}
}

// EnrollmentProgressed schedules an asynchronous re-evaluation. It returns
// immediately; failures here only delay a notification, never correctness,
// because eligibility is recomputed on every read.
func (w *EligibilityWatcher) EnrollmentProgressed(enrollment models.Enrollment) {
	go w.evaluate(enrollment)
}

func (w *EligibilityWatcher) evaluate(enrollment models.Enrollment) {
	ctx, cancel := context.WithTimeout(context.Background(), watcherEvaluateTimeout)
	defer cancel()

	// Certified enrollments are terminal; no further announcements.
	if _, err := w.certificates.GetByEnrollment(ctx, enrollment.ID); err == nil {
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		w.logger.Warn().Err(err).Uint("enrollment_id", enrollment.ID).Msg("failed to check certificate before re-evaluation")
		return
	}

	result, err := w.eligibility.Evaluate(ctx, enrollment.ID)
	if err != nil {
		w.logger.Warn().Err(err).Uint("enrollment_id", enrollment.ID).Msg("background eligibility evaluation failed")
		return
	}
	if !result.Eligible {
		return
	}

	if w.notifier != nil {
		w.notifier.EnrollmentEligible(ctx, enrollment)
	}
}
