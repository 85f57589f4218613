package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
)

func completeModules(t *testing.T, env *engineEnv, enrollmentID uint, modules []models.CourseModule) {
	t.Helper()
	for _, module := range modules {
		_, err := env.progress.MarkModuleComplete(context.Background(), enrollmentID, module.ID)
		require.NoError(t, err)
	}
}

func recordFinalGrade(t *testing.T, env *engineEnv, enrollmentID uint, scale float64) {
	t.Helper()
	_, err := env.gradebook.RecordGrade(context.Background(), enrollmentID, dto.GradeRecordRequest{Scale: scale}, nil)
	require.NoError(t, err)
}

func TestEvaluateDisabledCertificatesShortCircuits(t *testing.T) {
	env := newEngineEnv(t)
	course := percentageCourse(100, "Intro", "Routing")
	course.CertificateEnabled = false
	enrollment := env.enroll(t, course)
	completeModules(t, env, enrollment.ID, env.courseModules(t, enrollment.CourseID))

	result, err := env.eligibility.Evaluate(context.Background(), enrollment.ID)
	require.NoError(t, err)
	require.False(t, result.Eligible)
	require.Equal(t, dto.ReasonCertificatesDisabled, result.Reason)
}

func TestEvaluateInsufficientProgress(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, percentageCourse(100, "Intro", "Routing", "Persistence"))
	modules := env.courseModules(t, enrollment.CourseID)
	completeModules(t, env, enrollment.ID, modules[:2])

	result, err := env.eligibility.Evaluate(context.Background(), enrollment.ID)
	require.NoError(t, err)
	require.False(t, result.Eligible)
	require.Equal(t, dto.ReasonInsufficientProgress, result.Reason)
	require.Equal(t, 67, result.Details["percentage"])
}

func TestEvaluateFullProgressIsEligible(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, percentageCourse(100, "Intro", "Routing", "Persistence"))
	completeModules(t, env, enrollment.ID, env.courseModules(t, enrollment.CourseID))

	result, err := env.eligibility.Evaluate(context.Background(), enrollment.ID)
	require.NoError(t, err)
	require.True(t, result.Eligible)
	require.Empty(t, result.Reason)
}

func TestEvaluateGradeThresholdBoundary(t *testing.T) {
	env := newEngineEnv(t)

	t.Run("exactly at threshold passes", func(t *testing.T) {
		enrollment := env.enroll(t, gradeCourse(7.0, nil))
		recordFinalGrade(t, env, enrollment.ID, 7.0)

		result, err := env.eligibility.Evaluate(context.Background(), enrollment.ID)
		require.NoError(t, err)
		require.True(t, result.Eligible)
	})

	t.Run("just below threshold fails", func(t *testing.T) {
		course := gradeCourse(7.0, nil)
		course.Title = "Distributed Systems II"
		enrollment := env.enroll(t, course)
		recordFinalGrade(t, env, enrollment.ID, 6.99)

		result, err := env.eligibility.Evaluate(context.Background(), enrollment.ID)
		require.NoError(t, err)
		require.False(t, result.Eligible)
		require.Equal(t, dto.ReasonGradeBelowThreshold, result.Reason)
		require.Equal(t, 6.99, result.Details["scale"])
	})
}

func TestEvaluateRequiresFinalGrade(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, nil))

	result, err := env.eligibility.Evaluate(context.Background(), enrollment.ID)
	require.NoError(t, err)
	require.False(t, result.Eligible)
	require.Equal(t, dto.ReasonNotGraded, result.Reason)
}

func TestEvaluateInsufficientAttendance(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, floatPtr(0.75)))
	recordFinalGrade(t, env, enrollment.ID, 8.5)

	sessions := []models.AttendanceRecord{
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(1), SessionTitle: "Week 1", Status: models.AttendanceStatusPresent},
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(2), SessionTitle: "Week 2", Status: models.AttendanceStatusPresent},
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(3), SessionTitle: "Week 3", Status: models.AttendanceStatusAbsent},
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(4), SessionTitle: "Week 4", Status: models.AttendanceStatusLate},
	}
	require.NoError(t, env.db.Create(&sessions).Error)

	result, err := env.eligibility.Evaluate(context.Background(), enrollment.ID)
	require.NoError(t, err)
	require.False(t, result.Eligible)
	require.Equal(t, dto.ReasonInsufficientAttendance, result.Reason)
	require.Equal(t, 0.5, result.Details["rate"])
}

func TestEvaluateGradeAndAttendanceEligible(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, floatPtr(0.5)))
	recordFinalGrade(t, env, enrollment.ID, 7.5)

	sessions := []models.AttendanceRecord{
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(1), SessionTitle: "Week 1", Status: models.AttendanceStatusPresent},
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(2), SessionTitle: "Week 2", Status: models.AttendanceStatusAbsent},
	}
	require.NoError(t, env.db.Create(&sessions).Error)

	result, err := env.eligibility.Evaluate(context.Background(), enrollment.ID)
	require.NoError(t, err)
	require.True(t, result.Eligible)
}

func TestEvaluateUnknownEnrollment(t *testing.T) {
	env := newEngineEnv(t)

	_, err := env.eligibility.Evaluate(context.Background(), 404)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
