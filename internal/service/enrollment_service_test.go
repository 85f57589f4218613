package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
)

func newEnrollmentService(env *engineEnv) EnrollmentService {
	return NewEnrollmentService(
		env.enrollments,
		env.learners,
		env.courses,
		env.certificates,
		env.progressRepo,
		env.grades,
		env.attendance,
		env.eligibility,
		env.validate,
		zerolog.Nop(),
	)
}

func TestEnrollCreatesEnrollment(t *testing.T) {
	env := newEngineEnv(t)
	service := newEnrollmentService(env)
	ctx := context.Background()

	learner := models.Learner{Name: "Budi Santoso", Email: "budi.santoso@example.com"}
	require.NoError(t, env.db.Create(&learner).Error)
	course := percentageCourse(100, "Intro", "Routing")
	require.NoError(t, env.db.Create(&course).Error)

	enrollment, err := service.Enroll(ctx, dto.EnrollmentCreateRequest{LearnerID: learner.ID, CourseID: course.ID})
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusNotStarted, enrollment.Status)
	require.Equal(t, learner.Email, enrollment.Learner.Email)
	require.Equal(t, course.Title, enrollment.Course.Title)
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	env := newEngineEnv(t)
	service := newEnrollmentService(env)
	ctx := context.Background()

	learner := models.Learner{Name: "Budi Santoso", Email: "budi.duplicate@example.com"}
	require.NoError(t, env.db.Create(&learner).Error)
	course := percentageCourse(100, "Intro")
	require.NoError(t, env.db.Create(&course).Error)

	payload := dto.EnrollmentCreateRequest{LearnerID: learner.ID, CourseID: course.ID}

	_, err := service.Enroll(ctx, payload)
	require.NoError(t, err)

	_, err = service.Enroll(ctx, payload)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestEnrollValidatesReferences(t *testing.T) {
	env := newEngineEnv(t)
	service := newEnrollmentService(env)
	ctx := context.Background()

	course := percentageCourse(100, "Intro")
	require.NoError(t, env.db.Create(&course).Error)

	_, err := service.Enroll(ctx, dto.EnrollmentCreateRequest{LearnerID: 999, CourseID: course.ID})
	require.ErrorIs(t, err, ErrLearnerNotFound)

	learner := models.Learner{Name: "Citra Dewi", Email: "citra.dewi@example.com"}
	require.NoError(t, env.db.Create(&learner).Error)

	_, err = service.Enroll(ctx, dto.EnrollmentCreateRequest{LearnerID: learner.ID, CourseID: 999})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestDeriveStatusLifecycle(t *testing.T) {
	env := newEngineEnv(t)
	service := newEnrollmentService(env)
	ctx := context.Background()

	enrollment := env.enroll(t, percentageCourse(100, "Intro", "Routing"))
	modules := env.courseModules(t, enrollment.CourseID)

	loaded, err := env.enrollments.GetByID(ctx, enrollment.ID)
	require.NoError(t, err)

	status, err := service.DeriveStatus(ctx, loaded)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusNotStarted, status)

	_, err = env.progress.MarkModuleComplete(ctx, enrollment.ID, modules[0].ID)
	require.NoError(t, err)

	status, err = service.DeriveStatus(ctx, loaded)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusInProgress, status)

	_, err = env.progress.MarkModuleComplete(ctx, enrollment.ID, modules[1].ID)
	require.NoError(t, err)

	status, err = service.DeriveStatus(ctx, loaded)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusEligible, status)

	certificate := models.Certificate{
		EnrollmentID:      enrollment.ID,
		LearnerID:         enrollment.LearnerID,
		CourseID:          enrollment.CourseID,
		CertificateNumber: "CRD-2026-TEST0001",
		VerificationCode:  "lifecycle-code",
		IssuedAt:          time.Now(),
	}
	require.NoError(t, env.db.Create(&certificate).Error)

	status, err = service.DeriveStatus(ctx, loaded)
	require.NoError(t, err)
	require.Equal(t, models.EnrollmentStatusCertified, status)
}

func TestGetByIDUnknownEnrollment(t *testing.T) {
	env := newEngineEnv(t)
	service := newEnrollmentService(env)

	_, err := service.GetByID(context.Background(), 321)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
