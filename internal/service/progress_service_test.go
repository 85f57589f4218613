package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/credentia/credentia-api/internal/models"
)

type recordingTrigger struct {
	mu     sync.Mutex
	events []uint
}

func (r *recordingTrigger) EnrollmentProgressed(enrollment models.Enrollment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, enrollment.ID)
}

func (r *recordingTrigger) seen() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint(nil), r.events...)
}

func TestMarkModuleCompleteComputesPercentage(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, percentageCourse(100, "Intro", "Routing", "Persistence"))
	modules := env.courseModules(t, enrollment.CourseID)
	ctx := context.Background()

	snapshot, err := env.progress.MarkModuleComplete(ctx, enrollment.ID, modules[0].ID)
	require.NoError(t, err)
	require.Equal(t, 1, snapshot.CompletedRequired)
	require.Equal(t, 3, snapshot.TotalRequired)
	require.Equal(t, 33, snapshot.Percentage)

	snapshot, err = env.progress.MarkModuleComplete(ctx, enrollment.ID, modules[1].ID)
	require.NoError(t, err)
	require.Equal(t, 2, snapshot.CompletedRequired)
	require.Equal(t, 67, snapshot.Percentage)
	require.NotNil(t, snapshot.LastCompletedAt)
}

func TestMarkModuleCompleteIsIdempotent(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, percentageCourse(100, "Intro", "Routing"))
	modules := env.courseModules(t, enrollment.CourseID)
	ctx := context.Background()

	first, err := env.progress.MarkModuleComplete(ctx, enrollment.ID, modules[0].ID)
	require.NoError(t, err)

	second, err := env.progress.MarkModuleComplete(ctx, enrollment.ID, modules[0].ID)
	require.NoError(t, err)

	require.Equal(t, first.Percentage, second.Percentage)
	require.NotNil(t, second.Modules[0].CompletedAt)
	require.True(t, first.Modules[0].CompletedAt.Equal(*second.Modules[0].CompletedAt),
		"repeated completion must not move the original timestamp")

	var count int64
	require.NoError(t, env.db.Model(&models.ModuleProgress{}).
		Where("enrollment_id = ?", enrollment.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestMarkModuleCompleteRejectsForeignModule(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, percentageCourse(100, "Intro"))

	other := models.Course{
		Title:         "Another Course",
		PolicyKind:    models.PolicyModulePercentage,
		PassThreshold: 100,
		Modules:       []models.CourseModule{{Title: "Elsewhere", Position: 1, IsRequired: true}},
	}
	require.NoError(t, env.db.Create(&other).Error)

	_, err := env.progress.MarkModuleComplete(context.Background(), enrollment.ID, other.Modules[0].ID)
	require.ErrorIs(t, err, ErrModuleNotInCourse)

	_, err = env.progress.MarkModuleComplete(context.Background(), enrollment.ID, 9999)
	require.ErrorIs(t, err, ErrModuleNotFound)
}

func TestMarkModuleCompleteNotifiesTrigger(t *testing.T) {
	env := newEngineEnv(t)
	trigger := &recordingTrigger{}
	env.progress.SetEvaluationTrigger(trigger)

	enrollment := env.enroll(t, percentageCourse(100, "Intro", "Routing"))
	modules := env.courseModules(t, enrollment.CourseID)
	ctx := context.Background()

	_, err := env.progress.MarkModuleComplete(ctx, enrollment.ID, modules[0].ID)
	require.NoError(t, err)
	require.Equal(t, []uint{enrollment.ID}, trigger.seen())

	// Repeated completions return the idempotent snapshot without re-firing.
	_, err = env.progress.MarkModuleComplete(ctx, enrollment.ID, modules[0].ID)
	require.NoError(t, err)
	require.Equal(t, []uint{enrollment.ID}, trigger.seen())
}

func TestProgressCountsOnlyRequiredModules(t *testing.T) {
	env := newEngineEnv(t)
	course := percentageCourse(100, "Intro", "Routing")
	course.Modules = append(course.Modules, models.CourseModule{
		Title:      "Bonus Material",
		Position:   3,
		IsRequired: false,
	})
	enrollment := env.enroll(t, course)
	modules := env.courseModules(t, enrollment.CourseID)
	ctx := context.Background()

	var optional models.CourseModule
	for _, module := range modules {
		if !module.IsRequired {
			optional = module
		}
	}
	require.NotZero(t, optional.ID)

	snapshot, err := env.progress.MarkModuleComplete(ctx, enrollment.ID, optional.ID)
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.Percentage)
	require.Equal(t, 1, snapshot.OptionalCompleted)
	require.Equal(t, 2, snapshot.TotalRequired)
}

func TestGetProgressUnknownEnrollment(t *testing.T) {
	env := newEngineEnv(t)

	_, err := env.progress.GetProgress(context.Background(), 42)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
