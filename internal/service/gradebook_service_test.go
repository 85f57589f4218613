package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/credentia/credentia-api/internal/dto"
	"github.com/credentia/credentia-api/internal/models"
)

func TestRecordGradeOverwritesCourseFinal(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, nil))
	ctx := context.Background()

	first, err := env.gradebook.RecordGrade(ctx, enrollment.ID, dto.GradeRecordRequest{Scale: 6.0}, nil)
	require.NoError(t, err)

	grader := uint(12)
	second, err := env.gradebook.RecordGrade(ctx, enrollment.ID, dto.GradeRecordRequest{Scale: 8.5, Feedback: "much improved"}, &grader)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID, "course-final corrections update in place")
	require.Equal(t, 8.5, second.Scale)
	require.Equal(t, "much improved", second.Feedback)
	require.False(t, second.GradedAt.Before(first.GradedAt))

	var count int64
	require.NoError(t, env.db.Model(&models.GradeRecord{}).
		Where("enrollment_id = ? AND module_id IS NULL", enrollment.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRecordGradeSanitizesFeedback(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, nil))

	grade, err := env.gradebook.RecordGrade(context.Background(), enrollment.ID, dto.GradeRecordRequest{
		Scale:    9.0,
		Feedback: `<script>alert("x")</script>solid work`,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "solid work", grade.Feedback)
}

func TestRecordGradeValidatesScale(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, nil))

	_, err := env.gradebook.RecordGrade(context.Background(), enrollment.ID, dto.GradeRecordRequest{Scale: 10.5}, nil)
	require.Error(t, err)
}

func TestRecordAttendanceRejectsDuplicateSession(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, nil))
	ctx := context.Background()

	payload := dto.AttendanceRecordRequest{
		SessionDate:  sessionDay(1),
		SessionTitle: "Week 1",
		Status:       "present",
	}

	_, err := env.gradebook.RecordAttendance(ctx, enrollment.ID, payload)
	require.NoError(t, err)

	_, err = env.gradebook.RecordAttendance(ctx, enrollment.ID, payload)
	require.ErrorIs(t, err, ErrDuplicateSession)
}

func TestImportAttendanceRejectsInvalidPayload(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, nil))

	payload := map[string]interface{}{
		"sessions": []interface{}{
			map[string]interface{}{
				"session_date":  "2026-03-01",
				"session_title": "Week 1",
				// status missing
			},
		},
	}

	_, err := env.gradebook.ImportAttendance(context.Background(), enrollment.ID, payload)
	require.ErrorIs(t, err, ErrInvalidAttendancePayload)

	var count int64
	require.NoError(t, env.db.Model(&models.AttendanceRecord{}).
		Where("enrollment_id = ?", enrollment.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestImportAttendanceSkipsExistingSessions(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, nil))
	ctx := context.Background()

	_, err := env.gradebook.RecordAttendance(ctx, enrollment.ID, dto.AttendanceRecordRequest{
		SessionDate:  sessionDay(1),
		SessionTitle: "Week 1",
		Status:       "present",
	})
	require.NoError(t, err)

	result, err := env.gradebook.ImportAttendance(ctx, enrollment.ID, map[string]interface{}{
		"sessions": []interface{}{
			map[string]interface{}{"session_date": "2026-03-01", "session_title": "Week 1", "status": "present"},
			map[string]interface{}{"session_date": "2026-03-08", "session_title": "Week 2", "status": "late"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)
	require.Equal(t, 1, result.Skipped)
	require.Equal(t, []string{"Week 2"}, result.Sessions)
}

func TestGetAggregateCountsAndRate(t *testing.T) {
	env := newEngineEnv(t)
	enrollment := env.enroll(t, gradeCourse(7.0, nil))
	ctx := context.Background()

	recordFinalGrade(t, env, enrollment.ID, 8.0)

	sessions := []models.AttendanceRecord{
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(1), SessionTitle: "Week 1", Status: models.AttendanceStatusPresent},
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(2), SessionTitle: "Week 2", Status: models.AttendanceStatusPresent},
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(3), SessionTitle: "Week 3", Status: models.AttendanceStatusPresent},
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(4), SessionTitle: "Week 4", Status: models.AttendanceStatusLate},
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(5), SessionTitle: "Week 5", Status: models.AttendanceStatusAbsent},
		{EnrollmentID: enrollment.ID, SessionDate: sessionDay(6), SessionTitle: "Week 6", Status: models.AttendanceStatusExcused},
	}
	require.NoError(t, env.db.Create(&sessions).Error)

	aggregate, err := env.gradebook.GetAggregate(ctx, enrollment.ID)
	require.NoError(t, err)
	require.NotNil(t, aggregate.FinalGrade)
	require.Equal(t, 8.0, aggregate.FinalGrade.Scale)
	require.Equal(t, 3, aggregate.PresentCount)
	require.Equal(t, 1, aggregate.LateCount)
	require.Equal(t, 1, aggregate.AbsentCount)
	require.Equal(t, 1, aggregate.ExcusedCount)
	require.Equal(t, 6, aggregate.TotalSessions)
	require.Equal(t, 0.5, aggregate.AttendanceRate)
}

func TestGetAggregateUnknownEnrollment(t *testing.T) {
	env := newEngineEnv(t)

	_, err := env.gradebook.GetAggregate(context.Background(), 77)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
