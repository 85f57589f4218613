package service

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/credentia/credentia-api/internal/models"
	"github.com/credentia/credentia-api/internal/repository"
)

// engineEnv wires the service stack against an in-memory database so tests
// exercise the real repositories instead of mocks.
type engineEnv struct {
	db           *gorm.DB
	learners     repository.LearnerRepository
	courses      repository.CourseRepository
	enrollments  repository.EnrollmentRepository
	progressRepo repository.ModuleProgressRepository
	grades       repository.GradeRepository
	attendance   repository.AttendanceRepository
	certificates repository.CertificateRepository

	progress    *ProgressTracker
	gradebook   GradebookService
	eligibility EligibilityService
	validate    *validator.Validate
}

func newEngineEnv(t *testing.T) *engineEnv {
	t.Helper()

	db := openTestDB(t)

	env := &engineEnv{
		db:           db,
		learners:     repository.NewLearnerRepository(db),
		courses:      repository.NewCourseRepository(db),
		enrollments:  repository.NewEnrollmentRepository(db),
		progressRepo: repository.NewModuleProgressRepository(db),
		grades:       repository.NewGradeRepository(db),
		attendance:   repository.NewAttendanceRepository(db),
		certificates: repository.NewCertificateRepository(db),
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}

	logger := zerolog.Nop()
	env.progress = NewProgressService(env.enrollments, env.courses, env.progressRepo, logger)
	env.gradebook = NewGradebookService(env.enrollments, env.grades, env.attendance, env.validate, logger)
	env.eligibility = NewEligibilityService(env.enrollments, env.progress, env.gradebook, logger)

	return env
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Learner{},
		&models.Course{},
		&models.CourseModule{},
		&models.Enrollment{},
		&models.ModuleProgress{},
		&models.GradeRecord{},
		&models.AttendanceRecord{},
		&models.Certificate{},
		&models.Notification{},
		&models.UploadRecord{},
	))

	return db
}

// enroll persists a learner, the given course and an enrollment linking them.
func (e *engineEnv) enroll(t *testing.T, course models.Course) models.Enrollment {
	t.Helper()

	learner := models.Learner{
		Name:  "Ayu Lestari",
		Email: fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))),
	}
	require.NoError(t, e.db.Create(&learner).Error)
	require.NoError(t, e.db.Create(&course).Error)

	enrollment := models.Enrollment{LearnerID: learner.ID, CourseID: course.ID}
	require.NoError(t, e.db.Create(&enrollment).Error)

	return enrollment
}

func (e *engineEnv) courseModules(t *testing.T, courseID uint) []models.CourseModule {
	t.Helper()

	var modules []models.CourseModule
	require.NoError(t, e.db.Where("course_id = ?", courseID).Order("position asc").Find(&modules).Error)
	return modules
}

func percentageCourse(threshold float64, moduleTitles ...string) models.Course {
	course := models.Course{
		Title:              "Go Fundamentals",
		PolicyKind:         models.PolicyModulePercentage,
		PassThreshold:      threshold,
		CertificateEnabled: true,
	}
	for i, title := range moduleTitles {
		course.Modules = append(course.Modules, models.CourseModule{
			Title:      title,
			Position:   i + 1,
			IsRequired: true,
		})
	}
	return course
}

func gradeCourse(threshold float64, minAttendance *float64) models.Course {
	return models.Course{
		Title:              "Distributed Systems",
		PolicyKind:         models.PolicyGradeAttendance,
		PassThreshold:      threshold,
		MinAttendanceRate:  minAttendance,
		CertificateEnabled: true,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func userIDString(learnerID uint) string {
	return strconv.FormatUint(uint64(learnerID), 10)
}

// sessionDay returns a normalized calendar day for attendance fixtures.
func sessionDay(day int) time.Time {
	return time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
}
